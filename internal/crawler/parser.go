package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ParsePage parses rendered HTML into a goquery document.
//
// Design decision: We parse with golang.org/x/net/html and wrap the tree in
// goquery rather than matching markup with regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. The detector and link extractor share one parsed tree per page
//  3. CSS selectors keep both queries short and readable
func ParsePage(content string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// resolveURL resolves href against base and returns the absolute URL, or
// nil when href is not a navigable link.
//
// Design decision: We resolve URLs rather than storing them as-is because:
//  1. Host comparison needs an absolute URL
//  2. Deduplication needs one representation per page
func resolveURL(base *url.URL, href string) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return nil
	}

	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}

	resolved := base.ResolveReference(u)
	// Fragments never change the page that is loaded.
	resolved.Fragment = ""
	resolved.RawFragment = ""
	return resolved
}
