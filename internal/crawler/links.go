package crawler

import (
	"iter"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMaxPathDepth restricts the crawl to a site's top-level pages.
const DefaultMaxPathDepth = 1

// anchorSelector matches every link that has a target.
const anchorSelector = "a[href]"

// PathDepth returns the number of non-empty segments in the URL path.
// "/", "" and "//" have depth 0, "/floorplans/" has depth 1.
func PathDepth(path string) int {
	depth := 0
	for segment := range strings.SplitSeq(path, "/") {
		if segment != "" {
			depth++
		}
	}
	return depth
}

// ExtractLinks yields the absolute URLs of the anchors in doc that have the
// scheme and host of seed and whose path depth is at most maxDepth, in
// document order.
//
// Both comparisons are exact, port included: "https://a.com" is off-site for
// an "http://a.com" seed, and "www.a.com" and "a.com" are different hosts
// here. The two hosts are only treated as one page later, when the URL is
// normalized for the visited set.
//
// The returned sequence is lazy and can be ranged over more than once.
func ExtractLinks(doc *goquery.Document, baseURL string, seed *url.URL, maxDepth int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if doc == nil || seed == nil {
			return
		}
		base, err := url.Parse(baseURL)
		if err != nil {
			return
		}

		anchors := doc.Find(anchorSelector)
		for i := range anchors.Length() {
			href, _ := anchors.Eq(i).Attr("href")
			link := resolveURL(base, href)
			if link == nil {
				continue
			}
			if link.Scheme != seed.Scheme || link.Host != seed.Host {
				continue
			}
			if PathDepth(link.Path) > maxDepth {
				continue
			}
			if !yield(link.String()) {
				return
			}
		}
	}
}
