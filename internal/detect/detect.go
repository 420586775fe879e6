package detect

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/sightscan/internal/model"
)

// Default markers for the SightMap widget.
const (
	// DefaultSignature is the prefix every SightMap embed URL contains.
	DefaultSignature = "https://sightmap.com/embed/"

	// DefaultAPIMarker marks an embed that is controlled through the API.
	DefaultAPIMarker = "?enable"
)

// iframeSelector matches every frame that has a source.
const iframeSelector = "iframe[src]"

// Detector looks for the embed signature in iframe sources.
//
// Design decision: We match with a substring test on the raw src attribute
// rather than parsing it as a URL because:
//  1. Sites embed the widget with every imaginable mix of query parameters
//  2. A malformed src that still contains the signature is still the widget
//  3. The result must agree with earlier result files produced the same way
type Detector struct {
	// signature is the substring that identifies an embed.
	signature string

	// apiMarker is the substring that identifies API usage.
	apiMarker string
}

// Option configures a Detector.
type Option func(*Detector)

// WithSignature sets the substring that identifies an embed.
func WithSignature(signature string) Option {
	return func(d *Detector) {
		if signature != "" {
			d.signature = signature
		}
	}
}

// WithAPIMarker sets the substring that identifies API usage.
func WithAPIMarker(marker string) Option {
	return func(d *Detector) {
		if marker != "" {
			d.apiMarker = marker
		}
	}
}

// New creates a Detector for the SightMap widget.
func New(opts ...Option) *Detector {
	d := &Detector{
		signature: DefaultSignature,
		apiMarker: DefaultAPIMarker,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Signature returns the embed signature the detector matches.
func (d *Detector) Signature() string {
	return d.signature
}

// Detect scans iframes in document order and returns the first embed, or
// nil when the page has none. pageURL is recorded as DiscoveredAt.
func (d *Detector) Detect(doc *goquery.Document, pageURL string) *model.EmbedMatch {
	if doc == nil {
		return nil
	}

	var match *model.EmbedMatch
	doc.Find(iframeSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if !strings.Contains(src, d.signature) {
			return true
		}
		match = &model.EmbedMatch{
			EmbedURL:     src,
			APIUsage:     strings.Contains(src, d.apiMarker),
			DiscoveredAt: pageURL,
		}
		return false
	})

	return match
}

// DetectHTML parses content and runs Detect on the result.
func (d *Detector) DetectHTML(content, pageURL string) (*model.EmbedMatch, error) {
	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return d.Detect(goquery.NewDocumentFromNode(root), pageURL), nil
}
