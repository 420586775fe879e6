package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/nao1215/sightscan/internal/detect"
	"github.com/nao1215/sightscan/internal/fetch"
	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/urlnorm"
)

// Recorder receives a seed's error outcome at the moment the failure
// happens, before Crawl returns.
type Recorder interface {
	RecordFailure(seed string, outcome model.CrawlOutcome)
}

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(seed string, outcome model.CrawlOutcome)

// RecordFailure calls f(seed, outcome).
func (f RecorderFunc) RecordFailure(seed string, outcome model.CrawlOutcome) {
	f(seed, outcome)
}

// errPageBudget stops a traversal once the page budget is spent.
var errPageBudget = errors.New("page budget exhausted")

// Spider crawls the top-level pages of one seed at a time. A Spider keeps
// no state between Crawl calls; the visited set lives on the call.
type Spider struct {
	// fetcher loads rendered pages. It is shared by every crawl.
	fetcher fetch.Fetcher

	// detector finds the embed in a parsed page.
	detector *detect.Detector

	// normalize maps URLs to visited-set keys.
	normalize urlnorm.Func

	// maxPathDepth limits which links are followed.
	maxPathDepth int

	// maxPages caps the pages fetched per seed. 0 means unlimited.
	maxPages int

	// ignorePatterns are glob patterns matched against link paths.
	ignorePatterns []string

	// logger receives per-page diagnostics.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithDetector sets the embed detector.
func WithDetector(d *detect.Detector) SpiderOption {
	return func(s *Spider) {
		if d != nil {
			s.detector = d
		}
	}
}

// WithNormalizer sets the function used to deduplicate URLs.
func WithNormalizer(fn urlnorm.Func) SpiderOption {
	return func(s *Spider) {
		if fn != nil {
			s.normalize = fn
		}
	}
}

// WithMaxPathDepth sets the deepest path that is followed.
// 0 = only the seed's root page, 1 = top-level pages (default).
func WithMaxPathDepth(depth int) SpiderOption {
	return func(s *Spider) {
		if depth >= 0 {
			s.maxPathDepth = depth
		}
	}
}

// WithMaxPages caps the number of pages fetched for one seed.
// 0 disables the cap.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		if maxPages >= 0 {
			s.maxPages = maxPages
		}
	}
}

// WithIgnorePatterns skips links whose path matches one of patterns, for
// example "*.pdf" or "/residents/*". Skipped links are never fetched.
func WithIgnorePatterns(patterns []string) SpiderOption {
	return func(s *Spider) {
		s.ignorePatterns = patterns
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSpider creates a Spider that loads pages through fetcher.
//
// Design decision: We require an external fetcher because:
//  1. The browser is owned by the caller and released once per batch
//  2. Tests substitute an in-memory site for the browser
//  3. The same traversal works with the plain HTTP fetcher
func NewSpider(fetcher fetch.Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		fetcher:      fetcher,
		detector:     detect.New(),
		normalize:    urlnorm.Normalize,
		maxPathDepth: DefaultMaxPathDepth,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// crawl holds the state of one seed's traversal.
type crawl struct {
	spider  *Spider
	seed    string
	start   *url.URL
	visited *VisitedSet
}

// Crawl searches seed and its top-level pages for the embed.
//
// The returned outcome is Found, NotFound or Error. For Error the outcome
// has already been passed to recorder when Crawl returns; recorder may be
// nil. The returned error is non-nil only when ctx is cancelled.
func (s *Spider) Crawl(ctx context.Context, seed string, recorder Recorder) (model.CrawlOutcome, error) {
	c := &crawl{
		spider:  s,
		seed:    seed,
		visited: NewVisitedSet(s.normalize),
	}

	var (
		match *model.EmbedMatch
		err   error
	)
	start, parseErr := url.Parse(seed)
	if parseErr != nil {
		err = fetch.Wrap(seed, parseErr)
	} else {
		c.start = start
		match, err = c.step(ctx, seed)
	}

	var outcome model.CrawlOutcome
	switch {
	case match != nil:
		outcome = model.Found(*match)
	case err != nil && ctx.Err() != nil:
		return model.CrawlOutcome{PagesVisited: c.visited.Len()}, ctx.Err()
	case err != nil && !errors.Is(err, errPageBudget):
		outcome = model.Failed(err.Error())
		outcome.PagesVisited = c.visited.Len()
		s.logger.Warn("failed to crawl site", "site", seed, "error", err)
		if recorder != nil {
			recorder.RecordFailure(seed, outcome)
		}
		return outcome, nil
	default:
		outcome = model.NotFound()
	}

	outcome.PagesVisited = c.visited.Len()
	s.logger.Debug("crawled site", "site", seed, "outcome", outcome.Kind, "pages", outcome.PagesVisited)
	return outcome, nil
}

// step visits pageURL and, when it has no embed, its eligible links.
// It returns the first match, or the error that ended the traversal.
func (c *crawl) step(ctx context.Context, pageURL string) (*model.EmbedMatch, error) {
	s := c.spider

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.visited.Seen(pageURL) {
		return nil, nil
	}
	if s.maxPages > 0 && c.visited.Len() >= s.maxPages {
		return nil, errPageBudget
	}
	c.visited.Visit(pageURL)

	s.logger.Debug("visiting page", "url", pageURL)

	content, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fetch.Wrap(pageURL, err)
	}

	doc, err := ParsePage(content)
	if err != nil {
		return nil, fetch.Wrap(pageURL, err)
	}

	if match := s.detector.Detect(doc, pageURL); match != nil {
		s.logger.Info("found embed", "site", c.seed, "url", pageURL, "embed", match.EmbedURL)
		return match, nil
	}

	for link := range ExtractLinks(doc, pageURL, c.start, s.maxPathDepth) {
		if c.visited.Seen(link) || !s.shouldCrawl(link) {
			continue
		}
		match, err := c.step(ctx, link)
		if match != nil || err != nil {
			return match, err
		}
	}

	return nil, nil
}

// shouldCrawl checks if a link should be crawled based on ignore patterns.
func (s *Spider) shouldCrawl(targetURL string) bool {
	if len(s.ignorePatterns) == 0 {
		return true
	}

	u, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range s.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}
	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/brochure.pdf"
//   - "/logout*" matches "/logout", "/logout-now"
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a slash also match the last path segment.
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		matched, err := filepath.Match(pattern, filepath.Base(path))
		if err == nil && matched {
			return true
		}
	}

	return false
}
