// Package crawler walks the top-level pages of a site looking for the
// SightMap widget.
//
// # Architecture
//
// The package is designed around the Spider type, which crawls one seed at
// a time. A crawl is a depth-first traversal that starts at the seed and
// follows links that stay on the seed's host and point at top-level pages
// (path depth of at most one). Every page is fetched at most once per seed
// and the traversal stops as soon as the widget is found.
//
// Design decision: We implement our own traversal rather than using a
// crawling framework because:
//  1. Pages must be rendered by a real browser, one at a time
//  2. The traversal must stop on the first match, mid-page
//  3. A failed fetch has to end the seed immediately and be reported
//
// # Components
//
//   - Spider: per-seed traversal with early exit and failure capture
//   - ParsePage: HTML parsing into a goquery document
//   - ExtractLinks: lazy same-host, top-level link sequence
//   - VisitedSet: normalized-URL set scoped to one crawl
//
// # Usage
//
//	spider := crawler.NewSpider(fetcher, crawler.WithLogger(logger))
//	outcome, err := spider.Crawl(ctx, "https://example.com", recorder)
//
// # Failure Isolation
//
// A page that cannot be loaded ends the crawl of its seed with an error
// outcome. The error is handed to the Recorder at the moment it happens and
// Crawl returns normally, so a batch always moves on to the next seed. Crawl
// itself only returns an error when its context is cancelled.
package crawler
