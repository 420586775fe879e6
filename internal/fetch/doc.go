// Package fetch loads pages and returns their HTML for inspection.
//
// The crawler depends only on the Fetcher interface. Two implementations are
// provided:
//   - ChromeFetcher: drives a single headless Chrome session through chromedp
//     and returns the DOM after scripts have run. This is the default because
//     the map widget is usually injected by JavaScript.
//   - HTTPFetcher: performs a plain GET and returns the response body. It is
//     much cheaper and suits static sites and tests.
//
// # Resource model
//
// A ChromeFetcher owns one browser with one tab. It is not safe for concurrent
// use: callers must fetch one page at a time and must call Close exactly once
// when the whole batch is finished.
//
// # Errors
//
// Every failure is returned as *Error, which records the URL that failed and
// wraps the underlying cause.
package fetch
