// Package pipeline runs a batch of seeds through the crawler and persists
// every result as soon as it exists.
//
// The Runner crawls seeds strictly one after another. Each finished site
// appends one record to the batch's ResultLog, after which a Pipeline of
// steps runs over the log: writing output files, saving history, and so on.
//
// Design decision: We model persistence as pipeline steps instead of direct
// function calls because:
// 1. It allows easy addition/removal of outputs without modifying the runner
// 2. It provides consistent error handling and logging across outputs
// 3. A failing output never stops the crawl; its error is collected instead
//
// Design decision: Seeds are processed sequentially rather than with an
// errgroup because one shared browser tab renders every page.
package pipeline
