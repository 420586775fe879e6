// Package model defines the data structures shared by the crawler, the
// batch runner and the result sinks.
//
// This package contains the following main types:
//   - EmbedMatch: where and how a site embeds the map widget
//   - CrawlOutcome: the per-seed result (found, not found, or error)
//   - ResultRecord: a timestamped outcome for one site
//   - ResultLog: the ordered, append-only sequence of records for a batch
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, pipeline, report and database packages all need
// these types, so centralizing them prevents import cycles.
package model
