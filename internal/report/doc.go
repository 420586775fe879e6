// Package report writes the result log in the formats users open after a
// batch: CSV (the tracker file), Excel, Markdown and JSON.
//
// Every writer renders the whole log on each call. The batch runner calls
// the configured sinks after every new record, so a file on disk is always a
// complete snapshot of the batch so far.
//
// Design decision: We separate report writing from the result types (which
// are in the model package) to follow the single responsibility principle.
// This allows adding new output formats without modifying the core data
// structures.
//
// Writers implement the Writer interface and are picked by file extension
// with FormatFor and NewWriter. FileSink adds the atomic replace-on-write
// behaviour on top of any format; one FileSink exists per output file.
package report
