package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sightscan/internal/model"
)

// JSONDocument is the top-level object written by JSONWriter.
type JSONDocument struct {
	Summary model.Summary        `json:"summary"`
	Results []model.ResultRecord `json:"results"`
}

// JSONWriter renders the log as one JSON document, for scripts that post
// process a run.
//
// Design decision: encoding/json is used directly. ResultRecord and
// CrawlOutcome define their own JSON shape, and none of the JSON libraries
// seen in comparable crawlers add anything for a single document per write.
type JSONWriter struct {
	baseWriter

	// indent is the per-level indentation; empty means compact output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithPrettyPrint indents nested values by two spaces.
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the records and their summary. An empty log is written as
// an empty results array, never null.
func (w *JSONWriter) Write(records []model.ResultRecord) (int, error) {
	if records == nil {
		records = []model.ResultRecord{}
	}

	cw := &countingWriter{w: w.output}
	enc := json.NewEncoder(cw)
	enc.SetIndent("", w.indent)
	err := enc.Encode(JSONDocument{
		Summary: model.Summarize(records),
		Results: records,
	})
	return cw.n, err
}
