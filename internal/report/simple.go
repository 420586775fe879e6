package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/sightscan/internal/model"
)

// SimpleWriter prints the end-of-run summary on the terminal: one marker
// line per site ([+] integrated, [-] not integrated, [!] error) and the
// totals. Output is plain ASCII so it survives being piped to a file.
type SimpleWriter struct {
	baseWriter

	// verbose adds the page count and discovery page for each site.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds the discovery page and page count to each site.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter returns a SimpleWriter writing to output.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs one line per site followed by the totals.
func (w *SimpleWriter) Write(records []model.ResultRecord) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      SIGHTMAP TRACKER RESULTS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for _, r := range records {
		w.writeRecord(&sb, r)
	}
	if len(records) > 0 {
		sb.WriteString("\n")
	}

	s := model.Summarize(records)
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Integrated:     %d\n", s.Found))
	sb.WriteString(fmt.Sprintf("  Not integrated: %d\n", s.NotFound))
	sb.WriteString(fmt.Sprintf("  Errors:         %d\n", s.Errors))
	sb.WriteString(fmt.Sprintf("  Total:          %d\n", s.Total))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeRecord writes the line for one site.
func (w *SimpleWriter) writeRecord(sb *strings.Builder, r model.ResultRecord) {
	switch r.Outcome.Kind {
	case model.OutcomeFound:
		api := ""
		if r.Outcome.Match.APIUsage {
			api = " (API)"
		}
		sb.WriteString(fmt.Sprintf("  [+] %s%s\n", r.Site, api))
		sb.WriteString(fmt.Sprintf("      %s\n", r.Outcome.Match.EmbedURL))
		if w.verbose {
			sb.WriteString(fmt.Sprintf("      found on %s\n", r.Outcome.Match.DiscoveredAt))
		}
	case model.OutcomeError:
		sb.WriteString(fmt.Sprintf("  [!] %s\n", r.Site))
		sb.WriteString(fmt.Sprintf("      %s\n", r.Outcome.Message))
	default:
		sb.WriteString(fmt.Sprintf("  [-] %s\n", r.Site))
	}

	if w.verbose && r.Outcome.PagesVisited > 0 {
		sb.WriteString(fmt.Sprintf("      pages visited: %d\n", r.Outcome.PagesVisited))
	}
}
