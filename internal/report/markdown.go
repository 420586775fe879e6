package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sightscan/internal/model"
)

// MarkdownWriter renders a run as a Markdown page: outcome counts, a mermaid
// pie chart, the tracker table and the full error messages. It is meant to
// be pasted into an issue or a wiki page.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter returns a MarkdownWriter writing to output.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs a summary followed by the tracker table.
func (w *MarkdownWriter) Write(records []model.ResultRecord) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := model.Summarize(records)

	md.H1("SightMap Tracker Results")
	md.PlainText("")

	w.writeSummary(md, summary)
	w.writeResults(md, records)
	w.writeErrors(md, records)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeSummary writes the outcome counts, a chart and an alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, s model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Sites"},
		Rows: [][]string{
			{"✅ Integrated", strconv.Itoa(s.Found)},
			{"➖ Not integrated", strconv.Itoa(s.NotFound)},
			{"❌ Errors", strconv.Itoa(s.Errors)},
			{"**Total**", "**" + strconv.Itoa(s.Total) + "**"},
		},
	})
	md.PlainText("")

	if s.Total > 0 {
		w.writePieChart(md, s)
	}

	switch {
	case s.Total == 0:
		md.Note("No sites were checked.")
	case s.Errors > 0:
		md.Warningf("%d site(s) could not be loaded. Their result is unknown.", s.Errors)
	default:
		md.Tip("Every site was checked.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the outcome distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("SightMap Integration"),
		piechart.WithShowData(true),
	)

	if s.Found > 0 {
		chart.LabelAndIntValue("Integrated", uint64(s.Found))
	}
	if s.NotFound > 0 {
		chart.LabelAndIntValue("Not integrated", uint64(s.NotFound))
	}
	if s.Errors > 0 {
		chart.LabelAndIntValue("Errors", uint64(s.Errors))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeResults writes one table row per site.
func (w *MarkdownWriter) writeResults(md *markdown.Markdown, records []model.ResultRecord) {
	md.H2("Results")
	md.PlainText("")

	if len(records) == 0 {
		md.PlainText("No results yet.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		row := Row(r)
		if r.Outcome.IsError() {
			// Full messages are listed under Errors.
			row[1] = "Error"
		}
		for j, v := range row {
			if v == "" {
				row[j] = "-"
			}
		}
		rows[i] = row
	}

	md.Table(markdown.TableSet{
		Header: Header(),
		Rows:   rows,
	})
	md.PlainText("")
}

// writeErrors lists the failure message of each site that could not be loaded.
func (w *MarkdownWriter) writeErrors(md *markdown.Markdown, records []model.ResultRecord) {
	var messages []string
	for _, r := range records {
		if r.Outcome.IsError() {
			messages = append(messages, r.Site+": "+truncateString(r.Outcome.Message, 200))
		}
	}
	if len(messages) == 0 {
		return
	}

	md.H2("Errors")
	md.PlainText("")
	md.BulletList(messages...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [SightScan](https://github.com/nao1215/sightscan)*")
}

// truncateString shortens s to maxLen bytes, ending in "..." when cut.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
