package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/sightscan/internal/config"
	"github.com/nao1215/sightscan/internal/database"
	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/report"
)

// dateTimeLayout is used for timestamps in history output.
const dateTimeLayout = report.DateLayout + " " + report.TimeLayout

// NewHistoryCmd creates the history command.
// This command shows results stored by 'sightscan scan --history'.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [site]",
		Short: "Show stored results and status changes",
		Long: `History displays results saved by 'sightscan scan --history'.

Without a site it shows the latest result of every stored site. With a site
it lists every check of that site, newest first, and reports what changed
between the two latest checks:
- integrated:  the SightMap embed appeared
- removed:     the embed disappeared
- updated:     the embed URL or API usage changed
- unreachable: the site failed to load
- unchanged:   nothing relevant changed

Examples:
  # Latest result for every site
  sightscan history

  # Every check of one site
  sightscan history https://example.com

  # Only the last 5 checks, as JSON
  sightscan history --limit 5 --json example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 0,
		"Show at most this many checks (0 means all)")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// historyFormat selects how history is printed.
type historyFormat int

const (
	historyText historyFormat = iota
	historyJSON
	historyMarkdown
)

// siteHistory is the history of one site.
type siteHistory struct {
	Site    string               `json:"site"`
	Records []model.ResultRecord `json:"records"`
	Change  *model.Change        `json:"change,omitempty"`
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown cannot be used together")
	}

	format := historyText
	switch {
	case jsonOutput:
		format = historyJSON
	case markdownOutput:
		format = historyMarkdown
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// Validate arguments before opening the database.
	var site string
	if len(args) == 1 {
		var ok bool
		site, ok = model.PrepareSeed(args[0])
		if !ok {
			return errors.New("site must not be empty")
		}
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if site == "" {
		return showLatest(ctx, db, out, format)
	}
	return showSiteHistory(ctx, db, out, site, limit, format)
}

// showLatest prints the newest record of every site.
func showLatest(ctx context.Context, db *database.HistoryDB, out io.Writer, format historyFormat) error {
	records, err := db.LatestRecords(ctx)
	if err != nil {
		return err
	}

	switch format {
	case historyJSON:
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).Write(records)
		return err
	case historyMarkdown:
		_, err = report.NewMarkdownWriter(out).Write(records)
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No results found in the database.")
		fmt.Fprintln(out, "\nUse 'sightscan scan --history <url>' to record results.")
		return nil
	}

	fmt.Fprintf(out, "Latest results (%d sites):\n\n", len(records))
	fmt.Fprintf(out, "  %-19s  %-40s  %s\n", "Checked", "Site", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Fprintf(out, "  %-19s  %-40s  %s\n", r.Timestamp.Format(dateTimeLayout), r.Site, r.Outcome.Status())
	}
	fmt.Fprintln(out, "\nUse 'sightscan history <site>' to see every check of a site.")

	return nil
}

// showSiteHistory prints every check of site and the latest change.
func showSiteHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, site string, limit int, format historyFormat) error {
	records, err := db.History(ctx, site, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no history found for %s", site)
	}

	h := siteHistory{Site: site, Records: records}
	if len(records) >= 2 {
		change := model.Compare(records[1], records[0])
		h.Change = &change
	}

	switch format {
	case historyJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(h)
	case historyMarkdown:
		return writeHistoryMarkdown(out, h)
	default:
		writeHistoryText(out, h)
		return nil
	}
}

// writeHistoryText prints a site history in human-readable text format.
func writeHistoryText(out io.Writer, h siteHistory) {
	fmt.Fprintf(out, "History for %s (%d checks)\n", h.Site, len(h.Records))
	fmt.Fprintln(out, strings.Repeat("=", 60))

	if h.Change != nil {
		fmt.Fprintf(out, "\nLatest change: %s\n", formatChange(h.Change.Kind))
	}

	fmt.Fprintln(out)
	for _, r := range h.Records {
		fmt.Fprintf(out, "  %s  %s\n", r.Timestamp.Format(dateTimeLayout), r.Outcome.Status())
		if r.Outcome.IsFound() {
			fmt.Fprintf(out, "      embed: %s (found on %s)\n", r.Outcome.Match.EmbedURL, r.Outcome.Match.DiscoveredAt)
		}
	}
}

// writeHistoryMarkdown prints a site history as a Markdown table.
func writeHistoryMarkdown(out io.Writer, h siteHistory) error {
	md := markdown.NewMarkdown(out)
	md.H1("History: " + h.Site)
	md.PlainText("")

	if h.Change != nil {
		md.PlainTextf("**Latest change:** %s", formatChange(h.Change.Kind))
		md.PlainText("")
	}

	rows := make([][]string, 0, len(h.Records))
	for _, r := range h.Records {
		embed, api := "", ""
		if r.Outcome.IsFound() {
			embed = r.Outcome.Match.EmbedURL
			api = "No"
			if r.Outcome.Match.APIUsage {
				api = "Yes"
			}
		}
		rows = append(rows, []string{r.Timestamp.Format(dateTimeLayout), r.Outcome.Status(), embed, api})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Checked", report.ColumnIntegrated, report.ColumnEmbed, report.ColumnAPIUsage},
		Rows:   rows,
	})

	return md.Build()
}

// formatChange formats a change kind for display.
func formatChange(kind model.ChangeKind) string {
	switch kind {
	case model.ChangeIntegrated:
		return "INTEGRATED (embed appeared)"
	case model.ChangeRemoved:
		return "REMOVED (embed disappeared)"
	case model.ChangeUpdated:
		return "UPDATED (embed changed)"
	case model.ChangeUnreachable:
		return "UNREACHABLE (site failed to load)"
	default:
		return "UNCHANGED"
	}
}
