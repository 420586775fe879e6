package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/nao1215/sightscan/internal/model"
)

// Column names of the tracker file, in order.
const (
	ColumnWebsite    = "Website"
	ColumnIntegrated = "SightMap Integrated?"
	ColumnEmbed      = "SightMap Embed"
	ColumnAPIUsage   = "API Usage"
	ColumnClosestURL = "Closest URL to SightMap"
	ColumnTime       = "Time"
	ColumnDate       = "Date"
)

// Layouts of the Time and Date columns.
const (
	TimeLayout = "15:04:05"
	DateLayout = "2006-01-02"
)

// Values of the "SightMap Integrated?" and "API Usage" columns.
const (
	valueYes = "Yes"
	valueNo  = "No"
)

// Header returns the tracker file's column names in order.
func Header() []string {
	return []string{
		ColumnWebsite,
		ColumnIntegrated,
		ColumnEmbed,
		ColumnAPIUsage,
		ColumnClosestURL,
		ColumnTime,
		ColumnDate,
	}
}

// Row renders one record as tracker columns. The embed columns are empty
// unless the site embeds the widget. For an error the message takes the
// place of the Yes/No value.
func Row(r model.ResultRecord) []string {
	row := []string{r.Site, r.Outcome.Status(), "", "", "", r.Timestamp.Format(TimeLayout), r.Timestamp.Format(DateLayout)}
	if r.Outcome.IsFound() {
		row[2] = r.Outcome.Match.EmbedURL
		row[3] = yesNo(r.Outcome.Match.APIUsage)
		row[4] = r.Outcome.Match.DiscoveredAt
	}
	return row
}

func yesNo(b bool) string {
	if b {
		return valueYes
	}
	return valueNo
}

// CSVWriter outputs the tracker file.
//
// Design decision: We use encoding/csv because quoting rules matter here:
// error messages routinely contain commas and quotes, and the file is opened
// in spreadsheet tools that expect RFC 4180.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the header and one row per record.
func (w *CSVWriter) Write(records []model.ResultRecord) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	if err := out.Write(Header()); err != nil {
		return cw.n, err
	}
	for _, r := range records {
		if err := out.Write(Row(r)); err != nil {
			return cw.n, err
		}
	}
	out.Flush()
	return cw.n, out.Error()
}

// ErrInvalidCSV is returned by ReadCSV for files that are not tracker files.
var ErrInvalidCSV = errors.New("invalid results file")

// ReadCSV parses a tracker file written by CSVWriter back into records.
// Timestamps are interpreted in the local time zone. PagesVisited is not
// stored in the file and is always zero.
func ReadCSV(r io.Reader) ([]model.ResultRecord, error) {
	in := csv.NewReader(r)
	in.FieldsPerRecord = len(Header())

	header, err := in.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrInvalidCSV)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	if !slices.Equal(header, Header()) {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrInvalidCSV, header)
	}

	records := make([]model.ResultRecord, 0)
	for {
		row, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
		}

		record, err := parseRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// parseRow converts one tracker row into a record.
func parseRow(row []string) (model.ResultRecord, error) {
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, row[6]+" "+row[5], time.Local)
	if err != nil {
		return model.ResultRecord{}, fmt.Errorf("%w: bad timestamp for %s: %w", ErrInvalidCSV, row[0], err)
	}

	var outcome model.CrawlOutcome
	switch row[1] {
	case valueYes:
		outcome = model.Found(model.EmbedMatch{
			EmbedURL:     row[2],
			APIUsage:     row[3] == valueYes,
			DiscoveredAt: row[4],
		})
	case valueNo:
		outcome = model.NotFound()
	default:
		outcome = model.Failed(row[1])
	}

	return model.NewResultRecord(row[0], outcome, at), nil
}
