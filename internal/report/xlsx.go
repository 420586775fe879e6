package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/sightscan/internal/model"
)

// Sheet names of the Excel workbook.
const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

// XLSXWriter outputs the tracker table as an Excel workbook with a
// results sheet and a summary sheet.
//
// Design decision: We build the workbook with excelize rather than asking
// users to import the CSV because:
//  1. Error messages with commas survive without import settings
//  2. The header row can be frozen and styled
//  3. Non-technical readers open .xlsx files directly
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs a workbook containing all records.
func (w *XLSXWriter) Write(records []model.ResultRecord) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ResultsSheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := w.writeResults(f, records); err != nil {
		return 0, err
	}
	if err := w.writeSummary(f, model.Summarize(records)); err != nil {
		return 0, err
	}

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// writeResults fills the results sheet with the tracker columns.
func (w *XLSXWriter) writeResults(f *excelize.File, records []model.ResultRecord) error {
	header := Header()
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := Row(r)
		if err := f.SetSheetRow(ResultsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(ResultsSheet, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetColWidth(ResultsSheet, "A", "E", 40); err != nil {
		return err
	}
	return f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// writeSummary adds a sheet with counts per outcome.
func (w *XLSXWriter) writeSummary(f *excelize.File, s model.Summary) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}

	rows := [][]any{
		{"Outcome", "Sites"},
		{"Integrated", s.Found},
		{"Not integrated", s.NotFound},
		{"Errors", s.Errors},
		{"Total", s.Total},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
