package pipeline

import (
	"context"
	"fmt"

	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/report"
)

// WriteStep renders the whole log with a report.Writer.
//
// Design decision: The whole log is rewritten on every call rather than
// appending the newest row because:
// 1. Formats like XLSX and Markdown cannot be appended to
// 2. The file on disk is always a complete, valid snapshot
// 3. Batches are small enough that a full rewrite is cheap
type WriteStep struct {
	// name identifies the output in logs, typically the file path.
	name string

	// writer renders the records.
	writer report.Writer
}

// NewWriteStep creates a step that writes the log with writer.
func NewWriteStep(name string, writer report.Writer) *WriteStep {
	return &WriteStep{name: name, writer: writer}
}

// NewFileStep creates a WriteStep for an output file. The format is chosen
// by the file extension.
func NewFileStep(path string) (*WriteStep, error) {
	sink, err := report.NewFileSink(path)
	if err != nil {
		return nil, err
	}
	return NewWriteStep("write "+path, sink), nil
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return s.name
}

// Do writes every record in the log.
func (s *WriteStep) Do(_ context.Context, log *model.ResultLog) error {
	_, err := s.writer.Write(log.Records())
	return err
}

// HistoryStore persists individual records across runs.
type HistoryStore interface {
	SaveRecord(ctx context.Context, record model.ResultRecord) error
}

// HistoryStep saves the newest record to a HistoryStore.
type HistoryStep struct {
	store HistoryStore
}

// NewHistoryStep creates a step that saves records to store.
func NewHistoryStep(store HistoryStore) *HistoryStep {
	return &HistoryStep{store: store}
}

// Name returns the step name.
func (s *HistoryStep) Name() string {
	return "save_history"
}

// Do saves the newest record.
func (s *HistoryStep) Do(ctx context.Context, log *model.ResultLog) error {
	record, ok := log.Last()
	if !ok {
		return nil
	}
	// The record exists already; persist it even when the batch is stopping.
	if err := s.store.SaveRecord(context.WithoutCancel(ctx), record); err != nil {
		return fmt.Errorf("failed to save %s: %w", record.Site, err)
	}
	return nil
}
