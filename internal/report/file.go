package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/sightscan/internal/model"
)

// FileSink rewrites an output file with the complete result log.
//
// Design decision: We write to a temporary file in the same directory and
// rename it over the target because:
//  1. A crash or Ctrl-C mid-write never leaves a truncated file behind
//  2. Readers that have the file open keep seeing the previous snapshot
//  3. Rename within one directory is atomic on every supported platform
type FileSink struct {
	// path is the destination file.
	path string

	// format selects the writer used to render the file.
	format Format
}

// NewFileSink creates a sink for path. The format is chosen by extension.
func NewFileSink(path string) (*FileSink, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return &FileSink{path: path, format: format}, nil
}

// Path returns the destination file.
func (s *FileSink) Path() string {
	return s.path
}

// Format returns the output format.
func (s *FileSink) Format() Format {
	return s.format
}

// Write replaces the destination file with a rendering of records.
func (s *FileSink) Write(records []model.ResultRecord) (int, error) {
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	tmpName := tmp.Name()

	n, err := s.render(tmp, records)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644) //nolint:gosec // results are meant to be shared
	}
	if err == nil {
		err = os.Rename(tmpName, s.path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("failed to write %s: %w", s.path, err)
	}

	return n, nil
}

// render writes records to f in the sink's format.
func (s *FileSink) render(f *os.File, records []model.ResultRecord) (int, error) {
	w, err := NewWriter(s.format, f)
	if err != nil {
		return 0, err
	}
	return w.Write(records)
}
