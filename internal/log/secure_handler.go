package log

import (
	"context"
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// SecureHandler is an slog.Handler that masks sensitive attributes before
// handing records to the wrapped handler.
//
// Design decision: Redaction lives in a handler wrapper rather than at the
// call sites:
//  1. Crawler, fetcher and CLI code log through a plain *slog.Logger
//  2. The terminal and JSON outputs share the same rules
//  3. Attributes bound with With are cleaned once, when they are bound
type SecureHandler struct {
	next slog.Handler
}

// NewSecureHandler wraps next. A nil next uses slog.Default().Handler().
func NewSecureHandler(next slog.Handler) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &SecureHandler{next: next}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. The record is copied so the caller's
// attributes are left untouched.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(redactAttr(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = redactAttr(a)
	}
	return &SecureHandler{next: h.next.WithAttrs(clean)}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{next: h.next.WithGroup(name)}
}

// level maps the verbose flag to a minimum level. Quiet runs only show
// warnings so the progress display stays readable.
func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a logger for interactive use. Records are rendered
// by charmbracelet/log, which colors levels when w is a terminal and writes
// plain text otherwise.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	terminal := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(level(verbose)),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(NewSecureHandler(terminal))
}

// NewSecureJSONLogger returns a logger that writes one JSON object per
// record, for runs whose logs are collected by another tool.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level(verbose),
	})))
}
