package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/sightscan/internal/crawler"
	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/progress"
)

// Crawler crawls one seed. crawler.Spider implements it.
type Crawler interface {
	Crawl(ctx context.Context, seed string, recorder crawler.Recorder) (model.CrawlOutcome, error)
}

// Progress receives batch progress. Indexes are zero based.
type Progress interface {
	Begin(total int)
	Visit(index int, site string)
	Done(index int, site string, outcome model.CrawlOutcome)
	End()
}

// Runner crawls a list of seeds and records one result per seed.
//
// Design decision: We keep the runner separate from the Pipeline because:
// 1. It keeps the Pipeline focused on persisting records
// 2. The crawl loop and its cancellation rules stay in one place
// 3. Tests can drive either half with fakes
type Runner struct {
	// crawler crawls each seed.
	crawler Crawler

	// pipeline runs after every appended record.
	pipeline *Pipeline

	// progress receives per-seed progress.
	progress Progress

	// logger is used for batch-level logging.
	logger *slog.Logger

	// now stamps records.
	now func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithProgress sets the progress reporter.
func WithProgress(p Progress) RunnerOption {
	return func(r *Runner) {
		if p != nil {
			r.progress = p
		}
	}
}

// WithClock sets the clock used to stamp records.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner. A nil pipeline means records are only kept
// in memory.
func NewRunner(c Crawler, p *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		crawler:  c,
		pipeline: p,
		progress: progress.Nop{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.pipeline == nil {
		r.pipeline = New(WithLogger(r.logger))
	}

	return r
}

// batch is the state of one Run call. It records error outcomes handed
// over by the crawler.
type batch struct {
	runner *Runner
	ctx    context.Context
	log    *model.ResultLog
	errs   []error
}

// RecordFailure appends an error outcome at the moment the crawl fails.
func (b *batch) RecordFailure(seed string, outcome model.CrawlOutcome) {
	b.append(seed, outcome)
}

// append adds a record stamped now and runs the pipeline over the log.
func (b *batch) append(site string, outcome model.CrawlOutcome) {
	b.log.Append(model.NewResultRecord(site, outcome, b.runner.now()))
	if err := b.runner.pipeline.Execute(b.ctx, b.log); err != nil {
		b.runner.logger.Warn("failed to persist result", "site", site, "error", err)
		b.errs = append(b.errs, err)
	}
}

// Run crawls seeds in order and returns the records in append order.
//
// Seeds are prepared first: blank entries are skipped and a missing scheme
// becomes "http://". A failing site never stops the batch. Output errors
// are returned joined after the batch completes. When ctx is cancelled the
// batch stops before the next page and Run returns the records so far
// together with ctx.Err().
func (r *Runner) Run(ctx context.Context, seeds []string) ([]model.ResultRecord, error) {
	prepared := model.PrepareSeeds(seeds)
	b := &batch{
		runner: r,
		ctx:    ctx,
		log:    model.NewResultLog(),
	}

	r.logger.Info("starting batch", "sites", len(prepared))
	startTime := r.now()

	r.progress.Begin(len(prepared))
	defer r.progress.End()

	for i, seed := range prepared {
		if err := ctx.Err(); err != nil {
			return r.interrupted(b, err)
		}

		r.progress.Visit(i, seed)

		outcome, err := r.crawler.Crawl(ctx, seed, b)
		if err != nil {
			return r.interrupted(b, err)
		}

		// Error outcomes were appended by RecordFailure when they happened.
		if !outcome.IsError() {
			b.append(seed, outcome)
		}

		r.progress.Done(i, seed, outcome)
	}

	r.logger.Info("batch complete",
		"sites", len(prepared),
		"elapsed", r.now().Sub(startTime),
	)

	return b.log.Records(), errors.Join(b.errs...)
}

// interrupted ends a cancelled batch.
func (r *Runner) interrupted(b *batch, err error) ([]model.ResultRecord, error) {
	r.logger.Warn("batch interrupted", "completed", b.log.Len(), "reason", err)
	return b.log.Records(), errors.Join(append([]error{err}, b.errs...)...)
}
