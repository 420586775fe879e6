package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/sightscan/internal/model"
)

// Step persists or publishes the result log. Steps run after every append,
// so each one sees the log grow by exactly one record per call.
//
// Design decision: Steps are an interface with a name rather than plain
// funcs:
// 1. File and history steps hold their writer or store
// 2. Failures are reported with the step name, which names the output file
type Step interface {
	// Do handles the current log. The record that triggered the call is
	// log.Last().
	Do(ctx context.Context, log *model.ResultLog) error

	// Name identifies the step in logs and errors.
	Name() string
}

// Pipeline runs its steps in insertion order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later steps running after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for step failures. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError controls whether a failing step stops the remaining
// steps. It defaults to true: one unwritable output file must not keep the
// record from reaching the other outputs.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New returns an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{continueOnError: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against log. Step errors are prefixed with the
// step name. Unless continueOnError is off, all of them are returned joined.
//
// ctx is passed through but not checked here: the record already exists,
// and an interrupted batch must still leave complete output files behind.
func (p *Pipeline) Execute(ctx context.Context, log *model.ResultLog) error {
	var errs []error
	for _, step := range p.steps {
		err := step.Do(ctx, log)
		if err == nil {
			p.logger.Debug("output updated", "step", step.Name(), "records", log.Len())
			continue
		}

		p.logger.Error("output failed", "step", step.Name(), "error", err)
		err = fmt.Errorf("%s: %w", step.Name(), err)
		if !p.continueOnError {
			return err
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
