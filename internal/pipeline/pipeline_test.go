package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/sightscan/internal/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockStep is a test implementation of the Step interface.
type mockStep struct {
	name  string
	err   error
	calls *[]string
	seen  []int
}

func (m *mockStep) Name() string {
	return m.name
}

func (m *mockStep) Do(_ context.Context, log *model.ResultLog) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	m.seen = append(m.seen, log.Len())
	return m.err
}

func logWith(sites ...string) *model.ResultLog {
	log := model.NewResultLog()
	for _, site := range sites {
		log.Append(model.NewResultRecord(site, model.NotFound(), time.Unix(0, 0)))
	}
	return log
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with defaults", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if !p.continueOnError {
			t.Error("expected continueOnError to default to true")
		}
		if p.logger == nil {
			t.Error("expected default logger")
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		logger := quietLogger()
		p := New(WithLogger(logger), WithContinueOnError(false))
		if p.logger != logger {
			t.Error("expected custom logger")
		}
		if p.continueOnError {
			t.Error("expected continueOnError false")
		}
	})
}

// TestPipelineAddStep tests adding steps to the pipeline.
func TestPipelineAddStep(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddStep(&mockStep{name: "a"})
	p.AddSteps(&mockStep{name: "b"}, &mockStep{name: "c"})

	if p.StepCount() != 3 {
		t.Fatalf("expected 3 steps, got %d", p.StepCount())
	}
	if got := p.StepNames(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("StepNames() = %v", got)
	}
}

// TestPipelineExecute tests pipeline execution.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var calls []string
		p := New(WithLogger(quietLogger()))
		p.AddSteps(
			&mockStep{name: "first", calls: &calls},
			&mockStep{name: "second", calls: &calls},
		)

		if err := p.Execute(context.Background(), logWith("http://a.com")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(calls, []string{"first", "second"}) {
			t.Errorf("calls = %v", calls)
		}
	})

	t.Run("continues after a failing step by default", func(t *testing.T) {
		t.Parallel()

		var calls []string
		errDisk := errors.New("disk full")
		p := New(WithLogger(quietLogger()))
		p.AddSteps(
			&mockStep{name: "csv", err: errDisk, calls: &calls},
			&mockStep{name: "xlsx", calls: &calls},
		)

		err := p.Execute(context.Background(), logWith("http://a.com"))
		if !errors.Is(err, errDisk) {
			t.Fatalf("expected joined disk error, got %v", err)
		}
		if !slices.Equal(calls, []string{"csv", "xlsx"}) {
			t.Errorf("expected both steps to run, got %v", calls)
		}
	})

	t.Run("stops on first error when configured", func(t *testing.T) {
		t.Parallel()

		var calls []string
		errDisk := errors.New("disk full")
		p := New(WithLogger(quietLogger()), WithContinueOnError(false))
		p.AddSteps(
			&mockStep{name: "csv", err: errDisk, calls: &calls},
			&mockStep{name: "xlsx", calls: &calls},
		)

		err := p.Execute(context.Background(), logWith("http://a.com"))
		if !errors.Is(err, errDisk) {
			t.Fatalf("expected disk error, got %v", err)
		}
		if !slices.Equal(calls, []string{"csv"}) {
			t.Errorf("expected only first step, got %v", calls)
		}
	})

	t.Run("runs even when context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		step := &mockStep{name: "csv"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		if err := p.Execute(ctx, logWith("http://a.com")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(step.seen) != 1 {
			t.Errorf("expected step to run once, ran %d times", len(step.seen))
		}
	})

	t.Run("empty pipeline", func(t *testing.T) {
		t.Parallel()

		if err := New().Execute(context.Background(), model.NewResultLog()); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
