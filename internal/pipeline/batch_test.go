package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/nao1215/sightscan/internal/crawler"
	"github.com/nao1215/sightscan/internal/fetch"
	"github.com/nao1215/sightscan/internal/model"
	"github.com/nao1215/sightscan/internal/progress"
	"github.com/nao1215/sightscan/internal/report"
)

// scriptedCrawler returns canned outcomes per seed. Error outcomes are
// handed to the recorder the way crawler.Spider does it.
type scriptedCrawler struct {
	outcomes map[string]model.CrawlOutcome
	seeds    []string
	cancel   context.CancelFunc
	cancelAt string
}

func (s *scriptedCrawler) Crawl(ctx context.Context, seed string, recorder crawler.Recorder) (model.CrawlOutcome, error) {
	s.seeds = append(s.seeds, seed)
	if seed == s.cancelAt {
		s.cancel()
		return model.CrawlOutcome{}, ctx.Err()
	}
	outcome, ok := s.outcomes[seed]
	if !ok {
		outcome = model.NotFound()
	}
	if outcome.IsError() {
		recorder.RecordFailure(seed, outcome)
	}
	return outcome, nil
}

// progressEvents records progress calls.
type progressEvents struct {
	events []string
}

func (p *progressEvents) Begin(total int) {
	p.events = append(p.events, fmt.Sprintf("begin %d", total))
}

func (p *progressEvents) Visit(index int, site string) {
	p.events = append(p.events, fmt.Sprintf("visit %d %s", index, site))
}

func (p *progressEvents) Done(index int, site string, outcome model.CrawlOutcome) {
	p.events = append(p.events, fmt.Sprintf("done %d %s %s", index, site, outcome.Kind))
}

func (p *progressEvents) End() {
	p.events = append(p.events, "end")
}

// fixedClock returns t with a sub-second part, to check truncation.
func fixedClock() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 500, time.UTC)
}

func sites(records []model.ResultRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Site
	}
	return out
}

func TestNewRunner(t *testing.T) {
	t.Parallel()

	r := NewRunner(&scriptedCrawler{}, nil)
	if r.pipeline == nil {
		t.Error("expected default pipeline")
	}
	if r.logger == nil {
		t.Error("expected default logger")
	}
	if _, ok := r.progress.(progress.Nop); !ok {
		t.Errorf("expected progress.Nop by default, got %T", r.progress)
	}

	// nil options keep defaults
	r = NewRunner(&scriptedCrawler{}, nil, WithProgress(nil), WithClock(nil))
	if _, ok := r.progress.(progress.Nop); !ok || r.now == nil {
		t.Error("nil options must keep defaults")
	}

	// a batch without a progress sink still runs
	records, err := r.Run(context.Background(), []string{"http://a.com"})
	if err != nil || len(records) != 1 {
		t.Errorf("expected one record and no error, got %d records, %v", len(records), err)
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("records one row per seed in order", func(t *testing.T) {
		t.Parallel()

		c := &scriptedCrawler{outcomes: map[string]model.CrawlOutcome{
			"http://a.com": model.Failed("Error loading http://a.com: boom"),
			"http://c.com": model.Found(model.EmbedMatch{EmbedURL: "https://sightmap.com/embed/x", DiscoveredAt: "http://c.com"}),
		}}
		r := NewRunner(c, nil, WithBatchLogger(quietLogger()), WithClock(fixedClock))

		records, err := r.Run(context.Background(), []string{"http://a.com", "b.com", "  ", "http://c.com"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{"http://a.com", "http://b.com", "http://c.com"}
		if got := sites(records); !slices.Equal(got, want) {
			t.Fatalf("sites = %v, want %v", got, want)
		}
		if !records[0].Outcome.IsError() {
			t.Errorf("expected first record error, got %v", records[0].Outcome.Kind)
		}
		if records[1].Outcome.Kind != model.OutcomeNotFound {
			t.Errorf("expected second record not found, got %v", records[1].Outcome.Kind)
		}
		if !records[2].Outcome.IsFound() {
			t.Errorf("expected third record found, got %v", records[2].Outcome.Kind)
		}
		if records[0].Timestamp.Nanosecond() != 0 {
			t.Errorf("expected second precision, got %v", records[0].Timestamp)
		}
	})

	t.Run("reports progress around each seed", func(t *testing.T) {
		t.Parallel()

		c := &scriptedCrawler{outcomes: map[string]model.CrawlOutcome{
			"http://a.com": model.Failed("boom"),
		}}
		p := &progressEvents{}
		r := NewRunner(c, nil, WithBatchLogger(quietLogger()), WithProgress(p))

		if _, err := r.Run(context.Background(), []string{"http://a.com", "http://b.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []string{
			"begin 2",
			"visit 0 http://a.com",
			"done 0 http://a.com error",
			"visit 1 http://b.com",
			"done 1 http://b.com not_found",
			"end",
		}
		if !slices.Equal(p.events, want) {
			t.Errorf("events = %v\nwant %v", p.events, want)
		}
	})

	t.Run("runs the pipeline after every append", func(t *testing.T) {
		t.Parallel()

		step := &mockStep{name: "count"}
		p := New(WithLogger(quietLogger()))
		p.AddStep(step)

		c := &scriptedCrawler{outcomes: map[string]model.CrawlOutcome{
			"http://b.com": model.Failed("boom"),
		}}
		r := NewRunner(c, p, WithBatchLogger(quietLogger()))

		if _, err := r.Run(context.Background(), []string{"http://a.com", "http://b.com", "http://c.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !slices.Equal(step.seen, []int{1, 2, 3}) {
			t.Errorf("pipeline saw log lengths %v, want [1 2 3]", step.seen)
		}
	})

	t.Run("sink errors do not stop the batch", func(t *testing.T) {
		t.Parallel()

		errDisk := errors.New("disk full")
		p := New(WithLogger(quietLogger()))
		p.AddStep(&mockStep{name: "csv", err: errDisk})

		c := &scriptedCrawler{}
		r := NewRunner(c, p, WithBatchLogger(quietLogger()))

		records, err := r.Run(context.Background(), []string{"http://a.com", "http://b.com"})
		if !errors.Is(err, errDisk) {
			t.Fatalf("expected disk error, got %v", err)
		}
		if len(records) != 2 || len(c.seeds) != 2 {
			t.Errorf("expected both seeds crawled, got records=%d seeds=%d", len(records), len(c.seeds))
		}
	})

	t.Run("cancellation returns records so far", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c := &scriptedCrawler{cancel: cancel, cancelAt: "http://b.com"}
		p := &progressEvents{}
		r := NewRunner(c, nil, WithBatchLogger(quietLogger()), WithProgress(p))

		records, err := r.Run(ctx, []string{"http://a.com", "http://b.com", "http://c.com"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if got := sites(records); !slices.Equal(got, []string{"http://a.com"}) {
			t.Errorf("records = %v", got)
		}
		if slices.Contains(c.seeds, "http://c.com") {
			t.Error("seed after cancellation must not be crawled")
		}
		if p.events[len(p.events)-1] != "end" {
			t.Errorf("expected End after interruption, got %v", p.events)
		}
	})

	t.Run("already cancelled context crawls nothing", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := &scriptedCrawler{}
		records, err := NewRunner(c, nil, WithBatchLogger(quietLogger())).Run(ctx, []string{"http://a.com"})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if len(records) != 0 || len(c.seeds) != 0 {
			t.Errorf("expected nothing crawled, got records=%d seeds=%d", len(records), len(c.seeds))
		}
	})

	t.Run("empty seed list", func(t *testing.T) {
		t.Parallel()

		records, err := NewRunner(&scriptedCrawler{}, nil, WithBatchLogger(quietLogger())).Run(context.Background(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("expected no records, got %d", len(records))
		}
	})
}

// TestRunner_WithSpider runs the real crawler against an in-memory site.
func TestRunner_WithSpider(t *testing.T) {
	t.Parallel()

	errRefused := errors.New("connection refused")
	fetcher := fetch.FetcherFunc(func(_ context.Context, pageURL string) (string, error) {
		switch pageURL {
		case "http://a.com":
			return "", errRefused
		case "http://b.com":
			return `<html><body><a href="/about">about</a></body></html>`, nil
		default:
			return "<html><body></body></html>", nil
		}
	})
	spider := crawler.NewSpider(fetcher, crawler.WithLogger(quietLogger()))

	var buf bytes.Buffer
	p := New(WithLogger(quietLogger()))
	p.AddStep(NewWriteStep("csv", report.NewCSVWriter(&buf)))

	records, err := NewRunner(spider, p, WithBatchLogger(quietLogger())).
		Run(context.Background(), []string{"http://a.com", "http://b.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Site != "http://a.com" || !records[0].Outcome.IsError() {
		t.Errorf("first record = %+v", records[0])
	}
	if want := "Error loading http://a.com: connection refused"; records[0].Outcome.Message != want {
		t.Errorf("message = %q, want %q", records[0].Outcome.Message, want)
	}
	if records[1].Site != "http://b.com" || records[1].Outcome.Kind != model.OutcomeNotFound {
		t.Errorf("second record = %+v", records[1])
	}

	// A bytes.Buffer keeps every rewrite, so both snapshots are present.
	if got := bytes.Count(buf.Bytes(), []byte("Website,")); got != 2 {
		t.Errorf("expected 2 CSV snapshots, got %d", got)
	}
}
