package model

import (
	"testing"
	"time"
)

func TestNewResultRecordTruncatesToSecond(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 14, 9, 26, 53, 589793238, time.UTC)
	rec := NewResultRecord("http://a.com", NotFound(), at)

	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if !rec.Timestamp.Equal(want) {
		t.Errorf("expected %v, got %v", want, rec.Timestamp)
	}
}

func TestResultLog(t *testing.T) {
	t.Parallel()

	t.Run("starts empty", func(t *testing.T) {
		t.Parallel()
		l := NewResultLog()
		if l.Len() != 0 {
			t.Errorf("expected empty log, got %d", l.Len())
		}
		if _, ok := l.Last(); ok {
			t.Error("expected no last record")
		}
	})

	t.Run("appends in order", func(t *testing.T) {
		t.Parallel()
		l := NewResultLog()
		now := time.Now()
		l.Append(NewResultRecord("http://a.com", Failed("boom"), now))
		l.Append(NewResultRecord("http://b.com", NotFound(), now))

		records := l.Records()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0].Site != "http://a.com" || records[1].Site != "http://b.com" {
			t.Errorf("unexpected order: %v, %v", records[0].Site, records[1].Site)
		}

		last, ok := l.Last()
		if !ok || last.Site != "http://b.com" {
			t.Errorf("unexpected last record: %+v", last)
		}
	})

	t.Run("records returns a copy", func(t *testing.T) {
		t.Parallel()
		l := NewResultLog()
		l.Append(NewResultRecord("http://a.com", NotFound(), time.Now()))

		records := l.Records()
		records[0].Site = "mutated"

		if l.Records()[0].Site != "http://a.com" {
			t.Error("mutating the returned slice changed the log")
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	now := time.Now()
	records := []ResultRecord{
		NewResultRecord("a", Found(EmbedMatch{EmbedURL: "x"}), now),
		NewResultRecord("b", NotFound(), now),
		NewResultRecord("c", NotFound(), now),
		NewResultRecord("d", Failed("e"), now),
	}

	s := Summarize(records)
	if s.Total != 4 || s.Found != 1 || s.NotFound != 2 || s.Errors != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
}
