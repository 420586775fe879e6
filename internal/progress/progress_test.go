package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nao1215/sightscan/internal/model"
)

func TestSpinner(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewSpinner(&buf)

	p.Begin(2)
	if got := p.Suffix(); got != " 0/2 sites" {
		t.Errorf("unexpected suffix %q", got)
	}

	p.Visit(0, "http://a.com")
	if got := p.Suffix(); got != " [1/2] checking http://a.com" {
		t.Errorf("unexpected suffix %q", got)
	}

	p.Done(0, "http://a.com", model.Found(model.EmbedMatch{EmbedURL: "x", APIUsage: true}))
	if got := p.Suffix(); !strings.Contains(got, "integrated (API)") || !strings.Contains(got, "(1 integrated)") {
		t.Errorf("unexpected suffix %q", got)
	}

	p.Visit(1, "http://b.com")
	p.Done(1, "http://b.com", model.Failed("Error loading http://b.com: boom"))
	if got := p.Suffix(); !strings.Contains(got, "[2/2] http://b.com: error") {
		t.Errorf("unexpected suffix %q", got)
	}

	// Stopping a spinner that never drew (not a terminal) must not block.
	p.End()
}

func TestPlain(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPlain(&buf)

	p.Begin(3)
	p.Visit(0, "http://a.com")
	p.Done(0, "http://a.com", model.NotFound())
	p.Done(1, "http://b.com", model.Found(model.EmbedMatch{EmbedURL: "x"}))
	p.Done(2, "http://c.com", model.Failed("Error loading http://c.com: boom"))
	p.End()

	want := "[1/3] http://a.com: not integrated\n" +
		"[2/3] http://b.com: integrated\n" +
		"[3/3] http://c.com: error\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestNop(t *testing.T) {
	t.Parallel()

	var p Nop
	p.Begin(1)
	p.Visit(0, "http://a.com")
	p.Done(0, "http://a.com", model.NotFound())
	p.End()
}
