package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/nao1215/sightscan/internal/model"
)

// spinnerDelay is the animation speed of the spinner.
const spinnerDelay = 100 * time.Millisecond

// Spinner shows an animated status line for the site being crawled.
//
// Design decision: We use briandowns/spinner rather than a full terminal UI
// because:
//  1. Only one site is ever in flight, so one line is enough
//  2. The spinner turns itself off when output is not a terminal
//  3. Log lines written to stderr interleave cleanly with it
type Spinner struct {
	s     *spinner.Spinner
	out   io.Writer
	total int
	found int
	mu    sync.Mutex
}

// NewSpinner creates a Spinner that draws on w.
func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		s:   spinner.New(spinner.CharSets[9], spinnerDelay, spinner.WithWriter(w)),
		out: w,
	}
}

// Begin starts the animation for a batch of total sites.
func (p *Spinner) Begin(total int) {
	p.mu.Lock()
	p.total = total
	p.found = 0
	p.mu.Unlock()

	p.setSuffix(fmt.Sprintf(" 0/%d sites", total))
	p.s.Start()
}

// Visit shows which site is being crawled. index is zero based.
func (p *Spinner) Visit(index int, site string) {
	p.setSuffix(fmt.Sprintf(" [%d/%d] checking %s", index+1, p.totalSites(), site))
}

// Done records the outcome of a site.
func (p *Spinner) Done(index int, site string, outcome model.CrawlOutcome) {
	p.mu.Lock()
	if outcome.IsFound() {
		p.found++
	}
	found := p.found
	p.mu.Unlock()

	p.setSuffix(fmt.Sprintf(" [%d/%d] %s: %s (%d integrated)", index+1, p.totalSites(), site, shortStatus(outcome), found))
}

// End stops the animation and leaves a final line.
func (p *Spinner) End() {
	p.mu.Lock()
	final := fmt.Sprintf("Checked %d site(s), %d integrated\n", p.total, p.found)
	p.mu.Unlock()

	p.s.Lock()
	p.s.FinalMSG = final
	p.s.Unlock()
	p.s.Stop()
}

// Suffix returns the current status text.
func (p *Spinner) Suffix() string {
	p.s.Lock()
	defer p.s.Unlock()
	return p.s.Suffix
}

func (p *Spinner) setSuffix(suffix string) {
	p.s.Lock()
	p.s.Suffix = suffix
	p.s.Unlock()
}

func (p *Spinner) totalSites() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Plain prints one line per finished site.
type Plain struct {
	out   io.Writer
	total int
}

// NewPlain creates a Plain progress printer writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{out: w}
}

// Begin remembers the batch size.
func (p *Plain) Begin(total int) {
	p.total = total
}

// Visit is a no-op; Plain only reports finished sites.
func (p *Plain) Visit(int, string) {}

// Done prints the outcome of a site.
func (p *Plain) Done(index int, site string, outcome model.CrawlOutcome) {
	fmt.Fprintf(p.out, "[%d/%d] %s: %s\n", index+1, p.total, site, shortStatus(outcome))
}

// End is a no-op.
func (p *Plain) End() {}

// Nop discards all progress.
type Nop struct{}

// Begin does nothing.
func (Nop) Begin(int) {}

// Visit does nothing.
func (Nop) Visit(int, string) {}

// Done does nothing.
func (Nop) Done(int, string, model.CrawlOutcome) {}

// End does nothing.
func (Nop) End() {}

// shortStatus summarizes an outcome in a few words.
func shortStatus(o model.CrawlOutcome) string {
	switch o.Kind {
	case model.OutcomeFound:
		if o.Match.APIUsage {
			return "integrated (API)"
		}
		return "integrated"
	case model.OutcomeError:
		return "error"
	default:
		return "not integrated"
	}
}
