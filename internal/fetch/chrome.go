package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// Default waits for ChromeFetcher.
const (
	// DefaultReadyTimeout bounds the wait for document.readyState to become
	// "complete" after navigation. Reaching it is not an error.
	DefaultReadyTimeout = 3 * time.Second

	// DefaultSettleDelay is slept after the ready wait so that scripts that
	// inject iframes late get a chance to run.
	DefaultSettleDelay = 1 * time.Second

	// readyPollInterval is how often document.readyState is polled.
	readyPollInterval = 100 * time.Millisecond
)

// ChromeFetcher renders pages in one shared headless Chrome tab.
//
// Design decision: We keep a single tab for the whole batch rather than a
// tab per page because:
//  1. Starting tabs is the most expensive part of a fetch
//  2. Pages are fetched strictly one at a time anyway
//  3. The browser is a shared mutable resource; one tab avoids any need for
//     locking
type ChromeFetcher struct {
	// ctx is the chromedp context that owns the tab.
	ctx context.Context

	// cancel closes the tab and the browser.
	cancel context.CancelFunc

	// allocCancel stops the Chrome process.
	allocCancel context.CancelFunc

	// pageLoadTimeout is the hard limit for loading one page.
	pageLoadTimeout time.Duration

	// readyTimeout bounds the wait for document.readyState == "complete".
	readyTimeout time.Duration

	// settleDelay is slept after the ready wait.
	settleDelay time.Duration

	// headless runs Chrome without a window.
	headless bool

	// userAgent overrides Chrome's User-Agent when non-empty.
	userAgent string

	// execPath overrides the Chrome binary when non-empty.
	execPath string

	// logger receives chromedp diagnostics at debug level.
	logger *slog.Logger
}

// ChromeOption configures a ChromeFetcher.
type ChromeOption func(*ChromeFetcher)

// WithPageLoadTimeout sets the hard limit for loading one page.
func WithPageLoadTimeout(d time.Duration) ChromeOption {
	return func(f *ChromeFetcher) {
		if d > 0 {
			f.pageLoadTimeout = d
		}
	}
}

// WithReadyTimeout sets how long to wait for the document to become ready.
func WithReadyTimeout(d time.Duration) ChromeOption {
	return func(f *ChromeFetcher) {
		if d >= 0 {
			f.readyTimeout = d
		}
	}
}

// WithSettleDelay sets the pause after the ready wait.
func WithSettleDelay(d time.Duration) ChromeOption {
	return func(f *ChromeFetcher) {
		if d >= 0 {
			f.settleDelay = d
		}
	}
}

// WithHeadless toggles headless mode. Headless is the default.
func WithHeadless(headless bool) ChromeOption {
	return func(f *ChromeFetcher) {
		f.headless = headless
	}
}

// WithChromeUserAgent overrides the browser's User-Agent.
func WithChromeUserAgent(ua string) ChromeOption {
	return func(f *ChromeFetcher) {
		f.userAgent = ua
	}
}

// WithExecPath sets the Chrome binary to launch.
func WithExecPath(path string) ChromeOption {
	return func(f *ChromeFetcher) {
		f.execPath = path
	}
}

// WithChromeLogger sets the logger for chromedp diagnostics.
func WithChromeLogger(logger *slog.Logger) ChromeOption {
	return func(f *ChromeFetcher) {
		f.logger = logger
	}
}

// NewChromeFetcher launches Chrome and opens the tab used for all fetches.
// The caller must call Close when done, even if every fetch failed.
func NewChromeFetcher(opts ...ChromeOption) (*ChromeFetcher, error) {
	f := &ChromeFetcher{
		pageLoadTimeout: DefaultPageLoadTimeout,
		readyTimeout:    DefaultReadyTimeout,
		settleDelay:     DefaultSettleDelay,
		headless:        true,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if !f.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if f.userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(f.userAgent))
	}
	if f.execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(f.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithErrorf(f.debugf),
		chromedp.WithLogf(f.debugf),
	)

	// Running no actions starts the browser and opens the tab.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	f.ctx = ctx
	f.cancel = cancel
	f.allocCancel = allocCancel

	return f, nil
}

// Fetch navigates the shared tab to pageURL and returns the rendered HTML.
//
// The sequence mirrors what a user sees: navigate (bounded by the page-load
// timeout), wait up to the ready timeout for document.readyState to become
// "complete", sleep the settle delay, then serialize the DOM.
func (f *ChromeFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	runCtx, cancel := context.WithTimeout(f.ctx, f.pageLoadTimeout)
	defer cancel()

	// The tab context does not descend from ctx, so forward cancellation.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, chromedp.Navigate(pageURL)); err != nil {
		return "", Wrap(pageURL, f.explain(err))
	}

	f.waitReady(runCtx)

	var html string
	if err := chromedp.Run(runCtx,
		chromedp.Sleep(f.settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", Wrap(pageURL, f.explain(err))
	}

	return html, nil
}

// waitReady polls document.readyState until it is "complete" or the ready
// timeout expires. Expiry is deliberately silent: slow pages are still
// inspected with whatever has rendered.
func (f *ChromeFetcher) waitReady(ctx context.Context) {
	waitCtx, cancel := context.WithTimeout(ctx, f.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		var state string
		err := chromedp.Run(waitCtx, chromedp.Evaluate(`document.readyState`, &state))
		if err == nil && state == "complete" {
			return
		}

		select {
		case <-waitCtx.Done():
			f.logger.Debug("document not ready before timeout", "state", state)
			return
		case <-ticker.C:
		}
	}
}

// explain turns a bare deadline error into a message naming the timeout.
func (f *ChromeFetcher) explain(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("page load timed out after %s: %w", f.pageLoadTimeout, err)
	}
	return err
}

// debugf forwards chromedp's printf-style diagnostics to the logger.
func (f *ChromeFetcher) debugf(format string, args ...any) {
	f.logger.Debug("chromedp", "message", fmt.Sprintf(format, args...))
}

// Close closes the tab and stops Chrome. It is safe to call more than once.
func (f *ChromeFetcher) Close() error {
	if f.cancel == nil {
		return nil
	}

	err := chromedp.Cancel(f.ctx)
	f.cancel()
	f.allocCancel()
	f.cancel = nil

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
