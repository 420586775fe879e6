package fetch

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher loads a page and returns its (rendered) HTML.
//
// Design decision: We return the document as a string rather than an
// io.Reader because:
//  1. chromedp hands us a string already
//  2. The crawler parses each page exactly once, in full
//  3. It keeps fake fetchers in tests trivial
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, pageURL string) (string, error)

// Fetch calls f(ctx, pageURL).
func (f FetcherFunc) Fetch(ctx context.Context, pageURL string) (string, error) {
	return f(ctx, pageURL)
}

// Error reports a failure to load a single URL.
// Navigation failures, timeouts, driver errors and unreadable documents are
// all reported as Error; there is no distinction between transient and
// permanent failures.
type Error struct {
	// URL is the page that failed to load.
	URL string

	// Err is the underlying cause.
	Err error
}

// Error returns "Error loading <url>: <cause>".
func (e *Error) Error() string {
	return fmt.Sprintf("Error loading %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap converts err into an *Error for pageURL.
// It returns nil for a nil err and returns err unchanged when it already is an
// *Error, so wrapping twice does not nest messages.
func Wrap(pageURL string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		return err
	}
	return &Error{URL: pageURL, Err: err}
}
