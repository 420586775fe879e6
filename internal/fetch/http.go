package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default values for HTTPFetcher.
const (
	// DefaultUserAgent is a desktop browser User-Agent. Several property
	// sites answer unknown agents with a bot wall instead of the real page.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultPageLoadTimeout bounds the time to load one page.
	DefaultPageLoadTimeout = 10 * time.Second
)

// HTTPFetcher fetches pages with a plain HTTP GET. JavaScript is not
// executed, so widgets injected at runtime are invisible to it.
type HTTPFetcher struct {
	// client performs the requests.
	client *http.Client

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits the number of body bytes read.
	maxBodySize int64

	// timeout bounds a single fetch including reading the body.
	timeout time.Duration
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithHTTPUserAgent sets the User-Agent header.
func WithHTTPUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize sets the maximum number of body bytes to read.
func WithMaxBodySize(size int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithHTTPTimeout sets the per-page timeout.
func WithHTTPTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// NewHTTPFetcher creates an HTTPFetcher with sensible defaults.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      http.DefaultClient,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		timeout:     DefaultPageLoadTimeout,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs a GET request and returns the body.
// Non-2xx responses are not errors: like a browser, the fetcher returns
// whatever document the server sent.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", Wrap(pageURL, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", Wrap(pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", Wrap(pageURL, fmt.Errorf("failed to read body: %w", err))
	}

	return string(body), nil
}

// Close is a no-op; it exists so HTTPFetcher and ChromeFetcher can be
// released the same way.
func (f *HTTPFetcher) Close() error {
	return nil
}
