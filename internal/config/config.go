package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/sightscan/internal/urlnorm"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sightscan"

	// DefaultOutput is the result file written when no output is configured.
	// The name is kept so that existing trackers keep updating the same file.
	DefaultOutput = "SightMap Tracker Results.csv"

	// DefaultPageLoadTimeout bounds a single page load. A page that takes
	// longer is a load failure for its site.
	DefaultPageLoadTimeout = 10 * time.Second

	// DefaultReadyTimeout is how long to wait for document.readyState to
	// become "complete". Exceeding it is not an error.
	DefaultReadyTimeout = 3 * time.Second

	// DefaultSettleDelay gives scripts time to inject frames after the
	// document is ready.
	DefaultSettleDelay = 1 * time.Second

	// DefaultMaxPathDepth keeps the crawl on top-level pages such as /about.
	DefaultMaxPathDepth = 1

	// DefaultMaxBodySize limits the response body read by the http renderer.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB
)

// Renderers.
const (
	// RendererChrome loads pages in headless Chrome so that script-injected
	// frames are visible.
	RendererChrome = "chrome"

	// RendererHTTP fetches raw HTML without running scripts.
	RendererHTTP = "http"
)

// Config holds all configuration options for SightScan.
// This struct is populated from the config file and CLI flags and passed
// through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable.
type Config struct {
	// Seeds is the list of site URLs to check, in order.
	Seeds []string

	// Outputs are the result files rewritten after every site. The format
	// of each is chosen by its extension (.csv, .xlsx, .md, .json).
	Outputs []string

	// Renderer selects how pages are loaded: RendererChrome or RendererHTTP.
	Renderer string

	// Headless runs Chrome without a window. Only used by RendererChrome.
	Headless bool

	// ChromePath is the browser executable. Empty means search the PATH.
	ChromePath string

	// UserAgent overrides the User-Agent header. Empty keeps the renderer default.
	UserAgent string

	// PageLoadTimeout bounds each page load.
	PageLoadTimeout time.Duration

	// ReadyTimeout is the wait for document.readyState == "complete".
	ReadyTimeout time.Duration

	// SettleDelay is slept after the ready wait.
	SettleDelay time.Duration

	// MaxBodySize caps the body read by RendererHTTP. 0 uses the default.
	MaxBodySize int64

	// Normalization selects the URL dedup strategy: "literal" or "host".
	Normalization string

	// MaxPathDepth is the deepest link path followed. Depth 1 allows /about
	// but not /about/team.
	MaxPathDepth int

	// MaxPages is the page budget per site. 0 means no limit.
	MaxPages int

	// IgnorePatterns are glob patterns for links that are never fetched.
	IgnorePatterns []string

	// EmbedSignature is the iframe src substring that marks the widget.
	// Empty keeps the SightMap default.
	EmbedSignature string

	// APIMarker is the src substring that marks API usage.
	// Empty keeps the default.
	APIMarker string

	// SaveHistory stores every record in the history database.
	SaveHistory bool

	// DBDir is the directory of the history database.
	// Defaults to XDG data directory (~/.local/share/sightscan on Linux).
	DBDir string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sightscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONLog switches log output to JSON lines.
	JSONLog bool

	// NoProgress disables the progress spinner.
	NoProgress bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, headless mode).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Outputs:         []string{DefaultOutput},
		Renderer:        RendererChrome,
		Headless:        true,
		PageLoadTimeout: DefaultPageLoadTimeout,
		ReadyTimeout:    DefaultReadyTimeout,
		SettleDelay:     DefaultSettleDelay,
		MaxBodySize:     DefaultMaxBodySize,
		Normalization:   urlnorm.StrategyLiteral,
		MaxPathDepth:    DefaultMaxPathDepth,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for SightScan.
// On Linux: ~/.local/share/sightscan
// On macOS: ~/Library/Application Support/sightscan
// On Windows: %LOCALAPPDATA%\sightscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for SightScan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, before a browser is started. The first error
// found is returned because fixing one often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}

	if len(c.Outputs) == 0 {
		return ErrNoOutput
	}

	if c.PageLoadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.ReadyTimeout < 0 {
		return ErrInvalidReadyTimeout
	}

	if c.SettleDelay < 0 {
		return ErrInvalidSettleDelay
	}

	if c.Renderer != RendererChrome && c.Renderer != RendererHTTP {
		return ErrInvalidRenderer
	}

	if _, err := urlnorm.ByName(c.Normalization); err != nil {
		return ErrInvalidNormalization
	}

	if c.MaxPathDepth < 0 {
		return ErrInvalidMaxPathDepth
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// Normalizer returns the URL normalization function selected by
// Normalization. Unknown names fall back to the literal strategy.
func (c *Config) Normalizer() urlnorm.Func {
	if fn, err := urlnorm.ByName(c.Normalization); err == nil {
		return fn
	}
	return urlnorm.Normalize
}
