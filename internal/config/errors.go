package config

import "errors"

// Errors returned by Config.Validate and the loaders. The messages are
// shown to the user as is, so they say how to fix the problem.
var (
	// ErrNoSeeds is returned when no seed URL is given on the command line,
	// in a list file, or in the configuration file.
	ErrNoSeeds = errors.New("no seeds specified: provide URLs, use --list, or add seeds to the config file")

	// ErrNoOutput is returned when every output path has been removed.
	ErrNoOutput = errors.New("no output file specified")

	// ErrInvalidTimeout is returned when the page load timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid page load timeout: must be positive")

	// ErrInvalidReadyTimeout is returned when the ready wait is negative.
	// Use 0 to skip waiting for document.readyState.
	ErrInvalidReadyTimeout = errors.New("invalid ready timeout: must be non-negative")

	// ErrInvalidSettleDelay is returned when the settle delay is negative.
	ErrInvalidSettleDelay = errors.New("invalid settle delay: must be non-negative")

	// ErrInvalidRenderer is returned for a renderer other than chrome or http.
	ErrInvalidRenderer = errors.New("invalid renderer: must be \"chrome\" or \"http\"")

	// ErrInvalidNormalization is returned for an unknown normalization strategy.
	ErrInvalidNormalization = errors.New("invalid normalization: must be \"literal\" or \"host\"")

	// ErrInvalidMaxPathDepth is returned when the link path depth is negative.
	ErrInvalidMaxPathDepth = errors.New("invalid max path depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page budget is negative.
	// Use 0 for no limit.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
