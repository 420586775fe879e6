// Package log builds the slog loggers used by sightscan.
//
// Every logger is wrapped in a SecureHandler, which masks:
//   - request headers such as Cookie and Authorization
//   - attributes whose key mentions a password, token or secret
//   - values shaped like bearer tokens, JWTs or private keys
//   - user:password@ sections and token query parameters in logged URLs
//
// Crawled sites are third-party property websites, and their links
// sometimes carry session or tracking tokens. Masking happens even in
// verbose mode so logs can be shared in bug reports.
//
// Usage:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("fetching page", "url", pageURL)
package log
