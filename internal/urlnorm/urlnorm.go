package urlnorm

import (
	"fmt"
	"net/url"
	"strings"
)

// Func maps a URL to its deduplication key.
type Func func(string) string

// Strategy names accepted by ByName.
const (
	StrategyLiteral = "literal"
	StrategyHost    = "host"
)

// wwwPrefix is the label stripped by both strategies.
const wwwPrefix = "www."

// Normalize lowercases rawURL, then removes every occurrence of "www." and
// all trailing slashes ("a.com//" -> "a.com").
//
// Removal of "www." repeats until none is left: deleting one occurrence can
// join its neighbours into a new one (e.g. "wwwww.w." -> "www."), and the
// key must be stable under repeated normalization.
func Normalize(rawURL string) string {
	s := strings.ToLower(rawURL)
	for strings.Contains(s, wwwPrefix) {
		s = strings.ReplaceAll(s, wwwPrefix, "")
	}
	return strings.TrimRight(s, "/")
}

// NormalizeHost lowercases rawURL, strips leading "www." labels from the
// host only, and removes trailing slashes from the path.
// Inputs that do not parse as URLs with a host fall back to lowercasing and
// trimming trailing slashes.
func NormalizeHost(rawURL string) string {
	s := strings.ToLower(rawURL)

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimRight(s, "/")
	}

	for strings.HasPrefix(u.Host, wwwPrefix) {
		u.Host = strings.TrimPrefix(u.Host, wwwPrefix)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""

	return strings.TrimRight(u.String(), "/")
}

// ByName returns the normalization strategy with the given name.
// An empty name selects the literal strategy.
func ByName(name string) (Func, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyLiteral:
		return Normalize, nil
	case StrategyHost:
		return NormalizeHost, nil
	default:
		return nil, fmt.Errorf("unknown normalization strategy %q (want %q or %q)", name, StrategyLiteral, StrategyHost)
	}
}
