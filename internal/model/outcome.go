package model

import (
	"fmt"
	"strings"
)

// OutcomeKind identifies which of the three crawl results a CrawlOutcome holds.
//
// Design decision: We use iota-based constants rather than string constants
// for cheap comparisons. The String() method provides the stable textual form
// used in the history database and JSON output.
type OutcomeKind int

const (
	// OutcomeNotFound means every reachable page was inspected and none
	// embedded the widget.
	OutcomeNotFound OutcomeKind = iota

	// OutcomeFound means a page embedded the widget. The crawl stopped there.
	OutcomeFound

	// OutcomeError means a page could not be loaded. The crawl for the seed
	// stopped at that page.
	OutcomeError
)

// String returns a stable lowercase name for the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeFound:
		return "found"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *OutcomeKind) UnmarshalText(text []byte) error {
	kind, err := ParseOutcomeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseOutcomeKind converts the output of OutcomeKind.String back to a kind.
func ParseOutcomeKind(s string) (OutcomeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "not_found":
		return OutcomeNotFound, nil
	case "found":
		return OutcomeFound, nil
	case "error":
		return OutcomeError, nil
	default:
		return OutcomeNotFound, fmt.Errorf("unknown outcome kind %q", s)
	}
}

// EmbedMatch describes the first embedded widget frame found for a site.
// It is created once by the detector and never modified afterwards.
type EmbedMatch struct {
	// EmbedURL is the src attribute of the matching iframe.
	EmbedURL string `json:"embed_url"`

	// APIUsage reports whether the embed URL enables the widget API
	// (its src contains the API marker, "?enable" by default).
	APIUsage bool `json:"api_usage"`

	// DiscoveredAt is the URL of the page that contained the frame.
	// This is the page being inspected, not necessarily the seed.
	DiscoveredAt string `json:"discovered_at"`
}

// CrawlOutcome is the result of crawling one seed.
// Exactly one outcome exists per seed once its crawl has completed.
//
// Design decision: We model the tagged union as a kind plus optional payload
// fields rather than an interface hierarchy because:
//  1. It serializes directly to JSON and SQLite columns
//  2. Callers switch on Kind, which the compiler can lint for exhaustiveness
//  3. The payloads are tiny
type CrawlOutcome struct {
	// Kind selects which of the fields below are meaningful.
	Kind OutcomeKind `json:"kind"`

	// Match is set only when Kind is OutcomeFound.
	Match *EmbedMatch `json:"match,omitempty"`

	// Message is set only when Kind is OutcomeError. It holds the
	// human-readable failure, including the URL that failed to load.
	Message string `json:"message,omitempty"`

	// PagesVisited is the number of pages fetched (or attempted) for the seed.
	PagesVisited int `json:"pages_visited"`
}

// Found returns an outcome for a site that embeds the widget.
func Found(match EmbedMatch) CrawlOutcome {
	return CrawlOutcome{Kind: OutcomeFound, Match: &match}
}

// NotFound returns an outcome for a site without the widget.
func NotFound() CrawlOutcome {
	return CrawlOutcome{Kind: OutcomeNotFound}
}

// Failed returns an outcome for a site whose crawl aborted on a load failure.
func Failed(message string) CrawlOutcome {
	return CrawlOutcome{Kind: OutcomeError, Message: message}
}

// IsFound reports whether the outcome holds an embed match.
func (o CrawlOutcome) IsFound() bool {
	return o.Kind == OutcomeFound && o.Match != nil
}

// IsError reports whether the crawl aborted on a load failure.
func (o CrawlOutcome) IsError() bool {
	return o.Kind == OutcomeError
}

// Status returns the value of the "SightMap Integrated?" column:
// "Yes", "No", or the error message.
func (o CrawlOutcome) Status() string {
	switch o.Kind {
	case OutcomeFound:
		return "Yes"
	case OutcomeError:
		return o.Message
	default:
		return "No"
	}
}
