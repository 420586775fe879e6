package model

// ChangeKind describes how a site's status moved between two checks.
type ChangeKind string

const (
	// ChangeIntegrated means the widget appeared.
	ChangeIntegrated ChangeKind = "integrated"

	// ChangeRemoved means the widget disappeared.
	ChangeRemoved ChangeKind = "removed"

	// ChangeUpdated means the widget is still present but its embed URL or
	// API usage differs.
	ChangeUpdated ChangeKind = "updated"

	// ChangeUnreachable means the site failed to load this time.
	ChangeUnreachable ChangeKind = "unreachable"

	// ChangeUnchanged means nothing relevant changed.
	ChangeUnchanged ChangeKind = "unchanged"
)

// Change compares two checks of the same site.
type Change struct {
	Site     string       `json:"site"`
	Kind     ChangeKind   `json:"kind"`
	Previous ResultRecord `json:"previous"`
	Current  ResultRecord `json:"current"`
}

// Compare reports how current differs from previous.
func Compare(previous, current ResultRecord) Change {
	return Change{
		Site:     current.Site,
		Kind:     changeKind(previous.Outcome, current.Outcome),
		Previous: previous,
		Current:  current,
	}
}

func changeKind(prev, cur CrawlOutcome) ChangeKind {
	switch {
	case cur.IsError() && !prev.IsError():
		return ChangeUnreachable
	case cur.IsFound() && !prev.IsFound():
		return ChangeIntegrated
	case prev.IsFound() && cur.Kind == OutcomeNotFound:
		return ChangeRemoved
	case prev.IsFound() && cur.IsFound():
		if prev.Match.EmbedURL != cur.Match.EmbedURL || prev.Match.APIUsage != cur.Match.APIUsage {
			return ChangeUpdated
		}
	}
	return ChangeUnchanged
}
