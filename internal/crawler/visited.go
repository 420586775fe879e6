package crawler

import "github.com/nao1215/sightscan/internal/urlnorm"

// VisitedSet records the normalized URLs fetched during one crawl.
// It is owned by a single crawl and is not safe for concurrent use.
type VisitedSet struct {
	normalize urlnorm.Func
	seen      map[string]struct{}
	order     []string
}

// NewVisitedSet creates an empty set keyed by normalize. A nil normalize
// uses urlnorm.Normalize.
func NewVisitedSet(normalize urlnorm.Func) *VisitedSet {
	if normalize == nil {
		normalize = urlnorm.Normalize
	}
	return &VisitedSet{
		normalize: normalize,
		seen:      make(map[string]struct{}),
	}
}

// Visit marks rawURL as visited. It reports false when an equivalent URL
// was already visited.
func (v *VisitedSet) Visit(rawURL string) bool {
	key := v.normalize(rawURL)
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	v.order = append(v.order, key)
	return true
}

// Seen reports whether an equivalent URL was visited.
func (v *VisitedSet) Seen(rawURL string) bool {
	_, ok := v.seen[v.normalize(rawURL)]
	return ok
}

// Len returns the number of distinct URLs visited.
func (v *VisitedSet) Len() int {
	return len(v.seen)
}

// Keys returns the normalized URLs in visiting order.
func (v *VisitedSet) Keys() []string {
	keys := make([]string, len(v.order))
	copy(keys, v.order)
	return keys
}
