package model

import (
	"testing"
	"time"
)

func TestCompare(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	found := func(embed string, api bool) CrawlOutcome {
		return Found(EmbedMatch{EmbedURL: embed, APIUsage: api, DiscoveredAt: "http://a.com"})
	}

	tests := []struct {
		name string
		prev CrawlOutcome
		cur  CrawlOutcome
		want ChangeKind
	}{
		{"widget appeared", NotFound(), found("e1", false), ChangeIntegrated},
		{"widget appeared after failure", Failed("boom"), found("e1", false), ChangeIntegrated},
		{"widget removed", found("e1", false), NotFound(), ChangeRemoved},
		{"embed url changed", found("e1", false), found("e2", false), ChangeUpdated},
		{"api usage changed", found("e1", false), found("e1", true), ChangeUpdated},
		{"same embed", found("e1", true), found("e1", true), ChangeUnchanged},
		{"site went down", found("e1", false), Failed("boom"), ChangeUnreachable},
		{"still failing", Failed("a"), Failed("b"), ChangeUnchanged},
		{"still absent", NotFound(), NotFound(), ChangeUnchanged},
		{"recovered without widget", Failed("boom"), NotFound(), ChangeUnchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			prev := NewResultRecord("http://a.com", tt.prev, at)
			cur := NewResultRecord("http://a.com", tt.cur, at.Add(time.Hour))

			got := Compare(prev, cur)
			if got.Kind != tt.want {
				t.Errorf("Compare() kind = %q, want %q", got.Kind, tt.want)
			}
			if got.Site != "http://a.com" {
				t.Errorf("Compare() site = %q", got.Site)
			}
		})
	}
}
