package model

import "strings"

// DefaultScheme is prepended to seeds that carry no http(s) scheme.
const DefaultScheme = "http://"

// PrepareSeed turns a raw seed entry into a crawlable start URL.
// It returns false for empty or whitespace-only entries, which are skipped.
// Seeds without an "http://" or "https://" prefix get DefaultScheme.
func PrepareSeed(raw string) (string, bool) {
	seed := strings.TrimSpace(raw)
	if seed == "" {
		return "", false
	}

	lower := strings.ToLower(seed)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		seed = DefaultScheme + seed
	}

	return seed, true
}

// PrepareSeeds applies PrepareSeed to each entry, preserving input order and
// dropping skipped entries. Duplicates are kept: each occurrence is a
// separate check.
func PrepareSeeds(raw []string) []string {
	seeds := make([]string, 0, len(raw))
	for _, r := range raw {
		if seed, ok := PrepareSeed(r); ok {
			seeds = append(seeds, seed)
		}
	}
	return seeds
}
