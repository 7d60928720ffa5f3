package domain

import "strings"

// MaxSearchHistory is the number of recent queries kept per visitor.
const MaxSearchHistory = 5

// SearchHistory holds recent free-text queries, newest first, without
// duplicates.
type SearchHistory []string

// Push records a submitted query. Blank queries and queries already present
// leave the history unchanged. It reports whether the history changed.
func (h SearchHistory) Push(query string) (SearchHistory, bool) {
	q := strings.TrimSpace(query)
	if q == "" || h.Contains(q) {
		return h, false
	}
	keep := h
	if len(keep) > MaxSearchHistory-1 {
		keep = keep[:MaxSearchHistory-1]
	}
	out := make(SearchHistory, 0, len(keep)+1)
	out = append(out, q)
	out = append(out, keep...)
	return out, true
}

// Remove drops a single query. It reports whether the history changed.
func (h SearchHistory) Remove(query string) (SearchHistory, bool) {
	out := make(SearchHistory, 0, len(h))
	for _, item := range h {
		if item != query {
			out = append(out, item)
		}
	}
	return out, len(out) != len(h)
}

func (h SearchHistory) Contains(query string) bool {
	for _, item := range h {
		if item == query {
			return true
		}
	}
	return false
}

// Sanitize trims, deduplicates and caps a history read from storage.
func (h SearchHistory) Sanitize() SearchHistory {
	out := make(SearchHistory, 0, len(h))
	for _, item := range h {
		q := strings.TrimSpace(item)
		if q == "" || out.Contains(q) {
			continue
		}
		out = append(out, q)
		if len(out) == MaxSearchHistory {
			break
		}
	}
	return out
}
