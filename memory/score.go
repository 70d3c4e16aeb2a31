package memory

import "strings"

// tokenize lowercases and splits on non-letter/digit runs, used by both
// backing stores' Search implementation.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// distance scores query against doc as a deterministic token-overlap
// distance in [0,1]: 0 means every query token appears in doc, 1 means
// none do. This stands in for the out-of-scope embedding-based vector
// search (spec.md §1's Non-goals), giving Search a real, reproducible
// ranking signal instead of a stub that always returns the same order.
func distance(query, doc string) float64 {
	q := tokenize(query)
	if len(q) == 0 {
		return 1
	}
	d := tokenize(doc)
	matches := 0
	for tok := range q {
		if d[tok] {
			matches++
		}
	}
	return 1 - float64(matches)/float64(len(q))
}
