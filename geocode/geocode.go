// Package geocode declares the geocoder collaborator contract the
// Validator depends on (spec.md §6), a mock, and a small deterministic
// gazetteer-backed implementation standing in for the out-of-scope live
// geocoding API.
package geocode

import (
	"context"
	"strings"
	"unicode"
)

// Candidate is a single resolved place.
type Candidate struct {
	Name      string
	Country   string
	Admin1    string
	Latitude  float64
	Longitude float64
	Timezone  string

	// AutopickedReason is set when the "Peru, Peru" heuristic (spec.md §9)
	// auto-selected this candidate: a country-name self-match with an
	// empty admin1.
	AutopickedReason string
}

// Result is what Geocode returns for a single place query.
type Result struct {
	Best       *Candidate
	Candidates []Candidate
	Ambiguous  bool
}

// Geocoder resolves a free-text place name into candidates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (Result, error)
}

// IsIATA reports whether place is exactly 3 letters, the IATA-bypass rule
// from spec.md §4.5/§6: IATA codes skip geocoding entirely.
func IsIATA(place string) bool {
	trimmed := strings.TrimSpace(place)
	if len(trimmed) != 3 {
		return false
	}
	for _, r := range trimmed {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsSuspiciousName reports whether raw looks like noise rather than a
// place name (spec.md §4.5): it contains digits, or is a single token of
// length >= 10 with a vowel ratio below 20%, or contains a run of 6+
// consonants.
func IsSuspiciousName(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return true
		}
	}

	isSingleToken := !strings.ContainsAny(trimmed, " \t")
	if isSingleToken && len(trimmed) >= 10 {
		vowels := 0
		letters := 0
		for _, r := range strings.ToLower(trimmed) {
			if !unicode.IsLetter(r) {
				continue
			}
			letters++
			switch r {
			case 'a', 'e', 'i', 'o', 'u':
				vowels++
			}
		}
		if letters > 0 && float64(vowels)/float64(letters) < 0.20 {
			return true
		}
	}

	consonantRun := 0
	for _, r := range strings.ToLower(trimmed) {
		if unicode.IsLetter(r) && !strings.ContainsRune("aeiou", r) {
			consonantRun++
			if consonantRun >= 6 {
				return true
			}
		} else {
			consonantRun = 0
		}
	}

	return false
}

// DetermineAmbiguous implements spec.md §6's ambiguity rule: the top two
// candidates share a name but differ in country or admin1, and the
// original query contains no comma (a comma means the user already
// disambiguated, e.g. "Portland, Maine").
func DetermineAmbiguous(query string, candidates []Candidate) bool {
	if strings.Contains(query, ",") {
		return false
	}
	if len(candidates) < 2 {
		return false
	}
	a, b := candidates[0], candidates[1]
	if !strings.EqualFold(a.Name, b.Name) {
		return false
	}
	return a.Country != b.Country || a.Admin1 != b.Admin1
}
