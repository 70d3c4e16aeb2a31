package geocode

import (
	"context"
	"strings"
)

// StaticGeocoder resolves place names against a small built-in gazetteer.
// It stands in for the out-of-scope live geocoding API while still
// exercising the same ambiguity and autopick rules a real provider's
// responses would trigger.
type StaticGeocoder struct {
	gazetteer map[string][]Candidate
}

// NewStaticGeocoder builds a StaticGeocoder seeded with a handful of
// well-known places, including the two deliberately ambiguous "Portland"
// entries and the "Peru" country-name self-match used to test the
// autopick heuristic.
func NewStaticGeocoder() *StaticGeocoder {
	return &StaticGeocoder{gazetteer: map[string][]Candidate{
		"tokyo": {
			{Name: "Tokyo", Country: "Japan", Admin1: "Tokyo", Latitude: 35.6762, Longitude: 139.6503, Timezone: "Asia/Tokyo"},
		},
		"portland": {
			{Name: "Portland", Country: "United States", Admin1: "Oregon", Latitude: 45.5152, Longitude: -122.6784, Timezone: "America/Los_Angeles"},
			{Name: "Portland", Country: "United States", Admin1: "Maine", Latitude: 43.6591, Longitude: -70.2568, Timezone: "America/New_York"},
		},
		"paris": {
			{Name: "Paris", Country: "France", Admin1: "Ile-de-France", Latitude: 48.8566, Longitude: 2.3522, Timezone: "Europe/Paris"},
			{Name: "Paris", Country: "United States", Admin1: "Texas", Latitude: 33.6609, Longitude: -95.5555, Timezone: "America/Chicago"},
		},
		"peru": {
			{Name: "Peru", Country: "Peru", Admin1: "", Latitude: -9.19, Longitude: -75.0152, Timezone: "America/Lima"},
		},
	}}
}

// Geocode implements Geocoder.
func (g *StaticGeocoder) Geocode(_ context.Context, place string) (Result, error) {
	key := strings.ToLower(strings.TrimSpace(strings.SplitN(place, ",", 2)[0]))
	candidates := append([]Candidate(nil), g.gazetteer[key]...)

	if len(candidates) == 0 {
		return Result{Candidates: nil, Ambiguous: false}, nil
	}

	// "Peru, Peru" autopick: a country-name self-match with empty admin1.
	if len(candidates) == 1 && strings.EqualFold(candidates[0].Name, candidates[0].Country) && candidates[0].Admin1 == "" {
		c := candidates[0]
		c.AutopickedReason = "country_name_self_match"
		return Result{Best: &c, Candidates: []Candidate{c}, Ambiguous: false}, nil
	}

	if DetermineAmbiguous(place, candidates) {
		return Result{Candidates: candidates, Ambiguous: true}, nil
	}

	best := candidates[0]
	return Result{Best: &best, Candidates: candidates, Ambiguous: false}, nil
}
