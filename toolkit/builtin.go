package toolkit

import (
	"context"
	"fmt"
	"net/url"
)

// The built-in tools below are deterministic stand-ins for the
// out-of-scope live flight/hotel/activity/weather/distance collaborators
// (spec.md §1 names tool implementations as external, interface-only
// collaborators). They build well-formed links from whatever arguments are
// present and never fail on missing optional inputs.

func strArg(args map[string]any, key string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// FlightsSearchLinks builds search links for flights between an origin and
// a destination over an optional date range.
type FlightsSearchLinks struct{}

func (t *FlightsSearchLinks) Name() string { return "flights_search_links" }

func (t *FlightsSearchLinks) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	origin := strArg(args, "origin")
	destination := strArg(args, "destination")
	start := strArg(args, "start_date")
	end := strArg(args, "end_date")

	summary := "Flights"
	if origin != "" && destination != "" {
		summary = fmt.Sprintf("Flights from %s to %s", origin, destination)
	} else if destination != "" {
		summary = fmt.Sprintf("Flights to %s", destination)
	}

	q := url.Values{}
	if origin != "" {
		q.Set("origin", origin)
	}
	if destination != "" {
		q.Set("destination", destination)
	}
	if start != "" {
		q.Set("depart", start)
	}
	if end != "" {
		q.Set("return", end)
	}

	links := []Link{
		{Label: "Google Flights", URL: "https://www.google.com/travel/flights?" + q.Encode()},
		{Label: "Skyscanner", URL: "https://www.skyscanner.net/transport/flights?" + q.Encode()},
	}

	return Result{
		Summary: summary,
		Links:   links,
		Data: map[string]any{
			"origin": origin, "destination": destination,
			"start_date": start, "end_date": end,
		},
	}.ToMap(), nil
}

// HotelsSearchLinks builds search links for lodging in a destination.
type HotelsSearchLinks struct{}

func (t *HotelsSearchLinks) Name() string { return "hotels_search_links" }

func (t *HotelsSearchLinks) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	destination := strArg(args, "destination")
	start := strArg(args, "start_date")
	end := strArg(args, "end_date")

	summary := "Lodging"
	if destination != "" {
		summary = fmt.Sprintf("Lodging in %s", destination)
	}

	q := url.Values{}
	if destination != "" {
		q.Set("destination", destination)
	}
	if start != "" {
		q.Set("checkin", start)
	}
	if end != "" {
		q.Set("checkout", end)
	}

	links := []Link{
		{Label: "Booking.com", URL: "https://www.booking.com/searchresults.html?" + q.Encode()},
		{Label: "Google Hotels", URL: "https://www.google.com/travel/hotels?" + q.Encode()},
	}

	return Result{
		Summary: summary,
		Links:   links,
		Data:    map[string]any{"destination": destination, "start_date": start, "end_date": end},
	}.ToMap(), nil
}

// ThingsToDoLinks builds search links for activities in a destination.
type ThingsToDoLinks struct{}

func (t *ThingsToDoLinks) Name() string { return "things_to_do_links" }

func (t *ThingsToDoLinks) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	destination := strArg(args, "destination")

	summary := "Things to do"
	if destination != "" {
		summary = fmt.Sprintf("Things to do in %s", destination)
	}

	q := url.Values{}
	if destination != "" {
		q.Set("q", "things to do in "+destination)
	}

	links := []Link{
		{Label: "TripAdvisor", URL: "https://www.tripadvisor.com/Search?" + q.Encode()},
		{Label: "Google Search", URL: "https://www.google.com/search?" + q.Encode()},
	}

	return Result{
		Summary: summary,
		Links:   links,
		Data:    map[string]any{"destination": destination},
	}.ToMap(), nil
}

// WeatherSummary builds a link to check forecast for a destination.
type WeatherSummary struct{}

func (t *WeatherSummary) Name() string { return "weather_summary" }

func (t *WeatherSummary) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	destination := strArg(args, "destination")

	summary := "Weather forecast"
	if destination != "" {
		summary = fmt.Sprintf("Weather forecast for %s", destination)
	}

	q := url.Values{}
	if destination != "" {
		q.Set("q", "weather in "+destination)
	}

	links := []Link{
		{Label: "Weather.com", URL: "https://weather.com/weather/today/l/" + url.QueryEscape(destination)},
		{Label: "Google Search", URL: "https://www.google.com/search?" + q.Encode()},
	}

	return Result{
		Summary: summary,
		Links:   links,
		Data:    map[string]any{"destination": destination},
	}.ToMap(), nil
}

// DistanceAndTime builds a link showing travel time/distance between two
// places.
type DistanceAndTime struct{}

func (t *DistanceAndTime) Name() string { return "distance_and_time" }

func (t *DistanceAndTime) Call(_ context.Context, args map[string]any) (map[string]any, error) {
	origin := strArg(args, "origin")
	destination := strArg(args, "destination")

	summary := "Travel time and distance"
	if origin != "" && destination != "" {
		summary = fmt.Sprintf("Travel time and distance from %s to %s", origin, destination)
	}

	q := url.Values{}
	if origin != "" {
		q.Set("saddr", origin)
	}
	if destination != "" {
		q.Set("daddr", destination)
	}

	links := []Link{
		{Label: "Google Maps", URL: "https://www.google.com/maps/dir/?api=1&" + q.Encode()},
	}

	return Result{
		Summary: summary,
		Links:   links,
		Data:    map[string]any{"origin": origin, "destination": destination},
	}.ToMap(), nil
}
