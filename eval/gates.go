package eval

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	currencyToken    = regexp.MustCompile(`(?i)\$\d+|USD\s?\d+|\d+\s?USD`)
	priceCollocation = regexp.MustCompile(`(?i)(price|prices|cost|fare).{0,25}\d|\d.{0,25}(price|prices|cost|fare)`)
	urlPattern       = regexp.MustCompile(`https?://[^\s)\]}>"']+`)
	disclaimerPhrase = regexp.MustCompile(`(?i)verify with official sources|not legal advice`)
)

// Input is everything the hard-gate and rubric computations need from a
// finished run.
type Input struct {
	FinalAnswer        string
	MissingConstraints []string // tokens from destination|start date|end date|origin|budget|travelers
	Interests          []string
	ICSText            string // raw ICS file contents, empty if export was skipped
	TripDays           int    // inclusive day count when both dates are known, else 0
	Destination        string // the resolved destination name, for coherence's "listed destination" check
	StartDate          string // literal start_date string, for coherence's date-mention check
	EndDate            string // literal end_date string, for coherence's date-mention check
}

// ComputeGates evaluates all five hard gates against in.
func ComputeGates(in Input) Gates {
	return Gates{
		ConstraintCompleteness:    constraintCompleteness(in),
		NoFabricatedRealTimeFacts: !currencyToken.MatchString(in.FinalAnswer) && !priceCollocation.MatchString(in.FinalAnswer),
		LinkValidityFormat:        linkValidityFormat(in.FinalAnswer),
		CalendarExportCorrectness: calendarExportCorrectness(in),
		SafetyClarityDisclaimer:   disclaimerPhrase.MatchString(in.FinalAnswer),
	}
}

func constraintCompleteness(in Input) bool {
	if len(in.MissingConstraints) == 0 {
		return true
	}
	lower := strings.ToLower(in.FinalAnswer)
	if !strings.Contains(lower, "assumptions") {
		return false
	}
	for _, token := range in.MissingConstraints {
		if !strings.Contains(lower, strings.ToLower(token)) {
			return false
		}
	}
	return true
}

func linkValidityFormat(text string) bool {
	urls := urlPattern.FindAllString(text, -1)
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
		if u.Host == "" {
			return false
		}
	}
	return true
}

func calendarExportCorrectness(in Input) bool {
	if in.ICSText == "" {
		// No ICS was produced; correctness only matters when dates were
		// present (spec.md §4.10's "if dates present, has >= min(1,days)").
		return in.TripDays == 0
	}
	count := strings.Count(in.ICSText, "BEGIN:VEVENT")
	if count < 1 {
		return false
	}
	if in.TripDays > 0 {
		want := in.TripDays
		if want > 1 {
			want = 1
		}
		if count < want {
			return false
		}
	}
	return true
}
