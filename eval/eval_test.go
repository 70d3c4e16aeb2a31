package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const happyPathAnswer = `## Summary
Trip to Tokyo from SFO, 2026-04-01 to 2026-04-05, 2 travelers.

## Flights
- [Google Flights](https://www.google.com/travel/flights)

## Lodging
- [Booking.com](https://www.booking.com/search.html)

## Day-by-day
- 09:00 Morning ramen crawl
- 14:00 Afternoon garden visit

## Transit
Estimated travel time and transit distance between stops.

## Weather
Mild spring weather expected.

## Budget
No live prices included in this plan.

## Calendar
See attached itinerary.

## Assumptions
None.

Please verify with official sources before booking.
`

func TestComputeGates_HappyPathAllPass(t *testing.T) {
	in := Input{
		FinalAnswer: happyPathAnswer,
		Interests:   []string{"ramen", "gardens"},
		ICSText:     "BEGIN:VCALENDAR\nBEGIN:VEVENT\nEND:VEVENT\nBEGIN:VEVENT\nEND:VEVENT\nEND:VCALENDAR",
		TripDays:    5,
		Destination: "Tokyo",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-05",
	}
	gates := ComputeGates(in)
	assert.True(t, gates.AllPass())
}

func TestComputeGates_FabricatedPriceFails(t *testing.T) {
	in := Input{FinalAnswer: happyPathAnswer + "\nFlight costs $499 one way."}
	gates := ComputeGates(in)
	assert.False(t, gates.NoFabricatedRealTimeFacts)
}

func TestComputeGates_MissingDisclaimerFails(t *testing.T) {
	in := Input{FinalAnswer: "## Summary\nNo disclaimer here."}
	gates := ComputeGates(in)
	assert.False(t, gates.SafetyClarityDisclaimer)
}

func TestComputeGates_InvalidLinkFails(t *testing.T) {
	in := Input{FinalAnswer: "See https:// for details. verify with official sources"}
	gates := ComputeGates(in)
	assert.False(t, gates.LinkValidityFormat)
}

func TestComputeGates_ConstraintCompletenessRequiresAssumptionsSection(t *testing.T) {
	in := Input{
		FinalAnswer:        "No assumptions mentioned here.",
		MissingConstraints: []string{"budget"},
	}
	assert.False(t, ComputeGates(in).ConstraintCompleteness)

	in.FinalAnswer = "## Assumptions\nWe assumed a moderate budget."
	assert.True(t, ComputeGates(in).ConstraintCompleteness)
}

func TestComputeRubric_RelevanceFallsBackWithNoInterests(t *testing.T) {
	rubric := ComputeRubric(Input{FinalAnswer: "anything"})
	assert.Equal(t, 3.5, rubric.Relevance)
}

func TestComputeRubric_RelevanceScoresInterestHits(t *testing.T) {
	rubric := ComputeRubric(Input{FinalAnswer: "Loves ramen and gardens", Interests: []string{"ramen", "gardens"}})
	assert.InDelta(t, 5.0, rubric.Relevance, 0.001)
}

func TestComputeRubric_CoherencePenalizesMissingDestination(t *testing.T) {
	rubric := ComputeRubric(Input{FinalAnswer: "A plan with no place name.", Destination: "Tokyo"})
	assert.Equal(t, 3.0, rubric.Coherence)
}

func TestFinalize_StatusTiers(t *testing.T) {
	passingGates := Gates{true, true, true, true, true}
	failingGates := Gates{false, true, true, true, true}

	good := Finalize(passingGates, Rubric{5, 5, 5, 5, 5}, 3.5)
	assert.Equal(t, StatusGood, good.Status)

	needsWork := Finalize(passingGates, Rubric{1, 1, 1, 1, 1}, 3.5)
	assert.Equal(t, StatusNeedsWork, needsWork.Status)

	failed := Finalize(failingGates, Rubric{5, 5, 5, 5, 5}, 3.5)
	assert.Equal(t, StatusFailed, failed.Status)
}
