package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripchat/tripplanner/geocode"
	"github.com/tripchat/tripplanner/tripstate"
)

func fullConstraints() tripstate.Constraints {
	return tripstate.Constraints{
		Origin: "Boston", Destinations: []string{"Tokyo"},
		StartDate: "2026-09-01", EndDate: "2026-09-10",
	}
}

func TestValidatorNode_MissingCoreFieldsAsksUser(t *testing.T) {
	d := testDeps()
	s := newTestState("trip")
	s.Constraints = tripstate.Constraints{}

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.True(t, result.Delta.NeedsUserInput)
	assert.Equal(t, tripstate.TerminationAskedUser, result.Delta.TerminationReason)
	assert.True(t, result.Route.Terminal)
}

func TestValidatorNode_InvertedDatesAreSwapped(t *testing.T) {
	d := testDeps()
	s := newTestState("trip")
	s.Constraints = fullConstraints()
	s.Constraints.StartDate, s.Constraints.EndDate = s.Constraints.EndDate, s.Constraints.StartDate

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.Equal(t, "2026-09-01", result.Delta.Constraints.StartDate)
	assert.Equal(t, "2026-09-10", result.Delta.Constraints.EndDate)
	assert.NotEmpty(t, result.Delta.ValidationWarnings)
}

func TestValidatorNode_IATAOriginBypassesGeocoder(t *testing.T) {
	d := testDeps()
	d.Geocoder = &geocode.MockGeocoder{Err: assert.AnError}
	s := newTestState("trip")
	s.Constraints = fullConstraints()
	s.Constraints.Origin = "BOS"

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.Equal(t, "BOS", result.Delta.GroundedPlaces.Origin.Name)
}

func TestValidatorNode_AmbiguousGeocodeAsksUser(t *testing.T) {
	d := testDeps()
	d.Geocoder = &geocode.MockGeocoder{Responses: []geocode.Result{{
		Ambiguous: true,
		Candidates: []geocode.Candidate{
			{Name: "Portland", Admin1: "Oregon"},
			{Name: "Portland", Admin1: "Maine"},
		},
	}}}
	s := newTestState("trip")
	s.Constraints = fullConstraints()
	s.Constraints.Destinations = []string{"Portland"}

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.True(t, result.Delta.NeedsUserInput)
	assert.NotNil(t, result.Delta.PendingDisambiguation)
	assert.Equal(t, "destination", result.Delta.PendingDisambiguation.Field)
	assert.True(t, result.Route.Terminal)
}

func TestValidatorNode_NoCandidatesIsBlockingIssue(t *testing.T) {
	d := testDeps()
	d.Geocoder = &geocode.MockGeocoder{Responses: []geocode.Result{{}}}
	s := newTestState("trip")
	s.Constraints = fullConstraints()
	s.Constraints.Destinations = []string{"Nowheresville"}

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.True(t, result.Delta.NeedsUserInput)
	assert.NotEmpty(t, result.Delta.Issues)
	assert.Equal(t, tripstate.SeverityBlocking, result.Delta.Issues[0].Severity)
}

func TestValidatorNode_ResolvesOriginAndGroundsDestination(t *testing.T) {
	d := testDeps()
	d.Geocoder = &geocode.MockGeocoder{Responses: []geocode.Result{
		{Best: &geocode.Candidate{Name: "Boston", Country: "US"}},
		{Best: &geocode.Candidate{Name: "Tokyo", Country: "JP"}},
	}}
	s := newTestState("trip")
	s.Constraints = fullConstraints()

	node := NewValidatorNode(d)
	result := node.Run(context.Background(), s)

	assert.Equal(t, "Boston", result.Delta.GroundedPlaces.Origin.Name)
	assert.Len(t, result.Delta.GroundedPlaces.Destinations, 1)
	assert.Equal(t, "Tokyo", result.Delta.GroundedPlaces.Destinations[0].Name)
}
