package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tripchat/tripplanner/geocode"
	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/tripstate"
)

var validatorDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)

// NewValidatorNode builds the constraint-validation and geocoding node
// (spec.md §4.5).
func NewValidatorNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		fillDatesFromQuery(s)
		fixInvertedDateRange(s)
		reconcileWithMemory(s)

		if missing := missingCoreFields(s.Constraints); len(missing) > 0 {
			s.AppendIssue(tripstate.Issue{
				Kind:     tripstate.IssueValidationError,
				Severity: tripstate.SeverityBlocking,
				Node:     "validator",
				Message:  "missing required constraints: " + strings.Join(missing, ", "),
			})
			s.NeedsUserInput = true
			s.ClarifyingQuestions = clarifyingQuestions(missing)
			s.TerminationReason = tripstate.TerminationAskedUser
			return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
		}

		groundOrigin, stop := groundPlace(ctx, d, s, "origin", s.Constraints.Origin)
		if stop {
			return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
		}
		s.GroundedPlaces.Origin = groundOrigin

		dests := make([]tripstate.Place, 0, len(s.Constraints.Destinations))
		for _, raw := range s.Constraints.Destinations {
			place, stop := groundPlace(ctx, d, s, "destination", raw)
			if stop {
				return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
			}
			if place != nil {
				dests = append(dests, *place)
			}
		}
		s.GroundedPlaces.Destinations = dests

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

func fillDatesFromQuery(s *tripstate.State) {
	if s.Constraints.StartDate != "" && s.Constraints.EndDate != "" {
		return
	}
	dates := validatorDatePattern.FindAllString(s.UserQuery, -1)
	if len(dates) >= 1 && s.Constraints.StartDate == "" {
		s.Constraints.StartDate = dates[0]
	}
	if len(dates) >= 2 && s.Constraints.EndDate == "" {
		s.Constraints.EndDate = dates[1]
	}
}

// fixInvertedDateRange swaps start/end when both parse as valid ISO dates
// but start is after end.
func fixInvertedDateRange(s *tripstate.State) {
	start, errS := time.Parse("2006-01-02", s.Constraints.StartDate)
	end, errE := time.Parse("2006-01-02", s.Constraints.EndDate)
	if errS != nil || errE != nil {
		return
	}
	if start.After(end) {
		s.Constraints.StartDate, s.Constraints.EndDate = s.Constraints.EndDate, s.Constraints.StartDate
		s.ValidationWarnings = append(s.ValidationWarnings, "start_date and end_date were inverted; swapped")
	}
}

// reconcileWithMemory resolves conflicts between the request's constraints
// and profile/preference facts surfaced in context_hits (spec.md §4.5).
func reconcileWithMemory(s *tripstate.State) {
	for _, hit := range s.ContextHits {
		docType, _ := hit.Metadata["doc_type"].(string)
		switch docType {
		case string(memory.DocTypeProfile):
			if memOrigin, ok := hit.Metadata["origin"].(string); ok && memOrigin != "" {
				reconcileOrigin(s, memOrigin)
			}
		case string(memory.DocTypePreference):
			if memInterests, ok := hit.Metadata["interests"].([]interface{}); ok && len(memInterests) > 0 {
				reconcileInterests(s, memInterests)
			}
		}
	}
}

func reconcileOrigin(s *tripstate.State, memOrigin string) {
	if s.Constraints.Origin == "" {
		s.Constraints.Origin = memOrigin
		return
	}
	if strings.EqualFold(s.Constraints.Origin, memOrigin) {
		return
	}
	if strings.Contains(strings.ToLower(s.UserQuery), strings.ToLower(s.Constraints.Origin)) {
		s.ResolvedConflicts = append(s.ResolvedConflicts,
			fmt.Sprintf("kept request origin %q over remembered origin %q", s.Constraints.Origin, memOrigin))
		return
	}
	s.ResolvedConflicts = append(s.ResolvedConflicts,
		fmt.Sprintf("adopted remembered origin %q over request origin %q", memOrigin, s.Constraints.Origin))
	s.Constraints.Origin = memOrigin
}

func reconcileInterests(s *tripstate.State, memInterests []interface{}) {
	if len(s.Constraints.Interests) > 0 {
		s.ValidationWarnings = append(s.ValidationWarnings, "kept request interests over remembered preferences")
		return
	}
	for _, v := range memInterests {
		if str, ok := v.(string); ok {
			s.Constraints.Interests = append(s.Constraints.Interests, str)
		}
	}
}

// groundPlace resolves raw into a *tripstate.Place, handling the IATA
// bypass, ambiguity, geocoder failure, and suspicious-name paths from
// spec.md §4.5. The bool return reports whether the node must stop and
// ask the user.
func groundPlace(ctx context.Context, d *Deps, s *tripstate.State, field, raw string) (*tripstate.Place, bool) {
	if raw == "" {
		return nil, false
	}
	if geocode.IsIATA(raw) {
		return &tripstate.Place{Name: strings.ToUpper(raw)}, false
	}
	if d.Geocoder == nil {
		return &tripstate.Place{Name: raw}, false
	}

	res, err := d.Geocoder.Geocode(ctx, raw)
	if err != nil {
		s.ValidationWarnings = append(s.ValidationWarnings, fmt.Sprintf("geocoder error for %q: %v", raw, err))
		if geocode.IsSuspiciousName(raw) {
			s.NeedsUserInput = true
			s.ClarifyingQuestions = append(s.ClarifyingQuestions, fmt.Sprintf("Could you clarify what you mean by %q?", raw))
			s.TerminationReason = tripstate.TerminationAskedUser
			return nil, true
		}
		return &tripstate.Place{Name: raw}, false
	}

	if res.Ambiguous {
		options := make([]string, 0, len(res.Candidates))
		for i, c := range res.Candidates {
			if i == 3 {
				break
			}
			options = append(options, fmt.Sprintf("%s, %s", c.Name, c.Admin1))
		}
		s.PendingDisambiguation = &tripstate.Disambiguation{
			Field:      field,
			RawValue:   raw,
			Options:    options,
			Candidates: toPlaces(res.Candidates),
		}
		s.NeedsUserInput = true
		s.ClarifyingQuestions = append(s.ClarifyingQuestions, fmt.Sprintf("Which %s did you mean: %s?", raw, strings.Join(options, "; ")))
		s.TerminationReason = tripstate.TerminationAskedUser
		return nil, true
	}

	if res.Best == nil && len(res.Candidates) == 0 {
		s.AppendIssue(tripstate.Issue{
			Kind:     tripstate.IssueValidationError,
			Severity: tripstate.SeverityBlocking,
			Node:     "validator",
			Message:  fmt.Sprintf("could not resolve %s %q", field, raw),
		})
		s.NeedsUserInput = true
		s.ClarifyingQuestions = append(s.ClarifyingQuestions, fmt.Sprintf("Could you clarify what you mean by %q?", raw))
		s.TerminationReason = tripstate.TerminationAskedUser
		return nil, true
	}

	return candidateToPlace(res.Best), false
}

func candidateToPlace(c *geocode.Candidate) *tripstate.Place {
	if c == nil {
		return nil
	}
	return &tripstate.Place{
		Name: c.Name, Country: c.Country, Admin1: c.Admin1,
		Latitude: c.Latitude, Longitude: c.Longitude, Timezone: c.Timezone,
		AutopickedReason: c.AutopickedReason,
	}
}

func toPlaces(cs []geocode.Candidate) []tripstate.Place {
	out := make([]tripstate.Place, len(cs))
	for i, c := range cs {
		out[i] = *candidateToPlace(&c)
	}
	return out
}
