package nodes

import (
	"context"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewIssueTriageNode builds the deterministic triage node (spec.md §4.7).
// It never consults the LLM and never asks the user for a tool failure: a
// blocked step is marked done with a skip note and the run continues.
func NewIssueTriageNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if s.PendingIssue == nil {
			s.NeedsTriage = false
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		issue := s.PendingIssue

		if issue.Kind == tripstate.IssueToolError && issue.Severity != tripstate.SeverityBlocking {
			if step := s.StepByID(issue.StepID); step != nil {
				step.Status = tripstate.StepDone
				step.Notes = append(step.Notes, "skipped after tool failure: "+issue.Message)
			}
			s.ValidationWarnings = append(s.ValidationWarnings, issue.Message)
			s.PendingIssue = nil
			s.NeedsTriage = false
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		s.NeedsUserInput = true
		s.ClarifyingQuestions = append(s.ClarifyingQuestions, issue.Message)
		s.TerminationReason = tripstate.TerminationAskedUser
		s.PendingIssue = nil
		s.NeedsTriage = false
		return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
	})
}
