package nodes

import (
	"context"
	"os"
	"time"

	"github.com/tripchat/tripplanner/eval"
	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewEvaluateFinalNode builds the run-level hard-gate + rubric evaluation
// node (spec.md §4.10).
func NewEvaluateFinalNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		in := buildEvalInput(s)

		gates := eval.ComputeGates(in)
		rubric := eval.ComputeRubric(in)
		result := eval.Finalize(gates, rubric, d.Config.EvalThreshold)

		s.Evaluation = &tripstate.Evaluation{
			ConstraintCompleteness:    result.Gates.ConstraintCompleteness,
			NoFabricatedFacts:         result.Gates.NoFabricatedRealTimeFacts,
			LinkValidityFormat:        result.Gates.LinkValidityFormat,
			CalendarExportCorrectness: result.Gates.CalendarExportCorrectness,
			SafetyClarityDisclaimer:   result.Gates.SafetyClarityDisclaimer,
			Relevance:                 result.Rubric.Relevance,
			Feasibility:               result.Rubric.Feasibility,
			Completeness:              result.Rubric.Completeness,
			Specificity:               result.Rubric.Specificity,
			Coherence:                 result.Rubric.Coherence,
			Average:                   result.Average,
			Status:                    string(result.Status),
		}

		if !result.Gates.AllPass() {
			s.AppendIssue(tripstate.Issue{
				Kind: tripstate.IssueEvaluationFail, Severity: tripstate.SeverityMajor,
				Node: "evaluate_final", Message: "one or more hard gates failed: status=" + string(result.Status),
			})
		}

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

func buildEvalInput(s *tripstate.State) eval.Input {
	var icsText string
	if s.ICSPath != "" {
		if data, err := os.ReadFile(s.ICSPath); err == nil {
			icsText = string(data)
		}
	}

	tripDays := 0
	if s.Constraints.StartDate != "" && s.Constraints.EndDate != "" {
		start, errS := time.Parse("2006-01-02", s.Constraints.StartDate)
		end, errE := time.Parse("2006-01-02", s.Constraints.EndDate)
		if errS == nil && errE == nil && !end.Before(start) {
			tripDays = int(end.Sub(start).Hours()/24) + 1
		}
	}

	destination := ""
	if len(s.Constraints.Destinations) > 0 {
		destination = s.Constraints.Destinations[0]
	}

	return eval.Input{
		FinalAnswer:        s.FinalAnswer,
		MissingConstraints: missingConstraintTokens(s.Constraints),
		Interests:          s.Constraints.Interests,
		ICSText:            icsText,
		TripDays:           tripDays,
		Destination:        destination,
		StartDate:          s.Constraints.StartDate,
		EndDate:            s.Constraints.EndDate,
	}
}
