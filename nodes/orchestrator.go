package nodes

import (
	"context"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewOrchestratorNode builds the bounded planning-loop node (spec.md §4.2).
func NewOrchestratorNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		s.LoopIterations++

		if float64(s.LoopIterations) >= float64(s.MaxIters)*0.8 {
			s.Signals.TimeoutRisk = true
		}

		if s.LoopIterations > s.MaxIters {
			s.CurrentStep = nil
			s.CurrentStepIndex = len(s.Plan)
			s.TerminationReason = tripstate.TerminationMaxIters
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		for i := range s.Plan {
			if s.Plan[i].Status == tripstate.StepPending {
				step := s.Plan[i].Clone()
				s.CurrentStep = &step
				s.CurrentStepIndex = i
				return graph.NodeResult[*tripstate.State]{Delta: s}
			}
		}

		s.TerminationReason = tripstate.TerminationFinalized
		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}
