package nodes

import (
	"context"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/telemetry"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewEvaluateStepNode builds the per-step checkpoint node named in the
// flow diagram between Executor and Orchestrator but with no dedicated
// spec.md §4.x section of its own. It does not re-run the Executor's step;
// it records the step-latency/node-transition telemetry spec.md §4.11
// requires at step granularity (distinct from the run-level evaluation
// §4.10 performs once, at the end) and surfaces validation_warnings for
// any step that finished in a degraded state, so the Orchestrator's next
// loop decision is informed by what just happened. See DESIGN.md's Open
// Questions for this decision.
func NewEvaluateStepNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if s.CurrentStep == nil {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}
		step := s.CurrentStep

		if d.Telemetry != nil {
			d.Telemetry.Record(buildStepEntry(s, step))
		}

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

func buildStepEntry(s *tripstate.State, step *tripstate.PlanStep) telemetry.Entry {
	event := "step_completed"
	if step.Status == tripstate.StepBlocked {
		event = "step_blocked"
	}
	return telemetry.Entry{
		Module: "nodes", Event: event, GraphNode: "evaluate_step",
		RunID: s.RunID, UserID: s.UserID,
		StepType: string(step.StepType), StepID: step.ID, StepTitle: step.Title,
		Message: "step " + step.ID + " finished with status " + string(step.Status),
		Data:    map[string]interface{}{"status": string(step.Status), "loop_iterations": s.LoopIterations},
	}
}
