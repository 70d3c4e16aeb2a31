package nodes

import (
	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/tripstate"
)

// Register builds every node and wires the fixed topology spec.md §4.1
// names:
//
//	context → intent → (end|validator) → (end|brain_planner) → orchestrator
//	orchestrator → (executor|responder)
//	executor → (issue_triage|evaluate_step) → orchestrator
//	issue_triage → (end|orchestrator)
//	responder → export_ics → evaluate_final → memory_writer → end
//
// Nodes that must stop and ask the user signal it themselves via
// graph.Stop(); the edges below only cover the non-terminal continuations,
// so an edge predicate never needs to duplicate a node's own stop logic.
func Register(e *graph.Engine[*tripstate.State], d *Deps) error {
	nodes := map[string]graph.Node[*tripstate.State]{
		"context":        NewContextNode(d),
		"intent":         NewIntentNode(d),
		"validator":      NewValidatorNode(d),
		"brain_planner":  NewBrainPlannerNode(d),
		"orchestrator":   NewOrchestratorNode(d),
		"executor":       NewExecutorNode(d),
		"issue_triage":   NewIssueTriageNode(d),
		"evaluate_step":  NewEvaluateStepNode(d),
		"responder":      NewResponderNode(d),
		"export_ics":     NewExportICSNode(d),
		"evaluate_final": NewEvaluateFinalNode(d),
		"memory_writer":  NewMemoryWriterNode(d),
	}
	for id, node := range nodes {
		if err := e.Add(id, node); err != nil {
			return err
		}
	}

	if err := e.StartAt("context"); err != nil {
		return err
	}

	edges := []struct {
		from, to string
		when     graph.Predicate[*tripstate.State]
	}{
		{"context", "intent", nil},
		{"intent", "validator", nil},
		{"validator", "brain_planner", nil},
		{"brain_planner", "orchestrator", nil},
		{"orchestrator", "responder", orchestratorDone},
		{"orchestrator", "executor", nil},
		{"executor", "issue_triage", func(s *tripstate.State) bool { return s.NeedsTriage }},
		{"executor", "evaluate_step", nil},
		{"evaluate_step", "orchestrator", nil},
		{"issue_triage", "orchestrator", nil},
		{"responder", "export_ics", nil},
		{"export_ics", "evaluate_final", nil},
		{"evaluate_final", "memory_writer", nil},
	}
	for _, edge := range edges {
		if err := e.Connect(edge.from, edge.to, edge.when); err != nil {
			return err
		}
	}

	return nil
}

func orchestratorDone(s *tripstate.State) bool {
	return s.TerminationReason == tripstate.TerminationFinalized || s.TerminationReason == tripstate.TerminationMaxIters
}
