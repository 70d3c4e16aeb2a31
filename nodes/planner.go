package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/tripstate"
)

const plannerSystemPrompt = `You build a short plan of steps to answer a traveler's trip request.
Reply with ONLY a JSON object: {"plan":[{"title":"","step_type":"RETRIEVE_CONTEXT|TOOL_CALL|SYNTHESIZE","tool_name":"","tool_args":{},"notes":[]}]}.
Allowed tool_name values for TOOL_CALL steps: flights_search_links, hotels_search_links, things_to_do_links, weather_summary, distance_and_time.
The plan must end with exactly one SYNTHESIZE step.`

var allowedPlannerTools = map[string]bool{
	"flights_search_links": true,
	"hotels_search_links":  true,
	"things_to_do_links":   true,
	"weather_summary":      true,
	"distance_and_time":    true,
}

type planStepJSON struct {
	Title    string         `json:"title"`
	StepType string         `json:"step_type"`
	ToolName string         `json:"tool_name"`
	ToolArgs map[string]any `json:"tool_args"`
	Notes    []string       `json:"notes"`
}

type planJSON struct {
	Plan []planStepJSON `json:"plan"`
}

const maxPlanSteps = 12

// NewBrainPlannerNode builds the planning node (spec.md §4.6).
func NewBrainPlannerNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		plan, ok := requestPlan(ctx, d, s)
		if ok {
			plan = filterAllowedSteps(plan)
			plan = expandMultiDestination(plan, s.Constraints.Destinations)
		}
		if len(plan) > maxPlanSteps {
			plan = plan[:maxPlanSteps]
		}

		if !ok || len(plan) == 0 {
			s.Signals.PlanningError = true
			s.AppendIssue(tripstate.Issue{
				Kind:     tripstate.IssuePlanningError,
				Severity: tripstate.SeverityMajor,
				Node:     "brain_planner",
				Message:  "planner produced no usable plan; falling back to deterministic plan",
			})
			plan = fallbackPlan(s.Constraints)
		}

		for i := range plan {
			if plan[i].ID == "" {
				plan[i].ID = fmt.Sprintf("step-%d", i+1)
			}
			plan[i].Status = tripstate.StepPending
		}
		s.Plan = plan

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

// requestPlan invokes the model, under fault injection, to produce a plan.
// A real or fault-injected error here degrades gracefully to
// fallbackPlan (with a recorded IssuePlanningError) rather than failing
// the run — the caller's ok=false path.
func requestPlan(ctx context.Context, d *Deps, s *tripstate.State) ([]tripstate.PlanStep, bool) {
	if d.Model == nil {
		return nil, false
	}
	prompt := buildPlannerUser(s)
	raw, err := d.Model.InvokeText(ctx, llm.Request{System: plannerSystemPrompt, User: prompt, Tags: []string{"brain_planner"}})
	if err == nil && d.Fault != nil {
		err = d.Fault.MaybeLLMError()
	}
	if err != nil {
		return nil, false
	}
	parsed, ok := parsePlanJSON(raw)
	if !ok {
		return nil, false
	}
	return toPlanSteps(parsed.Plan), true
}

func buildPlannerUser(s *tripstate.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "origin: %s\n", s.Constraints.Origin)
	fmt.Fprintf(&b, "destinations: %s\n", strings.Join(s.Constraints.Destinations, ", "))
	fmt.Fprintf(&b, "dates: %s to %s\n", s.Constraints.StartDate, s.Constraints.EndDate)
	if len(s.Constraints.Interests) > 0 {
		fmt.Fprintf(&b, "interests: %s\n", strings.Join(s.Constraints.Interests, ", "))
	}
	return b.String()
}

// parsePlanJSON mirrors parseIntentJSON's strategy ladder, ending in
// lenientPlanFromSpan for plans a strict decode rejects over one bad field.
func parsePlanJSON(raw string) (planJSON, bool) {
	var out planJSON
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), &out); err == nil {
		return out, true
	}
	if m := fencedJSONBlock.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &out); err == nil {
			return out, true
		}
	}
	if span := firstBalancedBraces(raw); span != "" {
		if err := json.Unmarshal([]byte(span), &out); err == nil {
			return out, true
		}
		if lenient, ok := lenientPlanFromSpan(span); ok {
			return lenient, true
		}
	}
	return planJSON{}, false
}

func toPlanSteps(items []planStepJSON) []tripstate.PlanStep {
	out := make([]tripstate.PlanStep, 0, len(items))
	for _, it := range items {
		out = append(out, tripstate.PlanStep{
			Title:    it.Title,
			StepType: tripstate.StepType(it.StepType),
			ToolName: it.ToolName,
			ToolArgs: it.ToolArgs,
			Notes:    it.Notes,
		})
	}
	return out
}

// filterAllowedSteps drops steps whose step_type or tool_name fall outside
// the allowed sets (spec.md §4.6).
func filterAllowedSteps(plan []tripstate.PlanStep) []tripstate.PlanStep {
	out := make([]tripstate.PlanStep, 0, len(plan))
	for _, step := range plan {
		if !step.StepType.IsValid() {
			continue
		}
		if step.StepType == tripstate.StepToolCall && !allowedPlannerTools[step.ToolName] {
			continue
		}
		out = append(out, step)
	}
	return out
}

// expandMultiDestination replicates the first flights/hotels TOOL_CALL step
// once per destination when the plan under-represents a multi-destination
// trip (spec.md §4.6).
func expandMultiDestination(plan []tripstate.PlanStep, destinations []string) []tripstate.PlanStep {
	if len(destinations) <= 1 {
		return plan
	}

	for _, toolName := range []string{"flights_search_links", "hotels_search_links"} {
		seen := map[string]bool{}
		idx := -1
		for i, step := range plan {
			if step.StepType == tripstate.StepToolCall && step.ToolName == toolName {
				if idx == -1 {
					idx = i
				}
				if dest, ok := step.ToolArgs["destination"].(string); ok {
					seen[dest] = true
				}
			}
		}
		if idx == -1 || len(seen) >= len(destinations) {
			continue
		}

		replacement := make([]tripstate.PlanStep, 0, len(destinations))
		for _, dest := range destinations {
			args := map[string]any{"destination": dest}
			replacement = append(replacement, tripstate.PlanStep{
				Title:    fmt.Sprintf("%s: %s", plan[idx].Title, dest),
				StepType: tripstate.StepToolCall,
				ToolName: toolName,
				ToolArgs: args,
			})
		}

		next := make([]tripstate.PlanStep, 0, len(plan)+len(replacement))
		next = append(next, plan[:idx]...)
		next = append(next, replacement...)
		next = append(next, plan[idx+1:]...)
		plan = next
	}
	return plan
}

// fallbackPlan is the deterministic plan used when the Brain Planner
// produces nothing usable (spec.md §4.6): flights, hotels, things to do,
// and weather for the primary destination, ending in a synthesis step.
func fallbackPlan(c tripstate.Constraints) []tripstate.PlanStep {
	destination := ""
	if len(c.Destinations) > 0 {
		destination = c.Destinations[0]
	}

	return []tripstate.PlanStep{
		{
			Title: "Search flights", StepType: tripstate.StepToolCall, ToolName: "flights_search_links",
			ToolArgs: map[string]any{"origin": c.Origin, "destination": destination, "start_date": c.StartDate, "end_date": c.EndDate},
		},
		{
			Title: "Search lodging", StepType: tripstate.StepToolCall, ToolName: "hotels_search_links",
			ToolArgs: map[string]any{"destination": destination, "start_date": c.StartDate, "end_date": c.EndDate},
		},
		{
			Title: "Find things to do", StepType: tripstate.StepToolCall, ToolName: "things_to_do_links",
			ToolArgs: map[string]any{"destination": destination},
		},
		{
			Title: "Check weather", StepType: tripstate.StepToolCall, ToolName: "weather_summary",
			ToolArgs: map[string]any{"destination": destination},
		},
		{
			Title: "Write itinerary", StepType: tripstate.StepSynthesize,
		},
	}
}
