package nodes

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/tripstate"
)

var dayHeadingPattern = regexp.MustCompile(`(?im)^#+\s*Day\s*(\d+)\s*[:\-]?\s*(.*)$`)

const maxItineraryDayTitles = 21

const synthesizeSystemPrompt = `You are writing a final trip-planning answer for a traveler.
Use the supplied constraints, prior context, and tool results as your only source of facts; never invent prices, confirmation numbers, or real-time availability.
Structure the answer with these markdown sections in order: Summary, Flights, Lodging, Day-by-day, Transit, Weather, Budget, Calendar, Assumptions.
End the answer with exactly this line: "Verify with official sources before booking; this is not legal advice."`

var majorFailureTools = map[string]bool{
	"flights_search_links": true,
	"hotels_search_links":  true,
}

// NewExecutorNode builds the step-dispatch node (spec.md §4.3).
func NewExecutorNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if s.CurrentStep == nil {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}
		step := s.CurrentStep

		var err error
		switch step.StepType {
		case tripstate.StepRetrieveContext:
			executeRetrieveContext(ctx, d, s, step)
		case tripstate.StepToolCall:
			executeToolCall(ctx, d, s, step)
		case tripstate.StepSynthesize:
			err = executeSynthesize(ctx, d, s, step)
		}

		if target := s.StepByID(step.ID); target != nil {
			*target = *step
		}

		if err != nil {
			return graph.NodeResult[*tripstate.State]{Delta: s, Err: &graph.NodeError{
				Message: err.Error(), Code: "SYNTHESIS_FAILED", NodeID: "executor", Cause: err,
			}}
		}

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}

func executeRetrieveContext(ctx context.Context, d *Deps, s *tripstate.State, step *tripstate.PlanStep) {
	if d.Memory == nil {
		s.Signals.MemoryUnavailable = true
		s.NeedsTriage = true
		step.Status = tripstate.StepBlocked
		iss := tripstate.Issue{
			Kind: tripstate.IssueToolError, Severity: tripstate.SeverityMajor,
			Node: "executor", StepID: step.ID, Message: "memory collaborator unavailable",
		}
		s.AppendIssue(iss)
		s.PendingIssue = &iss
		return
	}

	query := step.ToolArgs["query"]
	queryStr, _ := query.(string)
	if queryStr == "" {
		queryStr = s.UserQuery
	}

	start := time.Now()
	hits, err := d.Memory.Search(ctx, memory.SearchQuery{
		Query: queryStr, K: 5, IncludeSession: true, IncludeUser: true,
		RunID: s.RunID, UserID: s.UserID,
	})
	if d.Metrics != nil {
		d.Metrics.RecordRAGRetrieval(time.Since(start), len(hits))
	}
	if err != nil {
		s.ValidationWarnings = append(s.ValidationWarnings, "context retrieval failed: "+err.Error())
	}

	for _, h := range hits {
		s.ContextHits = append(s.ContextHits, tripstate.ContextHit{
			ID: h.ID, Text: h.Text, Metadata: h.Metadata, Distance: h.Distance,
		})
	}
	step.Status = tripstate.StepDone
}

func executeToolCall(ctx context.Context, d *Deps, s *tripstate.State, step *tripstate.PlanStep) {
	maxAttempts := 1 + d.Config.MaxToolRetries

	tool, ok := d.Tools.Lookup(step.ToolName)
	if !ok {
		blockToolStep(s, step, "unknown tool: "+step.ToolName)
		return
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		start := time.Now()
		data, err := tool.Call(ctx, step.ToolArgs)
		if err == nil && d.Fault != nil {
			if ferr := d.Fault.MaybeToolTimeout(); ferr != nil {
				err = ferr
			} else if ferr := d.Fault.MaybeToolError(); ferr != nil {
				err = ferr
			}
		}
		latency := time.Since(start)
		if d.Metrics != nil {
			d.Metrics.RecordToolCall(step.ToolName, latency, err != nil)
			if attempt > 1 {
				d.Metrics.RecordToolRetry(step.ToolName)
			}
		}
		if err == nil {
			s.ToolResults = append(s.ToolResults, tripstate.ToolResult{
				StepID: step.ID, ToolName: step.ToolName, Data: data,
				Summary: summaryOf(data), Links: linksOf(data),
			})
			step.Status = tripstate.StepDone
			return
		}
		lastErr = err
	}

	s.Signals.ToolError = true
	severity := tripstate.SeverityMinor
	if majorFailureTools[step.ToolName] {
		severity = tripstate.SeverityMajor
	}
	blockToolStepWithSeverity(s, step, fmt.Sprintf("tool %s failed after %d attempts: %v", step.ToolName, maxAttempts, lastErr), severity)
}

func summaryOf(data map[string]any) string {
	if s, ok := data["summary"].(string); ok {
		return s
	}
	return ""
}

func linksOf(data map[string]any) []tripstate.Link {
	raw, ok := data["links"].([]any)
	if !ok {
		return nil
	}
	out := make([]tripstate.Link, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		label, _ := m["label"].(string)
		url, _ := m["url"].(string)
		out = append(out, tripstate.Link{Label: label, URL: url})
	}
	return out
}

func blockToolStep(s *tripstate.State, step *tripstate.PlanStep, message string) {
	blockToolStepWithSeverity(s, step, message, tripstate.SeverityMinor)
}

func blockToolStepWithSeverity(s *tripstate.State, step *tripstate.PlanStep, message string, severity tripstate.IssueSeverity) {
	step.Status = tripstate.StepBlocked
	s.NeedsTriage = true
	iss := tripstate.Issue{
		Kind: tripstate.IssueToolError, Severity: severity,
		Node: "executor", StepID: step.ID, ToolName: step.ToolName, Message: message,
	}
	s.AppendIssue(iss)
	s.PendingIssue = &iss
}

// executeSynthesize invokes the model for the final answer. Unlike
// executeToolCall, a failure here is not converted to a tripstate.Issue:
// the original executor() has no try/except around its synthesis call
// either, so a synthesis failure propagates as a fatal run error
// (spec.md §7) rather than letting the run reach Responder with an empty
// final answer as if synthesis had succeeded.
func executeSynthesize(ctx context.Context, d *Deps, s *tripstate.State, step *tripstate.PlanStep) error {
	if d.Model == nil {
		step.Status = tripstate.StepDone
		return nil
	}

	prompt := buildSynthesisPrompt(s)
	out, err := d.Model.InvokeText(ctx, llm.Request{
		System: synthesizeSystemPrompt, User: s.UserQuery, Context: prompt, Tags: []string{"synthesize"},
	})
	if err == nil && d.Fault != nil {
		err = d.Fault.MaybeLLMError()
	}
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	s.FinalAnswer = out
	s.ItineraryDayTitles = extractDayTitles(out)
	step.Status = tripstate.StepDone
	return nil
}

func buildSynthesisPrompt(s *tripstate.State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Constraints: origin=%s destinations=%s dates=%s..%s budget=%.0f travelers=%d pace=%s interests=%s\n",
		s.Constraints.Origin, strings.Join(s.Constraints.Destinations, ","), s.Constraints.StartDate, s.Constraints.EndDate,
		s.Constraints.BudgetUSD, s.Constraints.Travelers, s.Constraints.Pace, strings.Join(s.Constraints.Interests, ","))

	hits := s.ContextHits
	if len(hits) > 5 {
		hits = hits[:5]
	}
	for _, h := range hits {
		fmt.Fprintf(&b, "Context: %s\n", truncateForPrompt(h.Text, 300))
	}

	results := s.ToolResults
	if len(results) > 12 {
		results = results[len(results)-12:]
	}
	for _, r := range results {
		fmt.Fprintf(&b, "Tool %s: %s\n", r.ToolName, r.Summary)
		links := r.Links
		if len(links) > 5 {
			links = links[:5]
		}
		for _, l := range links {
			fmt.Fprintf(&b, "  - %s: %s\n", l.Label, l.URL)
		}
	}

	return b.String()
}

func truncateForPrompt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func extractDayTitles(answer string) []string {
	matches := dayHeadingPattern.FindAllStringSubmatch(answer, -1)
	titles := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(titles) == maxItineraryDayTitles {
			break
		}
		title := strings.TrimSpace(m[2])
		if title == "" {
			title = "Day " + m[1]
		}
		titles = append(titles, title)
	}
	return titles
}
