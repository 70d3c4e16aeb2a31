package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewMemoryWriterNode builds the final node, persisting a trip summary and
// the user's durable profile/preference facts back to the memory store so
// future runs can reconcile against them (spec.md §4.5's memory-conflict
// reconciliation reads what this node writes).
func NewMemoryWriterNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if d.Memory == nil {
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		summary := tripSummaryText(s)
		if summary != "" {
			if _, err := d.Memory.AddSession(ctx, summary, s.RunID, string(memory.DocTypeTripSummary), map[string]interface{}{
				"destinations": s.Constraints.Destinations,
				"start_date":   s.Constraints.StartDate,
				"end_date":     s.Constraints.EndDate,
			}); err != nil {
				s.ValidationWarnings = append(s.ValidationWarnings, "memory writer: trip summary not saved: "+err.Error())
			}
		}

		if s.Constraints.Origin != "" {
			if _, err := d.Memory.AddUser(ctx, "origin: "+s.Constraints.Origin, s.UserID, string(memory.DocTypeProfile), map[string]interface{}{
				"origin": s.Constraints.Origin,
			}); err != nil {
				s.ValidationWarnings = append(s.ValidationWarnings, "memory writer: profile not saved: "+err.Error())
			}
		}

		if len(s.Constraints.Interests) > 0 {
			interests := make([]interface{}, len(s.Constraints.Interests))
			for i, v := range s.Constraints.Interests {
				interests[i] = v
			}
			if _, err := d.Memory.AddUser(ctx, "interests: "+strings.Join(s.Constraints.Interests, ", "), s.UserID, string(memory.DocTypePreference), map[string]interface{}{
				"interests": interests,
			}); err != nil {
				s.ValidationWarnings = append(s.ValidationWarnings, "memory writer: preferences not saved: "+err.Error())
			}
		}

		if d.Telemetry != nil {
			d.Telemetry.Infof("nodes", "memory_written", "memory_writer", "run %s wrote trip summary and profile facts", s.RunID)
		}

		return graph.NodeResult[*tripstate.State]{Delta: s, Route: graph.Stop()}
	})
}

func tripSummaryText(s *tripstate.State) string {
	if len(s.Constraints.Destinations) == 0 {
		return ""
	}
	return fmt.Sprintf("Trip from %s to %s, %s to %s.",
		s.Constraints.Origin, strings.Join(s.Constraints.Destinations, ", "), s.Constraints.StartDate, s.Constraints.EndDate)
}
