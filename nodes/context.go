package nodes

import (
	"context"
	"time"

	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/tripstate"
)

// NewContextNode builds the graph's entry node. It is not separately
// specified in spec.md §4 (the numbered sections start at the graph
// runtime and the orchestrator loop); this implementation seeds
// context_hits with an eager memory search over the raw user_query, using
// the same (k=5, include_session, include_user) contract the Executor's
// RETRIEVE_CONTEXT step uses (spec.md §4.3), so the intent parser and
// validator have prior-session/profile context available before any plan
// exists. See DESIGN.md's Open Questions for this decision.
func NewContextNode(d *Deps) graph.Node[*tripstate.State] {
	return graph.NodeFunc[*tripstate.State](func(ctx context.Context, s *tripstate.State) graph.NodeResult[*tripstate.State] {
		if d.Telemetry != nil {
			d.Telemetry.Infof("nodes", "run_started", "context", "run %s starting for user %s", s.RunID, s.UserID)
		}

		if d.Memory == nil {
			s.Signals.MemoryUnavailable = true
			return graph.NodeResult[*tripstate.State]{Delta: s}
		}

		start := time.Now()
		hits, err := d.Memory.Search(ctx, memory.SearchQuery{
			Query:          s.UserQuery,
			K:              5,
			IncludeSession: true,
			IncludeUser:    true,
			RunID:          s.RunID,
			UserID:         s.UserID,
		})
		if d.Fault != nil && d.Fault.MaybeBadRetrieval() {
			hits = nil
		}
		if err != nil {
			s.Signals.MemoryUnavailable = true
			s.ValidationWarnings = append(s.ValidationWarnings, "memory search unavailable: "+err.Error())
		}
		if d.Metrics != nil {
			d.Metrics.RecordRAGRetrieval(time.Since(start), len(hits))
		}

		for _, h := range hits {
			s.ContextHits = append(s.ContextHits, tripstate.ContextHit{
				ID: h.ID, Text: h.Text, Metadata: h.Metadata, Distance: h.Distance,
			})
		}
		if len(s.ContextHits) == 0 {
			s.Signals.NoResults = true
		}

		return graph.NodeResult[*tripstate.State]{Delta: s}
	})
}
