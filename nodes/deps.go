// Package nodes implements the thirteen graph.Node[*tripstate.State]
// implementations spec.md §4.1-§4.9 describe, wired together by Register.
// Each node is grounded on the teacher's NodeFunc adapter shape
// (graph/node.go) and mutates the pointed-to tripstate.State in place,
// returning routing via graph.Next rather than conditional edges wherever
// the spec's routing depends on a field the node itself just set.
package nodes

import (
	"github.com/tripchat/tripplanner/config"
	"github.com/tripchat/tripplanner/fault"
	"github.com/tripchat/tripplanner/geocode"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/metrics"
	"github.com/tripchat/tripplanner/telemetry"
	"github.com/tripchat/tripplanner/toolkit"
)

// Deps bundles every collaborator a node may need. Nodes hold a *Deps
// rather than individual fields so adding a new collaborator doesn't churn
// every node constructor's signature.
type Deps struct {
	Model     llm.Model
	Tools     *toolkit.Registry
	Geocoder  geocode.Geocoder
	Memory    memory.Store
	Fault     *fault.Injector
	Telemetry *telemetry.Controller
	Metrics   *metrics.Collector
	Config    config.Config
}
