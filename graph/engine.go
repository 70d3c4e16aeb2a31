package graph

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"

	"github.com/tripchat/tripplanner/graph/emit"
	"github.com/tripchat/tripplanner/graph/store"
)

// contextKey is a private type for context value keys, avoiding collisions
// with keys from other packages.
type contextKey string

const (
	// RunIDKey is the context key for the run identifier.
	RunIDKey contextKey = "graph.run_id"
	// NodeIDKey is the context key for the currently executing node.
	NodeIDKey contextKey = "graph.node_id"
	// StepKey is the context key for the current transition count.
	StepKey contextKey = "graph.step"
	// RNGKey is the context key for the run's seeded *rand.Rand.
	RNGKey contextKey = "graph.rng"
)

// InitRNG creates a deterministic random number generator seeded from
// runID: SHA-256(runID), first 8 bytes as an int64 seed. fault.Injector
// seeds its own PRNG from FAILURE_SEED the same way.
func InitRNG(runID string) *rand.Rand {
	hasher := sha256.New()
	hasher.Write([]byte(runID))
	hashBytes := hasher.Sum(nil)
	seed := int64(binary.BigEndian.Uint64(hashBytes[:8])) // #nosec G115 -- deterministic seeding, not security
	return rand.New(rand.NewSource(seed))                 // #nosec G404 -- deterministic by design
}

// EngineError is a fatal, engine-level error distinct from a NodeError
// (which names the node that failed).
type EngineError struct {
	Message string
	Code    string
}

func (e *EngineError) Error() string { return e.Message }

// Options configures Engine execution. Zero value is valid; RecursionLimit
// defaults to 200 if left at 0.
type Options struct {
	// RecursionLimit caps the number of node transitions in a single Run,
	// independent of any orchestrator-level iteration counter. Per
	// spec.md §5 it must be >= 10*max_iters with a floor of 200;
	// cmd/tripchat is responsible for computing that from config.
	RecursionLimit int

	// Metrics receives graph_node_transitions / graph_node_errors counts.
	// Typically a *metrics.Collector; nil disables counting.
	Metrics NodeMetricsSink
}

// NodeMetricsSink receives per-transition counters from the Engine. It is
// satisfied by *metrics.Collector; kept as a narrow interface here so
// `graph` does not import the `metrics` package.
type NodeMetricsSink interface {
	IncNodeTransitions(nodeID string)
	IncNodeErrors(nodeID string)
}

// Engine orchestrates sequential, single-threaded execution of a typed
// state through a registered graph of nodes and edges.
type Engine[S any] struct {
	mu sync.RWMutex

	nodes     map[string]Node[S]
	edges     []Edge[S]
	startNode string

	store   store.Store[S]
	emitter emit.Emitter
	opts    Options
}

// New constructs an Engine. store and emitter may be nil (a nil store
// skips step persistence; a nil emitter skips event emission).
func New[S any](st store.Store[S], emitter emit.Emitter, opts Options) *Engine[S] {
	if opts.RecursionLimit <= 0 {
		opts.RecursionLimit = 200
	}
	return &Engine[S]{
		nodes:   make(map[string]Node[S]),
		store:   st,
		emitter: emitter,
		opts:    opts,
	}
}

// Add registers a node under nodeID. Returns an error if nodeID is empty
// or already registered.
func (e *Engine[S]) Add(nodeID string, node Node[S]) error {
	if nodeID == "" {
		return fmt.Errorf("graph: node id must not be empty")
	}
	if node == nil {
		return fmt.Errorf("graph: node %q must not be nil", nodeID)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.nodes[nodeID]; exists {
		return fmt.Errorf("graph: node %q already registered", nodeID)
	}
	e.nodes[nodeID] = node
	return nil
}

// StartAt designates the entry point for Run.
func (e *Engine[S]) StartAt(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.nodes[nodeID]; !exists {
		return fmt.Errorf("graph: start node %q not registered", nodeID)
	}
	e.startNode = nodeID
	return nil
}

// Connect registers an edge from -> to, traversed when predicate is nil or
// returns true. Multiple edges from the same node are evaluated in
// registration order; the first match wins.
func (e *Engine[S]) Connect(from, to string, predicate Predicate[S]) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.nodes[from]; !exists {
		return fmt.Errorf("graph: edge from unregistered node %q", from)
	}
	if to != "" {
		if _, exists := e.nodes[to]; !exists {
			return fmt.Errorf("graph: edge to unregistered node %q", to)
		}
	}
	e.edges = append(e.edges, Edge[S]{From: from, To: to, When: predicate})
	return nil
}

// Run drives state through the graph starting at the registered start
// node until a node returns Stop(), an edge resolves to the empty sink, or
// the recursion limit is exceeded.
func (e *Engine[S]) Run(ctx context.Context, runID string, state S) (S, error) {
	var zero S
	if e == nil {
		return zero, &EngineError{Message: "engine is nil", Code: "NIL_ENGINE"}
	}
	if e.startNode == "" {
		return zero, &EngineError{Message: "start node not set", Code: "NO_START_NODE"}
	}

	rng := InitRNG(runID)
	ctx = context.WithValue(ctx, RNGKey, rng)
	ctx = context.WithValue(ctx, RunIDKey, runID)

	currentNode := e.startNode
	transitions := 0

	for {
		transitions++
		if transitions > e.opts.RecursionLimit {
			return zero, ErrRecursionLimitExceeded
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		e.mu.RLock()
		node, exists := e.nodes[currentNode]
		e.mu.RUnlock()
		if !exists {
			return zero, &EngineError{Message: "node not found: " + currentNode, Code: "NODE_NOT_FOUND"}
		}

		nodeCtx := context.WithValue(ctx, NodeIDKey, currentNode)
		nodeCtx = context.WithValue(nodeCtx, StepKey, transitions)

		e.emit(runID, currentNode, transitions, "node_enter", nil)
		if e.opts.Metrics != nil {
			e.opts.Metrics.IncNodeTransitions(currentNode)
		}

		result := node.Run(nodeCtx, state)
		if result.Err != nil {
			e.emit(runID, currentNode, transitions, "node_error", map[string]any{"error": result.Err.Error()})
			if e.opts.Metrics != nil {
				e.opts.Metrics.IncNodeErrors(currentNode)
			}
			return zero, result.Err
		}
		state = result.Delta

		e.emit(runID, currentNode, transitions, "node_exit", nil)

		if e.store != nil {
			if err := e.store.SaveStep(ctx, runID, transitions, currentNode, state); err != nil {
				return zero, &EngineError{Message: "store: " + err.Error(), Code: "STORE_ERROR"}
			}
		}

		if result.Route.Terminal {
			e.emit(runID, currentNode, transitions, "routing_decision", map[string]any{"terminal": true})
			return state, nil
		}

		if result.Route.To != "" {
			e.emit(runID, currentNode, transitions, "routing_decision", map[string]any{"next_node": result.Route.To})
			currentNode = result.Route.To
			continue
		}

		nextNode, ok := e.evaluateEdges(currentNode, state)
		if !ok {
			return state, nil
		}
		e.emit(runID, currentNode, transitions, "routing_decision", map[string]any{"next_node": nextNode, "via_edge": true})
		currentNode = nextNode
	}
}

// evaluateEdges resolves the next node by exact-edge/predicate precedence:
// the first registered edge whose predicate is nil or true wins. A "to ==
// empty string" edge is the designated sink; matching it ends the run
// cleanly (ok=false signals "stop, not an error").
func (e *Engine[S]) evaluateEdges(fromNode string, state S) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, edge := range e.edges {
		if edge.From != fromNode {
			continue
		}
		if edge.When == nil || edge.When(state) {
			if edge.To == "" {
				return "", false
			}
			return edge.To, true
		}
	}
	return "", false
}

func (e *Engine[S]) emit(runID, nodeID string, step int, msg string, meta map[string]any) {
	if e.emitter == nil {
		return
	}
	e.emitter.Emit(emit.Event{RunID: runID, Step: step, NodeID: nodeID, Msg: msg, Meta: meta})
}
