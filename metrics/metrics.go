// Package metrics collects Prometheus counters/histograms for the run plus
// a per-run JSONL summary record, grounded on graph/metrics.go's
// promauto.With(registry) factory pattern, re-targeted at the domain
// series spec.md §4.3/§4.11 names instead of the teacher's concurrency
// scheduler metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds every Prometheus series this module emits plus the
// in-memory counters mirrored into the per-run metrics.jsonl summary.
// It implements graph.NodeMetricsSink.
type Collector struct {
	ragRetrievals     prometheus.Counter
	ragLatency        prometheus.Histogram
	memoryHits        prometheus.Counter
	toolCalls         *prometheus.CounterVec
	toolErrors        *prometheus.CounterVec
	toolRetries       *prometheus.CounterVec
	toolLatency       *prometheus.HistogramVec
	nodeTransitions   *prometheus.CounterVec
	nodeErrors        *prometheus.CounterVec
	stepLatency       *prometheus.HistogramVec

	snapshot Snapshot
}

// Snapshot is a plain-value mirror of the counters above, used to build
// the per-run metrics.jsonl record (spec.md §6's persisted-state layout).
// Prometheus counters are write-only from the client's perspective, so the
// Collector keeps its own running totals in parallel.
type Snapshot struct {
	RAGRetrievals        int            `json:"rag_retrievals"`
	MemoryRetrievalHits  int            `json:"memory_retrieval_hits"`
	ToolCalls            int            `json:"tool_calls"`
	ToolErrors           int            `json:"tool_errors"`
	ToolRetries          int            `json:"tool_retries"`
	GraphNodeTransitions int            `json:"graph_node_transitions"`
	GraphNodeErrors      int            `json:"graph_node_errors"`
	ToolLatencyMs        map[string]int64 `json:"tool_latency_ms"`
}

// NewCollector registers every series with registry (use
// prometheus.NewRegistry() for test isolation; prometheus.DefaultRegisterer
// for a process-wide collector).
func NewCollector(registry prometheus.Registerer) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Collector{
		ragRetrievals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "rag_retrievals_total",
			Help: "Number of RETRIEVE_CONTEXT steps that queried memory.",
		}),
		ragLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tripchat", Name: "rag_retrieval_latency_ms",
			Help:    "Latency of memory search calls, in milliseconds.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		memoryHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "memory_retrieval_hits_total",
			Help: "Cumulative count of context hits returned by memory search.",
		}),
		toolCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "tool_calls_total",
			Help: "Number of tool invocations, per tool.",
		}, []string{"tool"}),
		toolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "tool_errors_total",
			Help: "Number of tool invocations that ultimately failed, per tool.",
		}, []string{"tool"}),
		toolRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "tool_retries_total",
			Help: "Number of retry attempts issued, per tool.",
		}, []string{"tool"}),
		toolLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripchat", Name: "tool_latency_ms",
			Help:    "Tool call latency in milliseconds, per tool.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}, []string{"tool"}),
		nodeTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "graph_node_transitions_total",
			Help: "Number of times execution entered a node.",
		}, []string{"node"}),
		nodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tripchat", Name: "graph_node_errors_total",
			Help: "Number of fatal node errors, per node.",
		}, []string{"node"}),
		stepLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tripchat", Name: "step_latency_ms",
			Help:    "Node execution duration in milliseconds.",
			Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000},
		}, []string{"node"}),
		snapshot: Snapshot{ToolLatencyMs: make(map[string]int64)},
	}
}

// IncNodeTransitions implements graph.NodeMetricsSink.
func (c *Collector) IncNodeTransitions(nodeID string) {
	c.nodeTransitions.WithLabelValues(nodeID).Inc()
	c.snapshot.GraphNodeTransitions++
}

// IncNodeErrors implements graph.NodeMetricsSink.
func (c *Collector) IncNodeErrors(nodeID string) {
	c.nodeErrors.WithLabelValues(nodeID).Inc()
	c.snapshot.GraphNodeErrors++
}

// RecordStepLatency observes a node's wall-clock duration.
func (c *Collector) RecordStepLatency(nodeID string, d time.Duration) {
	c.stepLatency.WithLabelValues(nodeID).Observe(float64(d.Milliseconds()))
}

// RecordRAGRetrieval records a RETRIEVE_CONTEXT step's latency and hit
// count (spec.md §4.3).
func (c *Collector) RecordRAGRetrieval(latency time.Duration, hits int) {
	c.ragRetrievals.Inc()
	c.ragLatency.Observe(float64(latency.Milliseconds()))
	c.memoryHits.Add(float64(hits))
	c.snapshot.RAGRetrievals++
	c.snapshot.MemoryRetrievalHits += hits
}

// RecordToolCall records one TOOL_CALL attempt, success or failure.
func (c *Collector) RecordToolCall(tool string, latency time.Duration, errored bool) {
	c.toolCalls.WithLabelValues(tool).Inc()
	c.toolLatency.WithLabelValues(tool).Observe(float64(latency.Milliseconds()))
	c.snapshot.ToolCalls++
	c.snapshot.ToolLatencyMs[tool] += latency.Milliseconds()
	if errored {
		c.toolErrors.WithLabelValues(tool).Inc()
		c.snapshot.ToolErrors++
	}
}

// RecordToolRetry records one additional retry attempt for tool.
func (c *Collector) RecordToolRetry(tool string) {
	c.toolRetries.WithLabelValues(tool).Inc()
	c.snapshot.ToolRetries++
}

// Snapshot returns a copy of the running totals for the per-run
// metrics.jsonl summary.
func (c *Collector) Snapshot() Snapshot {
	cp := c.snapshot
	cp.ToolLatencyMs = make(map[string]int64, len(c.snapshot.ToolLatencyMs))
	for k, v := range c.snapshot.ToolLatencyMs {
		cp.ToolLatencyMs[k] = v
	}
	return cp
}
