// Package telemetry implements the tiered structured logger spec.md §4.11
// describes: minimal/detailed/selective modes, sensitive-key redaction,
// truncation, and a failure tracker with a combined per-run log. It is
// grounded on graph/emit's Event/Emitter/LogEmitter/BufferedEmitter trio —
// the same io.Writer-based JSONL idiom and in-memory ring buffer, retargeted
// at spec.md's richer Entry shape and tiered-mode semantics instead of the
// teacher's flat always-on event stream.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel/trace"
)

// Mode selects how aggressively the Controller writes entries through.
type Mode string

const (
	// ModeMinimal writes only allow-listed business events plus any event
	// whose name ends in "_error".
	ModeMinimal Mode = "minimal"
	// ModeDetailed always writes every entry immediately.
	ModeDetailed Mode = "detailed"
	// ModeSelective buffers entries (capacity BufferCapacity) until a
	// signal escalates the run, at which point the buffer flushes in
	// order and the controller behaves like ModeDetailed for the rest
	// of the run.
	ModeSelective Mode = "selective"
)

// BufferCapacity is the selective-mode ring buffer size (spec.md §4.11:
// "buffer up to N≈50 events").
const BufferCapacity = 50

// defaultAllowlist is the minimal-mode business-event allow-list. Any event
// name ending in "_error" is always written regardless of this list.
var defaultAllowlist = map[string]bool{
	"run_started":           true,
	"run_finalized":         true,
	"run_asked_user":        true,
	"plan_created":          true,
	"step_completed":        true,
	"step_blocked":          true,
	"evaluation_completed":  true,
	"ics_exported":          true,
	"memory_written":        true,
	"disambiguation_needed": true,
}

// Controller is the per-run telemetry sink threaded through node calls, per
// spec.md §9 ("global singletons become per-run contexts"). It owns no
// process-wide state; the driver creates one Controller per run and
// discards it at run end.
type Controller struct {
	mode      Mode
	runID     string
	userID    string
	maxChars  int
	allowlist map[string]bool

	traceWriter    io.Writer
	combinedWriter io.Writer

	mu        sync.Mutex
	buffer    []Entry
	escalated bool
	tracer    trace.Tracer
}

// NewController builds a Controller. traceWriter receives every entry this
// controller decides to write through (logs/trace.jsonl); combinedWriter
// additionally receives the same entries for cross-correlation with failure
// records (logs/combined_<run>.jsonl). Either writer may be nil to disable
// that output stream.
func NewController(mode Mode, runID, userID string, traceWriter, combinedWriter io.Writer) *Controller {
	return &Controller{
		mode:           mode,
		runID:          runID,
		userID:         userID,
		maxChars:       DefaultMaxChars,
		allowlist:      defaultAllowlist,
		traceWriter:    traceWriter,
		combinedWriter: combinedWriter,
	}
}

// SetMaxChars overrides the truncation limit (default DefaultMaxChars).
func (c *Controller) SetMaxChars(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxChars = n
}

// Record applies redaction/truncation to entry's Data and either writes it
// through immediately, drops it (minimal mode, non-allow-listed), or
// buffers it (selective mode, pre-escalation).
func (c *Controller) Record(entry Entry) {
	entry.RunID = c.runID
	if entry.UserID == "" {
		entry.UserID = c.userID
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry.Data = Redact(entry.Data, c.maxChars)
	entry = stamp(entry)

	switch c.mode {
	case ModeDetailed:
		c.writeLocked(entry)
	case ModeSelective:
		if c.escalated {
			c.writeLocked(entry)
			return
		}
		c.buffer = append(c.buffer, entry)
		if len(c.buffer) > BufferCapacity {
			c.buffer = c.buffer[len(c.buffer)-BufferCapacity:]
		}
	case ModeMinimal:
		if c.isAllowed(entry.Event) {
			c.writeLocked(entry)
		}
	default:
		c.writeLocked(entry)
	}
}

func (c *Controller) isAllowed(event string) bool {
	if c.allowlist[event] {
		return true
	}
	return len(event) > len("_error") && event[len(event)-len("_error"):] == "_error"
}

// Escalate flushes any buffered selective-mode entries in order and puts
// the controller into write-through mode for the remainder of the run.
// Calling Escalate when the mode isn't ModeSelective, or when already
// escalated, is a no-op.
func (c *Controller) Escalate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != ModeSelective || c.escalated {
		return
	}
	c.escalated = true
	buffered := c.buffer
	c.buffer = nil
	for _, e := range buffered {
		c.writeLocked(e)
	}
}

// writeLocked marshals entry as one JSONL line to both configured writers.
// Caller must hold c.mu.
func (c *Controller) writeLocked(entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	if c.traceWriter != nil {
		_, _ = c.traceWriter.Write(data)
	}
	if c.combinedWriter != nil {
		_, _ = c.combinedWriter.Write(data)
	}
}

// Infof is a convenience for a minimal info-level entry; useful from nodes
// that just want to log a message without building a full Entry literal.
func (c *Controller) Infof(module, event, graphNode string, format string, args ...interface{}) {
	c.Record(Entry{
		Level:     "info",
		Module:    module,
		Event:     event,
		Message:   fmt.Sprintf(format, args...),
		GraphNode: graphNode,
	})
}
