package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// NewTracerProvider builds a minimal always-sampling SDK TracerProvider for
// detailed-mode runs. Callers that want spans exported to a real backend
// should register their own exporter with sdktrace.WithBatcher and pass the
// resulting provider's Tracer into SetTracer; without one, spans are
// recorded but not exported anywhere, which is sufficient for the
// detailed-mode "always instrumented" contract spec.md §4.11 asks for.
func NewTracerProvider() *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
}

// SetTracer attaches tracer to the controller. Detailed-mode controllers
// without an attached tracer skip span creation entirely (SpanFor becomes
// a no-op), so construction order doesn't matter for non-detailed modes.
func (c *Controller) SetTracer(tracer trace.Tracer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracer = tracer
}

// SpanFor starts a span named nodeID when the controller is in detailed
// mode and has a tracer attached; otherwise it returns ctx unchanged and a
// no-op end function. Nodes call this at entry and defer the returned
// function at exit, mirroring the node_enter/node_exit pair the graph
// engine already emits to the trace log.
func (c *Controller) SpanFor(ctx context.Context, nodeID string) (context.Context, func()) {
	c.mu.Lock()
	tracer := c.tracer
	mode := c.mode
	c.mu.Unlock()

	if mode != ModeDetailed || tracer == nil {
		return ctx, func() {}
	}
	spanCtx, span := tracer.Start(ctx, nodeID, trace.WithAttributes(
		attribute.String("run_id", c.runID),
	))
	return spanCtx, func() { span.End() }
}
