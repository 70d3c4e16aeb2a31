package toolkit

import (
	"context"
	"fmt"
)

// Registry is a name->Tool map. The Executor invokes tools by name with
// keyword args (spec.md §2's Tool Registry responsibility) rather than
// holding direct references to tool implementations.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds tool under its own Name(). A later Register with the same
// name overwrites the earlier one, which lets tests swap in MockTool for
// any built-in.
func (r *Registry) Register(tool Tool) {
	r.tools[tool.Name()] = tool
}

// Lookup returns the tool registered under name, and whether it exists.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke looks up name and calls it with args. Returns an error only when
// the name is unregistered; a registered tool is expected to never error on
// missing optional inputs (spec.md §6).
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("toolkit: no tool registered under name %q", name)
	}
	return tool.Call(ctx, args)
}

// NewDefaultRegistry builds a Registry pre-populated with the deterministic
// link-builder tools named in spec.md §4.6's allow-list plus
// distance_and_time from §6.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FlightsSearchLinks{})
	r.Register(&HotelsSearchLinks{})
	r.Register(&ThingsToDoLinks{})
	r.Register(&WeatherSummary{})
	r.Register(&DistanceAndTime{})
	return r
}
