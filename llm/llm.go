// Package llm declares the text-in/text-out LLM collaborator contract the
// planning nodes depend on, plus a mock and concrete provider backends.
package llm

import "context"

// Request is a single LLM invocation. System carries the fixed instruction
// for the call site (e.g. the Intent parser's JSON-schema prompt, or the
// Synthesize step's section/disclaimer instruction); User carries the
// caller-supplied content; Context is optional extra grounding text
// (compacted memory hits / tool results); Tags are free-form labels used
// only for telemetry/metrics attribution, never sent to the provider.
type Request struct {
	System  string
	User    string
	Context string
	Tags    []string
}

// Model is the narrow text-in/text-out contract spec.md §6 names:
// invoke_text({system, user, context?, tags?}) -> string. Errors propagate
// as typed errors; callers (the Executor's synthesis call, the Intent
// parser) do not retry LLM failures themselves — fault-injected or
// provider errors become tripstate.Issue values at the call site.
type Model interface {
	InvokeText(ctx context.Context, req Request) (string, error)
}

// compose builds the single combined prompt string a Model implementation
// ultimately sends downstream, joining System/Context/User with blank-line
// separators in that order.
func compose(req Request) string {
	out := req.System
	if req.Context != "" {
		out += "\n\n" + req.Context
	}
	if req.User != "" {
		out += "\n\n" + req.User
	}
	return out
}
