package graph

import "errors"

// ErrRecursionLimitExceeded indicates the graph made more node transitions
// than the recursion limit allows. This is distinct from the orchestrator's
// own max_iters: recursion_limit bounds total node transitions across the
// whole run (including context/intent/validator/responder/etc.), max_iters
// bounds only the orchestrator⇄executor loop.
var ErrRecursionLimitExceeded = errors.New("graph: exceeded recursion limit")

// ErrNoRoute indicates no edge, conditional router, or explicit Next
// matched after a node ran.
var ErrNoRoute = errors.New("graph: no valid route from node")
