// Package store persists graph run state so cmd/tripchat can resume a run
// across clarifying-question turns without re-executing completed nodes.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a requested run ID does not exist.
var ErrNotFound = errors.New("not found")

// Store persists the latest state of a run, keyed by run ID.
//
// This is deliberately narrower than a full checkpoint/replay store: the
// engine is single-threaded per run (spec.md §5) and the only resumption
// scenario is "the CLI asked the user a clarifying question, the user
// answered, re-invoke with updated state" (spec.md §6) — a single
// save-then-load-latest round trip per turn is sufficient.
type Store[S any] interface {
	// SaveStep persists state after a node execution step.
	SaveStep(ctx context.Context, runID string, step int, nodeID string, state S) error

	// LoadLatest retrieves the most recently saved state for a run.
	// Returns ErrNotFound if runID has no saved steps.
	LoadLatest(ctx context.Context, runID string) (state S, step int, err error)
}

// StepRecord is a single persisted execution step.
type StepRecord[S any] struct {
	Step   int
	NodeID string
	State  S
}
