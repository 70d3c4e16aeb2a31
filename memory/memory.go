// Package memory implements the memory collaborator spec.md §6 describes:
// add_session/add_user/search over profile, preference, trip_summary,
// tool_output, and note documents. It is grounded on
// graph/store/{sqlite,mysql}.go's connection-pool-and-schema idiom, with
// the checkpoint/idempotency/outbox tables dropped (out of scope for this
// non-resumable-by-row storage layer) in favor of a single documents table.
package memory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a lookup by id finds nothing.
var ErrNotFound = errors.New("memory: not found")

// DocType enumerates the document kinds spec.md §6 names.
type DocType string

const (
	DocTypeProfile     DocType = "profile"
	DocTypePreference  DocType = "preference"
	DocTypeTripSummary DocType = "trip_summary"
	DocTypeToolOutput  DocType = "tool_output"
	DocTypeNote        DocType = "note"
)

// Hit is one search result: a stored document plus its relevance distance
// (lower is closer, mirroring vector-search convention even though this
// module's scorer is a deterministic token-overlap heuristic rather than
// embeddings — spec.md §1 places real vector search out of scope).
type Hit struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	Distance float64                `json:"distance"`
}

// SearchQuery parameterizes Store.Search.
type SearchQuery struct {
	Query          string
	K              int
	IncludeUser    bool
	IncludeSession bool
	RunID          string
	UserID         string
}

// Store is the memory collaborator contract: add_session, add_user, search.
type Store interface {
	// AddSession stores a session-scoped document (tied to a run_id) and
	// returns its generated id.
	AddSession(ctx context.Context, text, runID, docType string, metadata map[string]interface{}) (string, error)
	// AddUser stores a user-scoped document (tied to a user_id, persists
	// across runs) and returns its generated id.
	AddUser(ctx context.Context, text, userID, docType string, metadata map[string]interface{}) (string, error)
	// Search returns up to q.K hits ranked by ascending distance.
	Search(ctx context.Context, q SearchQuery) ([]Hit, error)
	// Close releases underlying resources.
	Close() error
}
