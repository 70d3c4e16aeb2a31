package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// doc is the internal representation shared by MockStore's in-memory slice.
type doc struct {
	id       string
	text     string
	runID    string
	userID   string
	docType  string
	metadata map[string]interface{}
}

// MockStore is an in-memory Store for unit tests that don't need a real
// database, scored identically to SQLiteStore/MySQLStore via score.go.
type MockStore struct {
	mu   sync.Mutex
	docs []doc
}

// NewMockStore builds an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{}
}

// AddSession implements Store.
func (m *MockStore) AddSession(_ context.Context, text, runID, docType string, metadata map[string]interface{}) (string, error) {
	return m.add(text, runID, "", docType, metadata), nil
}

// AddUser implements Store.
func (m *MockStore) AddUser(_ context.Context, text, userID, docType string, metadata map[string]interface{}) (string, error) {
	return m.add(text, "", userID, docType, metadata), nil
}

func (m *MockStore) add(text, runID, userID, docType string, metadata map[string]interface{}) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.docs = append(m.docs, doc{id: id, text: text, runID: runID, userID: userID, docType: docType, metadata: metadata})
	return id
}

// Search implements Store.
func (m *MockStore) Search(_ context.Context, q SearchQuery) ([]Hit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var hits []Hit
	for _, d := range m.docs {
		matchesSession := q.IncludeSession && q.RunID != "" && d.runID == q.RunID
		matchesUser := q.IncludeUser && q.UserID != "" && d.userID == q.UserID
		if !matchesSession && !matchesUser {
			continue
		}
		hits = append(hits, Hit{ID: d.id, Text: d.text, Metadata: d.metadata, Distance: distance(q.Query, d.text)})
	}

	for i := 0; i < len(hits); i++ {
		for j := i + 1; j < len(hits); j++ {
			if hits[j].Distance < hits[i].Distance {
				hits[i], hits[j] = hits[j], hits[i]
			}
		}
	}
	if q.K > 0 && len(hits) > q.K {
		hits = hits[:q.K]
	}
	return hits, nil
}

// Close implements Store.
func (m *MockStore) Close() error { return nil }
