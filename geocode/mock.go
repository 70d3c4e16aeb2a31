package geocode

import (
	"context"
	"sync"
)

// MockGeocoder is a test double for Geocoder, grounded on the teacher's
// Mock*/Responses/Err/Calls/Reset/CallCount shape (graph/tool/mock.go,
// graph/model/mock.go).
type MockGeocoder struct {
	Responses []Result
	Err       error
	Calls     []string

	mu        sync.Mutex
	callIndex int
}

// Geocode implements Geocoder.
func (m *MockGeocoder) Geocode(ctx context.Context, place string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, place)

	if m.Err != nil {
		return Result{}, m.Err
	}
	if len(m.Responses) == 0 {
		return Result{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Reset clears call history and rewinds the response index.
func (m *MockGeocoder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}

// CallCount reports how many times Geocode has been invoked.
func (m *MockGeocoder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
