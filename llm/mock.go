package llm

import (
	"context"
	"sync"
)

// MockModel is a test double for Model, grounded on graph/model/mock.go's
// MockChatModel: configurable canned responses, call history, and error
// injection, safe for concurrent use.
type MockModel struct {
	// Responses is returned in order, one per call; the last response
	// repeats once exhausted.
	Responses []string

	// Err, if set, is returned instead of a response.
	Err error

	// Calls records every request passed to InvokeText.
	Calls []Request

	mu        sync.Mutex
	callIndex int
}

// InvokeText implements Model.
func (m *MockModel) InvokeText(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return "", nil
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
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}

// CallCount reports how many times InvokeText has been called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
