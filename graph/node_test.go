package graph

import (
	"context"
	"errors"
	"testing"
)

// testState is a minimal state type shared across node/edge/engine tests.
type testState struct {
	Value   string
	Counter int
}

func TestNodeInterface(t *testing.T) {
	ctx := context.Background()
	state := &testState{Value: "initial"}

	node := NodeFunc[*testState](func(_ context.Context, s *testState) NodeResult[*testState] {
		s.Value = "updated"
		s.Counter++
		return NodeResult[*testState]{Delta: s, Route: Stop()}
	})

	result := node.Run(ctx, state)

	if result.Delta.Value != "updated" {
		t.Errorf("expected Delta.Value = %q, got %q", "updated", result.Delta.Value)
	}
	if result.Delta.Counter != 1 {
		t.Errorf("expected Delta.Counter = 1, got %d", result.Delta.Counter)
	}
	if !result.Route.Terminal {
		t.Error("expected Route.Terminal = true for Stop()")
	}
	if result.Err != nil {
		t.Errorf("expected no error, got %v", result.Err)
	}
}

func TestNodeWithContext(t *testing.T) {
	type ctxKey string
	const key ctxKey = "test-key"

	ctx := context.WithValue(context.Background(), key, "context-value")

	node := NodeFunc[*testState](func(ctx context.Context, s *testState) NodeResult[*testState] {
		val, ok := ctx.Value(key).(string)
		if !ok {
			return NodeResult[*testState]{Err: &NodeError{Message: "context value missing"}}
		}
		s.Value = val
		return NodeResult[*testState]{Delta: s, Route: Stop()}
	})

	result := node.Run(ctx, &testState{})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Delta.Value != "context-value" {
		t.Errorf("expected Delta.Value = %q, got %q", "context-value", result.Delta.Value)
	}
}

func TestNodeError(t *testing.T) {
	node := NodeFunc[*testState](func(_ context.Context, _ *testState) NodeResult[*testState] {
		return NodeResult[*testState]{Err: &NodeError{Message: "boom", Code: "TEST_ERROR", NodeID: "widget"}}
	})

	result := node.Run(context.Background(), &testState{})

	if result.Err == nil {
		t.Fatal("expected error, got nil")
	}
	var nodeErr *NodeError
	if !errors.As(result.Err, &nodeErr) {
		t.Fatalf("expected *NodeError, got %T", result.Err)
	}
	if nodeErr.Code != "TEST_ERROR" {
		t.Errorf("expected Code = %q, got %q", "TEST_ERROR", nodeErr.Code)
	}
	if nodeErr.Error() != "node widget: boom" {
		t.Errorf("unexpected Error() string: %q", nodeErr.Error())
	}
}

func TestNodeError_UnwrapsCause(t *testing.T) {
	cause := errors.New("underlying failure")
	nodeErr := &NodeError{Message: "wrapped", Cause: cause}

	if !errors.Is(nodeErr, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestNext_StopAndGoto(t *testing.T) {
	stop := Stop()
	if !stop.Terminal || stop.To != "" {
		t.Errorf("Stop() = %+v, want Terminal=true To=\"\"", stop)
	}

	goTo := Goto("next-node")
	if goTo.Terminal || goTo.To != "next-node" {
		t.Errorf("Goto(%q) = %+v, want Terminal=false To=%q", "next-node", goTo, "next-node")
	}

	zero := Next{}
	if zero.Terminal || zero.To != "" {
		t.Error("zero value Next should have Terminal=false and To empty, signaling edge-based routing")
	}
}

func TestNodeFunc_Wrapper(t *testing.T) {
	var _ Node[*testState] = NodeFunc[*testState](func(_ context.Context, s *testState) NodeResult[*testState] {
		return NodeResult[*testState]{Delta: s, Route: Stop()}
	})

	executed := false
	node := NodeFunc[*testState](func(_ context.Context, s *testState) NodeResult[*testState] {
		executed = true
		s.Value += "-processed"
		return NodeResult[*testState]{Delta: s, Route: Stop()}
	})

	result := node.Run(context.Background(), &testState{Value: "input"})

	if !executed {
		t.Error("NodeFunc should have executed the wrapped function")
	}
	if result.Delta.Value != "input-processed" {
		t.Errorf("expected Delta.Value = %q, got %q", "input-processed", result.Delta.Value)
	}
}
