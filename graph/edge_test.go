package graph

import "testing"

func TestEdge_UnconditionalHasNilPredicate(t *testing.T) {
	e := Edge[*testState]{From: "a", To: "b"}
	if e.When != nil {
		t.Error("an edge built without When should be unconditional (nil predicate)")
	}
}

func TestEdge_ConditionalPredicateEvaluatesState(t *testing.T) {
	e := Edge[*testState]{
		From: "a",
		To:   "b",
		When: func(s *testState) bool { return s.Counter > 0 },
	}

	if e.When(&testState{Counter: 0}) {
		t.Error("predicate should be false when Counter == 0")
	}
	if !e.When(&testState{Counter: 1}) {
		t.Error("predicate should be true when Counter > 0")
	}
}

func TestPredicate_NilMeansUnconditional(t *testing.T) {
	var p Predicate[*testState]
	if p != nil {
		t.Fatal("zero value Predicate should be nil")
	}
}
