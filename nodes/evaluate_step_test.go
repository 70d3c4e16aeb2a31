package nodes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripchat/tripplanner/tripstate"
)

func TestEvaluateStepNode_NoCurrentStepIsNoop(t *testing.T) {
	d := testDeps()
	s := newTestState("trip")

	node := NewEvaluateStepNode(d)
	result := node.Run(context.Background(), s)

	assert.Nil(t, result.Delta.CurrentStep)
}

func TestEvaluateStepNode_BuildsBlockedEventForBlockedStep(t *testing.T) {
	step := tripstate.PlanStep{ID: "s1", Title: "Search flights", StepType: tripstate.StepToolCall, Status: tripstate.StepBlocked}
	s := newTestState("trip")
	s.CurrentStep = &step

	entry := buildStepEntry(s, &step)

	assert.Equal(t, "step_blocked", entry.Event)
	assert.Equal(t, "s1", entry.StepID)
}

func TestEvaluateStepNode_BuildsCompletedEventForDoneStep(t *testing.T) {
	step := tripstate.PlanStep{ID: "s2", StepType: tripstate.StepSynthesize, Status: tripstate.StepDone}
	s := newTestState("trip")
	s.CurrentStep = &step

	entry := buildStepEntry(s, &step)

	assert.Equal(t, "step_completed", entry.Event)
}
