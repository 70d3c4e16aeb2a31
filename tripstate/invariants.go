package tripstate

import "fmt"

// CheckInvariants validates the structural invariants spec'd for State.
// It is used by tests and may be called defensively by nodes that mutate
// Plan or ToolResults directly.
func CheckInvariants(s *State) error {
	seen := make(map[string]bool, len(s.Plan))
	for _, step := range s.Plan {
		if seen[step.ID] {
			return fmt.Errorf("tripstate: duplicate plan step id %q", step.ID)
		}
		seen[step.ID] = true
		if !step.StepType.IsValid() {
			return fmt.Errorf("tripstate: invalid step type %q on step %q", step.StepType, step.ID)
		}
		if !step.Status.IsValid() {
			return fmt.Errorf("tripstate: invalid step status %q on step %q", step.Status, step.ID)
		}
	}

	if s.CurrentStepIndex < 0 || s.CurrentStepIndex > len(s.Plan) {
		return fmt.Errorf("tripstate: current_step_index %d out of range [0,%d]", s.CurrentStepIndex, len(s.Plan))
	}
	if s.CurrentStep != nil && s.CurrentStepIndex < len(s.Plan) {
		if s.CurrentStep.ID != s.Plan[s.CurrentStepIndex].ID {
			return fmt.Errorf("tripstate: current_step.id %q does not match plan[%d].id %q",
				s.CurrentStep.ID, s.CurrentStepIndex, s.Plan[s.CurrentStepIndex].ID)
		}
	}

	for _, tr := range s.ToolResults {
		if !seen[tr.StepID] {
			return fmt.Errorf("tripstate: tool_results references unknown step id %q", tr.StepID)
		}
	}

	if s.NeedsUserInput {
		if s.TerminationReason != TerminationAskedUser {
			return fmt.Errorf("tripstate: needs_user_input=true requires termination_reason=asked_user, got %q", s.TerminationReason)
		}
		if len(s.ClarifyingQuestions) == 0 {
			return fmt.Errorf("tripstate: needs_user_input=true requires non-empty clarifying_questions")
		}
	}

	if s.LoopIterations > s.MaxIters {
		return fmt.Errorf("tripstate: loop_iterations %d exceeds max_iters %d", s.LoopIterations, s.MaxIters)
	}

	if s.TerminationReason != "" && !s.TerminationReason.IsValid() {
		return fmt.Errorf("tripstate: invalid termination_reason %q", s.TerminationReason)
	}

	return nil
}

// validStatusTransition reports whether moving a step from `from` to `to`
// respects the monotonic pending->{done,blocked} rule.
func validStatusTransition(from, to StepStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StepPending:
		return to == StepDone || to == StepBlocked
	case StepDone, StepBlocked:
		return false
	default:
		return false
	}
}

// SetStepStatus transitions the step with the given id, enforcing the
// monotonic lifecycle invariant. Returns an error on an illegal transition.
func (s *State) SetStepStatus(id string, to StepStatus) error {
	step := s.StepByID(id)
	if step == nil {
		return fmt.Errorf("tripstate: unknown step id %q", id)
	}
	if !validStatusTransition(step.Status, to) {
		return fmt.Errorf("tripstate: illegal status transition %q -> %q on step %q", step.Status, to, id)
	}
	step.Status = to
	return nil
}
