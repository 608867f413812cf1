package chat

import (
	"context"
	"fmt"
	"slices"
)

// Step is one registered unit of a conversation.
type Step struct {
	ID StepID

	// Prompt is shown when the step is entered. Render, if set, replaces it
	// with text computed from the session.
	Prompt string
	Render func(s *Session) string

	// Validate returns a user-facing rejection reason, or nil to accept the input.
	Validate func(input string) error

	// Handle runs after the input is accepted and before the transition.
	Handle func(ctx context.Context, s *Session, input string) error

	// Enter runs every time the step is entered, before its prompt is rendered.
	Enter func(ctx context.Context, s *Session) error

	// Auto steps transition right after Enter, without waiting for input.
	Auto bool

	Next Transition
}

// PromptFor returns the prompt text for the given session.
func (s *Step) PromptFor(session *Session) string {
	if s.Render != nil {
		return s.Render(session)
	}
	return s.Prompt
}

// Transition resolves the step that follows an accepted input.
type Transition interface {
	Resolve(input string, data *SessionData, self StepID) StepID
	// Targets enumerates every step the transition can resolve to, besides self.
	Targets() []StepID
}

// Goto always moves to the same step.
type Goto StepID

func (g Goto) Resolve(_ string, _ *SessionData, _ StepID) StepID { return StepID(g) }
func (g Goto) Targets() []StepID                                 { return []StepID{StepID(g)} }

// Option maps menu keywords (including the menu number) to a target step.
type Option struct {
	Keywords []string
	Target   StepID
}

// Choice picks the first option matching the normalized input; anything else
// stays on the current step.
type Choice []Option

func (c Choice) Resolve(input string, _ *SessionData, self StepID) StepID {
	normalized := NormalizeInput(input)
	for _, opt := range c {
		if slices.Contains(opt.Keywords, normalized) {
			return opt.Target
		}
	}
	return self
}

func (c Choice) Targets() []StepID {
	targets := make([]StepID, 0, len(c))
	for _, opt := range c {
		targets = append(targets, opt.Target)
	}
	return targets
}

// ValidateWorkflow checks that the step table is closed: every transition
// target is a registered step or StepEnd, and keys match step IDs.
func ValidateWorkflow(w Workflow) error {
	if _, ok := w.GetStep(w.InitialStep()); !ok {
		return fmt.Errorf("initial step not registered: %s", w.InitialStep())
	}
	for _, id := range w.Steps() {
		step, ok := w.GetStep(id)
		if !ok || step == nil {
			return fmt.Errorf("step listed but not registered: %s", id)
		}
		if step.ID != id {
			return fmt.Errorf("step %s registered under key %s", step.ID, id)
		}
		if id == StepEnd {
			return fmt.Errorf("terminal marker %s must not be registered", StepEnd)
		}
		if step.Next == nil {
			return fmt.Errorf("step %s has no transition", id)
		}
		if step.Prompt == "" && step.Render == nil {
			return fmt.Errorf("step %s has no prompt", id)
		}
		for _, target := range step.Next.Targets() {
			if target == StepEnd {
				continue
			}
			if _, ok := w.GetStep(target); !ok {
				return fmt.Errorf("step %s transitions to unregistered step %s", id, target)
			}
		}
	}
	return validateAutoChains(w)
}

// validateAutoChains rejects auto steps that can chain back into themselves or
// form a chain longer than one message may run.
func validateAutoChains(w Workflow) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[StepID]int)
	depth := make(map[StepID]int)

	var visit func(id StepID) error
	visit = func(id StepID) error {
		step, ok := w.GetStep(id)
		if !ok || !step.Auto {
			return nil
		}
		switch state[id] {
		case visiting:
			return fmt.Errorf("auto step %s is part of a cycle of auto steps", id)
		case done:
			return nil
		}
		state[id] = visiting

		longest := 0
		for _, next := range autoSuccessors(step) {
			if next == StepEnd {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
			longest = max(longest, depth[next])
		}
		depth[id] = longest + 1
		if depth[id] > maxTransitions {
			return fmt.Errorf("auto step %s starts a chain of %d auto steps, limit is %d", id, depth[id], maxTransitions)
		}
		state[id] = done
		return nil
	}

	for _, id := range w.Steps() {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}

// autoSuccessors lists where an auto step can go when it is resolved without input.
func autoSuccessors(step *Step) []StepID {
	next := step.Next.Targets()
	if self := step.Next.Resolve("", &SessionData{}, step.ID); !slices.Contains(next, self) {
		next = append(next, self)
	}
	return next
}
