package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownActor is returned when a rule references an actor id that is
	// not one of its templates.
	ErrUnknownActor = errors.New("unknown rule actor")
	// ErrUnknownValue is returned for a value or action kind the engine does
	// not understand.
	ErrUnknownValue = errors.New("unknown value")
	// ErrUnknownOperation is returned for an operation other than set, add
	// or subtract.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrInvalidTransform is returned when a transform value is not a D4 code.
	ErrInvalidTransform = errors.New("invalid transform")
)

// RuleError reports malformed rule data. It aborts the tick: no world is
// committed.
type RuleError struct {
	RuleID      string
	ActionIndex int    // -1 when the error is not tied to an action
	Condition   string // condition key, if the error comes from a condition
	Err         error
}

func (e *RuleError) Error() string {
	switch {
	case e.ActionIndex >= 0:
		return fmt.Sprintf("engine: rule %q action %d: %v", e.RuleID, e.ActionIndex, e.Err)
	case e.Condition != "":
		return fmt.Sprintf("engine: rule %q condition %q: %v", e.RuleID, e.Condition, e.Err)
	default:
		return fmt.Sprintf("engine: rule %q: %v", e.RuleID, e.Err)
	}
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func actionError(ruleID string, index int, err error) *RuleError {
	return &RuleError{RuleID: ruleID, ActionIndex: index, Err: err}
}

func conditionError(ruleID, key string, err error) *RuleError {
	return &RuleError{RuleID: ruleID, ActionIndex: -1, Condition: key, Err: err}
}
