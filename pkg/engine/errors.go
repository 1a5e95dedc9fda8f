package engine

import (
	"errors"
	"fmt"
)

// ErrNoRuleset indicates an evaluation was attempted before any ruleset
// was loaded.
var ErrNoRuleset = errors.New("no ruleset loaded")

// ExecutionError indicates an internal engine failure, such as the active
// ruleset failing to serialize during content hashing.
type ExecutionError struct {
	Op    string
	Cause error
}

// Error returns the error message.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution: %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
