package phase

import "fmt"

// SetupFailure wraps an error or panic raised by a workload's setup.
type SetupFailure struct {
	Cause error
}

func (e *SetupFailure) Error() string {
	return fmt.Sprintf("setup failed: %v", e.Cause)
}

func (e *SetupFailure) Unwrap() error {
	return e.Cause
}

// BodyPanic is a panic recovered from the timed body.
type BodyPanic struct {
	State State
	Value any
}

func (e *BodyPanic) Error() string {
	return fmt.Sprintf("body panicked during %s: %v", e.State, e.Value)
}
