package core

import (
	"errors"
	"fmt"
)

// ErrShuttingDown is returned by Schedule once pool shutdown has begun.
// The rejected task is never run and, for task-set submissions, the
// set's in-flight counter is left unchanged.
var ErrShuttingDown = errors.New("taskpool: pool is shutting down")

// TaskPanicError wraps a panic recovered from a task scheduled through
// a TaskSet. The first failure of a set is returned from Wait; later
// failures are retained for diagnostics (see TaskSet.Failures).
type TaskPanicError struct {
	// Value is the value recovered from the panicking task.
	Value any

	// Stack is the stack trace captured at recovery time.
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("taskpool: task panicked: %v", e.Value)
}
