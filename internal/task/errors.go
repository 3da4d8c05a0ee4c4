package task

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by store operations on an unknown id.
	ErrNotFound = errors.New("task not found")

	// ErrNotRecurring means the recurrence engine was invoked on a
	// non-recurring task. That is a caller bug, not bad user input.
	ErrNotRecurring = errors.New("task is not recurring")
)

// ValidationError reports a malformed add/edit request field.
// It carries the specific reason so callers can surface it verbatim.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
