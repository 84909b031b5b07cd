package state

import (
	"errors"
	"fmt"
)

// ValidationError reports which field of a state, label or literal was rejected.
type ValidationError struct {
	// Field names the rejected input, e.g. "memory[0x1001]" or "registers.x9".
	Field string

	// Value is the offending input as written by the caller.
	Value string

	// Reason is a human-readable description of the violated rule.
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func invalid(field, value, reason string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
