package grader

import (
	"errors"
	"fmt"
)

// ProtocolError reports simulator output the grader cannot interpret, such
// as a watched register that never appears.
type ProtocolError struct {
	// Target is the watch token involved, e.g. "$v0".
	Target string

	// Reason describes what was wrong with the output.
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("simulator protocol error for %s: %s", e.Target, e.Reason)
}

// IsProtocolError returns true if err is or wraps a *ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
