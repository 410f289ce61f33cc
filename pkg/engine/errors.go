package engine

import (
	"errors"
	"fmt"
)

// ErrSessionOver is returned when a turn or round advance is applied
// to a session whose status is already terminal. Terminal sessions
// are immutable; callers should surface this as a conflict rather
// than retrying.
var ErrSessionOver = errors.New("session is over")

// ValidationError reports an oracle payload that fails its structural
// contract. It is returned before any state mutation is attempted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid oracle payload: %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a payload validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
