package microbit

import (
	"errors"
	"fmt"
)

// ValidationError reports an argument rejected before any transport call.
type ValidationError struct {
	// Op is the command or read that rejected the argument.
	Op string

	// Message describes the problem and names the offending value.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// DecodeError reports a device reply that does not fit the variable's
// shape.
type DecodeError struct {
	Variable string

	// Values is the raw reply.
	Values []string

	Message string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s %q: %s", e.Variable, e.Values, e.Message)
}

// Unwrap returns the underlying parse error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDecode returns true if err is a *DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func invalid(op, format string, args ...any) *ValidationError {
	return &ValidationError{Op: op, Message: fmt.Sprintf(format, args...)}
}
