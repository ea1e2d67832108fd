package hooks

import (
	"errors"
	"fmt"
	"strings"
)

// UnsupportedError is returned by trigger builders for values outside their
// legal set.
type UnsupportedError struct {
	// Kind names what was being validated, e.g. "button" or "gesture".
	Kind string

	// Value is the offending value as given.
	Value string

	// Legal lists the accepted values. Empty when the set is too large to
	// list usefully.
	Legal []string

	// Hint is an optional extra sentence, e.g. a suggested spelling.
	Hint string
}

// Error implements the error interface.
func (e *UnsupportedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s '%s' is not one of the supported %ss", capitalize(e.Kind), e.Value, e.Kind)
	if len(e.Legal) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Legal, ", "))
	}
	if e.Hint != "" {
		b.WriteString("; ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// IsUnsupported returns true if err is an *UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
