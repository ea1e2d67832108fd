package actor

import (
	"errors"
	"fmt"
)

// Error is returned for contract violations and failed lookups on actors.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Class names the class involved, if any.
	Class string

	// Instance is the instance ID involved, if any.
	Instance string
}

// ErrorCode categorizes actor errors.
type ErrorCode string

const (
	// ErrCodeNotAttached indicates the sprite is not registered with a project.
	ErrCodeNotAttached ErrorCode = "NOT_ATTACHED"

	// ErrCodeNotAClone indicates delete_this_clone on an original instance.
	ErrCodeNotAClone ErrorCode = "NOT_A_CLONE"

	// ErrCodeNoInstance indicates a class has no live instance to resolve.
	ErrCodeNoInstance ErrorCode = "NO_INSTANCE"

	// ErrCodeNotSprite indicates a sprite-only operation on a non-sprite class.
	ErrCodeNotSprite ErrorCode = "NOT_SPRITE"

	// ErrCodeInvalidClass indicates a malformed class declaration.
	ErrCodeInvalidClass ErrorCode = "INVALID_CLASS"
)

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Class != "" && e.Instance != "":
		return fmt.Sprintf("%s: %s (class=%s, instance=%s)", e.Code, e.Message, e.Class, e.Instance)
	case e.Class != "":
		return fmt.Sprintf("%s: %s (class=%s)", e.Code, e.Message, e.Class)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// IsNotAttached returns true if err reports an unregistered sprite.
func IsNotAttached(err error) bool {
	return HasCode(err, ErrCodeNotAttached)
}

// IsLookupError returns true if err reports a failed instance lookup,
// either a class with no live instance or a sprite with no project.
func IsLookupError(err error) bool {
	return HasCode(err, ErrCodeNoInstance) || HasCode(err, ErrCodeNotAttached)
}

// NewNotAttachedError creates an Error for operations that need a project.
func NewNotAttachedError(op string, s *Sprite) *Error {
	e := &Error{
		Code:    ErrCodeNotAttached,
		Message: fmt.Sprintf("%s(): sprite is not registered with a project", op),
	}
	if s != nil {
		e.Class = s.class.Name
		e.Instance = s.id
	}
	return e
}

// NewNoInstanceError creates an Error for a class with no live instance.
func NewNoInstanceError(class string) *Error {
	return &Error{
		Code:    ErrCodeNoInstance,
		Message: "class has no registered instance",
		Class:   class,
	}
}

func invalidClass(class, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeInvalidClass,
		Message: fmt.Sprintf(format, args...),
		Class:   class,
	}
}
