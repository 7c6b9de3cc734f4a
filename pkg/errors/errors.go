// ================== pkg/errors/errors.go =================
package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the moderation core wraps exactly one of these.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAuthorization = errors.New("insufficient permissions")
	ErrConflict      = errors.New("conflict")
	ErrValidation    = errors.New("validation failed")
	ErrDependency    = errors.New("dependency failed")
	ErrInternal      = errors.New("internal server error")
)

// Error carries a kind, a message safe to show to an admin, and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func newError(kind error, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// Validation reports malformed input.
func Validation(format string, args ...interface{}) *Error {
	return newError(ErrValidation, nil, format, args...)
}

// NotFound reports a missing report, user or content item.
func NotFound(format string, args ...interface{}) *Error {
	return newError(ErrNotFound, nil, format, args...)
}

// Conflict reports a report that is already terminal or was claimed by someone else.
func Conflict(format string, args ...interface{}) *Error {
	return newError(ErrConflict, nil, format, args...)
}

// Authorization reports a principal without the required role or tag scope.
func Authorization(format string, args ...interface{}) *Error {
	return newError(ErrAuthorization, nil, format, args...)
}

// Dependency reports a failed call to a content or user store during a multi-step action.
func Dependency(cause error, format string, args ...interface{}) *Error {
	return newError(ErrDependency, cause, format, args...)
}

// KindOf returns the kind of err, or ErrInternal if err carries none.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrConflict, ErrAuthorization, ErrUnauthorized, ErrDependency} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// Message returns the admin-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Error()
}
