// Package apperror defines the error kinds surfaced to API callers.
package apperror

import (
	"errors"
	"fmt"
)

// Kind is a short machine-checkable error category.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindDependency   Kind = "dependency"
)

// Error carries a Kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or policy-violating input.
func Validation(format string, args ...interface{}) *Error {
	return newf(KindValidation, format, args...)
}

// NotFound reports a missing order, item, review, product or account.
func NotFound(format string, args ...interface{}) *Error {
	return newf(KindNotFound, format, args...)
}

// Forbidden reports that the caller does not own the resource.
func Forbidden(format string, args ...interface{}) *Error {
	return newf(KindForbidden, format, args...)
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...interface{}) *Error {
	return newf(KindConflict, format, args...)
}

// Unauthorized reports missing or invalid credentials.
func Unauthorized(format string, args ...interface{}) *Error {
	return newf(KindUnauthorized, format, args...)
}

// Dependency wraps a failure of the underlying store or broker.
func Dependency(err error, format string, args ...interface{}) *Error {
	e := newf(KindDependency, format, args...)
	e.Err = err
	return e
}

// KindOf returns the Kind of the first *Error in err's chain.
// Errors that carry no kind are treated as dependency failures.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDependency
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// Message returns the caller-facing message for err.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}
