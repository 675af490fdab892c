package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers and transport layers
type Kind string

const (
	KindValidation      Kind = "validation_error"
	KindNotFound        Kind = "not_found"
	KindNotAuthorized   Kind = "not_authorized"
	KindInvalidState    Kind = "invalid_state"
	KindConflict        Kind = "conflict"
	KindInvalidTarget   Kind = "invalid_target"
	KindInvalidStatus   Kind = "invalid_status"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindInternal        Kind = "internal"
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Status overrides the default HTTP status of Kind when non-zero
	Status int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithStatus overrides the HTTP status reported for this error
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an existing error
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error    { return New(KindValidation, message) }
func NotFound(message string) *Error      { return New(KindNotFound, message) }
func NotAuthorized(message string) *Error { return New(KindNotAuthorized, message) }
func InvalidState(message string) *Error  { return New(KindInvalidState, message) }
func Conflict(message string) *Error      { return New(KindConflict, message) }
func InvalidTarget(message string) *Error { return New(KindInvalidTarget, message) }
func InvalidStatus(message string) *Error { return New(KindInvalidStatus, message) }
func Forbidden(message string) *Error     { return New(KindForbidden, message) }

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

// Internal wraps an unexpected failure
func Internal(message string, err error) *Error {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of err, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// HTTPStatus maps an error onto a response status code
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	if e.Status != 0 {
		return e.Status
	}

	switch e.Kind {
	case KindValidation, KindInvalidState, KindInvalidTarget, KindInvalidStatus, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindNotAuthorized, KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message safe to show to API clients
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return "internal server error"
	}
	return e.Message
}
