package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError independently of the transport.
type Kind string

const (
	KindNotFound         Kind = "not_found"
	KindValidation       Kind = "validation"
	KindUnsupportedState Kind = "unsupported_state"
	KindConflict         Kind = "conflict"
	KindUnauthorized     Kind = "unauthorized"
)

// AppError is a custom error type that includes an HTTP status code and an optional internal error code.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Kind    Kind   // Domain classification
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind and message.
// This lets sentinel errors survive fmt.Errorf("%w") wrapping and copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates a new AppError with a status code and message.
func New(code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, kind Kind, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// WithCause returns a copy of e carrying err as its cause.
// The copy still matches e under errors.Is.
func (e *AppError) WithCause(err error) *AppError {
	return Wrap(err, e.Code, e.Kind, e.Message)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, KindNotFound, message)
}

func Validation(message string) *AppError {
	return New(http.StatusBadRequest, KindValidation, message)
}

func Conflict(message string) *AppError {
	return New(http.StatusConflict, KindConflict, message)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, KindUnauthorized, message)
}

// UnsupportedState reports the literal token that failed to parse.
func UnsupportedState(token string) *AppError {
	return New(http.StatusBadRequest, KindUnsupportedState, fmt.Sprintf("Unknown state: %s", token))
}

// KindOf returns the Kind of the first AppError in err's chain, or "" if there is none.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}
