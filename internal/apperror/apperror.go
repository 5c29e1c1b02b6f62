// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services return these errors; the HTTP layer maps them to status codes in
// exactly one place (handler/response.go). Store lookups that miss resolve to
// ErrNotFound rather than a distinct "internal" error — callers at the
// boundary decide how to present that.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors. Check with errors.Is — AppError implements Unwrap, so the
// sentinel is found anywhere in a wrapped chain.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// AppError carries a sentinel plus a human-readable message, and optionally
// the field that caused a validation failure.
type AppError struct {
	Err     error  // one of the sentinels above
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports that an entity id did not resolve.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// NotFoundMsg is NotFound with a caller-supplied message, for cases where
// the id alone would make a poor user-facing message.
func NotFoundMsg(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

// ValidationFailed reports a field constraint violation.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a state conflict: duplicate email, buying your own
// product, checking out an unavailable listing.
func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Forbidden reports an ownership mismatch, e.g. editing another seller's
// listing. HTTP handlers map this to 403.
func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

// Unauthenticated reports a missing or unusable credential. HTTP handlers
// map this to 401 (missing) or 403 (invalid session), mirroring the API
// contract.
func Unauthenticated(message string) *AppError {
	return &AppError{Err: ErrUnauthenticated, Message: message}
}
