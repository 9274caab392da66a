// Package apperr defines the error classes shared by every feature.
// Feature packages wrap these with %w so that the transport layer can map
// them to HTTP status codes without knowing feature-specific errors.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested owned record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a missing or invalid request parameter.
	ErrValidation = errors.New("validation failed")

	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("already exists")

	// ErrUnauthorized indicates that no authenticated identity is present.
	ErrUnauthorized = errors.New("unauthorized")
)

// classified is an error with its own message that belongs to one of the
// classes above.
type classified struct {
	class error
	msg   string
}

func (e *classified) Error() string { return e.msg }
func (e *classified) Unwrap() error { return e.class }

// New returns an error with message msg that matches class under errors.Is.
// Features use it to declare their sentinel errors.
func New(class error, msg string) error {
	return &classified{class: class, msg: msg}
}

// Validation returns an ErrValidation carrying a client-visible reason.
func Validation(format string, args ...any) error {
	return &classified{class: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// Status maps an error to the HTTP status the transport layer should use.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the client-visible message for err.
// Unclassified errors never leak their details.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
