// Package apperr carries the error taxonomy surfaced by the API: every error
// a service returns either is an *Error with an HTTP status attached, or is
// treated as a server error by the handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a client-visible failure with its HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// NotFound — referenced entity does not exist.
func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict — the operation contradicts existing state (duplicate name,
// category still in use).
func Conflict(format string, args ...any) *Error {
	return &Error{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

// Invalid — the request itself is malformed or incomplete.
func Invalid(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized — missing or bad credentials/session.
func Unauthorized(format string, args ...any) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Upstream — a collaborator (storage, geo lookup) failed.
func Upstream(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadGateway, Message: fmt.Sprintf(format, args...)}
}

// StatusOf maps any error to the HTTP status it should surface with.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}
