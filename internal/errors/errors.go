package errors

import "errors"

// This package defines a centralized set of sentinel errors for the
// application. Services return these recognizable errors without coupling
// themselves to transport details; boundaries check them with `errors.Is()`
// and map them to HTTP status codes or user-facing behavior.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to 404 Not Found by the dev server.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed business rule
	// validation. Mapped to 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signifies that an operation conflicts with the current
	// state of a resource, such as signing up an email that is already
	// registered. Mapped to 409 Conflict.
	ErrConflict = errors.New("resource conflict")

	// ErrUnauthorized signifies that credentials were missing or wrong.
	// Mapped to 401 Unauthorized.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable signifies that the answering service could not be
	// reached or returned a non-success status. The controller turns this
	// into a synthetic assistant message instead of surfacing it.
	ErrUnavailable = errors.New("backend unavailable")

	// ErrInternal signifies an unexpected server-side error. Mapped to 500
	// Internal Server Error without leaking details.
	ErrInternal = errors.New("internal server error")
)
