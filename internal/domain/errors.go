package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, selling an already-sold vehicle).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidDate is returned when a calendar-date string does not parse as a
// valid "YYYY-MM-DD" date, or when a range start falls after its end.
// Handlers should map this to HTTP 400.
var ErrInvalidDate = errors.New("invalid date")

// ErrConflict is returned when a create would violate a uniqueness rule
// (e.g. a vehicle with the same plate already exists).
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("already exists")

// ErrUnauthorized is returned by the auth service on unknown username or
// wrong password. Handlers should map this to HTTP 401 without revealing
// which of the two checks failed.
var ErrUnauthorized = errors.New("unauthorized")
