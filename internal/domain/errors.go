package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared across services and repositories. The HTTP layer maps
// these to status codes; anything else is surfaced as a generic internal error.
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateSlug = errors.New("an event with this slug already exists")
)

// ValidationError carries the field-level violations of a rejected submission.
// It unwraps to ErrInvalidInput so callers can match it with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, " ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }
