package domain

import (
	"errors"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// ValidationErrors unwraps to it, so callers can test with errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrBookWithoutAuthors is returned when a book is created or replaced
	// with an empty author list.
	ErrBookWithoutAuthors = errors.New("no se puede crear un libro sin autores")

	// ErrDuplicateAuthorLink is returned when the same author id appears more
	// than once in the author list of a single book.
	ErrDuplicateAuthorLink = errors.New("an author can only be linked to a book once")
)

// FieldError describes a single failed rule on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationErrors collects every rule failure found while validating an
// entity. Validation never stops at the first failure.
type ValidationErrors struct {
	Entity string
	Fields []FieldError
}

// Add records a failed rule.
func (e *ValidationErrors) Add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

// OrNil returns e as an error when at least one failure was recorded, nil otherwise.
func (e *ValidationErrors) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	prefix := "validation failed"
	if e.Entity != "" {
		prefix = e.Entity + " " + prefix
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrValidation to support errors.Is.
func (e *ValidationErrors) Unwrap() error {
	return ErrValidation
}

// HasField reports whether any failure was recorded for field.
func (e *ValidationErrors) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
