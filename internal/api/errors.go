package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/authors-api/internal/api/shared"
	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/patch"
	"github.com/phrazzld/authors-api/internal/service"
	"github.com/phrazzld/authors-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// A duplicate name caught by the service check is a client error; one
	// caught only by the unique index lost a race with another request.
	case errors.Is(err, service.ErrDuplicateAuthor):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		service.IsClientError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var dup *service.DuplicateAuthorError
	switch {
	// Not found errors
	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, store.ErrAuthorNotFound):
		return "Author not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Duplicates
	case errors.As(err, &dup):
		return dup.Error()
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Bad request errors
	case errors.Is(err, domain.ErrValidation):
		return "Validation failed"
	case errors.Is(err, patch.ErrInvalidDocument):
		return "Invalid patch document"
	case errors.Is(err, domain.ErrBookWithoutAuthors):
		return domain.ErrBookWithoutAuthors.Error()
	case errors.Is(err, service.ErrUnknownAuthor):
		return service.ErrUnknownAuthor.Error()
	case errors.Is(err, domain.ErrDuplicateAuthorLink):
		return domain.ErrDuplicateAuthorLink.Error()
	case errors.Is(err, service.ErrAuthorIDMismatch):
		return service.ErrAuthorIDMismatch.Error()
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// ErrorDetails lists the individual failures behind a validation or patch
// error, or nil for any other error.
func ErrorDetails(err error) []shared.ErrorDetail {
	var verrs *domain.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]shared.ErrorDetail, 0, len(verrs.Fields))
		for _, f := range verrs.Fields {
			details = append(details, shared.ErrorDetail{Field: f.Field, Rule: f.Rule, Message: f.Message})
		}
		return details
	}

	var perr *patch.Error
	if errors.As(err, &perr) {
		details := make([]shared.ErrorDetail, 0, len(perr.Operations))
		for _, op := range perr.Operations {
			d := shared.ErrorDetail{Op: op.Op, Path: op.Path, Message: op.Message}
			if op.Index >= 0 {
				index := op.Index
				d.Operation = &index
			}
			details = append(details, d)
		}
		return details
	}
	return nil
}

// HandleAPIError writes the error response for err. Server errors use
// defaultMsg, when given, instead of the generic message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	opts := []shared.ResponseOption{shared.WithDetails(ErrorDetails(err))}
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
