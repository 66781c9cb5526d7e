package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/patch"
	"github.com/phrazzld/authors-api/internal/store"
)

// Sentinel errors for expected failure conditions. Callers check for them
// with errors.Is; the API layer maps each of them to 400 Bad Request.
var (
	// ErrUnknownAuthor indicates that at least one submitted author id does
	// not belong to a stored author.
	ErrUnknownAuthor = errors.New("no existe alguno de los autores enviados")

	// ErrDuplicateAuthor indicates that an author name is already taken.
	// The concrete error is a *DuplicateAuthorError carrying the name.
	ErrDuplicateAuthor = errors.New("an author with this name already exists")

	// ErrAuthorIDMismatch indicates that the id in a request body disagrees
	// with the id in the URL.
	ErrAuthorIDMismatch = errors.New("the author id in the body does not match the id in the URL")
)

// DuplicateAuthorError is returned when creating or renaming an author
// would reuse an existing name.
type DuplicateAuthorError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateAuthorError) Error() string {
	return fmt.Sprintf("an author named %s already exists", e.Name)
}

// Is makes errors.Is(err, ErrDuplicateAuthor) report true.
func (e *DuplicateAuthorError) Is(target error) bool {
	return target == ErrDuplicateAuthor
}

// ServiceError wraps an unexpected failure with the operation that hit it.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func errNilDependency(name string) error {
	return fmt.Errorf("%s cannot be nil", name)
}

// IsClientError reports whether err was caused by the request rather than
// by the service or its storage.
func IsClientError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrInvalidID,
		domain.ErrBookWithoutAuthors,
		domain.ErrDuplicateAuthorLink,
		patch.ErrInvalidDocument,
		ErrUnknownAuthor,
		ErrDuplicateAuthor,
		ErrAuthorIDMismatch,
		store.ErrNotFound,
		store.ErrDuplicate,
		store.ErrInvalidEntity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
