package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/authors-api/internal/domain"
)

// CommentStore defines the interface for comment data persistence.
type CommentStore interface {
	// ListByBook returns the comments of bookID ordered by id.
	ListByBook(ctx context.Context, bookID int64) ([]domain.Comment, error)

	// Create inserts comment and sets its ID.
	// Returns ErrBookNotFound if the book does not exist.
	Create(ctx context.Context, comment *domain.Comment) error

	// WithTx returns a CommentStore that runs its queries on tx.
	WithTx(tx *sql.Tx) CommentStore
}
