package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/authors-api/internal/domain"
)

// AuthorStore defines the interface for author data persistence.
type AuthorStore interface {
	// List returns every author ordered by id. Book links are not loaded.
	List(ctx context.Context) ([]*domain.Author, error)

	// GetByID retrieves an author by id. When includeBooks is set the
	// author's Books links are loaded as well.
	// Returns ErrAuthorNotFound if the author does not exist.
	GetByID(ctx context.Context, id int64, includeBooks bool) (*domain.Author, error)

	// SearchByName returns every author whose name contains fragment,
	// ignoring case. An empty result is not an error.
	SearchByName(ctx context.Context, fragment string) ([]*domain.Author, error)

	// NameExists reports whether an author other than excludeID already
	// uses name. Pass 0 to check against every author.
	NameExists(ctx context.Context, name string, excludeID int64) (bool, error)

	// FindExistingIDs returns the subset of ids that belong to stored
	// authors, in no particular order.
	FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error)

	// Create inserts author and sets its ID.
	// Returns ErrAuthorNameExists if the name is already taken.
	Create(ctx context.Context, author *domain.Author) error

	// Update overwrites the stored name of author.
	// Returns ErrAuthorNotFound if the author does not exist.
	Update(ctx context.Context, author *domain.Author) error

	// Delete removes an author and, through ON DELETE CASCADE, its book
	// links. The books themselves are kept.
	// Returns ErrAuthorNotFound if the author does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns an AuthorStore that runs its queries on tx.
	WithTx(tx *sql.Tx) AuthorStore
}
