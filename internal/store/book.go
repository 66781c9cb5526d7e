package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/authors-api/internal/domain"
)

// BookIncludes selects the related rows GetByID loads with a book.
type BookIncludes struct {
	// Authors loads the author links, each with its Author populated.
	Authors bool
	// Comments loads the book's comments.
	Comments bool
}

// BookStore defines the interface for book data persistence.
//
// Writes that touch more than one table (Create, ReplaceAuthors) must run
// inside store.RunInTransaction through WithTx:
//
//	err := store.RunInTransaction(ctx, db, "create_book", func(ctx context.Context, tx *sql.Tx) error {
//		return bookStore.WithTx(tx).Create(ctx, book)
//	})
type BookStore interface {
	// List returns every book ordered by id, without related rows.
	List(ctx context.Context) ([]*domain.Book, error)

	// GetByID retrieves a book by id together with the related rows
	// selected by include. Author links come back in storage order; callers
	// sort them with domain.SortAuthorsByOrder.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id int64, include BookIncludes) (*domain.Book, error)

	// Exists reports whether a book with id is stored.
	Exists(ctx context.Context, id int64) (bool, error)

	// Create inserts book and its author links, then sets the book ID on
	// the book and on every link.
	Create(ctx context.Context, book *domain.Book) error

	// Update overwrites the title and publication date of book.
	// Author links are left untouched.
	// Returns ErrBookNotFound if the book does not exist.
	Update(ctx context.Context, book *domain.Book) error

	// ReplaceAuthors deletes every author link of bookID and inserts links.
	ReplaceAuthors(ctx context.Context, bookID int64, links []domain.AuthorBook) error

	// Delete removes a book; its author links and comments are removed
	// through ON DELETE CASCADE.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a BookStore that runs its queries on tx.
	WithTx(tx *sql.Tx) BookStore
}
