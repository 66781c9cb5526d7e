package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/patch"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// BookInput carries the client-supplied fields for creating or replacing a
// book. AuthorIDs is ordered: the first id becomes the first author.
type BookInput struct {
	Title           string
	PublicationDate *time.Time
	AuthorIDs       []int64
}

// BookService provides book-related operations.
type BookService interface {
	// ListBooks returns every book without related rows.
	ListBooks(ctx context.Context) ([]*domain.Book, error)

	// GetBook returns a book with its authors, in order, and its comments.
	GetBook(ctx context.Context, id int64) (*domain.Book, error)

	// CreateBook stores a new book linked to the given authors.
	CreateBook(ctx context.Context, in BookInput) (*domain.Book, error)

	// ReplaceBook overwrites the title, date and whole author list of a book.
	ReplaceBook(ctx context.Context, id int64, in BookInput) error

	// PatchBook applies a JSON Patch document to the title and date of a book.
	PatchBook(ctx context.Context, id int64, document []byte) error

	// DeleteBook removes a book together with its author links and comments.
	DeleteBook(ctx context.Context, id int64) error
}

type bookServiceImpl struct {
	db      *sql.DB
	books   store.BookStore
	authors store.AuthorStore
	logger  *slog.Logger
}

// NewBookService creates a new BookService.
// It returns an error if any of the required dependencies are nil.
func NewBookService(
	db *sql.DB,
	books store.BookStore,
	authors store.AuthorStore,
	logger *slog.Logger,
) (BookService, error) {
	if db == nil {
		return nil, errNilDependency("db")
	}
	if books == nil {
		return nil, errNilDependency("books")
	}
	if authors == nil {
		return nil, errNilDependency("authors")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &bookServiceImpl{
		db:      db,
		books:   books,
		authors: authors,
		logger:  logger.With(slog.String("component", "book_service")),
	}, nil
}

// ListBooks implements BookService.ListBooks
func (s *bookServiceImpl) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list books",
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_books", "failed to list books", err)
	}
	return books, nil
}

// GetBook implements BookService.GetBook
func (s *bookServiceImpl) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := s.books.GetByID(ctx, id, store.BookIncludes{Authors: true, Comments: true})
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("book not found", slog.Int64("book_id", id))
			return nil, NewServiceError("get_book", "book not found", store.ErrBookNotFound)
		}
		log.Error("failed to retrieve book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return nil, NewServiceError("get_book", "failed to retrieve book", err)
	}

	domain.SortAuthorsByOrder(book)
	return book, nil
}

// CreateBook implements BookService.CreateBook
func (s *bookServiceImpl) CreateBook(ctx context.Context, in BookInput) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(in.Title, in.PublicationDate, in.AuthorIDs)
	if err != nil {
		log.Debug("rejected book input", slog.String("error", err.Error()))
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, "create_book", func(ctx context.Context, tx *sql.Tx) error {
		if err := checkAuthorsExist(ctx, s.authors.WithTx(tx), book.AuthorIDs()); err != nil {
			return err
		}
		if err := s.books.WithTx(tx).Create(ctx, book); err != nil {
			return NewServiceError("create_book", "failed to save book", err)
		}
		return nil
	})
	if err != nil {
		logFailure(log, "failed to create book", err)
		return nil, err
	}

	log.Info("book created",
		slog.Int64("book_id", book.ID),
		slog.Int("author_count", len(book.Authors)))
	return book, nil
}

// ReplaceBook implements BookService.ReplaceBook
func (s *bookServiceImpl) ReplaceBook(ctx context.Context, id int64, in BookInput) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	book, err := domain.NewBook(in.Title, in.PublicationDate, in.AuthorIDs)
	if err != nil {
		log.Debug("rejected book input",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return err
	}
	book.AssignID(id)

	err = store.RunInTransaction(ctx, s.db, "replace_book", func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)

		exists, err := books.Exists(ctx, id)
		if err != nil {
			return NewServiceError("replace_book", "failed to look up book", err)
		}
		if !exists {
			return NewServiceError("replace_book", "book not found", store.ErrBookNotFound)
		}

		if err := checkAuthorsExist(ctx, s.authors.WithTx(tx), book.AuthorIDs()); err != nil {
			return err
		}
		if err := books.Update(ctx, book); err != nil {
			return NewServiceError("replace_book", "failed to update book", err)
		}
		if err := books.ReplaceAuthors(ctx, id, book.Authors); err != nil {
			return NewServiceError("replace_book", "failed to replace book authors", err)
		}
		return nil
	})
	if err != nil {
		logFailure(log, "failed to replace book", err, slog.Int64("book_id", id))
		return err
	}

	log.Info("book replaced", slog.Int64("book_id", id))
	return nil
}

// PatchBook implements BookService.PatchBook
// Only the title and publication date can be patched. The patched values are
// validated with the full rule set before anything is written.
func (s *bookServiceImpl) PatchBook(ctx context.Context, id int64, document []byte) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, "patch_book", func(ctx context.Context, tx *sql.Tx) error {
		books := s.books.WithTx(tx)

		book, err := books.GetByID(ctx, id, store.BookIncludes{})
		if err != nil {
			if store.IsNotFoundError(err) {
				return NewServiceError("patch_book", "book not found", store.ErrBookNotFound)
			}
			return NewServiceError("patch_book", "failed to retrieve book", err)
		}

		target := domain.NewBookPatch(book)
		if err := patch.Apply(document, &target); err != nil {
			return err
		}
		if err := target.Validate(); err != nil {
			return err
		}
		target.ApplyTo(book)

		if err := books.Update(ctx, book); err != nil {
			return NewServiceError("patch_book", "failed to update book", err)
		}
		return nil
	})
	if err != nil {
		logFailure(log, "failed to patch book", err, slog.Int64("book_id", id))
		return err
	}

	log.Info("book patched", slog.Int64("book_id", id))
	return nil
}

// DeleteBook implements BookService.DeleteBook
func (s *bookServiceImpl) DeleteBook(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.books.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("delete_book", "book not found", store.ErrBookNotFound)
		}
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return NewServiceError("delete_book", "failed to delete book", err)
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	return nil
}

// checkAuthorsExist returns ErrUnknownAuthor unless every id in ids belongs
// to a stored author. ids must not contain duplicates.
func checkAuthorsExist(ctx context.Context, authors store.AuthorStore, ids []int64) error {
	found, err := authors.FindExistingIDs(ctx, ids)
	if err != nil {
		return NewServiceError("check_authors", "failed to look up authors", err)
	}
	if len(found) != len(ids) {
		return ErrUnknownAuthor
	}
	return nil
}

// logFailure logs client errors at debug level and everything else at
// error level.
func logFailure(log *slog.Logger, msg string, err error, attrs ...any) {
	attrs = append(attrs, slog.String("error", err.Error()))
	if IsClientError(err) {
		log.Debug(msg, attrs...)
		return
	}
	log.Error(msg, attrs...)
}
