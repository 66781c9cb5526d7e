package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// AuthorInput carries the client-supplied fields of an author. ID is only
// meaningful for a replace, where a non-zero value must match the URL id.
type AuthorInput struct {
	ID   int64
	Name string
}

// AuthorService provides author-related operations.
type AuthorService interface {
	ListAuthors(ctx context.Context) ([]*domain.Author, error)

	// GetAuthor returns an author together with its book links.
	GetAuthor(ctx context.Context, id int64) (*domain.Author, error)

	// SearchAuthors returns every author whose name contains fragment,
	// ignoring case.
	SearchAuthors(ctx context.Context, fragment string) ([]*domain.Author, error)

	CreateAuthor(ctx context.Context, in AuthorInput) (*domain.Author, error)
	ReplaceAuthor(ctx context.Context, id int64, in AuthorInput) error

	// DeleteAuthor removes an author and its book links; the books stay.
	DeleteAuthor(ctx context.Context, id int64) error
}

type authorServiceImpl struct {
	db      *sql.DB
	authors store.AuthorStore
	logger  *slog.Logger
}

// NewAuthorService creates a new AuthorService.
// It returns an error if any of the required dependencies are nil.
func NewAuthorService(db *sql.DB, authors store.AuthorStore, logger *slog.Logger) (AuthorService, error) {
	if db == nil {
		return nil, errNilDependency("db")
	}
	if authors == nil {
		return nil, errNilDependency("authors")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &authorServiceImpl{
		db:      db,
		authors: authors,
		logger:  logger.With(slog.String("component", "author_service")),
	}, nil
}

func (s *authorServiceImpl) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.authors.List(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list authors",
			slog.String("error", err.Error()))
		return nil, NewServiceError("list_authors", "failed to list authors", err)
	}
	return authors, nil
}

func (s *authorServiceImpl) GetAuthor(ctx context.Context, id int64) (*domain.Author, error) {
	author, err := s.authors.GetByID(ctx, id, true)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("get_author", "author not found", store.ErrAuthorNotFound)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve author",
			slog.String("error", err.Error()),
			slog.Int64("author_id", id))
		return nil, NewServiceError("get_author", "failed to retrieve author", err)
	}
	return author, nil
}

func (s *authorServiceImpl) SearchAuthors(ctx context.Context, fragment string) ([]*domain.Author, error) {
	authors, err := s.authors.SearchByName(ctx, fragment)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to search authors",
			slog.String("error", err.Error()))
		return nil, NewServiceError("search_authors", "failed to search authors", err)
	}
	return authors, nil
}

func (s *authorServiceImpl) CreateAuthor(ctx context.Context, in AuthorInput) (*domain.Author, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	author, err := domain.NewAuthor(in.Name)
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, "create_author", func(ctx context.Context, tx *sql.Tx) error {
		authors := s.authors.WithTx(tx)

		taken, err := authors.NameExists(ctx, author.Name, 0)
		if err != nil {
			return NewServiceError("create_author", "failed to check author name", err)
		}
		if taken {
			return &DuplicateAuthorError{Name: author.Name}
		}
		if err := authors.Create(ctx, author); err != nil {
			return NewServiceError("create_author", "failed to save author", err)
		}
		return nil
	})
	if err != nil {
		logFailure(log, "failed to create author", err)
		return nil, err
	}

	log.Info("author created", slog.Int64("author_id", author.ID))
	return author, nil
}

func (s *authorServiceImpl) ReplaceAuthor(ctx context.Context, id int64, in AuthorInput) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if in.ID != 0 && in.ID != id {
		return ErrAuthorIDMismatch
	}

	author, err := domain.NewAuthor(in.Name)
	if err != nil {
		return err
	}
	author.ID = id

	err = store.RunInTransaction(ctx, s.db, "replace_author", func(ctx context.Context, tx *sql.Tx) error {
		authors := s.authors.WithTx(tx)

		if _, err := authors.GetByID(ctx, id, false); err != nil {
			if store.IsNotFoundError(err) {
				return NewServiceError("replace_author", "author not found", store.ErrAuthorNotFound)
			}
			return NewServiceError("replace_author", "failed to retrieve author", err)
		}

		taken, err := authors.NameExists(ctx, author.Name, id)
		if err != nil {
			return NewServiceError("replace_author", "failed to check author name", err)
		}
		if taken {
			return &DuplicateAuthorError{Name: author.Name}
		}

		if err := authors.Update(ctx, author); err != nil {
			return NewServiceError("replace_author", "failed to update author", err)
		}
		return nil
	})
	if err != nil {
		logFailure(log, "failed to replace author", err, slog.Int64("author_id", id))
		return err
	}

	log.Info("author replaced", slog.Int64("author_id", id))
	return nil
}

func (s *authorServiceImpl) DeleteAuthor(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.authors.Delete(ctx, id); err != nil {
		if store.IsNotFoundError(err) {
			return NewServiceError("delete_author", "author not found", store.ErrAuthorNotFound)
		}
		log.Error("failed to delete author",
			slog.String("error", err.Error()),
			slog.Int64("author_id", id))
		return NewServiceError("delete_author", "failed to delete author", err)
	}

	log.Info("author deleted", slog.Int64("author_id", id))
	return nil
}
