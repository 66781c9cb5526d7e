package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// PostgresAuthorStore implements the store.AuthorStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuthorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuthorStore creates a new PostgreSQL implementation of the AuthorStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAuthorStore(db store.DBTX, logger *slog.Logger) *PostgresAuthorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresAuthorStore{
		db:     db,
		logger: logger.With(slog.String("component", "author_store")),
	}
}

// Ensure PostgresAuthorStore implements store.AuthorStore interface
var _ store.AuthorStore = (*PostgresAuthorStore)(nil)

// WithTx implements store.AuthorStore.WithTx
func (s *PostgresAuthorStore) WithTx(tx *sql.Tx) store.AuthorStore {
	return &PostgresAuthorStore{db: tx, logger: s.logger}
}

// List implements store.AuthorStore.List
func (s *PostgresAuthorStore) List(ctx context.Context) ([]*domain.Author, error) {
	return s.queryAuthors(ctx, `SELECT id, name FROM authors ORDER BY id`)
}

// SearchByName implements store.AuthorStore.SearchByName
func (s *PostgresAuthorStore) SearchByName(ctx context.Context, fragment string) ([]*domain.Author, error) {
	query := `
		SELECT id, name
		FROM authors
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY id
	`
	return s.queryAuthors(ctx, query, escapeLike(fragment))
}

func (s *PostgresAuthorStore) queryAuthors(ctx context.Context, query string, args ...any) ([]*domain.Author, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query authors", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	authors := []*domain.Author{}
	for rows.Next() {
		var a domain.Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			log.Error("failed to scan author row", slog.String("error", err.Error()))
			return nil, err
		}
		authors = append(authors, &a)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating author rows", slog.String("error", err.Error()))
		return nil, err
	}

	log.Debug("authors retrieved", slog.Int("count", len(authors)))
	return authors, nil
}

// GetByID implements store.AuthorStore.GetByID
// Returns store.ErrAuthorNotFound if the author does not exist.
func (s *PostgresAuthorStore) GetByID(ctx context.Context, id int64, includeBooks bool) (*domain.Author, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var a domain.Author
	err := s.db.QueryRowContext(ctx, `SELECT id, name FROM authors WHERE id = $1`, id).Scan(&a.ID, &a.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("author not found", slog.Int64("author_id", id))
			return nil, store.ErrAuthorNotFound
		}
		log.Error("failed to get author by ID",
			slog.String("error", err.Error()),
			slog.Int64("author_id", id))
		return nil, MapError(err)
	}

	if includeBooks {
		links, err := s.bookLinks(ctx, id)
		if err != nil {
			log.Error("failed to load author book links",
				slog.String("error", err.Error()),
				slog.Int64("author_id", id))
			return nil, err
		}
		a.Books = links
	}

	return &a, nil
}

func (s *PostgresAuthorStore) bookLinks(ctx context.Context, authorID int64) ([]domain.AuthorBook, error) {
	query := `
		SELECT author_id, book_id, sort_order
		FROM book_authors
		WHERE author_id = $1
		ORDER BY book_id
	`
	rows, err := s.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	links := []domain.AuthorBook{}
	for rows.Next() {
		var l domain.AuthorBook
		if err := rows.Scan(&l.AuthorID, &l.BookID, &l.Order); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// NameExists implements store.AuthorStore.NameExists
func (s *PostgresAuthorStore) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM authors WHERE name = $1 AND id <> $2)`,
		name, excludeID,
	).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check author name",
			slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return exists, nil
}

// FindExistingIDs implements store.AuthorStore.FindExistingIDs
func (s *PostgresAuthorStore) FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM authors WHERE id = ANY($1)`, ids)
	if err != nil {
		log.Error("failed to look up author ids", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	found := make([]int64, 0, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("author ids resolved",
		slog.Int("requested", len(ids)),
		slog.Int("found", len(found)))
	return found, nil
}

// Create implements store.AuthorStore.Create
// Returns store.ErrAuthorNameExists if the name is already taken.
func (s *PostgresAuthorStore) Create(ctx context.Context, author *domain.Author) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO authors (name) VALUES ($1) RETURNING id`,
		author.Name,
	).Scan(&author.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("author name already exists", slog.String("name", author.Name))
			return fmt.Errorf("%w: %s", store.ErrAuthorNameExists, author.Name)
		}
		log.Error("failed to create author", slog.String("error", err.Error()))
		return store.NewStoreError("author", "create", "failed to insert author", MapError(err))
	}

	log.Info("author created", slog.Int64("author_id", author.ID))
	return nil
}

// Update implements store.AuthorStore.Update
func (s *PostgresAuthorStore) Update(ctx context.Context, author *domain.Author) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE authors SET name = $1 WHERE id = $2`,
		author.Name, author.ID,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("author name already exists", slog.String("name", author.Name))
			return fmt.Errorf("%w: %s", store.ErrAuthorNameExists, author.Name)
		}
		log.Error("failed to update author",
			slog.String("error", err.Error()),
			slog.Int64("author_id", author.ID))
		return store.NewStoreError("author", "update", "failed to update author", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrAuthorNotFound); err != nil {
		return err
	}

	log.Info("author updated", slog.Int64("author_id", author.ID))
	return nil
}

// Delete implements store.AuthorStore.Delete
func (s *PostgresAuthorStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete author",
			slog.String("error", err.Error()),
			slog.Int64("author_id", id))
		return store.NewStoreError("author", "delete", "failed to delete author", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrAuthorNotFound); err != nil {
		return err
	}

	log.Info("author deleted", slog.Int64("author_id", id))
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes the LIKE metacharacters in s so it matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
