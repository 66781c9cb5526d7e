package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// PostgresBookStore implements the store.BookStore interface
// using a PostgreSQL database as the storage backend.
type PostgresBookStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresBookStore creates a new PostgreSQL implementation of the BookStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresBookStore(db store.DBTX, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresBookStore{
		db:     db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

// Ensure PostgresBookStore implements store.BookStore interface
var _ store.BookStore = (*PostgresBookStore)(nil)

// WithTx implements store.BookStore.WithTx
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*domain.Book, error) {
	var (
		b    domain.Book
		date sql.NullTime
	)
	if err := row.Scan(&b.ID, &b.Title, &date); err != nil {
		return nil, err
	}
	if date.Valid {
		t := date.Time
		b.PublicationDate = &t
	}
	return &b, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// List implements store.BookStore.List
func (s *PostgresBookStore) List(ctx context.Context) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, publication_date FROM books ORDER BY id`)
	if err != nil {
		log.Error("failed to list books", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating book rows", slog.String("error", err.Error()))
		return nil, err
	}
	return books, nil
}

// GetByID implements store.BookStore.GetByID
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresBookStore) GetByID(ctx context.Context, id int64, include store.BookIncludes) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT id, title, publication_date FROM books WHERE id = $1`, id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("book not found", slog.Int64("book_id", id))
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by ID",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return nil, MapError(err)
	}

	if include.Authors {
		if book.Authors, err = s.authorLinks(ctx, id); err != nil {
			log.Error("failed to load book authors",
				slog.String("error", err.Error()),
				slog.Int64("book_id", id))
			return nil, err
		}
	}

	if include.Comments {
		if book.Comments, err = listComments(ctx, s.db, id); err != nil {
			log.Error("failed to load book comments",
				slog.String("error", err.Error()),
				slog.Int64("book_id", id))
			return nil, err
		}
	}

	return book, nil
}

// authorLinks loads the author links of a book with each Author populated.
// Rows come back unordered; ordering is applied by the caller.
func (s *PostgresBookStore) authorLinks(ctx context.Context, bookID int64) ([]domain.AuthorBook, error) {
	query := `
		SELECT ba.author_id, ba.book_id, ba.sort_order, a.name
		FROM book_authors ba
		JOIN authors a ON a.id = ba.author_id
		WHERE ba.book_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	links := []domain.AuthorBook{}
	for rows.Next() {
		var (
			l    domain.AuthorBook
			name string
		)
		if err := rows.Scan(&l.AuthorID, &l.BookID, &l.Order, &name); err != nil {
			return nil, err
		}
		l.Author = &domain.Author{ID: l.AuthorID, Name: name}
		links = append(links, l)
	}
	return links, rows.Err()
}

// Exists implements store.BookStore.Exists
func (s *PostgresBookStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check book existence",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return false, MapError(err)
	}
	return exists, nil
}

// Create implements store.BookStore.Create
// It must run inside a transaction: the book row and its author links are
// written by separate statements.
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO books (title, publication_date) VALUES ($1, $2) RETURNING id`,
		book.Title, nullTime(book.PublicationDate),
	).Scan(&book.ID)
	if err != nil {
		log.Error("failed to create book", slog.String("error", err.Error()))
		return store.NewStoreError("book", "create", "failed to insert book", MapError(err))
	}

	for i := range book.Authors {
		book.Authors[i].BookID = book.ID
	}
	if err := s.insertLinks(ctx, book.ID, book.Authors); err != nil {
		log.Error("failed to link book authors",
			slog.String("error", err.Error()),
			slog.Int64("book_id", book.ID))
		return err
	}

	log.Info("book created",
		slog.Int64("book_id", book.ID),
		slog.Int("author_count", len(book.Authors)))
	return nil
}

// Update implements store.BookStore.Update
func (s *PostgresBookStore) Update(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET title = $1, publication_date = $2 WHERE id = $3`,
		book.Title, nullTime(book.PublicationDate), book.ID,
	)
	if err != nil {
		log.Error("failed to update book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", book.ID))
		return store.NewStoreError("book", "update", "failed to update book", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book updated", slog.Int64("book_id", book.ID))
	return nil
}

// ReplaceAuthors implements store.BookStore.ReplaceAuthors
func (s *PostgresBookStore) ReplaceAuthors(ctx context.Context, bookID int64, links []domain.AuthorBook) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, bookID); err != nil {
		log.Error("failed to clear book authors",
			slog.String("error", err.Error()),
			slog.Int64("book_id", bookID))
		return store.NewStoreError("book", "replace_authors", "failed to clear author links", MapError(err))
	}

	if err := s.insertLinks(ctx, bookID, links); err != nil {
		log.Error("failed to link book authors",
			slog.String("error", err.Error()),
			slog.Int64("book_id", bookID))
		return err
	}

	log.Debug("book authors replaced",
		slog.Int64("book_id", bookID),
		slog.Int("author_count", len(links)))
	return nil
}

// insertLinks writes links for bookID with a single multi-row INSERT.
func (s *PostgresBookStore) insertLinks(ctx context.Context, bookID int64, links []domain.AuthorBook) error {
	if len(links) == 0 {
		return nil
	}

	values := make([]string, 0, len(links))
	args := make([]any, 0, len(links)*3)
	for i, l := range links {
		n := i * 3
		values = append(values, fmt.Sprintf("($%d, $%d, $%d)", n+1, n+2, n+3))
		args = append(args, l.AuthorID, bookID, l.Order)
	}

	query := "INSERT INTO book_authors (author_id, book_id, sort_order) VALUES " + strings.Join(values, ", ")
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return store.NewStoreError("book", "link_authors", "failed to insert author links", MapError(err))
	}
	return nil
}

// Delete implements store.BookStore.Delete
func (s *PostgresBookStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete book",
			slog.String("error", err.Error()),
			slog.Int64("book_id", id))
		return store.NewStoreError("book", "delete", "failed to delete book", MapError(err))
	}
	if err := CheckRowsAffected(result, store.ErrBookNotFound); err != nil {
		return err
	}

	log.Info("book deleted", slog.Int64("book_id", id))
	return nil
}
