package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// PostgresCommentStore implements the store.CommentStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCommentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCommentStore creates a new PostgreSQL implementation of the CommentStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCommentStore(db store.DBTX, logger *slog.Logger) *PostgresCommentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCommentStore{
		db:     db,
		logger: logger.With(slog.String("component", "comment_store")),
	}
}

// Ensure PostgresCommentStore implements store.CommentStore interface
var _ store.CommentStore = (*PostgresCommentStore)(nil)

// WithTx implements store.CommentStore.WithTx
func (s *PostgresCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return &PostgresCommentStore{db: tx, logger: s.logger}
}

// ListByBook implements store.CommentStore.ListByBook
func (s *PostgresCommentStore) ListByBook(ctx context.Context, bookID int64) ([]domain.Comment, error) {
	comments, err := listComments(ctx, s.db, bookID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.Int64("book_id", bookID))
		return nil, err
	}
	return comments, nil
}

func listComments(ctx context.Context, db store.DBTX, bookID int64) ([]domain.Comment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, book_id, content FROM comments WHERE book_id = $1 ORDER BY id`, bookID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.BookID, &c.Content); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Create implements store.CommentStore.Create
// Returns store.ErrBookNotFound if the book does not exist.
func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.db.QueryRowContext(ctx,
		`INSERT INTO comments (book_id, content) VALUES ($1, $2) RETURNING id`,
		comment.BookID, comment.Content,
	).Scan(&comment.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("comment references a missing book", slog.Int64("book_id", comment.BookID))
			return store.ErrBookNotFound
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.Int64("book_id", comment.BookID))
		return store.NewStoreError("comment", "create", "failed to insert comment", MapError(err))
	}

	log.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("book_id", comment.BookID))
	return nil
}
