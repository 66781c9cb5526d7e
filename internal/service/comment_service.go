package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/store"
)

// CommentService provides operations on the comments of a book.
type CommentService interface {
	// ListComments returns the comments of a book.
	ListComments(ctx context.Context, bookID int64) ([]domain.Comment, error)

	// CreateComment adds a comment to a book.
	CreateComment(ctx context.Context, bookID int64, content string) (*domain.Comment, error)
}

type commentServiceImpl struct {
	comments store.CommentStore
	books    store.BookStore
	logger   *slog.Logger
}

// NewCommentService creates a new CommentService.
// It returns an error if any of the required dependencies are nil.
func NewCommentService(
	comments store.CommentStore,
	books store.BookStore,
	logger *slog.Logger,
) (CommentService, error) {
	if comments == nil {
		return nil, errNilDependency("comments")
	}
	if books == nil {
		return nil, errNilDependency("books")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &commentServiceImpl{
		comments: comments,
		books:    books,
		logger:   logger.With(slog.String("component", "comment_service")),
	}, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, bookID int64) ([]domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	exists, err := s.books.Exists(ctx, bookID)
	if err != nil {
		log.Error("failed to look up book", slog.String("error", err.Error()))
		return nil, NewServiceError("list_comments", "failed to look up book", err)
	}
	if !exists {
		return nil, NewServiceError("list_comments", "book not found", store.ErrBookNotFound)
	}

	comments, err := s.comments.ListByBook(ctx, bookID)
	if err != nil {
		log.Error("failed to list comments",
			slog.String("error", err.Error()),
			slog.Int64("book_id", bookID))
		return nil, NewServiceError("list_comments", "failed to list comments", err)
	}
	return comments, nil
}

// CreateComment relies on the comments.book_id foreign key to detect a
// missing book, so it needs no transaction.
func (s *commentServiceImpl) CreateComment(ctx context.Context, bookID int64, content string) (*domain.Comment, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	comment, err := domain.NewComment(bookID, content)
	if err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError("create_comment", "book not found", store.ErrBookNotFound)
		}
		log.Error("failed to create comment",
			slog.String("error", err.Error()),
			slog.Int64("book_id", bookID))
		return nil, NewServiceError("create_comment", "failed to save comment", err)
	}

	log.Info("comment created",
		slog.Int64("comment_id", comment.ID),
		slog.Int64("book_id", bookID))
	return comment, nil
}
