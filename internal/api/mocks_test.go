package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/authors-api/internal/api/shared"
	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/service"
)

// MockBookService is a mock implementation of service.BookService for testing
type MockBookService struct {
	ListBooksFn   func(ctx context.Context) ([]*domain.Book, error)
	GetBookFn     func(ctx context.Context, id int64) (*domain.Book, error)
	CreateBookFn  func(ctx context.Context, in service.BookInput) (*domain.Book, error)
	ReplaceBookFn func(ctx context.Context, id int64, in service.BookInput) error
	PatchBookFn   func(ctx context.Context, id int64, document []byte) error
	DeleteBookFn  func(ctx context.Context, id int64) error
}

func (m *MockBookService) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	if m.ListBooksFn != nil {
		return m.ListBooksFn(ctx)
	}
	return nil, nil
}

func (m *MockBookService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	if m.GetBookFn != nil {
		return m.GetBookFn(ctx, id)
	}
	return nil, nil
}

func (m *MockBookService) CreateBook(ctx context.Context, in service.BookInput) (*domain.Book, error) {
	if m.CreateBookFn != nil {
		return m.CreateBookFn(ctx, in)
	}
	return nil, nil
}

func (m *MockBookService) ReplaceBook(ctx context.Context, id int64, in service.BookInput) error {
	if m.ReplaceBookFn != nil {
		return m.ReplaceBookFn(ctx, id, in)
	}
	return nil
}

func (m *MockBookService) PatchBook(ctx context.Context, id int64, document []byte) error {
	if m.PatchBookFn != nil {
		return m.PatchBookFn(ctx, id, document)
	}
	return nil
}

func (m *MockBookService) DeleteBook(ctx context.Context, id int64) error {
	if m.DeleteBookFn != nil {
		return m.DeleteBookFn(ctx, id)
	}
	return nil
}

// MockAuthorService is a mock implementation of service.AuthorService for testing
type MockAuthorService struct {
	ListAuthorsFn   func(ctx context.Context) ([]*domain.Author, error)
	GetAuthorFn     func(ctx context.Context, id int64) (*domain.Author, error)
	SearchAuthorsFn func(ctx context.Context, fragment string) ([]*domain.Author, error)
	CreateAuthorFn  func(ctx context.Context, in service.AuthorInput) (*domain.Author, error)
	ReplaceAuthorFn func(ctx context.Context, id int64, in service.AuthorInput) error
	DeleteAuthorFn  func(ctx context.Context, id int64) error
}

func (m *MockAuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	if m.ListAuthorsFn != nil {
		return m.ListAuthorsFn(ctx)
	}
	return nil, nil
}

func (m *MockAuthorService) GetAuthor(ctx context.Context, id int64) (*domain.Author, error) {
	if m.GetAuthorFn != nil {
		return m.GetAuthorFn(ctx, id)
	}
	return nil, nil
}

func (m *MockAuthorService) SearchAuthors(ctx context.Context, fragment string) ([]*domain.Author, error) {
	if m.SearchAuthorsFn != nil {
		return m.SearchAuthorsFn(ctx, fragment)
	}
	return nil, nil
}

func (m *MockAuthorService) CreateAuthor(ctx context.Context, in service.AuthorInput) (*domain.Author, error) {
	if m.CreateAuthorFn != nil {
		return m.CreateAuthorFn(ctx, in)
	}
	return nil, nil
}

func (m *MockAuthorService) ReplaceAuthor(ctx context.Context, id int64, in service.AuthorInput) error {
	if m.ReplaceAuthorFn != nil {
		return m.ReplaceAuthorFn(ctx, id, in)
	}
	return nil
}

func (m *MockAuthorService) DeleteAuthor(ctx context.Context, id int64) error {
	if m.DeleteAuthorFn != nil {
		return m.DeleteAuthorFn(ctx, id)
	}
	return nil
}

// MockCommentService is a mock implementation of service.CommentService for testing
type MockCommentService struct {
	ListCommentsFn  func(ctx context.Context, bookID int64) ([]domain.Comment, error)
	CreateCommentFn func(ctx context.Context, bookID int64, content string) (*domain.Comment, error)
}

func (m *MockCommentService) ListComments(ctx context.Context, bookID int64) ([]domain.Comment, error) {
	if m.ListCommentsFn != nil {
		return m.ListCommentsFn(ctx, bookID)
	}
	return nil, nil
}

func (m *MockCommentService) CreateComment(ctx context.Context, bookID int64, content string) (*domain.Comment, error) {
	if m.CreateCommentFn != nil {
		return m.CreateCommentFn(ctx, bookID, content)
	}
	return nil, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter mounts the handlers on the same paths as the server.
func newTestRouter(books service.BookService, authors service.AuthorService, comments service.CommentService) http.Handler {
	r := chi.NewRouter()
	if books != nil {
		h := NewBookHandler(books, testLogger())
		r.Get("/api/books", h.ListBooks)
		r.Post("/api/books", h.CreateBook)
		r.Get("/api/books/{id}", h.GetBook)
		r.Put("/api/books/{id}", h.ReplaceBook)
		r.Patch("/api/books/{id}", h.PatchBook)
		r.Delete("/api/books/{id}", h.DeleteBook)
	}
	if authors != nil {
		h := NewAuthorHandler(authors, testLogger())
		r.Get("/api/authors", h.ListAuthors)
		r.Get("/api/authors/search", h.SearchAuthors)
		r.Post("/api/authors", h.CreateAuthor)
		r.Get("/api/authors/{id}", h.GetAuthor)
		r.Put("/api/authors/{id}", h.ReplaceAuthor)
		r.Delete("/api/authors/{id}", h.DeleteAuthor)
	}
	if comments != nil {
		h := NewCommentHandler(comments, testLogger())
		r.Get("/api/books/{id}/comments", h.ListComments)
		r.Post("/api/books/{id}/comments", h.CreateComment)
	}
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}
