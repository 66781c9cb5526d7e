package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/store"
)

// MockAuthorStore mocks the store.AuthorStore interface.
// WithTx returns the mock itself so expectations hold inside transactions.
type MockAuthorStore struct {
	mock.Mock
}

func (m *MockAuthorStore) List(ctx context.Context) ([]*domain.Author, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Author), args.Error(1)
}

func (m *MockAuthorStore) GetByID(ctx context.Context, id int64, includeBooks bool) (*domain.Author, error) {
	args := m.Called(ctx, id, includeBooks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Author), args.Error(1)
}

func (m *MockAuthorStore) SearchByName(ctx context.Context, fragment string) ([]*domain.Author, error) {
	args := m.Called(ctx, fragment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Author), args.Error(1)
}

func (m *MockAuthorStore) NameExists(ctx context.Context, name string, excludeID int64) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorStore) FindExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockAuthorStore) Create(ctx context.Context, author *domain.Author) error {
	return m.Called(ctx, author).Error(0)
}

func (m *MockAuthorStore) Update(ctx context.Context, author *domain.Author) error {
	return m.Called(ctx, author).Error(0)
}

func (m *MockAuthorStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAuthorStore) WithTx(tx *sql.Tx) store.AuthorStore {
	return m
}

// MockBookStore mocks the store.BookStore interface.
type MockBookStore struct {
	mock.Mock
}

func (m *MockBookStore) List(ctx context.Context) ([]*domain.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Book), args.Error(1)
}

func (m *MockBookStore) GetByID(ctx context.Context, id int64, include store.BookIncludes) (*domain.Book, error) {
	args := m.Called(ctx, id, include)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookStore) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookStore) Update(ctx context.Context, book *domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookStore) ReplaceAuthors(ctx context.Context, bookID int64, links []domain.AuthorBook) error {
	return m.Called(ctx, bookID, links).Error(0)
}

func (m *MockBookStore) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return m
}

// MockCommentStore mocks the store.CommentStore interface.
type MockCommentStore struct {
	mock.Mock
}

func (m *MockCommentStore) ListByBook(ctx context.Context, bookID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *MockCommentStore) WithTx(tx *sql.Tx) store.CommentStore {
	return m
}

// newTxDB returns a mock database whose expectations are verified when the
// test ends.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}
