package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/patch"
	"github.com/phrazzld/authors-api/internal/store"
)

type bookServiceFixture struct {
	svc     BookService
	books   *MockBookStore
	authors *MockAuthorStore
	db      sqlmock.Sqlmock
}

func newBookServiceFixture(t *testing.T) *bookServiceFixture {
	t.Helper()
	db, sqlMock := newTxDB(t)
	books := &MockBookStore{}
	authors := &MockAuthorStore{}

	svc, err := NewBookService(db, books, authors, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		books.AssertExpectations(t)
		authors.AssertExpectations(t)
	})
	return &bookServiceFixture{svc: svc, books: books, authors: authors, db: sqlMock}
}

func TestNewBookServiceRejectsNilDependencies(t *testing.T) {
	db, _ := newTxDB(t)

	_, err := NewBookService(nil, &MockBookStore{}, &MockAuthorStore{}, nil)
	assert.Error(t, err)
	_, err = NewBookService(db, nil, &MockAuthorStore{}, nil)
	assert.Error(t, err)
	_, err = NewBookService(db, &MockBookStore{}, nil, nil)
	assert.Error(t, err)
}

func TestCreateBook(t *testing.T) {
	ctx := context.Background()

	t.Run("links authors in submission order", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.authors.On("FindExistingIDs", mock.Anything, []int64{3, 1, 2}).Return([]int64{1, 2, 3}, nil)
		f.books.On("Create", mock.Anything, mock.AnythingOfType("*domain.Book")).
			Run(func(args mock.Arguments) {
				b := args.Get(1).(*domain.Book)
				b.ID = 10
				for i := range b.Authors {
					b.Authors[i].BookID = 10
				}
			}).
			Return(nil)
		f.db.ExpectCommit()

		book, err := f.svc.CreateBook(ctx, BookInput{Title: "Good Omens", AuthorIDs: []int64{3, 1, 2}})
		require.NoError(t, err)

		assert.Equal(t, int64(10), book.ID)
		assert.Equal(t, []int64{3, 1, 2}, book.AuthorIDs())
		for i, link := range book.Authors {
			assert.Equal(t, i, link.Order)
			assert.Equal(t, int64(10), link.BookID)
		}
	})

	t.Run("without authors", func(t *testing.T) {
		f := newBookServiceFixture(t)

		_, err := f.svc.CreateBook(ctx, BookInput{Title: "Orphan"})
		assert.ErrorIs(t, err, domain.ErrBookWithoutAuthors)
		assert.EqualError(t, err, "no se puede crear un libro sin autores")
	})

	t.Run("unknown author", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.authors.On("FindExistingIDs", mock.Anything, []int64{1, 99}).Return([]int64{1}, nil)
		f.db.ExpectRollback()

		_, err := f.svc.CreateBook(ctx, BookInput{Title: "Dune", AuthorIDs: []int64{1, 99}})
		assert.ErrorIs(t, err, ErrUnknownAuthor)
		assert.EqualError(t, err, "no existe alguno de los autores enviados")
		f.books.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate author id", func(t *testing.T) {
		f := newBookServiceFixture(t)

		_, err := f.svc.CreateBook(ctx, BookInput{Title: "Dune", AuthorIDs: []int64{1, 1}})
		assert.ErrorIs(t, err, domain.ErrDuplicateAuthorLink)
	})

	t.Run("invalid title is reported before missing authors", func(t *testing.T) {
		f := newBookServiceFixture(t)

		_, err := f.svc.CreateBook(ctx, BookInput{Title: "dune"})
		var verrs *domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.HasField("title"))
	})

	t.Run("store failure", func(t *testing.T) {
		f := newBookServiceFixture(t)
		boom := errors.New("connection reset")
		f.db.ExpectBegin()
		f.authors.On("FindExistingIDs", mock.Anything, []int64{1}).Return([]int64{1}, nil)
		f.books.On("Create", mock.Anything, mock.Anything).Return(boom)
		f.db.ExpectRollback()

		_, err := f.svc.CreateBook(ctx, BookInput{Title: "Dune", AuthorIDs: []int64{1}})
		assert.ErrorIs(t, err, boom)
		var svcErr *ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create_book", svcErr.Operation)
		assert.False(t, IsClientError(err))
	})
}

func TestGetBookSortsAuthors(t *testing.T) {
	f := newBookServiceFixture(t)
	stored := &domain.Book{
		ID:    1,
		Title: "Good Omens",
		Authors: []domain.AuthorBook{
			{AuthorID: 20, BookID: 1, Order: 1},
			{AuthorID: 10, BookID: 1, Order: 0},
		},
	}
	f.books.On("GetByID", mock.Anything, int64(1), store.BookIncludes{Authors: true, Comments: true}).
		Return(stored, nil)

	book, err := f.svc.GetBook(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, book.AuthorIDs())
}

func TestGetBookNotFound(t *testing.T) {
	f := newBookServiceFixture(t)
	f.books.On("GetByID", mock.Anything, int64(5), mock.Anything).Return(nil, store.ErrBookNotFound)

	_, err := f.svc.GetBook(context.Background(), 5)
	assert.ErrorIs(t, err, store.ErrBookNotFound)
	assert.True(t, IsClientError(err))
}

func TestListBooks(t *testing.T) {
	f := newBookServiceFixture(t)
	f.books.On("List", mock.Anything).Return([]*domain.Book{{ID: 1, Title: "Dune"}}, nil)

	books, err := f.svc.ListBooks(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestReplaceBook(t *testing.T) {
	ctx := context.Background()
	date := time.Date(2001, time.March, 2, 0, 0, 0, 0, time.UTC)

	t.Run("replaces fields and author list", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("Exists", mock.Anything, int64(4)).Return(true, nil)
		f.authors.On("FindExistingIDs", mock.Anything, []int64{9, 2}).Return([]int64{2, 9}, nil)
		f.books.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
			return b.ID == 4 && b.Title == "New Title" && b.PublicationDate.Equal(date)
		})).Return(nil)
		f.books.On("ReplaceAuthors", mock.Anything, int64(4), []domain.AuthorBook{
			{AuthorID: 9, BookID: 4, Order: 0},
			{AuthorID: 2, BookID: 4, Order: 1},
		}).Return(nil)
		f.db.ExpectCommit()

		err := f.svc.ReplaceBook(ctx, 4, BookInput{Title: "New Title", PublicationDate: &date, AuthorIDs: []int64{9, 2}})
		assert.NoError(t, err)
	})

	t.Run("missing book", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("Exists", mock.Anything, int64(4)).Return(false, nil)
		f.db.ExpectRollback()

		err := f.svc.ReplaceBook(ctx, 4, BookInput{Title: "New Title", AuthorIDs: []int64{1}})
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})

	t.Run("empty author list", func(t *testing.T) {
		f := newBookServiceFixture(t)

		err := f.svc.ReplaceBook(ctx, 4, BookInput{Title: "New Title", AuthorIDs: []int64{}})
		assert.ErrorIs(t, err, domain.ErrBookWithoutAuthors)
	})

	t.Run("invalid title is reported before missing authors", func(t *testing.T) {
		f := newBookServiceFixture(t)

		err := f.svc.ReplaceBook(ctx, 4, BookInput{Title: "new title"})
		var verrs *domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.HasField("title"))
		assert.NotErrorIs(t, err, domain.ErrBookWithoutAuthors)
	})

	t.Run("unknown author", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("Exists", mock.Anything, int64(4)).Return(true, nil)
		f.authors.On("FindExistingIDs", mock.Anything, []int64{7}).Return([]int64{}, nil)
		f.db.ExpectRollback()

		err := f.svc.ReplaceBook(ctx, 4, BookInput{Title: "New Title", AuthorIDs: []int64{7}})
		assert.ErrorIs(t, err, ErrUnknownAuthor)
		f.books.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestPatchBook(t *testing.T) {
	ctx := context.Background()

	storedBook := func() *domain.Book {
		d := time.Date(1965, time.August, 1, 0, 0, 0, 0, time.UTC)
		return &domain.Book{ID: 3, Title: "Dune", PublicationDate: &d}
	}

	t.Run("replaces title and keeps date", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.books.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
			return b.ID == 3 && b.Title == "Dune Messiah" && b.PublicationDate != nil && b.PublicationDate.Year() == 1965
		})).Return(nil)
		f.db.ExpectCommit()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"replace","path":"/title","value":"Dune Messiah"}]`))
		assert.NoError(t, err)
	})

	t.Run("removes date", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.books.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
			return b.Title == "Dune" && b.PublicationDate == nil
		})).Return(nil)
		f.db.ExpectCommit()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"remove","path":"/publication_date"}]`))
		assert.NoError(t, err)
	})

	t.Run("test compares instants across zones", func(t *testing.T) {
		f := newBookServiceFixture(t)
		local := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.FixedZone("CET", 3600))
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).
			Return(&domain.Book{ID: 3, Title: "Dune", PublicationDate: &local}, nil)
		f.books.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
			return b.Title == "Dune Messiah" && b.PublicationDate != nil && b.PublicationDate.Equal(local)
		})).Return(nil)
		f.db.ExpectCommit()

		err := f.svc.PatchBook(ctx, 3, []byte(`[
			{"op":"test","path":"/publication_date","value":"2020-01-01T23:00:00Z"},
			{"op":"replace","path":"/title","value":"Dune Messiah"}
		]`))
		assert.NoError(t, err)
	})

	t.Run("empty document persists the book unchanged", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.books.On("Update", mock.Anything, mock.MatchedBy(func(b *domain.Book) bool {
			return b.ID == 3 && b.Title == "Dune" && b.PublicationDate != nil && b.PublicationDate.Year() == 1965
		})).Return(nil)
		f.db.ExpectCommit()

		err := f.svc.PatchBook(ctx, 3, []byte(`[]`))
		assert.NoError(t, err)
	})

	t.Run("empty document still revalidates", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).
			Return(&domain.Book{ID: 3, Title: "legacy lowercase title"}, nil)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`[]`))
		var verrs *domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.HasField("title"))
		f.books.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("null document", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`null`))
		assert.ErrorIs(t, err, patch.ErrInvalidDocument)
	})

	t.Run("patched value breaks a rule", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"replace","path":"/title","value":"dune"}]`))
		var verrs *domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, []domain.FieldError{{
			Field:   "title",
			Rule:    domain.FirstUpperTag,
			Message: "title: the first letter must be uppercase",
		}}, verrs.Fields)
		f.books.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("removing the title fails required", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"remove","path":"/title"}]`))
		var verrs *domain.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.True(t, verrs.HasField("title"))
	})

	t.Run("patch cannot reach authors", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(storedBook(), nil)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"add","path":"/authors/-","value":{"author_id":1}}]`))
		assert.ErrorIs(t, err, patch.ErrInvalidDocument)
		assert.True(t, IsClientError(err))
	})

	t.Run("missing book", func(t *testing.T) {
		f := newBookServiceFixture(t)
		f.db.ExpectBegin()
		f.books.On("GetByID", mock.Anything, int64(3), store.BookIncludes{}).Return(nil, store.ErrBookNotFound)
		f.db.ExpectRollback()

		err := f.svc.PatchBook(ctx, 3, []byte(`[{"op":"replace","path":"/title","value":"X"}]`))
		assert.ErrorIs(t, err, store.ErrBookNotFound)
	})
}

func TestDeleteBook(t *testing.T) {
	f := newBookServiceFixture(t)
	f.books.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	f.books.On("Delete", mock.Anything, int64(2)).Return(store.ErrBookNotFound).Once()

	assert.NoError(t, f.svc.DeleteBook(context.Background(), 1))
	assert.ErrorIs(t, f.svc.DeleteBook(context.Background(), 2), store.ErrBookNotFound)
}
