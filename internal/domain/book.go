package domain

import (
	"cmp"
	"slices"
	"time"
)

// BookTitleMaxLength is the maximum number of characters in a book title.
const BookTitleMaxLength = 250

// Book is a published work with an ordered list of authors and an unordered
// collection of comments. A book owns its author links and comments.
type Book struct {
	ID              int64        `json:"id"`
	Title           string       `json:"title"`
	PublicationDate *time.Time   `json:"publication_date,omitempty"`
	Authors         []AuthorBook `json:"authors"`
	Comments        []Comment    `json:"comments,omitempty"`
}

// AuthorBook links an author to a book. Order is the zero-based position of
// the author in the book's author list; for a given book the Order values
// are always exactly 0..n-1.
type AuthorBook struct {
	AuthorID int64 `json:"author_id"`
	BookID   int64 `json:"book_id"`
	Order    int   `json:"order"`

	// Author is populated when the book is loaded with its authors.
	Author *Author `json:"author,omitempty"`
}

// NewBook creates a new Book linked to authorIDs in the given order.
// The title is checked first: a *ValidationErrors is returned if it breaks
// any rule, then ErrBookWithoutAuthors if authorIDs is empty or
// ErrDuplicateAuthorLink if an id repeats.
func NewBook(title string, publicationDate *time.Time, authorIDs []int64) (*Book, error) {
	book := &Book{
		Title:           title,
		PublicationDate: publicationDate,
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := book.SetAuthors(authorIDs); err != nil {
		return nil, err
	}
	return book, nil
}

// AssignID sets the book's id and carries it onto every author link.
func (b *Book) AssignID(id int64) {
	b.ID = id
	for i := range b.Authors {
		b.Authors[i].BookID = id
	}
}

// Validate checks the book's own fields against the full rule set.
func (b *Book) Validate() error {
	return Check("book", titleRules(b.Title))
}

func titleRules(title string) FieldRules {
	return FieldRules{
		Field: "title",
		Value: title,
		Rules: []Rule{Required(), MaxLength(BookTitleMaxLength), FirstUpper()},
	}
}

// SetAuthors replaces the book's author list with links to authorIDs, in the
// order given, and assigns their positions. The client-submitted order is
// authoritative. The book keeps its previous authors on error.
func (b *Book) SetAuthors(authorIDs []int64) error {
	if len(authorIDs) == 0 {
		return ErrBookWithoutAuthors
	}
	links, err := NewAuthorLinks(b.ID, authorIDs)
	if err != nil {
		return err
	}
	b.Authors = links
	AssignAuthorOrder(b)
	return nil
}

// AuthorIDs returns the linked author ids in list order.
func (b *Book) AuthorIDs() []int64 {
	ids := make([]int64, 0, len(b.Authors))
	for _, link := range b.Authors {
		ids = append(ids, link.AuthorID)
	}
	return ids
}

// NewAuthorLinks builds the link sequence for bookID in the order of
// authorIDs. Positions are left unassigned; see AssignAuthorOrder.
func NewAuthorLinks(bookID int64, authorIDs []int64) ([]AuthorBook, error) {
	seen := make(map[int64]struct{}, len(authorIDs))
	links := make([]AuthorBook, 0, len(authorIDs))
	for _, id := range authorIDs {
		if _, dup := seen[id]; dup {
			return nil, ErrDuplicateAuthorLink
		}
		seen[id] = struct{}{}
		links = append(links, AuthorBook{AuthorID: id, BookID: bookID})
	}
	return links, nil
}

// AssignAuthorOrder sets Order = i on the i-th author link of b. It never
// reorders the sequence, and is a no-op for a book without links.
func AssignAuthorOrder(b *Book) {
	for i := range b.Authors {
		b.Authors[i].Order = i
	}
}

// SortAuthorsByOrder sorts the author links of b by ascending Order. Storage
// returns links in no particular order, so every read path calls this before
// exposing a book.
func SortAuthorsByOrder(b *Book) {
	slices.SortStableFunc(b.Authors, func(x, y AuthorBook) int {
		return cmp.Compare(x.Order, y.Order)
	})
}
