package api

import (
	"time"

	"github.com/phrazzld/authors-api/internal/domain"
	"github.com/phrazzld/authors-api/internal/service"
)

// AuthorRequest is the body of POST and PUT /api/authors. ID is optional on
// PUT; when present it must match the id in the URL.
type AuthorRequest struct {
	ID   int64  `json:"id" validate:"gte=0"`
	Name string `json:"name"`
}

// BookRequest is the body of POST and PUT /api/books. The order of AuthorIDs
// is the order the authors are listed in.
type BookRequest struct {
	Title           string     `json:"title"`
	PublicationDate *time.Time `json:"publication_date"`
	AuthorIDs       []int64    `json:"author_ids" validate:"dive,gt=0"`
}

// CommentRequest is the body of POST /api/books/{id}/comments.
type CommentRequest struct {
	Content string `json:"content"`
}

// AuthorResponse is an author as returned by the API. BookIDs is only
// present on the single-author endpoint.
type AuthorResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	BookIDs []int64 `json:"book_ids,omitempty"`
}

// BookAuthorResponse is one entry of a book's ordered author list.
type BookAuthorResponse struct {
	AuthorID int64  `json:"author_id"`
	Name     string `json:"name,omitempty"`
	Order    int    `json:"order"`
}

// BookResponse is a book as returned by the API.
type BookResponse struct {
	ID              int64                `json:"id"`
	Title           string               `json:"title"`
	PublicationDate *time.Time           `json:"publication_date,omitempty"`
	Authors         []BookAuthorResponse `json:"authors,omitempty"`
	Comments        []CommentResponse    `json:"comments,omitempty"`
}

// CommentResponse is a comment as returned by the API.
type CommentResponse struct {
	ID      int64  `json:"id"`
	BookID  int64  `json:"book_id"`
	Content string `json:"content"`
}

func (req BookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:           req.Title,
		PublicationDate: req.PublicationDate,
		AuthorIDs:       req.AuthorIDs,
	}
}

func authorToResponse(a *domain.Author) AuthorResponse {
	return AuthorResponse{ID: a.ID, Name: a.Name}
}

func authorsToResponse(authors []*domain.Author) []AuthorResponse {
	out := make([]AuthorResponse, 0, len(authors))
	for _, a := range authors {
		out = append(out, authorToResponse(a))
	}
	return out
}

func bookToResponse(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		PublicationDate: b.PublicationDate,
	}
	for _, link := range b.Authors {
		entry := BookAuthorResponse{AuthorID: link.AuthorID, Order: link.Order}
		if link.Author != nil {
			entry.Name = link.Author.Name
		}
		resp.Authors = append(resp.Authors, entry)
	}
	for _, c := range b.Comments {
		resp.Comments = append(resp.Comments, commentToResponse(c))
	}
	return resp
}

func booksToResponse(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, bookToResponse(b))
	}
	return out
}

func commentToResponse(c domain.Comment) CommentResponse {
	return CommentResponse{ID: c.ID, BookID: c.BookID, Content: c.Content}
}

func commentsToResponse(comments []domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		out = append(out, commentToResponse(c))
	}
	return out
}
