package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/authors-api/internal/api/shared"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/service"
)

// BookHandler handles book-related HTTP requests
type BookHandler struct {
	bookService service.BookService
	logger      *slog.Logger
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(bookService service.BookService, logger *slog.Logger) *BookHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BookHandler")
	}

	return &BookHandler{
		bookService: bookService,
		logger:      logger.With(slog.String("component", "book_handler")),
	}
}

// ListBooks handles GET /api/books requests
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.bookService.ListBooks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list books")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, booksToResponse(books))
}

// GetBook handles GET /api/books/{id} requests
// The response lists the authors in order, with their names, and the comments.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	book, err := h.bookService.GetBook(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get book")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bookToResponse(book))
}

// CreateBook handles POST /api/books requests
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req BookRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), req.toInput())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create book")
		return
	}

	setLocation(w, "/api/books", book.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, bookToResponse(book))
}

// ReplaceBook handles PUT /api/books/{id} requests
// The title, publication date and whole author list are replaced.
func (h *BookHandler) ReplaceBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req BookRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	if err := h.bookService.ReplaceBook(r.Context(), id, req.toInput()); err != nil {
		HandleAPIError(w, r, err, "Failed to update book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PatchBook handles PATCH /api/books/{id} requests
// The body is a JSON Patch document over the title and publication_date fields.
func (h *BookHandler) PatchBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	document, err := shared.ReadBody(r)
	if err != nil {
		log.Debug("invalid patch body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.bookService.PatchBook(r.Context(), id, document); err != nil {
		HandleAPIError(w, r, err, "Failed to update book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteBook handles DELETE /api/books/{id} requests
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.bookService.DeleteBook(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete book")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
