package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/authors-api/internal/api/shared"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/service"
)

// AuthorHandler handles author-related HTTP requests
type AuthorHandler struct {
	authorService service.AuthorService
	logger        *slog.Logger
}

// NewAuthorHandler creates a new AuthorHandler
func NewAuthorHandler(authorService service.AuthorService, logger *slog.Logger) *AuthorHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AuthorHandler")
	}

	return &AuthorHandler{
		authorService: authorService,
		logger:        logger.With(slog.String("component", "author_handler")),
	}
}

// ListAuthors handles GET /api/authors requests
func (h *AuthorHandler) ListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.authorService.ListAuthors(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list authors")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, authorsToResponse(authors))
}

// SearchAuthors handles GET /api/authors/search?name= requests
func (h *AuthorHandler) SearchAuthors(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "The name query parameter is required")
		return
	}

	authors, err := h.authorService.SearchAuthors(r.Context(), name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search authors")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, authorsToResponse(authors))
}

// GetAuthor handles GET /api/authors/{id} requests
func (h *AuthorHandler) GetAuthor(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	author, err := h.authorService.GetAuthor(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get author")
		return
	}

	resp := authorToResponse(author)
	resp.BookIDs = author.BookIDs()
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// CreateAuthor handles POST /api/authors requests
func (h *AuthorHandler) CreateAuthor(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req AuthorRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	author, err := h.authorService.CreateAuthor(r.Context(), service.AuthorInput{Name: req.Name})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create author")
		return
	}

	setLocation(w, "/api/authors", author.ID)
	shared.RespondWithJSON(w, r, http.StatusCreated, authorToResponse(author))
}

// ReplaceAuthor handles PUT /api/authors/{id} requests
func (h *AuthorHandler) ReplaceAuthor(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req AuthorRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	err := h.authorService.ReplaceAuthor(r.Context(), id, service.AuthorInput{ID: req.ID, Name: req.Name})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update author")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteAuthor handles DELETE /api/authors/{id} requests
// The author's book links are removed; the books stay.
func (h *AuthorHandler) DeleteAuthor(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.authorService.DeleteAuthor(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete author")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
