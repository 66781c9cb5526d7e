package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/authors-api/internal/api/shared"
	"github.com/phrazzld/authors-api/internal/platform/logger"
	"github.com/phrazzld/authors-api/internal/service"
)

// CommentHandler handles the comments nested under a book.
type CommentHandler struct {
	commentService service.CommentService
	logger         *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService, logger *slog.Logger) *CommentHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CommentHandler")
	}

	return &CommentHandler{
		commentService: commentService,
		logger:         logger.With(slog.String("component", "comment_handler")),
	}
}

// ListComments handles GET /api/books/{id}/comments requests
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	bookID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	comments, err := h.commentService.ListComments(r.Context(), bookID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, commentsToResponse(comments))
}

// CreateComment handles POST /api/books/{id}/comments requests
// Comments have no endpoint of their own, so Location points at the
// book's comment collection.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	bookID, ok := handlePathID(w, r, "id", log)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	comment, err := h.commentService.CreateComment(r.Context(), bookID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create comment")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/books/%d/comments", bookID))
	shared.RespondWithJSON(w, r, http.StatusCreated, commentToResponse(*comment))
}
