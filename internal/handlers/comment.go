package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/services"
)

// CommentHandler provides HTTP handlers for editing and deleting
// comments by id. Listing and creation live under the parent resource.
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler constructs a handler with the provided service.
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CommentRouter registers comment routes on the given router.
func CommentRouter(r chi.Router, handler *CommentHandler) {
	r.Route("/{commentID}", func(r chi.Router) {
		r.With(RequireAuth).Patch("/", handler.UpdateComment)
		r.With(RequireAuth).Delete("/", handler.DeleteComment)
	})
}

// UpdateComment replaces the comment's content. Only the author may
// edit.
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.commentService.Update(r.Context(), id, requesterID(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to update comment")
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteComment removes the comment. Only the author may delete.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "commentID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	if err := h.commentService.Delete(r.Context(), id, requesterID(r)); err != nil {
		writeServiceError(w, err, "failed to delete comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type CommentRequest struct {
	Content string `json:"content"`
}
