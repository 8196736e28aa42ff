package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/codeswap/codeswap_api/internal/comments"
)

type CommentsService interface {
	List(ctx context.Context, snippetID string) ([]*comments.Comment, error)
	Add(ctx context.Context, snippetID, body string) ([]*comments.Comment, error)
	Remove(ctx context.Context, commentID string) ([]*comments.Comment, error)
}

type CommentsHandler struct {
	Service CommentsService
	Feed    FeedInvalidator
}

// List Comments
// @Summary List a snippet's comment thread
// @Tags comments
// @Produce json
// @Param id path string true "snippet id"
// @Success 200 {array} comments.Comment
// @Failure 500 {string} string
// @Router /snippets/{id}/comments [get]
func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	snippetID := strings.TrimSpace(chi.URLParam(r, "id"))

	thread, err := h.Service.List(r.Context(), snippetID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(thread)
}

// Create Comment
// @Summary Add a comment and return the refreshed thread
// @Tags comments
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "snippet id"
// @Param body body CommentCreateDTO true "comment"
// @Success 201 {array} comments.Comment
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 429 {string} string
// @Failure 502 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id}/comments [post]
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	snippetID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req CommentCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	thread, err := h.Service.Add(r.Context(), snippetID, req.Body)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.invalidateFeed(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(thread)
}

// Delete Comment
// @Summary Delete an owned comment and return the refreshed thread
// @Tags comments
// @Produce json
// @Security SessionAuth
// @Param id path string true "comment id"
// @Success 200 {array} comments.Comment
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /comments/{id} [delete]
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	commentID := strings.TrimSpace(chi.URLParam(r, "id"))

	thread, err := h.Service.Remove(r.Context(), commentID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.invalidateFeed(r.Context())

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(thread)
}

func (h *CommentsHandler) invalidateFeed(ctx context.Context) {
	if h.Feed != nil {
		h.Feed.InvalidateCache(ctx)
	}
}
