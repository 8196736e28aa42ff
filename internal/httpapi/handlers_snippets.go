package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/codeswap/codeswap_api/internal/likes"
	"github.com/codeswap/codeswap_api/internal/snippets"
)

type SnippetsService interface {
	Create(ctx context.Context, req snippets.CreateSnippetRequest) (*snippets.Snippet, error)
	GetByID(ctx context.Context, id string) (*snippets.Detail, error)
	Mine(ctx context.Context) ([]*snippets.Snippet, error)
	Delete(ctx context.Context, id string) error
}

type LikesService interface {
	Toggle(ctx context.Context, snippetID string, liked bool) (likes.Result, error)
}

// FeedInvalidator drops cached feed state after a write that changes
// what the feed shows.
type FeedInvalidator interface {
	InvalidateCache(ctx context.Context)
}

type SnippetsHandler struct {
	Service SnippetsService
	Likes   LikesService
	Feed    FeedInvalidator
}

// Create Snippet
// @Summary Create snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param body body SnippetCreateDTO true "snippet"
// @Success 201 {object} snippets.Snippet
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 502 {string} string
// @Failure 500 {string} string
// @Router /snippets [post]
func (h *SnippetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SnippetCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snippet, err := h.Service.Create(r.Context(), snippets.CreateSnippetRequest{
		Title:       req.Title,
		Language:    req.Language,
		Description: req.Description,
		Code:        req.Code,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	h.invalidateFeed(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(snippet)
}

// GetByID Snippet
// @Summary Get snippet by id
// @Tags snippets
// @Produce json
// @Param id path string true "snippet id"
// @Success 200 {object} snippets.Detail
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id} [get]
func (h *SnippetsHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	detail, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

// Mine Snippets
// @Summary List the current user's snippets
// @Tags snippets
// @Produce json
// @Security SessionAuth
// @Success 200 {array} snippets.Snippet
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /snippets/mine [get]
func (h *SnippetsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.Mine(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// Delete Snippet
// @Summary Delete an owned snippet
// @Tags snippets
// @Security SessionAuth
// @Param id path string true "snippet id"
// @Success 204
// @Failure 401 {string} string
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id} [delete]
func (h *SnippetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	h.invalidateFeed(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLike Snippet
// @Summary Toggle the viewer's like on a snippet
// @Tags snippets
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "snippet id"
// @Param body body LikeToggleDTO true "current liked state"
// @Success 200 {object} likes.Result
// @Failure 400 {string} string
// @Failure 401 {string} string
// @Failure 502 {string} string
// @Failure 500 {string} string
// @Router /snippets/{id}/like [post]
func (h *SnippetsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req LikeToggleDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	res, err := h.Likes.Toggle(r.Context(), id, req.Liked)
	if err != nil {
		writeAppError(w, err)
		return
	}

	if res.Changed {
		h.invalidateFeed(r.Context())
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func (h *SnippetsHandler) invalidateFeed(ctx context.Context) {
	if h.Feed != nil {
		h.Feed.InvalidateCache(ctx)
	}
}
