package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/codeswap/codeswap_api/internal/profiles"
)

type ProfilesService interface {
	Me(ctx context.Context) (*profiles.ProfileView, error)
	GetByUsername(ctx context.Context, username string) (*profiles.ProfileView, error)
}

type ProfilesHandler struct {
	Service ProfilesService
}

// Me Profile
// @Summary Get the current user's profile with stats
// @Tags profiles
// @Produce json
// @Security SessionAuth
// @Success 200 {object} profiles.ProfileView
// @Failure 401 {string} string
// @Failure 500 {string} string
// @Router /profiles/me [get]
func (h *ProfilesHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.Service.Me(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

// GetByUsername Profile
// @Summary Get a profile with stats by username
// @Tags profiles
// @Produce json
// @Param username path string true "username"
// @Success 200 {object} profiles.ProfileView
// @Failure 404 {string} string
// @Failure 500 {string} string
// @Router /profiles/{username} [get]
func (h *ProfilesHandler) GetByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))

	view, err := h.Service.GetByUsername(r.Context(), username)
	if err != nil {
		writeAppError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}
