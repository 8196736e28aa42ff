package httpapi

import (
	"net/http"

	"github.com/codeswap/codeswap_api/internal/session"
)

type SessionsHandler struct {
	Sessions *session.Manager
	Cookie   session.CookieConfig
}

// Delete Session
// @Summary Sign the current session out
// @Tags sessions
// @Security SessionAuth
// @Success 204
// @Failure 500 {string} string
// @Router /session [delete]
func (h *SessionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := h.Cookie.Name
	if name == "" {
		name = session.DefaultCookieName
	}

	cookie, err := r.Cookie(name)
	if err == nil && cookie.Value != "" {
		if err := h.Sessions.Delete(r.Context(), cookie.Value); err != nil {
			http.Error(w, "failed to delete session", http.StatusInternalServerError)
			return
		}
	}

	h.Cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
