package session

import (
	"errors"
	"net/http"

	"github.com/codeswap/codeswap_api/internal/identity"
)

// Middleware rejects requests without a valid session. Protected writes
// sit behind it.
func Middleware(mgr *Manager, cookieCfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCookie, err := r.Cookie(cookieCfg.name())
			if err != nil || reqCookie.Value == "" {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}

			sess, err := mgr.Get(r.Context(), reqCookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			var refreshed bool
			sess, refreshed, err = mgr.Refresh(r.Context(), sess)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "failed to refresh session", http.StatusInternalServerError)
				return
			}

			if refreshed && sess != nil {
				cookieCfg.Write(w, sess.ID, sess.ExpiresAt)
			}

			ctx := identity.WithUser(r.Context(), sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalMiddleware attaches identity when a valid session cookie is
// present and lets the request through anonymously otherwise. Read
// endpoints use it so the feed can mark the viewer's likes without
// requiring sign-in.
func OptionalMiddleware(mgr *Manager, cookieCfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqCookie, err := r.Cookie(cookieCfg.name())
			if err != nil || reqCookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := mgr.Get(r.Context(), reqCookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identity.WithUser(r.Context(), sess.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
