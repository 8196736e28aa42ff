package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/codeswap/codeswap_api/internal/session"
	"github.com/codeswap/codeswap_api/internal/telemetry"
)

type App struct {
	ServiceName string

	Health   *HealthHandler
	Feed     *FeedHandler
	Snippets *SnippetsHandler
	Comments *CommentsHandler
	Profiles *ProfilesHandler
	Sessions *SessionsHandler

	SessionManager *session.Manager
	Cookie         session.CookieConfig
}

func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(telemetry.ChiTraceMiddleware(app.ServiceName))
	r.Use(telemetry.ChiMetricsMiddleware)
	r.Use(telemetry.ChiLogMiddleware(app.ServiceName))

	r.Get("/health", app.Health.Get)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	optional := session.OptionalMiddleware(app.SessionManager, app.Cookie)
	required := session.Middleware(app.SessionManager, app.Cookie)

	r.Route("/v1", func(r chi.Router) {

		// Reads are public; identity, when present, marks the
		// viewer's likes.
		r.Group(func(r chi.Router) {
			r.Use(optional)
			r.Get("/feed", app.Feed.Get)
			r.Get("/snippets/{id}", app.Snippets.GetByID)
			r.Get("/snippets/{id}/comments", app.Comments.List)
			r.Get("/profiles/{username}", app.Profiles.GetByUsername)
		})

		// Writes require a session.
		r.Group(func(r chi.Router) {
			r.Use(required)
			r.Post("/snippets", app.Snippets.Create)
			r.Get("/snippets/mine", app.Snippets.Mine)
			r.Delete("/snippets/{id}", app.Snippets.Delete)
			r.Post("/snippets/{id}/like", app.Snippets.ToggleLike)
			r.Post("/snippets/{id}/comments", app.Comments.Create)
			r.Delete("/comments/{id}", app.Comments.Delete)
			r.Get("/profiles/me", app.Profiles.Me)
			r.Delete("/session", app.Sessions.Delete)
		})
	})

	return r
}
