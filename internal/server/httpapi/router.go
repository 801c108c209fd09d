package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/okarpov/articles-api/internal/token"
)

// NewRouter assembles the API routes with the shared middleware stack.
// Article mutations require a bearer token; reads are public.
func NewRouter(auth *AuthHandler, articles *ArticleHandler, issuer *token.Issuer, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(Recover(log))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Refresh"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", auth.Register)
		r.Post("/login", auth.Login)
		r.Post("/refresh", auth.Refresh)
		r.With(BearerAuth(issuer)).Post("/logout", auth.Logout)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Get("/", articles.List)
		r.Get("/{id}", articles.GetByID)

		r.Group(func(r chi.Router) {
			r.Use(BearerAuth(issuer))
			r.Post("/", articles.Create)
			r.Patch("/{id}", articles.Update)
			r.Delete("/{id}", articles.Delete)
		})
	})

	return r
}
