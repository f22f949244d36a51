package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/m7011e/platform/internal/auth"
	"github.com/m7011e/platform/internal/config"
	"github.com/m7011e/platform/internal/httputil"
	"github.com/m7011e/platform/internal/middleware"
)

// Dependencies holds everything the router needs.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Auth   *middleware.AuthMiddleware
	Keys   *auth.KeySet
}

// NewRouter configures all application routes and middleware.
// Each route group declares its policy explicitly: public, authenticated,
// role-gated, or owner-or-role.
func NewRouter(deps *Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// CORS for the frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", HealthCheck(deps))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/public", PublicHandler(deps))

		// Authenticated-only
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireAuth)
			r.Get("/me", MeHandler(deps))
		})

		// Owner-or-admin
		r.Route("/users/{id}/profile", func(r chi.Router) {
			r.Use(deps.Auth.RequireAuth)
			r.Use(deps.Auth.RequireOwnerOrRole("id", "admin"))
			r.Get("/", UserProfileHandler(deps))
		})

		// Admin-only
		r.Route("/admin", func(r chi.Router) {
			r.Use(deps.Auth.RequireAuth)
			r.Use(deps.Auth.RequireRole("admin"))
			r.Get("/keys", SigningKeysHandler(deps))
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteNotFound(w, "endpoint not found")
	})

	return r
}
