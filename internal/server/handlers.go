package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/m7011e/platform/internal/httputil"
	"github.com/m7011e/platform/internal/middleware"
)

// HealthCheck reports process liveness.
func HealthCheck(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// PublicHandler serves unauthenticated data.
func PublicHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteOK(w, map[string]string{"message": "This is public data"})
	}
}

// MeHandler echoes the verified identity of the caller.
func MeHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			_ = httputil.WriteInternalServerError(w, "claims missing after authentication")
			return
		}

		_ = httputil.WriteOK(w, map[string]any{
			"sub":         claims.Subject,
			"username":    claims.Username(),
			"email":       claims.Email,
			"realm_roles": claims.RealmAccess.Roles,
		})
	}
}

// UserProfileHandler serves a user's profile. Access is gated upstream by
// the owner-or-admin policy; the handler only renders.
func UserProfileHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "id")
		claims := middleware.ClaimsFromContext(r.Context())

		_ = httputil.WriteOK(w, map[string]any{
			"user_id":      userID,
			"viewed_by":    claims.Subject,
			"viewer_name":  claims.Username(),
			"viewer_email": claims.Email,
		})
	}
}

// SigningKeysHandler reports key-cache state for operators.
// Only cache metadata is exposed, never key material.
func SigningKeysHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteOK(w, deps.Keys.Stats())
	}
}
