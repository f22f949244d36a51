package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/m7011e/platform/internal/auth"
)

const testClientID = "todo-backend"

// MockTokenVerifier is a mock implementation of TokenVerifier
type MockTokenVerifier struct {
	mock.Mock
}

func (m *MockTokenVerifier) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func newTestMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return NewAuthMiddleware(verifier, auth.NewGate(testClientID), zap.NewNop())
}

func testClaims(sub string, realmRoles ...string) *auth.Claims {
	return &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: sub},
		RealmAccess:      auth.RoleSet{Roles: realmRoles},
	}
}

func okHandler(t *testing.T, wantSub string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if wantSub != "" {
			assert.NotNil(t, claims)
			assert.Equal(t, wantSub, claims.Subject)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Run("valid bearer token allows and stores claims", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "valid-token").Return(testClaims("user-1"), nil)

		handler := newTestMiddleware(verifier).RequireAuth(okHandler(t, "user-1"))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		verifier.AssertExpectations(t)
	})

	t.Run("missing header denies with no_credential", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		handler := newTestMiddleware(verifier).RequireAuth(okHandler(t, ""))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "no_credential")
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("basic scheme denies with no_credential, not malformed_token", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		handler := newTestMiddleware(verifier).RequireAuth(okHandler(t, ""))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic abc123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "no_credential")
		assert.NotContains(t, w.Body.String(), "malformed_token")
		verifier.AssertNotCalled(t, "Verify")
	})

	t.Run("expired token denies with its distinct kind", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "stale-token").
			Return(nil, &auth.Error{Kind: auth.KindExpiredToken})

		handler := newTestMiddleware(verifier).RequireAuth(okHandler(t, ""))

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired_token")
		verifier.AssertExpectations(t)
	})
}

func TestRequireRole(t *testing.T) {
	routerFor := func(verifier TokenVerifier, role string) http.Handler {
		m := newTestMiddleware(verifier)
		r := chi.NewRouter()
		r.Group(func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Use(m.RequireRole(role))
			r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
		return r
	}

	t.Run("realm role allows", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(testClaims("user-1", "admin"), nil)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		routerFor(verifier, "admin").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("client role allows", func(t *testing.T) {
		claims := testClaims("user-1")
		claims.ResourceAccess = map[string]auth.RoleSet{
			testClientID: {Roles: []string{"admin"}},
		}
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(claims, nil)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		routerFor(verifier, "admin").ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing role denies with 403", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(testClaims("user-1", "user"), nil)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		routerFor(verifier, "admin").ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "insufficient_role")
	})
}

func TestRequireOwnerOrRole(t *testing.T) {
	routerFor := func(verifier TokenVerifier) http.Handler {
		m := newTestMiddleware(verifier)
		r := chi.NewRouter()
		r.Group(func(r chi.Router) {
			r.Use(m.RequireAuth)
			r.Route("/users/{id}/profile", func(r chi.Router) {
				r.Use(m.RequireOwnerOrRole("id", "admin"))
				r.Get("/", func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(http.StatusOK)
				})
			})
		})
		return r
	}

	get := func(t *testing.T, verifier TokenVerifier, path string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := httptest.NewRecorder()
		routerFor(verifier).ServeHTTP(w, req)
		return w
	}

	t.Run("owner without role allows", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(testClaims("user-1"), nil)

		w := get(t, verifier, "/users/user-1/profile")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("admin accessing another user allows", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(testClaims("user-2", "admin"), nil)

		w := get(t, verifier, "/users/user-1/profile")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("neither owner nor admin denies with forbidden", func(t *testing.T) {
		verifier := new(MockTokenVerifier)
		verifier.On("Verify", mock.Anything, "tok").Return(testClaims("user-2"), nil)

		w := get(t, verifier, "/users/user-1/profile")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "forbidden")
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lowercase scheme", header: "bearer abc", want: "abc", wantOK: true},
		{name: "empty header"},
		{name: "basic scheme", header: "Basic abc123"},
		{name: "scheme only", header: "Bearer"},
		{name: "scheme with empty token", header: "Bearer  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(req)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
