package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeKeycloak simulates the subset of the admin API the client touches.
type fakeKeycloak struct {
	srv     *httptest.Server
	realms  map[string]bool
	userIDs map[string]uuid.UUID
}

func newFakeKeycloak(t *testing.T) *fakeKeycloak {
	t.Helper()
	f := &fakeKeycloak{
		realms:  map[string]bool{},
		userIDs: map[string]uuid.UUID{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /realms/master/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("username") != "admin" || r.Form.Get("password") != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "password", r.Form.Get("grant_type"))
		assert.Equal(t, "admin-cli", r.Form.Get("client_id"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "fake-admin-token",
			"expires_in":   60,
		})
	})
	mux.HandleFunc("POST /admin/realms", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var realm RealmRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&realm))
		if f.realms[realm.Realm] {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.realms[realm.Realm] = true
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /admin/realms/{realm}/clients", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("POST /admin/realms/{realm}/users", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var user UserRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&user))
		id := uuid.New()
		f.userIDs[user.Username] = id
		w.Header().Set("Location", fmt.Sprintf("%s/admin/realms/%s/users/%s", f.srv.URL, r.PathValue("realm"), id))
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /admin/realms/{realm}/roles/{role}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("role") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(RoleRepresentation{
			ID:   uuid.New().String(),
			Name: r.PathValue("role"),
		})
	})
	mux.HandleFunc("POST /admin/realms/{realm}/users/{id}/role-mappings/realm", func(w http.ResponseWriter, r *http.Request) {
		var roles []RoleRepresentation
		require.NoError(t, json.NewDecoder(r.Body).Decode(&roles))
		require.Len(t, roles, 1)
		w.WriteHeader(http.StatusNoContent)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeKeycloak) authed(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer fake-admin-token"
}

func newTestClient(t *testing.T, f *fakeKeycloak) *AdminClient {
	t.Helper()
	return NewAdminClient(AdminConfig{
		BaseURL:  f.srv.URL,
		Username: "admin",
		Password: "hunter2",
	})
}

func TestLogin(t *testing.T) {
	f := newFakeKeycloak(t)

	t.Run("succeeds with valid credentials", func(t *testing.T) {
		c := newTestClient(t, f)
		require.NoError(t, c.Login(context.Background()))
	})

	t.Run("fails with wrong password", func(t *testing.T) {
		c := NewAdminClient(AdminConfig{BaseURL: f.srv.URL, Username: "admin", Password: "wrong"})
		err := c.Login(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("methods require login", func(t *testing.T) {
		c := newTestClient(t, f)
		err := c.CreateRealm(context.Background(), DefaultRealm("myapp", ""))
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})
}

func TestCreateRealm(t *testing.T) {
	f := newFakeKeycloak(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	realm := DefaultRealm("myapp", "My Application Realm")
	require.NoError(t, c.CreateRealm(context.Background(), realm))

	// Second creation conflicts.
	err := c.CreateRealm(context.Background(), realm)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	// Validation rejects an empty realm name before any request.
	err = c.CreateRealm(context.Background(), RealmRepresentation{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
}

func TestCreateClient(t *testing.T) {
	f := newFakeKeycloak(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	client := PublicClient("my-frontend-app", "My Frontend Application",
		[]string{"http://localhost:3000", "http://127.0.0.1:3000"})

	assert.Equal(t, "http://localhost:3000", client.RootURL)
	assert.Equal(t, []string{"http://localhost:3000/*", "http://127.0.0.1:3000/*"}, client.RedirectURIs)
	require.NoError(t, c.CreateClient(context.Background(), "myapp", client))
}

func TestCreateUserAndAssignRole(t *testing.T) {
	f := newFakeKeycloak(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	user := UserRepresentation{
		Username:      "alice",
		Email:         "alice@example.com",
		Enabled:       true,
		EmailVerified: true,
		Credentials: []CredentialRepresentation{
			{Type: "password", Value: "s3cret", Temporary: false},
		},
	}

	id, err := c.CreateUser(context.Background(), "myapp", user)
	require.NoError(t, err)
	assert.Equal(t, f.userIDs["alice"], id)

	require.NoError(t, c.AssignRealmRole(context.Background(), "myapp", id, "admin"))

	err = c.AssignRealmRole(context.Background(), "myapp", id, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestCreateUserRejectsBadEmail(t *testing.T) {
	f := newFakeKeycloak(t)
	c := newTestClient(t, f)
	require.NoError(t, c.Login(context.Background()))

	_, err := c.CreateUser(context.Background(), "myapp", UserRepresentation{
		Username: "bob",
		Email:    "not-an-email",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid user")
}
