package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("KEYCLOAK_URL", "https://keycloak.example.se")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, "myapp", cfg.Keycloak.Realm)
	assert.Equal(t, "account", cfg.Keycloak.Audience)
	assert.Equal(t, time.Hour, cfg.Keycloak.JWKSRefreshTTL)
	assert.Equal(t, "info", cfg.Observability.LogLevel)
	assert.False(t, cfg.IsProduction())
}

func TestNewOverrides(t *testing.T) {
	t.Setenv("KEYCLOAK_URL", "https://keycloak.example.se/")
	t.Setenv("KEYCLOAK_REALM", "staging")
	t.Setenv("KEYCLOAK_CLIENT_ID", "my-backend")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.se, https://admin.example.se")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://app.example.se", "https://admin.example.se"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "my-backend", cfg.Keycloak.ClientID)
}

func TestValidateRequiresBaseURL(t *testing.T) {
	cfg := &Config{
		Keycloak:      KeycloakConfig{Realm: "myapp", ClientID: "todo-backend"},
		Observability: ObservabilityConfig{LogLevel: "info"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KEYCLOAK_URL")
}

func TestKeycloakURLs(t *testing.T) {
	kc := KeycloakConfig{BaseURL: "https://keycloak.example.se/", Realm: "myapp"}

	assert.Equal(t, "https://keycloak.example.se/realms/myapp", kc.IssuerURL())
	assert.Equal(t,
		"https://keycloak.example.se/realms/myapp/protocol/openid-connect/certs",
		kc.JWKSURL())
	assert.Equal(t,
		"https://keycloak.example.se/realms/master/protocol/openid-connect/token",
		kc.TokenURL("master"))
}
