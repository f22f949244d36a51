package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Keycloak      KeycloakConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// KeycloakConfig holds identity provider configuration.
// Issuer and JWKS URLs are derived from BaseURL and Realm.
type KeycloakConfig struct {
	BaseURL  string
	Realm    string
	ClientID string
	// Audience is the expected aud claim. Keycloak puts "account" in
	// access tokens unless an audience mapper is configured.
	Audience string
	// AdminUser/AdminPassword authenticate kcadmin against the master
	// realm. Not used by the gateway itself.
	AdminUser     string
	AdminPassword string
	HTTPTimeout   time.Duration
	// JWKSRefreshTTL forces a periodic key-set refetch. Zero disables it;
	// refresh-on-unknown-kid always applies.
	JWKSRefreshTTL time.Duration
}

// ObservabilityConfig holds logging configuration
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string // json or text
}

// New creates a new Config instance by loading environment variables
func New() (*Config, error) {
	// Load .env if present; real env vars take precedence.
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://127.0.0.1:3000"}),
		},
		Keycloak: KeycloakConfig{
			BaseURL:        getEnv("KEYCLOAK_URL", ""),
			Realm:          getEnv("KEYCLOAK_REALM", "myapp"),
			ClientID:       getEnv("KEYCLOAK_CLIENT_ID", "todo-backend"),
			Audience:       getEnv("KEYCLOAK_AUDIENCE", "account"),
			AdminUser:      getEnv("KEYCLOAK_ADMIN_USER", "admin"),
			AdminPassword:  getEnv("KEYCLOAK_ADMIN_PASSWORD", ""),
			HTTPTimeout:    getEnvAsDuration("KEYCLOAK_HTTP_TIMEOUT", 10*time.Second),
			JWKSRefreshTTL: getEnvAsDuration("KEYCLOAK_JWKS_REFRESH_TTL", time.Hour),
		},
		Observability: ObservabilityConfig{
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Keycloak.BaseURL == "" {
		return fmt.Errorf("keycloak base URL is required: set KEYCLOAK_URL")
	}
	if c.Keycloak.Realm == "" {
		return fmt.Errorf("keycloak realm is required")
	}
	if c.Keycloak.ClientID == "" {
		return fmt.Errorf("keycloak client ID is required")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IssuerURL returns the realm issuer, the expected iss claim.
func (c *KeycloakConfig) IssuerURL() string {
	return fmt.Sprintf("%s/realms/%s", strings.TrimRight(c.BaseURL, "/"), c.Realm)
}

// JWKSURL returns the realm's well-known JWKS endpoint.
func (c *KeycloakConfig) JWKSURL() string {
	return c.IssuerURL() + "/protocol/openid-connect/certs"
}

// TokenURL returns the OpenID Connect token endpoint for the given realm.
func (c *KeycloakConfig) TokenURL(realm string) string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(c.BaseURL, "/"), realm)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
