// Package keycloak is a thin client for the Keycloak Admin REST API,
// covering the realm/client/user bootstrap this platform needs.
package keycloak

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyExists is returned when the resource is already present (409).
// Callers typically treat this as success with a warning.
var ErrAlreadyExists = errors.New("resource already exists")

// ErrNotAuthenticated is returned when no admin token is held; call Login first.
var ErrNotAuthenticated = errors.New("not authenticated: call Login first")

// AdminConfig holds configuration for an AdminClient.
type AdminConfig struct {
	// BaseURL is the Keycloak root, e.g. https://keycloak.example.se
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// AdminClient talks to the Keycloak Admin REST API. Authentication uses the
// password grant against the master realm's admin-cli client, matching how
// the Keycloak CLI itself logs in.
type AdminClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	validate   *validator.Validate
	logger     *zap.Logger

	token string
}

// NewAdminClient creates an AdminClient. Call Login before other methods.
func NewAdminClient(cfg AdminConfig) *AdminClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &AdminClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		validate:   validator.New(),
		logger:     cfg.Logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login obtains an admin access token from the master realm.
func (c *AdminClient) Login(ctx context.Context) error {
	form := url.Values{
		"username":   {c.username},
		"password":   {c.password},
		"grant_type": {"password"},
		"client_id":  {"admin-cli"},
	}

	endpoint := c.baseURL + "/realms/master/protocol/openid-connect/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request admin token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("admin token request returned status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("token response contained no access token")
	}

	c.token = tok.AccessToken
	c.logger.Debug("admin token obtained", zap.Int("expires_in", tok.ExpiresIn))
	return nil
}

// CreateRealm creates a realm. Returns ErrAlreadyExists on a 409.
func (c *AdminClient) CreateRealm(ctx context.Context, realm RealmRepresentation) error {
	if err := c.validate.Struct(realm); err != nil {
		return fmt.Errorf("invalid realm: %w", err)
	}
	_, err := c.post(ctx, "/admin/realms", realm)
	return err
}

// CreateClient registers a client in the given realm.
// Returns ErrAlreadyExists on a 409.
func (c *AdminClient) CreateClient(ctx context.Context, realm string, client ClientRepresentation) error {
	if err := c.validate.Struct(client); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}
	_, err := c.post(ctx, fmt.Sprintf("/admin/realms/%s/clients", realm), client)
	return err
}

// CreateUser creates a user in the given realm and returns the ID assigned
// by Keycloak, parsed from the Location header.
func (c *AdminClient) CreateUser(ctx context.Context, realm string, user UserRepresentation) (uuid.UUID, error) {
	if err := c.validate.Struct(user); err != nil {
		return uuid.Nil, fmt.Errorf("invalid user: %w", err)
	}

	location, err := c.post(ctx, fmt.Sprintf("/admin/realms/%s/users", realm), user)
	if err != nil {
		return uuid.Nil, err
	}

	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return uuid.Nil, fmt.Errorf("no user ID in Location header %q", location)
	}
	id, err := uuid.Parse(location[idx+1:])
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user ID from Location header: %w", err)
	}
	return id, nil
}

// AssignRealmRole grants a realm role to a user. The role must exist.
func (c *AdminClient) AssignRealmRole(ctx context.Context, realm string, userID uuid.UUID, roleName string) error {
	role, err := c.realmRole(ctx, realm, roleName)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/admin/realms/%s/users/%s/role-mappings/realm", realm, userID)
	_, err = c.post(ctx, path, []RoleRepresentation{role})
	return err
}

// realmRole fetches a realm role representation by name.
func (c *AdminClient) realmRole(ctx context.Context, realm, roleName string) (RoleRepresentation, error) {
	if c.token == "" {
		return RoleRepresentation{}, ErrNotAuthenticated
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s/roles/%s", c.baseURL, realm, roleName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RoleRepresentation{}, fmt.Errorf("build role request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RoleRepresentation{}, fmt.Errorf("fetch role %q: %w", roleName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return RoleRepresentation{}, fmt.Errorf("realm role %q not found", roleName)
	}
	if resp.StatusCode != http.StatusOK {
		return RoleRepresentation{}, fmt.Errorf("fetch role %q returned status %d", roleName, resp.StatusCode)
	}

	var role RoleRepresentation
	if err := json.NewDecoder(resp.Body).Decode(&role); err != nil {
		return RoleRepresentation{}, fmt.Errorf("decode role: %w", err)
	}
	return role, nil
}

// post sends an authenticated JSON POST and returns the Location header.
// 201 and 204 are success; 409 maps to ErrAlreadyExists.
func (c *AdminClient) post(ctx context.Context, path string, body any) (string, error) {
	if c.token == "" {
		return "", ErrNotAuthenticated
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusNoContent:
		return resp.Header.Get("Location"), nil
	case http.StatusConflict:
		return "", ErrAlreadyExists
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("post %s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
}
