package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleSet holds the role list inside a realm_access or resource_access entry.
type RoleSet struct {
	Roles []string `json:"roles"`
}

// Claims is the validated claim set of a Keycloak access token.
// It is only ever produced after signature verification succeeds; nothing
// in this package decodes claims from an unverified token.
type Claims struct {
	jwt.RegisteredClaims

	PreferredUsername string             `json:"preferred_username"`
	Email             string             `json:"email"`
	EmailVerified     bool               `json:"email_verified"`
	Scope             string             `json:"scope"`
	RealmAccess       RoleSet            `json:"realm_access"`
	ResourceAccess    map[string]RoleSet `json:"resource_access"`
}

// HasRealmRole reports whether the realm-level role list contains role.
func (c *Claims) HasRealmRole(role string) bool {
	for _, r := range c.RealmAccess.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasClientRole reports whether the role list scoped to clientID contains role.
func (c *Claims) HasClientRole(clientID, role string) bool {
	access, ok := c.ResourceAccess[clientID]
	if !ok {
		return false
	}
	for _, r := range access.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasRole reports whether role is present at the realm level or scoped to
// clientID. This is the role check used by the authorization gate.
func (c *Claims) HasRole(clientID, role string) bool {
	return c.HasRealmRole(role) || c.HasClientRole(clientID, role)
}

// Username returns preferred_username, falling back to the subject ID.
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}
