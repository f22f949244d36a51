package middleware

import (
	"context"

	"github.com/m7011e/platform/internal/auth"
)

// Context key type to avoid collisions
type contextKey string

const claimsKey contextKey = "claims"

// WithClaims adds verified claims to the context.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext retrieves verified claims from the context.
// Returns nil when the request did not pass through RequireAuth.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if val := ctx.Value(claimsKey); val != nil {
		if claims, ok := val.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
