package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// VerifierConfig holds configuration for a Verifier.
type VerifierConfig struct {
	// Issuer is the expected iss claim, e.g.
	// https://keycloak.example.se/realms/myapp
	Issuer string

	// Audience is the expected aud claim. Keycloak access tokens carry
	// "account" unless an audience mapper is configured.
	Audience string

	Keys   *KeySet
	Logger *zap.Logger
}

// Verifier turns a raw bearer token into a validated claim set or a typed
// failure. The signature algorithm is pinned to RS256; the alg named in the
// untrusted token header is never used to select the verification method.
type Verifier struct {
	keys   *KeySet
	parser *jwt.Parser
	logger *zap.Logger
}

// NewVerifier creates a Verifier bound to a key set, issuer and audience.
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Verifier{
		keys: cfg.Keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
		logger: cfg.Logger,
	}
}

// Verify validates tokenString and returns its claims. On an unknown kid it
// forces exactly one key-set refresh and retries, tolerating provider key
// rotation; every other failure kind is terminal for this token.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := v.verifyOnce(ctx, tokenString)
	if err == nil {
		return claims, nil
	}

	if kind, ok := KindOf(err); ok && kind == KindUnknownSigningKey {
		v.logger.Info("unknown signing key, refreshing key set")
		if rerr := v.keys.Refresh(ctx); rerr == nil {
			return v.verifyOnce(ctx, tokenString)
		}
	}
	return nil, err
}

func (v *Verifier) verifyOnce(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc(ctx))
	if err != nil {
		return nil, classify(err)
	}
	return claims, nil
}

// keyFunc locates the verification key by the kid in the token header.
// The header is untrusted at this point; only the kid is read from it.
func (v *Verifier) keyFunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, newError(KindMalformedToken, fmt.Errorf("token header has no kid"))
		}
		return v.keys.Key(ctx, kid)
	}
}

// classify maps a jwt parse error onto the closed failure taxonomy.
// Failures are never merged into one generic bucket.
func classify(err error) error {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return newError(KindExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return newError(KindTokenNotYetValid, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return newError(KindIssuerMismatch, err)
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return newError(KindAudienceMismatch, err)
	default:
		// Covers unparseable tokens, missing segments, disallowed
		// algorithms and signature mismatches.
		return newError(KindMalformedToken, err)
	}
}
