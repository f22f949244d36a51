package auth

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one failure mode of token verification or authorization.
// The set is closed; every denial carries exactly one Kind so logs and
// responses can distinguish clock-skew issues from misconfiguration.
type Kind string

const (
	// KindMalformedToken is returned when the token cannot be parsed or its
	// signature does not verify against the located key.
	KindMalformedToken Kind = "malformed_token"

	// KindKeyRetrievalFailed is returned when the JWKS endpoint could not be
	// reached or returned an unusable response. Transient; callers may retry.
	KindKeyRetrievalFailed Kind = "key_retrieval_failed"

	// KindUnknownSigningKey is returned when no key in the current key set
	// matches the token's kid, even after a forced refresh.
	KindUnknownSigningKey Kind = "unknown_signing_key"

	// KindExpiredToken is returned when the exp claim is in the past.
	KindExpiredToken Kind = "expired_token"

	// KindTokenNotYetValid is returned when the nbf claim is in the future.
	KindTokenNotYetValid Kind = "token_not_yet_valid"

	// KindIssuerMismatch is returned when the iss claim does not equal the
	// configured issuer.
	KindIssuerMismatch Kind = "issuer_mismatch"

	// KindAudienceMismatch is returned when the aud claim does not contain
	// the configured audience.
	KindAudienceMismatch Kind = "audience_mismatch"

	// KindNoCredential is returned when no bearer token was supplied.
	KindNoCredential Kind = "no_credential"

	// KindInsufficientRole is returned when the required role is absent from
	// both the realm role list and the client role list.
	KindInsufficientRole Kind = "insufficient_role"

	// KindForbidden is returned when the subject is neither the resource
	// owner nor a holder of the bypass role.
	KindForbidden Kind = "forbidden"
)

// HTTPStatus maps the kind to its user-visible status code.
// Authentication failures are 401, authorization failures are 403.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInsufficientRole, KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusUnauthorized
	}
}

// Message returns a safe, user-visible description of the kind.
// It never includes token or key material.
func (k Kind) Message() string {
	switch k {
	case KindMalformedToken:
		return "Token is malformed or its signature is invalid"
	case KindKeyRetrievalFailed:
		return "Signing keys could not be retrieved"
	case KindUnknownSigningKey:
		return "Token was signed with an unknown key"
	case KindExpiredToken:
		return "Token has expired"
	case KindTokenNotYetValid:
		return "Token is not yet valid"
	case KindIssuerMismatch:
		return "Token issuer is not trusted"
	case KindAudienceMismatch:
		return "Token audience does not match this service"
	case KindNoCredential:
		return "Missing or invalid authorization"
	case KindInsufficientRole:
		return "Insufficient permissions"
	case KindForbidden:
		return "Access forbidden"
	default:
		return "Authentication failed"
	}
}

// Error is the failure type produced by the verifier and the gate.
// It wraps an optional cause for logging; the cause is never sent to clients.
type Error struct {
	Kind  Kind
	cause error
}

func newError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is allows errors.Is matching on bare kinds, e.g.
// errors.Is(err, &Error{Kind: KindExpiredToken}).
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the failure kind from an error chain.
// The second return is false when the error did not originate here.
func KindOf(err error) (Kind, bool) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return authErr.Kind, true
	}
	return "", false
}
