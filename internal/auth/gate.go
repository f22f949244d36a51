package auth

// Decision is the outcome of an authorization check.
// Exactly one of Claims (allowed) or Kind (denied) is meaningful.
type Decision struct {
	Allowed bool
	Claims  *Claims
	Kind    Kind
}

func allow(claims *Claims) Decision {
	return Decision{Allowed: true, Claims: claims}
}

func deny(kind Kind) Decision {
	return Decision{Kind: kind}
}

// Gate maps a validated claim set (or the absence of one) to an allow/deny
// decision for a protected operation. Role checks consider both realm-level
// roles and client roles scoped to the gate's client ID.
type Gate struct {
	clientID string
}

// NewGate creates a Gate scoped to this service's client identifier.
func NewGate(clientID string) *Gate {
	return &Gate{clientID: clientID}
}

// RequireAuthenticated denies with the verifier's failure kind when
// verification failed, with KindNoCredential when no token was supplied,
// and allows otherwise.
func (g *Gate) RequireAuthenticated(claims *Claims, verr error) Decision {
	if verr != nil {
		if kind, ok := KindOf(verr); ok {
			return deny(kind)
		}
		return deny(KindMalformedToken)
	}
	if claims == nil {
		return deny(KindNoCredential)
	}
	return allow(claims)
}

// RequireRole requires authentication plus role membership in either the
// realm role list or the client role list. Denies with KindInsufficientRole
// when the role is absent from both.
func (g *Gate) RequireRole(claims *Claims, verr error, role string) Decision {
	d := g.RequireAuthenticated(claims, verr)
	if !d.Allowed {
		return d
	}
	if !claims.HasRole(g.clientID, role) {
		return deny(KindInsufficientRole)
	}
	return allow(claims)
}

// RequireOwnerOrRole allows when the authenticated subject owns the resource
// or holds the bypass role; denies with KindForbidden when both are false.
// This is the "owner or admin" pattern applied to every protected resource.
func (g *Gate) RequireOwnerOrRole(claims *Claims, verr error, ownerID, role string) Decision {
	d := g.RequireAuthenticated(claims, verr)
	if !d.Allowed {
		return d
	}
	if claims.Subject != "" && claims.Subject == ownerID {
		return allow(claims)
	}
	if claims.HasRole(g.clientID, role) {
		return allow(claims)
	}
	return deny(KindForbidden)
}
