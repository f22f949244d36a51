package keycloak

// RealmRepresentation is the admin API payload for realm creation.
type RealmRepresentation struct {
	Realm                  string `json:"realm" validate:"required"`
	Enabled                bool   `json:"enabled"`
	DisplayName            string `json:"displayName,omitempty"`
	LoginWithEmailAllowed  bool   `json:"loginWithEmailAllowed"`
	DuplicateEmailsAllowed bool   `json:"duplicateEmailsAllowed"`
	ResetPasswordAllowed   bool   `json:"resetPasswordAllowed"`
	EditUsernameAllowed    bool   `json:"editUsernameAllowed"`
	BruteForceProtected    bool   `json:"bruteForceProtected"`
}

// DefaultRealm returns a realm with the settings used across the platform.
func DefaultRealm(name, displayName string) RealmRepresentation {
	return RealmRepresentation{
		Realm:                 name,
		Enabled:               true,
		DisplayName:           displayName,
		LoginWithEmailAllowed: true,
		ResetPasswordAllowed:  true,
		BruteForceProtected:   true,
	}
}

// ClientRepresentation is the admin API payload for client creation.
type ClientRepresentation struct {
	ClientID                  string   `json:"clientId" validate:"required"`
	Name                      string   `json:"name,omitempty"`
	Enabled                   bool     `json:"enabled"`
	Protocol                  string   `json:"protocol"`
	PublicClient              bool     `json:"publicClient"`
	RootURL                   string   `json:"rootUrl,omitempty"`
	RedirectURIs              []string `json:"redirectUris,omitempty"`
	WebOrigins                []string `json:"webOrigins,omitempty"`
	StandardFlowEnabled       bool     `json:"standardFlowEnabled"`
	DirectAccessGrantsEnabled bool     `json:"directAccessGrantsEnabled"`
}

// PublicClient returns a browser-facing client: redirect URIs and web
// origins are derived from the frontend URLs, one wildcard redirect per URL.
func PublicClient(clientID, name string, frontendURLs []string) ClientRepresentation {
	c := ClientRepresentation{
		ClientID:            clientID,
		Name:                name,
		Enabled:             true,
		Protocol:            "openid-connect",
		PublicClient:        true,
		StandardFlowEnabled: true,
	}
	if len(frontendURLs) > 0 {
		c.RootURL = frontendURLs[0]
	}
	for _, u := range frontendURLs {
		c.RedirectURIs = append(c.RedirectURIs, u+"/*")
		c.WebOrigins = append(c.WebOrigins, u)
	}
	return c
}

// CredentialRepresentation is a user credential, always of type password here.
type CredentialRepresentation struct {
	Type      string `json:"type"`
	Value     string `json:"value" validate:"required"`
	Temporary bool   `json:"temporary"`
}

// UserRepresentation is the admin API payload for user creation.
type UserRepresentation struct {
	Username      string                     `json:"username" validate:"required"`
	Email         string                     `json:"email,omitempty" validate:"omitempty,email"`
	FirstName     string                     `json:"firstName,omitempty"`
	LastName      string                     `json:"lastName,omitempty"`
	Enabled       bool                       `json:"enabled"`
	EmailVerified bool                       `json:"emailVerified"`
	Credentials   []CredentialRepresentation `json:"credentials,omitempty"`
}

// RoleRepresentation is a realm role as returned by the admin API.
type RoleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
