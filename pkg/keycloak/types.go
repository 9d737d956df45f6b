package keycloak

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the Keycloak token endpoint response per RFC 6749.
// This is returned for the password, client_credentials and refresh_token
// grant types alike.
type TokenResponse struct {
	// AccessToken is the bearer token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// ExpiresIn is the lifetime in seconds of the access token
	ExpiresIn int `json:"expires_in"`

	// RefreshExpiresIn is the lifetime in seconds of the refresh token
	RefreshExpiresIn int `json:"refresh_expires_in,omitempty"`

	// RefreshToken is the opaque token used to obtain new access tokens.
	// Not issued for every grant type.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is "Bearer" per OAuth2 spec
	TokenType string `json:"token_type,omitempty"`

	// NotBeforePolicy is the provider's not-before revocation epoch
	NotBeforePolicy int `json:"not-before-policy,omitempty"`

	// SessionState identifies the provider-side session
	SessionState string `json:"session_state,omitempty"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// UserInfo represents the OIDC userinfo endpoint response.
type UserInfo struct {
	Sub               string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name,omitempty"`
	GivenName         string `json:"given_name,omitempty"`
	FamilyName        string `json:"family_name,omitempty"`
	Email             string `json:"email,omitempty"`
	EmailVerified     bool   `json:"email_verified,omitempty"`
}

// ============================================================================
// Admin API Types
// ============================================================================

// User is the admin API's user representation, reduced to the fields the
// mapping layer consumes. Unknown provider fields are ignored on decode.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// Role is the admin API's role representation, covering both client-scoped
// and realm-scoped roles.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	// Composite reports whether this role grants further roles transitively.
	Composite bool `json:"composite,omitempty"`

	// ClientRole distinguishes client-scoped from realm-scoped roles.
	ClientRole bool `json:"clientRole"`

	// ContainerID is the owning realm or client id.
	ContainerID string `json:"containerId,omitempty"`
}

// Group is the admin API's group representation. Groups form a tree; Path is
// the slash-delimited path from the realm root (e.g. "/teams/infra").
type Group struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Path      string  `json:"path"`
	SubGroups []Group `json:"subGroups,omitempty"`
}

// RealmClient is the admin API's client representation (an OAuth2 client
// registered in the realm, not to be confused with AdminClient).
type RealmClient struct {
	ID          string `json:"id"`
	ClientID    string `json:"clientId"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}
