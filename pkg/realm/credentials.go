package realm

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Header names carrying token credentials. AuthHeader is set by a provider
// proxy in front of the host ("<username>:<access token>"); the other two
// are the gatekeeper fallback when that header is absent.
const (
	AuthHeader          = "X-Keycloak-Sec-Auth"
	FallbackTokenHeader = "Authorization"
	FallbackUserHeader  = "X-Auth-Username"
)

// Credentials is what a caller presents to Authenticate: either a
// username/password pair or a username/bearer-token pair taken from request
// headers.
type Credentials interface {
	// Principal is the user id the credentials claim to belong to.
	Principal() string
}

// PasswordCredentials authenticate through the provider's password grant.
type PasswordCredentials struct {
	Username string
	Password string
}

func (c PasswordCredentials) Principal() string { return c.Username }

// TokenCredentials authenticate by validating a bearer token against the
// provider's userinfo endpoint and comparing the preferred username.
type TokenCredentials struct {
	Username    string
	AccessToken string
}

func (c TokenCredentials) Principal() string { return c.Username }

// TokenCredentialsFromHeaders extracts token credentials from request
// headers. The dedicated auth header wins; otherwise a bearer Authorization
// header is combined with the username header, and when even that is missing
// the preferred_username claim is peeked from the JWT itself. The peek is
// unverified; the provider call in Authenticate is what actually validates
// the token.
// Usernames are lowercased so one account cannot produce multiple host
// sessions differing only in case.
func TokenCredentialsFromHeaders(header http.Header) (TokenCredentials, bool) {
	if value := header.Get(AuthHeader); value != "" {
		return parseAuthHeader(value)
	}

	token := strings.TrimPrefix(header.Get(FallbackTokenHeader), "Bearer ")
	if token == "" || token == header.Get(FallbackTokenHeader) {
		return TokenCredentials{}, false
	}

	username := header.Get(FallbackUserHeader)
	if username == "" {
		username = preferredUsername(token)
	}
	if username == "" {
		return TokenCredentials{}, false
	}

	return TokenCredentials{
		Username:    strings.ToLower(username),
		AccessToken: token,
	}, true
}

// parseAuthHeader splits "<username>:<access token>".
func parseAuthHeader(value string) (TokenCredentials, bool) {
	username, token, _ := strings.Cut(value, ":")
	if username == "" {
		return TokenCredentials{}, false
	}
	return TokenCredentials{
		Username:    strings.ToLower(username),
		AccessToken: token,
	}, true
}

// preferredUsername decodes the preferred_username claim without verifying
// the token signature.
func preferredUsername(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	username, _ := claims["preferred_username"].(string)
	return username
}
