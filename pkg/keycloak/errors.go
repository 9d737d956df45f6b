package keycloak

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx, non-404 answer from the provider. The
// original status code is preserved so callers at the authentication boundary
// can map 401/403 to "bad credentials" without string matching.
type HTTPError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Reason is the status text sent with the response line
	Reason string

	// URL is the request URL that produced the response
	URL string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("keycloak: unexpected response for %s: %d / %s", e.URL, e.StatusCode, e.Reason)
}

// ConfigError reports an invalid connection configuration. It is fatal at
// construction time and never retried; the owning connection should degrade
// to a no-op client instead of crashing the host.
type ConfigError struct {
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "keycloak: invalid configuration: " + e.Reason
}

// IsAuthFailure reports whether err is a provider response that means the
// presented credentials were rejected (401 or 403), as opposed to an
// infrastructure failure.
func IsAuthFailure(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden
}
