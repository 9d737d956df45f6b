package keycloak

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultMinValidity is the window before expiry within which a cached token
// is considered stale and refreshed.
const DefaultMinValidity = 30 * time.Second

const tokenPath = "/realms/%s/protocol/openid-connect/token"

// TokenManager owns the one service-account token of a connection. It grants
// a client-credentials token on first use, refreshes it once it falls within
// the minimum-validity window and falls back to a fresh grant whenever a
// refresh fails. Safe for concurrent use; a single mutex covers every state
// transition so grant, refresh and invalidate never interleave.
type TokenManager struct {
	cfg    Config
	http   *Http
	logger *slog.Logger

	mu          sync.Mutex
	current     *TokenResponse
	expiresAt   time.Time
	minValidity time.Duration
}

// NewTokenManager returns a manager for the connection's service account.
// It fails with a *ConfigError for public clients: the client-credentials
// grant requires a confidential client with a secret.
func NewTokenManager(cfg Config, h *Http, logger *slog.Logger) (*TokenManager, error) {
	if cfg.PublicClient {
		return nil, &ConfigError{Reason: "can't use grant_type=client_credentials with a public client"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenManager{
		cfg:         cfg,
		http:        h,
		logger:      logger,
		minValidity: DefaultMinValidity,
	}, nil
}

// AccessTokenString returns a bearer token string that is valid for at least
// the minimum-validity window.
func (m *TokenManager) AccessTokenString(ctx context.Context) (string, error) {
	token, err := m.AccessToken(ctx)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// AccessToken returns the cached token, granting or refreshing first when
// needed.
func (m *TokenManager) AccessToken(ctx context.Context) (*TokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.current == nil:
		return m.grant(ctx)
	case m.stale():
		return m.refresh(ctx)
	}
	return m.current, nil
}

// SetMinValidity overrides the minimum remaining validity a returned token is
// guaranteed to have.
func (m *TokenManager) SetMinValidity(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minValidity = d
}

// Invalidate forces the next AccessToken call to refresh (and, should the
// refresh fail, re-grant), but only when the cached token still equals
// token. A mismatch means a concurrent refresh already superseded it and
// there is nothing left to invalidate.
func (m *TokenManager) Invalidate(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return
	}
	if m.current.AccessToken == token {
		m.expiresAt = time.Time{}
	}
}

// grant runs the client-credentials grant. Caller holds m.mu.
func (m *TokenManager) grant(ctx context.Context) (*TokenResponse, error) {
	token, err := m.update(ctx, m.tokenRequest("client_credentials"))
	if err != nil {
		return nil, fmt.Errorf("grant service token: %w", err)
	}
	return token, nil
}

// refresh exchanges the refresh token for a new pair, falling back to a full
// grant on any failure. Refresh failures are never surfaced to the caller.
// Caller holds m.mu.
func (m *TokenManager) refresh(ctx context.Context) (*TokenResponse, error) {
	if m.current.RefreshToken == "" {
		return m.grant(ctx)
	}

	req := m.tokenRequest("refresh_token").
		Param("refresh_token", m.current.RefreshToken)

	token, err := m.update(ctx, req)
	if err != nil {
		m.logger.Debug("token refresh failed, granting a new token", "error", err)
		return m.grant(ctx)
	}
	return token, nil
}

func (m *TokenManager) update(ctx context.Context, req *Request) (*TokenResponse, error) {
	requestTime := time.Now()

	var token TokenResponse
	found, err := req.ExecuteInto(ctx, &token)
	if err != nil {
		return nil, err
	}
	// A 404 or an empty body from the token endpoint means the connection is
	// misconfigured (wrong realm or base URL). Caching the zero-value
	// response would hand every admin call an empty bearer.
	if !found || token.AccessToken == "" {
		return nil, fmt.Errorf("keycloak: token endpoint returned no token")
	}

	m.current = &token
	m.expiresAt = requestTime.Add(time.Duration(token.ExpiresIn) * time.Second)
	m.logger.Debug("service token updated", "expires_in", token.ExpiresIn)

	return m.current, nil
}

func (m *TokenManager) tokenRequest(grantType string) *Request {
	return m.http.Post(tokenPath, m.cfg.Realm).
		Form().
		Param("grant_type", grantType).
		BasicAuth(m.cfg.Resource, m.cfg.Credentials.Secret)
}

// stale reports whether the cached token falls within the minimum-validity
// window. Caller holds m.mu.
func (m *TokenManager) stale() bool {
	return !time.Now().Add(m.minValidity).Before(m.expiresAt)
}
