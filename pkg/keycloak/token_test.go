package keycloak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// tokenEndpoint is a scriptable token endpoint: each call pops the next
// scripted response. The mutex keeps scripts and calls coherent when the
// manager is hit from several goroutines.
type tokenEndpoint struct {
	t      *testing.T
	server *httptest.Server

	mu      sync.Mutex
	scripts []func(w http.ResponseWriter, r *http.Request)
	calls   []string
}

func newTokenEndpoint(t *testing.T, scripts ...func(w http.ResponseWriter, r *http.Request)) *tokenEndpoint {
	t.Helper()

	e := &tokenEndpoint{t: t, scripts: scripts}
	e.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		e.mu.Lock()
		e.calls = append(e.calls, r.PostForm.Get("grant_type"))
		require.NotEmpty(t, e.scripts, "unexpected extra token request")
		next := e.scripts[0]
		e.scripts = e.scripts[1:]
		e.mu.Unlock()

		next(w, r)
	}))
	t.Cleanup(e.server.Close)
	return e
}

func (e *tokenEndpoint) manager(t *testing.T) *TokenManager {
	t.Helper()

	cfg := testConfig(e.server.URL)
	h := NewHttp(e.server.URL, e.server.Client(), nil, nil, testLogger())
	m, err := NewTokenManager(cfg, h, testLogger())
	require.NoError(t, err)
	return m
}

func issue(token string, expiresIn int, refreshToken string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(TokenResponse{
			AccessToken:  token,
			ExpiresIn:    expiresIn,
			RefreshToken: refreshToken,
			TokenType:    "Bearer",
		})
	}
}

func reject(status int) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func TestNewTokenManagerRejectsPublicClient(t *testing.T) {
	t.Parallel()

	cfg := testConfig("http://localhost")
	cfg.PublicClient = true
	cfg.Credentials = Credentials{}

	_, err := NewTokenManager(cfg, nil, testLogger())
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAccessTokenReusedWhileValid(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, issue("tok-1", 300, "refresh-1"))
	m := endpoint.manager(t)

	first, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", first)

	second, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", second)

	require.Equal(t, []string{"client_credentials"}, endpoint.calls)
}

func TestAccessTokenRefreshesWhenStale(t *testing.T) {
	t.Parallel()

	// expires_in below the minimum-validity window, so the cached token is
	// stale immediately.
	endpoint := newTokenEndpoint(t,
		issue("tok-1", 5, "refresh-1"),
		issue("tok-2", 300, "refresh-2"),
	)
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)

	second, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", second)

	require.Equal(t, []string{"client_credentials", "refresh_token"}, endpoint.calls)
}

func TestAccessTokenWithoutRefreshTokenRegrants(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t,
		issue("tok-1", 5, ""),
		issue("tok-2", 300, ""),
	)
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)

	second, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", second)

	require.Equal(t, []string{"client_credentials", "client_credentials"}, endpoint.calls)
}

func TestAccessTokenRefreshFailureFallsBackToGrant(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t,
		issue("tok-1", 5, "refresh-1"),
		reject(http.StatusBadRequest),
		issue("tok-2", 300, "refresh-2"),
	)
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)

	second, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", second)

	require.Equal(t, []string{"client_credentials", "refresh_token", "client_credentials"}, endpoint.calls)
}

func TestInvalidateForcesReissue(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t,
		issue("tok-1", 300, "refresh-1"),
		issue("tok-2", 300, "refresh-2"),
	)
	m := endpoint.manager(t)

	first, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", first)

	m.Invalidate("tok-1")

	second, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", second)
}

func TestInvalidateIgnoresSupersededToken(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, issue("tok-1", 300, "refresh-1"))
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)

	// Not the cached token, so the cache stays warm.
	m.Invalidate("tok-0")

	token, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)

	require.Equal(t, []string{"client_credentials"}, endpoint.calls)
}

func TestAccessTokenEndpointNotFoundIsError(t *testing.T) {
	t.Parallel()

	// A 404 from the token endpoint means a misconfigured realm or base
	// URL, never a usable grant.
	endpoint := newTokenEndpoint(t, reject(http.StatusNotFound))
	m := endpoint.manager(t)

	token, err := m.AccessTokenString(context.Background())
	require.Error(t, err)
	require.Empty(t, token)
}

func TestAccessTokenEmptyResponseIsError(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.Error(t, err)
}

func TestAccessTokenBlankTokenIsError(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, issue("", 300, ""))
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.Error(t, err)
}

func TestAccessTokenConcurrentFirstUseGrantsOnce(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, issue("tok-1", 300, "refresh-1"))
	m := endpoint.manager(t)

	const workers = 16
	tokens := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tokens[i], errs[i] = m.AccessTokenString(context.Background())
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		require.Equal(t, "tok-1", tokens[i])
	}
	require.Equal(t, []string{"client_credentials"}, endpoint.calls)
}

func TestInvalidateConcurrentWithAccessToken(t *testing.T) {
	t.Parallel()

	var issued atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		issue(fmt.Sprintf("tok-%d", issued.Add(1)), 300, "refresh")(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(server.URL)
	h := NewHttp(server.URL, server.Client(), nil, nil, testLogger())
	m, err := NewTokenManager(cfg, h, testLogger())
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				token, err := m.AccessTokenString(context.Background())
				if err != nil {
					errs[i] = err
					return
				}
				if token == "" {
					errs[i] = fmt.Errorf("empty token")
					return
				}
				m.Invalidate(token)
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
	}
}

func TestSetMinValidityWidensStaleWindow(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t,
		issue("tok-1", 120, "refresh-1"),
		issue("tok-2", 300, "refresh-2"),
	)
	m := endpoint.manager(t)

	_, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)

	m.SetMinValidity(10 * time.Minute)

	token, err := m.AccessTokenString(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", token)
}
