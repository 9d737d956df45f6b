package keycloak

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		AuthServerURL: baseURL,
		Realm:         "test",
		Resource:      "host-client",
		Credentials:   Credentials{Secret: "host-secret"},
	}
}

// fakeProvider serves the token endpoint plus whatever admin routes a test
// registers, counting token grants by grant type.
type fakeProvider struct {
	t      *testing.T
	mux    *http.ServeMux
	server *httptest.Server

	grants    atomic.Int64
	refreshes atomic.Int64
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()

	p := &fakeProvider{t: t, mux: http.NewServeMux()}
	p.mux.HandleFunc("POST /realms/test/protocol/openid-connect/token", p.handleToken)
	p.server = httptest.NewServer(p.mux)
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakeProvider) handleToken(w http.ResponseWriter, r *http.Request) {
	require.NoError(p.t, r.ParseForm())

	switch r.PostForm.Get("grant_type") {
	case "client_credentials":
		p.grants.Add(1)
	case "refresh_token":
		p.refreshes.Add(1)
	}
	writeJSON(p.t, w, TokenResponse{
		AccessToken:  "service-token",
		ExpiresIn:    300,
		RefreshToken: "service-refresh",
		TokenType:    "Bearer",
	})
}

func (p *fakeProvider) handle(pattern string, handler http.HandlerFunc) {
	p.mux.HandleFunc(pattern, handler)
}

func (p *fakeProvider) client(t *testing.T) *AdminClient {
	t.Helper()

	admin, err := NewAdminClient(testConfig(p.server.URL), testLogger())
	require.NoError(t, err)
	return admin
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
