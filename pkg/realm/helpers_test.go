package realm

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/keygate/pkg/keycloak"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeRealm is a canned provider realm with one user, pre-wired with every
// endpoint the connection client touches.
type fakeRealm struct {
	t      *testing.T
	mux    *http.ServeMux
	server *httptest.Server
}

func newFakeRealm(t *testing.T) *fakeRealm {
	t.Helper()

	f := &fakeRealm{t: t, mux: http.NewServeMux()}
	f.server = httptest.NewServer(f.mux)
	t.Cleanup(f.server.Close)

	alice := keycloak.User{
		ID:        "u1",
		Username:  "alice",
		FirstName: "Alice",
		Email:     "alice@example.com",
		Enabled:   true,
	}
	bob := keycloak.User{ID: "u2", Username: "bob", Enabled: false}

	f.mux.HandleFunc("POST /realms/test/protocol/openid-connect/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())

		if r.PostForm.Get("grant_type") == "password" && r.PostForm.Get("password") != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.writeJSON(w, keycloak.TokenResponse{AccessToken: "issued-token", ExpiresIn: 300})
	})
	f.mux.HandleFunc("GET /realms/test/protocol/openid-connect/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer alice-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.writeJSON(w, keycloak.UserInfo{Sub: "u1", PreferredUsername: "alice"})
	})
	f.mux.HandleFunc("GET /admin/realms/test/users", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("username") == "alice":
			f.writeJSON(w, []keycloak.User{alice})
		case q.Has("username"):
			f.writeJSON(w, []keycloak.User{})
		default:
			// Unfiltered listings and fuzzy searches see every account.
			f.writeJSON(w, []keycloak.User{alice, bob})
		}
	})
	f.mux.HandleFunc("GET /admin/realms/test/clients", func(w http.ResponseWriter, r *http.Request) {
		f.writeJSON(w, []keycloak.RealmClient{{ID: "c-uuid", ClientID: "host-client"}})
	})
	f.mux.HandleFunc("GET /admin/realms/test/users/u1/role-mappings/clients/c-uuid/composite",
		func(w http.ResponseWriter, r *http.Request) {
			f.writeJSON(w, []keycloak.Role{{ID: "r1", Name: "admin", ClientRole: true}})
		})
	f.mux.HandleFunc("GET /admin/realms/test/users/u1/role-mappings/realm/composite",
		func(w http.ResponseWriter, r *http.Request) {
			f.writeJSON(w, []keycloak.Role{{ID: "r2", Name: "dev"}})
		})
	f.mux.HandleFunc("GET /admin/realms/test/users/u1/groups", func(w http.ResponseWriter, r *http.Request) {
		f.writeJSON(w, []keycloak.Group{{ID: "g1", Name: "infra", Path: "/teams/infra"}})
	})

	return f
}

func (f *fakeRealm) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	require.NoError(f.t, json.NewEncoder(w).Encode(v))
}

func (f *fakeRealm) config(sourceCode string) keycloak.Config {
	return keycloak.Config{
		AuthServerURL: f.server.URL,
		Realm:         "test",
		Resource:      "host-client",
		Credentials:   keycloak.Credentials{Secret: "host-secret"},
		SourceCode:    sourceCode,
	}
}

func (f *fakeRealm) client(t *testing.T, sourceCode string) Client {
	t.Helper()

	client, err := NewClient(f.config(sourceCode), testLogger())
	require.NoError(t, err)
	return client
}
