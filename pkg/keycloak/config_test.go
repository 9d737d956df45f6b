package keycloak

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigJSON(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "keycloak.json", `{
		"realm": "corp",
		"auth-server-url": "https://sso.example.com/",
		"resource": "host-client",
		"credentials": {"secret": "s3cr3t"},
		"requests-per-second": 25,
		"source-code": "kc1"
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "corp", cfg.Realm)
	require.Equal(t, "https://sso.example.com", cfg.AuthServerURL, "trailing slash is trimmed")
	require.Equal(t, "host-client", cfg.Resource)
	require.Equal(t, "s3cr3t", cfg.Credentials.Secret)
	require.Equal(t, 25.0, cfg.RequestsPerSecond)
	require.Equal(t, "kc1", cfg.SourceCode)
}

func TestLoadConfigYAML(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "keycloak.yaml", `
realm: corp
auth-server-url: https://sso.example.com
resource: host-client
public-client: true
allow-any-hostname: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "corp", cfg.Realm)
	require.True(t, cfg.PublicClient)
	require.True(t, cfg.AllowAnyHostname)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, "keycloak.json", `{not json`)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "keycloak.json"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := Config{
		AuthServerURL: "https://sso.example.com",
		Realm:         "corp",
		Resource:      "host-client",
		Credentials:   Credentials{Secret: "s3cr3t"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing auth-server-url", func(c *Config) { c.AuthServerURL = "" }},
		{"missing realm", func(c *Config) { c.Realm = "" }},
		{"missing resource", func(c *Config) { c.Resource = "" }},
		{"confidential without secret", func(c *Config) { c.Credentials.Secret = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}

	t.Run("public client needs no secret", func(t *testing.T) {
		t.Parallel()

		cfg := valid
		cfg.PublicClient = true
		cfg.Credentials.Secret = ""
		require.NoError(t, cfg.Validate())
	})
}
