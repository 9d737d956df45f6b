package keycloak

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config describes one identity-provider connection. It mirrors the Keycloak
// adapter config format (keycloak.json) so an installation file exported from
// the provider's console works unmodified; the same fields can also be given
// as YAML. A Config is read once at startup and never mutated.
type Config struct {
	// AuthServerURL is the base URL of the provider, e.g.
	// "https://sso.example.com" (no trailing slash, no realm path).
	AuthServerURL string `json:"auth-server-url" yaml:"auth-server-url"`

	// Realm is the provider tenant holding the users, roles and groups.
	Realm string `json:"realm" yaml:"realm"`

	// Resource is the client id of the connection's own OAuth2 client.
	Resource string `json:"resource" yaml:"resource"`

	// Credentials holds the client secret for confidential clients.
	Credentials Credentials `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	// PublicClient marks a client without a secret. Public clients can obtain
	// user tokens but cannot run the client-credentials grant that backs the
	// admin API calls.
	PublicClient bool `json:"public-client,omitempty" yaml:"public-client,omitempty"`

	// DisableTrustManager disables server certificate validation entirely.
	DisableTrustManager bool `json:"disable-trust-manager,omitempty" yaml:"disable-trust-manager,omitempty"`

	// AllowAnyHostname keeps chain validation but skips hostname
	// verification.
	AllowAnyHostname bool `json:"allow-any-hostname,omitempty" yaml:"allow-any-hostname,omitempty"`

	// ProxyURL routes provider traffic through an HTTP proxy when set.
	ProxyURL string `json:"proxy-url,omitempty" yaml:"proxy-url,omitempty"`

	// RequestsPerSecond throttles outbound admin API calls when positive.
	RequestsPerSecond float64 `json:"requests-per-second,omitempty" yaml:"requests-per-second,omitempty"`

	// SourceCode is a short tag disambiguating role ids when several
	// connections share one host. Empty keeps the legacy id encoding.
	SourceCode string `json:"source-code,omitempty" yaml:"source-code,omitempty"`
}

// Credentials holds the confidential client secret.
type Credentials struct {
	Secret string `json:"secret,omitempty" yaml:"secret,omitempty"`
}

// Validate reports a *ConfigError when a required field is missing.
func (c Config) Validate() error {
	switch {
	case c.AuthServerURL == "":
		return &ConfigError{Reason: "auth-server-url is required"}
	case c.Realm == "":
		return &ConfigError{Reason: "realm is required"}
	case c.Resource == "":
		return &ConfigError{Reason: "resource is required"}
	case !c.PublicClient && c.Credentials.Secret == "":
		return &ConfigError{Reason: "credentials.secret is required for a confidential client"}
	}
	return nil
}

// LoadConfig reads and validates a connection file. The format is chosen by
// extension: ".yaml"/".yml" parse as YAML, anything else as JSON.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("keycloak: read config %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("keycloak: parse config %s: %w", path, err)
	}

	cfg.AuthServerURL = strings.TrimSuffix(cfg.AuthServerURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
