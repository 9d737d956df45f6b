package keycloak

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdminClient exposes the provider REST operations one connection needs.
// It is stateless between calls; the HTTP transport and the TokenManager are
// built lazily on first use and cached for the client's lifetime.
type AdminClient struct {
	cfg    Config
	logger *slog.Logger

	httpOnce sync.Once
	http     *Http
	httpErr  error

	tokenOnce sync.Once
	tokens    *TokenManager
	tokensErr error
}

// NewAdminClient creates a client for one validated connection config.
// A nil logger falls back to slog.Default().
func NewAdminClient(cfg Config, logger *slog.Logger) (*AdminClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminClient{cfg: cfg, logger: logger}, nil
}

// NewAdminClientFromFile creates a client from a connection file.
func NewAdminClientFromFile(path string, logger *slog.Logger) (*AdminClient, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewAdminClient(cfg, logger)
}

// Config returns the connection config the client was built from.
func (c *AdminClient) Config() Config {
	return c.cfg
}

// Http returns the connection's request builder, constructing the transport
// on first use.
func (c *AdminClient) Http() (*Http, error) {
	c.httpOnce.Do(func() {
		transport, err := c.transport()
		if err != nil {
			c.httpErr = err
			return
		}

		var limiter *rate.Limiter
		if c.cfg.RequestsPerSecond > 0 {
			limiter = rate.NewLimiter(rate.Limit(c.cfg.RequestsPerSecond), 1)
		}

		auth := func(ctx context.Context, r *Request) error {
			tm, err := c.TokenManager()
			if err != nil {
				return err
			}
			token, err := tm.AccessTokenString(ctx)
			if err != nil {
				return err
			}
			r.Param("grant_type", "access_token")
			r.BearerAuth(token)
			return nil
		}

		httpClient := &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		}
		c.http = NewHttp(c.cfg.AuthServerURL, httpClient, auth, limiter, c.logger)
	})
	return c.http, c.httpErr
}

// TokenManager returns the connection's credential lifecycle manager,
// constructing it on first use. The construction outcome is cached: a public
// client fails here once and every authenticated call thereafter sees the
// same *ConfigError without a retry.
func (c *AdminClient) TokenManager() (*TokenManager, error) {
	c.tokenOnce.Do(func() {
		h, err := c.Http()
		if err != nil {
			c.tokensErr = err
			return
		}
		c.tokens, c.tokensErr = NewTokenManager(c.cfg, h, c.logger)
	})
	return c.tokens, c.tokensErr
}

func (c *AdminClient) transport() (*http.Transport, error) {
	tlsConfig := &tls.Config{}
	switch {
	case c.cfg.DisableTrustManager:
		tlsConfig.InsecureSkipVerify = true
	case c.cfg.AllowAnyHostname:
		// Keep chain validation against the system roots but skip the
		// hostname check, which Go's verifier does not expose separately.
		tlsConfig.InsecureSkipVerify = true
		tlsConfig.VerifyPeerCertificate = verifyChainOnly
	}

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		TLSClientConfig: tlsConfig,
	}
	if c.cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(c.cfg.ProxyURL)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("invalid proxy-url %q: %v", c.cfg.ProxyURL, err)}
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return transport, nil
}

// verifyChainOnly validates the presented certificate chain against the
// system roots without checking the leaf's hostname.
func verifyChainOnly(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("keycloak: server presented no certificates")
	}

	certs := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("keycloak: parse server certificate: %w", err)
		}
		certs = append(certs, cert)
	}

	intermediates := x509.NewCertPool()
	for _, cert := range certs[1:] {
		intermediates.AddCert(cert)
	}

	_, err := certs[0].Verify(x509.VerifyOptions{Intermediates: intermediates})
	return err
}

// request is a convenience wrapper shared by the typed operations.
func (c *AdminClient) get(path string, args ...any) (*Request, error) {
	h, err := c.Http()
	if err != nil {
		return nil, err
	}
	return h.Get(path, args...), nil
}

func (c *AdminClient) post(path string, args ...any) (*Request, error) {
	h, err := c.Http()
	if err != nil {
		return nil, err
	}
	return h.Post(path, args...), nil
}
