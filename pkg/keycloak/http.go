package keycloak

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/keygate/pkg/idx"
)

// authenticator configures a request with service credentials immediately
// before it is sent. The AdminClient installs its TokenManager here so call
// sites never deal with token logic themselves.
type authenticator func(ctx context.Context, r *Request) error

// Http builds provider requests against one connection's base URL. It owns
// the shared transport, the optional outbound throttle and the authenticator
// hook.
type Http struct {
	baseURL string
	client  *http.Client
	auth    authenticator
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewHttp returns a request builder for baseURL. auth may be nil for
// unauthenticated use, limiter may be nil for unthrottled use.
func NewHttp(baseURL string, client *http.Client, auth authenticator, limiter *rate.Limiter, logger *slog.Logger) *Http {
	if logger == nil {
		logger = slog.Default()
	}
	return &Http{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		auth:    auth,
		limiter: limiter,
		logger:  logger,
	}
}

// Get starts a GET request. path is a fmt template whose placeholders are
// substituted positionally, e.g. Get("/admin/realms/%s/users", realm).
func (h *Http) Get(path string, args ...any) *Request {
	return h.method(http.MethodGet, path, args...)
}

// Post starts a POST request.
func (h *Http) Post(path string, args ...any) *Request {
	return h.method(http.MethodPost, path, args...)
}

func (h *Http) method(method, path string, args ...any) *Request {
	return &Request{
		http:   h,
		method: method,
		url:    h.baseURL + fmt.Sprintf(path, args...),
		params: url.Values{},
		header: http.Header{},
	}
}

// Request accumulates one provider call: parameters, headers, encoding mode
// and the authentication marker. Parameters are sent as a query string by
// default; Form switches the request to a form-encoded body.
type Request struct {
	http   *Http
	method string
	url    string
	form   bool
	authed bool
	params url.Values
	header http.Header
}

// Param sets a request parameter. Setting the same name again replaces the
// previous value.
func (r *Request) Param(name, value string) *Request {
	r.params.Set(name, value)
	return r
}

// Header sets a request header.
func (r *Request) Header(name, value string) *Request {
	r.header.Set(name, value)
	return r
}

// BearerAuth sets the Authorization header to a bearer token.
func (r *Request) BearerAuth(token string) *Request {
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return r.Header("Authorization", token)
}

// BasicAuth sets the Authorization header to basic credentials.
func (r *Request) BasicAuth(username, password string) *Request {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return r.Header("Authorization", "Basic "+creds)
}

// Form switches the request to application/x-www-form-urlencoded body
// submission. Parameters set before or after apply the same way.
func (r *Request) Form() *Request {
	r.form = true
	return r
}

// Authenticated marks the request to be configured by the connection's
// authenticator right before send.
func (r *Request) Authenticated() *Request {
	r.authed = true
	return r
}

// Execute sends the request and discards any response body.
func (r *Request) Execute(ctx context.Context) error {
	_, err := r.ExecuteInto(ctx, nil)
	return err
}

// ExecuteInto sends the request and decodes a JSON response into target.
//
// The returned found flag is false, with a nil error, when the provider
// answered 404 or sent no body: absence is an expected outcome, not an
// error. Statuses outside [200,300) other than 404 yield an *HTTPError;
// transport failures and undecodable bodies yield wrapped errors. target may
// be nil to discard the body. Unknown JSON fields are ignored so provider
// schema additions do not break decoding.
func (r *Request) ExecuteInto(ctx context.Context, target any) (found bool, err error) {
	h := r.http

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("keycloak: throttle wait: %w", err)
		}
	}

	if r.authed && h.auth != nil {
		if err := h.auth(ctx, r); err != nil {
			return false, err
		}
	}

	var body io.Reader
	reqURL := r.url
	if r.form {
		body = strings.NewReader(r.params.Encode())
	} else if len(r.params) > 0 {
		reqURL += "?" + r.params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, body)
	if err != nil {
		return false, fmt.Errorf("keycloak: create request: %w", err)
	}
	for name, values := range r.header {
		req.Header[name] = values
	}
	if r.form {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	reqID := idx.New()
	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("keycloak: send request %s %s: %w", r.method, r.url, err)
	}
	defer resp.Body.Close()

	h.logger.Debug("provider request",
		"id", reqID,
		"method", r.method,
		"url", r.url,
		"status", resp.StatusCode,
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, &HTTPError{
			StatusCode: resp.StatusCode,
			Reason:     reasonPhrase(resp),
			URL:        r.url,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("keycloak: read response %s: %w", r.url, err)
	}
	if len(data) == 0 || target == nil {
		return len(data) > 0, nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("keycloak: decode response %s: %w", r.url, err)
	}
	return true, nil
}

// reasonPhrase extracts the status text from "404 Not Found" style lines,
// falling back to the canonical text for the code.
func reasonPhrase(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
