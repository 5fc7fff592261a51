// Package identityhttp implements the identity-service transport over role-scoped REST.
package identityhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmespath-community/go-jmespath"
	domainauth "github.com/target/pulsecare-portal/internal/domain/auth"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/ports"
)

const (
	// DefaultIdentityPath accepts both {user:{...}} and flat identity bodies.
	DefaultIdentityPath = "user || @"
	// DefaultTokenPath extracts the bearer token from login/signup bodies.
	DefaultTokenPath = "token"

	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 1 << 20

	fallbackRejectedMessage = "Auth request failed"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the identity service root, e.g. "https://id.pulsecare.example".
	BaseURL string
	// Strategy selects how authenticated requests carry credentials.
	Strategy Strategy
	// Timeout bounds every request. Defaults to 15s.
	Timeout time.Duration
	// IdentityPath and TokenPath are JMESPath expressions evaluated against response bodies.
	IdentityPath string
	TokenPath    string
	// BaseTransport is the underlying round tripper. Defaults to http.DefaultTransport.
	BaseTransport http.RoundTripper
	Logger        *slog.Logger
}

// Client talks to the identity service. It is safe for concurrent use.
type Client struct {
	base         *url.URL
	strategy     Strategy
	timeout      time.Duration
	identityPath string
	tokenPath    string
	transport    http.RoundTripper
	logger       *slog.Logger

	creds *credentials

	mu             sync.RWMutex
	onUnauthorized func(ctx context.Context)
}

var _ ports.IdentityTransport = (*Client)(nil)

// NewClient validates opts and builds a Client.
func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("identity base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid identity base URL %q", raw)
	}

	strategy := opts.Strategy
	if strategy == "" {
		strategy = StrategyCookie
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("invalid transport strategy %q", strategy)
	}

	identityPath := firstNonEmpty(opts.IdentityPath, DefaultIdentityPath)
	tokenPath := firstNonEmpty(opts.TokenPath, DefaultTokenPath)
	for _, expr := range []string{identityPath, tokenPath} {
		if _, cerr := jmespath.Compile(expr); cerr != nil {
			return nil, fmt.Errorf("compile response path %q: %w", expr, cerr)
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rt := opts.BaseTransport
	if rt == nil {
		rt = http.DefaultTransport
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	creds, err := newCredentials(strategy)
	if err != nil {
		return nil, err
	}

	return &Client{
		base:         base,
		strategy:     strategy,
		timeout:      timeout,
		identityPath: identityPath,
		tokenPath:    tokenPath,
		transport:    rt,
		logger:       logger.With("component", "identity_transport"),
		creds:        creds,
	}, nil
}

// Strategy reports the configured credential strategy.
func (c *Client) Strategy() Strategy { return c.strategy }

// SetUnauthorizedHandler registers fn to run when an authenticated request is denied.
func (c *Client) SetUnauthorizedHandler(fn func(ctx context.Context)) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

// Authorize installs token for authenticated requests. An empty token drops all credentials,
// including any session cookie.
func (c *Client) Authorize(token string) {
	c.creds.set(token)
}

// Login posts credentials to the role's login endpoint.
func (c *Client) Login(
	ctx context.Context,
	role domainauth.Role,
	creds domainauth.Credentials,
) (ports.AuthResult, error) {
	if !role.HasChannel() {
		return ports.AuthResult{}, apperrors.Validationf("role %q has no login channel", role)
	}
	body := map[string]string{"email": creds.Email, "password": creds.Password}
	return c.authenticate(ctx, "/auth/"+string(role)+"/login", body)
}

// Signup posts a role-scoped profile to the role's signup endpoint.
func (c *Client) Signup(
	ctx context.Context,
	role domainauth.Role,
	profile domainauth.SignupProfile,
) (ports.AuthResult, error) {
	if !role.HasChannel() {
		return ports.AuthResult{}, apperrors.Validationf("role %q has no signup channel", role)
	}
	return c.authenticate(ctx, "/auth/"+string(role)+"/signup", profile.Payload(role))
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (ports.AuthResult, error) {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return ports.AuthResult{}, err
	}
	if err := resp.failure(); err != nil {
		return ports.AuthResult{}, err
	}

	ident, err := c.identityFrom(resp.payload)
	if err != nil {
		return ports.AuthResult{}, err
	}

	return ports.AuthResult{Identity: *ident, Token: c.tokenFrom(resp.payload)}, nil
}

// RestoreSession resolves the current identity. An unauthorized response means "no session".
func (c *Client) RestoreSession(ctx context.Context) (*domainauth.Identity, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", authenticated: true})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusUnauthorized {
		return nil, nil
	}
	if err := resp.failure(); err != nil {
		return nil, err
	}
	return c.identityFrom(resp.payload)
}

// FetchProfile reloads the identity. An unauthorized response yields a nil identity and fires the
// unauthorized handler, because the caller believed it was authenticated.
func (c *Client) FetchProfile(ctx context.Context) (*domainauth.Identity, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/profile", authenticated: true})
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusUnauthorized {
		c.signalUnauthorized(ctx)
		return nil, nil
	}
	if err := resp.failure(); err != nil {
		return nil, err
	}
	return c.identityFrom(resp.payload)
}

// Logout asks the service to end the session. A 401 means there was nothing to end.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout", authenticated: true})
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized {
		return nil
	}
	return resp.failure()
}

func (c *Client) signalUnauthorized(ctx context.Context) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()

	c.logger.WarnContext(ctx, "identity service rejected session")
	if fn != nil {
		fn(ctx)
	}
}

type request struct {
	method        string
	path          string
	body          any
	authenticated bool
}

type response struct {
	status  int
	payload any
}

// failure maps a non-2xx response to an error. 401 is handled by callers before this runs
// when it carries session meaning.
func (r response) failure() error {
	switch {
	case r.status >= 200 && r.status < 300:
		return nil
	case r.status >= 400 && r.status < 500:
		return apperrors.Rejected(r.status, rejectedMessage(r.payload))
	default:
		return apperrors.Transport(fmt.Errorf("unexpected status %d", r.status))
	}
}

func (c *Client) do(ctx context.Context, req request) (response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return response{}, err
	}

	start := time.Now()
	resp, err := c.httpClient(req.authenticated).Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return response{}, apperrors.Wrap(ctxErr, apperrors.ErrCodeCanceled, "request canceled")
		}
		c.logger.WarnContext(ctx, "identity request failed",
			"method", req.method,
			"path", req.path,
			"error", err,
		)
		return response{}, apperrors.Transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return response{}, apperrors.Transport(fmt.Errorf("read response: %w", err))
	}

	c.logger.DebugContext(ctx, "identity request",
		"method", req.method,
		"path", req.path,
		"status", resp.StatusCode,
		"request_id", httpReq.Header.Get("X-Request-ID"),
		"duration", time.Since(start),
	)

	out := response{status: resp.StatusCode}
	if len(bytes.TrimSpace(raw)) > 0 {
		if jerr := json.Unmarshal(raw, &out.payload); jerr != nil {
			// Error pages from proxies are often HTML; only a 2xx body must be JSON.
			if out.status >= 200 && out.status < 300 {
				return response{}, apperrors.Transport(fmt.Errorf("decode response: %w", jerr))
			}
			out.payload = nil
		}
	}

	return out, nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode request")
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.base.String()+req.path, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "build request")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

func (c *Client) httpClient(authenticated bool) *http.Client {
	return &http.Client{
		Transport: c.creds.roundTripper(c.transport, authenticated),
		Jar:       c.creds.cookieJar(),
		Timeout:   c.timeout,
	}
}

func (c *Client) identityFrom(payload any) (*domainauth.Identity, error) {
	malformed := apperrors.Transport(errors.New("malformed identity response"))

	found, err := jmespath.Search(c.identityPath, payload)
	if err != nil {
		return nil, malformed
	}
	obj, ok := found.(map[string]any)
	if !ok {
		return nil, malformed
	}

	role, ok := domainauth.ParseRole(stringField(obj, "role"))
	if !ok {
		return nil, malformed
	}

	return &domainauth.Identity{
		Name:  stringField(obj, "name"),
		Role:  role,
		Email: stringField(obj, "email"),
	}, nil
}

func (c *Client) tokenFrom(payload any) string {
	found, err := jmespath.Search(c.tokenPath, payload)
	if err != nil {
		return ""
	}
	token, _ := found.(string)
	return token
}

func rejectedMessage(payload any) string {
	found, err := jmespath.Search("message || error", payload)
	if err != nil {
		return fallbackRejectedMessage
	}
	if msg, ok := found.(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallbackRejectedMessage
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
