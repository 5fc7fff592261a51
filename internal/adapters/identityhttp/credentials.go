package identityhttp

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/oauth2"
)

// Strategy selects how authenticated requests carry credentials.
type Strategy string

const (
	// StrategyCookie relies on a server-managed session cookie held in a cookie jar.
	StrategyCookie Strategy = "cookie"
	// StrategyBearer sends "Authorization: Bearer <token>" with a token the session machine persists.
	StrategyBearer Strategy = "bearer"
)

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyCookie || s == StrategyBearer
}

// UnmarshalText implements encoding.TextUnmarshaler for Strategy.
func (s *Strategy) UnmarshalText(text []byte) error {
	v := Strategy(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.Valid() {
		return fmt.Errorf("invalid transport strategy: %q (valid options: cookie, bearer)", string(text))
	}
	*s = v
	return nil
}

var errNoToken = errors.New("no bearer token")

// credentials holds whichever credential the strategy uses: a cookie jar or a bearer token.
type credentials struct {
	strategy Strategy

	mu    sync.RWMutex
	token string
	jar   *cookiejar.Jar
}

var _ oauth2.TokenSource = (*credentials)(nil)

func newCredentials(strategy Strategy) (*credentials, error) {
	c := &credentials{strategy: strategy}
	if strategy == StrategyCookie {
		jar, err := newJar()
		if err != nil {
			return nil, err
		}
		c.jar = jar
	}
	return c, nil
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

func (c *credentials) set(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.strategy {
	case StrategyBearer:
		c.token = token
	case StrategyCookie:
		// A cookie session cannot be installed from a token; clearing drops the jar.
		if token == "" {
			if jar, err := newJar(); err == nil {
				c.jar = jar
			}
		}
	}
}

// Token implements oauth2.TokenSource over the in-memory bearer token.
func (c *credentials) Token() (*oauth2.Token, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return nil, errNoToken
	}
	return &oauth2.Token{AccessToken: c.token, TokenType: "Bearer"}, nil
}

// roundTripper resolves the bearer credential once, so a request either carries the token seen
// here or goes out unauthenticated.
func (c *credentials) roundTripper(base http.RoundTripper, authenticated bool) http.RoundTripper {
	if c.strategy != StrategyBearer || !authenticated {
		return base
	}
	tok, err := c.Token()
	if err != nil {
		return base
	}
	return &oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: base}
}

//nolint:ireturn // http.Client.Jar is an interface; a typed nil would be non-nil.
func (c *credentials) cookieJar() http.CookieJar {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.jar == nil {
		return nil
	}
	return c.jar
}
