package config

import (
	"fmt"
	"strings"
	"time"
)

// IdentityStrategy selects how authenticated requests carry credentials.
type IdentityStrategy string

const (
	// IdentityStrategyCookie uses a server-managed session cookie. Nothing is persisted locally.
	IdentityStrategyCookie IdentityStrategy = "cookie"
	// IdentityStrategyBearer persists a bearer token and sends it on authenticated requests.
	IdentityStrategyBearer IdentityStrategy = "bearer"
)

// UnmarshalText implements encoding.TextUnmarshaler so env can parse IDENTITY_TRANSPORT.
func (s *IdentityStrategy) UnmarshalText(text []byte) error {
	v := IdentityStrategy(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case IdentityStrategyCookie, IdentityStrategyBearer:
		*s = v
		return nil
	case "":
		*s = IdentityStrategyCookie
		return nil
	default:
		return fmt.Errorf("invalid identity transport: %q (valid options: cookie, bearer)", string(text))
	}
}

// IdentityConfig configures the identity service client.
type IdentityConfig struct {
	BaseURL  string           `env:"BASE_URL"  envDefault:"http://localhost:4000"`
	Strategy IdentityStrategy `env:"TRANSPORT" envDefault:"cookie"`

	// RequestTimeout bounds each call to the identity service.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	// RestoreTimeout bounds the startup session restore.
	RestoreTimeout time.Duration `env:"RESTORE_TIMEOUT" envDefault:"10s"`

	// UserPath and TokenPath are JMESPath expressions over response bodies.
	UserPath  string `env:"USER_PATH"  envDefault:"user || @"`
	TokenPath string `env:"TOKEN_PATH" envDefault:"token"`
}

// Sanitize applies guardrails to identity configuration values.
func (c *IdentityConfig) Sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.Strategy == "" {
		c.Strategy = IdentityStrategyCookie
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	if c.RestoreTimeout <= 0 {
		c.RestoreTimeout = 10 * time.Second
	}
	c.UserPath = strings.TrimSpace(c.UserPath)
	c.TokenPath = strings.TrimSpace(c.TokenPath)
}

// PersistsToken reports whether the session token is stored locally.
func (c *IdentityConfig) PersistsToken() bool {
	return c.Strategy == IdentityStrategyBearer
}
