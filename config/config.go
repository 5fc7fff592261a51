package config

import (
	"os"
	"strings"
)

// AppConfig is the portal's configuration, composed from the domain files in this package.
//
// Values are loaded from environment variables with github.com/caarlos0/env:
//   - identity.go: identity service endpoint and credential strategy
//   - storage.go: where the session token and selected role persist
//   - database.go: Redis connection, used by the redis storage backend
//   - http.go: HTTP server
//   - observability.go: metrics
type AppConfig struct {
	// IsDev enables development behavior such as template reloading.
	// Set DEV=true or NODE_ENV=development.
	IsDev bool `env:"DEV" envDefault:"false"`

	Identity IdentityConfig `envPrefix:"IDENTITY_"`
	Storage  StorageConfig  `envPrefix:"STORAGE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to values loaded from env.
func (c *AppConfig) Sanitize() {
	c.Identity.Sanitize()
	c.Storage.Sanitize()
	c.HTTP.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// detectDevMode falls back to NODE_ENV when DEV is unset.
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
