package config

import (
	"fmt"
	"strings"
)

// StorageBackend names the key-value store behind the session token and selected role.
type StorageBackend string

const (
	// StorageBackendFile keeps a JSON file on local disk.
	StorageBackendFile StorageBackend = "file"
	// StorageBackendRedis keeps keys in Redis, shared across instances.
	StorageBackendRedis StorageBackend = "redis"
	// StorageBackendMemory keeps keys in process memory; nothing survives a restart.
	StorageBackendMemory StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler so env can parse STORAGE_BACKEND.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := StorageBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case StorageBackendFile, StorageBackendRedis, StorageBackendMemory:
		*b = v
		return nil
	default:
		return fmt.Errorf("invalid storage backend: %q (valid options: file, redis, memory)", string(text))
	}
}

// StorageConfig configures client-side persistence.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"file"`
	// FilePath is used by the file backend.
	FilePath string `env:"FILE_PATH" envDefault:".pulsecare/state.json"`
	// KeyPrefix namespaces keys in the redis backend.
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"pulsecare:"`
}

// Sanitize applies guardrails to storage configuration values.
func (c *StorageConfig) Sanitize() {
	c.FilePath = strings.TrimSpace(c.FilePath)
	if c.Backend == StorageBackendFile && c.FilePath == "" {
		c.FilePath = ".pulsecare/state.json"
	}
	c.KeyPrefix = strings.TrimSpace(c.KeyPrefix)
}
