package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/pulsecare-portal/config"
	"github.com/target/pulsecare-portal/internal/adapters/filekv"
	"github.com/target/pulsecare-portal/internal/adapters/memkv"
	redisadapter "github.com/target/pulsecare-portal/internal/adapters/redis"
	"github.com/target/pulsecare-portal/internal/ports"
)

// StorageDeps groups what BuildKVStore needs.
type StorageDeps struct {
	Storage config.StorageConfig
	Redis   config.RedisConfig
	Logger  *slog.Logger
}

// KVStore is the configured key-value store plus its release hook.
type KVStore struct {
	ports.KeyValueStore
	close func() error
}

// Close releases the backend's connection, if any.
func (s *KVStore) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// BuildKVStore opens the storage backend selected by cfg.Storage.Backend.
func BuildKVStore(ctx context.Context, deps StorageDeps) (*KVStore, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch deps.Storage.Backend {
	case config.StorageBackendRedis:
		client, err := ConnectRedis(ctx, DatabaseConfig{RedisConfig: deps.Redis, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store := redisadapter.NewKVStore(client)
		if deps.Storage.KeyPrefix != "" {
			store = redisadapter.NewKVStoreWithPrefix(client, deps.Storage.KeyPrefix)
		}
		logger.InfoContext(ctx, "storage ready", "backend", deps.Storage.Backend, "prefix", deps.Storage.KeyPrefix)
		return &KVStore{KeyValueStore: store, close: client.Close}, nil

	case config.StorageBackendMemory:
		logger.WarnContext(ctx, "storage ready", "backend", deps.Storage.Backend, "note", "state is lost on restart")
		return &KVStore{KeyValueStore: memkv.New()}, nil

	case config.StorageBackendFile, "":
		store, err := filekv.New(deps.Storage.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open state file: %w", err)
		}
		logger.InfoContext(ctx, "storage ready", "backend", config.StorageBackendFile, "path", deps.Storage.FilePath)
		return &KVStore{KeyValueStore: store}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", deps.Storage.Backend)
	}
}
