package redis

// Package redis provides Redis-based adapters for the portal.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
)

const defaultKeyPrefix = "pulsecare:"

// KVStore is a Redis-backed key-value store used for the portal's durable client state.
// Keys are namespaced with a prefix so several portal instances can share one Redis.
type KVStore struct {
	client redis.UniversalClient
	prefix string
}

// NewKVStore creates a Redis key-value store with the default key prefix.
func NewKVStore(client redis.UniversalClient) *KVStore {
	return &KVStore{
		client: client,
		prefix: defaultKeyPrefix,
	}
}

// NewKVStoreWithPrefix creates a Redis key-value store with a custom key prefix.
func NewKVStoreWithPrefix(client redis.UniversalClient, prefix string) *KVStore {
	return &KVStore{
		client: client,
		prefix: prefix,
	}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrNotFound
	}

	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}

	return val, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	// Zero expiration: portal state lives until explicitly deleted.
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// ErrNotFound is returned when a key is absent.
var ErrNotFound error = apperrors.NotFound("key not found")
