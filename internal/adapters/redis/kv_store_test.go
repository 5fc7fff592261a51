package redis

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/pulsecare-portal/internal/errors"
	"github.com/target/pulsecare-portal/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

func TestKVStore_SetAndGet(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "pulsecare_selected_role", "doctor"))

	got, err := store.Get(ctx, "pulsecare_selected_role")
	require.NoError(t, err)
	assert.Equal(t, "doctor", got)

	// The prefix is applied on the wire.
	raw, err := client.Get(ctx, "pulsecare:pulsecare_selected_role").Result()
	require.NoError(t, err)
	assert.Equal(t, "doctor", raw)
}

func TestKVStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, apperrors.IsNotFound(err))

	_, err = store.Get(context.Background(), "")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestKVStore_Overwrite(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStoreWithPrefix(client, "test:")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "first"))
	require.NoError(t, store.Set(ctx, "token", "second"))

	got, err := store.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestKVStore_Delete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewKVStore(client)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", "abc"))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting twice and deleting the empty key are both no-ops.
	assert.NoError(t, store.Delete(ctx, "token"))
	assert.NoError(t, store.Delete(ctx, ""))
}

func TestKVStore_SetEmptyKey(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	assert.Error(t, NewKVStore(client).Set(context.Background(), "", "v"))
}
