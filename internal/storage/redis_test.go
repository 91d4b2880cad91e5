package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisStore on it
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := setupTestRedis(t)
	exerciseStore(t, store)
}

func TestRedisStore_KeyFormatAndNoTTL(t *testing.T) {
	store, mr := setupTestRedis(t)

	err := store.Set(context.Background(), "refreshToken", []byte("r-1"))
	require.NoError(t, err)

	stored, err := mr.Get("storefront:refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "r-1", stored)
	assert.Zero(t, mr.TTL("storefront:refreshToken"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Get(context.Background(), "authToken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := ConnectRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "k", []byte("v")))
	assert.True(t, mr.Exists("storefront:k"))
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "http://not-redis")
	assert.ErrorContains(t, err, "invalid redis url")
}
