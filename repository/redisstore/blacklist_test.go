package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestKeyHidesToken(t *testing.T) {
	k := key("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	require.Contains(t, k, keyPrefix)
	require.NotContains(t, k, "payload")
	require.Equal(t, k, key("eyJhbGciOiJIUzI1NiJ9.payload.sig"))
}

// Runs against a live server when REDIS_ADDR is set.
func TestBlacklist(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	bl := NewBlacklist(client)
	token := uuid.NewString()

	ok, err := bl.Contains(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, bl.Add(ctx, token, time.Now().Add(time.Minute)))
	ok, err = bl.Contains(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	stale := uuid.NewString()
	require.NoError(t, bl.Add(ctx, stale, time.Now().Add(-time.Minute)))
	ok, err = bl.Contains(ctx, stale)
	require.NoError(t, err)
	require.False(t, ok)
}
