package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimiterSlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := Limiter{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	const limit = 2

	for i := 0; i < limit; i++ {
		d, err := limiter.Allow(ctx, "owner-1", window, limit)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be allowed", i)
		require.Equal(t, limit-(i+1), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "owner-1", window, limit)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)

	mr.FastForward(window)

	d, err = limiter.Allow(ctx, "owner-1", window, limit)
	require.NoError(t, err)
	require.True(t, d.Allowed, "window should have slid past old events")
}

func TestLimiterDisabledWithoutClient(t *testing.T) {
	d, err := Limiter{}.Allow(context.Background(), "any", time.Second, 5)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 5, d.Remaining)
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := Limiter{Client: client, Prefix: "test:"}

	ctx := context.Background()
	d, err := limiter.Allow(ctx, "owner-1", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "owner-1", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Allow(ctx, "owner-2", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed, "a busy owner must not throttle another")
}
