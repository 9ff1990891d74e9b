package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func exerciseWindow(t *testing.T, l Allower, advance func(time.Duration)) {
	t.Helper()
	ctx := context.Background()
	window := 2 * time.Second
	limit := 2

	for i := 0; i < limit; i++ {
		allowed, remaining, _, err := l.Allow(ctx, "key", window, limit)
		require.NoError(t, err)
		require.True(t, allowed, "request %d", i)
		require.Equal(t, limit-(i+1), remaining)
	}

	allowed, remaining, _, err := l.Allow(ctx, "key", window, limit)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	allowed, _, _, err = l.Allow(ctx, "other", window, limit)
	require.NoError(t, err)
	require.True(t, allowed)

	if advance != nil {
		advance(window)
		allowed, _, _, err = l.Allow(ctx, "key", window, limit)
		require.NoError(t, err)
		require.True(t, allowed)
	}
}

func TestSlidingRedisWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	exerciseWindow(t, SlidingRedis{Client: client, Prefix: "test:"}, mr.FastForward)
}

func TestMemoryWindow(t *testing.T) {
	exerciseWindow(t, NewMemory(), nil)
}

func TestDisabledLimitsAlwaysAllow(t *testing.T) {
	for _, l := range []Allower{SlidingRedis{}, NewMemory()} {
		allowed, _, _, err := l.Allow(context.Background(), "k", 0, 0)
		require.NoError(t, err)
		require.True(t, allowed)
	}
}
