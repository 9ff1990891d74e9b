package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Allower decides whether one more event for key fits in limit events per window.
type Allower interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (allowed bool, remaining int, reset time.Time, err error)
}

// SlidingRedis counts events in a sorted set per key, scored by arrival time,
// so every API replica sees the same window.
type SlidingRedis struct {
	Client *redis.Client
	Prefix string
}

var _ Allower = SlidingRedis{}

func (l SlidingRedis) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	now := time.Now()
	reset := now.Add(window)
	if l.Client == nil || limit <= 0 || window <= 0 {
		return true, limit, reset, nil
	}

	zkey := l.Prefix + key
	oldest := "(" + strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, zkey, "-inf", oldest)
		p.ZAdd(ctx, zkey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		count = p.ZCard(ctx, zkey)
		p.PExpire(ctx, zkey, window)
		return nil
	})
	if err != nil {
		return false, 0, reset, fmt.Errorf("sliding window %s: %w", key, err)
	}

	seen := int(count.Val())
	left := limit - seen
	if left < 0 {
		left = 0
	}
	return seen <= limit, left, reset, nil
}
