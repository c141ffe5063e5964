package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// FixedWindowLimiter counts hits per key in fixed windows.
// Key format: ratelimit:<key>:<window_start_unix>
type FixedWindowLimiter struct {
	client *redis.Client
	now    func() time.Time
}

// NewFixedWindowLimiter creates a FixedWindowLimiter wrapping the given Redis client.
func NewFixedWindowLimiter(client *redis.Client) *FixedWindowLimiter {
	return &FixedWindowLimiter{client: client, now: time.Now}
}

// Allow records a hit for key and reports whether it fits within limit hits
// per window. The counter expires together with its window.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := l.now()
	start := now.Truncate(window)
	reset := start.Add(window)
	redisKey := l.key(key, start)

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, reset.Sub(now)+time.Second)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit: %w", err)
	}

	count := int(incr.Val())
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   reset,
	}, nil
}

func (l *FixedWindowLimiter) key(key string, start time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", key, start.Unix())
}
