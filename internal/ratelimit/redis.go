package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window counter shared by every instance using the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a Redis backed limiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	limit, window = normalize(limit, window)
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

// Allow increments the counter for key. On Redis errors the request is
// allowed and the error returned so callers can log it.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, fmt.Errorf("redis error: %w", err)
	}

	remainingTTL := ttl.Val()
	if remainingTTL < 0 {
		// 新窗口，设置过期时间
		if err := l.client.PExpire(ctx, redisKey, l.window).Err(); err != nil {
			return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}, fmt.Errorf("redis error: %w", err)
		}
		remainingTTL = l.window
	}

	count := int(incr.Val())
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	decision := Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
	}
	if !decision.Allowed {
		decision.RetryAfter = remainingTTL
	}
	return decision, nil
}
