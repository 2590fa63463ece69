package security

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter backed by Redis. The recommendation
// endpoint re-evaluates every ticket of every event, so it must not be
// hammerable.
type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Allow reports whether the caller identified by key may proceed. Fails
// open on Redis errors so a cache outage does not take the endpoint down.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	counterKey := fmt.Sprintf("ratelimit:%s", key)

	count, err := r.redis.Incr(ctx, counterKey).Result()
	if err != nil {
		return true, err
	}

	if count == 1 {
		r.redis.Expire(ctx, counterKey, window)
	}

	return count <= int64(limit), nil
}
