package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/practicewell/practicewell/internal/platform/auth"
)

// Limiter counts requests per identifier inside a fixed window and reports
// whether the caller is over its budget.
type Limiter interface {
	Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error)
}

// RedisLimiter counts requests in Redis so the limit holds across server
// replicas.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	windowStart := time.Now().Truncate(window).Unix()
	key := fmt.Sprintf("ratelimit:%s:%d", identifier, windowStart)

	pipe := l.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= int64(limit), nil
}

// MemoryLimiter is the single-process fallback used when REDIS_URL is unset.
// Each identifier gets its own fixed window, matching the Redis limiter's
// semantics.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*memoryBucket
}

type memoryBucket struct {
	count int
	start time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{buckets: make(map[string]*memoryBucket)}
}

func (l *MemoryLimiter) Allow(_ context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[identifier]
	if b == nil || time.Since(b.start) > window {
		b = &memoryBucket{start: time.Now()}
		l.buckets[identifier] = b
	}

	b.count++
	return b.count <= limit, nil
}

// RateLimit enforces a per-user request budget per minute. Unidentified
// callers share a per-IP bucket. If the limiter itself fails (e.g. Redis is
// down) the request is allowed through; throttling is not worth an outage.
func RateLimit(limiter Limiter, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			id := auth.UserIDFromContext(ctx)
			if id == "" {
				id = "ip:" + c.RealIP()
			}

			ok, err := limiter.Allow(ctx, id, perMinute, time.Minute)
			if err != nil {
				return next(c)
			}
			if !ok {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
			}
			return next(c)
		}
	}
}
