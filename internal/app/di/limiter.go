package di

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"passvault/internal/app/config"
	pvredis "passvault/internal/platform/redis"
	"passvault/internal/shared/ratelimiter"
)

// NewLimiter creates the rate limiter for the unauthenticated auth routes.
// If Redis is configured and reachable, it returns a Redis-backed limiter
// shared by every replica. Otherwise, it falls back to process memory.
// The returned client is nil in the fallback case.
func NewLimiter(ctx context.Context, redisCfg config.RedisConfig, cfg config.RateLimitConfig) (ratelimiter.Limiter, *redis.Client) {
	if redisCfg.Addr != "" {
		rdb, err := pvredis.NewRedisClient(ctx, redisCfg.Addr, redisCfg.Password)
		if err == nil {
			return ratelimiter.NewRedisLimiter(rdb, "ratelimit", cfg.PerMinute, time.Minute), rdb
		}
		slog.Warn("Redis unavailable; using in-memory rate limiter", "error", err)
	}
	return ratelimiter.NewMemoryLimiter(cfg.PerMinute, time.Minute), nil
}
