package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	util "github.com/spec-kit/helpdesk-service/pkg/util"
)

// RateLimiter applies a fixed window limit per client using Redis INCR with
// a window expiry. Redis being unreachable fails open so a cache outage does
// not take the API down with it.
type RateLimiter struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRateLimiter constructs the limiter. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{client: client, logger: logger}
}

// Limit returns a handler enforcing max requests per window under the
// given key prefix. The client is identified by user ID when authenticated,
// falling back to the remote IP.
func (rl *RateLimiter) Limit(prefix string, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rl == nil || rl.client == nil || max <= 0 {
			return c.Next()
		}

		ident := c.IP()
		if user, ok := auth.UserFromContext(c); ok {
			ident = user.ID
		}
		key := fmt.Sprintf("ratelimit:%s:%s", prefix, ident)

		count, err := rl.client.Incr(c.Context(), key).Result()
		if err != nil {
			rl.logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}
		if count == 1 {
			if err := rl.client.Expire(c.Context(), key, window).Err(); err != nil {
				rl.logger.Warn("rate limiter expire failed", zap.Error(err))
			}
		}
		if count > int64(max) {
			return util.NewRateLimited("too many requests, slow down")
		}
		return c.Next()
	}
}
