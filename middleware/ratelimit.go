package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"classtrack_go/database"
)

// RateLimitMiddleware enforces a fixed-window per-IP limit backed by Redis.
// Without Redis the limiter degrades to a pass-through; the check-in path
// stays available either way.
func RateLimitMiddleware(limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rdb := database.GetRedisClient()
		if rdb == nil || limit <= 0 || window <= 0 {
			return c.Next()
		}

		ip := c.IP()
		if ip == "" {
			ip = "unknown"
		}
		key := fmt.Sprintf("ratelimit:%s:%s:%d", c.Path(), ip, time.Now().Unix()/int64(window.Seconds()))

		ctx := context.Background()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis trouble must not block check-ins.
			logrus.WithError(err).Warn("rate limiter unavailable, allowing request")
			return c.Next()
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
			})
		}
		return c.Next()
	}
}
