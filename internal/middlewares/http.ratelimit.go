package middlewares

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/joshuarp/taskguard-api/internal/shared/ratelimit"
)

type RateLimitConfig struct {
	Limiter   ratelimit.Limiter
	KeyPrefix string
	Logger    *slog.Logger
}

// NewHTTPRateLimitMiddleware throttles per authenticated subject, falling
// back to client IP. Limiter errors let the request through.
func NewHTTPRateLimitMiddleware(cfg RateLimitConfig) fiber.Handler {
	if cfg.Limiter == nil {
		return func(c fiber.Ctx) error {
			return c.Next()
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "http"
	}

	return func(c fiber.Ctx) error {
		key := rateLimitKey(c, cfg.KeyPrefix)

		result, err := cfg.Limiter.Allow(c.Context(), key)
		if err != nil {
			cfg.Logger.Warn("rate limit check failed, allowing request", "key", key, "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := max(int(result.RetryAfter.Seconds()), 1)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			cfg.Logger.Warn("rate limit exceeded", "key", key, "limit", result.Limit)

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}

func rateLimitKey(c fiber.Ctx, prefix string) string {
	if userID := UserIDFromContext(c); userID != "" {
		return prefix + ":user:" + userID
	}
	return prefix + ":ip:" + c.IP()
}
