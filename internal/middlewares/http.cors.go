package middlewares

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
)

func NewHTTPCORSMiddleware(allowOrigins []string) fiber.Handler {
	if len(allowOrigins) == 0 {
		allowOrigins = []string{"*"}
	}

	return cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", IdempotencyKeyHeader},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		ExposeHeaders: []string{IdempotencyKeyHeader, IdempotencyReplayedHeader, "Retry-After", ChainIDHeader},
	})
}
