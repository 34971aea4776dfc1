package middlewares

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	sharedidempotency "github.com/joshuarp/taskguard-api/internal/shared/idempotency"
)

const (
	IdempotencyKeyHeader      = "X-Idempotency-Key"
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
)

type RequestIdempotency interface {
	ShouldApplyRequest(method, path string) bool
	ExtractKey(header func(name string) string) string
	CheckRequest(ctx context.Context, key, userID, method, path, contentHash string) (sharedidempotency.CheckResult, error)
	CacheRequestResponse(ctx context.Context, key, userID, method, path, contentHash string, response sharedidempotency.StoredResponse) string
}

// NewHTTPIdempotencyMiddleware replays cached 2xx responses for repeated
// idempotency keys and rejects keys reused with a different request. Keys are
// scoped to the authenticated caller. Cache outages never block the request.
func NewHTTPIdempotencyMiddleware(service RequestIdempotency, logger *slog.Logger) fiber.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c fiber.Ctx) error {
		if service == nil || !service.ShouldApplyRequest(c.Method(), c.Path()) {
			return c.Next()
		}

		key := service.ExtractKey(func(name string) string { return c.Get(name) })
		if key == "" {
			return c.Next()
		}

		method, path, userID := c.Method(), c.Path(), UserIDFromContext(c)
		contentHash := sharedidempotency.RequestHash(method, path, userID, c.BodyRaw(), c.GetReqHeaders())

		result, err := service.CheckRequest(c.Context(), key, userID, method, path, contentHash)
		if err != nil {
			var conflict *sharedidempotency.ConflictError
			if errors.As(err, &conflict) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": conflict.Error(),
					"code":  "IDEMPOTENCY_CONFLICT",
				})
			}
			logger.Warn("idempotency check failed, continuing", "idempotency_key", key, "error", err)
			return c.Next()
		}

		if result.Duplicate {
			cached := result.Response()
			if cached.ContentType != "" {
				c.Set(fiber.HeaderContentType, cached.ContentType)
			}
			if cached.StatusCode <= 0 {
				cached.StatusCode = fiber.StatusOK
			}
			c.Set(IdempotencyReplayedHeader, "true")
			c.Set(IdempotencyKeyHeader, key)
			return c.Status(cached.StatusCode).Send(cached.Body)
		}

		if err := c.Next(); err != nil {
			return err
		}
		c.Set(IdempotencyReplayedHeader, "false")
		c.Set(IdempotencyKeyHeader, key)

		status := c.Response().StatusCode()
		if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
			return nil
		}

		service.CacheRequestResponse(c.Context(), key, userID, method, path, contentHash, sharedidempotency.StoredResponse{
			StatusCode:  status,
			Body:        append([]byte(nil), c.Response().Body()...),
			ContentType: string(c.Response().Header.ContentType()),
		})
		return nil
	}
}
