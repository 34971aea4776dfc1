package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/middlewares"
)

type IdempotencyCleanupService interface {
	Cleanup(ctx context.Context) (vo.IdempotencyCleanup, error)
}

type IdempotencyCleanupHandler struct {
	service IdempotencyCleanupService
	logger  *slog.Logger
}

func NewIdempotencyCleanupHandler(service IdempotencyCleanupService, logger *slog.Logger) *IdempotencyCleanupHandler {
	return &IdempotencyCleanupHandler{service: service, logger: logger}
}

func (h *IdempotencyCleanupHandler) Register(router fiber.Router) {
	router.Post("/idempotency/cleanup", middlewares.RequireScope(ScopeResilienceAdmin), h.Handle)
}

func (h *IdempotencyCleanupHandler) Handle(c fiber.Ctx) error {
	result, err := h.service.Cleanup(c.Context())
	if err != nil {
		h.logger.Error("idempotency cleanup failed", "deleted", result.Deleted, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "idempotency cleanup failed",
			"deleted": result.Deleted,
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
