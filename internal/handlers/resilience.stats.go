package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/middlewares"
	"github.com/joshuarp/taskguard-api/internal/resilience"
)

type ResilienceStatsService interface {
	Stats(ctx context.Context) resilience.Stats
	TaskStats(ctx context.Context, taskName string) (resilience.TaskStats, error)
}

type ResilienceStatsHandler struct {
	service ResilienceStatsService
	logger  *slog.Logger
}

func NewResilienceStatsHandler(service ResilienceStatsService, logger *slog.Logger) *ResilienceStatsHandler {
	return &ResilienceStatsHandler{service: service, logger: logger}
}

func (h *ResilienceStatsHandler) Register(router fiber.Router) {
	read := middlewares.RequireScope(ScopeResilienceRead)
	router.Get("/resilience/stats", read, h.HandleStats)
	router.Get("/resilience/tasks/:name", read, h.HandleTask)
}

func (h *ResilienceStatsHandler) HandleStats(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Stats(c.Context()))
}

func (h *ResilienceStatsHandler) HandleTask(c fiber.Ctx) error {
	taskName := c.Params("name")
	stats, err := h.service.TaskStats(c.Context(), taskName)
	if err != nil {
		if errors.Is(err, vo.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		}
		h.logger.Error("failed to read task stats", "task_name", taskName, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}
