package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/middlewares"
)

type ResilienceResetService interface {
	Reset(ctx context.Context, taskName, resetBy string) (vo.ResilienceReset, error)
}

type ResilienceResetHandler struct {
	service ResilienceResetService
	logger  *slog.Logger
}

func NewResilienceResetHandler(service ResilienceResetService, logger *slog.Logger) *ResilienceResetHandler {
	return &ResilienceResetHandler{service: service, logger: logger}
}

func (h *ResilienceResetHandler) Register(router fiber.Router) {
	router.Post("/resilience/tasks/:name/reset", middlewares.RequireScope(ScopeResilienceAdmin), h.Handle)
}

func (h *ResilienceResetHandler) Handle(c fiber.Ctx) error {
	userID := middlewares.UserIDFromContext(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing authenticated user",
		})
	}

	taskName := c.Params("name")
	result, err := h.service.Reset(c.Context(), taskName, userID)
	if err != nil {
		switch {
		case errors.Is(err, vo.ErrInvalidTaskName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task name is required"})
		case errors.Is(err, vo.ErrTaskNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		default:
			h.logger.Error("failed to reset task resilience state", "task_name", taskName, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	h.logger.Info("task resilience state reset", "task_name", result.TaskName, "reset_by", userID)
	return c.Status(fiber.StatusOK).JSON(result)
}
