package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/middlewares"
)

type TaskSubmitService interface {
	Submit(ctx context.Context, submittedBy, chainID string, request vo.TaskSubmissionRequest) (vo.TaskSubmission, error)
}

type TaskSubmitHandler struct {
	service TaskSubmitService
	logger  *slog.Logger
}

func NewTaskSubmitHandler(service TaskSubmitService, logger *slog.Logger) *TaskSubmitHandler {
	return &TaskSubmitHandler{service: service, logger: logger}
}

func (h *TaskSubmitHandler) Register(router fiber.Router) {
	router.Post("/tasks", middlewares.RequireScope(ScopeTasksWrite), h.Handle)
}

func (h *TaskSubmitHandler) Handle(c fiber.Ctx) error {
	userID := middlewares.UserIDFromContext(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "missing authenticated user",
		})
	}

	var requestBody vo.TaskSubmissionRequest
	if err := c.Bind().JSON(&requestBody); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	chainID := middlewares.ChainIDFromContext(c)
	result, err := h.service.Submit(c.Context(), userID, chainID, requestBody)
	if err != nil {
		switch {
		case errors.Is(err, vo.ErrInvalidTaskName):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "task_name must be 1-128 characters of letters, digits, '_', '.', ':' or '-'"})
		case errors.Is(err, vo.ErrInvalidMaxRetries):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "max_retries must be between 0 and 25"})
		case errors.Is(err, vo.ErrInvalidTimeout):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "timeout_seconds must be between 1 and 3600"})
		default:
			h.logger.Error("failed to submit task", "user_id", userID, "task_name", requestBody.TaskName, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(result)
}
