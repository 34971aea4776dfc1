package worker

import (
	"context"

	"github.com/joshuarp/taskguard-api/internal/domain"
)

const EchoTaskName = "system:echo"

// EchoHandler returns the task arguments unchanged. It is used for smoke
// testing a deployment end to end.
func EchoHandler() TaskHandler {
	return TaskHandler{
		Name: EchoTaskName,
		Run: func(_ context.Context, task domain.Task) (any, error) {
			return map[string]any{"args": task.Args, "kwargs": task.HashableKwargs()}, nil
		},
	}
}
