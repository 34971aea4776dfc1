package vo

import "errors"

var (
	ErrInvalidTaskName   = errors.New("invalid task name")
	ErrInvalidMaxRetries = errors.New("invalid max retries")
	ErrInvalidTimeout    = errors.New("invalid timeout")
	ErrTaskNotFound      = errors.New("task not found")
)
