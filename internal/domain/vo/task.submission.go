package vo

import "time"

const TaskStatusQueued = "queued"

type TaskSubmissionRequest struct {
	TaskName       string         `json:"task_name"`
	Args           []any          `json:"args"`
	Kwargs         map[string]any `json:"kwargs"`
	MaxRetries     *int           `json:"max_retries"`
	TimeoutSeconds int            `json:"timeout_seconds"`
	IdempotencyKey string         `json:"idempotency_key"`
}

type TaskSubmission struct {
	TaskID         string    `json:"task_id"`
	TaskName       string    `json:"task_name"`
	Status         string    `json:"status"`
	MaxRetries     int       `json:"max_retries"`
	TimeoutSeconds int       `json:"timeout_seconds"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	SubmittedBy    string    `json:"submitted_by"`
	ChainID        string    `json:"chain_id"`
	EnqueuedAt     time.Time `json:"enqueued_at"`
}
