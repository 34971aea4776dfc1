package vo

import "time"

type ResilienceReset struct {
	TaskName string    `json:"task_name"`
	ResetBy  string    `json:"reset_by"`
	ResetAt  time.Time `json:"reset_at"`
}

type IdempotencyCleanup struct {
	Deleted     int64     `json:"deleted"`
	CompletedAt time.Time `json:"completed_at"`
}
