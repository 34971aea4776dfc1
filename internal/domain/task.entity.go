package domain

import (
	"strings"
	"time"
)

// TaskIdempotencyKeyField is the kwargs entry that carries a task's
// idempotency key when the envelope field is empty.
const TaskIdempotencyKeyField = "idempotency_key"

// Task is the envelope carried through the queue and handed to the executor.
type Task struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Args           []any          `json:"args,omitempty"`
	Kwargs         map[string]any `json:"kwargs,omitempty"`
	RetryCount     int            `json:"retry_count"`
	MaxRetries     int            `json:"max_retries"`
	Timeout        time.Duration  `json:"timeout,omitempty"`
	IdempotencyKey string         `json:"idempotency_key,omitempty"`
	EnqueuedAt     time.Time      `json:"enqueued_at"`
}

func (t Task) ResolvedIdempotencyKey() string {
	if key := strings.TrimSpace(t.IdempotencyKey); key != "" {
		return key
	}
	if value, ok := t.Kwargs[TaskIdempotencyKeyField].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// HashableKwargs returns kwargs without the idempotency key so that the key
// itself never changes a task's content hash.
func (t Task) HashableKwargs() map[string]any {
	if len(t.Kwargs) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(t.Kwargs))
	for key, value := range t.Kwargs {
		if key == TaskIdempotencyKeyField {
			continue
		}
		out[key] = value
	}
	return out
}
