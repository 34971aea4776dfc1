package services

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/joshuarp/taskguard-api/internal/domain"
	"github.com/joshuarp/taskguard-api/internal/domain/vo"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

var taskNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:\-]{0,127}$`)

const (
	maxTaskRetries = 25
	maxTaskTimeout = time.Hour
)

type TaskPublisher interface {
	Enqueue(ctx context.Context, task domain.Task) error
}

// KeyNormalizer trims and truncates a client key. ok is false when the key
// is unusable and should be dropped.
type KeyNormalizer interface {
	NormalizeKey(raw string) (key string, ok bool)
}

type TaskDefaults struct {
	MaxRetries int
	Timeout    time.Duration
}

type TaskSubmitService struct {
	publisher TaskPublisher
	ids       uid.UIDGenerator
	keys      KeyNormalizer
	defaults  TaskDefaults
	now       func() time.Time
}

func NewTaskSubmitService(publisher TaskPublisher, ids uid.UIDGenerator, keys KeyNormalizer, defaults TaskDefaults) *TaskSubmitService {
	if defaults.MaxRetries < 0 {
		defaults.MaxRetries = 3
	}
	if defaults.Timeout <= 0 {
		defaults.Timeout = 300 * time.Second
	}

	return &TaskSubmitService{
		publisher: publisher,
		ids:       ids,
		keys:      keys,
		defaults:  defaults,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskSubmitService) Submit(ctx context.Context, submittedBy, chainID string, request vo.TaskSubmissionRequest) (vo.TaskSubmission, error) {
	name := strings.TrimSpace(request.TaskName)
	if !taskNamePattern.MatchString(name) {
		return vo.TaskSubmission{}, vo.ErrInvalidTaskName
	}

	maxRetries := s.defaults.MaxRetries
	if request.MaxRetries != nil {
		maxRetries = *request.MaxRetries
	}
	if maxRetries < 0 || maxRetries > maxTaskRetries {
		return vo.TaskSubmission{}, vo.ErrInvalidMaxRetries
	}

	timeout := s.defaults.Timeout
	if request.TimeoutSeconds != 0 {
		timeout = time.Duration(request.TimeoutSeconds) * time.Second
	}
	if timeout <= 0 || timeout > maxTaskTimeout {
		return vo.TaskSubmission{}, vo.ErrInvalidTimeout
	}

	kwargs := maps.Clone(request.Kwargs)
	idempotencyKey := s.normalizeKey(request.IdempotencyKey)
	if raw, ok := kwargs[domain.TaskIdempotencyKeyField].(string); ok {
		if key := s.normalizeKey(raw); key != "" {
			kwargs[domain.TaskIdempotencyKeyField] = key
		} else {
			delete(kwargs, domain.TaskIdempotencyKeyField)
		}
	}

	id, err := s.ids.Generate(ctx)
	if err != nil {
		return vo.TaskSubmission{}, fmt.Errorf("services: failed to generate task id: %w", err)
	}

	task := domain.Task{
		ID:             id,
		Name:           name,
		Args:           request.Args,
		Kwargs:         kwargs,
		MaxRetries:     maxRetries,
		Timeout:        timeout,
		IdempotencyKey: idempotencyKey,
		EnqueuedAt:     s.now(),
	}
	if err := s.publisher.Enqueue(ctx, task); err != nil {
		return vo.TaskSubmission{}, fmt.Errorf("services: failed to enqueue task %s: %w", name, err)
	}

	return vo.TaskSubmission{
		TaskID:         id,
		TaskName:       name,
		Status:         vo.TaskStatusQueued,
		MaxRetries:     maxRetries,
		TimeoutSeconds: int(timeout / time.Second),
		IdempotencyKey: task.ResolvedIdempotencyKey(),
		SubmittedBy:    submittedBy,
		ChainID:        chainID,
		EnqueuedAt:     task.EnqueuedAt,
	}, nil
}

// normalizeKey returns "" for keys that fail validation so the task runs
// without idempotency instead of being rejected.
func (s *TaskSubmitService) normalizeKey(raw string) string {
	if strings.TrimSpace(raw) == "" || s.keys == nil {
		return ""
	}
	key, ok := s.keys.NormalizeKey(raw)
	if !ok {
		return ""
	}
	return key
}
