package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/joshuarp/taskguard-api/internal/domain"
	"github.com/joshuarp/taskguard-api/internal/executor"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
	"github.com/joshuarp/taskguard-api/internal/shared/uid"
)

const CleanupTaskName = "idempotency:cleanup"

type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// CleanupHandler is the body of the cleanup task.
func CleanupHandler(cleaner Cleaner) TaskHandler {
	return TaskHandler{
		Name: CleanupTaskName,
		Run: func(ctx context.Context, _ domain.Task) (any, error) {
			deleted, err := cleaner.CleanupExpired(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]int64{"deleted": deleted}, nil
		},
	}
}

// CleanupSpec returns a six-field cron spec firing at the top of every
// interval hours, counted from midnight.
func CleanupSpec(interval time.Duration) string {
	hours := int(interval / time.Hour)
	if hours < 1 {
		hours = 1
	}
	if hours > 24 {
		hours = 24
	}
	return fmt.Sprintf("0 0 */%d * * *", hours)
}

// CleanupScheduler enqueues the cleanup task on a cron schedule so that it
// runs through the same executor as every other task.
type CleanupScheduler struct {
	cron      *cron.Cron
	publisher queue.Publisher
	ids       uid.UIDGenerator
	logger    *slog.Logger
	spec      string
	timeout   time.Duration
}

func NewCleanupScheduler(publisher queue.Publisher, ids uid.UIDGenerator, logger *slog.Logger, interval time.Duration) *CleanupScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanupScheduler{
		cron:      cron.New(cron.WithSeconds()),
		publisher: publisher,
		ids:       ids,
		logger:    logger,
		spec:      CleanupSpec(interval),
		timeout:   30 * time.Second,
	}
}

func (s *CleanupScheduler) Spec() string {
	return s.spec
}

func (s *CleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.EnqueueCleanup(ctx); err != nil {
			s.logger.Error("failed to enqueue idempotency cleanup", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("worker: failed to register cleanup cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("idempotency cleanup scheduled", "cron", s.spec)
	return nil
}

func (s *CleanupScheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker: cleanup scheduler stop interrupted: %w", ctx.Err())
	}
}

func (s *CleanupScheduler) EnqueueCleanup(ctx context.Context) error {
	if s.publisher == nil || s.ids == nil {
		return errors.New("worker: cleanup scheduler is not initialized")
	}

	id, err := s.ids.Generate(ctx)
	if err != nil {
		return fmt.Errorf("worker: failed to generate cleanup task id: %w", err)
	}

	task := domain.Task{
		ID:         id,
		Name:       CleanupTaskName,
		MaxRetries: 1,
		Timeout:    executor.DefaultTimeout,
	}
	if err := s.publisher.Enqueue(ctx, task); err != nil {
		return fmt.Errorf("worker: failed to enqueue cleanup task: %w", err)
	}

	s.logger.Info("idempotency cleanup enqueued", "task_id", id)
	return nil
}
