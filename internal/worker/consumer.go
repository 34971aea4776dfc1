// Package worker consumes queued tasks and runs them through the executor.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/joshuarp/taskguard-api/internal/domain"
	"github.com/joshuarp/taskguard-api/internal/executor"
	"github.com/joshuarp/taskguard-api/internal/resilience"
	"github.com/joshuarp/taskguard-api/internal/shared/queue"
)

// TaskHandler binds a task name to its body.
type TaskHandler struct {
	Name string
	Run  executor.Func
}

type Runner interface {
	Execute(ctx context.Context, task domain.Task, fn executor.Func) (executor.Result, error)
}

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	PromoteBatch int64
}

type Consumer struct {
	queue    queue.Queue
	runner   Runner
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
	handlers map[string]executor.Func

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewConsumer(q queue.Queue, runner Runner, logger *slog.Logger, cfg Config, handlers ...TaskHandler) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.PromoteBatch <= 0 {
		cfg.PromoteBatch = 100
	}

	c := &Consumer{
		queue:    q,
		runner:   runner,
		logger:   logger,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		handlers: make(map[string]executor.Func, len(handlers)),
	}
	for _, h := range handlers {
		c.Register(h.Name, h.Run)
	}
	return c
}

// Register adds or replaces the body for a task name. It must be called
// before Start.
func (c *Consumer) Register(name string, fn executor.Func) {
	if name == "" || fn == nil {
		return
	}
	c.handlers[name] = fn
}

func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return errors.New("worker: consumer already started")
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.cancel = cancel

	for i := 0; i < c.cfg.Concurrency; i++ {
		c.wg.Add(1)
		go c.loop(runCtx, i)
	}

	c.logger.Info("worker consumer started",
		"concurrency", c.cfg.Concurrency,
		"poll_interval", c.cfg.PollInterval.String(),
		"handlers", len(c.handlers),
	)
	return nil
}

// Stop cancels the loops and waits for in-flight tasks or ctx, whichever
// comes first.
func (c *Consumer) Stop(ctx context.Context) error {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("worker consumer stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker: stop interrupted: %w", ctx.Err())
	}
}

func (c *Consumer) loop(ctx context.Context, worker int) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		processed, err := c.ProcessNext(ctx)
		if err != nil && ctx.Err() == nil {
			c.logger.Error("worker iteration failed", "worker", worker, "error", err)
		}
		if processed && err == nil {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// ProcessNext promotes due retries, then takes at most one ready task and
// settles it. It reports whether a task was taken.
func (c *Consumer) ProcessNext(ctx context.Context) (bool, error) {
	if _, err := c.queue.PromoteDue(ctx, c.now(), c.cfg.PromoteBatch); err != nil {
		return false, err
	}

	task, ok, err := c.queue.Dequeue(ctx)
	if err != nil || !ok {
		return false, err
	}

	return true, c.handle(ctx, task)
}

func (c *Consumer) handle(ctx context.Context, task domain.Task) error {
	fn, ok := c.handlers[task.Name]
	if !ok {
		c.logger.Error("no handler registered for task", "task_name", task.Name, "task_id", task.ID)
		return c.queue.DeadLetter(ctx, task, fmt.Sprintf("no handler registered for task %s", task.Name))
	}

	result, err := c.runner.Execute(ctx, task, fn)
	if err == nil {
		c.logger.Info("task completed",
			"task_name", task.Name,
			"task_id", task.ID,
			"replayed", result.Replayed,
			"duration_ms", result.Duration.Milliseconds(),
		)
		return c.queue.Ack(ctx, task.ID)
	}

	var (
		denied *resilience.AdmissionDeniedError
		failed *resilience.ExecutionFailedError
	)
	switch {
	case errors.As(err, &denied):
		delay := denied.RetryAfter
		if delay <= 0 {
			delay = c.cfg.PollInterval
		}
		c.logger.Info("task deferred",
			"task_name", task.Name,
			"task_id", task.ID,
			"error_code", denied.Code,
			"retry_after_seconds", delay.Seconds(),
		)
		return c.queue.Schedule(ctx, task, c.now().Add(delay))
	case errors.As(err, &failed) && failed.Retryable():
		task.RetryCount++
		return c.queue.Schedule(ctx, task, c.now().Add(failed.RetryDelay))
	case errors.As(err, &failed):
		return c.queue.DeadLetter(ctx, task, fmt.Sprintf("%s: %v", failed.Strategy, failed.Err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// Shutdown mid-task: put it back untouched.
		if requeueErr := c.queue.Enqueue(context.WithoutCancel(ctx), task); requeueErr != nil {
			return fmt.Errorf("worker: failed to requeue interrupted task %s: %w", task.ID, requeueErr)
		}
		return nil
	default:
		return c.queue.DeadLetter(ctx, task, err.Error())
	}
}
