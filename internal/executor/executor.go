// Package executor wraps every task attempt with admission control, task
// idempotency, a timeout and failure accounting.
package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshuarp/taskguard-api/internal/domain"
	"github.com/joshuarp/taskguard-api/internal/resilience"
	"github.com/joshuarp/taskguard-api/internal/shared/idempotency"
)

const DefaultTimeout = 300 * time.Second

// Func is a task body. Its return value is cached as JSON when the task
// carries an idempotency key.
type Func func(ctx context.Context, task domain.Task) (any, error)

// Guard is the admission and accounting side of the resilience registry.
type Guard interface {
	PreAdmit(taskName string) error
	PostComplete(taskName string, outcome resilience.Outcome) *resilience.FailureReport
}

type ResultCache interface {
	NormalizeKey(raw string) (string, bool)
	CheckTask(ctx context.Context, key, taskName, contentHash string) idempotency.CheckResult
	CacheTaskResult(ctx context.Context, key, taskName, contentHash string, result json.RawMessage) string
}

type Result struct {
	// Value is what the body returned, or the cached json.RawMessage on replay.
	Value    any
	Replayed bool
	Duration time.Duration
}

type Option func(*Executor)

func WithDefaultTimeout(timeout time.Duration) Option {
	return func(e *Executor) {
		if timeout > 0 {
			e.defaultTimeout = timeout
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

type Executor struct {
	guard          Guard
	cache          ResultCache
	logger         *slog.Logger
	defaultTimeout time.Duration
	now            func() time.Time
}

// New builds an Executor. cache may be nil to disable task idempotency.
func New(guard Guard, cache ResultCache, logger *slog.Logger, opts ...Option) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{
		guard:          guard,
		cache:          cache,
		logger:         logger,
		defaultTimeout: DefaultTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one attempt of task. It returns *resilience.AdmissionDeniedError
// when the task is not admitted and *resilience.ExecutionFailedError when the
// body fails or times out. Cancellation of ctx is returned as is and is not
// counted against the task.
func (e *Executor) Execute(ctx context.Context, task domain.Task, fn Func) (Result, error) {
	if fn == nil {
		return Result{}, fmt.Errorf("executor: no body for task %s", task.Name)
	}

	if err := e.guard.PreAdmit(task.Name); err != nil {
		return Result{}, err
	}

	key, contentHash := e.idempotencyKey(task)
	if key != "" {
		if cached := e.cache.CheckTask(ctx, key, task.Name, contentHash); cached.Duplicate {
			e.logger.Info("task result replayed from idempotency cache",
				"task_name", task.Name,
				"task_id", task.ID,
				"idempotency_key", key,
			)
			return Result{Value: json.RawMessage(cached.Response().Body), Replayed: true}, nil
		}
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	start := e.now()
	value, err := e.run(ctx, task, fn, timeout)
	duration := e.now().Sub(start)

	if err != nil && ctx.Err() != nil {
		return Result{}, fmt.Errorf("executor: task %s interrupted: %w", task.Name, ctx.Err())
	}

	report := e.guard.PostComplete(task.Name, resilience.Outcome{
		Err:        err,
		Duration:   duration,
		RetryCount: task.RetryCount,
		MaxRetries: task.MaxRetries,
	})
	if report == nil {
		e.logger.Debug("task executed",
			"task_name", task.Name,
			"task_id", task.ID,
			"duration_ms", duration.Milliseconds(),
		)
		if key != "" {
			e.cacheResult(ctx, task, key, contentHash, value)
		}
		return Result{Value: value, Duration: duration}, nil
	}

	return Result{Duration: duration}, e.failure(ctx, task, err, report)
}

func (e *Executor) idempotencyKey(task domain.Task) (string, string) {
	if e.cache == nil {
		return "", ""
	}
	raw := task.ResolvedIdempotencyKey()
	if raw == "" {
		return "", ""
	}
	key, ok := e.cache.NormalizeKey(raw)
	if !ok {
		e.logger.Warn("invalid idempotency key, running without cache",
			"task_name", task.Name,
			"task_id", task.ID,
		)
		return "", ""
	}

	contentHash, err := idempotency.TaskHash(task.Name, task.Args, task.HashableKwargs())
	if err != nil {
		e.logger.Warn("task arguments not hashable, skipping idempotency",
			"task_name", task.Name,
			"task_id", task.ID,
			"error", err,
		)
		return "", ""
	}
	return key, contentHash
}

func (e *Executor) run(ctx context.Context, task domain.Task, fn Func, timeout time.Duration) (any, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value any
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("executor: task %s panicked: %v", task.Name, r)}
			}
		}()
		value, err := fn(runCtx, task)
		done <- outcome{value: value, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil {
			return out.value, nil
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s: %w", resilience.ErrExecutionTimeout, timeout, out.err)
		}
		return nil, out.err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w after %s: %w", resilience.ErrExecutionTimeout, timeout, context.DeadlineExceeded)
	}
}

func (e *Executor) cacheResult(ctx context.Context, task domain.Task, key, contentHash string, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		e.logger.Warn("task result not serializable, not caching",
			"task_name", task.Name,
			"task_id", task.ID,
			"idempotency_key", key,
			"error", err,
		)
		return
	}
	e.cache.CacheTaskResult(ctx, key, task.Name, contentHash, payload)
}

func (e *Executor) failure(ctx context.Context, task domain.Task, cause error, report *resilience.FailureReport) error {
	code := resilience.CodeExecutionFailed
	if errors.Is(cause, resilience.ErrExecutionTimeout) {
		code = resilience.CodeExecutionTimeout
	}

	failed := &resilience.ExecutionFailedError{
		Code:             code,
		TaskName:         task.Name,
		TaskID:           task.ID,
		ErrorType:        report.Classification.ErrorType,
		Category:         report.Classification.Category,
		RetryCount:       task.RetryCount,
		MaxRetries:       task.MaxRetries,
		RetriesRemaining: report.RetriesRemaining,
		RetryDelay:       report.RetryDelay,
		Quarantined:      report.Quarantined,
		QuarantineReason: report.QuarantineReason,
		Strategy:         report.Strategy,
		Breaker:          report.Breaker,
		Err:              cause,
	}

	args, kwargs := resilience.SanitizeArgs(task.Args, task.Kwargs)
	attrs := []any{
		"task_name", task.Name,
		"task_id", task.ID,
		"event", "task_failed",
		"error_code", code,
		"error_type", failed.ErrorType,
		"error_category", failed.Category.String(),
		"error", cause,
		"retry_count", task.RetryCount,
		"max_retries", task.MaxRetries,
		"retries_remaining", failed.RetriesRemaining,
		"retry_strategy", failed.Strategy,
		"retry_delay_seconds", failed.RetryDelay.Seconds(),
		"circuit_breaker", failed.Breaker,
		"task_args", args,
		"task_kwargs", kwargs,
	}
	if failed.Quarantined {
		attrs = append(attrs, "quarantine_reason", failed.QuarantineReason)
	}
	e.logger.Log(ctx, report.LogLevel, "task execution failed", attrs...)

	return failed
}
