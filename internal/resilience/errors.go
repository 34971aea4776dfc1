package resilience

import (
	"errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	CodeCircuitOpen      ErrorCode = "TASK_CIRCUIT_OPEN"
	CodeQuarantined      ErrorCode = "TASK_QUARANTINED"
	CodeRateLimited      ErrorCode = "TASK_RATE_LIMITED"
	CodeExecutionFailed  ErrorCode = "TASK_EXECUTION_ERROR"
	CodeExecutionTimeout ErrorCode = "TASK_EXECUTION_TIMEOUT"
)

var (
	ErrAdmissionDenied  = errors.New("resilience: task admission denied")
	ErrExecutionFailed  = errors.New("resilience: task execution failed")
	ErrExecutionTimeout = errors.New("resilience: task execution timed out")
)

// AdmissionDeniedError is returned before a task body runs.
type AdmissionDeniedError struct {
	Code       ErrorCode
	TaskName   string
	Reason     string
	RetryAfter time.Duration
	Breaker    BreakerSnapshot
}

func (e *AdmissionDeniedError) Error() string {
	return fmt.Sprintf("resilience: task %s not admitted (%s): %s", e.TaskName, e.Code, e.Reason)
}

func (e *AdmissionDeniedError) Is(target error) bool {
	return target == ErrAdmissionDenied
}

// ExecutionFailedError wraps a task body failure with the retry decision
// taken for it.
type ExecutionFailedError struct {
	Code             ErrorCode
	TaskName         string
	TaskID           string
	ErrorType        string
	Category         Category
	RetryCount       int
	MaxRetries       int
	RetriesRemaining int
	RetryDelay       time.Duration
	Quarantined      bool
	QuarantineReason string
	Strategy         RetryStrategy
	Breaker          BreakerSnapshot
	Err              error
}

func (e *ExecutionFailedError) Error() string {
	return fmt.Sprintf("resilience: task %s failed (%s, attempt %d/%d): %v", e.TaskName, e.ErrorType, e.RetryCount+1, e.MaxRetries+1, e.Err)
}

func (e *ExecutionFailedError) Unwrap() error {
	return e.Err
}

func (e *ExecutionFailedError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// Retryable reports whether a retry was scheduled for this failure.
func (e *ExecutionFailedError) Retryable() bool {
	return e.Strategy == StrategyAdaptiveBackoff && e.RetryDelay > 0
}
