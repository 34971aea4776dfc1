package resilience

import (
	"log/slog"
	"time"
)

type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type BreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	HalfOpenMaxCalls int
}

// CircuitBreaker is the per-task three-state breaker. It is not safe for
// concurrent use; the Registry serializes access per task name.
type CircuitBreaker struct {
	cfg             BreakerConfig
	state           CircuitState
	failureCount    int
	lastFailureTime time.Time
	halfOpenCalls   int
}

func NewCircuitBreaker(cfg BreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 60 * time.Second
	}
	if cfg.HalfOpenMaxCalls <= 0 {
		cfg.HalfOpenMaxCalls = 3
	}
	return &CircuitBreaker{cfg: cfg, state: StateClosed}
}

// CanExecute reports whether an attempt may run. An Open breaker whose
// recovery timeout has elapsed moves to HalfOpen here.
func (b *CircuitBreaker) CanExecute(now time.Time) bool {
	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if !b.lastFailureTime.IsZero() && now.Sub(b.lastFailureTime) >= b.cfg.RecoveryTimeout {
			b.state = StateHalfOpen
			b.halfOpenCalls = 0
			return true
		}
		return false
	default:
		return b.halfOpenCalls < b.cfg.HalfOpenMaxCalls
	}
}

func (b *CircuitBreaker) RecordSuccess() {
	switch b.state {
	case StateHalfOpen:
		b.halfOpenCalls++
		if b.halfOpenCalls >= b.cfg.HalfOpenMaxCalls {
			b.reset()
		}
	case StateClosed:
		if b.failureCount > 0 {
			b.failureCount--
		}
	}
}

func (b *CircuitBreaker) RecordFailure(now time.Time) {
	b.failureCount++
	b.lastFailureTime = now

	if b.state == StateHalfOpen || b.failureCount >= b.cfg.FailureThreshold {
		b.state = StateOpen
	}
}

func (b *CircuitBreaker) State() CircuitState {
	return b.state
}

// RetryAfter is how long an Open breaker keeps rejecting attempts.
func (b *CircuitBreaker) RetryAfter(now time.Time) time.Duration {
	if b.state != StateOpen {
		return 0
	}
	remaining := b.cfg.RecoveryTimeout - now.Sub(b.lastFailureTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot reads the breaker without applying the Open to HalfOpen transition.
func (b *CircuitBreaker) Snapshot(now time.Time) BreakerSnapshot {
	snapshot := BreakerSnapshot{
		State:            b.state.String(),
		FailureCount:     b.failureCount,
		FailureThreshold: b.cfg.FailureThreshold,
		HalfOpenCalls:    b.halfOpenCalls,
	}
	if !b.lastFailureTime.IsZero() {
		last := b.lastFailureTime
		snapshot.LastFailureTime = &last
	}

	switch b.state {
	case StateClosed:
		snapshot.CanExecute = true
	case StateOpen:
		snapshot.CanExecute = !b.lastFailureTime.IsZero() && now.Sub(b.lastFailureTime) >= b.cfg.RecoveryTimeout
	default:
		snapshot.CanExecute = b.halfOpenCalls < b.cfg.HalfOpenMaxCalls
	}

	return snapshot
}

func (b *CircuitBreaker) reset() {
	b.state = StateClosed
	b.failureCount = 0
	b.halfOpenCalls = 0
	b.lastFailureTime = time.Time{}
}

type BreakerSnapshot struct {
	State            string     `json:"state"`
	FailureCount     int        `json:"failure_count"`
	FailureThreshold int        `json:"failure_threshold"`
	HalfOpenCalls    int        `json:"half_open_calls"`
	LastFailureTime  *time.Time `json:"last_failure_time,omitempty"`
	CanExecute       bool       `json:"can_execute"`
}

func (s BreakerSnapshot) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("state", s.State),
		slog.Int("failure_count", s.FailureCount),
		slog.Int("failure_threshold", s.FailureThreshold),
		slog.Int("half_open_calls", s.HalfOpenCalls),
		slog.Bool("can_execute", s.CanExecute),
	}
	if s.LastFailureTime != nil {
		attrs = append(attrs, slog.Time("last_failure_time", *s.LastFailureTime))
	}
	return slog.GroupValue(attrs...)
}
