// Package resilience decides whether a task attempt may run and what happens
// after it fails: circuit breaking, quarantine, failure rate limiting, error
// pattern analysis and adaptive retry delays, all held per task name.
package resilience

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

func WithClassifier(classify Classifier) Option {
	return func(r *Registry) {
		if classify != nil {
			r.classify = classify
		}
	}
}

// WithJitter replaces the crypto jitter source. Passing nil disables jitter.
func WithJitter(jitter JitterSource) Option {
	return func(r *Registry) {
		r.jitter = jitter
	}
}

// Registry owns the per-task resilience state of one process.
type Registry struct {
	settings Settings
	logger   *slog.Logger
	now      func() time.Time
	classify Classifier
	jitter   JitterSource

	tasks sync.Map
}

type taskState struct {
	mu sync.Mutex

	breaker    *CircuitBreaker
	quarantine *QuarantineEntry
	history    *ErrorHistory
	window     *FailureWindow
	perf       PerformanceStats
}

type PerformanceStats struct {
	AvgDurationSeconds float64 `json:"avg_duration_seconds"`
	MaxDurationSeconds float64 `json:"max_duration_seconds"`
	TotalExecutions    int64   `json:"total_executions"`
}

func (p *PerformanceStats) observe(d time.Duration) {
	seconds := d.Seconds()
	p.TotalExecutions++
	p.AvgDurationSeconds += (seconds - p.AvgDurationSeconds) / float64(p.TotalExecutions)
	if seconds > p.MaxDurationSeconds {
		p.MaxDurationSeconds = seconds
	}
}

func (p PerformanceStats) avgDuration() time.Duration {
	return time.Duration(p.AvgDurationSeconds * float64(time.Second))
}

func NewRegistry(settings Settings, logger *slog.Logger, opts ...Option) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		settings: settings.Normalize(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		classify: DefaultClassifier,
		jitter:   CryptoJitter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Settings() Settings {
	return r.settings
}

func (r *Registry) state(taskName string) *taskState {
	if existing, ok := r.tasks.Load(taskName); ok {
		return existing.(*taskState)
	}

	fresh := &taskState{
		breaker: NewCircuitBreaker(r.settings.breakerConfig()),
		history: NewErrorHistory(),
		window:  NewFailureWindow(failureWindowSize, failureWindowSpan),
	}
	actual, _ := r.tasks.LoadOrStore(taskName, fresh)
	return actual.(*taskState)
}

// PreAdmit checks quarantine, then the circuit breaker, then the failure
// rate limit. A nil error admits the attempt.
func (r *Registry) PreAdmit(taskName string) error {
	st := r.state(taskName)
	now := r.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.quarantine != nil {
		if st.quarantine.Active(now) {
			return r.deny(taskName, st, now, CodeQuarantined, st.quarantine.Reason, st.quarantine.Until.Sub(now))
		}
		st.quarantine = nil
		r.logger.Info("task quarantine expired", "task_name", taskName, "event", "quarantine_expired")
	}

	previous := st.breaker.State()
	if !st.breaker.CanExecute(now) {
		return r.deny(taskName, st, now, CodeCircuitOpen, "circuit breaker is open", st.breaker.RetryAfter(now))
	}
	if previous == StateOpen && st.breaker.State() == StateHalfOpen {
		BreakerState.WithLabelValues(taskName).Set(float64(StateHalfOpen))
		r.logger.Info("circuit breaker half-open", "task_name", taskName, "event", "circuit_half_open")
	}

	limit := DynamicLimit(r.settings.BaseRateLimit, st.perf.TotalExecutions)
	if st.window.IsRateLimited(now, limit) {
		return r.deny(taskName, st, now, CodeRateLimited, "failure rate limit exceeded", st.window.RetryAfter(now))
	}

	return nil
}

func (r *Registry) deny(taskName string, st *taskState, now time.Time, code ErrorCode, reason string, retryAfter time.Duration) error {
	AdmissionsDenied.WithLabelValues(taskName, string(code)).Inc()

	snapshot := st.breaker.Snapshot(now)
	r.logger.Warn("task admission denied",
		"task_name", taskName,
		"event", "admission_denied",
		"code", code,
		"reason", reason,
		"retry_after_seconds", retryAfter.Seconds(),
		"circuit_breaker", snapshot,
	)

	return &AdmissionDeniedError{
		Code:       code,
		TaskName:   taskName,
		Reason:     reason,
		RetryAfter: retryAfter,
		Breaker:    snapshot,
	}
}

// Outcome describes one finished attempt. A nil Err means success.
type Outcome struct {
	Err        error
	Duration   time.Duration
	RetryCount int
	MaxRetries int
}

// FailureReport is the decision taken for a failed attempt.
type FailureReport struct {
	Classification   Classification
	Breaker          BreakerSnapshot
	Quarantined      bool
	QuarantineReason string
	RetryDelay       time.Duration
	RetriesRemaining int
	Strategy         RetryStrategy
	LogLevel         slog.Level
}

// PostComplete records the outcome of an attempt. It returns nil on success.
func (r *Registry) PostComplete(taskName string, outcome Outcome) *FailureReport {
	if outcome.Err == nil {
		r.RecordSuccess(taskName, outcome.Duration)
		return nil
	}
	report := r.RecordFailure(taskName, outcome)
	return &report
}

func (r *Registry) RecordSuccess(taskName string, duration time.Duration) {
	st := r.state(taskName)

	st.mu.Lock()
	defer st.mu.Unlock()

	previous := st.breaker.State()
	st.breaker.RecordSuccess()
	st.perf.observe(duration)

	TaskSuccesses.WithLabelValues(taskName).Inc()
	if previous != StateClosed && st.breaker.State() == StateClosed {
		BreakerState.WithLabelValues(taskName).Set(float64(StateClosed))
		r.logger.Info("circuit breaker closed", "task_name", taskName, "event", "circuit_closed")
	}
}

func (r *Registry) RecordFailure(taskName string, outcome Outcome) FailureReport {
	st := r.state(taskName)
	now := r.now()
	classification := r.classify(outcome.Err)

	st.mu.Lock()
	defer st.mu.Unlock()

	st.history.Record(ErrorHistoryEntry{
		Timestamp:    now,
		ErrorType:    classification.ErrorType,
		ErrorMessage: classification.Message,
		CircuitState: st.breaker.State(),
	})
	st.window.Record(now)

	previous := st.breaker.State()
	st.breaker.RecordFailure(now)
	if st.breaker.State() != previous {
		BreakerState.WithLabelValues(taskName).Set(float64(st.breaker.State()))
		r.logger.Warn("circuit breaker opened",
			"task_name", taskName,
			"event", "circuit_opened",
			"circuit_breaker", st.breaker.Snapshot(now),
		)
	}

	policy := r.settings.QuarantinePolicyFor(taskName)
	reason, quarantine := evaluateQuarantine(policy, classification, st.history, now)
	if quarantine {
		st.quarantine = &QuarantineEntry{Until: now.Add(policy.Duration), Reason: reason}
		Quarantines.WithLabelValues(taskName).Inc()
		r.logger.Warn("task quarantined",
			"task_name", taskName,
			"event", "task_quarantined",
			"quarantine_reason", reason,
			"quarantine_until", st.quarantine.Until,
		)
	}

	st.perf.observe(outcome.Duration)
	TaskFailures.WithLabelValues(taskName, classification.Category.String()).Inc()

	maxRetries := outcome.MaxRetries
	if maxRetries < 0 {
		maxRetries = r.settings.DefaultMaxRetries
	}
	remaining := max(maxRetries-outcome.RetryCount, 0)

	report := FailureReport{
		Classification:   classification,
		Breaker:          st.breaker.Snapshot(now),
		Quarantined:      quarantine,
		QuarantineReason: reason,
		RetriesRemaining: remaining,
		LogLevel:         failureLogLevel(classification, outcome.RetryCount, maxRetries),
	}

	switch {
	case quarantine:
		report.Strategy = StrategyQuarantined
	case remaining == 0:
		report.Strategy = StrategyExhausted
	default:
		report.Strategy = StrategyAdaptiveBackoff
		report.RetryDelay = ComputeDelay(r.settings.retryPolicy(), RetryInputs{
			RetryCount:   outcome.RetryCount,
			AvgDuration:  st.perf.avgDuration(),
			RecentErrors: st.history.CountSince(now, delayRecentWindow),
			State:        st.breaker.State(),
		}, r.jitter)
		RetryDelaySeconds.WithLabelValues(taskName).Observe(report.RetryDelay.Seconds())
	}

	return report
}

// failureLogLevel keeps early retries quiet and escalates as they run out.
func failureLogLevel(c Classification, retryCount, maxRetries int) slog.Level {
	switch {
	case c.Category == CategoryValidation, c.Category == CategoryNotFound:
		return slog.LevelWarn
	case retryCount < maxRetries/2:
		return slog.LevelInfo
	case retryCount < maxRetries:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

type TaskStats struct {
	TaskName       string           `json:"task_name"`
	CircuitBreaker BreakerSnapshot  `json:"circuit_breaker"`
	Quarantine     *QuarantineEntry `json:"quarantine,omitempty"`
	ErrorPatterns  map[string]int   `json:"error_patterns"`
	RecentErrors   int              `json:"recent_errors"`
	Performance    PerformanceStats `json:"performance"`
	RateWindowSize int              `json:"rate_window_size"`
	RateLimit      int              `json:"rate_limit"`
}

type Stats struct {
	GeneratedAt      time.Time   `json:"generated_at"`
	TotalTasks       int         `json:"total_tasks"`
	OpenCircuits     int         `json:"open_circuits"`
	QuarantinedTasks int         `json:"quarantined_tasks"`
	Tasks            []TaskStats `json:"tasks"`
}

func (r *Registry) Stats() Stats {
	now := r.now()
	stats := Stats{GeneratedAt: now, Tasks: []TaskStats{}}

	r.tasks.Range(func(key, value any) bool {
		taskStats := value.(*taskState).snapshot(key.(string), now, r.settings.BaseRateLimit)
		if taskStats.CircuitBreaker.State == StateOpen.String() {
			stats.OpenCircuits++
		}
		if taskStats.Quarantine != nil {
			stats.QuarantinedTasks++
		}
		stats.Tasks = append(stats.Tasks, taskStats)
		return true
	})

	sort.Slice(stats.Tasks, func(i, j int) bool {
		return stats.Tasks[i].TaskName < stats.Tasks[j].TaskName
	})
	stats.TotalTasks = len(stats.Tasks)

	return stats
}

// TaskStats returns the snapshot for one task. The task must have been seen.
func (r *Registry) TaskStats(taskName string) (TaskStats, bool) {
	value, ok := r.tasks.Load(taskName)
	if !ok {
		return TaskStats{}, false
	}
	return value.(*taskState).snapshot(taskName, r.now(), r.settings.BaseRateLimit), true
}

// Reset clears breaker, quarantine, history and failure window for a task.
// Performance stats are kept.
func (r *Registry) Reset(taskName string) bool {
	value, ok := r.tasks.Load(taskName)
	if !ok {
		return false
	}
	st := value.(*taskState)

	st.mu.Lock()
	st.breaker.reset()
	st.quarantine = nil
	st.history.Reset()
	st.window.Reset()
	st.mu.Unlock()

	BreakerState.WithLabelValues(taskName).Set(float64(StateClosed))
	r.logger.Info("task resilience state reset", "task_name", taskName, "event", "task_reset")
	return true
}

func (st *taskState) snapshot(taskName string, now time.Time, baseLimit int) TaskStats {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := TaskStats{
		TaskName:       taskName,
		CircuitBreaker: st.breaker.Snapshot(now),
		ErrorPatterns:  st.history.PatternSummary(),
		RecentErrors:   st.history.CountSince(now, recentStatsWindow),
		Performance:    st.perf,
		RateWindowSize: st.window.Len(),
		RateLimit:      DynamicLimit(baseLimit, st.perf.TotalExecutions),
	}
	if st.quarantine.Active(now) {
		entry := *st.quarantine
		out.Quarantine = &entry
	}
	return out
}
