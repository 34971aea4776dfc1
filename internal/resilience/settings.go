package resilience

import (
	"fmt"
	"time"
)

const (
	historyCapacity      = 200
	historyMessageLimit  = 500
	historyCompactEvery  = 50
	historyMaxAge        = 24 * time.Hour
	failureWindowSize    = 100
	failureWindowSpan    = time.Minute
	recentStatsWindow    = 60 * time.Minute
	delayRecentWindow    = 10 * time.Minute
	delayRecentThreshold = 5
	slowTaskThreshold    = 30 * time.Second
)

// QuarantinePolicy holds the thresholds used to decide whether a failing task
// is isolated, and for how long.
type QuarantinePolicy struct {
	Duration           time.Duration
	FrequencyWindow    time.Duration
	FrequencyThreshold int
	PatternMinErrors   int
	PatternRatio       float64
}

// Settings configures every per-task primitive held by the Registry.
type Settings struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	HalfOpenMaxCalls int

	BaseRateLimit int

	BaseRetryDelay    time.Duration
	MaxRetryDelay     time.Duration
	DefaultMaxRetries int

	Quarantine     QuarantinePolicy
	TaskQuarantine map[string]QuarantinePolicy
}

func DefaultQuarantinePolicy() QuarantinePolicy {
	return QuarantinePolicy{
		Duration:           30 * time.Minute,
		FrequencyWindow:    5 * time.Minute,
		FrequencyThreshold: 10,
		PatternMinErrors:   5,
		PatternRatio:       0.8,
	}
}

func DefaultSettings() Settings {
	return Settings{
		FailureThreshold:  5,
		RecoveryTimeout:   60 * time.Second,
		HalfOpenMaxCalls:  3,
		BaseRateLimit:     30,
		BaseRetryDelay:    60 * time.Second,
		MaxRetryDelay:     time.Hour,
		DefaultMaxRetries: 3,
		Quarantine:        DefaultQuarantinePolicy(),
	}
}

// Normalize fills zero values with defaults. Per-task quarantine overrides
// inherit unset fields from the global policy.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()

	if s.FailureThreshold <= 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.RecoveryTimeout <= 0 {
		s.RecoveryTimeout = def.RecoveryTimeout
	}
	if s.HalfOpenMaxCalls <= 0 {
		s.HalfOpenMaxCalls = def.HalfOpenMaxCalls
	}
	if s.BaseRateLimit <= 0 {
		s.BaseRateLimit = def.BaseRateLimit
	}
	if s.BaseRetryDelay <= 0 {
		s.BaseRetryDelay = def.BaseRetryDelay
	}
	if s.MaxRetryDelay <= 0 {
		s.MaxRetryDelay = def.MaxRetryDelay
	}
	if s.DefaultMaxRetries < 0 {
		s.DefaultMaxRetries = def.DefaultMaxRetries
	}

	s.Quarantine = s.Quarantine.merge(def.Quarantine)

	overrides := make(map[string]QuarantinePolicy, len(s.TaskQuarantine))
	for task, policy := range s.TaskQuarantine {
		overrides[task] = policy.merge(s.Quarantine)
	}
	s.TaskQuarantine = overrides

	return s
}

func (s Settings) Validate() error {
	// The doubled limit for established tasks must still fit in the failure window.
	if s.BaseRateLimit <= 0 || 2*s.BaseRateLimit > failureWindowSize {
		return fmt.Errorf("resilience: base rate limit must be in [1, %d], got %d", failureWindowSize/2, s.BaseRateLimit)
	}
	if s.MaxRetryDelay < s.BaseRetryDelay {
		return fmt.Errorf("resilience: max retry delay %s is below base retry delay %s", s.MaxRetryDelay, s.BaseRetryDelay)
	}
	if s.Quarantine.PatternRatio <= 0 || s.Quarantine.PatternRatio > 1 {
		return fmt.Errorf("resilience: quarantine pattern ratio must be in (0, 1], got %v", s.Quarantine.PatternRatio)
	}
	for task, policy := range s.TaskQuarantine {
		if policy.PatternRatio <= 0 || policy.PatternRatio > 1 {
			return fmt.Errorf("resilience: quarantine pattern ratio for %s must be in (0, 1], got %v", task, policy.PatternRatio)
		}
	}
	return nil
}

// QuarantinePolicyFor returns the override for taskName, or the global policy.
func (s Settings) QuarantinePolicyFor(taskName string) QuarantinePolicy {
	if policy, ok := s.TaskQuarantine[taskName]; ok {
		return policy
	}
	return s.Quarantine
}

func (s Settings) breakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: s.FailureThreshold,
		RecoveryTimeout:  s.RecoveryTimeout,
		HalfOpenMaxCalls: s.HalfOpenMaxCalls,
	}
}

func (s Settings) retryPolicy() RetryPolicy {
	return RetryPolicy{BaseDelay: s.BaseRetryDelay, MaxDelay: s.MaxRetryDelay}
}

func (p QuarantinePolicy) merge(fallback QuarantinePolicy) QuarantinePolicy {
	if p.Duration <= 0 {
		p.Duration = fallback.Duration
	}
	if p.FrequencyWindow <= 0 {
		p.FrequencyWindow = fallback.FrequencyWindow
	}
	if p.FrequencyThreshold <= 0 {
		p.FrequencyThreshold = fallback.FrequencyThreshold
	}
	if p.PatternMinErrors <= 0 {
		p.PatternMinErrors = fallback.PatternMinErrors
	}
	if p.PatternRatio <= 0 {
		p.PatternRatio = fallback.PatternRatio
	}
	return p
}
