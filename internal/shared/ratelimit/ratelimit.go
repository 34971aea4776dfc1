// Package ratelimit throttles callers of the task submission API. Counters
// live in Redis so every API replica shares them.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Algorithm string

const (
	// AlgorithmSlidingWindow counts requests in the trailing window.
	AlgorithmSlidingWindow Algorithm = "sliding_window"

	// AlgorithmFixedWindow counts requests per aligned window. It allows a
	// burst of up to twice the limit across a window boundary.
	AlgorithmFixedWindow Algorithm = "fixed_window"
)

func ParseAlgorithm(value string) Algorithm {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case string(AlgorithmFixedWindow):
		return AlgorithmFixedWindow
	default:
		return AlgorithmSlidingWindow
	}
}

type Config struct {
	Algorithm Algorithm
	Limit     int64
	Window    time.Duration
}

func (c Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("ratelimit: limit must be positive, got %d", c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("ratelimit: window must be positive, got %s", c.Window)
	}
	return nil
}

type Result struct {
	Allowed    bool
	Limit      int64
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether one more request for key fits the budget.
// Implementations must be safe for concurrent use.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
