package resilience

import (
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

type RetryPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// RetryStrategy labels what happens after a failed attempt.
type RetryStrategy string

const (
	StrategyAdaptiveBackoff RetryStrategy = "adaptive_backoff"
	StrategyExhausted       RetryStrategy = "exhausted"
	StrategyQuarantined     RetryStrategy = "quarantined"
)

// JitterSource returns a uniformly distributed value in [0, n).
type JitterSource func(n int64) int64

func CryptoJitter(n int64) int64 {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return n / 2
	}
	return v.Int64()
}

type RetryInputs struct {
	RetryCount   int
	AvgDuration  time.Duration
	RecentErrors int
	State        CircuitState
}

// ComputeDelay returns the wait before the next attempt in whole seconds.
// A nil jitter source disables jitter.
func ComputeDelay(policy RetryPolicy, in RetryInputs, jitter JitterSource) time.Duration {
	base := policy.BaseDelay.Seconds()
	ceiling := policy.MaxDelay.Seconds()

	delay := ceiling
	if in.RetryCount < 62 {
		delay = math.Min(base*math.Pow(2, float64(max(in.RetryCount, 0))), ceiling)
	}

	if in.AvgDuration > slowTaskThreshold {
		delay *= 1.5
	}
	if in.RecentErrors > delayRecentThreshold {
		delay *= 2
	}
	if in.State == StateOpen {
		delay *= 3
	}

	if jitter != nil {
		span := int64(delay * 0.25)
		if span > 0 {
			delay += float64(jitter(2*span+1) - span)
		}
	}

	delay = math.Max(1, delay)
	delay = math.Min(delay, math.Max(1, ceiling))

	return time.Duration(math.Round(delay)) * time.Second
}
