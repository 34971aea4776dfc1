package resilience

import "time"

// FailureWindow keeps recent failure timestamps for one task, bounded in both
// count and age.
type FailureWindow struct {
	times    []time.Time
	capacity int
	span     time.Duration
}

func NewFailureWindow(capacity int, span time.Duration) *FailureWindow {
	if capacity <= 0 {
		capacity = failureWindowSize
	}
	if span <= 0 {
		span = failureWindowSpan
	}
	return &FailureWindow{
		times:    make([]time.Time, 0, capacity),
		capacity: capacity,
		span:     span,
	}
}

func (w *FailureWindow) Record(at time.Time) {
	if len(w.times) == w.capacity {
		w.times = append(w.times[:0], w.times[1:]...)
	}
	w.times = append(w.times, at)
}

// IsRateLimited drops stale entries, then denies once limit failures are held.
func (w *FailureWindow) IsRateLimited(now time.Time, limit int) bool {
	w.prune(now)
	return len(w.times) >= limit
}

// RetryAfter is the time until the oldest held failure leaves the window.
func (w *FailureWindow) RetryAfter(now time.Time) time.Duration {
	if len(w.times) == 0 {
		return 0
	}
	remaining := w.span - now.Sub(w.times[0])
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (w *FailureWindow) Len() int {
	return len(w.times)
}

func (w *FailureWindow) Reset() {
	w.times = w.times[:0]
}

func (w *FailureWindow) prune(now time.Time) {
	cut := 0
	for cut < len(w.times) && now.Sub(w.times[cut]) > w.span {
		cut++
	}
	if cut > 0 {
		w.times = append(w.times[:0], w.times[cut:]...)
	}
}

// DynamicLimit scales the base limit with how established a task is: doubled
// past 1000 executions, halved with a floor of 5 under 10.
func DynamicLimit(base int, totalExecutions int64) int {
	switch {
	case totalExecutions > 1000:
		return base * 2
	case totalExecutions < 10:
		return max(5, base/2)
	default:
		return base
	}
}
