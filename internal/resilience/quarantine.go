package resilience

import (
	"fmt"
	"time"
)

type QuarantineEntry struct {
	Until  time.Time `json:"until"`
	Reason string    `json:"reason"`
}

func (e *QuarantineEntry) Active(now time.Time) bool {
	return e != nil && now.Before(e.Until)
}

// evaluateQuarantine applies the isolation rules in order and returns the
// first matching reason. history must already contain the current failure.
func evaluateQuarantine(policy QuarantinePolicy, c Classification, history *ErrorHistory, now time.Time) (string, bool) {
	if c.Quarantine {
		return fmt.Sprintf("error type %s is in quarantine list", c.ErrorType), true
	}

	if c.Category.Infrastructure() {
		return "infrastructure-related error detected", true
	}

	recent := history.Recent(now, policy.FrequencyWindow)
	if len(recent) >= policy.FrequencyThreshold {
		return fmt.Sprintf("high error frequency: %d errors in %s", len(recent), policy.FrequencyWindow), true
	}

	if len(recent) >= policy.PatternMinErrors {
		same := 0
		for _, entry := range recent {
			if entry.ErrorType == c.ErrorType {
				same++
			}
		}
		if float64(same)/float64(len(recent)) >= policy.PatternRatio {
			return fmt.Sprintf("consistent error pattern: %d/%d same errors", same, len(recent)), true
		}
	}

	return "", false
}
