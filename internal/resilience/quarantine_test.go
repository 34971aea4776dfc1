package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type QuarantineRulesSuite struct {
	suite.Suite

	now     time.Time
	policy  QuarantinePolicy
	history *ErrorHistory
}

func (s *QuarantineRulesSuite) SetupTest() {
	s.now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.policy = DefaultQuarantinePolicy()
	s.history = NewErrorHistory()
}

func (s *QuarantineRulesSuite) record(errorType string, ago time.Duration, n int) {
	for i := 0; i < n; i++ {
		s.history.Record(ErrorHistoryEntry{Timestamp: s.now.Add(-ago), ErrorType: errorType})
	}
}

func (s *QuarantineRulesSuite) TestEvaluateQuarantine_TableDriven() {
	internal := Classification{Category: CategoryInternal, ErrorType: "KeyError"}

	tests := []struct {
		name           string
		classification Classification
		setup          func()
		expectOK       bool
		expectReason   string
	}{
		{
			name:           "deny-listed type wins first",
			classification: Classification{Category: CategoryConnectivity, ErrorType: "ClientNotConnectedError", Quarantine: true},
			expectOK:       true,
			expectReason:   "error type ClientNotConnectedError is in quarantine list",
		},
		{
			name:           "infrastructure heuristics",
			classification: Classification{Category: CategoryTimeout, ErrorType: "TimeoutError"},
			expectOK:       true,
			expectReason:   "infrastructure-related error detected",
		},
		{
			name:           "high frequency in window",
			classification: internal,
			setup: func() {
				s.record("A", time.Minute, 4)
				s.record("B", time.Minute, 3)
				s.record("KeyError", time.Minute, 3)
			},
			expectOK:     true,
			expectReason: "high error frequency: 10 errors in 5m0s",
		},
		{
			name:           "old errors outside frequency window are ignored",
			classification: internal,
			setup: func() {
				s.record("A", 10*time.Minute, 12)
				s.record("KeyError", time.Minute, 1)
			},
			expectOK: false,
		},
		{
			name:           "consistent pattern",
			classification: internal,
			setup: func() {
				s.record("A", time.Minute, 1)
				s.record("KeyError", time.Minute, 4)
			},
			expectOK:     true,
			expectReason: "consistent error pattern: 4/5 same errors",
		},
		{
			name:           "mixed pattern below ratio",
			classification: internal,
			setup: func() {
				s.record("A", time.Minute, 2)
				s.record("KeyError", time.Minute, 4)
			},
			expectOK: false,
		},
		{
			name:           "too few errors for pattern",
			classification: internal,
			setup: func() {
				s.record("KeyError", time.Minute, 4)
			},
			expectOK: false,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			s.SetupTest()
			if tc.setup != nil {
				tc.setup()
			}

			reason, ok := evaluateQuarantine(s.policy, tc.classification, s.history, s.now)

			assert.Equal(s.T(), tc.expectOK, ok)
			assert.Equal(s.T(), tc.expectReason, reason)
		})
	}
}

func (s *QuarantineRulesSuite) TestEntryActive() {
	var missing *QuarantineEntry
	entry := &QuarantineEntry{Until: s.now.Add(time.Minute)}

	assert.False(s.T(), missing.Active(s.now))
	assert.True(s.T(), entry.Active(s.now))
	assert.False(s.T(), entry.Active(s.now.Add(time.Minute)))
}

func TestQuarantineRulesSuite(t *testing.T) {
	suite.Run(t, new(QuarantineRulesSuite))
}
