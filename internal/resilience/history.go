package resilience

import (
	"maps"
	"time"
)

type ErrorHistoryEntry struct {
	Timestamp    time.Time    `json:"timestamp"`
	ErrorType    string       `json:"error_type"`
	ErrorMessage string       `json:"error_message"`
	CircuitState CircuitState `json:"-"`
}

// ErrorHistory is the per-task error pattern analyzer: a bounded log of
// recent failures plus a running count per error type.
type ErrorHistory struct {
	entries  []ErrorHistoryEntry
	patterns map[string]int
	inserts  int
}

func NewErrorHistory() *ErrorHistory {
	return &ErrorHistory{
		entries:  make([]ErrorHistoryEntry, 0, historyCapacity),
		patterns: make(map[string]int),
	}
}

func (h *ErrorHistory) Record(entry ErrorHistoryEntry) {
	entry.ErrorMessage = truncateRunes(entry.ErrorMessage, historyMessageLimit)

	if len(h.entries) == historyCapacity {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, entry)
	h.patterns[entry.ErrorType]++

	h.inserts++
	if h.inserts%historyCompactEvery == 0 {
		h.compact(entry.Timestamp)
	}
}

// CountSince counts failures recorded within the trailing duration.
func (h *ErrorHistory) CountSince(now time.Time, within time.Duration) int {
	count := 0
	for i := len(h.entries) - 1; i >= 0; i-- {
		if now.Sub(h.entries[i].Timestamp) > within {
			break
		}
		count++
	}
	return count
}

// Recent returns failures recorded within the trailing duration, oldest first.
func (h *ErrorHistory) Recent(now time.Time, within time.Duration) []ErrorHistoryEntry {
	n := h.CountSince(now, within)
	out := make([]ErrorHistoryEntry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

func (h *ErrorHistory) PatternSummary() map[string]int {
	return maps.Clone(h.patterns)
}

func (h *ErrorHistory) Len() int {
	return len(h.entries)
}

func (h *ErrorHistory) Reset() {
	h.entries = h.entries[:0]
	clear(h.patterns)
	h.inserts = 0
}

func (h *ErrorHistory) compact(now time.Time) {
	kept := h.entries[:0]
	for _, entry := range h.entries {
		if now.Sub(entry.Timestamp) <= historyMaxAge {
			kept = append(kept, entry)
		}
	}
	h.entries = kept
}

func truncateRunes(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
