package game

import "guessgame-service/internal/domain"

// HintTracker counts hints revealed for the active question.
type HintTracker struct {
	revealed int
	limit    int
}

// NewHintTracker returns a tracker allowing up to limit hints, capped at domain.MaxHints.
func NewHintTracker(limit int) *HintTracker {
	h := &HintTracker{}
	h.Reset(limit)
	return h
}

// Reveal records one more hint and returns its zero-based position.
func (h *HintTracker) Reveal() (int, error) {
	if h.revealed >= h.limit {
		return h.revealed, domain.ErrHintLimitExceeded
	}
	h.revealed++
	return h.revealed - 1, nil
}

func (h *HintTracker) Count() int { return h.revealed }

func (h *HintTracker) Remaining() int { return h.limit - h.revealed }

// Reset clears the count for a new question with the given hint limit.
func (h *HintTracker) Reset(limit int) {
	if limit > domain.MaxHints {
		limit = domain.MaxHints
	}
	if limit < 0 {
		limit = 0
	}
	h.revealed = 0
	h.limit = limit
}
