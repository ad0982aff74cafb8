package game

import (
	"errors"
	"testing"

	"guessgame-service/internal/domain"
)

func TestQuestionSetCursor(t *testing.T) {
	set := NewQuestionSet([]domain.Question{
		{ImageRef: "one.jpg"},
		{ImageRef: "", Answers: []string{"  "}},
		{ImageRef: "two.jpg", Answers: []string{"Deux", "two"}},
	})
	if set.Len() != 2 {
		t.Fatalf("expected unanswerable question dropped, len=%d", set.Len())
	}
	if _, err := set.Current(); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected no active question before start, got %v", err)
	}
	if !set.HasNext() || !set.AdvanceCursor() {
		t.Fatalf("expected first question")
	}
	q, err := set.Current()
	if err != nil || q.Answers[0] != "one" {
		t.Fatalf("expected answer derived from image, got %+v err=%v", q, err)
	}
	set.AdvanceCursor()
	q, _ = set.Current()
	if !q.Accepts("DEUX") || !q.Accepts(" two ") || q.Accepts("three") {
		t.Fatalf("unexpected answer matching for %+v", q)
	}
	if set.HasNext() {
		t.Fatalf("expected no next question")
	}
	if set.AdvanceCursor() || !set.Exhausted() {
		t.Fatalf("expected exhaustion")
	}
	set.AdvanceCursor()
	if set.Index() != set.Len() {
		t.Fatalf("cursor moved past length: %d", set.Index())
	}
	if _, err := set.Current(); !errors.Is(err, domain.ErrNoActiveQuestion) {
		t.Fatalf("expected no active question when exhausted, got %v", err)
	}
	set.Rewind()
	if set.Index() != -1 {
		t.Fatalf("rewind did not reset cursor")
	}
}

func TestHintTracker(t *testing.T) {
	h := NewHintTracker(2)
	if pos, err := h.Reveal(); err != nil || pos != 0 {
		t.Fatalf("first reveal: pos=%d err=%v", pos, err)
	}
	if pos, err := h.Reveal(); err != nil || pos != 1 {
		t.Fatalf("second reveal: pos=%d err=%v", pos, err)
	}
	if _, err := h.Reveal(); !errors.Is(err, domain.ErrHintLimitExceeded) {
		t.Fatalf("expected limit, got %v", err)
	}
	if h.Count() != 2 || h.Remaining() != 0 {
		t.Fatalf("failed reveal mutated tracker: count=%d", h.Count())
	}

	h.Reset(10)
	if h.Count() != 0 || h.Remaining() != domain.MaxHints {
		t.Fatalf("expected reset capped at %d, got remaining=%d", domain.MaxHints, h.Remaining())
	}
}
