package game

import (
	"errors"
	"testing"
	"time"

	"guessgame-service/internal/domain"
)

func TestLedgerRegisterIdempotent(t *testing.T) {
	l := NewScoreLedger(nil)
	if _, added := l.Register("u1", "Alice"); !added {
		t.Fatalf("expected u1 added")
	}
	if _, err := l.Award("u1", 4); err != nil {
		t.Fatalf("award: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, added := l.Register("u1", "Alice again"); added {
			t.Fatalf("re-register reported added")
		}
	}
	p, _ := l.Player("u1")
	if p.Score != 4 || p.DisplayName != "Alice" || l.Len() != 1 {
		t.Fatalf("re-register mutated player: %+v len=%d", p, l.Len())
	}
}

func TestLedgerAwardUnknownPlayer(t *testing.T) {
	l := NewScoreLedger(nil)
	if _, err := l.Award("ghost", 5); !errors.Is(err, domain.ErrUnknownPlayer) {
		t.Fatalf("expected unknown player, got %v", err)
	}
}

func TestLedgerSnapshotOrdering(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewScoreLedger(func() time.Time { return now })
	for _, id := range []string{"a", "b", "c", "d"} {
		l.Register(id, "")
	}
	mustAward(t, l, "c", 5)
	mustAward(t, l, "b", 2)
	mustAward(t, l, "d", 2)

	lb := l.Snapshot()
	got := make([]string, 0, len(lb.Entries))
	for _, e := range lb.Entries {
		got = append(got, e.PlayerID)
	}
	want := []string{"c", "b", "d", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
	if lb.Entries[0].Rank != 1 || lb.Entries[3].Rank != 4 {
		t.Fatalf("unexpected ranks %+v", lb.Entries)
	}
	if lb.Entries[3].DisplayName != "a" {
		t.Fatalf("expected display name to default to id, got %q", lb.Entries[3].DisplayName)
	}
	if !lb.UpdatedAt.Equal(now) {
		t.Fatalf("expected snapshot time from clock")
	}
	if lb.ActivePlayers() != 3 || lb.HighestScore() != 5 || len(lb.Top(2)) != 2 {
		t.Fatalf("unexpected stats active=%d highest=%d", lb.ActivePlayers(), lb.HighestScore())
	}
}

func TestLedgerResetKeepsRegistrations(t *testing.T) {
	l := NewScoreLedger(nil)
	l.Register("a", "A")
	l.Register("b", "B")
	mustAward(t, l, "b", 3)

	l.Reset()
	if l.Len() != 2 {
		t.Fatalf("reset dropped players")
	}
	for _, p := range l.Players() {
		if p.Score != 0 || !p.Registered {
			t.Fatalf("expected zeroed registered player, got %+v", p)
		}
	}
	if _, err := l.Award("a", 1); err != nil {
		t.Fatalf("award after reset: %v", err)
	}
}

func TestLedgerRestore(t *testing.T) {
	l := NewScoreLedger(nil)
	l.Register("a", "A")
	l.Restore([]domain.Player{
		{ID: "a", DisplayName: "Other", Score: 99},
		{ID: "b", DisplayName: "B", Score: 7},
		{ID: ""},
	})
	if l.Len() != 2 {
		t.Fatalf("expected 2 players, got %d", l.Len())
	}
	a, _ := l.Player("a")
	b, _ := l.Player("b")
	if a.Score != 0 || b.Score != 7 || !b.Registered {
		t.Fatalf("unexpected restore result a=%+v b=%+v", a, b)
	}
}

func mustAward(t *testing.T, l *ScoreLedger, id string, points int) {
	t.Helper()
	if _, err := l.Award(id, points); err != nil {
		t.Fatalf("award %s: %v", id, err)
	}
}
