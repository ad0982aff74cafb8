package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"guessgame-service/internal/domain"
)

func TestPlayerStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewPlayerStore(newClient(mr))
	ctx := context.Background()

	empty, err := store.LoadPlayers(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected no players, got %+v err=%v", empty, err)
	}

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := store.SavePlayers(ctx, []domain.Player{
		{ID: "alice", DisplayName: "Alice", Score: 5, JoinedAt: base},
		{ID: "bob", DisplayName: "Bob", Score: 3, JoinedAt: base.Add(time.Second)},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	players, err := store.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(players) != 2 || players[0].ID != "alice" || players[1].ID != "bob" {
		t.Fatalf("expected registration order, got %+v", players)
	}
	if players[1].Score != 3 || players[1].DisplayName != "Bob" || !players[1].JoinedAt.Equal(base.Add(time.Second)) {
		t.Fatalf("unexpected player %+v", players[1])
	}

	// Last writer wins.
	if err := store.SavePlayers(ctx, []domain.Player{{ID: "bob", DisplayName: "Bob", Score: 0, JoinedAt: base.Add(time.Second)}}); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	score, err := mr.ZScore("guess:leaderboard", "bob")
	if err != nil || score != 0 {
		t.Fatalf("expected leaderboard score reset, got %v err=%v", score, err)
	}
	if got := mr.HGet("guess:player:bob", "score"); got != "0" {
		t.Fatalf("expected stored score 0, got %q", got)
	}
}

func TestPlayerStoreKeepsRegistrationOrder(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewPlayerStore(newClient(mr))
	ctx := context.Background()

	// Same instant and unknown (zero) join dates must not reorder players.
	same := time.Date(2024, 5, 1, 12, 0, 0, 123, time.UTC)
	first := []domain.Player{
		{ID: "zed", DisplayName: "Zed", JoinedAt: same},
		{ID: "amy", DisplayName: "Amy", JoinedAt: same.Add(time.Nanosecond)},
		{ID: "legacy", DisplayName: "Legacy"},
	}
	if err := store.SavePlayers(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	// A later save with a new player appends; known players keep their slot.
	if err := store.SavePlayers(ctx, append(first, domain.Player{ID: "bea", DisplayName: "Bea", Score: 9, JoinedAt: same})); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	players, err := store.LoadPlayers(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"zed", "amy", "legacy", "bea"}
	if len(players) != len(want) {
		t.Fatalf("expected %d players, got %+v", len(want), players)
	}
	for i, id := range want {
		if players[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, players[i].ID)
		}
	}
	if !players[2].JoinedAt.IsZero() {
		t.Fatalf("expected zero join date preserved, got %v", players[2].JoinedAt)
	}
	if !players[1].JoinedAt.Equal(same.Add(time.Nanosecond)) {
		t.Fatalf("expected nanosecond join date preserved, got %v", players[1].JoinedAt)
	}
}
