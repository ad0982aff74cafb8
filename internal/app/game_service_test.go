package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"guessgame-service/internal/app"
	"guessgame-service/internal/domain"
	"guessgame-service/internal/game"
	"guessgame-service/internal/infra/memory"
)

func TestRegisterStartAndScore(t *testing.T) {
	ctx := context.Background()
	service, _, players := newTestService(t, memory.NewPlayerStore())

	if _, added, err := service.Register(ctx, "u1", "Alice"); err != nil || !added {
		t.Fatalf("register failed: added=%v err=%v", added, err)
	}
	if _, added, err := service.Register(ctx, "u1", "Alice"); err != nil || added {
		t.Fatalf("re-register should be a no-op: added=%v err=%v", added, err)
	}
	if _, _, err := service.Register(ctx, "u2", "Bob"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	res, err := service.SubmitGuess(ctx, "u2", "Paris")
	if err != nil {
		t.Fatalf("guess: %v", err)
	}
	if !res.Correct || res.Points != 5 {
		t.Fatalf("expected 5 points, got %+v", res)
	}

	lb := service.Scores()
	if lb.Entries[0].PlayerID != "u2" || lb.Entries[0].Score != 5 {
		t.Fatalf("expected Bob to lead, got %+v", lb.Entries)
	}

	stored, _ := players.LoadPlayers(ctx)
	if len(stored) != 2 || stored[1].Score != 5 {
		t.Fatalf("expected score persisted, got %+v", stored)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	service, _, _ := newTestService(t, memory.NewPlayerStore())
	go func() { _ = service.Run(ctx) }()

	events, unsubscribe := service.Subscribe()
	defer unsubscribe()

	if _, _, err := service.Register(ctx, "u1", "Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	want := []domain.EventType{domain.EventPlayerJoined, domain.EventQuestionOpened}
	for _, typ := range want {
		select {
		case ev := <-events:
			if ev.Type() != typ {
				t.Fatalf("expected %s, got %s", typ, ev.Type())
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", typ)
		}
	}
}

func TestFinalLeaderboardPersistedOnExhaustion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.NewPlayerStore()
	service, _, _ := newTestService(t, store)
	go func() { _ = service.Run(ctx) }()
	events, unsubscribe := service.Subscribe()
	defer unsubscribe()

	_, _, _ = service.Register(ctx, "u1", "Alice")
	if err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := service.Next(ctx); err != nil {
		t.Fatalf("next: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Type() != domain.EventGameEnded {
				continue
			}
			// register + final
			if store.Saves() < 2 {
				t.Fatalf("expected final leaderboard saved, saves=%d", store.Saves())
			}
			return
		case <-deadline:
			t.Fatalf("timed out waiting for game end")
		}
	}
}

func TestStartErrors(t *testing.T) {
	ctx := context.Background()
	session := game.NewSession(nil, nil, game.Options{})
	t.Cleanup(session.Close)
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(nil), time.Minute)
	service := app.NewGameService(session, questions, memory.NewPlayerStore(), "missing", nil)

	_, _, _ = service.Register(ctx, "u1", "Alice")
	if err := service.Start(ctx); !errors.Is(err, domain.ErrQuestionSetNotFound) {
		t.Fatalf("expected missing set, got %v", err)
	}

	failing := app.NewGameService(session, &failingQuestions{}, memory.NewPlayerStore(), "default", nil)
	if err := failing.Start(ctx); !errors.Is(err, domain.ErrPersistenceUnavailable) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestPersistenceFailureIsSurfaced(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, &failingPlayers{})

	player, added, err := service.Register(ctx, "u1", "Alice")
	if !errors.Is(err, domain.ErrPersistenceUnavailable) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if !added || player.ID != "u1" {
		t.Fatalf("registration must still apply, got %+v added=%v", player, added)
	}
	if err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := service.SubmitGuess(ctx, "u1", "paris")
	if !errors.Is(err, domain.ErrPersistenceUnavailable) || !res.Correct {
		t.Fatalf("expected applied guess with persistence error, got %+v err=%v", res, err)
	}
	if err := service.Restore(ctx); !errors.Is(err, domain.ErrPersistenceUnavailable) {
		t.Fatalf("expected restore error, got %v", err)
	}
}

func TestRestoreAndResetScores(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPlayerStore(
		domain.Player{ID: "u1", DisplayName: "Alice", Score: 12},
		domain.Player{ID: "u2", DisplayName: "Bob", Score: 3},
	)
	service, _, _ := newTestService(t, store)

	if err := service.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if lb := service.Scores(); len(lb.Entries) != 2 || lb.HighestScore() != 12 {
		t.Fatalf("unexpected restored board %+v", lb)
	}

	if err := service.ResetScores(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stored, _ := store.LoadPlayers(ctx)
	for _, p := range stored {
		if p.Score != 0 {
			t.Fatalf("expected zeroed scores persisted, got %+v", p)
		}
	}
	if service.Status().Players != 2 {
		t.Fatalf("reset must keep players")
	}

	if err := service.Start(ctx); err != nil {
		t.Fatalf("start after reset: %v", err)
	}
	if _, err := service.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	if service.Status().State != domain.StateEnded {
		t.Fatalf("expected ended state")
	}
}

func TestPlayerStats(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t, memory.NewPlayerStore())

	if _, err := service.PlayerStats("u1"); !errors.Is(err, domain.ErrNotRegistered) {
		t.Fatalf("expected not registered, got %v", err)
	}

	_, _, _ = service.Register(ctx, "u1", "Alice")
	_, _, _ = service.Register(ctx, "u2", "Bob")
	if err := service.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.SubmitGuess(ctx, "u2", "paris"); err != nil {
		t.Fatalf("guess: %v", err)
	}

	stats, err := service.PlayerStats("u2")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Rank != 1 || stats.Score != 5 || stats.TotalPlayers != 2 || stats.DisplayName != "Bob" {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.JoinedAt.IsZero() {
		t.Fatalf("expected join date")
	}
	if alice, _ := service.PlayerStats("u1"); alice.Rank != 2 || alice.Score != 0 {
		t.Fatalf("unexpected stats for trailing player %+v", alice)
	}
}

func TestRunSnapshotsPersistsPeriodically(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.NewPlayerStore()
	service, _, _ := newTestService(t, store)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = service.RunSnapshots(ctx, 10*time.Millisecond)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for store.Saves() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done
	if store.Saves() < 2 {
		t.Fatalf("expected periodic snapshots, got %d", store.Saves())
	}
}

func newTestService(t *testing.T, players app.PlayerRepository) (*app.GameService, *game.Session, app.PlayerRepository) {
	t.Helper()
	session := game.NewSession(nil, nil, game.Options{AdvanceDelay: time.Minute})
	t.Cleanup(session.Close)
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		"default": {
			{ImageRef: "paris.jpg", Answers: []string{"Paris"}, Hints: []string{"capital", "france", "eiffel", "light"}},
		},
	}), 5*time.Minute)
	return app.NewGameService(session, questions, players, "default", nil), session, players
}

type failingQuestions struct{}

func (failingQuestions) GetQuestions(context.Context, string) ([]domain.Question, error) {
	return nil, errors.New("connection refused")
}

type failingPlayers struct{}

func (failingPlayers) LoadPlayers(context.Context) ([]domain.Player, error) {
	return nil, errors.New("disk full")
}

func (failingPlayers) SavePlayers(context.Context, []domain.Player) error {
	return errors.New("disk full")
}
