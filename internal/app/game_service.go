package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"guessgame-service/internal/domain"
	"guessgame-service/internal/game"
)

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, setID string) ([]domain.Question, error)
}

// PlayerRepository persists players and their scores. Saves overwrite; the
// last writer wins.
type PlayerRepository interface {
	LoadPlayers(ctx context.Context) ([]domain.Player, error)
	SavePlayers(ctx context.Context, players []domain.Player) error
}

// GameService contains the game use cases invoked by chat adapters. It owns
// no game state itself; the session does.
type GameService struct {
	session   *game.Session
	questions QuestionRepository
	players   PlayerRepository
	setID     string
	logger    *slog.Logger

	mu          sync.RWMutex
	subscribers map[chan domain.Event]struct{}
}

func NewGameService(session *game.Session, questions QuestionRepository, players PlayerRepository, setID string, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{
		session:     session,
		questions:   questions,
		players:     players,
		setID:       setID,
		logger:      logger,
		subscribers: make(map[chan domain.Event]struct{}),
	}
}

// Restore seeds the session with players persisted by a previous run.
func (s *GameService) Restore(ctx context.Context) error {
	players, err := s.players.LoadPlayers(ctx)
	if err != nil {
		return domain.PersistenceError("load players", err)
	}
	s.session.Ledger().Restore(players)
	s.logger.Info("players restored", "count", len(players))
	return nil
}

// Register adds a player; re-registering is a no-op. The player is returned
// together with whether it was newly added.
func (s *GameService) Register(ctx context.Context, playerID, displayName string) (domain.Player, bool, error) {
	player, added := s.session.Register(playerID, displayName)
	if !added {
		return player, false, nil
	}
	s.logger.Info("player registered", "player", playerID, "players", s.session.Ledger().Len())
	return player, true, s.persist(ctx, "register")
}

// Start loads the configured question set and opens its first question.
func (s *GameService) Start(ctx context.Context) error {
	switch s.session.State() {
	case domain.StateActive, domain.StateAwaitingAdvance:
		return domain.ErrInvalidTransition
	}

	questions, err := s.questions.GetQuestions(ctx, s.setID)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionSetNotFound) {
			return err
		}
		return domain.PersistenceError("load questions", err)
	}
	if err := s.session.Load(game.NewQuestionSet(questions)); err != nil {
		return err
	}
	if err := s.session.Start(); err != nil {
		return err
	}
	s.logger.Info("game started", "set", s.setID, "questions", len(questions))
	return nil
}

// SubmitGuess evaluates a guess. Scores are persisted after a correct guess;
// a persistence failure is returned alongside the (already applied) result.
func (s *GameService) SubmitGuess(ctx context.Context, playerID, text string) (game.GuessResult, error) {
	res, err := s.session.SubmitGuess(playerID, text)
	if err != nil || !res.Correct {
		return res, err
	}
	s.logger.Info("answer accepted", "player", playerID, "points", res.Points, "total", res.TotalScore)
	return res, s.persist(ctx, "award")
}

// RequestHint reveals the next hint of the active question.
func (s *GameService) RequestHint(_ context.Context, playerID string) (game.HintResult, error) {
	return s.session.RequestHint(playerID)
}

// Next advances to the next question, ending the game once exhausted.
func (s *GameService) Next(_ context.Context) error {
	return s.session.Next()
}

// End finishes the game and stores the final leaderboard.
func (s *GameService) End(ctx context.Context) (domain.Leaderboard, error) {
	lb, err := s.session.End()
	if err != nil {
		return lb, err
	}
	s.logger.Info("game ended by admin", "players", len(lb.Entries))
	return lb, s.persist(ctx, "end")
}

// ResetScores zeroes all scores while keeping registrations.
func (s *GameService) ResetScores(ctx context.Context) error {
	s.session.ResetScores()
	s.logger.Info("scores reset")
	return s.persist(ctx, "reset")
}

// Scores returns the current leaderboard.
func (s *GameService) Scores() domain.Leaderboard {
	return s.session.Scores()
}

// PlayerStats returns the player's score, rank and join date.
func (s *GameService) PlayerStats(playerID string) (domain.PlayerStats, error) {
	player, ok := s.session.Ledger().Player(playerID)
	if !ok {
		return domain.PlayerStats{}, domain.ErrNotRegistered
	}
	lb := s.session.Scores()
	return domain.PlayerStats{
		PlayerID:     player.ID,
		DisplayName:  player.DisplayName,
		Score:        player.Score,
		Rank:         lb.RankOf(playerID),
		TotalPlayers: len(lb.Entries),
		JoinedAt:     player.JoinedAt,
	}, nil
}

// Status returns a read-only view of the game lifecycle.
func (s *GameService) Status() domain.GameStatus {
	return s.session.Status()
}

// Snapshot writes the current players to the repository.
func (s *GameService) Snapshot(ctx context.Context) error {
	return s.persist(ctx, "snapshot")
}

// Subscribe returns a channel that receives game events.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 32)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Run fans session events out to subscribers until ctx is done or the
// session is closed. The final leaderboard of every game is persisted.
func (s *GameService) Run(ctx context.Context) error {
	events := s.session.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ended, isEnd := ev.(domain.GameEnded); isEnd && ended.Reason == domain.EndExhausted {
				s.logger.Info("game finished", "players", len(ended.Leaderboard.Entries))
				if err := s.persist(ctx, "final"); err != nil {
					s.logger.Warn("persist final leaderboard", "error", err)
				}
			}
			s.broadcast(ev)
		}
	}
}

// RunSnapshots persists the leaderboard every interval until ctx is done.
func (s *GameService) RunSnapshots(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Snapshot(ctx); err != nil {
				s.logger.Warn("periodic snapshot failed", "error", err)
			}
		}
	}
}

func (s *GameService) broadcast(ev domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscribers lose the oldest event rather than stalling the game.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func (s *GameService) persist(ctx context.Context, op string) error {
	if err := s.players.SavePlayers(ctx, s.session.Ledger().Players()); err != nil {
		s.logger.Warn("persist players", "op", op, "error", err)
		return domain.PersistenceError("save players", err)
	}
	return nil
}
