package memory

import (
	"context"
	"sync"

	"guessgame-service/internal/domain"
)

// PlayerStore is an in-memory implementation of app.PlayerRepository.
type PlayerStore struct {
	mu      sync.RWMutex
	players []domain.Player
	saves   int
}

func NewPlayerStore(seed ...domain.Player) *PlayerStore {
	return &PlayerStore{players: append([]domain.Player(nil), seed...)}
}

func (s *PlayerStore) LoadPlayers(_ context.Context) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Player(nil), s.players...), nil
}

func (s *PlayerStore) SavePlayers(_ context.Context, players []domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append([]domain.Player(nil), players...)
	s.saves++
	return nil
}

// Saves reports how many times SavePlayers ran.
func (s *PlayerStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
