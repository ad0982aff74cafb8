package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"guessgame-service/internal/domain"
)

// joinDateLayout matches the participants file written by earlier bot versions.
const joinDateLayout = "2006-01-02 15:04:05"

type playerRecord struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Score    int    `json:"score"`
	JoinDate string `json:"join_date"`
}

// PlayerStore keeps players in a JSON file. Saves write a temporary file and
// rename it over the original.
type PlayerStore struct {
	path string
	mu   sync.Mutex
}

func NewPlayerStore(path string) *PlayerStore {
	return &PlayerStore{path: path}
}

func (s *PlayerStore) LoadPlayers(_ context.Context) ([]domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}

	var records []playerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse players: %w", err)
	}

	players := make([]domain.Player, 0, len(records))
	for _, r := range records {
		if r.Username == "" {
			continue
		}
		name := r.FullName
		if name == "" {
			name = r.Username
		}
		joined, err := time.ParseInLocation(joinDateLayout, r.JoinDate, time.Local)
		if err != nil {
			joined = time.Time{}
		}
		players = append(players, domain.Player{
			ID:          r.Username,
			DisplayName: name,
			Score:       r.Score,
			Registered:  true,
			JoinedAt:    joined,
		})
	}
	return players, nil
}

func (s *PlayerStore) SavePlayers(_ context.Context, players []domain.Player) error {
	records := make([]playerRecord, 0, len(players))
	for _, p := range players {
		records = append(records, playerRecord{
			Username: p.ID,
			FullName: p.DisplayName,
			Score:    p.Score,
			JoinDate: p.JoinedAt.Local().Format(joinDateLayout),
		})
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create players dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write players: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace players: %w", err)
	}
	return nil
}
