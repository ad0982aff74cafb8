package postgres

import (
	"context"
	"fmt"
	"time"

	"guessgame-service/internal/domain"
	"github.com/uptrace/bun"
)

type playerRow struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID          string    `bun:"id,pk"`
	DisplayName string    `bun:"display_name,notnull"`
	Score       int       `bun:"score,notnull"`
	JoinedAt    time.Time `bun:"joined_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

// PlayerStore persists players in Postgres through bun.
type PlayerStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewPlayerStore(db *bun.DB) *PlayerStore {
	return &PlayerStore{db: db, now: time.Now}
}

func (s *PlayerStore) LoadPlayers(ctx context.Context) ([]domain.Player, error) {
	var rows []playerRow
	if err := s.db.NewSelect().Model(&rows).Order("joined_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}
	players := make([]domain.Player, 0, len(rows))
	for _, r := range rows {
		players = append(players, domain.Player{
			ID:          r.ID,
			DisplayName: r.DisplayName,
			Score:       r.Score,
			Registered:  true,
			JoinedAt:    r.JoinedAt,
		})
	}
	return players, nil
}

func (s *PlayerStore) SavePlayers(ctx context.Context, players []domain.Player) error {
	if len(players) == 0 {
		return nil
	}
	now := s.now()
	rows := make([]playerRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, playerRow{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
			JoinedAt:    p.JoinedAt,
			UpdatedAt:   now,
		})
	}
	_, err := s.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("score = EXCLUDED.score").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}
	return nil
}
