package game

import (
	"sort"
	"sync"
	"time"

	"guessgame-service/internal/domain"
)

// ScoreLedger maps player identities to accumulated points. It is safe for
// concurrent use so leaderboard reads never wait on the session lock.
type ScoreLedger struct {
	now func() time.Time

	mu      sync.RWMutex
	players map[string]*domain.Player
	order   []string
}

// NewScoreLedger returns an empty ledger.
func NewScoreLedger(now func() time.Time) *ScoreLedger {
	if now == nil {
		now = time.Now
	}
	return &ScoreLedger{
		now:     now,
		players: make(map[string]*domain.Player),
	}
}

// Register adds a player. Re-registering is a no-op; the returned bool
// reports whether the player was added.
func (l *ScoreLedger) Register(playerID, displayName string) (domain.Player, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p, ok := l.players[playerID]; ok {
		return *p, false
	}
	if displayName == "" {
		displayName = playerID
	}
	p := &domain.Player{
		ID:          playerID,
		DisplayName: displayName,
		Registered:  true,
		JoinedAt:    l.now(),
	}
	l.players[playerID] = p
	l.order = append(l.order, playerID)
	return *p, true
}

// Restore seeds the ledger with persisted players, keeping their order and
// scores. Players already present are left untouched.
func (l *ScoreLedger) Restore(players []domain.Player) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, p := range players {
		if p.ID == "" {
			continue
		}
		if _, ok := l.players[p.ID]; ok {
			continue
		}
		cp := p
		cp.Registered = true
		if cp.DisplayName == "" {
			cp.DisplayName = cp.ID
		}
		l.players[cp.ID] = &cp
		l.order = append(l.order, cp.ID)
	}
}

// Award adds points to a player's score and returns the new total.
func (l *ScoreLedger) Award(playerID string, points int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.players[playerID]
	if !ok {
		return 0, domain.ErrUnknownPlayer
	}
	p.Score += points
	return p.Score, nil
}

// Reset zeroes every score without unregistering anyone.
func (l *ScoreLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.players {
		p.Score = 0
	}
}

// Player returns a copy of a registered player.
func (l *ScoreLedger) Player(playerID string) (domain.Player, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.players[playerID]
	if !ok {
		return domain.Player{}, false
	}
	return *p, true
}

// Len returns the number of registered players.
func (l *ScoreLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Players returns copies of all players in registration order.
func (l *ScoreLedger) Players() []domain.Player {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Player, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.players[id])
	}
	return out
}

// Snapshot returns the leaderboard ordered by score descending, ties kept in
// registration order.
func (l *ScoreLedger) Snapshot() domain.Leaderboard {
	l.mu.RLock()
	entries := make([]domain.LeaderboardEntry, 0, len(l.order))
	for _, id := range l.order {
		p := l.players[id]
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID:    p.ID,
			DisplayName: p.DisplayName,
			Score:       p.Score,
		})
	}
	l.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{
		Entries:   entries,
		UpdatedAt: l.now(),
	}
}
