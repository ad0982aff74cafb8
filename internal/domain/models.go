package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// Player represents a registered participant and their accumulated score.
type Player struct {
	ID          string    `json:"username"`
	DisplayName string    `json:"full_name"`
	Score       int       `json:"score"`
	Registered  bool      `json:"registered"`
	JoinedAt    time.Time `json:"join_date"`
}

// LeaderboardEntry is a snapshot-friendly view of a player.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"playerId"`
	DisplayName string `json:"displayName"`
	Score       int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard of the running game.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// PlayerStats is one player's standing.
type PlayerStats struct {
	PlayerID     string    `json:"playerId"`
	DisplayName  string    `json:"displayName"`
	Score        int       `json:"score"`
	Rank         int       `json:"rank"`
	TotalPlayers int       `json:"totalPlayers"`
	JoinedAt     time.Time `json:"joinedAt"`
}

// Top returns at most n leading entries.
func (l Leaderboard) Top(n int) []LeaderboardEntry {
	if n < 0 || n >= len(l.Entries) {
		return l.Entries
	}
	return l.Entries[:n]
}

// ActivePlayers counts players that scored at least once.
func (l Leaderboard) ActivePlayers() int {
	active := 0
	for _, e := range l.Entries {
		if e.Score > 0 {
			active++
		}
	}
	return active
}

// HighestScore returns the leading score, or 0 for an empty board.
func (l Leaderboard) HighestScore() int {
	if len(l.Entries) == 0 {
		return 0
	}
	return l.Entries[0].Score
}

// RankOf returns the 1-based rank of a player, or 0 if absent.
func (l Leaderboard) RankOf(playerID string) int {
	for _, e := range l.Entries {
		if e.PlayerID == playerID {
			return e.Rank
		}
	}
	return 0
}

// Question is one image-backed quiz item.
type Question struct {
	ImageRef string   `json:"image" yaml:"image"`
	Answers  []string `json:"answers,omitempty" yaml:"answers,omitempty"`
	Hints    []string `json:"hints,omitempty" yaml:"hints,omitempty"`
}

// Normalized returns a copy with canonical answers and at most MaxHints hints.
// Questions without answers are answered by the image file name; questions
// without hints get hints derived from the first answer.
func (q Question) Normalized() Question {
	out := Question{ImageRef: q.ImageRef}

	// written is the first answer as authored; hints are derived from it.
	var written string
	seen := make(map[string]struct{}, len(q.Answers))
	for _, a := range q.Answers {
		n := NormalizeAnswer(a)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		if written == "" {
			written = a
		}
		seen[n] = struct{}{}
		out.Answers = append(out.Answers, n)
	}
	if len(out.Answers) == 0 {
		base := filepath.Base(q.ImageRef)
		name := strings.TrimSuffix(base, filepath.Ext(base))
		if n := NormalizeAnswer(name); n != "" && n != "." {
			out.Answers = []string{n}
			written = name
		}
	}

	hints := q.Hints
	if len(hints) == 0 && written != "" {
		hints = DeriveHints(written)
	}
	if len(hints) > MaxHints {
		hints = hints[:MaxHints]
	}
	out.Hints = append([]string(nil), hints...)
	return out
}

// Accepts reports whether the guess matches any acceptable answer.
func (q Question) Accepts(guess string) bool {
	n := NormalizeAnswer(guess)
	if n == "" {
		return false
	}
	for _, a := range q.Answers {
		if a == n {
			return true
		}
	}
	return false
}

// GameState is the lifecycle state of a game session.
type GameState int

const (
	StateIdle GameState = iota
	StateActive
	StateAwaitingAdvance
	StateEnded
)

func (s GameState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateAwaitingAdvance:
		return "awaiting_advance"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON payloads.
func (s GameState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// GameStatus is a read-only view of the session for status queries.
type GameStatus struct {
	State          GameState `json:"state"`
	QuestionIndex  int       `json:"questionIndex"`
	QuestionCount  int       `json:"questionCount"`
	ImageRef       string    `json:"imageRef,omitempty"`
	HintsRevealed  int       `json:"hintsRevealed"`
	HintsRemaining int       `json:"hintsRemaining"`
	Players        int       `json:"players"`
}

const (
	// PointsPerCorrectAnswer is the award for a correct guess with no hints.
	PointsPerCorrectAnswer = 5
	// HintPenalty is subtracted from the award for every hint revealed.
	HintPenalty = 1
	// MaxHints bounds the hint sequence of a question.
	MaxHints = 4
)

// AwardFor returns the points for a correct guess after the given number of hints.
func AwardFor(hintsRevealed int) int {
	points := PointsPerCorrectAnswer - hintsRevealed*HintPenalty
	if points < 0 {
		return 0
	}
	return points
}
