package domain

import "time"

// EventType names an outbound game event on the wire.
type EventType string

const (
	EventQuestionOpened EventType = "question_opened"
	EventHintRevealed   EventType = "hint_revealed"
	EventAnswerAccepted EventType = "answer_accepted"
	EventAnswerRejected EventType = "answer_rejected"
	EventGameEnded      EventType = "game_ended"
	EventPlayerJoined   EventType = "player_joined"
	EventScoresReset    EventType = "scores_reset"
)

// Event is emitted by the game session and consumed by chat adapters.
type Event interface {
	Type() EventType
}

// QuestionOpened announces a new active question.
type QuestionOpened struct {
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	ImageRef string `json:"imageRef"`
	Hints    int    `json:"hints"`
}

// HintRevealed carries the next hint of the active question.
type HintRevealed struct {
	PlayerID        string `json:"playerId"`
	Text            string `json:"text"`
	Number          int    `json:"number"`
	Remaining       int    `json:"remaining"`
	PotentialPoints int    `json:"potentialPoints"`
}

// AnswerAccepted reports the first correct guess for a question.
type AnswerAccepted struct {
	PlayerID      string        `json:"playerId"`
	DisplayName   string        `json:"displayName"`
	Answer        string        `json:"answer"`
	PointsAwarded int           `json:"pointsAwarded"`
	HintsUsed     int           `json:"hintsUsed"`
	TotalScore    int           `json:"totalScore"`
	Rank          int           `json:"rank"`
	NextIn        time.Duration `json:"nextIn"`
}

// AnswerRejected reports a wrong guess; adapters decide whether to surface it.
type AnswerRejected struct {
	PlayerID string `json:"playerId"`
}

// GameEndReason explains why a game finished.
type GameEndReason string

const (
	EndExhausted GameEndReason = "questions_exhausted"
	EndByAdmin   GameEndReason = "ended_by_admin"
)

// GameEnded carries the final leaderboard.
type GameEnded struct {
	Reason      GameEndReason `json:"reason"`
	Leaderboard Leaderboard   `json:"leaderboard"`
}

// PlayerJoined announces a newly registered player.
type PlayerJoined struct {
	PlayerID     string `json:"playerId"`
	DisplayName  string `json:"displayName"`
	TotalPlayers int    `json:"totalPlayers"`
}

// ScoresReset announces that every score was zeroed.
type ScoresReset struct {
	Players int `json:"players"`
}

func (QuestionOpened) Type() EventType { return EventQuestionOpened }
func (HintRevealed) Type() EventType   { return EventHintRevealed }
func (AnswerAccepted) Type() EventType { return EventAnswerAccepted }
func (AnswerRejected) Type() EventType { return EventAnswerRejected }
func (GameEnded) Type() EventType      { return EventGameEnded }
func (PlayerJoined) Type() EventType   { return EventPlayerJoined }
func (ScoresReset) Type() EventType    { return EventScoresReset }
