package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when an operation is not valid in the current game state.
	ErrInvalidTransition = errors.New("operation not valid in current game state")
	// ErrQuestionClosed is returned for guesses and hints after the active question was answered.
	ErrQuestionClosed = fmt.Errorf("%w: question already closed", ErrInvalidTransition)
	// ErrUnknownPlayer is returned when points target an identity the ledger does not know.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrNotRegistered is returned when an unregistered player guesses or asks for a hint.
	ErrNotRegistered = errors.New("player not registered")
	// ErrHintLimitExceeded is returned once every hint of the active question is revealed.
	ErrHintLimitExceeded = errors.New("hint limit exceeded")
	// ErrNoActiveQuestion is returned when the question cursor is before start or exhausted.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrQuestionSetEmpty is returned when a game is started without questions.
	ErrQuestionSetEmpty = errors.New("question set is empty")
	// ErrNoPlayers is returned when a game is started before anyone registered.
	ErrNoPlayers = errors.New("no registered players")
	// ErrQuestionSetNotFound indicates the question content could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrPersistenceUnavailable marks storage failures surfaced to the adapter.
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	// ErrUnauthorized is returned by adapters when a non-admin issues an admin command.
	ErrUnauthorized = errors.New("not authorized")
)

// PersistenceError wraps a storage failure so callers can match ErrPersistenceUnavailable
// while keeping the underlying cause.
func PersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistenceUnavailable, err))
}
