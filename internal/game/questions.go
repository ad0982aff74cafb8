package game

import (
	"math/rand"

	"guessgame-service/internal/domain"
)

// QuestionSet is an ordered sequence of questions with a cursor. The cursor is
// -1 before start and len(questions) once exhausted.
type QuestionSet struct {
	questions []domain.Question
	index     int
}

// NewQuestionSet normalizes and copies questions, dropping any without answers.
func NewQuestionSet(questions []domain.Question) *QuestionSet {
	qs := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		n := q.Normalized()
		if len(n.Answers) == 0 {
			continue
		}
		qs = append(qs, n)
	}
	return &QuestionSet{questions: qs, index: -1}
}

// Current returns the active question.
func (s *QuestionSet) Current() (domain.Question, error) {
	if s.index < 0 || s.index >= len(s.questions) {
		return domain.Question{}, domain.ErrNoActiveQuestion
	}
	return s.questions[s.index], nil
}

// HasNext reports whether advancing the cursor would land on a question.
func (s *QuestionSet) HasNext() bool {
	return s.index+1 < len(s.questions)
}

// AdvanceCursor moves to the next position. It reports false once the set is
// exhausted; the cursor never moves past len.
func (s *QuestionSet) AdvanceCursor() bool {
	if s.index < len(s.questions) {
		s.index++
	}
	return s.index < len(s.questions)
}

// Exhausted reports whether the cursor has passed the last question.
func (s *QuestionSet) Exhausted() bool {
	return s.index >= len(s.questions)
}

// Rewind moves the cursor before the first question.
func (s *QuestionSet) Rewind() {
	s.index = -1
}

// Shuffle permutes the questions. Only valid before start.
func (s *QuestionSet) Shuffle(rnd *rand.Rand) {
	rnd.Shuffle(len(s.questions), func(i, j int) {
		s.questions[i], s.questions[j] = s.questions[j], s.questions[i]
	})
}

func (s *QuestionSet) Len() int { return len(s.questions) }

func (s *QuestionSet) Index() int { return s.index }
