package game

import (
	"math/rand"
	"sync"
	"time"

	"guessgame-service/internal/domain"
)

// DefaultAdvanceDelay is the pause between a correct answer and the next question.
const DefaultAdvanceDelay = 60 * time.Second

// Timer is a scheduled callback that can be stopped.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it through realAfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Options tunes a Session. Zero values select defaults.
type Options struct {
	AdvanceDelay time.Duration
	Shuffle      bool
	Rand         *rand.Rand
	Now          func() time.Time
	AfterFunc    AfterFunc
}

// GuessResult summarizes the outcome of a guess for the guessing player.
type GuessResult struct {
	Correct    bool
	Points     int
	TotalScore int
	Rank       int
}

// HintResult describes a revealed hint.
type HintResult struct {
	Text            string
	Number          int
	Remaining       int
	PotentialPoints int
}

// Session is the game state machine. All mutations are serialized by one
// mutex; the auto-advance timer re-enters through the same mutex and checks a
// generation token so a canceled or superseded timer never fires twice.
type Session struct {
	ledger    *ScoreLedger
	delay     time.Duration
	shuffle   bool
	rnd       *rand.Rand
	afterFunc AfterFunc
	events    *eventQueue

	mu        sync.Mutex
	state     domain.GameState
	questions *QuestionSet
	hints     *HintTracker
	timer     Timer
	timerGen  uint64
}

// NewSession builds an idle session over the given questions and ledger.
// Callers must Close the session to stop its event pump.
func NewSession(questions *QuestionSet, ledger *ScoreLedger, opts Options) *Session {
	if questions == nil {
		questions = NewQuestionSet(nil)
	}
	if ledger == nil {
		ledger = NewScoreLedger(opts.Now)
	}
	if opts.AdvanceDelay <= 0 {
		opts.AdvanceDelay = DefaultAdvanceDelay
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = realAfterFunc
	}
	return &Session{
		ledger:    ledger,
		delay:     opts.AdvanceDelay,
		shuffle:   opts.Shuffle,
		rnd:       opts.Rand,
		afterFunc: opts.AfterFunc,
		events:    newEventQueue(),
		state:     domain.StateIdle,
		questions: questions,
		hints:     NewHintTracker(0),
	}
}

// Events returns the outbound event stream. It is closed by Close.
func (s *Session) Events() <-chan domain.Event {
	return s.events.out
}

// Close cancels any pending timer and stops event delivery.
func (s *Session) Close() {
	s.mu.Lock()
	s.cancelTimerLocked()
	s.mu.Unlock()
	s.events.close()
}

// Ledger exposes the score ledger for read-only queries.
func (s *Session) Ledger() *ScoreLedger {
	return s.ledger
}

// Load replaces the question set. Not allowed while a game is running.
func (s *Session) Load(questions *QuestionSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running() {
		return domain.ErrInvalidTransition
	}
	s.questions = questions
	return nil
}

// Register adds a player in any state. Re-registering is a no-op.
func (s *Session) Register(playerID, displayName string) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, added := s.ledger.Register(playerID, displayName)
	if added {
		s.events.push(domain.PlayerJoined{
			PlayerID:     p.ID,
			DisplayName:  p.DisplayName,
			TotalPlayers: s.ledger.Len(),
		})
	}
	return p, added
}

// Start opens the first question. Valid from Idle or Ended; scores carry over.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running() {
		return domain.ErrInvalidTransition
	}
	if s.ledger.Len() == 0 {
		return domain.ErrNoPlayers
	}
	if s.questions.Len() == 0 {
		return domain.ErrQuestionSetEmpty
	}

	s.cancelTimerLocked()
	s.questions.Rewind()
	if s.shuffle {
		s.questions.Shuffle(s.rnd)
	}
	s.openNextLocked()
	return nil
}

// SubmitGuess evaluates a guess against the active question. The first
// correct guess closes the question; later guesses get ErrQuestionClosed.
func (s *Session) SubmitGuess(playerID, text string) (GuessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running() {
		return GuessResult{}, domain.ErrInvalidTransition
	}
	player, ok := s.ledger.Player(playerID)
	if !ok {
		return GuessResult{}, domain.ErrNotRegistered
	}
	if s.state == domain.StateAwaitingAdvance {
		return GuessResult{}, domain.ErrQuestionClosed
	}
	q, err := s.questions.Current()
	if err != nil {
		return GuessResult{}, err
	}

	if !q.Accepts(text) {
		s.events.push(domain.AnswerRejected{PlayerID: playerID})
		return GuessResult{}, nil
	}

	hintsUsed := s.hints.Count()
	points := domain.AwardFor(hintsUsed)
	total, err := s.ledger.Award(playerID, points)
	if err != nil {
		return GuessResult{}, err
	}

	s.state = domain.StateAwaitingAdvance
	s.scheduleAdvanceLocked()

	rank := s.ledger.Snapshot().RankOf(playerID)
	s.events.push(domain.AnswerAccepted{
		PlayerID:      playerID,
		DisplayName:   player.DisplayName,
		Answer:        q.Answers[0],
		PointsAwarded: points,
		HintsUsed:     hintsUsed,
		TotalScore:    total,
		Rank:          rank,
		NextIn:        s.delay,
	})
	return GuessResult{Correct: true, Points: points, TotalScore: total, Rank: rank}, nil
}

// RequestHint reveals the next hint of the active question.
func (s *Session) RequestHint(playerID string) (HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running() {
		return HintResult{}, domain.ErrInvalidTransition
	}
	if _, ok := s.ledger.Player(playerID); !ok {
		return HintResult{}, domain.ErrNotRegistered
	}
	if s.state == domain.StateAwaitingAdvance {
		return HintResult{}, domain.ErrQuestionClosed
	}
	q, err := s.questions.Current()
	if err != nil {
		return HintResult{}, err
	}

	pos, err := s.hints.Reveal()
	if err != nil {
		return HintResult{}, err
	}
	res := HintResult{
		Text:            q.Hints[pos],
		Number:          pos + 1,
		Remaining:       s.hints.Remaining(),
		PotentialPoints: domain.AwardFor(s.hints.Count()),
	}
	s.events.push(domain.HintRevealed{
		PlayerID:        playerID,
		Text:            res.Text,
		Number:          res.Number,
		Remaining:       res.Remaining,
		PotentialPoints: res.PotentialPoints,
	})
	return res, nil
}

// Next advances immediately, skipping the countdown or an unanswered question.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running() {
		return domain.ErrInvalidTransition
	}
	s.cancelTimerLocked()
	s.openNextLocked()
	return nil
}

// End finishes the game from any non-idle state and returns the final leaderboard.
func (s *Session) End() (domain.Leaderboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == domain.StateIdle {
		return domain.Leaderboard{}, domain.ErrInvalidTransition
	}
	s.cancelTimerLocked()
	return s.endLocked(domain.EndByAdmin), nil
}

// ResetScores zeroes every score; registrations are kept.
func (s *Session) ResetScores() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	s.events.push(domain.ScoresReset{Players: s.ledger.Len()})
}

// Scores returns the current leaderboard without taking the session lock.
func (s *Session) Scores() domain.Leaderboard {
	return s.ledger.Snapshot()
}

// Status returns a consistent view of the lifecycle state.
func (s *Session) Status() domain.GameStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.GameStatus{
		State:         s.state,
		QuestionIndex: s.questions.Index(),
		QuestionCount: s.questions.Len(),
		Players:       s.ledger.Len(),
	}
	if s.running() {
		if q, err := s.questions.Current(); err == nil {
			st.ImageRef = q.ImageRef
		}
		st.HintsRevealed = s.hints.Count()
		st.HintsRemaining = s.hints.Remaining()
	}
	return st
}

// State returns the lifecycle state.
func (s *Session) State() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) running() bool {
	return s.state == domain.StateActive || s.state == domain.StateAwaitingAdvance
}

func (s *Session) openNextLocked() {
	if !s.questions.AdvanceCursor() {
		s.endLocked(domain.EndExhausted)
		return
	}
	q, _ := s.questions.Current()
	s.hints.Reset(len(q.Hints))
	s.state = domain.StateActive
	s.events.push(domain.QuestionOpened{
		Index:    s.questions.Index(),
		Total:    s.questions.Len(),
		ImageRef: q.ImageRef,
		Hints:    len(q.Hints),
	})
}

func (s *Session) endLocked(reason domain.GameEndReason) domain.Leaderboard {
	s.state = domain.StateEnded
	lb := s.ledger.Snapshot()
	s.events.push(domain.GameEnded{Reason: reason, Leaderboard: lb})
	return lb
}

func (s *Session) scheduleAdvanceLocked() {
	s.cancelTimerLocked()
	gen := s.timerGen
	s.timer = s.afterFunc(s.delay, func() { s.onAdvanceTimer(gen) })
}

func (s *Session) cancelTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) onAdvanceTimer(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.timerGen || s.state != domain.StateAwaitingAdvance {
		return
	}
	s.timer = nil
	s.openNextLocked()
}
