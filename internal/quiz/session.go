package quiz

import (
	"math/rand"
	"sort"
	"sync"
	"time"
)

// Session is the aggregate root for one quiz attempt. All methods are safe for
// concurrent use: request handlers and the countdown tick are the only two
// writers, and both go through the session mutex. Once the status flips to
// submitted the answers, review flags and remaining time are frozen; every
// mutator becomes a no-op or an error and Submit keeps returning the same
// report.
type Session struct {
	mu sync.Mutex

	id     string
	userID string

	questions        []Question
	currentIndex     int
	answers          map[int]string
	flagged          map[int]bool
	remainingSeconds int
	status           Status
	startedAt        int64

	report *Report
}

// NewSession builds a session from a complete question batch. Each question's
// choice order is drawn once from rng and never reshuffled afterwards, so the
// correct answer stays put across renders of the same session.
func NewSession(id, userID string, questions []Question, duration time.Duration, rng *rand.Rand) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	qs := make([]Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Choices = shuffledChoices(qs[i], rng)
	}
	return &Session{
		id:               id,
		userID:           userID,
		questions:        qs,
		answers:          map[int]string{},
		flagged:          map[int]bool{},
		remainingSeconds: int(duration / time.Second),
		status:           StatusActive,
		startedAt:        time.Now().Unix(),
	}, nil
}

func shuffledChoices(q Question, rng *rand.Rand) []string {
	choices := make([]string, 0, len(q.Distractors)+1)
	choices = append(choices, q.Distractors...)
	choices = append(choices, q.CorrectAnswer)
	rng.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

// Restore rebuilds a session from a stored snapshot, preserving the choice
// order, the answers and the remaining time.
func Restore(snap Snapshot) *Session {
	answers := make(map[int]string, len(snap.Answers))
	for k, v := range snap.Answers {
		answers[k] = v
	}
	flagged := make(map[int]bool, len(snap.FlaggedForReview))
	for _, i := range snap.FlaggedForReview {
		flagged[i] = true
	}
	return &Session{
		id:               snap.ID,
		userID:           snap.UserID,
		questions:        snap.Questions,
		currentIndex:     snap.CurrentIndex,
		answers:          answers,
		flagged:          flagged,
		remainingSeconds: snap.RemainingSeconds,
		status:           snap.Status,
		startedAt:        snap.StartedAt,
		report:           snap.Report,
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// GoTo moves to an absolute question index. An out-of-range target is a no-op
// rather than an error: it can only come from a presentation bug, not from
// user input.
func (s *Session) GoTo(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return
	}
	if index < 0 || index >= len(s.questions) {
		return
	}
	s.currentIndex = index
}

// Next advances by one question, saturating at the last index.
func (s *Session) Next() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return
	}
	if s.currentIndex < len(s.questions)-1 {
		s.currentIndex++
	}
}

// Previous moves back by one question, saturating at index zero.
func (s *Session) Previous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return
	}
	if s.currentIndex > 0 {
		s.currentIndex--
	}
}

// SelectAnswer records the chosen choice for a question, replacing any prior
// selection for that index. A question holds at most one recorded answer.
func (s *Session) SelectAnswer(index int, choice string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return ErrSessionSubmitted
	}
	if index < 0 || index >= len(s.questions) {
		return ErrInvalidIndex
	}
	s.answers[index] = choice
	return nil
}

// ToggleReview flips the review flag for a question: set if absent, cleared if
// present. Flags carry no scoring weight.
func (s *Session) ToggleReview(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return ErrSessionSubmitted
	}
	if index < 0 || index >= len(s.questions) {
		return ErrInvalidIndex
	}
	if s.flagged[index] {
		delete(s.flagged, index)
	} else {
		s.flagged[index] = true
	}
	return nil
}

// Tick decrements the countdown by one second. When it reaches zero the
// session submits itself through the same path as a manual submit, and expired
// reports true so the caller can stop ticking. Ticks after submission are
// no-ops.
func (s *Session) Tick() (remaining int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusSubmitted {
		return s.remainingSeconds, false
	}
	if s.remainingSeconds > 0 {
		s.remainingSeconds--
	}
	if s.remainingSeconds == 0 {
		s.submitLocked()
		return 0, true
	}
	return s.remainingSeconds, false
}

// Submit freezes the session and returns its report. The first caller — user
// request or countdown — wins; any later call gets the already-built report
// back without recomputation.
func (s *Session) Submit() *Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitLocked()
}

func (s *Session) submitLocked() *Report {
	if s.status == StatusSubmitted {
		return s.report
	}
	s.status = StatusSubmitted

	score := 0
	for i, q := range s.questions {
		if ans, ok := s.answers[i]; ok && ans == q.CorrectAnswer {
			score++
		}
	}
	answers := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	questions := make([]Question, len(s.questions))
	copy(questions, s.questions)

	s.report = &Report{
		Questions:   questions,
		Answers:     answers,
		Score:       score,
		Total:       len(questions),
		SubmittedAt: time.Now().Unix(),
	}
	return s.report
}

// Report returns the report of a submitted session.
func (s *Session) Report() (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusSubmitted {
		return nil, ErrSessionActive
	}
	return s.report, nil
}

// View renders the answer-key-free state served while the quiz is running.
func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	qs := make([]QuestionView, len(s.questions))
	for i, q := range s.questions {
		qs[i] = QuestionView{Text: q.Text, Choices: q.Choices}
	}
	answers := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return SessionView{
		ID:               s.id,
		Questions:        qs,
		CurrentIndex:     s.currentIndex,
		Answers:          answers,
		FlaggedForReview: s.flaggedSliceLocked(),
		RemainingSeconds: s.remainingSeconds,
		Status:           s.status,
	}
}

// Snapshot serializes the full session state for the store.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Snapshot{
		ID:               s.id,
		UserID:           s.userID,
		Questions:        s.questions,
		CurrentIndex:     s.currentIndex,
		Answers:          answers,
		FlaggedForReview: s.flaggedSliceLocked(),
		RemainingSeconds: s.remainingSeconds,
		Status:           s.status,
		StartedAt:        s.startedAt,
		Report:           s.report,
	}
}

func (s *Session) flaggedSliceLocked() []int {
	out := make([]int, 0, len(s.flagged))
	for i := range s.flagged {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}
