package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Provider supplies a batch of multiple-choice questions. It is opaque beyond
// this contract; the live implementation sits in internal/trivia.
type Provider interface {
	Fetch(ctx context.Context, amount int) ([]Question, error)
}

// Service drives quiz sessions: it acquires question batches, owns the
// per-session countdowns and funnels every intent through the session store so
// the snapshot a reload resumes from is always current.
type Service struct {
	store         Store
	provider      Provider
	questionCount int
	duration      time.Duration
	tickInterval  time.Duration

	mu      sync.Mutex
	rng     *rand.Rand
	timers  map[string]context.CancelFunc // session ID -> countdown cancel
	baseCtx context.Context
	cancel  context.CancelFunc
}

// Option tweaks service behavior; used by tests to shorten ticks and pin the
// shuffle seed.
type Option func(*Service)

func WithTickInterval(d time.Duration) Option { return func(s *Service) { s.tickInterval = d } }
func WithRand(r *rand.Rand) Option            { return func(s *Service) { s.rng = r } }

func NewService(store Store, provider Provider, questionCount int, duration time.Duration, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:         store,
		provider:      provider,
		questionCount: questionCount,
		duration:      duration,
		tickInterval:  time.Second,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		timers:        make(map[string]context.CancelFunc),
		baseCtx:       ctx,
		cancel:        cancel,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Start acquires a fresh batch and opens a new session for the user, replacing
// any previous one. A short or failed batch is fatal: no session is created
// and the caller surfaces the failure with a retry affordance.
func (svc *Service) Start(ctx context.Context, userID string) (*Session, error) {
	questions, err := svc.provider.Fetch(ctx, svc.questionCount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAcquisitionFailed, err)
	}
	if len(questions) < svc.questionCount {
		return nil, fmt.Errorf("%w: got %d of %d questions", ErrAcquisitionFailed, len(questions), svc.questionCount)
	}

	svc.mu.Lock()
	s, err := NewSession(uuid.NewString(), userID, questions, svc.duration, svc.rng)
	svc.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if prev, err := svc.store.Get(ctx, userID); err == nil {
		svc.stopCountdown(prev.ID())
	}
	if err := svc.store.Put(ctx, s); err != nil {
		return nil, err
	}
	svc.startCountdown(s)
	return s, nil
}

// Resume returns the user's live session. When the session was rebuilt from a
// stored snapshot (process restart) its countdown is re-attached here.
func (svc *Service) Resume(ctx context.Context, userID string) (*Session, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.Status() == StatusActive {
		svc.startCountdown(s)
	}
	return s, nil
}

func (svc *Service) Navigate(ctx context.Context, userID, action string, index int) (*Session, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch action {
	case "next":
		s.Next()
	case "previous":
		s.Previous()
	default:
		s.GoTo(index)
	}
	return s, svc.store.Save(ctx, s)
}

func (svc *Service) SelectAnswer(ctx context.Context, userID string, index int, choice string) (*Session, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.SelectAnswer(index, choice); err != nil {
		return nil, err
	}
	return s, svc.store.Save(ctx, s)
}

func (svc *Service) ToggleReview(ctx context.Context, userID string, index int) (*Session, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.ToggleReview(index); err != nil {
		return nil, err
	}
	return s, svc.store.Save(ctx, s)
}

// Submit freezes the session and returns its report. Safe to call any number
// of times, and safe to race with the countdown's auto-submit: whoever flips
// the status first builds the report, everyone else reads it.
func (svc *Service) Submit(ctx context.Context, userID string) (*Report, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	report := s.Submit()
	svc.stopCountdown(s.ID())
	return report, svc.store.Save(ctx, s)
}

// Report returns the report of an already-submitted session.
func (svc *Service) Report(ctx context.Context, userID string) (*Report, error) {
	s, err := svc.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Report()
}

// Close stops every running countdown. Pending sessions stay in the store and
// resume ticking when next loaded.
func (svc *Service) Close() {
	svc.cancel()
	svc.mu.Lock()
	defer svc.mu.Unlock()
	for id, cancel := range svc.timers {
		cancel()
		delete(svc.timers, id)
	}
}

func (svc *Service) startCountdown(s *Session) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if _, running := svc.timers[s.ID()]; running {
		return
	}
	ctx, cancel := context.WithCancel(svc.baseCtx)
	svc.timers[s.ID()] = cancel
	go svc.runCountdown(ctx, s)
}

func (svc *Service) stopCountdown(sessionID string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if cancel, ok := svc.timers[sessionID]; ok {
		cancel()
		delete(svc.timers, sessionID)
	}
}

func (svc *Service) runCountdown(ctx context.Context, s *Session) {
	ticker := time.NewTicker(svc.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, expired := s.Tick()
			_ = svc.store.Save(context.Background(), s)
			if expired || s.Status() == StatusSubmitted {
				svc.stopCountdown(s.ID())
				return
			}
		}
	}
}
