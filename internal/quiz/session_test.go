package quiz_test

import (
	"fmt"
	"math/rand"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/knowledge-challenge/quiz-platform/internal/quiz"
)

func testQuestions(n int) []quiz.Question {
	qs := make([]quiz.Question, n)
	for i := range qs {
		qs[i] = quiz.Question{
			Text:          fmt.Sprintf("Question %d?", i+1),
			CorrectAnswer: fmt.Sprintf("right-%d", i+1),
			Distractors:   []string{"wrong-a", "wrong-b", "wrong-c"},
		}
	}
	return qs
}

func newTestSession(t *testing.T, n int, duration time.Duration) *quiz.Session {
	t.Helper()
	s, err := quiz.NewSession("sess-1", "user-1", testQuestions(n), duration, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestNewSessionRejectsEmptyBatch(t *testing.T) {
	_, err := quiz.NewSession("sess-1", "user-1", nil, time.Minute, rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestChoicesContainAllAnswers(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	view := s.View()
	for i, q := range view.Questions {
		if len(q.Choices) != 4 {
			t.Fatalf("question %d: want 4 choices, got %d", i, len(q.Choices))
		}
		found := false
		for _, c := range q.Choices {
			if c == fmt.Sprintf("right-%d", i+1) {
				found = true
			}
		}
		if !found {
			t.Fatalf("question %d: correct answer missing from choices %v", i, q.Choices)
		}
	}
}

func TestChoiceOrderStableAcrossReads(t *testing.T) {
	s := newTestSession(t, 5, time.Minute)
	first := s.View().Questions
	for i := 0; i < 10; i++ {
		again := s.View().Questions
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("choice order changed on re-read: %v vs %v", first, again)
		}
	}

	// same seed, same permutation
	other, err := quiz.NewSession("sess-2", "user-1", testQuestions(5), time.Minute, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if !reflect.DeepEqual(first, other.View().Questions) {
		t.Fatal("same seed produced a different permutation")
	}
}

func TestNavigationSaturatesAtBoundaries(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)

	s.Previous()
	if got := s.View().CurrentIndex; got != 0 {
		t.Fatalf("previous at index 0: want 0, got %d", got)
	}

	s.GoTo(2)
	s.Next()
	if got := s.View().CurrentIndex; got != 2 {
		t.Fatalf("next at last index: want 2, got %d", got)
	}
}

func TestGoToOutOfRangeIsNoOp(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	s.GoTo(1)

	s.GoTo(-1)
	if got := s.View().CurrentIndex; got != 1 {
		t.Fatalf("goto -1: want index 1, got %d", got)
	}
	s.GoTo(3)
	if got := s.View().CurrentIndex; got != 1 {
		t.Fatalf("goto past end: want index 1, got %d", got)
	}
}

func TestSelectAnswerOverwrites(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	if err := s.SelectAnswer(0, "wrong-a"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.SelectAnswer(0, "right-1"); err != nil {
		t.Fatalf("re-select: %v", err)
	}
	answers := s.View().Answers
	if len(answers) != 1 || answers[0] != "right-1" {
		t.Fatalf("want exactly one answer right-1, got %v", answers)
	}
}

func TestSelectAnswerInvalidIndex(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	if err := s.SelectAnswer(7, "x"); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestScoreCountsOnlyExactMatches(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	// question 0 right, question 1 unanswered, question 2 wrong
	if err := s.SelectAnswer(0, "right-1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.SelectAnswer(2, "wrong-b"); err != nil {
		t.Fatalf("select: %v", err)
	}

	report := s.Submit()
	if report.Score != 1 {
		t.Fatalf("want score 1, got %d", report.Score)
	}
	if report.Score > report.Total {
		t.Fatalf("score %d exceeds total %d", report.Score, report.Total)
	}
	if report.Total != 3 {
		t.Fatalf("want total 3, got %d", report.Total)
	}
}

func TestSubmitIsIdempotent(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)
	_ = s.SelectAnswer(1, "right-2")

	first := s.Submit()
	second := s.Submit()
	if first != second {
		t.Fatal("second submit built a new report")
	}

	// intents after submit must not reach the report
	if err := s.SelectAnswer(0, "right-1"); err == nil {
		t.Fatal("expected answer after submit to be rejected")
	}
	if err := s.ToggleReview(0); err == nil {
		t.Fatal("expected review toggle after submit to be rejected")
	}
	third := s.Submit()
	if !reflect.DeepEqual(first, third) {
		t.Fatal("report changed after post-submit intents")
	}
	if third.Score != 1 {
		t.Fatalf("want score 1, got %d", third.Score)
	}
}

func TestToggleReviewIsSelfInverse(t *testing.T) {
	s := newTestSession(t, 3, time.Minute)

	if err := s.ToggleReview(1); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := s.View().FlaggedForReview; len(got) != 1 || got[0] != 1 {
		t.Fatalf("want [1], got %v", got)
	}
	if err := s.ToggleReview(1); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := s.View().FlaggedForReview; len(got) != 0 {
		t.Fatalf("want empty flag set, got %v", got)
	}
}

func TestTickReachingZeroAutoSubmitsOnce(t *testing.T) {
	s := newTestSession(t, 2, 2*time.Second)
	_ = s.SelectAnswer(0, "right-1")

	if rem, expired := s.Tick(); rem != 1 || expired {
		t.Fatalf("first tick: want (1,false), got (%d,%v)", rem, expired)
	}
	rem, expired := s.Tick()
	if rem != 0 || !expired {
		t.Fatalf("second tick: want (0,true), got (%d,%v)", rem, expired)
	}
	if s.Status() != quiz.StatusSubmitted {
		t.Fatalf("want submitted, got %s", s.Status())
	}

	// further ticks are no-ops on a submitted session
	if rem, expired := s.Tick(); rem != 0 || expired {
		t.Fatalf("tick after submit: want (0,false), got (%d,%v)", rem, expired)
	}

	// same report shape as a manual submit
	report, err := s.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Score != 1 || report.Total != 2 {
		t.Fatalf("want 1/2, got %d/%d", report.Score, report.Total)
	}
	if report != s.Submit() {
		t.Fatal("manual submit after timeout returned a different report")
	}
}

func TestConcurrentSubmitProducesOneReport(t *testing.T) {
	s := newTestSession(t, 5, time.Minute)
	_ = s.SelectAnswer(0, "right-1")

	const n = 16
	reports := make([]*quiz.Report, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i] = s.Submit()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if reports[i] != reports[0] {
			t.Fatal("racing submits produced distinct reports")
		}
	}
}

func TestCurrentIndexAlwaysInBounds(t *testing.T) {
	s := newTestSession(t, 4, time.Minute)
	moves := []func(){
		func() { s.Next() }, func() { s.Next() }, func() { s.Previous() },
		func() { s.GoTo(3) }, func() { s.Next() }, func() { s.GoTo(-5) },
		func() { s.GoTo(100) }, func() { s.Previous() },
	}
	for _, mv := range moves {
		mv()
		idx := s.View().CurrentIndex
		if idx < 0 || idx >= 4 {
			t.Fatalf("current index %d out of bounds", idx)
		}
	}
}
