package quiz_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/knowledge-challenge/quiz-platform/internal/quiz"
)

func newRedisStore(t *testing.T) (*miniredis.Miniredis, *quiz.RedisStore, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, quiz.NewRedisStore(client, time.Minute), client
}

func TestRedisStorePutSetsSnapshotKey(t *testing.T) {
	mr, store, _ := newRedisStore(t)

	s, err := quiz.NewSession("sess-1", "user-1", testQuestions(2), time.Minute, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := store.Put(context.Background(), s); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !mr.Exists("quiz:session:user-1") {
		t.Fatal("expected snapshot key in redis")
	}

	if err := store.Delete(context.Background(), "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("quiz:session:user-1") {
		t.Fatal("expected snapshot key removed")
	}
}

func TestRedisStoreRestoresAcrossRestart(t *testing.T) {
	_, store, client := newRedisStore(t)

	s, err := quiz.NewSession("sess-1", "user-1", testQuestions(3), 10*time.Minute, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	_ = s.SelectAnswer(1, "right-2")
	_ = s.ToggleReview(2)
	s.GoTo(1)
	for i := 0; i < 30; i++ {
		s.Tick()
	}
	if err := store.Put(context.Background(), s); err != nil {
		t.Fatalf("put: %v", err)
	}

	// a fresh store over the same redis stands in for a restarted process
	reloaded := quiz.NewRedisStore(client, time.Minute)
	got, err := reloaded.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get after restart: %v", err)
	}

	view := got.View()
	if view.RemainingSeconds != 600-30 {
		t.Fatalf("remaining time reset: want %d, got %d", 600-30, view.RemainingSeconds)
	}
	if view.Answers[1] != "right-2" {
		t.Fatalf("answers lost: %v", view.Answers)
	}
	if len(view.FlaggedForReview) != 1 || view.FlaggedForReview[0] != 2 {
		t.Fatalf("flags lost: %v", view.FlaggedForReview)
	}
	if view.CurrentIndex != 1 {
		t.Fatalf("current index lost: %d", view.CurrentIndex)
	}
	if !equalQuestionViews(view.Questions, s.View().Questions) {
		t.Fatal("choice order changed across restore")
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	_, store, _ := newRedisStore(t)
	if _, err := store.Get(context.Background(), "nobody"); !errors.Is(err, quiz.ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
}

func equalQuestionViews(a, b []quiz.QuestionView) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text || len(a[i].Choices) != len(b[i].Choices) {
			return false
		}
		for j := range a[i].Choices {
			if a[i].Choices[j] != b[i].Choices[j] {
				return false
			}
		}
	}
	return true
}
