package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps live sessions in a local map (the countdown goroutine needs
// a stable pointer to tick) and mirrors each one as a JSON snapshot in Redis
// with a TTL. If the process restarts inside the attempt window, Get rebuilds
// the session from the snapshot with its remaining time preserved.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

func (r *RedisStore) Put(ctx context.Context, s *Session) error {
	r.mu.Lock()
	r.sessions[s.UserID()] = s
	r.mu.Unlock()
	return r.write(ctx, s)
}

func (r *RedisStore) Get(ctx context.Context, userID string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[userID]
	r.mu.RUnlock()
	if ok {
		return s, nil
	}

	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, err
	}
	s = Restore(snap)

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request may have restored it first; keep the first one
	if existing, ok := r.sessions[userID]; ok {
		return existing, nil
	}
	r.sessions[userID] = s
	return s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	return r.write(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	delete(r.sessions, userID)
	r.mu.Unlock()
	return r.client.Del(ctx, r.key(userID)).Err()
}

func (r *RedisStore) write(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(s.UserID()), raw, r.ttl).Err()
}

func (r *RedisStore) key(userID string) string {
	return "quiz:session:" + userID
}
