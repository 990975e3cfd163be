package quiz

import (
	"context"
	"sync"
)

// Store holds at most one live session per user. Starting a new quiz replaces
// whatever session the user had before; the old attempt is gone.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, userID string) (*Session, error)
	// Save persists the session's current snapshot. The in-memory store keeps
	// live pointers so this is a no-op there; the Redis store rewrites the
	// snapshot and refreshes its TTL.
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
}

// MemoryStore is the default single-process session store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID()] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, userID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, _ *Session) error { return nil }

func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}
