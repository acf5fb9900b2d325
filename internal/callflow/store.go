package callflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// SessionStore persists call state between turns, keyed by session ID.
// Implementations must guarantee read-after-write consistency for the same
// session: a Save observed by the next Get of that ID.
type SessionStore interface {
	// Get returns the session, or (nil, nil) when none exists.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps sessions in process memory. Used by tests, the
// call simulator, and single-instance deployments.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string][]byte)}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	data, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session store: unmarshal %s: %w", id, err)
	}
	return &sess, nil
}

func (s *MemorySessionStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session store: session id required")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session store: marshal %s: %w", sess.ID, err)
	}
	s.mu.Lock()
	s.sessions[sess.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
