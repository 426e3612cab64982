package session

import (
	"sync"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// MemoryStore is an in-process session store. Lookups from distinct
// session keys do not interfere; per-key locks serialize turns for the
// same session.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Conversation
	locks    map[string]*sync.Mutex
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Conversation),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Get returns the state for a session, creating empty state on first access.
func (s *MemoryStore) Get(sessionID string) (*domain.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[sessionID]
	if !ok {
		c = domain.NewConversation(sessionID)
		s.sessions[sessionID] = c
	}
	return c, nil
}

// Put persists the state for a session.
func (s *MemoryStore) Put(sessionID string, c *domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = c
	return nil
}

// Acquire locks the session for the duration of a turn.
func (s *MemoryStore) Acquire(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}
