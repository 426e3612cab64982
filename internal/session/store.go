// Package session holds per-session conversation state. The store is an
// injected abstraction so the persistence backend and concurrency
// discipline stay swappable and testable.
package session

import "github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"

// Store persists conversation state keyed by session id.
//
// Acquire provides per-key mutual exclusion: turns for the same session
// id run one at a time, while turns for distinct sessions proceed in
// parallel. Callers must invoke the returned release function when the
// turn finishes.
type Store interface {
	// Get returns the state for a session, creating empty state on
	// first access.
	Get(sessionID string) (*domain.Conversation, error)
	// Put persists the state for a session.
	Put(sessionID string, c *domain.Conversation) error
	// Acquire locks the session for the duration of a turn.
	Acquire(sessionID string) (release func())
}
