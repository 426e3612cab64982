package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

func TestGetCreatesEmptyStateOnFirstAccess(t *testing.T) {
	s := NewMemoryStore()

	c, err := s.Get("s1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "s1", c.SessionID)
	assert.Empty(t, c.Messages)
	assert.NotNil(t, c.CustomerData)

	again, err := s.Get("s1")
	require.NoError(t, err)
	assert.Same(t, c, again, "repeated access returns the same state")
}

func TestPutOverwrites(t *testing.T) {
	s := NewMemoryStore()

	c := domain.NewConversation("s1")
	c.Append(domain.RoleUser, "hello")
	require.NoError(t, s.Put("s1", c))

	got, err := s.Get("s1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "hello", got.Messages[0].Content)
}

func TestSessionsAreIsolated(t *testing.T) {
	s := NewMemoryStore()

	a, err := s.Get("a")
	require.NoError(t, err)
	a.CustomerData[domain.FieldName] = "Alice"

	b, err := s.Get("b")
	require.NoError(t, err)
	assert.Empty(t, b.CustomerData)
}

func TestAcquireSerializesSameSession(t *testing.T) {
	s := NewMemoryStore()

	release := s.Acquire("s1")

	entered := make(chan struct{})
	go func() {
		r := s.Acquire("s1")
		close(entered)
		r()
	}()

	select {
	case <-entered:
		t.Fatal("second acquire for the same session must block")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestAcquireDistinctSessionsDoNotBlock(t *testing.T) {
	s := NewMemoryStore()

	release := s.Acquire("a")
	defer release()

	done := make(chan struct{})
	go func() {
		r := s.Acquire("b")
		r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire for a distinct session must not block")
	}
}

func TestConcurrentTurnsCount(t *testing.T) {
	s := NewMemoryStore()

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := s.Acquire("s1")
			defer release()
			c, err := s.Get("s1")
			if err != nil {
				t.Error(err)
				return
			}
			c.Append(domain.RoleUser, "x")
			_ = s.Put("s1", c)
		}()
	}
	wg.Wait()

	c, err := s.Get("s1")
	require.NoError(t, err)
	assert.Len(t, c.Messages, turns)
}
