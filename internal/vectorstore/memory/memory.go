// Package memory is an in-process vector store using brute-force cosine
// similarity. Used for tests and single-node development.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// Storage keeps chunks and vectors in memory.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	chunks    []domain.Chunk
}

var _ domain.VectorStore = (*Storage)(nil)

// NewStorage creates an empty in-memory vector store.
func NewStorage() *Storage { return &Storage{} }

// Init sets the vector dimension and clears existing data.
func (s *Storage) Init(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.chunks = nil
	return nil
}

// Upsert appends chunks with their vectors.
func (s *Storage) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float64) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.chunks = append(s.chunks, chunks...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK chunks by cosine similarity. Vectors are
// assumed L2-normalized, so the dot product suffices.
func (s *Storage) Search(_ context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	results := make([]domain.SearchResult, len(s.vectors))
	for i := range s.vectors {
		results[i] = domain.SearchResult{Chunk: s.chunks[i], Score: dot(s.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

// DeleteDocument removes all chunks belonging to a document.
func (s *Storage) DeleteDocument(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keptChunks := s.chunks[:0]
	keptVectors := s.vectors[:0]
	for i, ch := range s.chunks {
		if ch.DocumentID == documentID {
			continue
		}
		keptChunks = append(keptChunks, ch)
		keptVectors = append(keptVectors, s.vectors[i])
	}
	s.chunks = keptChunks
	s.vectors = keptVectors
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
