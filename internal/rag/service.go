// Package rag implements document ingestion and retrieval: chunking,
// embedding, vector-store indexing, and similarity search with a lexical
// fallback for queries the embedder cannot represent.
package rag

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

// Service owns the retrieval index. Ingest rebuilds the index from the
// chunk cache so corpus-prepared embedders (TF-IDF) stay consistent as
// documents come and go.
type Service struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	store    domain.VectorStore
	log      *zap.Logger

	mu     sync.Mutex
	chunks []domain.Chunk
}

// NewService creates a retrieval service over the given collaborators.
func NewService(chunker domain.Chunker, embedder domain.Embedder, store domain.VectorStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{chunker: chunker, embedder: embedder, store: store, log: log}
}

// IngestDocument chunks, embeds, and indexes one document. Re-ingesting
// a document id replaces its previous chunks. Returns the chunk count.
func (s *Service) IngestDocument(ctx context.Context, doc domain.Document) (int, error) {
	chunks, err := s.chunker.Chunk(doc)
	if err != nil {
		return 0, fmt.Errorf("chunking %s: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		return 0, fmt.Errorf("document %s contains no indexable text", doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chunks[:0]
	for _, ch := range s.chunks {
		if ch.DocumentID != doc.ID {
			kept = append(kept, ch)
		}
	}
	s.chunks = append(kept, chunks...)

	if err := s.rebuildIndex(ctx); err != nil {
		return 0, err
	}
	s.log.Info("document indexed",
		zap.String("document_id", doc.ID),
		zap.String("filename", doc.Filename),
		zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// DeleteDocument removes a document's chunks from the cache and the store.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, ch := range s.chunks {
		if ch.DocumentID != documentID {
			kept = append(kept, ch)
		}
	}
	s.chunks = kept
	return s.store.DeleteDocument(ctx, documentID)
}

// rebuildIndex re-prepares the embedder over the full corpus and
// re-upserts every cached chunk. Callers hold s.mu.
func (s *Service) rebuildIndex(ctx context.Context) error {
	corpus := make([]string, len(s.chunks))
	for i, ch := range s.chunks {
		corpus[i] = ch.Text
	}
	if err := s.embedder.Prepare(ctx, corpus); err != nil {
		return fmt.Errorf("preparing embedder: %w", err)
	}
	vectors := make([][]float64, len(s.chunks))
	for i := range s.chunks {
		vec, err := s.embedder.Embed(ctx, s.chunks[i].Text)
		if err != nil {
			return fmt.Errorf("embedding chunk %s: %w", s.chunks[i].ChunkID, err)
		}
		vectors[i] = vec
	}
	if len(vectors) == 0 {
		return nil
	}
	if err := s.store.Init(ctx, len(vectors[0])); err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	if err := s.store.Upsert(ctx, s.chunks, vectors); err != nil {
		return fmt.Errorf("upserting vectors: %w", err)
	}
	return nil
}

// Search embeds the query and returns the topK matches, falling back to
// lexical ranking when the query has no representation in vector space.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	zero := true
	for _, v := range vec {
		if v != 0 {
			zero = false
			break
		}
	}
	if zero {
		return s.lexicalSearch(query, topK), nil
	}
	res, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, r := range res {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return s.lexicalSearch(query, topK), nil
	}
	return res, nil
}

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// lexicalSearch ranks cached chunks by Ochiai token overlap with the query.
func (s *Service) lexicalSearch(query string, topK int) []domain.SearchResult {
	s.mu.Lock()
	chunks := make([]domain.Chunk, len(s.chunks))
	copy(chunks, s.chunks)
	s.mu.Unlock()

	qset := toTokenSet(query)
	out := make([]domain.SearchResult, len(chunks))
	for i, ch := range chunks {
		out[i] = domain.SearchResult{Chunk: ch, Score: overlapOchiai(qset, ch.Text)}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(out) {
		topK = len(out)
	}
	return out[:topK]
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// overlapOchiai computes |A∩B| / sqrt(|A||B|) over distinct tokens.
func overlapOchiai(qset map[string]struct{}, text string) float64 {
	stoks := unicodeWordRe.FindAllString(strings.ToLower(text), -1)
	seen := make(map[string]struct{}, len(stoks))
	inter := 0
	for _, t := range stoks {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := qset[t]; ok {
			inter++
		}
	}
	if len(qset) == 0 || len(seen) == 0 {
		return 0
	}
	return float64(inter) / (math.Sqrt(float64(len(qset))) * math.Sqrt(float64(len(seen))))
}
