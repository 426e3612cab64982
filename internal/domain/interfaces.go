package domain

import "context"

// Generator phrases prompts and closing messages through a language model.
// The system instruction is sent ahead of the prior message sequence.
type Generator interface {
	Generate(ctx context.Context, system string, history []Message) (string, error)
}

// InterestLogger records a completed interview. Called at most once per
// completed interview; returns the collaborator's confirmation message.
type InterestLogger interface {
	LogInterest(ctx context.Context, record InterestRecord) (string, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// VectorStore persists vectors and supports similarity search.
type VectorStore interface {
	Init(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, chunks []Chunk, vectors [][]float64) error
	Search(ctx context.Context, vector []float64, topK int) ([]SearchResult, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Summarizer produces a brief extractive summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// WebSearcher answers a query from the open web when retrieval comes up
// empty. An empty result with nil error means nothing useful was found.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}
