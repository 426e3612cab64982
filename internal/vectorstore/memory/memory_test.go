package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nuaddam/scb-protect-test-chatbot/internal/domain"
)

func chunk(docID, chunkID, text string) domain.Chunk {
	return domain.Chunk{DocumentID: docID, ChunkID: chunkID, Text: text}
}

func seed(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage()
	ctx := context.Background()
	require.NoError(t, s.Init(ctx, 3))
	require.NoError(t, s.Upsert(ctx,
		[]domain.Chunk{
			chunk("a", "a:0", "alpha"),
			chunk("a", "a:1", "beta"),
			chunk("b", "b:0", "gamma"),
		},
		[][]float64{
			{1, 0, 0},
			{0, 1, 0},
			{0, 0, 1},
		},
	))
	return s
}

func TestSearchRanksByCosine(t *testing.T) {
	s := seed(t)

	res, err := s.Search(context.Background(), []float64{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "a:0", res[0].Chunk.ChunkID)
	assert.InDelta(t, 0.9, res[0].Score, 1e-9)
	assert.Equal(t, "a:1", res[1].Chunk.ChunkID)
}

func TestSearchTopKClampedToSize(t *testing.T) {
	s := seed(t)

	res, err := s.Search(context.Background(), []float64{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestInitRejectsInvalidDimension(t *testing.T) {
	s := NewStorage()
	assert.Error(t, s.Init(context.Background(), 0))
}

func TestInitClearsExistingData(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, 2))
	res, err := s.Search(ctx, []float64{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestUpsertRejectsMismatchedLengths(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	require.NoError(t, s.Init(ctx, 2))

	err := s.Upsert(ctx, []domain.Chunk{chunk("a", "a:0", "x")}, nil)
	assert.Error(t, err)
}

func TestUpsertRejectsWrongDimension(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()
	require.NoError(t, s.Init(ctx, 2))

	err := s.Upsert(ctx, []domain.Chunk{chunk("a", "a:0", "x")}, [][]float64{{1, 0, 0}})
	assert.Error(t, err)
}

func TestDeleteDocumentRemovesItsChunks(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	require.NoError(t, s.DeleteDocument(ctx, "a"))

	res, err := s.Search(ctx, []float64{1, 1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b:0", res[0].Chunk.ChunkID)
}
