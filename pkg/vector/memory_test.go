package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrag/pkg/types"
)

func indexedChunk(content string, modality types.ModalityType, embedding []float32) *types.Chunk {
	chunk := types.NewChunk(content)
	chunk.Modality = modality
	chunk.Metadata.Modality = modality
	chunk.Embedding = embedding
	return chunk
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	exact := indexedChunk("exact match", types.TextModality, []float32{1, 0, 0})
	similar := indexedChunk("close match", types.TextModality, []float32{0.9, 0.1, 0})
	far := indexedChunk("unrelated", types.TextModality, []float32{0, 0, 1})
	require.NoError(t, idx.Upsert(ctx, []*types.Chunk{far, similar, exact}))

	results, err := idx.Search(ctx, []float32{1, 0, 0}, SearchOptions{TopK: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, exact.ID, results[0].ID)
	assert.Equal(t, similar.ID, results[1].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "vector", results[0].Source.String())
}

func TestSearchAppliesScoreThreshold(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []*types.Chunk{
		indexedChunk("near", types.TextModality, []float32{1, 0}),
		indexedChunk("orthogonal", types.TextModality, []float32{0, 1}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, SearchOptions{TopK: 10, ScoreThreshold: 0.5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Content)
}

func TestSearchFiltersByModality(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	require.NoError(t, idx.Upsert(ctx, []*types.Chunk{
		indexedChunk("spoken words", types.AudioModality, []float32{1, 0}),
		indexedChunk("written words", types.TextModality, []float32{1, 0}),
	}))

	results, err := idx.Search(ctx, []float32{1, 0}, SearchOptions{TopK: 10, Modality: types.AudioModality})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.AudioModality, results[0].Modality)
}

func TestSearchHonorsTopK(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Upsert(ctx, []*types.Chunk{
			indexedChunk("chunk", types.TextModality, []float32{1, float32(i) * 0.1}),
		}))
	}

	results, err := idx.Search(ctx, []float32{1, 0}, SearchOptions{TopK: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchValidatesInput(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	_, err := idx.Search(ctx, nil, SearchOptions{TopK: 5})
	assert.ErrorIs(t, err, types.ErrEmptyQuery)

	_, err = idx.Search(ctx, []float32{1}, SearchOptions{TopK: 0})
	assert.ErrorIs(t, err, types.ErrInvalidLimit)
}

func TestRetrieveByIDsSkipsMissingAndZeroesScores(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	a := indexedChunk("alpha", types.TextModality, []float32{1, 0})
	b := indexedChunk("beta", types.TextModality, []float32{0, 1})
	require.NoError(t, idx.Upsert(ctx, []*types.Chunk{a, b}))

	results, err := idx.RetrieveByIDs(ctx, []string{a.ID, "missing", b.ID})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, a.ID, results[0].ID)
	assert.Equal(t, 0.0, results[0].Score)
	assert.Equal(t, 0.0, results[1].Score)
}

func TestDeleteRemovesFromSearch(t *testing.T) {
	idx := NewMemoryIndex(nil)
	ctx := context.Background()

	chunk := indexedChunk("ephemeral", types.TextModality, []float32{1, 0})
	require.NoError(t, idx.Upsert(ctx, []*types.Chunk{chunk}))
	require.NoError(t, idx.Delete(ctx, chunk.ID))

	results, err := idx.Search(ctx, []float32{1, 0}, SearchOptions{TopK: 5})
	require.NoError(t, err)
	assert.Empty(t, results)

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCosineSimilarityEdgeCases(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{1}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
}
