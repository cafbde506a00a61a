package lexical

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrag/pkg/types"
)

func textChunk(content string) *types.Chunk {
	return types.NewChunk(content)
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"marie", "curie", "won", "2", "nobel", "prizes!"},
		Tokenize("Marie Curie won 2 Nobel Prizes!"))
	assert.Empty(t, Tokenize("   \t\n  "))
}

func TestTokenizeKeepsPunctuationAttached(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []*types.Chunk{textChunk("Stanford, University.")}))

	results, err := idx.Search(ctx, "Stanford", 10, "")
	require.NoError(t, err)
	assert.Empty(t, results, `"stanford," is a different term than "stanford"`)

	results, err = idx.Search(ctx, "Stanford,", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearchRanksByTermRelevance(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	radium := textChunk("radium radium radium was isolated in the laboratory")
	mention := textChunk("the paper briefly mentions radium among other elements")
	unrelated := textChunk("the weather in Paris was mild that spring")
	require.NoError(t, idx.Add(ctx, []*types.Chunk{mention, unrelated, radium}))

	results, err := idx.Search(ctx, "radium", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, radium.ID, results[0].ID)
	assert.Equal(t, mention.ID, results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	assert.Equal(t, "keyword", results[0].Source.String())
}

func TestSearchExcludesZeroScores(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, []*types.Chunk{
		textChunk("polonium discovery announcement"),
		textChunk("completely different topic entirely"),
	}))

	results, err := idx.Search(ctx, "polonium", 10, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	for _, r := range results {
		assert.Greater(t, r.Score, 0.0)
	}
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	chunk := textChunk("The Sorbonne appointed Marie Curie as professor.")
	require.NoError(t, idx.Add(ctx, []*types.Chunk{chunk}))

	results, err := idx.Search(ctx, "SORBONNE", 5, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, chunk.ID, results[0].ID)
}

func TestSearchFiltersByModality(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	audio := textChunk("interview transcript about pitchblende")
	audio.Modality = types.AudioModality
	text := textChunk("written notes about pitchblende")
	require.NoError(t, idx.Add(ctx, []*types.Chunk{audio, text}))

	results, err := idx.Search(ctx, "pitchblende", 10, types.AudioModality)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, audio.ID, results[0].ID)
}

func TestSearchHonorsTopK(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Add(ctx, []*types.Chunk{textChunk("uranium sample measurement")}))
	}

	results, err := idx.Search(ctx, "uranium", 3, "")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchValidatesInput(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	_, err := idx.Search(ctx, "  ", 5, "")
	assert.ErrorIs(t, err, types.ErrEmptyQuery)

	_, err = idx.Search(ctx, "query", 0, "")
	assert.ErrorIs(t, err, types.ErrInvalidLimit)
}

func TestRemoveUpdatesStatistics(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	chunk := textChunk("thorium emission readings")
	require.NoError(t, idx.Add(ctx, []*types.Chunk{chunk}))
	require.NoError(t, idx.Remove(ctx, chunk.ID))
	require.NoError(t, idx.Remove(ctx, "never-indexed"))

	count, err := idx.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	results, err := idx.Search(ctx, "thorium", 5, "")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestAddReplacesExistingDocument(t *testing.T) {
	idx := NewIndex(nil)
	ctx := context.Background()

	chunk := textChunk("original text about barium")
	require.NoError(t, idx.Add(ctx, []*types.Chunk{chunk}))

	chunk.Content = "revised text about actinium"
	require.NoError(t, idx.Add(ctx, []*types.Chunk{chunk}))

	results, err := idx.Search(ctx, "barium", 5, "")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = idx.Search(ctx, "actinium", 5, "")
	require.NoError(t, err)
	require.Len(t, results, 1)
}
