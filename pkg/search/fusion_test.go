package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrag/pkg/types"
)

func keywordResult(id string, score float64) types.SearchResult {
	return types.SearchResult{
		ID:     id,
		Score:  score,
		Source: types.NewStrategySet(types.StrategyKeyword),
	}
}

func TestNormalizeWeights(t *testing.T) {
	cases := []Weights{
		{Vector: 0.6, Graph: 0.3, Keyword: 0.1},
		{Vector: 3, Graph: 2, Keyword: 1},
		{Vector: 1, Graph: 0, Keyword: 0},
		{Vector: 0.01, Graph: 0.02, Keyword: 0.03},
	}
	for _, w := range cases {
		normalized, err := w.Normalize()
		require.NoError(t, err)
		assert.InDelta(t, 1.0, normalized.Vector+normalized.Graph+normalized.Keyword, 1e-9)
	}
}

func TestNormalizeRejectsInvalidWeights(t *testing.T) {
	_, err := Weights{}.Normalize()
	assert.ErrorIs(t, err, types.ErrInvalidWeights)

	_, err = Weights{Vector: -1, Graph: 2, Keyword: 0}.Normalize()
	assert.ErrorIs(t, err, types.ErrInvalidWeights)
}

func TestFuseAccumulatesAcrossStrategies(t *testing.T) {
	weights := Weights{Vector: 0.5, Graph: 0.3, Keyword: 0.2}

	fused, err := Fuse(
		[]types.SearchResult{vectorResult("x", 0.9)},
		[]types.SearchResult{graphResult("x", 0.8)},
		nil,
		weights, 10)
	require.NoError(t, err)
	require.Len(t, fused, 1)

	assert.InDelta(t, 0.9*0.5+0.8*0.3, fused[0].Score, 1e-9)
	assert.Equal(t, "vector+graph", fused[0].Source.String())
}

func TestFuseNoDoubleCountingOrDropping(t *testing.T) {
	weights := DefaultWeights()

	fused, err := Fuse(
		[]types.SearchResult{vectorResult("a", 1.0)},
		[]types.SearchResult{graphResult("b", 1.0)},
		[]types.SearchResult{keywordResult("c", 1.0)},
		weights, 10)
	require.NoError(t, err)
	require.Len(t, fused, 3)

	byID := make(map[string]types.SearchResult)
	for _, r := range fused {
		byID[r.ID] = r
	}
	assert.InDelta(t, 0.6, byID["a"].Score, 1e-9)
	assert.InDelta(t, 0.3, byID["b"].Score, 1e-9)
	assert.InDelta(t, 0.1, byID["c"].Score, 1e-9)
}

func TestFuseSortsDescendingAndCaps(t *testing.T) {
	weights := Weights{Vector: 1, Graph: 0, Keyword: 0}

	fused, err := Fuse(
		[]types.SearchResult{
			vectorResult("low", 0.1),
			vectorResult("high", 0.9),
			vectorResult("mid", 0.5),
		},
		nil, nil, weights, 2)
	require.NoError(t, err)
	require.Len(t, fused, 2)
	assert.Equal(t, "high", fused[0].ID)
	assert.Equal(t, "mid", fused[1].ID)
}

func TestFuseTieBreakPreservesInsertionOrder(t *testing.T) {
	weights := Weights{Vector: 1, Graph: 1, Keyword: 1}

	fused, err := Fuse(
		[]types.SearchResult{vectorResult("v", 0.5)},
		[]types.SearchResult{graphResult("g", 0.5)},
		[]types.SearchResult{keywordResult("k", 0.5)},
		weights, 10)
	require.NoError(t, err)
	require.Len(t, fused, 3)
	assert.Equal(t, "v", fused[0].ID)
	assert.Equal(t, "g", fused[1].ID)
	assert.Equal(t, "k", fused[2].ID)
}

func TestFuseFillsContentFromLaterStrategy(t *testing.T) {
	graphHit := graphResult("x", 0.8)
	graphHit.Content = "resolved content"

	fused, err := Fuse(
		[]types.SearchResult{vectorResult("x", 0.9)},
		[]types.SearchResult{graphHit},
		nil, DefaultWeights(), 10)
	require.NoError(t, err)
	require.Len(t, fused, 1)
	assert.Equal(t, "resolved content", fused[0].Content)
}

func TestFuseEmptyInputs(t *testing.T) {
	fused, err := Fuse(nil, nil, nil, DefaultWeights(), 10)
	require.NoError(t, err)
	assert.Empty(t, fused)
}
