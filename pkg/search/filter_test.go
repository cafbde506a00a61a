package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/graphrag/pkg/types"
)

func vectorResult(id string, score float64) types.SearchResult {
	return types.SearchResult{
		ID:     id,
		Score:  score,
		Source: types.NewStrategySet(types.StrategyVector),
	}
}

func graphResult(id string, score float64) types.SearchResult {
	return types.SearchResult{
		ID:     id,
		Score:  score,
		Source: types.NewStrategySet(types.StrategyGraph),
	}
}

func TestFilterKeepsOnlyGraphConnectedChunks(t *testing.T) {
	vectorResults := []types.SearchResult{
		vectorResult("a", 0.9),
		vectorResult("b", 0.8),
		vectorResult("c", 0.7),
	}
	graphResults := []types.SearchResult{
		graphResult("b", 0.8),
	}

	filtered := FilterByGraph(vectorResults, graphResults, nil)
	assert.Len(t, filtered, 1)
	assert.Equal(t, "b", filtered[0].ID)
}

func TestFilterBypassedWhenGraphEmpty(t *testing.T) {
	vectorResults := []types.SearchResult{
		vectorResult("a", 0.9),
		vectorResult("b", 0.8),
	}

	filtered := FilterByGraph(vectorResults, nil, nil)
	assert.Equal(t, vectorResults, filtered)
}

func TestFilterPreservesVectorOrder(t *testing.T) {
	vectorResults := []types.SearchResult{
		vectorResult("a", 0.9),
		vectorResult("b", 0.8),
		vectorResult("c", 0.7),
	}
	graphResults := []types.SearchResult{
		graphResult("c", 1.0),
		graphResult("a", 0.5),
	}

	filtered := FilterByGraph(vectorResults, graphResults, nil)
	assert.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].ID)
	assert.Equal(t, "c", filtered[1].ID)
}

func TestFilterCanExcludeEverything(t *testing.T) {
	vectorResults := []types.SearchResult{vectorResult("a", 0.9)}
	graphResults := []types.SearchResult{graphResult("z", 1.0)}

	filtered := FilterByGraph(vectorResults, graphResults, nil)
	assert.Empty(t, filtered)
}
