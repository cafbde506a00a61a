package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelevanceForDistance(t *testing.T) {
	assert.Equal(t, 1.0, RelevanceForDistance(0))
	assert.Equal(t, 0.8, RelevanceForDistance(1))
	assert.Equal(t, 0.5, RelevanceForDistance(2))
	assert.Equal(t, 0.3, RelevanceForDistance(3))
	assert.Equal(t, 0.3, RelevanceForDistance(10))
}

func TestRelevanceDecaysMonotonically(t *testing.T) {
	prev := RelevanceForDistance(0)
	for d := 1; d <= 6; d++ {
		cur := RelevanceForDistance(d)
		assert.LessOrEqual(t, cur, prev, "relevance must not increase at distance %d", d)
		assert.Greater(t, cur, 0.0)
		prev = cur
	}
}

func TestEdgeLabelSanitization(t *testing.T) {
	assert.Equal(t, "WORKS_FOR", edgeLabel("WORKS_FOR"))
	assert.Equal(t, "WORKS_FORX", edgeLabel("WORKS_FOR`]->(x) X"))
	assert.Equal(t, "RELATED_TO", edgeLabel("!!!"))
	assert.Equal(t, "RELATED_TO", edgeLabel(""))
}
