package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMultiWordRun(t *testing.T) {
	extractor := NewEntityNameExtractor()

	names := extractor.Extract("Who works in Stanford University")
	assert.Equal(t, []string{"Stanford University", "Stanford", "University"}, names)
}

func TestExtractSingleWord(t *testing.T) {
	extractor := NewEntityNameExtractor()

	assert.Equal(t, []string{"Test"}, extractor.Extract("single word Test"))
}

func TestExtractEmptyAndLowercase(t *testing.T) {
	extractor := NewEntityNameExtractor()

	assert.Empty(t, extractor.Extract(""))
	assert.Empty(t, extractor.Extract("    \t  "))
	assert.Empty(t, extractor.Extract("all lowercase query about nothing"))
}

func TestExtractSkipsQuestionWords(t *testing.T) {
	extractor := NewEntityNameExtractor()

	names := extractor.Extract("Where did Marie Curie study")
	assert.Equal(t, []string{"Marie Curie", "Marie", "Curie"}, names)

	names = extractor.Extract("Tell Show Find")
	assert.Empty(t, names)
}

func TestExtractShortSingleWordDropped(t *testing.T) {
	extractor := NewEntityNameExtractor()

	// A lone two-letter capitalized word is too ambiguous to keep.
	assert.Empty(t, extractor.Extract("the Io probe"))
}

func TestExtractShortWordKeptInsideRun(t *testing.T) {
	extractor := NewEntityNameExtractor()

	names := extractor.Extract("visiting New York NY University")
	assert.Contains(t, names, "New York NY University")
	assert.Contains(t, names, "New")
	assert.Contains(t, names, "York")
	assert.NotContains(t, names, "NY")
	assert.Contains(t, names, "University")
}

func TestExtractDeduplicatesPreservingOrder(t *testing.T) {
	extractor := NewEntityNameExtractor()

	names := extractor.Extract("Paris is Paris")
	assert.Equal(t, []string{"Paris"}, names)
}

func TestExtractMultipleRuns(t *testing.T) {
	extractor := NewEntityNameExtractor()

	names := extractor.Extract("What connects Nobel Prize and Marie Curie")
	assert.Equal(t, []string{"Nobel Prize", "Nobel", "Prize", "Marie Curie", "Marie", "Curie"}, names)
}
