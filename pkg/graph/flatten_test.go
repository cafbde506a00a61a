package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenPropertiesScalars(t *testing.T) {
	props := map[string]any{
		"name":   "Marie Curie",
		"count":  int64(2),
		"score":  0.87,
		"active": true,
	}

	flattened := FlattenProperties(props)
	require.NotNil(t, flattened)
	assert.Equal(t, "Marie Curie", flattened["name"])
	assert.Equal(t, int64(2), flattened["count"])
	assert.Equal(t, 0.87, flattened["score"])
	assert.Equal(t, true, flattened["active"])
}

func TestFlattenPropertiesDropsNil(t *testing.T) {
	flattened := FlattenProperties(map[string]any{
		"kept":    "value",
		"dropped": nil,
	})

	require.NotNil(t, flattened)
	assert.Contains(t, flattened, "kept")
	assert.NotContains(t, flattened, "dropped")
}

func TestFlattenPropertiesHomogeneousArrays(t *testing.T) {
	flattened := FlattenProperties(map[string]any{
		"tags":   []any{"physics", "chemistry"},
		"scores": []any{1.0, 2.0, 3.5},
		"ints":   []int{1, 2, 3},
	})

	require.NotNil(t, flattened)
	assert.Equal(t, []any{"physics", "chemistry"}, flattened["tags"])
	assert.Equal(t, []any{1.0, 2.0, 3.5}, flattened["scores"])
	assert.Equal(t, []int{1, 2, 3}, flattened["ints"])
}

func TestFlattenPropertiesMixedArrayBecomesJSON(t *testing.T) {
	flattened := FlattenProperties(map[string]any{
		"mixed": []any{"a", 1, true},
	})

	require.NotNil(t, flattened)
	s, ok := flattened["mixed"].(string)
	require.True(t, ok, "mixed array should serialize to a JSON string")
	assert.JSONEq(t, `["a",1,true]`, s)
}

func TestFlattenPropertiesNestedBecomesJSON(t *testing.T) {
	flattened := FlattenProperties(map[string]any{
		"address": map[string]any{"city": "Paris", "country": "France"},
	})

	require.NotNil(t, flattened)
	s, ok := flattened["address"].(string)
	require.True(t, ok, "nested map should serialize to a JSON string")
	assert.JSONEq(t, `{"city":"Paris","country":"France"}`, s)
}

// Flattening an already-flattened map must not change it again: a JSON
// string produced by a first pass is a plain scalar on the second pass.
func TestFlattenPropertiesIdempotent(t *testing.T) {
	props := map[string]any{
		"name":    "Pierre",
		"nested":  map[string]any{"b": 2, "a": 1},
		"mixed":   []any{"x", 9},
		"numbers": []any{1.5, 2.5},
	}

	once := FlattenProperties(props)
	twice := FlattenProperties(once)
	assert.Equal(t, once, twice)
}

func TestFlattenPropertiesEmpty(t *testing.T) {
	assert.Nil(t, FlattenProperties(nil))
	assert.Nil(t, FlattenProperties(map[string]any{}))
	assert.Nil(t, FlattenProperties(map[string]any{"only": nil}))
}
