package chunkstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrag/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	chunk := types.NewChunk("Marie Curie won the Nobel Prize in Physics.")
	chunk.Metadata.Source = "bio.txt"
	require.NoError(t, store.Put(ctx, chunk))

	got, err := store.Get(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.Content, got.Content)
	assert.Equal(t, types.TextModality, got.Modality)
	assert.Equal(t, "bio.txt", got.Metadata.Source)
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBatchSkipsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := types.NewChunk("first")
	b := types.NewChunk("second")
	require.NoError(t, store.PutBatch(ctx, []*types.Chunk{a, b}))

	chunks, err := store.GetBatch(ctx, []string{a.ID, "missing", b.ID})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, a.ID, chunks[0].ID)
	assert.Equal(t, b.ID, chunks[1].ID)
}

func TestPutRejectsInvalidChunk(t *testing.T) {
	store := newTestStore(t)

	err := store.Put(context.Background(), &types.Chunk{ID: "x"})
	assert.ErrorIs(t, err, types.ErrEmptyContent)
}

func TestDeleteAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := types.NewChunk("alpha")
	b := types.NewChunk("beta")
	b.Modality = types.AudioModality
	require.NoError(t, store.PutBatch(ctx, []*types.Chunk{a, b}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Delete(ctx, a.ID))
	require.NoError(t, store.Delete(ctx, "already-gone"))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestForEach(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PutBatch(ctx, []*types.Chunk{
		types.NewChunk("one"),
		types.NewChunk("two"),
		types.NewChunk("three"),
	}))

	seen := 0
	err := store.ForEach(ctx, func(c *types.Chunk) error {
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}
