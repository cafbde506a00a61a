package graphrag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/graphrag/pkg/chunkstore"
	"github.com/soundprediction/graphrag/pkg/lexical"
	"github.com/soundprediction/graphrag/pkg/search"
	"github.com/soundprediction/graphrag/pkg/types"
	"github.com/soundprediction/graphrag/pkg/vector"
)

// hashEmbedder produces deterministic low-dimensional vectors from content
// so indexing and search are reproducible without a model.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 4)
		for j, r := range text {
			v[j%4] += float32(r%13) / 13
		}
		out[i] = v
	}
	return out, nil
}

func (h hashEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := h.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (hashEmbedder) Dimensions() int { return 4 }
func (hashEmbedder) Close() error    { return nil }

func newTestClient(t *testing.T) *Client {
	t.Helper()

	chunks, err := chunkstore.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { chunks.Close() })

	opts := search.DefaultOptions()
	opts.UseGraphFilter = false
	return NewFromComponents(nil, chunks, vector.NewMemoryIndex(nil), lexical.NewIndex(nil), hashEmbedder{}, opts, nil)
}

func TestIndexChunksEmbedsAndStores(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	chunk := types.NewChunk("Grace Hopper invented the first compiler.")
	require.NoError(t, client.IndexChunks(ctx, []*types.Chunk{chunk}))
	assert.NotEmpty(t, chunk.Embedding, "missing embeddings are filled during indexing")

	stored, err := client.GetChunk(ctx, chunk.ID)
	require.NoError(t, err)
	assert.Equal(t, chunk.Content, stored.Content)
}

func TestSearchFindsIndexedContent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	compiler := types.NewChunk("Grace Hopper invented the first compiler.")
	weather := types.NewChunk("It rained in Boston all week.")
	require.NoError(t, client.IndexChunks(ctx, []*types.Chunk{compiler, weather}))

	results, err := client.Search(ctx, types.Query{Text: "Grace Hopper invented the first compiler."}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, compiler.ID, results[0].ID)
}

func TestGraphOperationsRequireStore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	err := client.AddEntities(ctx, []*types.Entity{types.NewEntity("Ada", types.PersonEntity)})
	assert.Error(t, err)

	err = client.CreateIndexes(ctx)
	assert.Error(t, err)

	_, err = client.GraphStats(ctx)
	assert.Error(t, err)
}

func TestIndexChunksEmptyBatch(t *testing.T) {
	client := newTestClient(t)
	assert.NoError(t, client.IndexChunks(context.Background(), nil))
}

func TestCloseIsIdempotentPerComponent(t *testing.T) {
	chunks, err := chunkstore.Open("", nil)
	require.NoError(t, err)
	client := NewFromComponents(nil, chunks, vector.NewMemoryIndex(nil), lexical.NewIndex(nil), hashEmbedder{}, search.DefaultOptions(), nil)

	assert.NoError(t, client.Close(context.Background()))
}
