package vector

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/soundprediction/graphrag/pkg/types"
)

// MemoryIndex is an in-process Index backed by a map. It holds chunk
// embeddings and content in memory and scores queries by exhaustive cosine
// similarity, which is adequate for corpora in the tens of thousands of
// chunks.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks map[string]*types.Chunk
	order  []string
	logger *slog.Logger
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex(logger *slog.Logger) *MemoryIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryIndex{
		chunks: make(map[string]*types.Chunk),
		logger: logger,
	}
}

// Upsert indexes chunks by ID, replacing existing entries. Chunks without an
// embedding are stored for ID retrieval but never matched by Search.
func (m *MemoryIndex) Upsert(ctx context.Context, chunks []*types.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if err := chunk.Validate(); err != nil {
			return err
		}
		if _, exists := m.chunks[chunk.ID]; !exists {
			m.order = append(m.order, chunk.ID)
		}
		m.chunks[chunk.ID] = chunk
	}
	return nil
}

// Search scores every indexed chunk against the query embedding and returns
// the top matches in descending score order.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, types.ErrEmptyQuery
	}
	if opts.TopK <= 0 {
		return nil, types.ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]types.SearchResult, 0, opts.TopK)
	for _, id := range m.order {
		chunk := m.chunks[id]
		if len(chunk.Embedding) == 0 {
			continue
		}
		if opts.Modality != "" && chunk.Modality != opts.Modality {
			continue
		}
		score := cosineSimilarity(embedding, chunk.Embedding)
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		results = append(results, resultFromChunk(chunk, score))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	m.logger.Debug("vector search complete", "candidates", len(m.order), "results", len(results))
	return results, nil
}

// RetrieveByIDs fetches chunks by ID with a zero score. IDs with no indexed
// chunk are skipped.
func (m *MemoryIndex) RetrieveByIDs(ctx context.Context, ids []string) ([]types.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]types.SearchResult, 0, len(ids))
	for _, id := range ids {
		chunk, ok := m.chunks[id]
		if !ok {
			m.logger.Debug("chunk missing from vector index", "chunk_id", id)
			continue
		}
		results = append(results, resultFromChunk(chunk, 0))
	}
	return results, nil
}

// Delete removes a chunk from the index.
func (m *MemoryIndex) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chunks[id]; !ok {
		return nil
	}
	delete(m.chunks, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of indexed chunks.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

func resultFromChunk(chunk *types.Chunk, score float64) types.SearchResult {
	return types.SearchResult{
		ID:       chunk.ID,
		Content:  chunk.Content,
		Score:    score,
		Modality: chunk.Modality,
		Metadata: chunk.Metadata.Map(),
		Source:   types.NewStrategySet(types.StrategyVector),
	}
}

// cosineSimilarity returns 0 for mismatched lengths or zero-magnitude
// vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Index = (*MemoryIndex)(nil)
