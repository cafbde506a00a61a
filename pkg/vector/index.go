// Package vector provides embedding-based similarity search over chunks.
package vector

import (
	"context"

	"github.com/soundprediction/graphrag/pkg/types"
)

// SearchOptions tunes a similarity query.
type SearchOptions struct {
	// TopK caps the number of returned results.
	TopK int
	// ScoreThreshold drops results scoring below it. Zero keeps everything.
	ScoreThreshold float64
	// Modality restricts results to chunks of one modality when set.
	Modality types.ModalityType
}

// Index is the similarity-search contract the hybrid engine depends on.
// Results come back sorted by descending score with Source set to the
// vector strategy.
type Index interface {
	// Upsert indexes chunks by ID, replacing existing entries.
	Upsert(ctx context.Context, chunks []*types.Chunk) error

	// Search returns the chunks nearest to the query embedding.
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]types.SearchResult, error)

	// RetrieveByIDs fetches chunks by ID without scoring; returned results
	// carry a zero score and IDs with no record are skipped.
	RetrieveByIDs(ctx context.Context, ids []string) ([]types.SearchResult, error)

	// Delete removes a chunk from the index. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)
}
