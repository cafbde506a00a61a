package search

import (
	"sort"

	"github.com/soundprediction/graphrag/pkg/types"
)

// Weights holds the per-strategy fusion weights. They need not sum to 1;
// Normalize scales them before use.
type Weights struct {
	Vector  float64 `json:"vector"`
	Graph   float64 `json:"graph"`
	Keyword float64 `json:"keyword"`
}

// DefaultWeights favors embedding similarity while keeping graph and lexical
// signals meaningful.
func DefaultWeights() Weights {
	return Weights{Vector: 0.6, Graph: 0.3, Keyword: 0.1}
}

// Normalize scales the weights so they sum to 1. Negative weights or an
// all-zero set are rejected.
func (w Weights) Normalize() (Weights, error) {
	if w.Vector < 0 || w.Graph < 0 || w.Keyword < 0 {
		return Weights{}, types.ErrInvalidWeights
	}
	sum := w.Vector + w.Graph + w.Keyword
	if sum <= 0 {
		return Weights{}, types.ErrInvalidWeights
	}
	return Weights{
		Vector:  w.Vector / sum,
		Graph:   w.Graph / sum,
		Keyword: w.Keyword / sum,
	}, nil
}

// Fuse combines per-strategy results into one ranked list. Results are keyed
// by chunk ID: a chunk returned by several strategies accumulates each
// strategy's weighted score and its Source becomes the union of the
// contributing strategies. Ties keep first-seen order, which is vector
// before graph before keyword. At most topK results are returned; topK <= 0
// means unbounded.
func Fuse(vectorResults, graphResults, keywordResults []types.SearchResult, weights Weights, topK int) ([]types.SearchResult, error) {
	normalized, err := weights.Normalize()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]*types.SearchResult)
	var order []string

	accumulate := func(results []types.SearchResult, weight float64) {
		for _, r := range results {
			existing, ok := merged[r.ID]
			if !ok {
				fused := r
				fused.Score = r.Score * weight
				merged[r.ID] = &fused
				order = append(order, r.ID)
				continue
			}
			existing.Score += r.Score * weight
			existing.Source = existing.Source.Union(r.Source)
			if existing.Content == "" {
				existing.Content = r.Content
			}
			for k, v := range r.Metadata {
				if _, present := existing.Metadata[k]; !present {
					if existing.Metadata == nil {
						existing.Metadata = make(map[string]any)
					}
					existing.Metadata[k] = v
				}
			}
		}
	}

	accumulate(vectorResults, normalized.Vector)
	accumulate(graphResults, normalized.Graph)
	accumulate(keywordResults, normalized.Keyword)

	fused := make([]types.SearchResult, 0, len(order))
	for _, id := range order {
		fused = append(fused, *merged[id])
	}
	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused, nil
}
