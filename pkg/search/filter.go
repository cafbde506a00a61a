package search

import (
	"log/slog"

	"github.com/soundprediction/graphrag/pkg/types"
)

// FilterByGraph keeps only the vector results whose chunk ID also appears in
// the graph results. The filter is soft: when graph search found nothing —
// the query names no known entity, or named entities are not yet linked —
// vector results pass through unchanged, so entity-free queries still
// retrieve by semantics alone.
func FilterByGraph(vectorResults, graphResults []types.SearchResult, logger *slog.Logger) []types.SearchResult {
	if logger == nil {
		logger = slog.Default()
	}
	if len(graphResults) == 0 {
		return vectorResults
	}

	allowed := make(map[string]struct{}, len(graphResults))
	for _, r := range graphResults {
		allowed[r.ID] = struct{}{}
	}

	filtered := make([]types.SearchResult, 0, len(vectorResults))
	for _, r := range vectorResults {
		if _, ok := allowed[r.ID]; ok {
			filtered = append(filtered, r)
		}
	}

	if excluded := len(vectorResults) - len(filtered); excluded > 0 {
		logger.Debug("graph filter excluded vector results",
			"excluded", excluded,
			"kept", len(filtered))
	}
	return filtered
}
