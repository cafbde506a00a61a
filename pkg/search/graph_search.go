package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/soundprediction/graphrag/pkg/graph"
	"github.com/soundprediction/graphrag/pkg/types"
	"github.com/soundprediction/graphrag/pkg/vector"
)

// entityMatchLimit caps how many stored entities a single query's candidate
// names may resolve to.
const entityMatchLimit = 10

// GraphSearcher retrieves chunks by entity: it resolves candidate names from
// the query against the graph, traverses to related entities, and maps their
// source chunks back to content with a distance-decayed score.
type GraphSearcher struct {
	store     graph.Store
	index     vector.Index
	extractor *EntityNameExtractor
	maxDepth  int
	limit     int
	logger    *slog.Logger
}

// NewGraphSearcher creates a searcher. maxDepth <= 0 selects the standalone
// traversal bound; callers wiring the searcher as a vector-filter source
// pass the tighter graph.DefaultMaxDepth. limit <= 0 selects 100.
func NewGraphSearcher(store graph.Store, index vector.Index, maxDepth, limit int, logger *slog.Logger) *GraphSearcher {
	if maxDepth <= 0 {
		maxDepth = graph.StandaloneMaxDepth
	}
	if limit <= 0 {
		limit = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphSearcher{
		store:     store,
		index:     index,
		extractor: NewEntityNameExtractor(),
		maxDepth:  maxDepth,
		limit:     limit,
		logger:    logger,
	}
}

// Search retrieves chunks related to the entities mentioned in the query.
// When entityNames is empty the names are extracted from queryText. A query
// mentioning no known entity returns an empty list, not an error.
func (g *GraphSearcher) Search(ctx context.Context, queryText string, entityNames []string) ([]types.SearchResult, error) {
	candidates := entityNames
	if len(candidates) == 0 {
		candidates = g.extractor.Extract(queryText)
	}
	if len(candidates) == 0 {
		g.logger.Debug("no entity candidates in query", "query", queryText)
		return nil, nil
	}

	matched, err := g.store.FindEntitiesByName(ctx, candidates, true, entityMatchLimit)
	if err != nil {
		return nil, fmt.Errorf("entity lookup failed: %w", err)
	}
	if len(matched) == 0 {
		g.logger.Debug("no entities matched in graph", "candidates", candidates)
		return nil, nil
	}

	entityIDs := make([]string, len(matched))
	for i, m := range matched {
		entityIDs[i] = m.ID
	}

	related, err := g.store.FindRelatedChunks(ctx, entityIDs, g.maxDepth, g.limit)
	if err != nil {
		return nil, fmt.Errorf("graph traversal failed: %w", err)
	}
	if len(related) == 0 {
		return nil, nil
	}

	chunkIDs := make([]string, len(related))
	relevance := make(map[string]graph.RelatedChunk, len(related))
	for i, rc := range related {
		chunkIDs[i] = rc.ChunkID
		relevance[rc.ChunkID] = rc
	}

	resolved, err := g.index.RetrieveByIDs(ctx, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("chunk resolution failed: %w", err)
	}

	results := make([]types.SearchResult, 0, len(resolved))
	for _, r := range resolved {
		rc := relevance[r.ID]
		r.Score = rc.Relevance
		r.Source = types.NewStrategySet(types.StrategyGraph)
		if r.Metadata == nil {
			r.Metadata = make(map[string]any, 2)
		}
		r.Metadata["matched_entity"] = rc.EntityName
		r.Metadata["matched_entity_type"] = rc.EntityType
		results = append(results, r)
	}

	g.logger.Debug("graph search complete",
		"candidates", len(candidates),
		"matched_entities", len(matched),
		"results", len(results))
	return results, nil
}
