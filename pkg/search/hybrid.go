package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/graphrag/pkg/embedder"
	"github.com/soundprediction/graphrag/pkg/lexical"
	"github.com/soundprediction/graphrag/pkg/telemetry"
	"github.com/soundprediction/graphrag/pkg/types"
	"github.com/soundprediction/graphrag/pkg/vector"
)

// Options configures a HybridSearchEngine.
type Options struct {
	// Weights are the per-strategy fusion weights.
	Weights Weights
	// TopK is the default result cap when a query does not override it.
	TopK int
	// ScoreThreshold drops vector results scoring below it.
	ScoreThreshold float64
	// UseGraphFilter restricts vector results to chunks connected to the
	// query's entities whenever graph search finds any.
	UseGraphFilter bool
	// StrategyTimeout bounds each strategy independently. A strategy that
	// times out contributes an empty result set.
	StrategyTimeout time.Duration
	// GraphMaxDepth bounds query-time graph traversal. Zero selects the
	// graph package default.
	GraphMaxDepth int
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Weights:         DefaultWeights(),
		TopK:            10,
		ScoreThreshold:  0,
		UseGraphFilter:  true,
		StrategyTimeout: 5 * time.Second,
	}
}

// HybridSearchEngine runs the vector, graph, and keyword strategies
// concurrently and fuses their results into one ranked list. The engine is
// stateless across queries and safe for concurrent use; strategies share
// only read-only stores.
type HybridSearchEngine struct {
	embedder embedder.Client
	index    vector.Index
	graph    *GraphSearcher
	lexical  *lexical.Index
	opts     Options
	logger   *slog.Logger
	recorder *telemetry.QueryRecorder
}

// NewHybridSearchEngine wires the three strategies together. The graph
// searcher and lexical index may be nil, in which case their strategies
// contribute nothing.
func NewHybridSearchEngine(emb embedder.Client, index vector.Index, graph *GraphSearcher, lex *lexical.Index, opts Options, logger *slog.Logger) *HybridSearchEngine {
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.StrategyTimeout <= 0 {
		opts.StrategyTimeout = DefaultOptions().StrategyTimeout
	}
	if (opts.Weights == Weights{}) {
		opts.Weights = DefaultWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridSearchEngine{
		embedder: emb,
		index:    index,
		graph:    graph,
		lexical:  lex,
		opts:     opts,
		logger:   logger,
	}
}

// WithRecorder attaches per-query telemetry. A nil recorder disables it.
func (e *HybridSearchEngine) WithRecorder(recorder *telemetry.QueryRecorder) *HybridSearchEngine {
	e.recorder = recorder
	return e
}

// Search executes the query across all strategies and returns the fused
// top-K results. topK <= 0 falls back to the configured default. A failed
// or timed-out strategy degrades to an empty contribution; only an invalid
// query or a cancelled context fails the whole call.
func (e *HybridSearchEngine) Search(ctx context.Context, query types.Query, topK int) ([]types.SearchResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = e.opts.TopK
	}

	started := time.Now()
	var vectorResults, graphResults, keywordResults []types.SearchResult

	// Strategy failures are logged and degrade to empty rather than
	// cancelling the sibling strategies, so no closure returns an error.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sctx, cancel := context.WithTimeout(gctx, e.opts.StrategyTimeout)
		defer cancel()
		results, err := e.searchVector(sctx, query, topK)
		if err != nil {
			e.logger.Warn("vector strategy failed", "error", err)
			return nil
		}
		vectorResults = results
		return nil
	})

	if e.graph != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, e.opts.StrategyTimeout)
			defer cancel()
			results, err := e.graph.Search(sctx, query.Text, query.EntityNames)
			if err != nil {
				e.logger.Warn("graph strategy failed", "error", err)
				return nil
			}
			graphResults = results
			return nil
		})
	}

	if e.lexical != nil {
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, e.opts.StrategyTimeout)
			defer cancel()
			results, err := e.lexical.Search(sctx, query.Text, topK, query.Modality)
			if err != nil {
				e.logger.Warn("keyword strategy failed", "error", err)
				return nil
			}
			keywordResults = results
			return nil
		})
	}

	// Closures never return errors, so this only propagates ctx errors.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if e.opts.UseGraphFilter {
		vectorResults = FilterByGraph(vectorResults, graphResults, e.logger)
	}

	fused, err := Fuse(vectorResults, graphResults, keywordResults, e.opts.Weights, topK)
	if err != nil {
		return nil, err
	}

	if e.recorder != nil {
		e.recorder.Record(telemetry.QueryRecord{
			Query:          query.Text,
			Modality:       string(query.Modality),
			TopK:           topK,
			VectorResults:  len(vectorResults),
			GraphResults:   len(graphResults),
			KeywordResults: len(keywordResults),
			FusedResults:   len(fused),
			DurationMillis: time.Since(started).Milliseconds(),
		})
	}

	e.logger.Info("hybrid search complete",
		"query", query.Text,
		"vector_results", len(vectorResults),
		"graph_results", len(graphResults),
		"keyword_results", len(keywordResults),
		"fused_results", len(fused),
		"duration_ms", time.Since(started).Milliseconds())
	return fused, nil
}

func (e *HybridSearchEngine) searchVector(ctx context.Context, query types.Query, topK int) ([]types.SearchResult, error) {
	if e.embedder == nil || e.index == nil {
		return nil, nil
	}
	embedding, err := e.embedder.EmbedSingle(ctx, query.Text)
	if err != nil {
		return nil, err
	}
	return e.index.Search(ctx, embedding, vector.SearchOptions{
		TopK:           topK,
		ScoreThreshold: e.opts.ScoreThreshold,
		Modality:       query.Modality,
	})
}
