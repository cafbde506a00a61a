package graphrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/graphrag/pkg/chunkstore"
	"github.com/soundprediction/graphrag/pkg/config"
	"github.com/soundprediction/graphrag/pkg/embedder"
	"github.com/soundprediction/graphrag/pkg/graph"
	"github.com/soundprediction/graphrag/pkg/lexical"
	"github.com/soundprediction/graphrag/pkg/search"
	"github.com/soundprediction/graphrag/pkg/types"
	"github.com/soundprediction/graphrag/pkg/vector"
)

// GraphRAG is the main interface for indexing content and running hybrid
// retrieval over it.
type GraphRAG interface {
	// IndexChunks stores chunks in the chunk store and both retrieval
	// indexes. Chunks without an embedding are embedded first.
	IndexChunks(ctx context.Context, chunks []*types.Chunk) error

	// AddEntities merges extracted entities into the knowledge graph.
	AddEntities(ctx context.Context, entities []*types.Entity) error

	// AddRelationships merges extracted relationships into the knowledge
	// graph.
	AddRelationships(ctx context.Context, rels []*types.Relationship) error

	// Search runs the hybrid vector + graph + keyword retrieval.
	Search(ctx context.Context, query types.Query, topK int) ([]types.SearchResult, error)

	// GetChunk returns a stored chunk by ID.
	GetChunk(ctx context.Context, id string) (*types.Chunk, error)

	// CreateIndexes creates graph constraints and lookup indexes.
	CreateIndexes(ctx context.Context) error

	// GraphStats returns node and edge counts.
	GraphStats(ctx context.Context) (*graph.Stats, error)

	// Close releases all connections and flushes buffers.
	Close(ctx context.Context) error
}

// Client is the main implementation of the GraphRAG interface.
type Client struct {
	graph    graph.Store
	chunks   *chunkstore.Store
	vector   vector.Index
	lexical  *lexical.Index
	embedder embedder.Client
	engine   *search.HybridSearchEngine
	logger   *slog.Logger
}

var _ GraphRAG = (*Client)(nil)

// New builds a fully wired client from configuration: a Neo4j graph store
// (optionally behind a circuit breaker), a Badger chunk store, an in-memory
// vector index, a BM25 lexical index, and the configured embedding provider.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := graph.NewNeo4jStore(ctx, cfg.Graph.URI, cfg.Graph.Username, cfg.Graph.Password, cfg.Graph.Database, logger)
	if err != nil {
		return nil, err
	}
	var graphStore graph.Store = store
	if cfg.CircuitBreaker.Enabled {
		graphStore = graph.NewBreakerStore(store, graph.BreakerSettings{
			MaxFailures: cfg.CircuitBreaker.MaxFailures,
			Timeout:     time.Duration(cfg.CircuitBreaker.Timeout) * time.Second,
		}, logger)
	}

	chunks, err := chunkstore.Open(cfg.ChunkStore.Path, logger)
	if err != nil {
		store.Close(ctx)
		return nil, err
	}

	emb, err := newEmbedder(cfg.Embedding)
	if err != nil {
		chunks.Close()
		store.Close(ctx)
		return nil, err
	}

	index := vector.NewMemoryIndex(logger)
	lex := lexical.NewIndex(logger)

	client := NewFromComponents(graphStore, chunks, index, lex, emb, searchOptions(cfg.Search), logger)

	// Rehydrate the in-memory indexes from the persistent chunk store.
	if err := client.reloadIndexes(ctx); err != nil {
		client.Close(ctx)
		return nil, err
	}
	return client, nil
}

// NewFromComponents wires a client from caller-provided components. The
// graph store may be nil, which disables the graph strategy.
func NewFromComponents(graphStore graph.Store, chunks *chunkstore.Store, index vector.Index, lex *lexical.Index, emb embedder.Client, opts search.Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	var searcher *search.GraphSearcher
	if graphStore != nil {
		// Inside the hybrid engine the searcher feeds the vector-result
		// filter, which uses the tighter traversal bound.
		maxDepth := opts.GraphMaxDepth
		if maxDepth <= 0 {
			maxDepth = graph.DefaultMaxDepth
		}
		searcher = search.NewGraphSearcher(graphStore, index, maxDepth, 0, logger)
	}
	engine := search.NewHybridSearchEngine(emb, index, searcher, lex, opts, logger)

	return &Client{
		graph:    graphStore,
		chunks:   chunks,
		vector:   index,
		lexical:  lex,
		embedder: emb,
		engine:   engine,
		logger:   logger,
	}
}

// Engine exposes the underlying hybrid engine, for attaching telemetry.
func (c *Client) Engine() *search.HybridSearchEngine {
	return c.engine
}

// IndexChunks stores chunks and feeds both retrieval indexes. Chunks without
// an embedding are embedded first when an embedder is configured.
func (c *Client) IndexChunks(ctx context.Context, chunks []*types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	if c.embedder != nil {
		if err := c.embedMissing(ctx, chunks); err != nil {
			return err
		}
	}

	if c.chunks != nil {
		if err := c.chunks.PutBatch(ctx, chunks); err != nil {
			return err
		}
	}
	if err := c.vector.Upsert(ctx, chunks); err != nil {
		return err
	}
	if c.lexical != nil {
		if err := c.lexical.Add(ctx, chunks); err != nil {
			return err
		}
	}

	c.logger.Info("indexed chunks", "count", len(chunks))
	return nil
}

// AddEntities merges extracted entities into the knowledge graph.
func (c *Client) AddEntities(ctx context.Context, entities []*types.Entity) error {
	if c.graph == nil {
		return errors.New("graph store not configured")
	}
	return c.graph.UpsertEntities(ctx, entities)
}

// AddRelationships merges extracted relationships into the knowledge graph.
func (c *Client) AddRelationships(ctx context.Context, rels []*types.Relationship) error {
	if c.graph == nil {
		return errors.New("graph store not configured")
	}
	return c.graph.UpsertRelationships(ctx, rels)
}

// Search runs the hybrid vector + graph + keyword retrieval.
func (c *Client) Search(ctx context.Context, query types.Query, topK int) ([]types.SearchResult, error) {
	return c.engine.Search(ctx, query, topK)
}

// GetChunk returns a stored chunk by ID.
func (c *Client) GetChunk(ctx context.Context, id string) (*types.Chunk, error) {
	if c.chunks == nil {
		return nil, errors.New("chunk store not configured")
	}
	return c.chunks.Get(ctx, id)
}

// CreateIndexes creates graph constraints and lookup indexes.
func (c *Client) CreateIndexes(ctx context.Context) error {
	if c.graph == nil {
		return errors.New("graph store not configured")
	}
	return c.graph.CreateIndexes(ctx)
}

// GraphStats returns node and edge counts.
func (c *Client) GraphStats(ctx context.Context) (*graph.Stats, error) {
	if c.graph == nil {
		return nil, errors.New("graph store not configured")
	}
	return c.graph.Stats(ctx)
}

// Close releases all connections and flushes buffers.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.graph != nil {
		if err := c.graph.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.chunks != nil {
		if err := c.chunks.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.embedder != nil {
		if err := c.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Client) embedMissing(ctx context.Context, chunks []*types.Chunk) error {
	var missing []*types.Chunk
	var texts []string
	for _, chunk := range chunks {
		if chunk != nil && len(chunk.Embedding) == 0 {
			missing = append(missing, chunk)
			texts = append(texts, chunk.Content)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	embeddings, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %d chunks: %w", len(missing), err)
	}
	if len(embeddings) != len(missing) {
		return fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(missing), len(embeddings))
	}
	for i, chunk := range missing {
		chunk.Embedding = embeddings[i]
	}
	return nil
}

// reloadIndexes rebuilds the in-memory vector and lexical indexes from the
// persistent chunk store on startup.
func (c *Client) reloadIndexes(ctx context.Context) error {
	if c.chunks == nil {
		return nil
	}
	loaded := 0
	err := c.chunks.ForEach(ctx, func(chunk *types.Chunk) error {
		if err := c.vector.Upsert(ctx, []*types.Chunk{chunk}); err != nil {
			return err
		}
		if c.lexical != nil {
			if err := c.lexical.Add(ctx, []*types.Chunk{chunk}); err != nil {
				return err
			}
		}
		loaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reload indexes: %w", err)
	}
	if loaded > 0 {
		c.logger.Info("reloaded indexes from chunk store", "chunks", loaded)
	}
	return nil
}

func newEmbedder(cfg config.EmbeddingConfig) (embedder.Client, error) {
	settings := embedder.Config{
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		BatchSize:  cfg.BatchSize,
	}
	switch cfg.Provider {
	case "openai":
		return embedder.NewOpenAIClient(cfg.APIKey, settings)
	case "embedeverything", "":
		return embedder.NewEmbedEverythingClient(settings)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

func searchOptions(cfg config.SearchConfig) search.Options {
	opts := search.DefaultOptions()
	if cfg.VectorWeight > 0 || cfg.GraphWeight > 0 || cfg.KeywordWeight > 0 {
		opts.Weights = search.Weights{
			Vector:  cfg.VectorWeight,
			Graph:   cfg.GraphWeight,
			Keyword: cfg.KeywordWeight,
		}
	}
	if cfg.TopK > 0 {
		opts.TopK = cfg.TopK
	}
	opts.ScoreThreshold = cfg.ScoreThreshold
	opts.UseGraphFilter = cfg.UseGraphFilter
	if cfg.StrategyTimeoutSeconds > 0 {
		opts.StrategyTimeout = time.Duration(cfg.StrategyTimeoutSeconds) * time.Second
	}
	if cfg.MaxDepth > 0 {
		opts.GraphMaxDepth = cfg.MaxDepth
	}
	return opts
}
