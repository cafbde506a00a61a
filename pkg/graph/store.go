package graph

import (
	"context"
	"time"

	"github.com/soundprediction/graphrag/pkg/types"
)

// Store provides CRUD and traversal over the property graph of entities and
// relationships. Implementations must treat upserts as idempotent
// merge-by-id, must apply the property flattening invariant (see
// FlattenProperties) on every write path, and must acquire a fresh scoped
// session per logical operation so that concurrent query reads never share
// connection state.
type Store interface {
	// UpsertEntity merges a single entity by ID.
	UpsertEntity(ctx context.Context, entity *types.Entity) error

	// UpsertEntities merges a batch of entities. An empty batch is a no-op.
	UpsertEntities(ctx context.Context, entities []*types.Entity) error

	// UpsertRelationship merges a single relationship by ID.
	UpsertRelationship(ctx context.Context, rel *types.Relationship) error

	// UpsertRelationships merges a batch of relationships, grouped by type
	// since the edge type is part of the label and cannot be parameterized
	// across heterogeneous types in one statement.
	UpsertRelationships(ctx context.Context, rels []*types.Relationship) error

	// FindEntitiesByName resolves candidate names to stored entities.
	// fuzzy=true matches by case-insensitive substring containment,
	// fuzzy=false by case-insensitive equality. At most limit records are
	// returned in total, in the store's natural order.
	FindEntitiesByName(ctx context.Context, names []string, fuzzy bool, limit int) ([]EntityRecord, error)

	// FindRelatedChunks traverses up to maxDepth hops from the given
	// entities, in both directions over any relationship type, and returns
	// the source chunks of every reached entity together with a
	// distance-decayed relevance. A chunk reachable over multiple paths
	// keeps the maximum relevance observed.
	FindRelatedChunks(ctx context.Context, entityIDs []string, maxDepth, limit int) ([]RelatedChunk, error)

	// CreateIndexes creates the uniqueness constraint on entity IDs and the
	// name/type lookup indexes.
	CreateIndexes(ctx context.Context) error

	// Stats returns node and edge counts for observability.
	Stats(ctx context.Context) (*Stats, error)

	// Close releases the underlying connection pool.
	Close(ctx context.Context) error
}

// EntityRecord is the read-side projection returned by name lookup.
type EntityRecord struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Description    string  `json:"description,omitempty"`
	Confidence     float64 `json:"confidence"`
	SourceModality string  `json:"source_modality,omitempty"`
	SourceChunkID  string  `json:"source_chunk_id,omitempty"`
}

// RelatedChunk links a traversal hit back to retrievable content.
type RelatedChunk struct {
	ChunkID    string  `json:"chunk_id"`
	EntityName string  `json:"entity_name"`
	EntityType string  `json:"entity_type"`
	Relevance  float64 `json:"relevance"`
}

// Stats holds graph-level counters.
type Stats struct {
	EntityCount       int64            `json:"entity_count"`
	RelationshipCount int64            `json:"relationship_count"`
	EntitiesByType    map[string]int64 `json:"entities_by_type,omitempty"`
	LastUpdated       time.Time        `json:"last_updated"`
}
