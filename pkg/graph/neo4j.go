package graph

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"

	"github.com/soundprediction/graphrag/pkg/types"
)

// Neo4jStore implements Store on top of a Neo4j database. Every logical
// operation opens its own session and closes it on all exit paths; the
// driver's internal pool is the only shared state.
type Neo4jStore struct {
	client   neo4j.DriverWithContext
	database string
	logger   *slog.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity. A connection
// failure here is fatal and surfaced to the caller; there is no internal
// retry.
func NewNeo4jStore(ctx context.Context, uri, username, password, database string, logger *slog.Logger) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}

	if database == "" {
		database = "neo4j"
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("connected to neo4j", "uri", uri, "database", database)

	return &Neo4jStore{
		client:   driver,
		database: database,
		logger:   logger,
	}, nil
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// CreateIndexes creates the unique entity-id constraint and the name/type
// lookup indexes used by FindEntitiesByName.
func (s *Neo4jStore) CreateIndexes(ctx context.Context) error {
	statements := []string{
		"CREATE CONSTRAINT entity_id IF NOT EXISTS FOR (e:Entity) REQUIRE e.id IS UNIQUE",
		"CREATE INDEX entity_name IF NOT EXISTS FOR (e:Entity) ON (e.name)",
		"CREATE INDEX entity_type IF NOT EXISTS FOR (e:Entity) ON (e.type)",
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	for _, stmt := range statements {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, stmt, nil)
			return nil, err
		})
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// UpsertEntity merges a single entity by ID.
func (s *Neo4jStore) UpsertEntity(ctx context.Context, entity *types.Entity) error {
	if entity == nil {
		return fmt.Errorf("cannot upsert nil entity")
	}
	if err := entity.Validate(); err != nil {
		return err
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (e:Entity {id: $id})
			SET e.name = $name,
			    e.type = $type,
			    e.description = $description,
			    e.confidence = $confidence,
			    e.source_modality = $source_modality,
			    e.source_chunk_id = $source_chunk_id
		`
		params := map[string]any{
			"id":              entity.ID,
			"name":            entity.Name,
			"type":            string(entity.Type),
			"description":     entity.Description,
			"confidence":      entity.Confidence,
			"source_modality": string(entity.SourceModality),
			"source_chunk_id": entity.SourceChunkID,
		}

		// Omit the properties clause entirely when there is nothing to set;
		// assigning an empty map is not portable across backends.
		if flattened := FlattenProperties(entity.Properties); flattened != nil {
			query += ", e += $properties"
			params["properties"] = flattened
		}

		_, err := tx.Run(ctx, query, params)
		return nil, err
	})
	if err != nil {
		s.logger.Error("entity upsert failed", "entity", entity.Name, "error", err)
		return fmt.Errorf("failed to upsert entity %s: %w", entity.ID, err)
	}
	return nil
}

// UpsertEntities merges a batch of entities by ID. Entities with and without
// flattened properties go through separate UNWIND statements so the
// no-property case never assigns an empty map.
func (s *Neo4jStore) UpsertEntities(ctx context.Context, entities []*types.Entity) error {
	if len(entities) == 0 {
		return nil
	}

	var plain []map[string]any
	var withProps []map[string]any
	for _, e := range entities {
		if e == nil {
			continue
		}
		if err := e.Validate(); err != nil {
			return err
		}
		row := map[string]any{
			"id":              e.ID,
			"name":            e.Name,
			"type":            string(e.Type),
			"description":     e.Description,
			"confidence":      e.Confidence,
			"source_modality": string(e.SourceModality),
			"source_chunk_id": e.SourceChunkID,
		}
		if flattened := FlattenProperties(e.Properties); flattened != nil {
			row["properties"] = flattened
			withProps = append(withProps, row)
		} else {
			plain = append(plain, row)
		}
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(plain) > 0 {
			query := `
				UNWIND $entities AS entity
				MERGE (e:Entity {id: entity.id})
				SET e.name = entity.name,
				    e.type = entity.type,
				    e.description = entity.description,
				    e.confidence = entity.confidence,
				    e.source_modality = entity.source_modality,
				    e.source_chunk_id = entity.source_chunk_id
			`
			if _, err := tx.Run(ctx, query, map[string]any{"entities": plain}); err != nil {
				return nil, err
			}
		}
		if len(withProps) > 0 {
			query := `
				UNWIND $entities AS entity
				MERGE (e:Entity {id: entity.id})
				SET e.name = entity.name,
				    e.type = entity.type,
				    e.description = entity.description,
				    e.confidence = entity.confidence,
				    e.source_modality = entity.source_modality,
				    e.source_chunk_id = entity.source_chunk_id,
				    e += entity.properties
			`
			if _, err := tx.Run(ctx, query, map[string]any{"entities": withProps}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		s.logger.Error("entity batch upsert failed", "count", len(entities), "error", err)
		return fmt.Errorf("failed to upsert %d entities: %w", len(entities), err)
	}

	s.logger.Debug("upserted entities", "count", len(entities))
	return nil
}

// UpsertRelationship merges a single relationship by ID.
func (s *Neo4jStore) UpsertRelationship(ctx context.Context, rel *types.Relationship) error {
	if rel == nil {
		return fmt.Errorf("cannot upsert nil relationship")
	}
	return s.UpsertRelationships(ctx, []*types.Relationship{rel})
}

// UpsertRelationships merges relationships grouped by type. The type is part
// of the edge label, so each type gets its own batched statement.
func (s *Neo4jStore) UpsertRelationships(ctx context.Context, rels []*types.Relationship) error {
	if len(rels) == 0 {
		return nil
	}

	type bucket struct {
		plain     []map[string]any
		withProps []map[string]any
	}
	byType := make(map[types.RelationshipType]*bucket)
	var typeOrder []types.RelationshipType

	for _, r := range rels {
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			return err
		}
		relType := types.ParseRelationshipType(string(r.Type))
		b, ok := byType[relType]
		if !ok {
			b = &bucket{}
			byType[relType] = b
			typeOrder = append(typeOrder, relType)
		}
		row := map[string]any{
			"id":              r.ID,
			"source_id":       r.SourceEntityID,
			"target_id":       r.TargetEntityID,
			"confidence":      r.Confidence,
			"source_chunk_id": r.SourceChunkID,
		}
		if flattened := FlattenProperties(r.Properties); flattened != nil {
			row["properties"] = flattened
			b.withProps = append(b.withProps, row)
		} else {
			b.plain = append(b.plain, row)
		}
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, relType := range typeOrder {
			label := edgeLabel(relType)
			b := byType[relType]

			if len(b.plain) > 0 {
				query := fmt.Sprintf(`
					UNWIND $relationships AS rel
					MATCH (source:Entity {id: rel.source_id})
					MATCH (target:Entity {id: rel.target_id})
					MERGE (source)-[r:%s {id: rel.id}]->(target)
					SET r.confidence = rel.confidence,
					    r.source_chunk_id = rel.source_chunk_id
				`, label)
				if _, err := tx.Run(ctx, query, map[string]any{"relationships": b.plain}); err != nil {
					return nil, err
				}
			}
			if len(b.withProps) > 0 {
				query := fmt.Sprintf(`
					UNWIND $relationships AS rel
					MATCH (source:Entity {id: rel.source_id})
					MATCH (target:Entity {id: rel.target_id})
					MERGE (source)-[r:%s {id: rel.id}]->(target)
					SET r.confidence = rel.confidence,
					    r.source_chunk_id = rel.source_chunk_id,
					    r += rel.properties
				`, label)
				if _, err := tx.Run(ctx, query, map[string]any{"relationships": b.withProps}); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		s.logger.Error("relationship batch upsert failed", "count", len(rels), "error", err)
		return fmt.Errorf("failed to upsert %d relationships: %w", len(rels), err)
	}

	s.logger.Debug("upserted relationships", "count", len(rels), "types", len(byType))
	return nil
}

// FindEntitiesByName resolves candidate names against stored entity names.
func (s *Neo4jStore) FindEntitiesByName(ctx context.Context, names []string, fuzzy bool, limit int) ([]EntityRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	predicate := "toLower(e.name) = toLower(name)"
	if fuzzy {
		predicate = "toLower(e.name) CONTAINS toLower(name)"
	}
	query := fmt.Sprintf(`
		UNWIND $names AS name
		MATCH (e:Entity)
		WHERE %s
		RETURN DISTINCT e.id AS id, e.name AS name, e.type AS type,
		       e.description AS description, e.confidence AS confidence,
		       e.source_modality AS source_modality,
		       e.source_chunk_id AS source_chunk_id
		LIMIT $limit
	`, predicate)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"names": names, "limit": limit})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		s.logger.Error("entity name lookup failed", "names", names, "error", err)
		return nil, fmt.Errorf("failed to find entities by name: %w", err)
	}

	records := result.([]*db.Record)
	entities := make([]EntityRecord, 0, len(records))
	for _, record := range records {
		entities = append(entities, EntityRecord{
			ID:             stringValue(record, "id"),
			Name:           stringValue(record, "name"),
			Type:           stringValue(record, "type"),
			Description:    stringValue(record, "description"),
			Confidence:     floatValue(record, "confidence"),
			SourceModality: stringValue(record, "source_modality"),
			SourceChunkID:  stringValue(record, "source_chunk_id"),
		})
	}

	s.logger.Debug("found entities by name", "candidates", len(names), "matched", len(entities))
	return entities, nil
}

// FindRelatedChunks traverses up to maxDepth hops from the given entities and
// maps each reached entity's source chunk to a distance-decayed relevance.
// A chunk reachable over multiple paths keeps the maximum relevance observed,
// which makes the result deterministic regardless of path enumeration order.
func (s *Neo4jStore) FindRelatedChunks(ctx context.Context, entityIDs []string, maxDepth, limit int) ([]RelatedChunk, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if limit <= 0 {
		return nil, types.ErrInvalidLimit
	}

	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	// The variable-length bound cannot be parameterized, so it is formatted
	// into the pattern. Distance 0 covers the matched entities themselves.
	query := fmt.Sprintf(`
		UNWIND $entity_ids AS start_id
		MATCH (start:Entity {id: start_id})
		CALL {
			WITH start
			RETURN start AS related, 0 AS distance
			UNION
			WITH start
			MATCH path = (start)-[*1..%d]-(related:Entity)
			RETURN related, length(path) AS distance
		}
		WITH related, min(distance) AS distance
		WHERE related.source_chunk_id IS NOT NULL
		RETURN related.source_chunk_id AS chunk_id,
		       related.name AS entity_name,
		       related.type AS entity_type,
		       distance
	`, maxDepth)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"entity_ids": entityIDs})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		s.logger.Error("related chunk traversal failed", "entities", len(entityIDs), "error", err)
		return nil, fmt.Errorf("failed to find related chunks: %w", err)
	}

	records := result.([]*db.Record)
	best := make(map[string]RelatedChunk, len(records))
	var order []string
	for _, record := range records {
		chunkID := stringValue(record, "chunk_id")
		if chunkID == "" {
			continue
		}
		relevance := RelevanceForDistance(intValue(record, "distance"))
		existing, seen := best[chunkID]
		if !seen {
			order = append(order, chunkID)
		}
		if !seen || relevance > existing.Relevance {
			best[chunkID] = RelatedChunk{
				ChunkID:    chunkID,
				EntityName: stringValue(record, "entity_name"),
				EntityType: stringValue(record, "entity_type"),
				Relevance:  relevance,
			}
		}
	}

	chunks := make([]RelatedChunk, 0, len(best))
	for _, id := range order {
		chunks = append(chunks, best[id])
	}
	sortChunksByRelevance(chunks)
	if len(chunks) > limit {
		chunks = chunks[:limit]
	}

	s.logger.Debug("traversal found related chunks", "entities", len(entityIDs), "chunks", len(chunks), "max_depth", maxDepth)
	return chunks, nil
}

// Stats returns node and edge counts for the entity graph.
func (s *Neo4jStore) Stats(ctx context.Context) (*Stats, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (e:Entity)
			OPTIONAL MATCH (:Entity)-[r]->(:Entity)
			RETURN count(DISTINCT e) AS entities, count(DISTINCT r) AS relationships
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect graph stats: %w", err)
	}

	record := result.(*db.Record)
	stats := &Stats{LastUpdated: time.Now().UTC()}
	if v, ok := record.Get("entities"); ok {
		if n, ok := v.(int64); ok {
			stats.EntityCount = n
		}
	}
	if v, ok := record.Get("relationships"); ok {
		if n, ok := v.(int64); ok {
			stats.RelationshipCount = n
		}
	}

	byType, err := s.entityCountsByType(ctx)
	if err == nil {
		stats.EntitiesByType = byType
	}
	return stats, nil
}

func (s *Neo4jStore) entityCountsByType(ctx context.Context) (map[string]int64, error) {
	session := s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (e:Entity)
			RETURN e.type AS type, count(e) AS count
		`, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, record := range result.([]*db.Record) {
		t := stringValue(record, "type")
		if v, ok := record.Get("count"); ok {
			if n, ok := v.(int64); ok {
				counts[t] = n
			}
		}
	}
	return counts, nil
}

var edgeLabelPattern = regexp.MustCompile(`[^A-Z0-9_]`)

// edgeLabel renders a relationship type as a Cypher-safe edge label. Types
// pass through ParseRelationshipType first, so this only guards against a
// constant being extended with unsafe characters.
func edgeLabel(relType types.RelationshipType) string {
	label := edgeLabelPattern.ReplaceAllString(string(relType), "")
	if label == "" {
		return string(types.RelatedTo)
	}
	return label
}

// sortChunksByRelevance orders by descending relevance, keeping first-seen
// order among ties.
func sortChunksByRelevance(chunks []RelatedChunk) {
	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Relevance > chunks[j].Relevance
	})
}

func stringValue(record *db.Record, key string) string {
	if v, ok := record.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func floatValue(record *db.Record, key string) float64 {
	if v, ok := record.Get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	}
	return 0
}

func intValue(record *db.Record, key string) int {
	if v, ok := record.Get(key); ok {
		switch n := v.(type) {
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return 0
}
