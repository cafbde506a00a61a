package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/graphrag/pkg/types"
)

// Chunk is the ingestion shape of a content chunk.
type Chunk struct {
	ID        string         `json:"id,omitempty"`
	Content   string         `json:"content" binding:"required"`
	Modality  string         `json:"modality,omitempty"`
	Source    string         `json:"source,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IndexRequest is the body of POST /index/chunks.
type IndexRequest struct {
	Chunks []Chunk `json:"chunks" binding:"required"`
}

// Validate performs validation on IndexRequest
func (r *IndexRequest) Validate() error {
	if len(r.Chunks) == 0 {
		return errors.New("chunks cannot be empty")
	}
	for _, c := range r.Chunks {
		if strings.TrimSpace(c.Content) == "" {
			return errors.New("chunk content cannot be empty")
		}
	}
	return nil
}

// ToChunks converts the request to library chunks.
func (r *IndexRequest) ToChunks() []*types.Chunk {
	chunks := make([]*types.Chunk, 0, len(r.Chunks))
	for _, c := range r.Chunks {
		chunk := types.NewChunk(c.Content)
		if c.ID != "" {
			chunk.ID = c.ID
		}
		if c.Modality != "" {
			chunk.Modality = types.ModalityType(c.Modality)
			chunk.Metadata.Modality = chunk.Modality
		}
		chunk.Metadata.Source = c.Source
		chunk.Embedding = c.Embedding
		for k, v := range c.Metadata {
			if chunk.Metadata.Custom == nil {
				chunk.Metadata.Custom = make(map[string]any)
			}
			chunk.Metadata.Custom[k] = v
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// Entity is the ingestion shape of a graph entity.
type Entity struct {
	ID            string         `json:"id,omitempty"`
	Name          string         `json:"name" binding:"required"`
	Type          string         `json:"type,omitempty"`
	Description   string         `json:"description,omitempty"`
	Confidence    float64        `json:"confidence,omitempty"`
	SourceChunkID string         `json:"source_chunk_id,omitempty"`
	Properties    map[string]any `json:"properties,omitempty"`
}

// EntityRequest is the body of POST /index/entities.
type EntityRequest struct {
	Entities []Entity `json:"entities" binding:"required"`
}

// ToEntities converts the request to library entities.
func (r *EntityRequest) ToEntities() []*types.Entity {
	entities := make([]*types.Entity, 0, len(r.Entities))
	for _, e := range r.Entities {
		entityType := types.EntityType(e.Type)
		if e.Type == "" {
			entityType = types.GenericEntity
		}
		entity := types.NewEntity(e.Name, entityType)
		if e.ID != "" {
			entity.ID = e.ID
		}
		entity.Description = e.Description
		if e.Confidence > 0 {
			entity.Confidence = e.Confidence
		}
		entity.SourceChunkID = e.SourceChunkID
		entity.Properties = e.Properties
		entities = append(entities, entity)
	}
	return entities
}

// Relationship is the ingestion shape of a graph edge.
type Relationship struct {
	ID             string         `json:"id,omitempty"`
	SourceEntityID string         `json:"source_entity_id" binding:"required"`
	TargetEntityID string         `json:"target_entity_id" binding:"required"`
	Type           string         `json:"type,omitempty"`
	Confidence     float64        `json:"confidence,omitempty"`
	SourceChunkID  string         `json:"source_chunk_id,omitempty"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// RelationshipRequest is the body of POST /index/relationships.
type RelationshipRequest struct {
	Relationships []Relationship `json:"relationships" binding:"required"`
}

// ToRelationships converts the request to library relationships.
func (r *RelationshipRequest) ToRelationships() []*types.Relationship {
	rels := make([]*types.Relationship, 0, len(r.Relationships))
	for _, rel := range r.Relationships {
		out := types.NewRelationship(rel.SourceEntityID, rel.TargetEntityID, types.ParseRelationshipType(rel.Type))
		if rel.ID != "" {
			out.ID = rel.ID
		}
		if rel.Confidence > 0 {
			out.Confidence = rel.Confidence
		}
		out.SourceChunkID = rel.SourceChunkID
		out.Properties = rel.Properties
		rels = append(rels, out)
	}
	return rels
}
