package types

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Validation errors
var (
	ErrEmptyName      = errors.New("name cannot be empty")
	ErrEmptyQuery     = errors.New("query cannot be empty")
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrEmptySourceID  = errors.New("source entity id cannot be empty")
	ErrEmptyTargetID  = errors.New("target entity id cannot be empty")
	ErrInvalidLimit   = errors.New("limit must be positive")
	ErrInvalidWeights = errors.New("strategy weights must not all be zero")
)

// ModalityType identifies the medium a chunk was extracted from.
type ModalityType string

const (
	TextModality  ModalityType = "text"
	ImageModality ModalityType = "image"
	AudioModality ModalityType = "audio"
	VideoModality ModalityType = "video"
)

// EntityType classifies nodes in the knowledge graph.
type EntityType string

const (
	PersonEntity       EntityType = "Person"
	OrganizationEntity EntityType = "Organization"
	LocationEntity     EntityType = "Location"
	ConceptEntity      EntityType = "Concept"
	EventEntity        EntityType = "Event"
	DocumentEntity     EntityType = "Document"
	ImageEntity        EntityType = "Image"
	AudioEntity        EntityType = "Audio"
	VideoEntity        EntityType = "Video"
	GenericEntity      EntityType = "Entity"
)

// RelationshipType classifies edges in the knowledge graph. The vocabulary is
// open-ended: extraction may produce arbitrary strings, which are normalized
// through ParseRelationshipType.
type RelationshipType string

const (
	Mentions        RelationshipType = "MENTIONS"
	RelatedTo       RelationshipType = "RELATED_TO"
	PartOf          RelationshipType = "PART_OF"
	LocatedIn       RelationshipType = "LOCATED_IN"
	WorksFor        RelationshipType = "WORKS_FOR"
	EmployedBy      RelationshipType = "EMPLOYED_BY"
	MemberOf        RelationshipType = "MEMBER_OF"
	SpouseOf        RelationshipType = "SPOUSE_OF"
	ChildOf         RelationshipType = "CHILD_OF"
	ParentOf        RelationshipType = "PARENT_OF"
	SiblingOf       RelationshipType = "SIBLING_OF"
	Awarded         RelationshipType = "AWARDED"
	Received        RelationshipType = "RECEIVED"
	Won             RelationshipType = "WON"
	AppearsIn       RelationshipType = "APPEARS_IN"
	TranscribedFrom RelationshipType = "TRANSCRIBED_FROM"
	ExtractedFrom   RelationshipType = "EXTRACTED_FROM"
	StudiedAt       RelationshipType = "STUDIED_AT"
	GraduatedFrom   RelationshipType = "GRADUATED_FROM"
	CreatedBy       RelationshipType = "CREATED_BY"
	AuthoredBy      RelationshipType = "AUTHORED_BY"
	FoundedBy       RelationshipType = "FOUNDED_BY"
	FounderOf       RelationshipType = "FOUNDER_OF"
	ExpertIn        RelationshipType = "EXPERT_IN"
	SpecializesIn   RelationshipType = "SPECIALIZES_IN"
)

var knownRelationshipTypes = map[RelationshipType]struct{}{
	Mentions: {}, RelatedTo: {}, PartOf: {}, LocatedIn: {}, WorksFor: {},
	EmployedBy: {}, MemberOf: {}, SpouseOf: {}, ChildOf: {}, ParentOf: {},
	SiblingOf: {}, Awarded: {}, Received: {}, Won: {}, AppearsIn: {},
	TranscribedFrom: {}, ExtractedFrom: {}, StudiedAt: {}, GraduatedFrom: {},
	CreatedBy: {}, AuthoredBy: {}, FoundedBy: {}, FounderOf: {}, ExpertIn: {},
	SpecializesIn: {},
}

// ParseRelationshipType normalizes a raw relationship type string. Unknown
// types fall back to RELATED_TO rather than being rejected, so malformed
// extraction output never blocks a write.
func ParseRelationshipType(raw string) RelationshipType {
	normalized := RelationshipType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", "_")))
	if _, ok := knownRelationshipTypes[normalized]; ok {
		return normalized
	}
	return RelatedTo
}

// Entity is a named node in the knowledge graph.
type Entity struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Type           EntityType     `json:"type"`
	Description    string         `json:"description,omitempty"`
	Confidence     float64        `json:"confidence"`
	SourceModality ModalityType   `json:"source_modality"`
	SourceChunkID  string         `json:"source_chunk_id"`
	Properties     map[string]any `json:"properties,omitempty"`
}

// NewEntity returns an Entity with a generated ID and full confidence.
func NewEntity(name string, entityType EntityType) *Entity {
	return &Entity{
		ID:         uuid.New().String(),
		Name:       name,
		Type:       entityType,
		Confidence: 1.0,
	}
}

// Validate checks the Entity invariants.
func (e *Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Relationship is a typed, directed edge between two entities. Multiple edges
// of different types may exist between the same pair.
type Relationship struct {
	ID             string           `json:"id"`
	SourceEntityID string           `json:"source_entity_id"`
	TargetEntityID string           `json:"target_entity_id"`
	Type           RelationshipType `json:"type"`
	Confidence     float64          `json:"confidence"`
	SourceChunkID  string           `json:"source_chunk_id"`
	Properties     map[string]any   `json:"properties,omitempty"`
}

// NewRelationship returns a Relationship with a generated ID.
func NewRelationship(sourceID, targetID string, relType RelationshipType) *Relationship {
	return &Relationship{
		ID:             uuid.New().String(),
		SourceEntityID: sourceID,
		TargetEntityID: targetID,
		Type:           relType,
		Confidence:     1.0,
	}
}

// Validate checks the Relationship invariants.
func (r *Relationship) Validate() error {
	if r.SourceEntityID == "" {
		return ErrEmptySourceID
	}
	if r.TargetEntityID == "" {
		return ErrEmptyTargetID
	}
	return nil
}

// Query is a free-text retrieval request.
type Query struct {
	Text string `json:"text"`
	// Modality restricts results to a single modality when set.
	Modality ModalityType `json:"modality,omitempty"`
	// EntityNames overrides heuristic entity extraction when non-empty.
	EntityNames []string `json:"entity_names,omitempty"`
}

// Validate checks the Query invariants.
func (q *Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrEmptyQuery
	}
	return nil
}
