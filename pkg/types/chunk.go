package types

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChunkMetadata carries provenance for a chunk.
type ChunkMetadata struct {
	Source           string         `json:"source"`
	Modality         ModalityType   `json:"modality"`
	CreatedAt        time.Time      `json:"created_at"`
	FilePath         string         `json:"file_path,omitempty"`
	MimeType         string         `json:"mime_type,omitempty"`
	Language         string         `json:"language,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
	OriginalFilename string         `json:"original_filename,omitempty"`
	UploadSource     string         `json:"upload_source,omitempty"`
	SpeakerName      string         `json:"speaker_name,omitempty"`
	Custom           map[string]any `json:"custom,omitempty"`
}

// Map flattens the metadata into the generic map carried on search results.
func (m ChunkMetadata) Map() map[string]any {
	out := map[string]any{
		"source":   m.Source,
		"modality": string(m.Modality),
	}
	if m.FilePath != "" {
		out["file_path"] = m.FilePath
	}
	if m.Language != "" {
		out["language"] = m.Language
	}
	if len(m.Tags) > 0 {
		out["tags"] = m.Tags
	}
	if m.OriginalFilename != "" {
		out["original_filename"] = m.OriginalFilename
	}
	if m.UploadSource != "" {
		out["upload_source"] = m.UploadSource
	}
	if m.SpeakerName != "" {
		out["speaker_name"] = m.SpeakerName
	}
	for k, v := range m.Custom {
		out[k] = v
	}
	return out
}

// Chunk is an immutable unit of retrievable content. Its ID is the join key
// shared between the graph store (as SourceChunkID on entities and
// relationships) and the vector/lexical indexes.
type Chunk struct {
	ID         string        `json:"id"`
	Content    string        `json:"content"`
	Modality   ModalityType  `json:"modality"`
	Metadata   ChunkMetadata `json:"metadata"`
	Embedding  []float32     `json:"embedding,omitempty"`
	ChunkIndex int           `json:"chunk_index"`
	ParentID   string        `json:"parent_id,omitempty"`
}

// NewChunk returns a text Chunk with a generated ID.
func NewChunk(content string) *Chunk {
	return &Chunk{
		ID:       uuid.New().String(),
		Content:  content,
		Modality: TextModality,
		Metadata: ChunkMetadata{Modality: TextModality, CreatedAt: time.Now().UTC()},
	}
}

// Validate checks the Chunk invariants.
func (c *Chunk) Validate() error {
	if strings.TrimSpace(c.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
