package graphrag

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	graphraglib "github.com/soundprediction/graphrag"
	"github.com/soundprediction/graphrag/pkg/config"
	"github.com/soundprediction/graphrag/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index [corpus.yaml]",
	Short: "Index a corpus file of chunks, entities, and relationships",
	Long: `Index a YAML corpus file into the chunk store, retrieval indexes, and the
knowledge graph. The file carries three optional lists:

  chunks:
    - id: c1
      content: "Marie Curie won the Nobel Prize in Physics."
      modality: text
      source: bio.txt
  entities:
    - name: "Marie Curie"
      type: Person
      source_chunk_id: c1
  relationships:
    - source_entity_id: e1
      target_entity_id: e2
      type: AWARDED`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

type corpusChunk struct {
	ID        string    `yaml:"id"`
	Content   string    `yaml:"content"`
	Modality  string    `yaml:"modality"`
	Source    string    `yaml:"source"`
	Embedding []float32 `yaml:"embedding"`
}

type corpusEntity struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Type          string         `yaml:"type"`
	Description   string         `yaml:"description"`
	Confidence    float64        `yaml:"confidence"`
	SourceChunkID string         `yaml:"source_chunk_id"`
	Properties    map[string]any `yaml:"properties"`
}

type corpusRelationship struct {
	ID             string  `yaml:"id"`
	SourceEntityID string  `yaml:"source_entity_id"`
	TargetEntityID string  `yaml:"target_entity_id"`
	Type           string  `yaml:"type"`
	Confidence     float64 `yaml:"confidence"`
	SourceChunkID  string  `yaml:"source_chunk_id"`
}

type corpusFile struct {
	Chunks        []corpusChunk        `yaml:"chunks"`
	Entities      []corpusEntity       `yaml:"entities"`
	Relationships []corpusRelationship `yaml:"relationships"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read corpus file: %w", err)
	}
	var corpus corpusFile
	if err := yaml.Unmarshal(data, &corpus); err != nil {
		return fmt.Errorf("failed to parse corpus file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	client, err := graphraglib.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize graphrag: %w", err)
	}
	defer client.Close(ctx)

	if err := client.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create graph indexes: %w", err)
	}

	if len(corpus.Chunks) > 0 {
		chunks := make([]*types.Chunk, 0, len(corpus.Chunks))
		for _, c := range corpus.Chunks {
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
			chunks = append(chunks, chunk)
		}
		if err := client.IndexChunks(ctx, chunks); err != nil {
			return fmt.Errorf("failed to index chunks: %w", err)
		}
		fmt.Printf("Indexed %d chunks\n", len(chunks))
	}

	if len(corpus.Entities) > 0 {
		entities := make([]*types.Entity, 0, len(corpus.Entities))
		for _, e := range corpus.Entities {
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
		if err := client.AddEntities(ctx, entities); err != nil {
			return fmt.Errorf("failed to index entities: %w", err)
		}
		fmt.Printf("Indexed %d entities\n", len(entities))
	}

	if len(corpus.Relationships) > 0 {
		rels := make([]*types.Relationship, 0, len(corpus.Relationships))
		for _, r := range corpus.Relationships {
			rel := types.NewRelationship(r.SourceEntityID, r.TargetEntityID, types.ParseRelationshipType(r.Type))
			if r.ID != "" {
				rel.ID = r.ID
			}
			if r.Confidence > 0 {
				rel.Confidence = r.Confidence
			}
			rel.SourceChunkID = r.SourceChunkID
			rels = append(rels, rel)
		}
		if err := client.AddRelationships(ctx, rels); err != nil {
			return fmt.Errorf("failed to index relationships: %w", err)
		}
		fmt.Printf("Indexed %d relationships\n", len(rels))
	}

	return nil
}
