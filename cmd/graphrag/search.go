package graphrag

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	graphraglib "github.com/soundprediction/graphrag"
	"github.com/soundprediction/graphrag/pkg/config"
	"github.com/soundprediction/graphrag/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a hybrid search against the indexed corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

var (
	searchTopK     int
	searchModality string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchTopK, "top-k", 10, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchModality, "modality", "", "Restrict results to one modality (text, image, audio, video)")
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	query := types.Query{
		Text:     strings.Join(args, " "),
		Modality: types.ModalityType(searchModality),
	}
	results, err := client.Search(ctx, query, searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.4f] (%s) %s\n", i+1, r.Score, r.Source, r.ID)
		content := r.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Printf("    %s\n", content)
	}
	return nil
}
