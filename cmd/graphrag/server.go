package graphrag

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	graphraglib "github.com/soundprediction/graphrag"
	"github.com/soundprediction/graphrag/pkg/config"
	"github.com/soundprediction/graphrag/pkg/server"
	"github.com/soundprediction/graphrag/pkg/telemetry"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the GraphRAG HTTP server",
	Long: `Start the GraphRAG HTTP server to provide REST API access to indexing and
hybrid search.

The server provides endpoints for:
- Indexing chunks, entities, and relationships
- Hybrid search across vector, graph, and keyword strategies
- Chunk lookup and graph statistics
- Health checks`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")

	// Graph database flags
	serverCmd.Flags().String("graph-uri", "bolt://localhost:7687", "Neo4j URI")
	serverCmd.Flags().String("graph-username", "neo4j", "Neo4j username")
	serverCmd.Flags().String("graph-password", "", "Neo4j password")
	serverCmd.Flags().String("graph-database", "neo4j", "Neo4j database name")

	// Chunk store flags
	serverCmd.Flags().String("chunk-store-path", "", "Badger chunk store directory (empty for in-memory)")

	// Embedding flags
	serverCmd.Flags().String("embedding-provider", "", "Embedding provider (openai, embedeverything)")
	serverCmd.Flags().String("embedding-model", "", "Embedding model")
	serverCmd.Flags().String("embedding-api-key", "", "Embedding API key")

	// Telemetry flags
	serverCmd.Flags().String("telemetry-parquet-path", "", "Directory for telemetry parquet files")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	overrideConfigWithFlags(cmd, cfg)

	logger := newLogger(cfg)

	ctx := context.Background()
	client, err := graphraglib.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize graphrag: %w", err)
	}
	defer client.Close(ctx)

	// Attach per-query telemetry next to the error logs.
	if cfg.Telemetry.ParquetPath != "" {
		if recorder, err := telemetry.NewQueryRecorder(cfg.Telemetry.ParquetPath); err == nil {
			client.Engine().WithRecorder(recorder)
			defer recorder.Close()
		} else {
			logger.Warn("query telemetry disabled", "error", err)
		}
	}

	srv := server.New(cfg, client, logger)
	srv.Setup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info("received signal", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

func overrideConfigWithFlags(cmd *cobra.Command, cfg *config.Config) {
	// Server flags
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		cfg.Server.Mode = serverMode
	}

	// Graph database flags
	if cmd.Flags().Changed("graph-uri") {
		cfg.Graph.URI, _ = cmd.Flags().GetString("graph-uri")
	}
	if cmd.Flags().Changed("graph-username") {
		cfg.Graph.Username, _ = cmd.Flags().GetString("graph-username")
	}
	if cmd.Flags().Changed("graph-password") {
		cfg.Graph.Password, _ = cmd.Flags().GetString("graph-password")
	}
	if cmd.Flags().Changed("graph-database") {
		cfg.Graph.Database, _ = cmd.Flags().GetString("graph-database")
	}

	// Chunk store flags
	if cmd.Flags().Changed("chunk-store-path") {
		cfg.ChunkStore.Path, _ = cmd.Flags().GetString("chunk-store-path")
	}

	// Embedding flags
	if cmd.Flags().Changed("embedding-provider") {
		cfg.Embedding.Provider, _ = cmd.Flags().GetString("embedding-provider")
	}
	if cmd.Flags().Changed("embedding-model") {
		cfg.Embedding.Model, _ = cmd.Flags().GetString("embedding-model")
	}
	if cmd.Flags().Changed("embedding-api-key") {
		cfg.Embedding.APIKey, _ = cmd.Flags().GetString("embedding-api-key")
	}

	// Telemetry flags
	if cmd.Flags().Changed("telemetry-parquet-path") {
		cfg.Telemetry.ParquetPath, _ = cmd.Flags().GetString("telemetry-parquet-path")
	}
}
