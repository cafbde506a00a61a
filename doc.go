// Package graphrag provides multi-strategy retrieval over a knowledge graph
// for Go.
//
// GraphRAG combines three retrieval strategies over ingested content chunks:
// embedding similarity, knowledge-graph traversal from entities mentioned in
// the query, and BM25 keyword matching. The strategies run concurrently and
// their results are fused into one ranked list with normalized weights;
// graph results can additionally filter vector results down to chunks
// connected to the query's entities.
//
// # Basic Usage
//
// Create a client from configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := graphrag.New(ctx, cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// # Indexing
//
// Chunks are the retrieval unit; entities and relationships extracted from
// them populate the knowledge graph:
//
//	chunk := types.NewChunk("Andrew Ng founded the Stanford AI Lab.")
//	if err := client.IndexChunks(ctx, []*types.Chunk{chunk}); err != nil {
//		log.Fatal(err)
//	}
//
//	entity := types.NewEntity("Andrew Ng", types.PersonEntity)
//	entity.SourceChunkID = chunk.ID
//	if err := client.AddEntities(ctx, []*types.Entity{entity}); err != nil {
//		log.Fatal(err)
//	}
//
// # Searching
//
//	results, err := client.Search(ctx, types.Query{Text: "Who founded the Stanford AI Lab"}, 10)
//
// Each result carries a fused score and the set of strategies that
// contributed it.
package graphrag
