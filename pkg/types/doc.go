// Package types defines the core data model shared across the graphrag
// retrieval engine: entities and relationships stored in the knowledge graph,
// chunks indexed for vector and lexical search, queries, and the per-query
// SearchResult projection produced by the retrieval strategies.
//
// Chunk IDs are the join key of the whole design: the same identifier appears
// as the chunk's primary key in the vector/lexical indexes and as
// SourceChunkID on graph entities and relationships. Graph traversal resolves
// entities back to retrievable content through that equality.
package types
