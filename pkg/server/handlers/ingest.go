package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	graphrag "github.com/soundprediction/graphrag"
	"github.com/soundprediction/graphrag/pkg/server/dto"
)

// IngestHandler handles indexing requests
type IngestHandler struct {
	client graphrag.GraphRAG
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(client graphrag.GraphRAG) *IngestHandler {
	return &IngestHandler{client: client}
}

// AddChunks handles POST /index/chunks
func (h *IngestHandler) AddChunks(c *gin.Context) {
	var req dto.IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	chunks := req.ToChunks()
	if err := h.client.IndexChunks(c.Request.Context(), chunks); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "index_failed", Message: err.Error()})
		return
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	c.JSON(http.StatusCreated, gin.H{"indexed": len(chunks), "chunk_ids": ids})
}

// AddEntities handles POST /index/entities
func (h *IngestHandler) AddEntities(c *gin.Context) {
	var req dto.EntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	entities := req.ToEntities()
	if err := h.client.AddEntities(c.Request.Context(), entities); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "index_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"indexed": len(entities)})
}

// AddRelationships handles POST /index/relationships
func (h *IngestHandler) AddRelationships(c *gin.Context) {
	var req dto.RelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	rels := req.ToRelationships()
	if err := h.client.AddRelationships(c.Request.Context(), rels); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "index_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"indexed": len(rels)})
}
