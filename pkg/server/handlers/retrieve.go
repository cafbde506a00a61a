package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	graphrag "github.com/soundprediction/graphrag"
	"github.com/soundprediction/graphrag/pkg/chunkstore"
	"github.com/soundprediction/graphrag/pkg/server/dto"
)

// RetrieveHandler handles search and chunk lookup requests
type RetrieveHandler struct {
	client graphrag.GraphRAG
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client graphrag.GraphRAG) *RetrieveHandler {
	return &RetrieveHandler{client: client}
}

// Search handles POST /search
func (h *RetrieveHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: "invalid_request", Message: err.Error()})
		return
	}

	results, err := h.client.Search(c.Request.Context(), req.ToQuery(), req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "search_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.FromResults(results))
}

// GetChunk handles GET /chunks/:id
func (h *RetrieveHandler) GetChunk(c *gin.Context) {
	id := c.Param("id")

	chunk, err := h.client.GetChunk(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, chunkstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "not_found", Message: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "lookup_failed", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, chunk)
}

// Stats handles GET /stats
func (h *RetrieveHandler) Stats(c *gin.Context) {
	stats, err := h.client.GraphStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Code: "stats_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
