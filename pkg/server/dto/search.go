// Package dto defines the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/soundprediction/graphrag/pkg/types"
)

// MaxQueryLength bounds accepted query text.
const MaxQueryLength = 4096

// ErrQueryTooLong is returned for queries above MaxQueryLength.
var ErrQueryTooLong = errors.New("query exceeds maximum length")

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query       string   `json:"query" binding:"required"`
	TopK        int      `json:"top_k,omitempty"`
	Modality    string   `json:"modality,omitempty"`
	EntityNames []string `json:"entity_names,omitempty"`
}

// Validate performs validation on SearchRequest
func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return errors.New("query cannot be empty")
	}
	if len(r.Query) > MaxQueryLength {
		return ErrQueryTooLong
	}
	return nil
}

// Query converts the request to the library query type.
func (r *SearchRequest) ToQuery() types.Query {
	return types.Query{
		Text:        r.Query,
		Modality:    types.ModalityType(r.Modality),
		EntityNames: r.EntityNames,
	}
}

// SearchResult is one ranked hit in a SearchResponse.
type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Modality string         `json:"modality"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SearchResponse is the body returned by POST /search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// FromResults converts library results to the wire shape.
func FromResults(results []types.SearchResult) SearchResponse {
	out := make([]SearchResult, len(results))
	for i, r := range results {
		out[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Score,
			Modality: string(r.Modality),
			Source:   r.Source.String(),
			Metadata: r.Metadata,
		}
	}
	return SearchResponse{Results: out, Count: len(out)}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
