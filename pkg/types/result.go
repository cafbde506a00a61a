package types

import (
	"encoding/json"
	"strings"
)

// Strategy is a single retrieval strategy contributing to a result.
type Strategy uint8

const (
	// StrategyVector marks embedding-similarity results.
	StrategyVector Strategy = 1 << iota
	// StrategyGraph marks knowledge-graph traversal results.
	StrategyGraph
	// StrategyKeyword marks lexical (BM25) results.
	StrategyKeyword
)

// strategyOrder fixes the label order for combined strategies so that fused
// source tags are deterministic ("vector+graph", never "graph+vector").
var strategyOrder = []struct {
	flag Strategy
	name string
}{
	{StrategyVector, "vector"},
	{StrategyGraph, "graph"},
	{StrategyKeyword, "keyword"},
}

// StrategySet is the set of strategies that contributed to a result.
type StrategySet uint8

// NewStrategySet builds a set from the given strategies.
func NewStrategySet(strategies ...Strategy) StrategySet {
	var s StrategySet
	for _, st := range strategies {
		s = s.Add(st)
	}
	return s
}

// Add returns the set with the given strategy included.
func (s StrategySet) Add(strategy Strategy) StrategySet {
	return s | StrategySet(strategy)
}

// Union merges two sets.
func (s StrategySet) Union(other StrategySet) StrategySet {
	return s | other
}

// Has reports whether the strategy contributed.
func (s StrategySet) Has(strategy Strategy) bool {
	return s&StrategySet(strategy) != 0
}

// String renders the set as a "+"-joined label, e.g. "vector+graph".
func (s StrategySet) String() string {
	var parts []string
	for _, entry := range strategyOrder {
		if s.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, "+")
}

// MarshalJSON encodes the set as its label.
func (s StrategySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a "+"-joined label.
func (s *StrategySet) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return err
	}
	var set StrategySet
	for _, part := range strings.Split(label, "+") {
		for _, entry := range strategyOrder {
			if part == entry.name {
				set = set.Add(entry.flag)
			}
		}
	}
	*s = set
	return nil
}

// SearchResult is an ephemeral, per-query scored projection of a chunk.
// Results are produced by the retrieval strategies and re-scored during
// fusion; stored chunks are never mutated.
type SearchResult struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Modality ModalityType   `json:"modality"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Source   StrategySet    `json:"source"`
}
