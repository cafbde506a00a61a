package graph

// DefaultMaxDepth bounds query-time traversal when graph search feeds the
// vector-result filter; densely connected graphs fan out quickly past two
// hops.
const DefaultMaxDepth = 2

// StandaloneMaxDepth is the wider bound used when graph search runs on its
// own rather than as a filter source.
const StandaloneMaxDepth = 3

// RelevanceForDistance maps traversal distance to a retrieval score.
// Relevance decays monotonically with distance and is 1.0 at the matched
// entity itself.
func RelevanceForDistance(distance int) float64 {
	switch {
	case distance <= 0:
		return 1.0
	case distance == 1:
		return 0.8
	case distance == 2:
		return 0.5
	default:
		return 0.3
	}
}
