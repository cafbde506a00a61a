// Package lexical provides exact-term retrieval over chunks using BM25
// ranking. It complements embedding search for queries where literal terms
// matter, such as proper nouns, acronyms, and error codes.
package lexical

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/soundprediction/graphrag/pkg/types"
)

// BM25 free parameters. k1 controls term-frequency saturation, b controls
// document-length normalization.
const (
	k1 = 1.5
	b  = 0.75
)

type document struct {
	chunk     *types.Chunk
	termFreqs map[string]int
	length    int
}

// Index is an in-memory inverted index with BM25 scoring.
type Index struct {
	mu       sync.RWMutex
	docs     map[string]*document
	order    []string
	docFreqs map[string]int
	totalLen int
	logger   *slog.Logger
}

// NewIndex creates an empty lexical index.
func NewIndex(logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{
		docs:     make(map[string]*document),
		docFreqs: make(map[string]int),
		logger:   logger,
	}
}

// Add indexes chunks by ID, replacing existing entries.
func (idx *Index) Add(ctx context.Context, chunks []*types.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, chunk := range chunks {
		if chunk == nil {
			continue
		}
		if err := chunk.Validate(); err != nil {
			return err
		}
		idx.removeLocked(chunk.ID)

		tokens := Tokenize(chunk.Content)
		doc := &document{
			chunk:     chunk,
			termFreqs: make(map[string]int, len(tokens)),
			length:    len(tokens),
		}
		for _, token := range tokens {
			doc.termFreqs[token]++
		}
		for term := range doc.termFreqs {
			idx.docFreqs[term]++
		}
		idx.docs[chunk.ID] = doc
		idx.order = append(idx.order, chunk.ID)
		idx.totalLen += doc.length
	}
	return nil
}

// Remove deletes a chunk from the index. Unknown IDs are a no-op.
func (idx *Index) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(id)
	return nil
}

func (idx *Index) removeLocked(id string) {
	doc, ok := idx.docs[id]
	if !ok {
		return
	}
	for term := range doc.termFreqs {
		if idx.docFreqs[term] <= 1 {
			delete(idx.docFreqs, term)
		} else {
			idx.docFreqs[term]--
		}
	}
	idx.totalLen -= doc.length
	delete(idx.docs, id)
	for i, existing := range idx.order {
		if existing == id {
			idx.order = append(idx.order[:i], idx.order[i+1:]...)
			break
		}
	}
}

// Count returns the number of indexed chunks.
func (idx *Index) Count(ctx context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs), nil
}

// Search ranks indexed chunks against the query terms with BM25 and returns
// up to topK positive-scoring results in descending score order. Chunks
// sharing no term with the query never appear, whatever topK allows.
func (idx *Index) Search(ctx context.Context, query string, topK int, modality types.ModalityType) ([]types.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, types.ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, types.ErrInvalidLimit
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	totalDocs := len(idx.docs)
	if totalDocs == 0 {
		return nil, nil
	}
	avgLen := float64(idx.totalLen) / float64(totalDocs)

	results := make([]types.SearchResult, 0, topK)
	for _, id := range idx.order {
		doc := idx.docs[id]
		if modality != "" && doc.chunk.Modality != modality {
			continue
		}
		score := idx.scoreLocked(doc, terms, totalDocs, avgLen)
		if score <= 0 {
			continue
		}
		results = append(results, types.SearchResult{
			ID:       doc.chunk.ID,
			Content:  doc.chunk.Content,
			Score:    score,
			Modality: doc.chunk.Modality,
			Metadata: doc.chunk.Metadata.Map(),
			Source:   types.NewStrategySet(types.StrategyKeyword),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}

	idx.logger.Debug("lexical search complete", "terms", len(terms), "results", len(results))
	return results, nil
}

func (idx *Index) scoreLocked(doc *document, terms []string, totalDocs int, avgLen float64) float64 {
	var score float64
	for _, term := range terms {
		tf := doc.termFreqs[term]
		if tf == 0 {
			continue
		}
		df := idx.docFreqs[term]
		idf := math.Log(1 + (float64(totalDocs)-float64(df)+0.5)/(float64(df)+0.5))
		norm := 1 - b + b*float64(doc.length)/avgLen
		score += idf * float64(tf) * (k1 + 1) / (float64(tf) + k1*norm)
	}
	return score
}

// Tokenize lower-cases text and splits it on whitespace. Punctuation stays
// attached to its token, so "University." and "University" are distinct
// terms; scoring is over raw whitespace-delimited words.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
