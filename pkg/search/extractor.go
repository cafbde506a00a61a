// Package search implements the retrieval strategies and their fusion:
// heuristic entity extraction, graph traversal search, graph-based filtering
// of vector results, and weighted rank fusion behind a hybrid engine.
package search

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// questionWords are capitalized interrogative and imperative starters that a
// capitalization heuristic would otherwise mistake for proper nouns.
var questionWords = map[string]struct{}{
	"Who": {}, "What": {}, "Where": {}, "When": {}, "Why": {},
	"How": {}, "Tell": {}, "Show": {}, "Find": {},
}

// EntityNameExtractor pulls candidate entity names out of free-form query
// text using a capitalization heuristic. It finds runs of consecutive
// capitalized words, emitting both the joined run and its longer individual
// words so that fuzzy graph lookup can match whichever form was indexed.
// A statistical NER model can replace this behind the same contract.
type EntityNameExtractor struct{}

// NewEntityNameExtractor creates an extractor.
func NewEntityNameExtractor() *EntityNameExtractor {
	return &EntityNameExtractor{}
}

// Extract returns candidate entity names in first-seen order without
// duplicates. All-lowercase text yields nothing; the heuristic needs
// capitalization to spot proper nouns.
func (e *EntityNameExtractor) Extract(text string) []string {
	words := strings.Fields(text)
	var candidates []string

	i := 0
	for i < len(words) {
		if !isCandidateWord(words[i]) {
			i++
			continue
		}

		// Greedily extend a run of consecutive capitalized words. Short
		// words stay in the run so "University of X" style names survive.
		j := i + 1
		for j < len(words) && isCandidateWord(words[j]) {
			j++
		}
		run := words[i:j]

		if len(run) > 1 {
			candidates = append(candidates, strings.Join(run, " "))
			for _, word := range run {
				if len(word) > 2 {
					candidates = append(candidates, word)
				}
			}
		} else if len(run[0]) > 2 {
			candidates = append(candidates, run[0])
		}
		i = j
	}

	return dedupeOrdered(candidates)
}

func isCandidateWord(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError || !unicode.IsUpper(r) {
		return false
	}
	_, skip := questionWords[word]
	return !skip
}

func dedupeOrdered(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	unique := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	return unique
}
