// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import (
	"math"
	"sort"
)

// Corpus is the session vocabulary together with its term weights.
// Index and Weights always have the same key set.
type Corpus struct {
	// Terms lists the vocabulary in index order (lexically sorted).
	Terms []string

	// Index maps a term to its position in Terms and in every TextVector.
	Index map[string]int

	// Weights maps a term to ln(N/(df+1))+1.
	Weights map[string]float64

	// DocFreq maps a term to the number of documents containing it.
	DocFreq map[string]int

	// Documents is N, the number of documents the corpus was built from.
	Documents int
}

// BuildCorpus normalizes every document and derives the vocabulary and
// term weights. Document order does not change the result.
func BuildCorpus(documents []string) *Corpus {
	docFreq := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, tok := range Normalize(doc) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(documents))
	c := &Corpus{
		Terms:     terms,
		Index:     make(map[string]int, len(terms)),
		Weights:   make(map[string]float64, len(terms)),
		DocFreq:   docFreq,
		Documents: len(documents),
	}
	for i, term := range terms {
		c.Index[term] = i
		c.Weights[term] = IDF(n, docFreq[term])
	}
	return c
}

// IDF returns ln(n/(df+1))+1. It is strictly decreasing in df, and for
// 1 <= df <= n it stays above 1-ln(2), so text vectors are never negative.
func IDF(n float64, df int) float64 {
	return math.Log(n/float64(df+1)) + 1
}

// Size returns the vocabulary length, which is also the TextVector length.
func (c *Corpus) Size() int {
	return len(c.Terms)
}

// TextVector builds the TF-IDF vector of text against the corpus.
// Terms missing from the vocabulary are ignored; text with no tokens
// yields an all-zero vector of length Size().
func (c *Corpus) TextVector(text string) []float64 {
	vec := make([]float64, len(c.Terms))

	tokens := Normalize(text)
	total := len(tokens)
	if total == 0 {
		return vec
	}

	counts := make(map[string]int, total)
	for _, tok := range tokens {
		counts[tok]++
	}
	for term, count := range counts {
		idx, ok := c.Index[term]
		if !ok {
			continue
		}
		vec[idx] = float64(count) / float64(total) * c.Weights[term]
	}
	return vec
}
