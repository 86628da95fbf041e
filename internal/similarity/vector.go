// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package similarity

import "math"

// GenreCatalog is the fixed, ordered list of TMDb movie genre ids that
// genre vectors are built over. Its order must never change: vectors from
// different sessions are only comparable because it is stable.
var GenreCatalog = [...]int{
	28,    // Action
	12,    // Adventure
	16,    // Animation
	35,    // Comedy
	80,    // Crime
	99,    // Documentary
	18,    // Drama
	10751, // Family
	14,    // Fantasy
	36,    // History
	27,    // Horror
	10402, // Music
	9648,  // Mystery
	10749, // Romance
	878,   // Science Fiction
	10770, // TV Movie
	53,    // Thriller
	10752, // War
	37,    // Western
}

var genreSlot = func() map[int]int {
	m := make(map[int]int, len(GenreCatalog))
	for i, id := range GenreCatalog {
		m[id] = i
	}
	return m
}()

// GenreVector returns the 0/1 indicator vector of genreIDs over GenreCatalog.
// Ids outside the catalog are ignored.
func GenreVector(genreIDs []int) []float64 {
	vec := make([]float64, len(GenreCatalog))
	for _, id := range genreIDs {
		if i, ok := genreSlot[id]; ok {
			vec[i] = 1
		}
	}
	return vec
}

// Cosine returns dot(a,b)/(|a||b|). It is exactly 0 when either norm is 0
// or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / math.Sqrt(normA*normB)
	// Rounding can push identical vectors a hair above 1.
	if sim > 1 {
		return 1
	}
	return sim
}

// Scores holds the three similarity values of one candidate.
type Scores struct {
	Similarity         float64 `json:"similarity"`
	GenreSimilarity    float64 `json:"genre_similarity"`
	OverviewSimilarity float64 `json:"overview_similarity"`
}

// Fuse scores a candidate against the reference. Weights are applied as
// given; range and sum checks belong to the caller.
func Fuse(refGenre, candGenre, refText, candText []float64, genreWeight, overviewWeight float64) Scores {
	g := Cosine(refGenre, candGenre)
	o := Cosine(refText, candText)
	return Scores{
		Similarity:         genreWeight*g + overviewWeight*o,
		GenreSimilarity:    g,
		OverviewSimilarity: o,
	}
}
