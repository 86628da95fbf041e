// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package history

import (
	"errors"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// ErrNotFound is returned when a history entry does not exist.
var ErrNotFound = errors.New("history entry not found")

// Recent limits.
const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// Entry is one successful ranking session to persist.
type Entry struct {
	Reference       recommend.Item
	Language        string
	Weights         recommend.Weights
	Recommendations []recommend.ScoredCandidate
}

// Summary is a row of the recent history list.
type Summary struct {
	ID                 int64     `json:"id"`
	SearchedMovie      string    `json:"searched_movie"`
	Year               string    `json:"year"`
	Genres             []string  `json:"genres"`
	Language           string    `json:"language"`
	GenreWeight        float64   `json:"genre_weight"`
	OverviewWeight     float64   `json:"overview_weight"`
	NumRecommendations int       `json:"num_recommendations"`
	Timestamp          time.Time `json:"timestamp"`
}

// SearchedMovie describes the reference of a stored session.
type SearchedMovie struct {
	Title  string   `json:"title"`
	Year   string   `json:"year"`
	Genres []string `json:"genres"`
}

// RecommendedMovie is one stored recommendation.
type RecommendedMovie struct {
	Title              string   `json:"title"`
	OriginalTitle      string   `json:"original_title"`
	Language           string   `json:"language"`
	ReleaseDate        string   `json:"release_date"`
	Rating             float64  `json:"rating"`
	Overview           string   `json:"overview"`
	Similarity         float64  `json:"similarity"`
	GenreSimilarity    float64  `json:"genre_similarity"`
	OverviewSimilarity float64  `json:"overview_similarity"`
	Genres             []string `json:"genres"`
	Rank               int      `json:"rank"`
}

// Details is a stored session with its recommendations ordered by rank.
type Details struct {
	ID              int64              `json:"id"`
	SearchedMovie   SearchedMovie      `json:"searched_movie"`
	Language        string             `json:"language"`
	GenreWeight     float64            `json:"genre_weight"`
	OverviewWeight  float64            `json:"overview_weight"`
	Timestamp       time.Time          `json:"timestamp"`
	Recommendations []RecommendedMovie `json:"recommendations"`
}

// MostSearched is the most frequently searched reference.
type MostSearched struct {
	Movie string `json:"movie"`
	Count int64  `json:"count"`
}

// LanguageCount is one bucket of the language distribution.
type LanguageCount struct {
	LanguagePreference string `json:"language_preference"`
	Count              int64  `json:"count"`
}

// Statistics aggregates the whole history.
type Statistics struct {
	TotalSearches        int64           `json:"total_searches"`
	TotalRecommendations int64           `json:"total_recommendations"`
	MostSearched         MostSearched    `json:"most_searched"`
	LanguageDistribution []LanguageCount `json:"language_distribution"`
}
