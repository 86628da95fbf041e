// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/cinematch/internal/similarity"
)

// Genre is a catalog genre as reported by the metadata source.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Item is a movie as seen by the engine. Lightweight listings (search,
// related, discover) usually carry GenreIDs only; detail fetches fill Genres.
// Items are immutable within a ranking session.
type Item struct {
	// ID is the metadata source identifier.
	ID int `json:"id"`

	// Title is the localized display title.
	Title string `json:"title"`

	// OriginalTitle is the title in the original language.
	OriginalTitle string `json:"original_title"`

	// Language is the lowercase ISO 639-1 code of the original language.
	Language string `json:"language"`

	// ReleaseDate is YYYY-MM-DD, or empty when unknown.
	ReleaseDate string `json:"release_date"`

	// Rating is the average vote on a 0-10 scale.
	Rating float64 `json:"rating"`

	// Overview is the synopsis text.
	Overview string `json:"overview"`

	// Genres is populated by detail fetches.
	Genres []Genre `json:"genres,omitempty"`

	// GenreIDs is populated by lightweight listings.
	GenreIDs []int `json:"genre_ids,omitempty"`

	// Popularity is the source's popularity signal, used only for display.
	Popularity float64 `json:"popularity,omitempty"`
}

// Year returns the first four characters of ReleaseDate, or "N/A".
//
//nolint:gocritic // value receiver keeps Item immutable
func (i Item) Year() string {
	if len(i.ReleaseDate) < 4 {
		return "N/A"
	}
	return i.ReleaseDate[:4]
}

// GenreNames returns the names of Genres in source order.
//
//nolint:gocritic // value receiver keeps Item immutable
func (i Item) GenreNames() []string {
	names := make([]string, 0, len(i.Genres))
	for _, g := range i.Genres {
		names = append(names, g.Name)
	}
	return names
}

// AllGenreIDs returns the ids from Genres, falling back to GenreIDs when
// the item has not been detail-fetched.
//
//nolint:gocritic // value receiver keeps Item immutable
func (i Item) AllGenreIDs() []int {
	if len(i.Genres) == 0 {
		return i.GenreIDs
	}
	ids := make([]int, 0, len(i.Genres))
	for _, g := range i.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

// Relation selects one of the two related-candidate lists.
type Relation string

const (
	// RelationRecommended is the source's "recommended for fans of" list.
	RelationRecommended Relation = "recommendations"
	// RelationSimilar is the source's "similar movies" list.
	RelationSimilar Relation = "similar"
)

// MetadataSource is the upstream catalog. Implementations perform exactly
// one attempt per call; retries and pacing are applied by the Gatherer.
// Calls return ErrNotFound for definitive misses and any other error for
// failures worth retrying.
type MetadataSource interface {
	// Search returns matches for name, best match first.
	Search(ctx context.Context, name string) ([]Item, error)

	// Details returns the full item, including Genres.
	Details(ctx context.Context, id int) (*Item, error)

	// Related returns one related-candidate list for id.
	Related(ctx context.Context, id int, rel Relation) ([]Item, error)

	// Discover returns popular items whose original language is code.
	Discover(ctx context.Context, code string) ([]Item, error)
}

// ScoredCandidate is a candidate with its similarity scores.
type ScoredCandidate struct {
	Item
	similarity.Scores

	// Rank is the 1-based position in the final ordering.
	Rank int `json:"rank"`
}

// RankRequest is the input of Engine.Rank.
type RankRequest struct {
	// ReferenceName is resolved through Search unless ReferenceID is set.
	ReferenceName string

	// ReferenceID skips the search step when positive.
	ReferenceID int

	// Language restricts candidates; the zero value means any language.
	Language Language

	// TopK bounds the returned list; zero selects the configured default.
	TopK int

	// Weights fuses genre and overview similarity.
	Weights Weights

	// RequestID is propagated into logs.
	RequestID string
}

// Status describes how a ranking session ended.
type Status string

const (
	// StatusOK means candidates were scored.
	StatusOK Status = "ok"
	// StatusNoCandidates means the session succeeded with nothing to score.
	StatusNoCandidates Status = "no_candidates"
	// StatusReferenceNotFound means the reference could not be resolved.
	StatusReferenceNotFound Status = "reference_not_found"
	// StatusReferenceDetailsUnavailable means the reference details fetch failed.
	StatusReferenceDetailsUnavailable Status = "reference_details_unavailable"
	// StatusCanceled means the caller's context ended the session early.
	StatusCanceled Status = "canceled"
)

// RankResult is the outcome of one ranking session. It is always returned,
// with Success=false for the terminal failure states.
type RankResult struct {
	Success bool
	Status  Status

	// Message is a human readable explanation, set for failures and for
	// empty successful results.
	Message string

	// Reference is the resolved reference item, nil on failure.
	Reference *Item

	// Recommendations is sorted by combined similarity, truncated to TopK.
	Recommendations []ScoredCandidate

	// TotalScored counts every candidate that was scored before truncation.
	TotalScored int

	// PoolSize is the deduplicated candidate pool size before the detail cap.
	PoolSize int

	// Dropped counts candidates whose details could not be fetched.
	Dropped int

	RequestID string
	Duration  time.Duration
}
