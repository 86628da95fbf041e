// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"github.com/tomtom215/cinematch/internal/recommend"
)

// RecommendRequest is the body of POST /api/recommend.
//
// Fields:
//   - MovieName: reference title to search for (required)
//   - MovieID: optional TMDb id; skips the title search when positive
//   - Language: "mixed" (default), "hindi", "english" or a two-letter code
//   - GenreWeight, OverviewWeight: fusion weights in [0,1] summing to 1
//   - TopK: number of recommendations (default 5, at most 20)
type RecommendRequest struct {
	MovieName      string  `json:"movieName" validate:"required,max=200"`
	MovieID        int     `json:"movieId" validate:"omitempty,min=1"`
	Language       string  `json:"language" validate:"omitempty,langpref"`
	GenreWeight    float64 `json:"genreWeight" validate:"weight"`
	OverviewWeight float64 `json:"overviewWeight" validate:"weight,weightsum=GenreWeight"`
	TopK           int     `json:"topK" validate:"omitempty,min=1,max=20"`
}

// newRecommendRequest returns a request pre-filled with the defaults so
// that decoding only overrides the fields present in the body.
func newRecommendRequest(defaults recommend.Weights) RecommendRequest {
	return RecommendRequest{
		Language:       "mixed",
		GenreWeight:    defaults.Genre,
		OverviewWeight: defaults.Overview,
	}
}

// rankRequest converts the validated body into an engine request.
//
//nolint:gocritic // value receiver keeps the request immutable
func (r RecommendRequest) rankRequest(requestID string) recommend.RankRequest {
	return recommend.RankRequest{
		ReferenceName: r.MovieName,
		ReferenceID:   r.MovieID,
		Language:      recommend.ParseLanguage(r.Language),
		TopK:          r.TopK,
		Weights:       recommend.Weights{Genre: r.GenreWeight, Overview: r.OverviewWeight},
		RequestID:     requestID,
	}
}
