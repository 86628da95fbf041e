// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"strings"

	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/recommend"
)

const noOverview = "No overview available"

// SearchedMovie describes the resolved reference in a recommend response.
type SearchedMovie struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Year     string   `json:"year"`
	Genres   []string `json:"genres"`
	Overview string   `json:"overview"`
	Rating   float64  `json:"rating"`
	Language string   `json:"language"`
}

// Recommendation is one ranked candidate in a recommend response.
type Recommendation struct {
	ID                 int      `json:"id"`
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

// RecommendResponse is the body of POST /api/recommend.
type RecommendResponse struct {
	Success         bool             `json:"success"`
	SearchedMovie   *SearchedMovie   `json:"searched_movie"`
	Recommendations []Recommendation `json:"recommendations"`
	TotalFound      *int             `json:"total_found,omitempty"`
	Message         string           `json:"message,omitempty"`
	HistoryID       int64            `json:"history_id,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// SearchResponse is the body of GET /api/search-movies.
type SearchResponse struct {
	Success bool            `json:"success"`
	Movie   *recommend.Item `json:"movie"`
	Count   int             `json:"count"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ReadinessResponse is the body of GET /api/health/ready.
type ReadinessResponse struct {
	Success bool              `json:"success"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Uptime  string            `json:"uptime"`
	Engine  recommend.Stats   `json:"engine"`
	Events  *EventCounts      `json:"events,omitempty"`
}

// EventCounts summarizes the event recorder.
type EventCounts struct {
	Processed int64 `json:"processed"`
	Failed    int64 `json:"failed"`
}

// HistoryListResponse is the body of GET /api/history.
type HistoryListResponse struct {
	Success bool              `json:"success"`
	History []history.Summary `json:"history"`
	Count   int               `json:"count"`
}

// HistoryDetailsResponse is the body of GET /api/history/{id}.
type HistoryDetailsResponse struct {
	Success bool             `json:"success"`
	Details *history.Details `json:"details"`
}

// StatisticsResponse is the body of GET /api/statistics.
type StatisticsResponse struct {
	Success    bool                `json:"success"`
	Statistics *history.Statistics `json:"statistics"`
}

// displayLanguage renders an ISO code the way clients show it ("EN").
func displayLanguage(code string) string {
	if code == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(code)
}

func newSearchedMovie(item *recommend.Item) *SearchedMovie {
	overview := item.Overview
	if overview == "" {
		overview = noOverview
	}
	return &SearchedMovie{
		ID:       item.ID,
		Title:    item.Title,
		Year:     item.Year(),
		Genres:   item.GenreNames(),
		Overview: overview,
		Rating:   item.Rating,
		Language: displayLanguage(item.Language),
	}
}

//nolint:gocritic // hugeParam: candidate copied once per response row
func newRecommendation(c recommend.ScoredCandidate) Recommendation {
	rec := Recommendation{
		ID:                 c.ID,
		Title:              c.Title,
		OriginalTitle:      c.OriginalTitle,
		Language:           displayLanguage(c.Language),
		ReleaseDate:        c.ReleaseDate,
		Rating:             c.Rating,
		Overview:           c.Overview,
		Similarity:         c.Similarity,
		GenreSimilarity:    c.GenreSimilarity,
		OverviewSimilarity: c.OverviewSimilarity,
		Genres:             c.GenreNames(),
		Rank:               c.Rank,
	}
	if rec.OriginalTitle == "" {
		rec.OriginalTitle = rec.Title
	}
	if rec.ReleaseDate == "" {
		rec.ReleaseDate = "N/A"
	}
	if rec.Overview == "" {
		rec.Overview = noOverview
	}
	return rec
}

// newRecommendResponse renders an engine result. Failed sessions carry
// the engine message as error with no reference.
func newRecommendResponse(res *recommend.RankResult) *RecommendResponse {
	resp := &RecommendResponse{
		Success:         res.Success,
		Recommendations: make([]Recommendation, 0, len(res.Recommendations)),
	}
	if !res.Success {
		resp.Error = res.Message
		return resp
	}

	if res.Reference != nil {
		resp.SearchedMovie = newSearchedMovie(res.Reference)
	}
	for _, c := range res.Recommendations {
		resp.Recommendations = append(resp.Recommendations, newRecommendation(c))
	}
	if res.Status == recommend.StatusOK {
		total := res.TotalScored
		resp.TotalFound = &total
	}
	if len(resp.Recommendations) == 0 {
		resp.Message = res.Message
	}
	return resp
}
