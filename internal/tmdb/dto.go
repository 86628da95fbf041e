// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

import (
	"strings"

	"github.com/tomtom215/cinematch/internal/recommend"
)

// movie is the TMDb movie shape shared by listings and details.
// Listings carry genre_ids, details carry genres.
type movie struct {
	ID               int               `json:"id"`
	Title            string            `json:"title"`
	OriginalTitle    string            `json:"original_title"`
	OriginalLanguage string            `json:"original_language"`
	ReleaseDate      string            `json:"release_date"`
	VoteAverage      float64           `json:"vote_average"`
	Overview         string            `json:"overview"`
	Popularity       float64           `json:"popularity"`
	GenreIDs         []int             `json:"genre_ids"`
	Genres           []recommend.Genre `json:"genres"`
}

// page is a paginated TMDb list response.
type page struct {
	Page         int     `json:"page"`
	Results      []movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// apiError is the TMDb error body.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func (m *movie) toItem() recommend.Item {
	return recommend.Item{
		ID:            m.ID,
		Title:         m.Title,
		OriginalTitle: m.OriginalTitle,
		Language:      strings.ToLower(m.OriginalLanguage),
		ReleaseDate:   m.ReleaseDate,
		Rating:        m.VoteAverage,
		Overview:      m.Overview,
		Genres:        m.Genres,
		GenreIDs:      m.GenreIDs,
		Popularity:    m.Popularity,
	}
}

func (p *page) items() []recommend.Item {
	items := make([]recommend.Item, 0, len(p.Results))
	for i := range p.Results {
		items = append(items, p.Results[i].toItem())
	}
	return items
}
