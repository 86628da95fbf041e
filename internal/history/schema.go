// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package history

import (
	"context"
	"fmt"
)

// Table names.
const (
	tableHistory     = "recommendation_history"
	tableRecommended = "recommended_movies"
)

// createTables creates the history schema. recommended_movies.history_id
// references recommendation_history.id; the relation is maintained by the
// store (children are always deleted first) rather than a foreign key, so
// parent rows can be deleted inside the same transaction.
func (s *Store) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_recommendation_history_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_recommended_movies_id START 1`,

		`CREATE TABLE IF NOT EXISTS recommendation_history (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_recommendation_history_id'),
			searched_movie_name TEXT NOT NULL,
			searched_movie_year TEXT,
			searched_movie_genres TEXT,
			language_preference TEXT,
			genre_weight DOUBLE,
			overview_weight DOUBLE,
			num_recommendations INTEGER,
			created_at TIMESTAMP DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS recommended_movies (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_recommended_movies_id'),
			history_id BIGINT NOT NULL,
			movie_title TEXT NOT NULL,
			original_title TEXT,
			language TEXT,
			release_date TEXT,
			rating DOUBLE,
			overview TEXT,
			similarity_score DOUBLE,
			genre_similarity DOUBLE,
			overview_similarity DOUBLE,
			genres TEXT,
			recommendation_rank INTEGER
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recommended_movies_history ON recommended_movies(history_id)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendation_history_created ON recommendation_history(created_at)`,
	}

	for _, q := range queries {
		if _, err := s.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
