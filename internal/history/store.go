// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/metrics"
)

// Config configures the history store.
type Config struct {
	// Path is the DuckDB file. Empty opens an in-memory database.
	Path string `koanf:"path"`

	// MaxMemory is passed to DuckDB's max_memory setting.
	MaxMemory string `koanf:"max_memory"`

	// Threads is passed to DuckDB's threads setting. Zero leaves the default.
	Threads int `koanf:"threads"`
}

// Store persists ranking sessions in DuckDB.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the history database and its schema.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	connStr := ""
	if cfg.Path != "" {
		// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
		connStr = cfg.Path + "?access_mode=read_write"
		if cfg.MaxMemory != "" {
			connStr += "&max_memory=" + cfg.MaxMemory
		}
		if cfg.Threads > 0 {
			connStr += fmt.Sprintf("&threads=%d", cfg.Threads)
		}
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{conn: conn}
	if err := s.createTables(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("History database initialized")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Save stores a session and its recommendations in one transaction and
// returns the new history id.
func (s *Store) Save(ctx context.Context, e *Entry) (id int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("INSERT", tableHistory, time.Since(start), err) }()

	refGenres, err := json.Marshal(nonNil(e.Reference.GenreNames()))
	if err != nil {
		return 0, fmt.Errorf("failed to encode reference genres: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO recommendation_history (
			searched_movie_name, searched_movie_year, searched_movie_genres,
			language_preference, genre_weight, overview_weight, num_recommendations
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		e.Reference.Title,
		e.Reference.Year(),
		string(refGenres),
		e.Language,
		e.Weights.Genre,
		e.Weights.Overview,
		len(e.Recommendations),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommended_movies (
			history_id, movie_title, original_title, language, release_date,
			rating, overview, similarity_score, genre_similarity,
			overview_similarity, genres, recommendation_rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range e.Recommendations {
		rec := &e.Recommendations[i]
		genres, mErr := json.Marshal(nonNil(rec.GenreNames()))
		if mErr != nil {
			err = fmt.Errorf("failed to encode genres: %w", mErr)
			return 0, err
		}
		rank := rec.Rank
		if rank == 0 {
			rank = i + 1
		}
		if _, err = stmt.ExecContext(ctx,
			id,
			rec.Title,
			fallback(rec.OriginalTitle, rec.Title),
			fallback(rec.Language, "unknown"),
			fallback(rec.ReleaseDate, "N/A"),
			rec.Rating,
			rec.Overview,
			rec.Similarity,
			rec.GenreSimilarity,
			rec.OverviewSimilarity,
			string(genres),
			rank,
		); err != nil {
			return 0, fmt.Errorf("failed to insert recommendation %d: %w", rank, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit history: %w", err)
	}

	logging.Debug().Int64("history_id", id).Int("recommendations", len(e.Recommendations)).Msg("Saved recommendation history")
	return id, nil
}

// Recent returns the newest sessions first. limit is clamped to
// [1, MaxRecentLimit]; non-positive selects DefaultRecentLimit.
func (s *Store) Recent(ctx context.Context, limit int) (out []Summary, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", tableHistory, time.Since(start), err) }()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, searched_movie_name, searched_movie_year, searched_movie_genres,
		       language_preference, genre_weight, overview_weight,
		       num_recommendations, created_at
		FROM recommendation_history
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	out = make([]Summary, 0, limit)
	for rows.Next() {
		var (
			sum    Summary
			year   sql.NullString
			genres sql.NullString
			lang   sql.NullString
		)
		if err := rows.Scan(&sum.ID, &sum.SearchedMovie, &year, &genres, &lang,
			&sum.GenreWeight, &sum.OverviewWeight, &sum.NumRecommendations, &sum.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		sum.Year = year.String
		sum.Language = lang.String
		if sum.Genres, err = decodeGenres(genres); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return out, nil
}

// Get returns one session with its recommendations ordered by rank.
func (s *Store) Get(ctx context.Context, id int64) (d *Details, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordDBQuery("SELECT", tableHistory, time.Since(start), nil)
			return
		}
		metrics.RecordDBQuery("SELECT", tableHistory, time.Since(start), err)
	}()

	var (
		out    Details
		year   sql.NullString
		genres sql.NullString
		lang   sql.NullString
	)
	err = s.conn.QueryRowContext(ctx, `
		SELECT id, searched_movie_name, searched_movie_year, searched_movie_genres,
		       language_preference, genre_weight, overview_weight, created_at
		FROM recommendation_history
		WHERE id = ?`, id,
	).Scan(&out.ID, &out.SearchedMovie.Title, &year, &genres, &lang,
		&out.GenreWeight, &out.OverviewWeight, &out.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history %d: %w", id, err)
	}
	out.SearchedMovie.Year = year.String
	out.Language = lang.String
	if out.SearchedMovie.Genres, err = decodeGenres(genres); err != nil {
		return nil, err
	}

	out.Recommendations, err = s.recommendations(ctx, id)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) recommendations(ctx context.Context, historyID int64) ([]RecommendedMovie, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT movie_title, original_title, language, release_date, rating,
		       overview, similarity_score, genre_similarity, overview_similarity,
		       genres, recommendation_rank
		FROM recommended_movies
		WHERE history_id = ?
		ORDER BY recommendation_rank`, historyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := []RecommendedMovie{}
	for rows.Next() {
		var (
			m                                         RecommendedMovie
			original, lang, release, overview, genres sql.NullString
		)
		if err := rows.Scan(&m.Title, &original, &lang, &release, &m.Rating,
			&overview, &m.Similarity, &m.GenreSimilarity, &m.OverviewSimilarity,
			&genres, &m.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		m.OriginalTitle = original.String
		m.Language = lang.String
		m.ReleaseDate = release.String
		m.Overview = overview.String
		if m.Genres, err = decodeGenres(genres); err != nil {
			return nil, err
		}
		recs = append(recs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recommendations: %w", err)
	}
	return recs, nil
}

// Delete removes a session and its recommendations. Deleting a missing id
// is not an error.
func (s *Store) Delete(ctx context.Context, id int64) error {
	return s.inTx(ctx, "DELETE", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recommended_movies WHERE history_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete recommendations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recommendation_history WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete history: %w", err)
		}
		return nil
	})
}

// Clear removes every session.
func (s *Store) Clear(ctx context.Context) error {
	err := s.inTx(ctx, "DELETE", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recommended_movies`); err != nil {
			return fmt.Errorf("failed to clear recommendations: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recommendation_history`); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		return nil
	})
	if err == nil {
		logging.Info().Msg("All history cleared")
	}
	return err
}

// Statistics aggregates the whole history.
func (s *Store) Statistics(ctx context.Context) (st *Statistics, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("SELECT", "statistics", time.Since(start), err) }()

	st = &Statistics{
		MostSearched:         MostSearched{Movie: "N/A"},
		LanguageDistribution: []LanguageCount{},
	}

	if err = s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recommendation_history`).Scan(&st.TotalSearches); err != nil {
		return nil, fmt.Errorf("failed to count searches: %w", err)
	}
	if err = s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM recommended_movies`).Scan(&st.TotalRecommendations); err != nil {
		return nil, fmt.Errorf("failed to count recommendations: %w", err)
	}

	err = s.conn.QueryRowContext(ctx, `
		SELECT searched_movie_name, COUNT(*) AS count
		FROM recommendation_history
		GROUP BY searched_movie_name
		ORDER BY count DESC, searched_movie_name
		LIMIT 1`).Scan(&st.MostSearched.Movie, &st.MostSearched.Count)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to query most searched: %w", err)
	}
	err = nil

	rows, err := s.conn.QueryContext(ctx, `
		SELECT COALESCE(language_preference, ''), COUNT(*) AS count
		FROM recommendation_history
		GROUP BY language_preference
		ORDER BY count DESC, 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to query language distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lc LanguageCount
		if err = rows.Scan(&lc.LanguagePreference, &lc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan language distribution: %w", err)
		}
		st.LanguageDistribution = append(st.LanguageDistribution, lc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate language distribution: %w", err)
	}
	return st, nil
}

// inTx runs fn in a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, tableRecommended, time.Since(start), err) }()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func decodeGenres(raw sql.NullString) ([]string, error) {
	genres := []string{}
	if !raw.Valid || raw.String == "" {
		return genres, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &genres); err != nil {
		return nil, fmt.Errorf("failed to decode genres: %w", err)
	}
	return genres, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

