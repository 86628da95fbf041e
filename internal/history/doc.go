// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package history persists successful ranking sessions in DuckDB.

Schema:
  - recommendation_history: one row per session (reference title, year,
    genres as JSON text, language preference, weights, result count)
  - recommended_movies: one row per returned recommendation, linked by
    history_id and ordered by recommendation_rank

Ids come from DuckDB sequences. Save, Delete and Clear each run in a
single transaction; children are always written after and deleted before
their parent row.

An empty Config.Path opens an in-memory database (tests, ephemeral runs).
*/
package history
