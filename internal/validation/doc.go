// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package validation validates API request structs with go-playground/validator v10.

A single validator instance is built on first use (it caches struct metadata
and is safe for concurrent use). Field names in errors are the JSON names of
the fields.

# Custom Tags

  - weight: float in [0, 1]
  - weightsum=Other: this field plus sibling Other sums to 1 within
    recommend.WeightSumTolerance
  - langpref: "mixed", a language name or a two-letter code

# Usage

	type RecommendRequest struct {
	    MovieName      string  `json:"movieName" validate:"required,max=200"`
	    GenreWeight    float64 `json:"genreWeight" validate:"weight,weightsum=OverviewWeight"`
	    OverviewWeight float64 `json:"overviewWeight" validate:"weight"`
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
	    respondError(w, http.StatusBadRequest, verr.Error())
	    return
	}
*/
package validation
