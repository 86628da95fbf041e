// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/cinematch/internal/events"
	"github.com/tomtom215/cinematch/internal/history"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
	"github.com/tomtom215/cinematch/internal/validation"
)

// Recommend handles POST /api/recommend.
//
// Not-found references and other terminal session states are 200 responses
// with success=false; only malformed input is a 400.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	req := newRecommendRequest(h.defaults)
	if err := decodeJSONBody(w, r, &req); err != nil {
		if isEmptyBody(err) {
			respondError(w, r, http.StatusBadRequest, "Missing required field: movieName", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid input: %s", err.Error()), nil)
		return
	}
	req.MovieName = strings.TrimSpace(req.MovieName)

	if verr := validation.ValidateStruct(&req); verr != nil {
		logging.Ctx(r.Context()).Debug().
			Interface("fields", verr.Details()).
			Msg("Rejected recommend request")
		respondError(w, r, http.StatusBadRequest, verr.Error(), nil)
		return
	}

	rankReq := req.rankRequest(logging.RequestIDFromContext(r.Context()))
	result, err := h.engine.Rank(r.Context(), rankReq)
	if err != nil {
		var inputErr *recommend.InputError
		if errors.As(err, &inputErr) {
			respondError(w, r, http.StatusBadRequest, inputErr.Message, nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, msgRecommendFailure, err)
		return
	}

	if result.Status == recommend.StatusCanceled {
		// The client is gone; nothing useful can be written.
		respondError(w, r, http.StatusServiceUnavailable, result.Message, nil)
		return
	}

	resp := newRecommendResponse(result)
	if result.Success && len(result.Recommendations) > 0 {
		resp.HistoryID = h.saveHistory(r.Context(), rankReq, result)
	}
	h.publishRanked(r.Context(), req.MovieName, rankReq.Language, result, resp.HistoryID)

	respondJSON(w, http.StatusOK, resp)
}

// saveHistory stores a successful session. Failures are logged and the
// response is sent without a history id.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) saveHistory(ctx context.Context, req recommend.RankRequest, res *recommend.RankResult) int64 {
	if h.history == nil || res.Reference == nil {
		return 0
	}
	id, err := h.history.Save(ctx, &history.Entry{
		Reference:       *res.Reference,
		Language:        req.Language.String(),
		Weights:         req.Weights,
		Recommendations: res.Recommendations,
	})
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to save recommendation history")
		return 0
	}
	return id
}

// publishRanked emits the session event. Publishing never fails the request.
func (h *Handler) publishRanked(ctx context.Context, name string, lang recommend.Language, res *recommend.RankResult, historyID int64) {
	if h.publisher == nil {
		return
	}
	ev := events.NewRankedEvent(name, lang, res, historyID)
	if err := h.publisher.PublishRanked(ctx, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("event_id", ev.EventID).Msg("Failed to publish ranked event")
	}
}

// SearchMovies handles GET /api/search-movies?q=<name> and returns the
// best match. Upstream failures are reported as no match.
func (h *Handler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, r, http.StatusBadRequest, "Missing query parameter: q", nil)
		return
	}

	resp := &SearchResponse{Success: true}
	items, err := h.engine.Search(r.Context(), query)
	switch {
	case err != nil && !errors.Is(err, recommend.ErrNotFound):
		logging.Ctx(r.Context()).Warn().Err(err).Str("query", sanitizeLogValue(query)).Msg("Movie search failed")
	case len(items) > 0:
		best := items[0]
		resp.Movie = &best
		resp.Count = 1
	}
	respondJSON(w, http.StatusOK, resp)
}
