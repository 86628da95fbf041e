// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/cinematch/internal/history"
)

// History handles GET /api/history?limit=N (default 10, at most 100).
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", history.DefaultRecentLimit)

	entries, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	if entries == nil {
		entries = []history.Summary{}
	}
	respondJSON(w, http.StatusOK, &HistoryListResponse{
		Success: true,
		History: entries,
		Count:   len(entries),
	})
}

// HistoryDetails handles GET /api/history/{id}.
func (h *Handler) HistoryDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := historyID(w, r)
	if !ok {
		return
	}

	details, err := h.history.Get(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "History not found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	respondJSON(w, http.StatusOK, &HistoryDetailsResponse{Success: true, Details: details})
}

// DeleteHistory handles DELETE /api/history/{id}. Deleting a missing
// entry succeeds.
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := historyID(w, r)
	if !ok {
		return
	}

	if err := h.history.Delete(r.Context(), id); err != nil {
		respondError(w, r, http.StatusInternalServerError, "Failed to delete history", err)
		return
	}
	respondJSON(w, http.StatusOK, &messageResponse{Success: true, Message: "History deleted successfully"})
}

// ClearHistory handles DELETE /api/history/clear.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.history.Clear(r.Context()); err != nil {
		respondError(w, r, http.StatusInternalServerError, "Failed to clear history", err)
		return
	}
	respondJSON(w, http.StatusOK, &messageResponse{Success: true, Message: "All history cleared successfully"})
}

// Statistics handles GET /api/statistics.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.Statistics(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, msgInternalError, err)
		return
	}
	respondJSON(w, http.StatusOK, &StatisticsResponse{Success: true, Statistics: stats})
}

// historyID parses the {id} URL parameter. The route pattern only admits
// digits, so a failure here means an out of range value.
func historyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, http.StatusNotFound, "History not found", nil)
		return 0, false
	}
	return id, true
}
