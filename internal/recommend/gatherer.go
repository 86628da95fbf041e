// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Gatherer resolves the reference item and collects its candidate pool.
// Every call goes through the retry policy; calls that end without data
// are absorbed except for the reference lookups.
type Gatherer struct {
	source *RetryingSource
	cfg    *Config
}

// NewGatherer creates a Gatherer over an already retrying source.
func NewGatherer(source *RetryingSource, cfg *Config) *Gatherer {
	return &Gatherer{source: source, cfg: cfg}
}

// reference is a resolved reference item. listing is the search hit used
// for display fields and is nil when the reference was given by id.
type reference struct {
	listing *Item
	details *Item
}

// item returns the merged display item for the reference.
func (r *reference) item() Item {
	if r.listing == nil {
		return *r.details
	}
	return mergeItem(*r.listing, *r.details)
}

// candidate pairs a pool entry with its fetched details. order is the
// first-seen position in the deduplicated pool.
type candidate struct {
	listing Item
	details Item
	order   int
}

// resolveOutcome classifies a reference lookup.
type resolveOutcome int

const (
	resolved resolveOutcome = iota
	referenceNotFound
	referenceDetailsUnavailable
)

// resolveReference finds the reference by explicit id or by name. An
// explicit id skips search; a missing id is reported as not found and any
// other details failure as unavailable.
func (g *Gatherer) resolveReference(ctx context.Context, name string, id int, logger *zerolog.Logger) (*reference, resolveOutcome, error) {
	if id > 0 {
		details, err := g.source.Details(ctx, id)
		switch {
		case err == nil && details != nil:
			return &reference{details: details}, resolved, nil
		case isCanceled(ctx, err):
			return nil, 0, err
		case err == nil || errors.Is(err, ErrNotFound):
			return nil, referenceNotFound, nil
		default:
			logger.Warn().Err(err).Int("movie_id", id).Msg("Reference details unavailable")
			return nil, referenceDetailsUnavailable, nil
		}
	}

	hits, err := g.source.Search(ctx, name)
	if isCanceled(ctx, err) {
		return nil, 0, err
	}
	if err != nil {
		logDegraded(logger, "search", err)
	}
	if len(hits) == 0 {
		return nil, referenceNotFound, nil
	}
	listing := hits[0]

	details, err := g.source.Details(ctx, listing.ID)
	if isCanceled(ctx, err) {
		return nil, 0, err
	}
	if err != nil || details == nil {
		logger.Warn().Err(err).Int("movie_id", listing.ID).Msg("Reference details unavailable")
		return nil, referenceDetailsUnavailable, nil
	}
	return &reference{listing: &listing, details: details}, resolved, nil
}

// gatherCandidates fetches the recommended and similar lists, applies the
// language filter, widens a small filtered pool with discover results and
// deduplicates by id, excluding the reference. The returned pool keeps
// first-seen order.
func (g *Gatherer) gatherCandidates(ctx context.Context, refID int, lang Language, logger *zerolog.Logger) ([]Item, error) {
	var all []Item

	recommended, err := g.source.Related(ctx, refID, RelationRecommended)
	if isCanceled(ctx, err) {
		return nil, err
	}
	if err != nil {
		logDegraded(logger, string(RelationRecommended), err)
	}
	all = append(all, recommended...)

	if err := g.source.Policy().Sleep(ctx, g.cfg.Pacing.RelatedPause); err != nil {
		return nil, err
	}

	similar, err := g.source.Related(ctx, refID, RelationSimilar)
	if isCanceled(ctx, err) {
		return nil, err
	}
	if err != nil {
		logDegraded(logger, string(RelationSimilar), err)
	}
	all = append(all, similar...)

	if !lang.IsAny() {
		all = filterLanguage(all, lang)
		if len(all) < g.cfg.Limits.MinPoolSize {
			logger.Debug().
				Int("filtered", len(all)).
				Int("min_pool_size", g.cfg.Limits.MinPoolSize).
				Str("language", lang.Code()).
				Msg("Widening candidate pool with discover")
			discovered, err := g.source.Discover(ctx, lang.Code())
			if isCanceled(ctx, err) {
				return nil, err
			}
			if err != nil {
				logDegraded(logger, "discover", err)
			}
			all = append(all, discovered...)
		}
	}

	return dedupe(all, refID), nil
}

// fetchDetails fetches details for the first MaxDetailFetches pool
// entries in order, pausing after every DetailBatchSize fetches.
// Candidates without details are dropped.
func (g *Gatherer) fetchDetails(ctx context.Context, pool []Item, logger *zerolog.Logger) ([]candidate, int, error) {
	limit := len(pool)
	if limit > g.cfg.Limits.MaxDetailFetches {
		limit = g.cfg.Limits.MaxDetailFetches
	}

	out := make([]candidate, 0, limit)
	dropped := 0
	for i := 0; i < limit; i++ {
		details, err := g.source.Details(ctx, pool[i].ID)
		if isCanceled(ctx, err) {
			return nil, dropped, err
		}
		if err != nil || details == nil {
			dropped++
			logger.Debug().Err(err).Int("movie_id", pool[i].ID).Msg("Dropping candidate without details")
		} else {
			out = append(out, candidate{listing: pool[i], details: *details, order: i})
		}

		batch := g.cfg.Pacing.DetailBatchSize
		if batch > 0 && (i+1)%batch == 0 {
			if err := g.source.Policy().Sleep(ctx, g.cfg.Pacing.DetailBatchPause); err != nil {
				return nil, dropped, err
			}
		}
	}
	return out, dropped, nil
}

// filterLanguage keeps items whose original language matches lang.
func filterLanguage(items []Item, lang Language) []Item {
	out := items[:0:0]
	for i := range items {
		if lang.Matches(items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// dedupe keeps the first occurrence of each id and drops excludeID.
func dedupe(items []Item, excludeID int) []Item {
	seen := make(map[int]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for i := range items {
		id := items[i].ID
		if id == excludeID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, items[i])
	}
	return out
}

// mergeItem takes display fields from the listing and falls back to the
// details for anything the listing left empty. Genres always come from
// the details.
//
//nolint:gocritic // hugeParam: items passed by value for immutability
func mergeItem(listing, details Item) Item {
	merged := listing
	if merged.Title == "" {
		merged.Title = details.Title
	}
	if merged.OriginalTitle == "" {
		merged.OriginalTitle = details.OriginalTitle
	}
	if merged.Language == "" {
		merged.Language = details.Language
	}
	if merged.ReleaseDate == "" {
		merged.ReleaseDate = details.ReleaseDate
	}
	if merged.Rating == 0 {
		merged.Rating = details.Rating
	}
	if merged.Overview == "" {
		merged.Overview = details.Overview
	}
	if merged.Popularity == 0 {
		merged.Popularity = details.Popularity
	}
	merged.Genres = details.Genres
	if len(details.GenreIDs) > 0 {
		merged.GenreIDs = details.GenreIDs
	}
	return merged
}

// isCanceled reports whether the session context ended. Per-call timeouts
// inside err do not count; they are ordinary upstream failures.
func isCanceled(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}
