// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package recommend ranks movies by similarity to a reference movie.
//
// # Architecture
//
// A ranking session is a fixed sequence of states:
//
//	ResolveReference -> GatherCandidates -> FetchCandidateDetails ->
//	BuildCorpus -> VectorizeAll -> Score -> Rank -> Done
//
// The reference is resolved by name (search, then details) or by explicit
// id (details only). Candidates come from the source's "recommended" and
// "similar" lists, optionally filtered by original language. A filtered
// pool smaller than Limits.MinPoolSize is widened with a discover query.
// The pool is deduplicated by id in first-seen order and never contains
// the reference.
//
// Scoring is delegated to package similarity: one TF-IDF corpus per
// session over the reference overview and every candidate that survived
// detail fetching, a genre indicator vector per item, and a weighted sum
// of the two cosine similarities.
//
// # Failure Handling
//
// Rank returns an error only for invalid weights (*InputError). A missing
// reference or an unavailable reference detail fetch ends the session with
// Success=false. Every other upstream failure is absorbed: the call is
// retried by RetryPolicy and, once exhausted, treated as "no data" for that
// call only. Candidates whose details cannot be fetched are dropped from
// scoring.
//
// # Pacing
//
// All upstream calls run sequentially within a session. The retry policy
// waits Retry.CallDelay before every attempt; the gatherer adds
// Pacing.RelatedPause between the two related lists and
// Pacing.DetailBatchPause after every Pacing.DetailBatchSize detail
// fetches. Cross-session rate limiting belongs to the MetadataSource.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), tmdbClient, logger)
//	if err != nil {
//	    return err
//	}
//	result, err := engine.Rank(ctx, recommend.RankRequest{
//	    ReferenceName: "Inception",
//	    Language:      recommend.ParseLanguage("english"),
//	    Weights:       recommend.Weights{Genre: 0.7, Overview: 0.3},
//	})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Session state is never shared.
package recommend
