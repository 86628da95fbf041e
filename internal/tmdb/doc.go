// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package tmdb implements recommend.MetadataSource against The Movie Database
(TMDb) v3 REST API.

Endpoints used:
  - GET /search/movie?query=
  - GET /movie/{id}?append_to_response=keywords,credits
  - GET /movie/{id}/recommendations?page=1
  - GET /movie/{id}/similar?page=1
  - GET /discover/movie?with_original_language=&sort_by=popularity.desc&page=1

Every call waits on a shared x/time/rate limiter, runs through a gobreaker
circuit breaker and is bounded by a per-call timeout (30s by default). The
client makes one attempt per call: retries and pacing belong to
recommend.RetryPolicy.

Error classification:
  - 404 wraps recommend.ErrNotFound and never trips the breaker
  - other non-2xx responses return *StatusError (wraps ErrStatus)
  - refused connections, DNS failures and an open circuit wrap
    recommend.ErrUnreachable
  - timeouts are ordinary errors

Details responses can be cached in a cache.Store and search results in a
cache.LRU (see WithDetailsCache and WithSearchCache).
*/
package tmdb
