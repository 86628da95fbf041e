// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

/*
Package similarity implements the scoring primitives used to compare a
reference movie with its candidates.

# Overview

Two signals are computed per candidate and fused into one score:

  - Genre similarity: cosine of fixed-length indicator vectors built over
    GenreCatalog.
  - Overview similarity: cosine of TF-IDF vectors built over a corpus made of
    the reference overview and every candidate overview in the session.

	combined = wg * cos(genre_ref, genre_cand) + wo * cos(text_ref, text_cand)

# Corpus lifetime

A Corpus is session scoped. Its vocabulary and weights depend on the exact
document set, so it must be rebuilt for every ranking session and must not be
cached across sessions. BuildCorpus is a pure function: identical document
lists yield identical vocabularies and weights.

# Term weighting

	weight(term) = ln(N / (df(term) + 1)) + 1
	tf(term, doc) = count(term, doc) / len(tokens(doc))

N counts every document, including documents that normalize to zero tokens.

# Thread Safety

Every function in this package is pure. A built Corpus is read-only and may
be shared by concurrent readers.
*/
package similarity
