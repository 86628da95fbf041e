// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package events carries ranking session events over an in-process
// Watermill gochannel pub/sub. The API publishes one RankedEvent per
// session to TopicRanked; the Recorder consumes them under the supervisor
// tree and turns them into Prometheus session metrics and a log line.
package events
