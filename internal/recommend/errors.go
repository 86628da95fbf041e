// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"fmt"
	"math"
	"net"
)

var (
	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by a MetadataSource for definitive misses.
	// It is never retried.
	ErrNotFound = errors.New("not found")

	// ErrUnreachable marks connectivity failures (refused, reset, DNS,
	// open circuit). They back off longer than other failures.
	ErrUnreachable = errors.New("upstream unreachable")

	// ErrNoData is returned once the retry budget of a call is exhausted.
	ErrNoData = errors.New("no data after retries")
)

// WeightSumTolerance is the allowed deviation of genre+overview from 1.
const WeightSumTolerance = 0.01

// InputError reports a caller mistake detected before any work is done.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// Weights fuses the two similarity signals.
type Weights struct {
	Genre    float64 `json:"genre_weight" koanf:"genre_weight"`
	Overview float64 `json:"overview_weight" koanf:"overview_weight"`
}

// Validate checks that both weights lie in [0,1] and sum to 1 within
// WeightSumTolerance.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w Weights) Validate() error {
	if !inUnitRange(w.Genre) || !inUnitRange(w.Overview) {
		return &InputError{Field: "weights", Message: "Weights must be between 0 and 1"}
	}
	if math.Abs(w.Genre+w.Overview-1) > WeightSumTolerance {
		return &InputError{
			Field:   "weights",
			Message: "Weights must sum to 1.0",
		}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// IsConnectivityError reports whether err is a connectivity failure.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnreachable) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// IsPermanentError reports whether err carries an upstream classification
// (a Transient method returning false) saying a retry cannot succeed.
func IsPermanentError(err error) bool {
	var classified interface{ Transient() bool }
	return errors.As(err, &classified) && !classified.Transient()
}

// wrapNoData builds the error returned after the last failed attempt.
func wrapNoData(op string, attempts int, last error) error {
	return fmt.Errorf("%s: %w after %d attempts: %w", op, ErrNoData, attempts, last)
}
