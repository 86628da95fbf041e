// Cinematch - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/similarity"
)

// Messages reported in RankResult.Message.
const (
	msgNoCandidates       = "No similar movies found for the selected language"
	msgNoCandidateDetails = "No candidate details could be retrieved"
	msgDetailsUnavailable = "Failed to get movie details"
	msgCanceled           = "Request canceled"
)

// Engine runs ranking sessions against a metadata source.
// It is safe for concurrent use; sessions share nothing but the source.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	source   *RetryingSource
	gatherer *Gatherer

	requestCount atomic.Int64
	failureCount atomic.Int64
	scoredCount  atomic.Int64
}

// Stats is a snapshot of engine counters.
type Stats struct {
	Requests int64 `json:"requests"`
	Failures int64 `json:"failures"`
	Scored   int64 `json:"scored"`
}

// Option customizes an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	sleep SleepFunc
}

// WithSleep replaces the sleeper used for retries and pacing.
func WithSleep(sleep SleepFunc) Option {
	return func(o *engineOptions) {
		o.sleep = sleep
	}
}

// NewEngine creates a ranking engine. source must perform single attempts;
// the engine applies its own retry policy.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, source MetadataSource, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if source == nil {
		return nil, fmt.Errorf("metadata source is required")
	}

	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}

	retrying := NewRetryingSource(source, NewRetryPolicy(cfg.Retry, o.sleep))
	return &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		source:   retrying,
		gatherer: NewGatherer(retrying, cfg),
	}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns a snapshot of the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requestCount.Load(),
		Failures: e.failureCount.Load(),
		Scored:   e.scoredCount.Load(),
	}
}

// Search returns search hits for name through the retry policy.
func (e *Engine) Search(ctx context.Context, name string) ([]Item, error) {
	return e.source.Search(ctx, name)
}

// Rank runs one ranking session. The only error it returns is an
// *InputError for invalid weights; every other outcome, including a
// missing reference, is reported through RankResult.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req RankRequest) (*RankResult, error) {
	req = e.prepareRequest(ctx, req)
	if err := req.Weights.Validate(); err != nil {
		return nil, err
	}
	e.requestCount.Add(1)

	s := e.newSession(ctx, req)
	result := s.run()
	result.Duration = time.Since(s.start)
	result.RequestID = req.RequestID

	if !result.Success {
		e.failureCount.Add(1)
	}
	e.scoredCount.Add(int64(result.TotalScored))

	s.logger.Info().
		Str("status", string(result.Status)).
		Int("pool_size", result.PoolSize).
		Int("scored", result.TotalScored).
		Int("dropped", result.Dropped).
		Int("returned", len(result.Recommendations)).
		Dur("duration", result.Duration).
		Msg("Ranking session finished")

	return result, nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(ctx context.Context, req RankRequest) RankRequest {
	if req.RequestID == "" {
		req.RequestID = logging.RequestIDFromContext(ctx)
	}
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	req.TopK = e.config.ResolveTopK(req.TopK)
	return req
}

// State is a step of a ranking session.
type State int

// Session states in execution order.
const (
	StateResolveReference State = iota
	StateGatherCandidates
	StateFetchCandidateDetails
	StateBuildCorpus
	StateVectorizeAll
	StateScore
	StateRank
	StateDone
)

var stateNames = [...]string{
	"resolve_reference",
	"gather_candidates",
	"fetch_candidate_details",
	"build_corpus",
	"vectorize_all",
	"score",
	"rank",
	"done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// vectors holds one item's genre and text vectors.
type vectors struct {
	genre []float64
	text  []float64
}

// session is the mutable state of one Rank call. It is never shared.
type session struct {
	ctx    context.Context
	engine *Engine
	req    RankRequest
	logger zerolog.Logger
	start  time.Time
	state  State

	ref        *reference
	pool       []Item
	candidates []candidate
	dropped    int
	corpus     *similarity.Corpus
	refVec     vectors
	candVecs   []vectors
	scored     []ScoredCandidate
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) newSession(ctx context.Context, req RankRequest) *session {
	if logging.RequestIDFromContext(ctx) == "" {
		ctx = logging.ContextWithRequestID(ctx, req.RequestID)
	}
	logger := e.logger.With().
		Str("request_id", req.RequestID).
		Str("reference", req.ReferenceName).
		Int("reference_id", req.ReferenceID).
		Str("language", req.Language.String()).
		Logger()
	return &session{
		ctx:    logger.WithContext(ctx),
		engine: e,
		req:    req,
		logger: logger,
		start:  time.Now(),
	}
}

func (s *session) enter(state State) {
	s.state = state
	s.logger.Debug().Str("state", state.String()).Msg("Entering state")
}

// run walks the state machine until a terminal state.
func (s *session) run() *RankResult {
	g := s.engine.gatherer

	s.enter(StateResolveReference)
	ref, outcome, err := g.resolveReference(s.ctx, s.req.ReferenceName, s.req.ReferenceID, &s.logger)
	if err != nil {
		return s.canceled()
	}
	switch outcome {
	case referenceNotFound:
		return &RankResult{
			Status:  StatusReferenceNotFound,
			Message: notFoundMessage(s.req),
		}
	case referenceDetailsUnavailable:
		return &RankResult{
			Status:  StatusReferenceDetailsUnavailable,
			Message: msgDetailsUnavailable,
		}
	}
	s.ref = ref
	refItem := ref.item()

	s.enter(StateGatherCandidates)
	s.pool, err = g.gatherCandidates(s.ctx, refItem.ID, s.req.Language, &s.logger)
	if err != nil {
		return s.canceled()
	}
	if len(s.pool) == 0 {
		return &RankResult{
			Success:   true,
			Status:    StatusNoCandidates,
			Message:   msgNoCandidates,
			Reference: &refItem,
		}
	}

	s.enter(StateFetchCandidateDetails)
	s.candidates, s.dropped, err = g.fetchDetails(s.ctx, s.pool, &s.logger)
	if err != nil {
		return s.canceled()
	}
	if len(s.candidates) == 0 {
		return &RankResult{
			Success:   true,
			Status:    StatusNoCandidates,
			Message:   msgNoCandidateDetails,
			Reference: &refItem,
			PoolSize:  len(s.pool),
			Dropped:   s.dropped,
		}
	}

	s.enter(StateBuildCorpus)
	s.buildCorpus()

	s.enter(StateVectorizeAll)
	s.vectorizeAll()

	s.enter(StateScore)
	s.score()

	s.enter(StateRank)
	total := len(s.scored)
	top := rankScored(s.scored, s.req.TopK)

	s.enter(StateDone)
	return &RankResult{
		Success:         true,
		Status:          StatusOK,
		Reference:       &refItem,
		Recommendations: top,
		TotalScored:     total,
		PoolSize:        len(s.pool),
		Dropped:         s.dropped,
	}
}

func (s *session) canceled() *RankResult {
	s.logger.Warn().Str("state", s.state.String()).Err(s.ctx.Err()).Msg("Ranking session canceled")
	return &RankResult{Status: StatusCanceled, Message: msgCanceled}
}

// buildCorpus builds the session vocabulary from the reference overview
// plus the overview of every candidate that survived detail fetching.
func (s *session) buildCorpus() {
	docs := make([]string, 0, len(s.candidates)+1)
	docs = append(docs, s.ref.details.Overview)
	for i := range s.candidates {
		docs = append(docs, s.candidates[i].details.Overview)
	}
	s.corpus = similarity.BuildCorpus(docs)
	s.logger.Debug().
		Int("documents", s.corpus.Documents).
		Int("vocabulary", s.corpus.Size()).
		Msg("Corpus built")
}

func (s *session) vectorizeAll() {
	s.refVec = vectors{
		genre: similarity.GenreVector(s.ref.details.AllGenreIDs()),
		text:  s.corpus.TextVector(s.ref.details.Overview),
	}
	s.candVecs = make([]vectors, len(s.candidates))
	for i := range s.candidates {
		d := &s.candidates[i].details
		s.candVecs[i] = vectors{
			genre: similarity.GenreVector(d.AllGenreIDs()),
			text:  s.corpus.TextVector(d.Overview),
		}
	}
}

func (s *session) score() {
	w := s.req.Weights
	s.scored = make([]ScoredCandidate, len(s.candidates))
	for i := range s.candidates {
		c := &s.candidates[i]
		s.scored[i] = ScoredCandidate{
			Item: mergeItem(c.listing, c.details),
			Scores: similarity.Fuse(
				s.refVec.genre, s.candVecs[i].genre,
				s.refVec.text, s.candVecs[i].text,
				w.Genre, w.Overview,
			),
		}
	}
}

// rankScored sorts by combined similarity descending, keeping discovery
// order for ties, assigns ranks and truncates to k.
func rankScored(scored []ScoredCandidate, k int) []ScoredCandidate {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if k < len(scored) {
		scored = scored[:k]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func notFoundMessage(req RankRequest) string {
	if req.ReferenceName == "" && req.ReferenceID > 0 {
		return fmt.Sprintf("Movie #%d not found!", req.ReferenceID)
	}
	return fmt.Sprintf("Movie '%s' not found!", req.ReferenceName)
}
