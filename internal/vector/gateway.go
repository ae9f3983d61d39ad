// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package vector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// ErrUpstreamUnavailable indicates the similarity stack could not serve the
// request — the embedding endpoint or vector store failed, timed out, or the
// circuit breaker is open. Callers decide whether this degrades or fails the
// overall operation.
var ErrUpstreamUnavailable = errors.New("similarity upstream unavailable")

// Gateway composes the embedder and the vector store behind a circuit
// breaker and a per-call timeout. It is the only path the rest of the
// service uses to reach the similarity stack.
type Gateway struct {
	embedder Embedder
	store    Searcher
	breaker  *gobreaker.CircuitBreaker[[]Document]
	timeout  time.Duration
}

// NewGateway wires an embedder and a vector store into a Gateway. timeout
// bounds each SearchSimilar call end to end; zero means 10s.
func NewGateway(embedder Embedder, store Searcher, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	const name = "similarity-upstream"
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logging.Warn().
				Str("component", "vector").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(gobreaker.StateClosed))
	return &Gateway{
		embedder: embedder,
		store:    store,
		breaker:  gobreaker.NewCircuitBreaker[[]Document](settings),
		timeout:  timeout,
	}
}

// SearchSimilar embeds text and returns the k nearest documents from the
// vector store, in store rank order. All failure modes map to
// ErrUpstreamUnavailable.
func (g *Gateway) SearchSimilar(ctx context.Context, text string, k int) ([]Document, error) {
	start := time.Now()

	docs, err := g.breaker.Execute(func() ([]Document, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		vec, err := g.embedder.Embed(callCtx, text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return g.store.Search(callCtx, vec, k)
	})

	metrics.VectorSearchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.VectorSearchErrors.Inc()
		logger := logging.Ctx(ctx)
		logger.Warn().
			Str("component", "vector").
			Int("k", k).
			Err(err).
			Msg("Similarity search failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return docs, nil
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
