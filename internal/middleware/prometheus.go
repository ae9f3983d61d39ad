// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/metrics"
)

// statusResponseWriter captures the response status for instrumentation.
type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Metrics records request counts and latencies, labeled by the chi route
// pattern rather than the raw path so cardinality stays bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.
			WithLabelValues(pattern, r.Method, strconv.Itoa(sw.status)).Inc()
		metrics.HTTPRequestDuration.
			WithLabelValues(pattern, r.Method).Observe(elapsed.Seconds())

		logger := logging.Ctx(r.Context())
		logger.Debug().
			Str("component", "http").
			Str("method", r.Method).
			Str("path", pattern).
			Int("status", sw.status).
			Dur("elapsed", elapsed).
			Msg("Request served")
	})
}
