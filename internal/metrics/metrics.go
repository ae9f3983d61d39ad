// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package metrics defines the Prometheus instrumentation for Kinograph.
// All collectors are registered on the default registry via promauto and
// exposed at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinograph_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	// HTTPRequestDuration observes HTTP request latency by route and method.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinograph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// CatalogRecords reports the number of records in the loaded catalog.
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinograph_catalog_records",
			Help: "Number of movie records in the loaded catalog snapshot",
		},
	)

	// CatalogQueryDuration observes in-memory catalog query latency.
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinograph_catalog_query_duration_seconds",
			Help:    "Catalog query duration in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"operation"},
	)

	// VectorSearchDuration observes end-to-end similarity gateway latency
	// (embedding call plus vector store query).
	VectorSearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kinograph_vector_search_duration_seconds",
			Help:    "Similarity gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// VectorSearchErrors counts failed similarity gateway requests.
	VectorSearchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kinograph_vector_search_errors_total",
			Help: "Total number of failed similarity gateway requests",
		},
	)

	// CircuitBreakerState reports breaker state per upstream
	// (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kinograph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// SessionsActive reports the number of live (unexpired) sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kinograph_sessions_active",
			Help: "Number of active sessions",
		},
	)
)

// ObserveCatalogQuery records the duration of a catalog operation that
// started at the given time.
func ObserveCatalogQuery(operation string, start time.Time) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
