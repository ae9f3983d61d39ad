// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"net/http"

	"github.com/kinograph/kinograph/internal/catalog"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	catalog *catalog.Catalog
	// ready reports whether persistent stores are open. Optional.
	ready func() bool
}

// NewHealthHandler creates the health endpoints handler. ready may be nil.
func NewHealthHandler(c *catalog.Catalog, ready func() bool) *HealthHandler {
	return &HealthHandler{catalog: c, ready: ready}
}

// Health handles GET /health. Alive as long as the process serves requests.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"}, nil)
}

// Ready handles GET /ready. Ready means the catalog snapshot is loaded and
// the stores report healthy.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil || h.catalog.Size() == 0 {
		respondErrorCode(w, r, http.StatusServiceUnavailable, "NOT_READY", "Catalog not loaded")
		return
	}
	if h.ready != nil && !h.ready() {
		respondErrorCode(w, r, http.StatusServiceUnavailable, "NOT_READY", "Stores not ready")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"status":  "ready",
		"records": h.catalog.Size(),
	}, nil)
}
