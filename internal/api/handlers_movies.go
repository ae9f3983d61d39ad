// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/models"
	"github.com/kinograph/kinograph/internal/search"
	"github.com/kinograph/kinograph/internal/vector"
)

// SearchService is the slice of the search orchestrator the movie handlers
// use. Satisfied by *search.Service.
type SearchService interface {
	Search(ctx context.Context, q, mode string, limit int) (models.SearchResult, error)
	SimilarToText(ctx context.Context, overview string, genres, companies []string, k int) ([]models.MovieRecord, error)
	SimilarToMovie(ctx context.Context, id int64, k int) ([]models.MovieRecord, error)
}

// MovieHandler serves the catalog and similarity endpoints.
type MovieHandler struct {
	catalog *catalog.Catalog
	search  SearchService
	api     config.APIConfig
}

// NewMovieHandler creates the movie endpoints handler.
func NewMovieHandler(c *catalog.Catalog, s SearchService, apiCfg config.APIConfig) *MovieHandler {
	return &MovieHandler{catalog: c, search: s, api: apiCfg}
}

// Search handles GET /movies/search.
func (h *MovieHandler) Search(w http.ResponseWriter, r *http.Request) {
	params := searchParams{
		Query: r.URL.Query().Get("q"),
		Mode:  r.URL.Query().Get("mode"),
	}
	if !validateParams(w, r, &params) {
		return
	}
	limit := getIntQuery(r, "limit", h.api.DefaultPageSize, 1, h.api.MaxPageSize)

	result, err := h.search.Search(r.Context(), params.Query, params.Mode, limit)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}

	ctxLogger := logging.Ctx(r.Context())
	ctxLogger.Info().
		Str("component", "api").
		Str("query", sanitizeLogValue(params.Query)).
		Str("mode", result.Mode).
		Int("hits", len(result.Items)).
		Msg("Search completed")

	respondJSON(w, r, http.StatusOK, result, &models.Metadata{Count: len(result.Items)})
}

// Filter handles GET /movies/filter.
func (h *MovieHandler) Filter(w http.ResponseWriter, r *http.Request) {
	pred := models.FilterPredicate{
		Genres:              parseCommaSeparated(r, "genres"),
		ProductionCompanies: parseCommaSeparated(r, "production_companies"),
		RuntimeMin:          getFloatQuery(r, "runtime_min"),
		RuntimeMax:          getFloatQuery(r, "runtime_max"),
		Language:            getStringQuery(r, "language"),
		VoteAverageMin:      getFloatQuery(r, "vote_average_min"),
		VoteCountMin:        getInt64Query(r, "vote_count_min"),
		PopularityMin:       getFloatQuery(r, "popularity_min"),
	}
	limit := getIntQuery(r, "limit", h.api.DefaultPageSize, 1, h.api.MaxPageSize)
	offset := getIntQuery(r, "offset", 0, 0, int(^uint(0)>>1))

	page := h.catalog.Filter(pred, limit, offset)
	respondJSON(w, r, http.StatusOK, page, &models.Metadata{
		Count:      len(page.Items),
		TotalCount: page.Total,
	})
}

// Facets handles GET /movies/facets.
func (h *MovieHandler) Facets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, h.catalog.Facets(), nil)
}

// SimilarText handles POST /movies/similar-text.
func (h *MovieHandler) SimilarText(w http.ResponseWriter, r *http.Request) {
	var req similarTextRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	k := clampK(req.K, h.api)

	items, err := h.search.SimilarToText(r.Context(), req.Overview, req.Genres, req.ProductionCompanies, k)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.SearchResult{Items: items, Mode: search.ModeSemantic},
		&models.Metadata{Count: len(items)})
}

// GetByID handles GET /movies/{movieID}.
func (h *MovieHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := moviePathID(w, r)
	if !ok {
		return
	}
	rec, found := h.catalog.GetByID(id)
	if !found {
		respondErrorCode(w, r, http.StatusNotFound, "NOT_FOUND", "Movie not found")
		return
	}
	respondJSON(w, r, http.StatusOK, rec, nil)
}

// Similar handles GET /movies/{movieID}/similar.
func (h *MovieHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id, ok := moviePathID(w, r)
	if !ok {
		return
	}
	k := getIntQuery(r, "k", h.api.DefaultSimilar, 1, h.api.MaxSimilar)

	items, err := h.search.SimilarToMovie(r.Context(), id, k)
	if err != nil {
		h.respondSearchError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.SearchResult{Items: items, Mode: search.ModeSemantic},
		&models.Metadata{Count: len(items)})
}

// respondSearchError maps orchestrator errors to API responses.
func (h *MovieHandler) respondSearchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, search.ErrNotFound):
		respondErrorCode(w, r, http.StatusNotFound, "NOT_FOUND", "Movie not found")
	case errors.Is(err, vector.ErrUpstreamUnavailable):
		respondErrorCode(w, r, http.StatusBadGateway, "EXTERNAL_SERVICE_FAILED",
			"Similarity search is temporarily unavailable")
	default:
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).
			Str("component", "api").
			Msg("Unhandled search error")
		respondErrorCode(w, r, http.StatusInternalServerError, "INTERNAL_ERROR",
			"Internal server error")
	}
}

// moviePathID parses the {movieID} path parameter, writing a 400 on
// malformed input.
func moviePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "movieID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respondErrorCode(w, r, http.StatusBadRequest, "INVALID_ID", "Movie id must be an integer")
		return 0, false
	}
	return id, true
}

func clampK(k int, apiCfg config.APIConfig) int {
	if k <= 0 {
		return apiCfg.DefaultSimilar
	}
	if k > apiCfg.MaxSimilar {
		return apiCfg.MaxSimilar
	}
	return k
}
