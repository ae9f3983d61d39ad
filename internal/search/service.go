// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package search orchestrates hybrid retrieval: exact title matching against
// the in-memory catalog first, semantic similarity through the vector
// gateway second.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/models"
	"github.com/kinograph/kinograph/internal/vector"
)

// ErrNotFound indicates the requested movie id is not in the catalog.
var ErrNotFound = errors.New("movie not found")

// Search modes. Auto tries the title stage first and falls back to semantic
// retrieval only when the title stage matches nothing.
const (
	ModeAuto     = "auto"
	ModeTitle    = "title"
	ModeSemantic = "semantic"
)

// candidateHeadroom is how many extra candidates similar-to-movie requests
// from the gateway, so the result still fills k slots after the source movie
// and duplicates are dropped.
const candidateHeadroom = 5

// SimilarityGateway is the slice of the vector gateway this service uses.
// Satisfied by *vector.Gateway.
type SimilarityGateway interface {
	SearchSimilar(ctx context.Context, text string, k int) ([]vector.Document, error)
}

// Service answers search and similarity queries over one catalog snapshot.
type Service struct {
	catalog *catalog.Catalog
	gateway SimilarityGateway
}

// NewService creates a search service over the given catalog and gateway.
func NewService(c *catalog.Catalog, g SimilarityGateway) *Service {
	return &Service{catalog: c, gateway: g}
}

// Search runs a hybrid query. In title mode only the title stage runs; in
// semantic mode only the gateway runs; in auto mode the title stage runs
// first and the gateway is consulted only when it returns zero hits, so a
// title hit never costs an upstream call and is never discarded because the
// upstream is down.
func (s *Service) Search(ctx context.Context, q, mode string, limit int) (models.SearchResult, error) {
	if mode == "" {
		mode = ModeAuto
	}

	if mode == ModeTitle || mode == ModeAuto {
		hits := s.catalog.SearchTitle(q, limit)
		if mode == ModeTitle || len(hits) > 0 {
			return models.SearchResult{Items: hits, Mode: ModeTitle}, nil
		}
	}

	docs, err := s.gateway.SearchSimilar(ctx, q, limit)
	if err != nil {
		return models.SearchResult{}, err
	}
	return models.SearchResult{
		Items: s.resolve(docs, limit, 0),
		Mode:  ModeSemantic,
	}, nil
}

// SimilarToText finds movies semantically similar to a free-form
// description. Genres and production companies are folded into the query
// text the same way similar-to-movie builds its query.
func (s *Service) SimilarToText(ctx context.Context, overview string, genres, companies []string, k int) ([]models.MovieRecord, error) {
	docs, err := s.gateway.SearchSimilar(ctx, buildQueryText(overview, genres, companies), k)
	if err != nil {
		return nil, err
	}
	return s.resolve(docs, k, 0), nil
}

// SimilarToMovie finds up to k movies similar to the given catalog entry,
// excluding the entry itself. Returns ErrNotFound for unknown ids. The
// gateway is asked for extra candidates so self-hits and duplicates do not
// shrink the page.
func (s *Service) SimilarToMovie(ctx context.Context, id int64, k int) ([]models.MovieRecord, error) {
	base, ok := s.catalog.GetByID(id)
	if !ok {
		return nil, ErrNotFound
	}

	query := buildQueryText(base.Overview, base.Genres, base.ProductionCompanies)
	docs, err := s.gateway.SearchSimilar(ctx, query, k+candidateHeadroom)
	if err != nil {
		return nil, err
	}
	return s.resolve(docs, k, id), nil
}

// resolve maps gateway documents to catalog records, preserving gateway rank
// order. Documents without a movie id, ids absent from the catalog,
// duplicates, and the excluded id are skipped. excludeID zero means no
// exclusion (the catalog holds no record 0).
func (s *Service) resolve(docs []vector.Document, max int, excludeID int64) []models.MovieRecord {
	out := make([]models.MovieRecord, 0, max)
	seen := make(map[int64]struct{}, len(docs))
	for _, doc := range docs {
		if len(out) >= max {
			break
		}
		if !doc.HasMovieID || doc.MovieID == excludeID {
			continue
		}
		if _, dup := seen[doc.MovieID]; dup {
			continue
		}
		seen[doc.MovieID] = struct{}{}
		if rec, ok := s.catalog.GetByID(doc.MovieID); ok {
			out = append(out, rec)
		}
	}
	return out
}

// buildQueryText concatenates an overview with comma-joined genre and
// company lists into one embedding query.
func buildQueryText(overview string, genres, companies []string) string {
	parts := make([]string, 0, 3)
	if overview != "" {
		parts = append(parts, overview)
	}
	if len(genres) > 0 {
		parts = append(parts, strings.Join(genres, ", "))
	}
	if len(companies) > 0 {
		parts = append(parts, strings.Join(companies, ", "))
	}
	return strings.Join(parts, " ")
}
