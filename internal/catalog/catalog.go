// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kinograph/kinograph/internal/metrics"
	"github.com/kinograph/kinograph/internal/models"
)

// runtimeMaxSentinel stands in for a missing runtime when an upper bound is
// applied, so records without a runtime pass any realistic maximum.
const runtimeMaxSentinel = 10000

// Catalog is the read-only in-memory movie snapshot. All methods are safe
// for concurrent use; nothing mutates the snapshot after Load returns.
type Catalog struct {
	records []models.MovieRecord
	byID    map[int64]int

	facetsOnce sync.Once
	facets     models.FacetSummary
}

// Size returns the number of records in the snapshot.
func (c *Catalog) Size() int {
	return len(c.records)
}

// GetByID returns the record with the given id.
func (c *Catalog) GetByID(id int64) (models.MovieRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.MovieRecord{}, false
	}
	return c.records[i], true
}

// SearchTitle returns up to limit records whose title contains q,
// case-insensitively, in catalog order. Records without a title never match.
func (c *Catalog) SearchTitle(q string, limit int) []models.MovieRecord {
	start := time.Now()
	defer metrics.ObserveCatalogQuery("search_title", start)

	needle := strings.ToLower(q)
	out := make([]models.MovieRecord, 0, limit)
	for _, rec := range c.records {
		if rec.Title == "" {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Title), needle) {
			out = append(out, rec)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Filter returns the page of records matching every set predicate field,
// ordered by popularity descending, plus the total number of matches before
// pagination. Records with a popularity value sort before records without
// one; remaining ties break by id ascending. An offset beyond the total
// yields an empty page, not an error.
func (c *Catalog) Filter(pred models.FilterPredicate, limit, offset int) models.MoviePage {
	start := time.Now()
	defer metrics.ObserveCatalogQuery("filter", start)

	matched := make([]int, 0, len(c.records))
	for i := range c.records {
		if matchesPredicate(&c.records[i], &pred) {
			matched = append(matched, i)
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		ra, rb := &c.records[matched[a]], &c.records[matched[b]]
		switch {
		case ra.Popularity != nil && rb.Popularity == nil:
			return true
		case ra.Popularity == nil && rb.Popularity != nil:
			return false
		case ra.Popularity != nil && rb.Popularity != nil && *ra.Popularity != *rb.Popularity:
			return *ra.Popularity > *rb.Popularity
		default:
			return ra.ID < rb.ID
		}
	})

	page := models.MoviePage{
		Total:  len(matched),
		Limit:  limit,
		Offset: offset,
		Items:  []models.MovieRecord{},
	}
	if offset >= len(matched) {
		return page
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	for _, i := range matched[offset:end] {
		page.Items = append(page.Items, c.records[i])
	}
	return page
}

func matchesPredicate(rec *models.MovieRecord, pred *models.FilterPredicate) bool {
	if len(pred.Genres) > 0 && !anyNameMatch(rec.Genres, pred.Genres) {
		return false
	}
	if len(pred.ProductionCompanies) > 0 && !anyNameMatch(rec.ProductionCompanies, pred.ProductionCompanies) {
		return false
	}
	if pred.RuntimeMin != nil && floatOr(rec.Runtime, 0) < *pred.RuntimeMin {
		return false
	}
	if pred.RuntimeMax != nil && floatOr(rec.Runtime, runtimeMaxSentinel) > *pred.RuntimeMax {
		return false
	}
	if pred.Language != nil {
		if rec.OriginalLanguage == nil ||
			!strings.EqualFold(*rec.OriginalLanguage, *pred.Language) {
			return false
		}
	}
	if pred.VoteAverageMin != nil && floatOr(rec.VoteAverage, 0) < *pred.VoteAverageMin {
		return false
	}
	if pred.VoteCountMin != nil && intOr(rec.VoteCount, 0) < *pred.VoteCountMin {
		return false
	}
	if pred.PopularityMin != nil && floatOr(rec.Popularity, 0) < *pred.PopularityMin {
		return false
	}
	return true
}

// anyNameMatch reports whether any wanted name appears in have,
// case-insensitively.
func anyNameMatch(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}

func floatOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func intOr(p *int64, fallback int64) int64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Facets returns the distinct genres, production companies, and lowercased
// original languages present in the catalog, each sorted lexicographically.
// Computed once per snapshot and cached, which is safe because the snapshot
// never changes.
func (c *Catalog) Facets() models.FacetSummary {
	c.facetsOnce.Do(func() {
		start := time.Now()
		defer metrics.ObserveCatalogQuery("facets", start)

		genres := map[string]struct{}{}
		companies := map[string]struct{}{}
		languages := map[string]struct{}{}
		for i := range c.records {
			for _, g := range c.records[i].Genres {
				genres[g] = struct{}{}
			}
			for _, pc := range c.records[i].ProductionCompanies {
				companies[pc] = struct{}{}
			}
			if lang := c.records[i].OriginalLanguage; lang != nil {
				languages[strings.ToLower(*lang)] = struct{}{}
			}
		}
		c.facets = models.FacetSummary{
			Genres:              sortedKeys(genres),
			ProductionCompanies: sortedKeys(companies),
			Languages:           sortedKeys(languages),
		}
	})
	return c.facets
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
