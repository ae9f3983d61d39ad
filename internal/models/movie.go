// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package models defines the shared data structures exchanged between the
// catalog, search, and API layers.
package models

// MovieRecord is one catalog entry, produced once at load time and never
// mutated afterwards. Optional dataset columns map to pointer fields so the
// JSON output distinguishes "absent" from zero values.
type MovieRecord struct {
	ID                  int64    `json:"id"`
	Title               string   `json:"title"`
	Overview            string   `json:"overview"`
	Genres              []string `json:"genres"`
	ProductionCompanies []string `json:"production_companies"`
	Runtime             *float64 `json:"runtime,omitempty"`
	OriginalLanguage    *string  `json:"original_language,omitempty"`
	VoteAverage         *float64 `json:"vote_average,omitempty"`
	VoteCount           *int64   `json:"vote_count,omitempty"`
	Popularity          *float64 `json:"popularity,omitempty"`
	ReleaseDate         *string  `json:"release_date,omitempty"`
	PosterURL           *string  `json:"poster_url,omitempty"`
}

// FilterPredicate is the AND-combination of optional catalog filters.
// A nil/empty field means "no constraint on this dimension".
type FilterPredicate struct {
	Genres              []string
	ProductionCompanies []string
	RuntimeMin          *float64
	RuntimeMax          *float64
	Language            *string
	VoteAverageMin      *float64
	VoteCountMin        *int64
	PopularityMin       *float64
}

// Empty reports whether the predicate constrains nothing, in which case a
// filter matches every record.
func (p FilterPredicate) Empty() bool {
	return len(p.Genres) == 0 &&
		len(p.ProductionCompanies) == 0 &&
		p.RuntimeMin == nil &&
		p.RuntimeMax == nil &&
		p.Language == nil &&
		p.VoteAverageMin == nil &&
		p.VoteCountMin == nil &&
		p.PopularityMin == nil
}

// FacetSummary lists the distinct filterable values present in the catalog.
// All slices are sorted lexicographically; languages are lowercased.
type FacetSummary struct {
	Genres              []string `json:"genres"`
	ProductionCompanies []string `json:"production_companies"`
	Languages           []string `json:"languages"`
}

// MoviePage is a paginated slice of catalog records together with the total
// number of matches before pagination was applied.
type MoviePage struct {
	Items  []MovieRecord `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// SearchResult carries search hits plus the retrieval stage that produced
// them ("title" or "semantic").
type SearchResult struct {
	Items []MovieRecord `json:"items"`
	Mode  string        `json:"mode"`
}

// WatchlistEntry is a single watchlist item resolved against the catalog.
type WatchlistEntry struct {
	MovieID int64        `json:"movie_id"`
	Movie   *MovieRecord `json:"movie,omitempty"`
}
