// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package catalog loads the processed movie dataset and serves read-only
// queries over it. The dataset is a CSV produced by the offline cleaning
// pipeline; it is read once at startup into an immutable in-memory snapshot.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/models"
)

var (
	// ErrDatasetMissing indicates the dataset file does not exist.
	ErrDatasetMissing = errors.New("dataset file missing")

	// ErrDatasetSchema indicates the dataset lacks a required column.
	ErrDatasetSchema = errors.New("dataset schema invalid")
)

// requiredColumns must all be present in the CSV header.
var requiredColumns = []string{"id", "title", "overview"}

// Load reads the movie dataset at path into a Catalog. The returned snapshot
// is immutable; picking up a new dataset requires a restart. Missing files
// and missing required columns are fatal; individual cell coercion failures
// are not (the affected field is left unset).
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetMissing, path)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	c, err := loadFrom(f)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("component", "catalog").
		Str("path", path).
		Int("records", len(c.records)).
		Msg("Catalog loaded")
	return c, nil
}

// loadFrom parses CSV content into a Catalog. Split out from Load so tests
// can feed readers directly.
func loadFrom(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrDatasetSchema)
		}
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDatasetSchema, required)
		}
	}

	get := func(row []string, name string) string {
		if i, ok := cols[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	c := &Catalog{byID: make(map[int64]int)}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}
		line++

		id, ok := parseID(get(row, "id"))
		if !ok {
			logging.Warn().
				Str("component", "catalog").
				Int("line", line).
				Msg("Skipping row with unparseable id")
			continue
		}

		rec := models.MovieRecord{
			ID:                  id,
			Title:               strings.TrimSpace(get(row, "title")),
			Overview:            get(row, "overview"),
			Genres:              ParseNameList(get(row, "genres")),
			ProductionCompanies: ParseNameList(get(row, "production_companies")),
			Runtime:             parseFloatCell(get(row, "runtime")),
			OriginalLanguage:    parseStringCell(get(row, "original_language")),
			VoteAverage:         parseFloatCell(get(row, "vote_average")),
			VoteCount:           parseIntCell(get(row, "vote_count")),
			Popularity:          parseFloatCell(get(row, "popularity")),
			ReleaseDate:         parseStringCell(get(row, "release_date")),
			PosterURL:           PosterURL(get(row, "poster_path")),
		}

		if prev, dup := c.byID[id]; dup {
			// Last occurrence wins, matching the cleaning pipeline output
			// where ids are already unique.
			c.records[prev] = rec
			continue
		}
		c.byID[id] = len(c.records)
		c.records = append(c.records, rec)
	}

	return c, nil
}

// parseID coerces an id cell to int64, tolerating float renderings such as
// "603.0" that survive upstream numeric round-trips.
func parseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func parseStringCell(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func parseFloatCell(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

func parseIntCell(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	// vote_count often arrives as "1234.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int64(f)
	return &n
}
