// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

// Package api implements the HTTP surface: handlers, request parsing and
// validation, routing, and the shared response envelope.
package api

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/logging"
	"github.com/kinograph/kinograph/internal/models"
)

// respondJSON writes a success envelope. Bodies are hashed into a weak ETag
// so conditional requests can short-circuit with 304.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}, metadata *models.Metadata) {
	if metadata == nil {
		metadata = &models.Metadata{}
	}
	metadata.Timestamp = time.Now().UTC()
	if id, ok := logging.RequestIDFromContext(r.Context()); ok {
		metadata.RequestID = id
	}

	body, err := json.Marshal(models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: metadata,
	})
	if err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).
			Str("component", "api").
			Msg("Failed to marshal response")
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
		return
	}

	etag := generateETag(body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).
			Str("component", "api").
			Msg("Failed to write response")
	}
}

// respondError writes an error envelope with the given code and message.
func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *models.APIError) {
	metadata := &models.Metadata{Timestamp: time.Now().UTC()}
	if id, ok := logging.RequestIDFromContext(r.Context()); ok {
		metadata.RequestID = id
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := models.APIResponse{
		Status:   "error",
		Error:    apiErr,
		Metadata: metadata,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctxLogger := logging.Ctx(r.Context())
		ctxLogger.Err(err).
			Str("component", "api").
			Msg("Failed to encode error response")
	}
}

// respondErrorCode is respondError without details.
func respondErrorCode(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondError(w, r, status, &models.APIError{Code: code, Message: message})
}

// generateETag returns a weak ETag from an FNV-1a hash of the body.
func generateETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body) //nolint:errcheck
	return fmt.Sprintf(`W/"%x"`, h.Sum64())
}

// sanitizeLogValue strips control characters from user input before it is
// logged, preventing log injection.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return s
}

// getIntQuery parses an integer query parameter, falling back to def when
// the parameter is absent or malformed and clamping to [min, max].
// Malformed pagination degrades rather than erroring.
func getIntQuery(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// getFloatQuery parses an optional float query parameter. Malformed values
// are treated as absent.
func getFloatQuery(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// getInt64Query parses an optional int64 query parameter. Malformed values
// are treated as absent.
func getInt64Query(r *http.Request, name string) *int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// getStringQuery returns an optional trimmed query parameter.
func getStringQuery(r *http.Request, name string) *string {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil
	}
	return &raw
}

// parseCommaSeparated splits a comma-separated query parameter into trimmed
// non-empty parts.
func parseCommaSeparated(r *http.Request, name string) []string {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
