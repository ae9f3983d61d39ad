// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package models

import "time"

// APIResponse is the standard envelope for all API endpoints.
type APIResponse struct {
	Status   string      `json:"status"` // "success" or "error"
	Data     interface{} `json:"data,omitempty"`
	Metadata *Metadata   `json:"metadata,omitempty"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	Count      int       `json:"count,omitempty"`
	TotalCount int       `json:"total_count,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// APIError contains error details for failed requests.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
