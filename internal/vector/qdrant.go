// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package vector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Document is one similarity hit returned by the vector store. HasMovieID
// is false when the point payload carried no usable movie_id; callers skip
// such documents.
type Document struct {
	MovieID    int64
	Score      float64
	HasMovieID bool
}

// Searcher queries a vector index for the k nearest neighbors of a vector.
type Searcher interface {
	Search(ctx context.Context, vector []float64, k int) ([]Document, error)
}

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	BaseURL    string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// QdrantClient talks to a Qdrant collection over its REST API.
type QdrantClient struct {
	cfg    QdrantConfig
	client *http.Client
}

// NewQdrantClient creates a Qdrant search client from config.
func NewQdrantClient(cfg QdrantConfig) *QdrantClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &QdrantClient{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type qdrantSearchRequest struct {
	Vector      []float64 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload bool      `json:"with_payload"`
}

type qdrantSearchResponse struct {
	Result []struct {
		Score   float64                `json:"score"`
		Payload map[string]interface{} `json:"payload"`
	} `json:"result"`
}

// Search queries POST /collections/{collection}/points/search for the k
// nearest points and maps their payloads to Documents.
func (q *QdrantClient) Search(ctx context.Context, vector []float64, k int) ([]Document, error) {
	body, err := json.Marshal(qdrantSearchRequest{
		Vector:      vector,
		Limit:       k,
		WithPayload: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal qdrant request: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", q.cfg.BaseURL, q.cfg.Collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("qdrant returned %d: %s", resp.StatusCode, msg)
	}

	var parsed qdrantSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode qdrant response: %w", err)
	}

	docs := make([]Document, 0, len(parsed.Result))
	for _, point := range parsed.Result {
		doc := Document{Score: point.Score}
		if id, ok := payloadMovieID(point.Payload); ok {
			doc.MovieID = id
			doc.HasMovieID = true
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// payloadMovieID extracts a movie id from a point payload. Qdrant payloads
// are schemaless, so the id may arrive as a JSON number or a string.
func payloadMovieID(payload map[string]interface{}) (int64, bool) {
	raw, ok := payload["movie_id"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
