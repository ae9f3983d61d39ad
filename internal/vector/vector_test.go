// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package vector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestOpenAIEmbedder(t *testing.T) {
	t.Parallel()

	t.Run("successful embedding", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/embeddings" {
				t.Errorf("path = %q, want /embeddings", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer secret" {
				t.Errorf("Authorization = %q", got)
			}
			var req embeddingRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode request: %v", err)
			}
			if req.Model != "test-model" || len(req.Input) != 1 || req.Input[0] != "hello" {
				t.Errorf("request = %+v", req)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		e := NewOpenAIEmbedder(EmbedderConfig{
			BaseURL:           srv.URL,
			APIKey:            "secret",
			Model:             "test-model",
			RequestsPerSecond: 100,
		})
		vec, err := e.Embed(context.Background(), "hello")
		if err != nil {
			t.Fatalf("Embed() error = %v", err)
		}
		if len(vec) != 3 || vec[0] != 0.1 {
			t.Errorf("vec = %v", vec)
		}
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()
		attempts := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte(`{"data":[{"embedding":[1]}]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		e := NewOpenAIEmbedder(EmbedderConfig{
			BaseURL:           srv.URL,
			Model:             "m",
			RequestsPerSecond: 1000,
			MaxRetries:        2,
		})
		if _, err := e.Embed(context.Background(), "x"); err != nil {
			t.Fatalf("Embed() error = %v", err)
		}
		if attempts != 2 {
			t.Errorf("attempts = %d, want 2", attempts)
		}
	})

	t.Run("client error surfaces", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		}))
		defer srv.Close()

		e := NewOpenAIEmbedder(EmbedderConfig{
			BaseURL:           srv.URL,
			Model:             "m",
			RequestsPerSecond: 1000,
		})
		if _, err := e.Embed(context.Background(), "x"); err == nil {
			t.Fatal("Embed() error = nil, want error")
		}
	})

	t.Run("empty vector is an error", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":[]}`)) //nolint:errcheck
		}))
		defer srv.Close()

		e := NewOpenAIEmbedder(EmbedderConfig{BaseURL: srv.URL, Model: "m", RequestsPerSecond: 1000})
		if _, err := e.Embed(context.Background(), "x"); err == nil {
			t.Fatal("Embed() error = nil, want error")
		}
	})
}

func TestQdrantClientSearch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/movies/points/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req qdrantSearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Limit != 3 || !req.WithPayload {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"result":[` + //nolint:errcheck
			`{"score":0.95,"payload":{"movie_id":603}},` +
			`{"score":0.90,"payload":{"movie_id":"604"}},` +
			`{"score":0.85,"payload":{"title":"no id"}}` +
			`]}`))
	}))
	defer srv.Close()

	q := NewQdrantClient(QdrantConfig{BaseURL: srv.URL, Collection: "movies"})
	docs, err := q.Search(context.Background(), []float64{0.1, 0.2}, 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("len(docs) = %d, want 3", len(docs))
	}
	if !docs[0].HasMovieID || docs[0].MovieID != 603 {
		t.Errorf("docs[0] = %+v", docs[0])
	}
	if !docs[1].HasMovieID || docs[1].MovieID != 604 {
		t.Errorf("docs[1] = %+v (string ids must parse)", docs[1])
	}
	if docs[2].HasMovieID {
		t.Errorf("docs[2] = %+v, want no movie id", docs[2])
	}
}

func TestQdrantClientErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := NewQdrantClient(QdrantConfig{BaseURL: srv.URL, Collection: "movies"})
	if _, err := q.Search(context.Background(), []float64{0.1}, 1); err == nil {
		t.Fatal("Search() error = nil, want error")
	}
}

type stubEmbedder struct {
	vec []float64
	err error
}

func (s stubEmbedder) Embed(context.Context, string) ([]float64, error) {
	return s.vec, s.err
}

type stubSearcher struct {
	docs []Document
	err  error
	k    int
}

func (s *stubSearcher) Search(_ context.Context, _ []float64, k int) ([]Document, error) {
	s.k = k
	return s.docs, s.err
}

func TestGatewaySearchSimilar(t *testing.T) {
	t.Parallel()

	t.Run("passes through results", func(t *testing.T) {
		t.Parallel()
		store := &stubSearcher{docs: []Document{{MovieID: 1, Score: 0.9, HasMovieID: true}}}
		g := NewGateway(stubEmbedder{vec: []float64{0.1}}, store, time.Second)

		docs, err := g.SearchSimilar(context.Background(), "text", 7)
		if err != nil {
			t.Fatalf("SearchSimilar() error = %v", err)
		}
		if len(docs) != 1 || docs[0].MovieID != 1 {
			t.Errorf("docs = %+v", docs)
		}
		if store.k != 7 {
			t.Errorf("store k = %d, want 7", store.k)
		}
	})

	t.Run("embed failure maps to upstream unavailable", func(t *testing.T) {
		t.Parallel()
		g := NewGateway(stubEmbedder{err: errors.New("boom")}, &stubSearcher{}, time.Second)

		_, err := g.SearchSimilar(context.Background(), "text", 3)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			t.Fatalf("SearchSimilar() error = %v, want ErrUpstreamUnavailable", err)
		}
	})

	t.Run("store failure maps to upstream unavailable", func(t *testing.T) {
		t.Parallel()
		store := &stubSearcher{err: errors.New("boom")}
		g := NewGateway(stubEmbedder{vec: []float64{0.1}}, store, time.Second)

		_, err := g.SearchSimilar(context.Background(), "text", 3)
		if !errors.Is(err, ErrUpstreamUnavailable) {
			t.Fatalf("SearchSimilar() error = %v, want ErrUpstreamUnavailable", err)
		}
	})
}
