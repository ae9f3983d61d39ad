// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/kinograph/kinograph/internal/auth"
	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/config"
	"github.com/kinograph/kinograph/internal/models"
	"github.com/kinograph/kinograph/internal/search"
	"github.com/kinograph/kinograph/internal/store"
	"github.com/kinograph/kinograph/internal/vector"
)

// fakeSearch serves the title stage from the real catalog and scripts the
// semantic stage.
type fakeSearch struct {
	catalog      *catalog.Catalog
	semanticIDs  []int64
	upstreamDown bool
}

func (f *fakeSearch) Search(_ context.Context, q, mode string, limit int) (models.SearchResult, error) {
	if mode != search.ModeSemantic {
		hits := f.catalog.SearchTitle(q, limit)
		if mode == search.ModeTitle || len(hits) > 0 {
			return models.SearchResult{Items: hits, Mode: search.ModeTitle}, nil
		}
	}
	if f.upstreamDown {
		return models.SearchResult{}, vector.ErrUpstreamUnavailable
	}
	return models.SearchResult{Items: f.resolve(limit), Mode: search.ModeSemantic}, nil
}

func (f *fakeSearch) SimilarToText(_ context.Context, _ string, _, _ []string, k int) ([]models.MovieRecord, error) {
	if f.upstreamDown {
		return nil, vector.ErrUpstreamUnavailable
	}
	return f.resolve(k), nil
}

func (f *fakeSearch) SimilarToMovie(_ context.Context, id int64, k int) ([]models.MovieRecord, error) {
	if _, ok := f.catalog.GetByID(id); !ok {
		return nil, search.ErrNotFound
	}
	if f.upstreamDown {
		return nil, vector.ErrUpstreamUnavailable
	}
	return f.resolve(k), nil
}

func (f *fakeSearch) resolve(max int) []models.MovieRecord {
	out := []models.MovieRecord{}
	for _, id := range f.semanticIDs {
		if len(out) >= max {
			break
		}
		if rec, ok := f.catalog.GetByID(id); ok {
			out = append(out, rec)
		}
	}
	return out
}

type testEnv struct {
	router http.Handler
	search *fakeSearch
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	content := "id,title,overview,genres,production_companies,popularity,original_language\n" +
		"1,The Matrix,Hackers.,\"['Action']\",\"['Warner Bros.']\",85.5,en\n" +
		"2,Heat,Cops.,\"['Crime']\",,55,en\n" +
		"3,Amélie,Paris.,\"['Comedy']\",,40,fr\n"
	path := filepath.Join(t.TempDir(), "movies.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck

	sessions := auth.NewMemorySessionStore()
	fs := &fakeSearch{catalog: cat, semanticIDs: []int64{2, 3}}

	apiCfg := config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100, DefaultSimilar: 10, MaxSimilar: 50}
	secCfg := config.SecurityConfig{
		RateLimitEnabled: false,
		CORSOrigins:      []string{"*"},
	}

	router := NewRouter(RouterDeps{
		Movies:    NewMovieHandler(cat, fs, apiCfg),
		Auth:      NewAuthHandler(store.NewUserStore(db), sessions, time.Hour),
		Watchlist: NewWatchlistHandler(store.NewWatchlistStore(db), cat),
		Health:    NewHealthHandler(cat, nil),
		AuthMW:    auth.NewMiddleware(sessions),
		Security:  secCfg,
	})
	return &testEnv{router: router, search: fs}
}

func (e *testEnv) do(t *testing.T, method, target, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return resp
}

// register + login, returning a live bearer token.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	creds := `{"username":"alice","password":"supersecret1"}`
	if w := e.do(t, http.MethodPost, "/api/v1/auth/register", "", creds); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}
	w := e.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("login data = %T", resp.Data)
	}
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	if w := env.do(t, http.MethodGet, "/health", "", ""); w.Code != http.StatusOK {
		t.Errorf("/health status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/ready", "", ""); w.Code != http.StatusOK {
		t.Errorf("/ready status = %d", w.Code)
	}
}

func TestMoviesRequireAuth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/movies/search?q=matrix", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	creds := `{"username":"alice","password":"supersecret1"}`

	if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", creds); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", creds); w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", `{"username":"b","password":"short"}`); w.Code != http.StatusBadRequest {
		t.Errorf("weak register status = %d, want 400", w.Code)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"wrong-password"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"username":"ghost","password":"whatever123"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("unknown user login status = %d, want 401", w.Code)
	}

	w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", creds)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	token := resp.Data.(map[string]interface{})["token"].(string)

	w = env.do(t, http.MethodGet, "/api/v1/auth/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	me := decodeEnvelope(t, w)
	if got := me.Data.(map[string]interface{})["username"]; got != "alice" {
		t.Errorf("me username = %v", got)
	}

	if w := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, ""); w.Code != http.StatusOK {
		t.Errorf("logout status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/auth/me", token, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodGet, "/api/v1/movies/search?q=matrix", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	data := resp.Data.(map[string]interface{})
	if data["mode"] != "title" {
		t.Errorf("mode = %v, want title", data["mode"])
	}

	// Missing query parameter is a validation error.
	if w := env.do(t, http.MethodGet, "/api/v1/movies/search", token, ""); w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", w.Code)
	}
	// Bad mode is a validation error.
	if w := env.do(t, http.MethodGet, "/api/v1/movies/search?q=x&mode=psychic", token, ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want 400", w.Code)
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)
	env.search.upstreamDown = true

	// Title hits still work while the upstream is down.
	if w := env.do(t, http.MethodGet, "/api/v1/movies/search?q=matrix", token, ""); w.Code != http.StatusOK {
		t.Errorf("title search status = %d, want 200", w.Code)
	}
	// Semantic-only queries surface the outage.
	w := env.do(t, http.MethodGet, "/api/v1/movies/search?q=nothing+matches+this", token, "")
	if w.Code != http.StatusBadGateway {
		t.Errorf("semantic search status = %d, want 502", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Error == nil || resp.Error.Code != "EXTERNAL_SERVICE_FAILED" {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestGetMovieByID(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	if w := env.do(t, http.MethodGet, "/api/v1/movies/1", token, ""); w.Code != http.StatusOK {
		t.Errorf("known id status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/movies/999", token, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/movies/abc", token, ""); w.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", w.Code)
	}
}

func TestFilterEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodGet, "/api/v1/movies/filter?language=en", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Metadata == nil || resp.Metadata.TotalCount != 2 {
		t.Errorf("metadata = %+v, want total_count 2", resp.Metadata)
	}

	// Malformed pagination degrades to defaults instead of erroring.
	if w := env.do(t, http.MethodGet, "/api/v1/movies/filter?limit=banana&offset=-3", token, ""); w.Code != http.StatusOK {
		t.Errorf("malformed pagination status = %d, want 200", w.Code)
	}
}

func TestFacetsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	w := env.do(t, http.MethodGet, "/api/v1/movies/facets", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	data := resp.Data.(map[string]interface{})
	if _, ok := data["genres"]; !ok {
		t.Errorf("facets data = %v", data)
	}
}

func TestSimilarEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	if w := env.do(t, http.MethodGet, "/api/v1/movies/1/similar?k=2", token, ""); w.Code != http.StatusOK {
		t.Errorf("similar status = %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/movies/999/similar", token, ""); w.Code != http.StatusNotFound {
		t.Errorf("similar unknown id status = %d, want 404", w.Code)
	}

	body := `{"overview":"a slow-burn heist","genres":["Crime"],"k":3}`
	if w := env.do(t, http.MethodPost, "/api/v1/movies/similar-text", token, body); w.Code != http.StatusOK {
		t.Errorf("similar-text status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/movies/similar-text", token, `{"genres":["Crime"]}`); w.Code != http.StatusBadRequest {
		t.Errorf("similar-text without overview status = %d, want 400", w.Code)
	}
}

func TestWatchlistFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.login(t)

	if w := env.do(t, http.MethodPost, "/api/v1/watchlist/1", token, ""); w.Code != http.StatusCreated {
		t.Fatalf("add status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/watchlist/1", token, ""); w.Code != http.StatusConflict {
		t.Errorf("duplicate add status = %d, want 409", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/api/v1/watchlist/999", token, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown movie add status = %d, want 404", w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/watchlist/", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Metadata == nil || resp.Metadata.Count != 1 {
		t.Errorf("list metadata = %+v, want count 1", resp.Metadata)
	}

	if w := env.do(t, http.MethodGet, "/api/v1/watchlist/ids", token, ""); w.Code != http.StatusOK {
		t.Errorf("ids status = %d", w.Code)
	}

	if w := env.do(t, http.MethodDelete, "/api/v1/watchlist/1", token, ""); w.Code != http.StatusOK {
		t.Errorf("remove status = %d", w.Code)
	}
	if w := env.do(t, http.MethodDelete, "/api/v1/watchlist/1", token, ""); w.Code != http.StatusNotFound {
		t.Errorf("remove absent status = %d, want 404", w.Code)
	}
}
