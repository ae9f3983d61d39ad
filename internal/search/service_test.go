// Kinograph - Movie Catalog and Recommendation Service
// Copyright 2026 Kinograph Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinograph/kinograph

package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kinograph/kinograph/internal/catalog"
	"github.com/kinograph/kinograph/internal/models"
	"github.com/kinograph/kinograph/internal/vector"
)

// fakeGateway scripts gateway responses and records invocations.
type fakeGateway struct {
	docs    []vector.Document
	err     error
	calls   int
	lastTxt string
	lastK   int
}

func (f *fakeGateway) SearchSimilar(_ context.Context, text string, k int) ([]vector.Document, error) {
	f.calls++
	f.lastTxt = text
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func doc(id int64) vector.Document {
	return vector.Document{MovieID: id, Score: 0.9, HasMovieID: true}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	content := "id,title,overview,genres,production_companies,popularity\n" +
		`1,The Matrix,A hacker learns the truth.,"['Action', 'Science Fiction']","['Warner Bros.']",85.5` + "\n" +
		"2,Amélie,A whimsical Parisian.,\"['Comedy']\",,40\n" +
		"3,Matrix Reloaded,The sequel.,\"['Action']\",,60\n" +
		"4,Heat,Cops and robbers.,\"['Crime']\",,55\n"
	path := filepath.Join(t.TempDir(), "movies.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	c, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("load dataset: %v", err)
	}
	return c
}

func resultIDs(items []models.MovieRecord) []int64 {
	ids := make([]int64, 0, len(items))
	for _, rec := range items {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestSearchTitleHitSkipsGateway(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(testCatalog(t), gw)

	result, err := svc.Search(context.Background(), "matrix", ModeAuto, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Mode != ModeTitle {
		t.Errorf("Mode = %q, want title", result.Mode)
	}
	if !reflect.DeepEqual(resultIDs(result.Items), []int64{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", resultIDs(result.Items))
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times, want 0", gw.calls)
	}
}

func TestSearchAutoFallsBackToSemantic(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{docs: []vector.Document{doc(4), doc(2)}}
	svc := NewService(testCatalog(t), gw)

	result, err := svc.Search(context.Background(), "heist thriller", ModeAuto, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Mode != ModeSemantic {
		t.Errorf("Mode = %q, want semantic", result.Mode)
	}
	if !reflect.DeepEqual(resultIDs(result.Items), []int64{4, 2}) {
		t.Errorf("ids = %v, want [4 2]", resultIDs(result.Items))
	}
	if gw.calls != 1 {
		t.Errorf("gateway called %d times, want 1", gw.calls)
	}
}

func TestSearchTitleModeNeverCallsGateway(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{err: vector.ErrUpstreamUnavailable}
	svc := NewService(testCatalog(t), gw)

	result, err := svc.Search(context.Background(), "no such movie", ModeTitle, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(result.Items) != 0 || result.Mode != ModeTitle {
		t.Errorf("got %d items mode %q, want empty title result", len(result.Items), result.Mode)
	}
	if gw.calls != 0 {
		t.Errorf("gateway called %d times, want 0", gw.calls)
	}
}

func TestSearchSemanticModeSkipsTitleStage(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{docs: []vector.Document{doc(2)}}
	svc := NewService(testCatalog(t), gw)

	// "matrix" has title hits, but semantic mode must bypass them.
	result, err := svc.Search(context.Background(), "matrix", ModeSemantic, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if result.Mode != ModeSemantic {
		t.Errorf("Mode = %q, want semantic", result.Mode)
	}
	if !reflect.DeepEqual(resultIDs(result.Items), []int64{2}) {
		t.Errorf("ids = %v, want [2]", resultIDs(result.Items))
	}
}

func TestSearchPropagatesUpstreamFailure(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{err: vector.ErrUpstreamUnavailable}
	svc := NewService(testCatalog(t), gw)

	_, err := svc.Search(context.Background(), "no such movie", ModeAuto, 10)
	if !errors.Is(err, vector.ErrUpstreamUnavailable) {
		t.Fatalf("Search() error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestSearchResolveSkipsUnknownAndDuplicates(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{docs: []vector.Document{
		doc(4),
		{Score: 0.8}, // no movie_id payload
		doc(999),     // not in catalog
		doc(4),       // duplicate
		doc(1),
	}}
	svc := NewService(testCatalog(t), gw)

	result, err := svc.Search(context.Background(), "zzz", ModeSemantic, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if !reflect.DeepEqual(resultIDs(result.Items), []int64{4, 1}) {
		t.Errorf("ids = %v, want [4 1]", resultIDs(result.Items))
	}
}

func TestSimilarToText(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{docs: []vector.Document{doc(2), doc(3)}}
	svc := NewService(testCatalog(t), gw)

	items, err := svc.SimilarToText(context.Background(), "a whimsical story",
		[]string{"Comedy", "Romance"}, []string{"Claudie Ossard"}, 5)
	if err != nil {
		t.Fatalf("SimilarToText() error = %v", err)
	}
	if !reflect.DeepEqual(resultIDs(items), []int64{2, 3}) {
		t.Errorf("ids = %v, want [2 3]", resultIDs(items))
	}
	want := "a whimsical story Comedy, Romance Claudie Ossard"
	if gw.lastTxt != want {
		t.Errorf("query = %q, want %q", gw.lastTxt, want)
	}
	if gw.lastK != 5 {
		t.Errorf("k = %d, want 5", gw.lastK)
	}
}

func TestSimilarToMovie(t *testing.T) {
	t.Parallel()

	t.Run("unknown id", func(t *testing.T) {
		t.Parallel()
		svc := NewService(testCatalog(t), &fakeGateway{})
		_, err := svc.SimilarToMovie(context.Background(), 999, 5)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("SimilarToMovie() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("excludes source and dedupes with headroom", func(t *testing.T) {
		t.Parallel()
		gw := &fakeGateway{docs: []vector.Document{
			doc(1), // the source movie itself
			doc(3),
			doc(3),
			doc(2),
			doc(4),
		}}
		svc := NewService(testCatalog(t), gw)

		items, err := svc.SimilarToMovie(context.Background(), 1, 2)
		if err != nil {
			t.Fatalf("SimilarToMovie() error = %v", err)
		}
		if !reflect.DeepEqual(resultIDs(items), []int64{3, 2}) {
			t.Errorf("ids = %v, want [3 2]", resultIDs(items))
		}
		if gw.lastK != 2+candidateHeadroom {
			t.Errorf("gateway k = %d, want %d", gw.lastK, 2+candidateHeadroom)
		}
	})
}
