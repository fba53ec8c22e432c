package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kalambet/cinetech/internal/storage"
)

// mockVectorStore implements VectorStore for testing.
type mockVectorStore struct {
	searchFn func(vector []float32, topK int) ([]ScoredRecord, error)
	insertFn func(records []Record) error
}

func (m *mockVectorStore) Search(vector []float32, topK int) ([]ScoredRecord, error) {
	return m.searchFn(vector, topK)
}
func (m *mockVectorStore) Insert(records []Record) error {
	if m.insertFn != nil {
		return m.insertFn(records)
	}
	return nil
}
func (m *mockVectorStore) DeleteByMovie(movieID string) error { return nil }
func (m *mockVectorStore) Count() (int, error)                { return 0, nil }

// mockMovieLookup implements MovieLookup over a fixed map.
type mockMovieLookup struct {
	movies map[string]storage.Movie
}

func (m *mockMovieLookup) GetMovie(id string) (storage.Movie, error) {
	movie, ok := m.movies[id]
	if !ok {
		return storage.Movie{}, storage.ErrNotFound
	}
	return movie, nil
}

func makeVector(dim int) []float32 {
	return makeTestVector(dim, 0.1)
}

func TestSearch_JoinsCatalogMetadata(t *testing.T) {
	embedCalls := 0
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			embedCalls++
			return makeVector(768), nil
		},
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, topK int) ([]ScoredRecord, error) {
			if topK != 5 {
				t.Errorf("topK = %d, want 5", topK)
			}
			return []ScoredRecord{
				{Record: Record{ID: "v1", MovieID: "603", TextChunk: "text", CreatedAt: time.Now().UTC()}, Score: 0.9},
			}, nil
		},
	}

	movies := &mockMovieLookup{movies: map[string]storage.Movie{
		"603": {
			ID:       "603",
			Title:    "The Matrix",
			Overview: "A hacker discovers reality is a simulation.",
			Genres:   "Action, Science Fiction",
			Cast:     "Keanu Reeves, Laurence Fishburne",
			Director: "Lana Wachowski",
			Year:     "1999",
			Rating:   8.2,
		},
	}}

	embedder := NewEmbedder(client, "nomic-embed-text")
	retriever := NewRetriever(embedder, store, movies)

	results, err := retriever.Search(context.Background(), "cyberpunk classics", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if embedCalls != 1 {
		t.Errorf("embed called %d times, want 1", embedCalls)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.ID != "603" || r.Title != "The Matrix" || r.Director != "Lana Wachowski" {
		t.Errorf("unexpected result: %+v", r)
	}
	if r.Score != 0.9 {
		t.Errorf("score = %f, want 0.9", r.Score)
	}
}

func TestSearch_SkipsOrphanedVectors(t *testing.T) {
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			return makeVector(768), nil
		},
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, _ int) ([]ScoredRecord, error) {
			return []ScoredRecord{
				{Record: Record{ID: "v1", MovieID: "gone"}, Score: 0.95},
				{Record: Record{ID: "v2", MovieID: "604"}, Score: 0.8},
			}, nil
		},
	}

	movies := &mockMovieLookup{movies: map[string]storage.Movie{
		"604": {ID: "604", Title: "The Matrix Reloaded", Year: "2003"},
	}}

	retriever := NewRetriever(NewEmbedder(client, "nomic-embed-text"), store, movies)

	results, err := retriever.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1 (orphan skipped)", len(results))
	}
	if results[0].ID != "604" {
		t.Errorf("ID = %q, want %q", results[0].ID, "604")
	}
}

func TestSearch_EmbedFails(t *testing.T) {
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			return nil, errors.New("embed error")
		},
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, _ int) ([]ScoredRecord, error) {
			t.Fatal("search should not be called when embed fails")
			return nil, nil
		},
	}

	retriever := NewRetriever(NewEmbedder(client, "nomic-embed-text"), store, &mockMovieLookup{})

	if _, err := retriever.Search(context.Background(), "query", 5); err == nil {
		t.Error("expected error when embed fails, got nil")
	}
}

func TestSearch_StoreFails(t *testing.T) {
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			return makeVector(768), nil
		},
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, _ int) ([]ScoredRecord, error) {
			return nil, errors.New("disk error")
		},
	}

	retriever := NewRetriever(NewEmbedder(client, "nomic-embed-text"), store, &mockMovieLookup{})

	if _, err := retriever.Search(context.Background(), "query", 5); err == nil {
		t.Error("expected error when store fails, got nil")
	}
}

func TestSearch_EmptyIndex(t *testing.T) {
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			return makeVector(768), nil
		},
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, _ int) ([]ScoredRecord, error) {
			return nil, nil
		},
	}

	retriever := NewRetriever(NewEmbedder(client, "nomic-embed-text"), store, &mockMovieLookup{})

	results, err := retriever.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearch_PreservesOrder(t *testing.T) {
	client := &mockEmbedClient{
		embedFn: func(_ context.Context, _ string, _ string) ([]float32, error) {
			return makeVector(768), nil
		},
	}

	lookup := &mockMovieLookup{movies: map[string]storage.Movie{}}
	var scored []ScoredRecord
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("m%d", i)
		lookup.movies[id] = storage.Movie{ID: id, Title: "Movie " + id}
		scored = append(scored, ScoredRecord{
			Record: Record{ID: "v" + id, MovieID: id},
			Score:  float32(5-i) * 0.1,
		})
	}

	store := &mockVectorStore{
		searchFn: func(_ []float32, _ int) ([]ScoredRecord, error) {
			return scored, nil
		},
	}

	retriever := NewRetriever(NewEmbedder(client, "nomic-embed-text"), store, lookup)

	results, err := retriever.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := range results {
		want := fmt.Sprintf("m%d", i)
		if results[i].ID != want {
			t.Errorf("results[%d].ID = %q, want %q", i, results[i].ID, want)
		}
	}
}
