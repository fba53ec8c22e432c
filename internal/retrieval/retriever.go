package retrieval

import (
	"context"
	"errors"
	"log/slog"

	"github.com/kalambet/cinetech/internal/storage"
)

// MovieLookup is the slice of the storage layer the retriever needs to join
// vector hits with catalog metadata.
type MovieLookup interface {
	GetMovie(id string) (storage.Movie, error)
}

// Retriever combines embedding and vector search to find relevant movies.
type Retriever struct {
	embedder *Embedder
	store    VectorStore
	movies   MovieLookup
}

// NewRetriever creates a Retriever backed by the given Embedder, VectorStore
// and movie lookup.
func NewRetriever(embedder *Embedder, store VectorStore, movies MovieLookup) *Retriever {
	return &Retriever{embedder: embedder, store: store, movies: movies}
}

// Search embeds the query and returns the top-K most similar movies with
// catalog metadata attached, highest score first. Vector hits whose movie row
// has gone missing are logged and skipped rather than failing the search.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]ScoredMovie, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	scored, err := r.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredMovie, 0, len(scored))
	for _, s := range scored {
		m, err := r.movies.GetMovie(s.MovieID)
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("vector hit without movie row, skipping", "movie_id", s.MovieID)
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, ScoredMovie{
			ID:       m.ID,
			Title:    m.Title,
			Overview: m.Overview,
			Genres:   m.Genres,
			Cast:     m.Cast,
			Director: m.Director,
			Year:     m.Year,
			Rating:   m.Rating,
			Score:    s.Score,
		})
	}
	return results, nil
}
