// Package ingest pulls movies from the catalog into local storage and
// embeds them in the background for semantic search.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalambet/cinetech/internal/catalog"
	"github.com/kalambet/cinetech/internal/storage"
)

// jobTypeEmbedMovie is the queue type for background embedding jobs.
const jobTypeEmbedMovie = "embed_movie"

// Catalog is the slice of the TMDb client ingestion needs.
type Catalog interface {
	TopRated(ctx context.Context, page int) ([]catalog.SearchResult, error)
	MovieDetails(ctx context.Context, id string) (catalog.Details, error)
	MovieCredits(ctx context.Context, id string) (catalog.Credits, error)
}

// MovieStore is the slice of the storage layer ingestion needs.
type MovieStore interface {
	SaveMovie(m storage.Movie) error
	EnqueueJob(job storage.Job) error
}

// FetchMovies walks top-rated pages until numMovies records are collected,
// joining listing entries with details and credits. Movies whose details or
// credits cannot be fetched are logged and skipped.
func FetchMovies(ctx context.Context, cat Catalog, numMovies int) ([]storage.Movie, error) {
	var movies []storage.Movie
	page := 1
	slog.Info("fetching movies from catalog", "target", numMovies)

	for len(movies) < numMovies {
		results, err := cat.TopRated(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("fetching top rated page %d: %w", page, err)
		}
		if len(results) == 0 {
			break
		}

		for _, r := range results {
			id := strconv.FormatInt(r.ID, 10)
			details, err := cat.MovieDetails(ctx, id)
			if err != nil {
				slog.Warn("skipping movie, details fetch failed", "movie_id", id, "error", err)
				continue
			}
			credits, err := cat.MovieCredits(ctx, id)
			if err != nil {
				slog.Warn("skipping movie, credits fetch failed", "movie_id", id, "error", err)
				continue
			}

			genres := make([]string, len(details.Genres))
			for i, g := range details.Genres {
				genres[i] = g.Name
			}

			movies = append(movies, storage.Movie{
				ID:       id,
				Title:    details.Title,
				Overview: details.Overview,
				Genres:   strings.Join(genres, ", "),
				Cast:     strings.Join(credits.Cast, ", "),
				Director: strings.Join(credits.Director, ", "),
				Year:     details.Year(),
				Rating:   details.VoteAverage,
			})
			if len(movies) >= numMovies {
				break
			}
		}
		page++
	}

	slog.Info("fetched movies from catalog", "count", len(movies))
	return movies, nil
}

// TextRepresentation renders the text that gets embedded for a movie.
func TextRepresentation(m storage.Movie) string {
	return fmt.Sprintf(
		"Title: %s. Genres: %s. Director: %s. Main cast: %s. Year: %s. Overview: %s",
		m.Title, m.Genres, m.Director, m.Cast, m.Year, m.Overview,
	)
}

// embedPayload is the JSON payload of an embed_movie job.
type embedPayload struct {
	MovieID string `json:"movie_id"`
}

// Ingest fetches numMovies movies, saves them and enqueues one embedding
// job per movie. Returns the number of movies ingested.
func Ingest(ctx context.Context, cat Catalog, store MovieStore, numMovies int) (int, error) {
	movies, err := FetchMovies(ctx, cat, numMovies)
	if err != nil {
		return 0, err
	}

	saved := 0
	for _, m := range movies {
		if err := store.SaveMovie(m); err != nil {
			slog.Warn("saving movie failed", "movie_id", m.ID, "error", err)
			continue
		}

		payload, err := json.Marshal(embedPayload{MovieID: m.ID})
		if err != nil {
			return saved, fmt.Errorf("marshaling embed payload: %w", err)
		}
		if err := store.EnqueueJob(storage.Job{
			ID:          uuid.New().String(),
			Type:        jobTypeEmbedMovie,
			PayloadJSON: string(payload),
			RunAfter:    time.Now().UTC(),
		}); err != nil {
			return saved, fmt.Errorf("enqueueing embed job for movie %s: %w", m.ID, err)
		}
		saved++
	}

	slog.Info("ingestion queued", "movies", saved)
	return saved, nil
}

// Runner binds a catalog and store so callers can trigger ingestion without
// carrying both dependencies.
type Runner struct {
	cat   Catalog
	store MovieStore
}

func NewRunner(cat Catalog, store MovieStore) *Runner {
	return &Runner{cat: cat, store: store}
}

func (r *Runner) Ingest(ctx context.Context, numMovies int) (int, error) {
	return Ingest(ctx, r.cat, r.store, numMovies)
}
