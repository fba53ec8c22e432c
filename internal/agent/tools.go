package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/kalambet/cinetech/internal/catalog"
)

// MovieResolver is the slice of the catalog client the tools need.
type MovieResolver interface {
	ResolveID(ctx context.Context, name string) (string, error)
	MovieDetails(ctx context.Context, id string) (catalog.Details, error)
}

// FavoritesStore is the mutable favourites set the tools operate on.
type FavoritesStore interface {
	Add(id string) (bool, error)
	Remove(id string) (bool, error)
}

// Toolset holds the three model-callable tools: add_favourite,
// delete_favourite and get_movie_details. Each takes a movie name, resolves
// it to a catalog id, and returns a user-facing text result. Lookup misses
// and catalog errors become messages, never errors, so the model can relay
// them in conversation.
type Toolset struct {
	catalog   MovieResolver
	favorites FavoritesStore
}

// NewToolset creates a Toolset over the given catalog and favourites store.
func NewToolset(cat MovieResolver, favorites FavoritesStore) *Toolset {
	return &Toolset{catalog: cat, favorites: favorites}
}

// movieNameParams is the argument schema shared by all three tools.
var movieNameParams = shared.FunctionParameters{
	"type": "object",
	"properties": map[string]any{
		"movie_name": map[string]any{
			"type":        "string",
			"description": "Name of the movie.",
		},
	},
	"required": []string{"movie_name"},
}

// Definitions returns the tool declarations sent with each completion request.
func (t *Toolset) Definitions() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		{Function: shared.FunctionDefinitionParam{
			Name:        "add_favourite",
			Description: openai.String("Add a movie to favourites. Input: movie name. Output: success message."),
			Parameters:  movieNameParams,
		}},
		{Function: shared.FunctionDefinitionParam{
			Name:        "delete_favourite",
			Description: openai.String("Delete a movie from favourites. Input: movie name. Output: success message."),
			Parameters:  movieNameParams,
		}},
		{Function: shared.FunctionDefinitionParam{
			Name:        "get_movie_details",
			Description: openai.String("Get movie details by its name. Input: movie name. Output: movie details as a string."),
			Parameters:  movieNameParams,
		}},
	}
}

// Dispatch runs the named tool against the given JSON arguments.
// Unknown tool names are an error; everything inside a tool is a message.
func (t *Toolset) Dispatch(ctx context.Context, name, argsJSON string) (string, error) {
	var args struct {
		MovieName string `json:"movie_name"`
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return "", fmt.Errorf("parsing %s arguments: %w", name, err)
	}

	switch name {
	case "add_favourite":
		return t.AddFavourite(ctx, args.MovieName), nil
	case "delete_favourite":
		return t.DeleteFavourite(ctx, args.MovieName), nil
	case "get_movie_details":
		return t.GetMovieDetails(ctx, args.MovieName), nil
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}

// AddFavourite resolves a movie name and adds its id to the favourites set.
func (t *Toolset) AddFavourite(ctx context.Context, movieName string) string {
	id, err := t.resolve(ctx, movieName)
	if err != nil {
		return fmt.Sprintf("Movie '%s' not found. Cannot add to favourites.", movieName)
	}
	if _, err := t.favorites.Add(id); err != nil {
		slog.Error("saving favourite failed", "movie_id", id, "error", err)
	}
	slog.Info("added favourite", "movie_id", id)
	return fmt.Sprintf("Added %s to favourites.", id)
}

// DeleteFavourite resolves a movie name and removes its id from the
// favourites set.
func (t *Toolset) DeleteFavourite(ctx context.Context, movieName string) string {
	id, err := t.resolve(ctx, movieName)
	if err != nil {
		return fmt.Sprintf("Movie '%s' not found. Cannot delete from favourites.", movieName)
	}
	removed, err := t.favorites.Remove(id)
	if err != nil {
		slog.Error("removing favourite failed", "movie_id", id, "error", err)
	}
	if !removed {
		return fmt.Sprintf("Movie ID %s not found in favourites.", id)
	}
	slog.Info("deleted favourite", "movie_id", id)
	return fmt.Sprintf("Deleted %s from favourites.", id)
}

// GetMovieDetails resolves a movie name and returns its catalog record as text.
func (t *Toolset) GetMovieDetails(ctx context.Context, movieName string) string {
	id, err := t.resolve(ctx, movieName)
	if err != nil {
		return fmt.Sprintf("Movie '%s' not found. Cannot get details.", movieName)
	}
	details, err := t.catalog.MovieDetails(ctx, id)
	if err != nil {
		slog.Error("fetching movie details failed", "movie_id", id, "error", err)
		return fmt.Sprintf("Error getting details for movie ID %s", id)
	}

	genres := ""
	for i, g := range details.Genres {
		if i > 0 {
			genres += ", "
		}
		genres += g.Name
	}
	return fmt.Sprintf("Title: %s. Year: %s. Genres: %s. Rating: %.1f. Overview: %s",
		details.Title, details.Year(), genres, details.VoteAverage, details.Overview)
}

func (t *Toolset) resolve(ctx context.Context, movieName string) (string, error) {
	id, err := t.catalog.ResolveID(ctx, movieName)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			slog.Error("resolving movie name failed", "movie_name", movieName, "error", err)
		}
		return "", err
	}
	return id, nil
}
