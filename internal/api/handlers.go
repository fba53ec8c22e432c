package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kalambet/cinetech/internal/chat"
	"github.com/kalambet/cinetech/internal/retrieval"
	"github.com/kalambet/cinetech/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

const (
	defaultIngestMovies = 50
	maxIngestMovies     = 500
	defaultSearchTopK   = 5
	maxSearchTopK       = 50
)

// ChatService abstracts the reply pipeline for the API layer.
type ChatService interface {
	GenerateReply(ctx context.Context, userID, message string) (string, error)
}

// MovieSearcher abstracts semantic movie search.
type MovieSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]retrieval.ScoredMovie, error)
}

// MovieIngester abstracts catalog ingestion.
type MovieIngester interface {
	Ingest(ctx context.Context, numMovies int) (int, error)
}

// FavoriteLister abstracts the favourites file.
type FavoriteLister interface {
	List() []string
}

// TitleLookup resolves movie IDs to titles for display.
type TitleLookup interface {
	TitlesByIDs(ids []string) (map[string]string, error)
}

// InteractionLister abstracts interaction history access.
type InteractionLister interface {
	RecentInteractions(userID string, limit int) ([]storage.Interaction, error)
}

type AppDeps struct {
	Chat         ChatService
	Retriever    MovieSearcher
	Ingest       MovieIngester
	Favorites    FavoriteLister
	Titles       TitleLookup
	Interactions InteractionLister
	Token        string
}

type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type ChatResponse struct {
	UserID string `json:"user_id"`
	Reply  string `json:"reply"`
}

type IngestRequest struct {
	NumMovies int `json:"num_movies"`
}

type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type FavouriteEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func NewAppHandler(deps AppDeps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(deps.Token))

		r.Post("/chat", handleChat(deps))
		r.Post("/ingest", handleIngest(deps))
		r.Post("/search", handleSearch(deps))
		r.Get("/favourites", handleFavourites(deps))
		r.Get("/interactions", handleListInteractions(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func handleChat(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.UserID == "" {
			req.UserID = "default"
		}

		reply, err := deps.Chat.GenerateReply(r.Context(), req.UserID, req.Message)
		if errors.Is(err, chat.ErrEmptyMessage) {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "message must not be empty")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to generate reply: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ChatResponse{UserID: req.UserID, Reply: reply})
	}
}

func handleIngest(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req IngestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.NumMovies <= 0 {
			req.NumMovies = defaultIngestMovies
		}
		if req.NumMovies > maxIngestMovies {
			req.NumMovies = maxIngestMovies
		}

		count, err := deps.Ingest.Ingest(r.Context(), req.NumMovies)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "ingest failed: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "queued",
			"movies": count,
		})
	}
}

func handleSearch(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.Query == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "query is required")
			return
		}
		if req.TopK <= 0 {
			req.TopK = defaultSearchTopK
		}
		if req.TopK > maxSearchTopK {
			req.TopK = maxSearchTopK
		}

		results, err := deps.Retriever.Search(r.Context(), req.Query, req.TopK)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "search failed: %v", err)
			return
		}
		if results == nil {
			results = []retrieval.ScoredMovie{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(results)
	}
}

func handleFavourites(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids := deps.Favorites.List()

		titles, err := deps.Titles.TitlesByIDs(ids)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to resolve titles: %v", err)
			return
		}

		entries := make([]FavouriteEntry, len(ids))
		for i, id := range ids {
			entries[i] = FavouriteEntry{ID: id, Title: titles[id]}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}

func handleListInteractions(deps AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		if userID == "" {
			userID = "default"
		}
		limit := parseIntParam(r, "limit", 20, 100)

		interactions, err := deps.Interactions.RecentInteractions(userID, limit)
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "failed to list interactions: %v", err)
			return
		}
		if interactions == nil {
			interactions = []storage.Interaction{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(interactions)
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
