// Package chat orchestrates one conversation turn: record the user message,
// attempt retrieval, assemble the prompt, attempt the agent, and record the
// reply. Stage failures degrade to a fixed fallback string instead of
// surfacing to the caller.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/kalambet/cinetech/internal/agent"
	"github.com/kalambet/cinetech/internal/memory"
	"github.com/kalambet/cinetech/internal/retrieval"
	"github.com/kalambet/cinetech/internal/storage"
)

// ErrEmptyMessage is returned for a message that is empty after trimming.
// This is the one failure that surfaces to the caller: it signals caller
// misuse, not backend unavailability.
var ErrEmptyMessage = errors.New("message must be non-empty")

// defaultTopK is how many movies retrieval contributes to the prompt.
const defaultTopK = 5

// Retriever finds movies relevant to a query.
type Retriever interface {
	Search(ctx context.Context, query string, topK int) ([]retrieval.ScoredMovie, error)
}

// Agent generates the conversational reply.
type Agent interface {
	Invoke(ctx context.Context, prompt string) (agent.Response, error)
}

// FavoritesReader exposes the persisted favourites set.
type FavoritesReader interface {
	List() []string
}

// TitleLookup maps movie ids to titles for the favourites summary.
type TitleLookup interface {
	TitlesByIDs(ids []string) (map[string]string, error)
}

// InteractionRecorder persists finished turns for later inspection.
type InteractionRecorder interface {
	SaveInteraction(i storage.Interaction) error
}

// Service is the reply pipeline.
type Service struct {
	contexts     *memory.Registry
	retriever    Retriever
	agent        Agent
	favorites    FavoritesReader
	titles       TitleLookup
	interactions InteractionRecorder
}

// NewService wires the pipeline. interactions may be nil to skip turn
// persistence.
func NewService(contexts *memory.Registry, retriever Retriever, ag Agent, favorites FavoritesReader, titles TitleLookup, interactions InteractionRecorder) *Service {
	return &Service{
		contexts:     contexts,
		retriever:    retriever,
		agent:        ag,
		favorites:    favorites,
		titles:       titles,
		interactions: interactions,
	}
}

// GenerateReply runs one turn for the given user. Except for empty input,
// the caller always gets a reply string: failed stages produce
// FallbackReply, and the final reply reflects the last stage attempted.
// History gains exactly one user and one assistant message per call.
func (s *Service) GenerateReply(ctx context.Context, userID, userMessage string) (string, error) {
	if strings.TrimSpace(userMessage) == "" {
		return "", ErrEmptyMessage
	}

	cctx := s.contexts.GetOrCreate(userID)
	cctx.Lock()
	defer cctx.Unlock()

	// The user message enters history before anything can fail; the
	// transcript must reflect what the user actually said.
	if err := cctx.AppendUser(userMessage); err != nil {
		return "", err
	}

	var reply string
	var moviesList string
	retrievalOK := false

	movies, err := s.retriever.Search(ctx, userMessage, defaultTopK)
	if err != nil {
		slog.Error("retrieval failed", "user_id", userID, "error", err)
		reply = FallbackReply
	} else {
		retrievalOK = true
		moviesList = renderMovies(movies)
		cctx.LogRetrieval(userMessage, moviesList)
	}

	s.syncFavorites(cctx)

	// The agent stage runs even after a retrieval failure; it just works
	// without real retrieval data. A successful agent reply supersedes the
	// retrieval fallback, a failed one overwrites whatever came before.
	prompt := formatPrompt(cctx.Render(0), cctx.FavoritesSummary(), userMessage, moviesList)
	agentOK := false
	resp, err := s.agent.Invoke(ctx, prompt)
	if err != nil {
		slog.Error("agent invocation failed", "user_id", userID, "error", err)
		reply = FallbackReply
	} else {
		agentOK = true
		reply = resp.Extract()
	}

	if err := cctx.AppendAssistant(reply); err != nil {
		return "", err
	}

	if s.interactions != nil {
		err := s.interactions.SaveInteraction(storage.Interaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			UserMessage: userMessage,
			Reply:       reply,
			RetrievalOK: retrievalOK,
			AgentOK:     agentOK,
		})
		if err != nil {
			slog.Warn("recording interaction failed", "user_id", userID, "error", err)
		}
	}

	return reply, nil
}

// Context returns the conversational context for a user, creating it on
// first access.
func (s *Service) Context(userID string) *memory.Context {
	return s.contexts.GetOrCreate(userID)
}

// syncFavorites mirrors the persisted favourites file into the session
// entities so the summary reflects tool side effects from earlier turns.
// The file stays the durable source of truth; the context is a per-session
// view over it.
func (s *Service) syncFavorites(cctx *memory.Context) {
	ids := s.favorites.List()
	titles, err := s.titles.TitlesByIDs(ids)
	if err != nil {
		slog.Warn("resolving favourite titles failed", "error", err)
		titles = nil
	}
	byID := make(map[string]string, len(ids))
	for _, id := range ids {
		byID[id] = titles[id]
	}
	cctx.SyncFavorites(byID)
}
