package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// MovieTools abstracts the agent's favourites and details tools for the MCP
// layer.
type MovieTools interface {
	AddFavourite(ctx context.Context, movieName string) string
	DeleteFavourite(ctx context.Context, movieName string) string
	GetMovieDetails(ctx context.Context, movieName string) string
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Chat      ChatService
	Retriever MovieSearcher
	Tools     MovieTools
	Favorites FavoriteLister
	Titles    TitleLookup
}

// NewMCPServer creates an MCP server with all cinetech tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"cinetech",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("cinetech — movie recommendation assistant with semantic search and per-user favourites."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("recommend",
			mcp.WithDescription("Ask the movie assistant for recommendations. Keeps per-user conversation history."),
			mcp.WithString("message", mcp.Description("The user's request"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("Conversation identifier (default: 'default')")),
		),
		mcpRecommend(deps),
	)

	s.AddTool(
		mcp.NewTool("search_movies",
			mcp.WithDescription("Semantically search the movie index and return scored matches."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchMovies(deps),
	)

	s.AddTool(
		mcp.NewTool("add_favourite",
			mcp.WithDescription("Add a movie to the user's favourites by its name."),
			mcp.WithString("movie_name", mcp.Description("The name of the movie"), mcp.Required()),
		),
		mcpAddFavourite(deps),
	)

	s.AddTool(
		mcp.NewTool("delete_favourite",
			mcp.WithDescription("Remove a movie from the user's favourites by its name."),
			mcp.WithString("movie_name", mcp.Description("The name of the movie"), mcp.Required()),
		),
		mcpDeleteFavourite(deps),
	)

	s.AddTool(
		mcp.NewTool("get_movie_details",
			mcp.WithDescription("Get details about a movie by its name."),
			mcp.WithString("movie_name", mcp.Description("The name of the movie"), mcp.Required()),
		),
		mcpGetMovieDetails(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"cinetech://favourites",
			"Favourite Movies",
			mcp.WithResourceDescription("Current favourite movies as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceFavourites(deps),
	)

	return s
}

func mcpRecommend(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		message, err := req.RequireString("message")
		if err != nil {
			return mcpError("message is required"), nil
		}
		userID := req.GetString("user_id", "default")

		reply, err := deps.Chat.GenerateReply(ctx, userID, message)
		if err != nil {
			return mcpError(fmt.Sprintf("recommendation failed: %v", err)), nil
		}

		return mcpText(reply), nil
	}
}

func mcpSearchMovies(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}

		limit := req.GetInt("limit", defaultSearchTopK)
		if limit <= 0 {
			limit = defaultSearchTopK
		}
		if limit > maxSearchTopK {
			limit = maxSearchTopK
		}

		movies, err := deps.Retriever.Search(ctx, query, limit)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(movies) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(movies)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcpText(string(b)), nil
	}
}

func mcpAddFavourite(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("movie_name")
		if err != nil {
			return mcpError("movie_name is required"), nil
		}
		return mcpText(deps.Tools.AddFavourite(ctx, name)), nil
	}
}

func mcpDeleteFavourite(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("movie_name")
		if err != nil {
			return mcpError("movie_name is required"), nil
		}
		return mcpText(deps.Tools.DeleteFavourite(ctx, name)), nil
	}
}

func mcpGetMovieDetails(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("movie_name")
		if err != nil {
			return mcpError("movie_name is required"), nil
		}
		return mcpText(deps.Tools.GetMovieDetails(ctx, name)), nil
	}
}

func mcpResourceFavourites(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ids := deps.Favorites.List()

		titles, err := deps.Titles.TitlesByIDs(ids)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve titles: %w", err)
		}

		entries := make([]FavouriteEntry, len(ids))
		for i, id := range ids {
			entries[i] = FavouriteEntry{ID: id, Title: titles[id]}
		}

		b, err := json.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal favourites: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
