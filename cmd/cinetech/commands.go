package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/cinetech/internal/config"
)

// --- chat ---

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the movie assistant",
	Long: `Talk to the movie assistant.

With a message argument, sends a single turn and prints the reply.
Without arguments, starts an interactive session.

Examples:
  cinetech chat "suggest a slow sci-fi movie like Solaris"
  cinetech chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		if len(args) > 0 {
			reply, err := sendChat(cmd, client, userID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(reply)
			return nil
		}

		// Interactive session.
		fmt.Fprintln(os.Stderr, "cinetech chat (empty line to quit)")
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Fprint(os.Stderr, "> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				break
			}

			reply, err := sendChat(cmd, client, userID, line)
			if err != nil {
				printError("%v", err)
				continue
			}
			fmt.Println(reply)
		}
		return scanner.Err()
	},
}

func sendChat(cmd *cobra.Command, client *apiClient, userID, message string) (string, error) {
	resp, err := client.post(cmd.Context(), "/chat", map[string]any{
		"user_id": userID,
		"message": message,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Reply string `json:"reply"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		return "", err
	}
	return result.Reply, nil
}

func init() {
	chatCmd.Flags().String("user", "default", "conversation identifier")
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch top-rated movies and queue them for embedding",
	RunE: func(cmd *cobra.Command, args []string) error {
		numMovies, _ := cmd.Flags().GetInt("movies")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/ingest", map[string]any{
			"num_movies": numMovies,
		})
		if err != nil {
			return err
		}

		var result struct {
			Status string `json:"status"`
			Movies int    `json:"movies"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Queued %d movies for embedding", result.Movies)
		return nil
	},
}

func init() {
	ingestCmd.Flags().Int("movies", 50, "number of top-rated movies to ingest")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over the movie index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/search", map[string]any{
			"query": query,
			"top_k": limit,
		})
		if err != nil {
			return err
		}

		var results []struct {
			ID       string  `json:"id"`
			Title    string  `json:"title"`
			Year     string  `json:"year"`
			Genres   string  `json:"genres"`
			Director string  `json:"director"`
			Overview string  `json:"overview"`
			Score    float32 `json:"score"`
		}
		if err := decodeJSON(resp, &results); err != nil {
			return err
		}

		if len(results) == 0 {
			fmt.Println("No results found.")
			return nil
		}

		for i, r := range results {
			title := fmt.Sprintf("%s (%s)", r.Title, r.Year)
			fmt.Printf("\n%s [score: %.3f]\n", colorize(colorBold, fmt.Sprintf("%d. %s", i+1, title)), r.Score)
			if r.Genres != "" {
				fmt.Printf("  %s | Director: %s\n", r.Genres, r.Director)
			}
			overview := r.Overview
			if len(overview) > 300 {
				overview = overview[:300] + "..."
			}
			fmt.Printf("  %s\n", overview)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().Int("limit", 5, "maximum number of results")
}

// --- favourites ---

var favouritesCmd = &cobra.Command{
	Use:   "favourites",
	Short: "List favourite movies",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/favourites")
		if err != nil {
			return err
		}

		var favs []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		if err := decodeJSON(resp, &favs); err != nil {
			return err
		}

		if len(favs) == 0 {
			fmt.Println("No favourite movies stored.")
			return nil
		}

		for _, f := range favs {
			title := f.Title
			if title == "" {
				title = "(unknown)"
			}
			fmt.Printf("%s  %s\n", colorize(colorCyan, f.ID), title)
		}
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
