package chat

import (
	"fmt"
	"strings"

	"github.com/kalambet/cinetech/internal/retrieval"
)

// FallbackReply is returned when a pipeline stage fails. Deliberately
// generic so backend errors never leak to the user.
const FallbackReply = "Sorry, I am unable to generate a reply at the moment. Please try again later."

const chatPromptTemplate = "Previous conversation:\n%s\n\n" +
	"User's favorite movies:\n%s\n\n" +
	"User request:\n%s\n" +
	"Movies to suggest:\n%s\n\n"

// formatPrompt fills the chat prompt with conversation history, favourites
// summary, the current user request and the retrieved movie list.
func formatPrompt(history, favorites, userMessage, moviesList string) string {
	return fmt.Sprintf(chatPromptTemplate, history, favorites, userMessage, moviesList)
}

// renderMovies renders retrieval results as one descriptive line per movie.
func renderMovies(movies []retrieval.ScoredMovie) string {
	lines := make([]string, len(movies))
	for i, m := range movies {
		lines[i] = fmt.Sprintf("- %s (%s): %s | Director: %s | %s",
			m.Title, m.Year, m.Genres, m.Director, m.Overview)
	}
	return strings.Join(lines, "\n")
}
