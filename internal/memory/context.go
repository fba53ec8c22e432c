// Package memory holds per-user conversational state: a bounded message
// history, known movie entities, and a bounded audit log of retrieval calls.
package memory

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidRole is returned when a message role is not one of the
// allowed values.
var ErrInvalidRole = errors.New("role must be user, assistant or system")

// DefaultMaxHistory is the message capacity of a Context when none is given.
const DefaultMaxHistory = 10

const noFavoritesMessage = "No favorite movies stored."

// Role tags the sender of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether the role is one of the three allowed values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is a single turn in a conversation. Immutable once appended;
// slice order is chronological order.
type Message struct {
	Role    Role
	Content string
}

// Entity is the metadata kept for a movie the conversation has touched.
// Favorite marks the entity itself as a favourite; FavoriteMovies carries
// titles mentioned as favourites without their own entity entry.
type Entity struct {
	Title          string
	Year           string
	Favorite       bool
	FavoriteMovies []string
}

// RetrievalEntry records one semantic search performed during a turn.
type RetrievalEntry struct {
	Query  string
	Result string
}

// Context is the conversational state for a single user. Append operations
// keep the history within maxHistory messages by evicting the oldest first.
//
// A Context is not safe for concurrent turns; callers must hold Lock for
// the duration of a turn (the chat service does this).
type Context struct {
	mu sync.Mutex

	maxHistory int
	messages   []Message
	entities   map[string]Entity
	retrievals []RetrievalEntry
}

// NewContext creates a Context with the given history capacity.
// A capacity <= 0 falls back to DefaultMaxHistory.
func NewContext(maxHistory int) *Context {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Context{
		maxHistory: maxHistory,
		entities:   make(map[string]Entity),
	}
}

// Lock acquires the per-context turn lock. At most one reply may be in
// flight per context; interleaved appends from concurrent turns would
// corrupt the transcript.
func (c *Context) Lock() { c.mu.Lock() }

// Unlock releases the per-context turn lock.
func (c *Context) Unlock() { c.mu.Unlock() }

// Append adds a message to the history. Returns ErrInvalidRole (without
// mutating the buffer) for roles outside {user, assistant, system}. When
// the resulting length exceeds the capacity, the oldest messages are
// evicted until the length equals the capacity.
func (c *Context) Append(role Role, content string) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	c.messages = append(c.messages, Message{Role: role, Content: content})
	if n := len(c.messages); n > c.maxHistory {
		c.messages = c.messages[n-c.maxHistory:]
	}
	return nil
}

// AppendUser adds a user message.
func (c *Context) AppendUser(content string) error { return c.Append(RoleUser, content) }

// AppendAssistant adds an assistant message.
func (c *Context) AppendAssistant(content string) error { return c.Append(RoleAssistant, content) }

// AppendSystem adds a system message.
func (c *Context) AppendSystem(content string) error { return c.Append(RoleSystem, content) }

// Recent returns the last n messages in chronological order. When n <= 0
// or n covers the whole buffer, all messages are returned. The returned
// slice is a copy.
func (c *Context) Recent(n int) []Message {
	if n <= 0 || n >= len(c.messages) {
		out := make([]Message, len(c.messages))
		copy(out, c.messages)
		return out
	}
	out := make([]Message, n)
	copy(out, c.messages[len(c.messages)-n:])
	return out
}

// Len returns the current number of messages in the history.
func (c *Context) Len() int { return len(c.messages) }

// Render returns a human-readable transcript of the last n messages
// (all when n <= 0), one "<Role>: <content>" line per message. The output
// is deterministic given the buffer state; it is inserted verbatim into
// agent prompts.
func (c *Context) Render(n int) string {
	msgs := c.Recent(n)
	lines := make([]string, len(msgs))
	for i, m := range msgs {
		lines[i] = capitalize(string(m.Role)) + ": " + m.Content
	}
	return strings.Join(lines, "\n")
}

// SetEntity stores or replaces the metadata for a movie id.
func (c *Context) SetEntity(id string, e Entity) {
	c.entities[id] = e
}

// Entity returns the metadata for a movie id, if known.
func (c *Context) Entity(id string) (Entity, bool) {
	e, ok := c.entities[id]
	return e, ok
}

// MarkFavorite flags the entity with the given id as a favourite,
// creating a bare entry when the id is unknown. Used to mirror the
// persisted favourites list into the session state.
func (c *Context) MarkFavorite(id, title string, fav bool) {
	e := c.entities[id]
	if title != "" {
		e.Title = title
	}
	e.Favorite = fav
	c.entities[id] = e
}

// SyncFavorites mirrors the persisted favourites set into the session
// entities: each id in titles is flagged as a favourite (carrying its title
// when known), and previously flagged ids absent from the set are unflagged.
func (c *Context) SyncFavorites(titles map[string]string) {
	for id, e := range c.entities {
		if e.Favorite {
			if _, ok := titles[id]; !ok {
				e.Favorite = false
				c.entities[id] = e
			}
		}
	}
	for id, title := range titles {
		c.MarkFavorite(id, title, true)
	}
}

// FavoritesSummary returns a textual summary of the user's favourite
// movies. Resolution order: entities flagged as favourites win; when none
// are flagged, titles collected from FavoriteMovies lists are used; when
// neither yields anything, a fixed "none stored" message is returned.
// Flagged entries that all lack titles also fall back to that message
// rather than producing an empty string.
func (c *Context) FavoritesSummary() string {
	var flagged []string
	for _, e := range c.entities {
		if e.Favorite && e.Title != "" {
			flagged = append(flagged, e.Title)
		}
	}
	anyFlagged := false
	for _, e := range c.entities {
		if e.Favorite {
			anyFlagged = true
			break
		}
	}
	if anyFlagged {
		if len(flagged) == 0 {
			return noFavoritesMessage
		}
		// Map iteration order is random; sort so summaries are deterministic.
		sort.Strings(flagged)
		return strings.Join(flagged, ", ")
	}

	var listed []string
	for _, e := range c.entities {
		listed = append(listed, e.FavoriteMovies...)
	}
	if len(listed) > 0 {
		sort.Strings(listed)
		return strings.Join(listed, ", ")
	}
	return noFavoritesMessage
}

// LogRetrieval appends a query/result pair to the retrieval audit log,
// evicting the oldest entries past the history capacity. The same FIFO
// bound as the message history keeps long-lived contexts from growing
// without limit.
func (c *Context) LogRetrieval(query, result string) {
	c.retrievals = append(c.retrievals, RetrievalEntry{Query: query, Result: result})
	if n := len(c.retrievals); n > c.maxHistory {
		c.retrievals = c.retrievals[n-c.maxHistory:]
	}
}

// Retrievals returns a copy of the retrieval audit log, oldest first.
func (c *Context) Retrievals() []RetrievalEntry {
	out := make([]RetrievalEntry, len(c.retrievals))
	copy(out, c.retrievals)
	return out
}

// Clear empties the history, entities, and retrieval log.
func (c *Context) Clear() {
	c.messages = nil
	c.entities = make(map[string]Entity)
	c.retrievals = nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
