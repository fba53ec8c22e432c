package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Movie is a catalog record cached from TMDb. Genres, Cast, and Director
// are comma-joined strings, matching the text fed to the embedder.
type Movie struct {
	ID        string
	Title     string
	Overview  string
	Genres    string
	Cast      string
	Director  string
	Year      string
	Rating    float64
	CreatedAt time.Time
	VectorID  string
}

// Interaction is one chat turn: what the user asked and what was replied,
// with per-stage outcome flags for later inspection.
type Interaction struct {
	ID          string
	UserID      string
	CreatedAt   time.Time
	UserMessage string
	Reply       string
	RetrievalOK bool
	AgentOK     bool
}

// Job is a queued unit of background work (movie embedding).
type Job struct {
	ID          string
	Type        string
	PayloadJSON string
	Status      string // "pending", "running", "completed", "failed"
	Attempts    int
	MaxAttempts int
	RunAfter    time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	LastError   string
}
