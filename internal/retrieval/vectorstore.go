package retrieval

import "time"

// VectorStore is the interface for vector storage and similarity search
// backends. The default implementation uses SQLite with brute-force cosine
// similarity, which is comfortable for catalog sizes in the low tens of
// thousands; an ANN-capable backend can replace it behind this interface.
type VectorStore interface {
	// Insert adds records to the store.
	Insert(records []Record) error

	// Search performs vector similarity search, returning the top-K most
	// similar records, highest score first.
	Search(vector []float32, topK int) ([]ScoredRecord, error)

	// DeleteByMovie removes all vectors for the given movie id.
	DeleteByMovie(movieID string) error

	// Count returns the number of stored vectors.
	Count() (int, error)
}

// Record is one embedded movie document.
type Record struct {
	ID        string
	MovieID   string
	TextChunk string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredRecord is a Record with a similarity score attached.
type ScoredRecord struct {
	Record
	Score float32
}

// ScoredMovie is a retrieval result joined with catalog metadata; the
// shape handed to prompt assembly.
type ScoredMovie struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Overview string  `json:"overview"`
	Genres   string  `json:"genres"`
	Cast     string  `json:"cast"`
	Director string  `json:"director"`
	Year     string  `json:"year"`
	Rating   float64 `json:"rating"`
	Score    float32 `json:"score"`
}
