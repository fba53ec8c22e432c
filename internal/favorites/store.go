// Package favorites persists the user's favourite movie ids as a JSON
// array on disk. The file is the durable source of truth for favourites;
// session contexts mirror it on demand.
package favorites

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and writes the favourites file. All mutations are
// read-modify-write under a mutex; concurrent tool calls must not
// interleave their writes.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a Store persisting to the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path the store persists to.
func (s *Store) Path() string { return s.path }

// List returns the favourite movie ids in stored order. A missing or
// unparsable file is treated as an empty list.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Contains reports whether id is in the favourites list.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fav := range s.load() {
		if fav == id {
			return true
		}
	}
	return false
}

// Add appends id to the favourites list if not already present and
// reports whether the list changed.
func (s *Store) Add(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load()
	for _, fav := range ids {
		if fav == id {
			return false, nil
		}
	}
	ids = append(ids, id)
	if err := s.save(ids); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes id from the favourites list and reports whether it was
// present.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.load()
	kept := ids[:0]
	found := false
	for _, fav := range ids {
		if fav == id {
			found = true
			continue
		}
		kept = append(kept, fav)
	}
	if !found {
		return false, nil
	}
	if err := s.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

// load reads the favourites file. Corruption is recovered by starting
// over with an empty list; favourites are best-effort state, not worth
// failing a chat turn over.
func (s *Store) load() []string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("reading favourites file", "path", s.path, "error", err)
		}
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		slog.Warn("favourites file unparsable, treating as empty", "path", s.path, "error", err)
		return nil
	}
	return ids
}

func (s *Store) save(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling favourites: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating favourites directory: %w", err)
	}
	// Write to a temp file and rename so a crash mid-write never leaves a
	// truncated favourites file behind.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing favourites file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing favourites file: %w", err)
	}
	return nil
}
