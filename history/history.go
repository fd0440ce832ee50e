// Package history persists recent searches in a JSON file, newest first.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEntryNotFound is returned when no entry has the requested ID.
var ErrEntryNotFound = errors.New("history entry not found")

// Entry is one recorded search.
type Entry struct {
	ID            string    `json:"id"`
	Query         string    `json:"query"`
	SelectedDB    string    `json:"selected_db"`
	Timestamp     time.Time `json:"timestamp"`
	ResultCount   int       `json:"result_count"`
	NameOnly      bool      `json:"name_only"`
	CaseSensitive bool      `json:"case_sensitive"`
}

// History reads and writes the history file. It is safe for concurrent use
// within one process.
type History struct {
	mu         sync.Mutex
	path       string
	maxEntries int
}

// New creates a history stored at path keeping at most maxEntries entries.
func New(path string, maxEntries int) *History {
	return &History{path: path, maxEntries: maxEntries}
}

// Path returns the history file location.
func (h *History) Path() string {
	return h.path
}

// Add records entry as the newest one, assigning an ID and timestamp when
// they are missing, and drops the oldest entries beyond the limit.
func (h *History) Add(entry Entry) (Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	entries, err := h.load()
	if err != nil {
		return Entry{}, err
	}
	entries = slices.Insert(entries, 0, entry)
	if h.maxEntries > 0 && len(entries) > h.maxEntries {
		entries = entries[:h.maxEntries]
	}
	return entry, h.save(entries)
}

// GetAll returns every entry, newest first.
func (h *History) GetAll() ([]Entry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load()
}

// GetRecent returns at most limit entries, newest first.
func (h *History) GetRecent(limit int) ([]Entry, error) {
	entries, err := h.GetAll()
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Clear removes every entry.
func (h *History) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.save([]Entry{})
}

// Remove deletes the entry with the given ID.
func (h *History) Remove(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.load()
	if err != nil {
		return err
	}
	idx := slices.IndexFunc(entries, func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	return h.save(slices.Delete(entries, idx, idx+1))
}

func (h *History) load() ([]Entry, error) {
	data, err := os.ReadFile(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("error reading history file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("error parsing history file %s: %w", h.path, err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (h *History) save(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("error creating history directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling history: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("error writing history file: %w", err)
	}
	return nil
}
