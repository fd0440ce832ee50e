package web

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"file_search_go/db"
	"file_search_go/logger"
)

// StoreSet is the list of store files the server searches. It is built from
// configured paths and rebuilt whenever a watched directory gains or loses a
// store file.
type StoreSet struct {
	mu     sync.RWMutex
	roots  []string
	suffix string
	paths  []string
}

// NewStoreSet discovers the stores under roots.
func NewStoreSet(roots []string, suffix string) *StoreSet {
	s := &StoreSet{roots: slices.Clone(roots), suffix: suffix}
	s.Refresh()
	return s
}

// Paths returns the current store files.
func (s *StoreSet) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.paths)
}

// Refresh rediscovers the store files.
func (s *StoreSet) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = db.DiscoverStores(s.roots, s.suffix)
	logger.Debug("store set refreshed", "stores", len(s.paths))
}

// Include makes sure the store at path is part of the set, adding it to the
// configured roots when discovery does not already find it.
func (s *StoreSet) Include(path string) {
	s.Refresh()

	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.paths, path) {
		return
	}
	s.roots = append(s.roots, path)
	s.paths = db.DiscoverStores(s.roots, s.suffix)
}

// Watch refreshes the set whenever a store file appears in or disappears from
// a configured directory. It returns once the watcher is running; watching
// stops when ctx is done.
func (s *StoreSet) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating store watcher: %w", err)
	}

	s.mu.RLock()
	for _, root := range s.roots {
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			if err := watcher.Add(root); err != nil {
				logger.Warn("cannot watch store directory", "path", root, "err", err)
			}
		}
	}
	s.mu.RUnlock()

	go s.watch(ctx, watcher)
	return nil
}

func (s *StoreSet) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, s.suffix) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				logger.Debug("store file changed", "path", event.Name, "op", event.Op.String())
				s.Refresh()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("store watcher error", "err", err)
		}
	}
}
