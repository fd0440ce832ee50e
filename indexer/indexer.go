package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"file_search_go/logger"
	"file_search_go/models"
)

// Options controls one indexing run.
type Options struct {
	BatchSize    int
	WithMetadata bool
	Workers      int
	Progress     Progress
}

// Indexer runs the scan → channel → writer pipeline against one store.
type Indexer struct {
	store   RecordWriter
	opts    Options
	written atomic.Int64
}

// NewIndexer creates a new indexer writing into store
func NewIndexer(store RecordWriter, opts Options) *Indexer {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.Progress == nil {
		opts.Progress = NoopProgress{}
	}
	return &Indexer{store: store, opts: opts}
}

// Written returns the number of records committed so far.
func (i *Indexer) Written() int64 {
	return i.written.Load()
}

// IndexDirectory indexes every file under root. Directories that cannot be
// listed end up in the result's SkippedPaths; the run still succeeds.
func (i *Indexer) IndexDirectory(ctx context.Context, root string) (*models.IndexResult, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("error resolving root path %s: %w", root, err)
	}

	logger.Info("starting to index directory", "root", absRoot, "batch_size", i.opts.BatchSize, "metadata", i.opts.WithMetadata)

	records := make(chan models.FileRecord, 2*i.opts.BatchSize)
	skipped := &skipList{}

	writer := NewBatchWriter(i.store, i.opts.BatchSize, func(n int) {
		i.opts.Progress.Update(i.written.Add(int64(n)))
	})
	scanner := NewScanner(i.opts.WithMetadata, i.opts.Workers)

	g, gctx := errgroup.WithContext(ctx)

	// a failed commit cancels gctx, which releases producers blocked in emit
	g.Go(func() error { return writer.Drain(gctx, records) })

	g.Go(func() error {
		defer close(records)
		emit := func(rec models.FileRecord) error {
			select {
			case records <- rec:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return scanner.Scan(gctx, absRoot, emit, skipped.add)
	})

	err = g.Wait()
	i.opts.Progress.Finish(i.written.Load())
	if err != nil {
		if errors.Is(err, ErrPathNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error indexing %s: %w", absRoot, err)
	}

	result := &models.IndexResult{
		Duration:     time.Since(start),
		SkippedPaths: skipped.paths(),
		Records:      i.written.Load(),
	}
	logger.Info("indexing completed", "root", absRoot, "records", result.Records,
		"skipped", len(result.SkippedPaths), "duration", result.Duration)
	return result, nil
}

// IndexWithMetadata indexes root recording mtime and size for every file.
func IndexWithMetadata(ctx context.Context, store RecordWriter, root string, batchSize int) (*models.IndexResult, error) {
	return NewIndexer(store, Options{BatchSize: batchSize, WithMetadata: true}).IndexDirectory(ctx, root)
}

// IndexPathsOnly indexes root storing only path and name.
func IndexPathsOnly(ctx context.Context, store RecordWriter, root string, batchSize int) (*models.IndexResult, error) {
	return NewIndexer(store, Options{BatchSize: batchSize}).IndexDirectory(ctx, root)
}

// skipList collects directories abandoned during a scan.
type skipList struct {
	mu    sync.Mutex
	items []string
}

func (s *skipList) add(path string) {
	s.mu.Lock()
	s.items = append(s.items, path)
	s.mu.Unlock()
}

func (s *skipList) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}
