package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"file_search_go/logger"
	"file_search_go/models"
)

// ErrPathNotFound is returned when the scan root does not exist.
var ErrPathNotFound = errors.New("root path does not exist")

// filesPerTask is the number of files handled by one unit of work.
const filesPerTask = 256

// EmitFunc receives every record produced by a scan. It may block; a non-nil
// error aborts the scan.
type EmitFunc func(models.FileRecord) error

// SkipFunc receives directories that could not be listed.
type SkipFunc func(path string)

// Scanner walks a directory tree in parallel and emits one record per file.
//
// Emission order is not deterministic. Unreadable directories are reported
// through the SkipFunc and their subtree is omitted.
type Scanner struct {
	withMetadata bool
	workers      int
}

// NewScanner creates a scanner. workers bounds concurrently running units of
// work; values below one select a default based on GOMAXPROCS.
func NewScanner(withMetadata bool, workers int) *Scanner {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0) * 4
	}
	return &Scanner{withMetadata: withMetadata, workers: workers}
}

// Scan walks root and returns once every reachable file has been emitted.
func (s *Scanner) Scan(ctx context.Context, root string, emit EmitFunc, skip SkipFunc) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("%w: %s", ErrPathNotFound, root)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	w := &walk{scanner: s, ctx: gctx, group: g, emit: emit, skip: skip}
	inlineErr := w.dir(root)
	if inlineErr != nil {
		cancel()
	}
	groupErr := g.Wait()

	// a cancellation error only ever follows the failure that caused it
	if inlineErr != nil && !isContextErr(inlineErr) {
		return inlineErr
	}
	if groupErr != nil {
		return groupErr
	}
	return inlineErr
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// walk is the state of one Scan call shared by all of its units of work.
type walk struct {
	scanner *Scanner
	ctx     context.Context
	group   *errgroup.Group
	emit    EmitFunc
	skip    SkipFunc
}

// spawn runs fn on a pool goroutine when one is free, otherwise inline.
func (w *walk) spawn(fn func() error) error {
	if w.group.TryGo(fn) {
		return nil
	}
	return fn()
}

func (w *walk) dir(path string) error {
	if err := w.ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		logger.Debug("skipping unreadable directory", "path", path, "err", err)
		w.skip(path)
		return nil
	}

	var files, dirs []string
	for _, entry := range entries {
		full := filepath.Join(path, entry.Name())
		switch classify(full, entry) {
		case kindFile:
			files = append(files, full)
		case kindDir:
			dirs = append(dirs, full)
		}
	}

	for start := 0; start < len(files); start += filesPerTask {
		chunk := files[start:min(start+filesPerTask, len(files))]
		if err := w.spawn(func() error { return w.files(chunk) }); err != nil {
			return err
		}
	}

	for _, sub := range dirs {
		if err := w.spawn(func() error { return w.dir(sub) }); err != nil {
			return err
		}
	}
	return nil
}

func (w *walk) files(paths []string) error {
	for _, path := range paths {
		if err := w.emit(w.scanner.record(path)); err != nil {
			return err
		}
	}
	return nil
}

// record builds the record for one file. With metadata enabled, extraction
// failures fall back to a record without metadata.
func (s *Scanner) record(path string) models.FileRecord {
	name := filepath.Base(path)
	if !s.withMetadata {
		return models.NewFileRecord(path, name)
	}

	mtime, size, err := ExtractMetadata(path)
	if err != nil {
		logger.Debug("indexing without metadata", "path", path, "err", err)
		return models.NewFileRecord(path, name)
	}
	return models.NewFileRecordWithMetadata(path, name, mtime, size)
}

type entryKind int

const (
	kindIgnore entryKind = iota
	kindFile
	kindDir
)

// classify decides how a directory entry is handled. Symlinks count as files
// when they resolve to a regular file; symlinked directories are not followed.
func classify(path string, entry fs.DirEntry) entryKind {
	t := entry.Type()
	switch {
	case t.IsRegular():
		return kindFile
	case t.IsDir():
		return kindDir
	case t&fs.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return kindFile
		}
	}
	return kindIgnore
}
