package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"file_search_go/models"
)

// createTestTree lays out the five-file fixture and returns its root.
func createTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"file1.txt":             "Hello",
		"file2.txt":             "World",
		"dir1/file3.txt":        "Test1",
		"dir2/file4.txt":        "Test2",
		"dir2/subdir/file5.txt": "Test3",
	}
	for rel, content := range files {
		full := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

// collector gathers emitted records and skipped paths from concurrent workers.
type collector struct {
	mu      sync.Mutex
	records []models.FileRecord
	skipped []string
}

func (c *collector) emit(r models.FileRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

func (c *collector) skip(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped = append(c.skipped, path)
}

func (c *collector) names() []string {
	names := make([]string, 0, len(c.records))
	for _, r := range c.records {
		names = append(names, r.Name)
	}
	return names
}

func TestScanner_Scan(t *testing.T) {
	root := createTestTree(t)

	for _, withMetadata := range []bool{false, true} {
		c := &collector{}
		err := NewScanner(withMetadata, 2).Scan(context.Background(), root, c.emit, c.skip)
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{"file1.txt", "file2.txt", "file3.txt", "file4.txt", "file5.txt"}, c.names())
		assert.Empty(t, c.skipped)
		for _, r := range c.records {
			assert.Equal(t, withMetadata, r.HasMetadata(), r.Path)
			assert.Equal(t, filepath.Base(r.Path), r.Name)
		}
	}
}

func TestScanner_ManyFilesSingleWorker(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 3*filesPerTask+7; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, fmt.Sprintf("f%04d.bin", i)), nil, 0o644))
	}

	c := &collector{}
	require.NoError(t, NewScanner(false, 1).Scan(context.Background(), root, c.emit, c.skip))
	assert.Len(t, c.records, 3*filesPerTask+7)
}

func TestScanner_RootNotFound(t *testing.T) {
	c := &collector{}
	err := NewScanner(false, 0).Scan(context.Background(), "/nonexistent/path/xyz", c.emit, c.skip)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestScanner_UnreadableDirectoryIsSkipped(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := createTestTree(t)
	locked := filepath.Join(root, "dir2")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	c := &collector{}
	require.NoError(t, NewScanner(true, 4).Scan(context.Background(), root, c.emit, c.skip))

	assert.Equal(t, []string{locked}, c.skipped)
	assert.ElementsMatch(t, []string{"file1.txt", "file2.txt", "file3.txt"}, c.names())
}

func TestScanner_Symlinks(t *testing.T) {
	root := createTestTree(t)
	require.NoError(t, os.Symlink(filepath.Join(root, "file1.txt"), filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(root, "dir2"), filepath.Join(root, "dirlink")))
	require.NoError(t, os.Symlink(filepath.Join(root, "missing"), filepath.Join(root, "dangling")))

	c := &collector{}
	require.NoError(t, NewScanner(false, 4).Scan(context.Background(), root, c.emit, c.skip))

	assert.ElementsMatch(t, []string{
		"file1.txt", "file2.txt", "file3.txt", "file4.txt", "file5.txt", "link.txt",
	}, c.names())
}

func TestScanner_EmitErrorStopsScan(t *testing.T) {
	root := createTestTree(t)
	stop := assert.AnError

	err := NewScanner(false, 1).Scan(context.Background(), root, func(models.FileRecord) error { return stop }, func(string) {})
	assert.ErrorIs(t, err, stop)
}

func TestScanner_CanceledContext(t *testing.T) {
	root := createTestTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &collector{}
	err := NewScanner(false, 2).Scan(ctx, root, c.emit, c.skip)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.records)
}

func TestScannerRecord_MetadataFallback(t *testing.T) {
	root := t.TempDir()
	present := filepath.Join(root, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("Hello"), 0o644))
	// the file vanished between listing and stat
	vanished := filepath.Join(root, "vanished.txt")

	s := NewScanner(true, 1)

	rec := s.record(present)
	require.True(t, rec.HasMetadata())
	assert.EqualValues(t, 5, *rec.Size)

	rec = s.record(vanished)
	assert.Equal(t, vanished, rec.Path)
	assert.Equal(t, "vanished.txt", rec.Name)
	assert.False(t, rec.HasMetadata())
	assert.Nil(t, rec.Mtime)
	assert.Nil(t, rec.Size)

	rec = NewScanner(false, 1).record(present)
	assert.False(t, rec.HasMetadata())
}
