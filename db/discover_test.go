package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSuffix = ".fsearch.db"

func setupDiscoverDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0o755))
	for _, name := range []string{"test1.fsearch.db", "test2.fsearch.db", "other.txt", "subdir/nested.fsearch.db"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	return dir
}

func TestDiscoverStores_SingleFile(t *testing.T) {
	dir := setupDiscoverDir(t)
	file := filepath.Join(dir, "test1.fsearch.db")

	assert.Equal(t, []string{file}, DiscoverStores([]string{file}, testSuffix))
}

func TestDiscoverStores_NonStoreFile(t *testing.T) {
	dir := setupDiscoverDir(t)
	assert.Empty(t, DiscoverStores([]string{filepath.Join(dir, "other.txt")}, testSuffix))
}

func TestDiscoverStores_DirectoryIsOneLevelDeep(t *testing.T) {
	dir := setupDiscoverDir(t)

	stores := DiscoverStores([]string{dir}, testSuffix)

	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "test1.fsearch.db"),
		filepath.Join(dir, "test2.fsearch.db"),
	}, stores)
}

func TestDiscoverStores_MixedPaths(t *testing.T) {
	dir := setupDiscoverDir(t)
	file := filepath.Join(dir, "test1.fsearch.db")

	stores := DiscoverStores([]string{dir, file}, testSuffix)

	// the direct file path is kept even though the directory already yielded it
	assert.Len(t, stores, 3)
}

func TestDiscoverStores_NonexistentAndEmpty(t *testing.T) {
	assert.Empty(t, DiscoverStores([]string{"/nonexistent/path"}, testSuffix))
	assert.Empty(t, DiscoverStores(nil, testSuffix))
}
