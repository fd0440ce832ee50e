package web

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suffix = ".fsearch.db"

func TestStoreSet_Include(t *testing.T) {
	dir := t.TempDir()
	inside := filepath.Join(dir, "a.fsearch.db")
	require.NoError(t, os.WriteFile(inside, nil, 0o644))
	elsewhere := filepath.Join(t.TempDir(), "b.fsearch.db")
	require.NoError(t, os.WriteFile(elsewhere, nil, 0o644))

	s := NewStoreSet([]string{dir}, suffix)
	assert.Equal(t, []string{inside}, s.Paths())

	s.Include(inside)
	assert.Equal(t, []string{inside}, s.Paths())

	s.Include(elsewhere)
	assert.Equal(t, []string{inside, elsewhere}, s.Paths())
}

func TestStoreSet_WatchFollowsDirectory(t *testing.T) {
	dir := t.TempDir()
	s := NewStoreSet([]string{dir}, suffix)
	require.Empty(t, s.Paths())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Watch(ctx))

	store := filepath.Join(dir, "new.fsearch.db")
	require.NoError(t, os.WriteFile(store, nil, 0o644))
	require.Eventually(t, func() bool { return len(s.Paths()) == 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(store))
	require.Eventually(t, func() bool { return len(s.Paths()) == 0 }, 5*time.Second, 20*time.Millisecond)
}
