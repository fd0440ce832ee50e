package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T, max int) *History {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "nested", "search_history.json"), max)
}

func queries(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Query
	}
	return out
}

func TestHistory_EmptyWhenMissing(t *testing.T) {
	h := newTestHistory(t, 10)

	entries, err := h.GetAll()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_AddNewestFirst(t *testing.T) {
	h := newTestHistory(t, 10)

	first, err := h.Add(Entry{Query: "photo", SelectedDB: "all", ResultCount: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Timestamp.IsZero())

	_, err = h.Add(Entry{Query: "video", SelectedDB: "all"})
	require.NoError(t, err)

	entries, err := h.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"video", "photo"}, queries(entries))
	assert.Equal(t, 3, entries[1].ResultCount)
}

func TestHistory_TruncatesToMaxEntries(t *testing.T) {
	h := newTestHistory(t, 2)
	for _, q := range []string{"a", "b", "c"} {
		_, err := h.Add(Entry{Query: q})
		require.NoError(t, err)
	}

	entries, err := h.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, queries(entries))
}

func TestHistory_GetRecent(t *testing.T) {
	h := newTestHistory(t, 10)
	for _, q := range []string{"a", "b", "c"} {
		_, err := h.Add(Entry{Query: q})
		require.NoError(t, err)
	}

	recent, err := h.GetRecent(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, queries(recent))

	all, err := h.GetRecent(50)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestHistory_RemoveAndClear(t *testing.T) {
	h := newTestHistory(t, 10)
	a, err := h.Add(Entry{Query: "a"})
	require.NoError(t, err)
	_, err = h.Add(Entry{Query: "b"})
	require.NoError(t, err)

	require.NoError(t, h.Remove(a.ID))
	entries, err := h.GetAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, queries(entries))

	assert.ErrorIs(t, h.Remove("missing"), ErrEntryNotFound)

	require.NoError(t, h.Clear())
	entries, err = h.GetAll()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CorruptFile(t *testing.T) {
	h := newTestHistory(t, 10)
	require.NoError(t, os.MkdirAll(filepath.Dir(h.Path()), 0o700))
	require.NoError(t, os.WriteFile(h.Path(), []byte("{not json"), 0o600))

	_, err := h.GetAll()
	assert.Error(t, err)
}
