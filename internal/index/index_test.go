package index_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moanapiquet/kvdb/internal/index"
)

func newTestIndex(t *testing.T) *index.Index {
	t.Helper()
	idx, err := index.New(&index.Config{Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	return idx
}

func Test_Index_PutGet_LastWriteWins(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	idx.Put([]byte("k"), index.Entry{Offset: 0, Size: 10})
	idx.Put([]byte("k"), index.Entry{Offset: 10, Size: 12})

	entry, ok := idx.Get([]byte("k"))
	require.True(t, ok)
	require.Equal(t, index.Entry{Offset: 10, Size: 12}, entry)
}

func Test_Index_Get_MissingKey(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	_, ok := idx.Get([]byte("absent"))
	require.False(t, ok)
}

func Test_Index_Snapshot_SortedByAscendingOffset(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	idx.Put([]byte("c"), index.Entry{Offset: 30, Size: 1})
	idx.Put([]byte("a"), index.Entry{Offset: 10, Size: 1})
	idx.Put([]byte("b"), index.Entry{Offset: 20, Size: 1})

	snap := idx.Snapshot()
	require.Len(t, snap, 3)

	expected := []index.KeyEntry{
		{Key: []byte("a"), Entry: index.Entry{Offset: 10, Size: 1}},
		{Key: []byte("b"), Entry: index.Entry{Offset: 20, Size: 1}},
		{Key: []byte("c"), Entry: index.Entry{Offset: 30, Size: 1}},
	}
	assert.Empty(t, cmp.Diff(expected, snap), "snapshot should be ascending by offset")
}

func Test_Index_Replace_SwapsEntrySet(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	idx.Put([]byte("stale"), index.Entry{Offset: 0, Size: 5})

	idx.Replace(map[string]index.Entry{"fresh": {Offset: 100, Size: 5}})

	_, ok := idx.Get([]byte("stale"))
	require.False(t, ok)

	entry, ok := idx.Get([]byte("fresh"))
	require.True(t, ok)
	require.Equal(t, index.Entry{Offset: 100, Size: 5}, entry)
}

func Test_Index_Close_RejectsSecondClose(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	require.NoError(t, idx.Close())
	require.ErrorIs(t, idx.Close(), index.ErrIndexClosed)
}
