package compaction_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moanapiquet/kvdb/internal/codec"
	"github.com/moanapiquet/kvdb/internal/compaction"
	"github.com/moanapiquet/kvdb/internal/index"
	"github.com/moanapiquet/kvdb/internal/storage"
	"github.com/moanapiquet/kvdb/pkg/options"
)

// appendRecord writes rec to store and returns a KeyEntry describing where
// it landed, mirroring what the engine's write path would record.
func appendRecord(t *testing.T, store *storage.Storage, rec codec.Record) index.KeyEntry {
	t.Helper()
	frame := rec.Encode()
	offset, err := store.Append(frame)
	require.NoError(t, err)
	return index.KeyEntry{Key: rec.Key, Entry: index.Entry{Offset: offset, Size: uint32(len(frame))}}
}

func Test_Compaction_KeepsOnlyLastWriteWinsLiveKeys(t *testing.T) {
	t.Parallel()

	log := zap.NewNop().Sugar()
	path := filepath.Join(t.TempDir(), "database.db")
	opts := options.Options{FilePath: path}
	store, err := storage.New(&storage.Config{Options: &opts, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	// a=1, b=2, a=3 (spec §8 scenario 5); snapshot in ascending-offset order
	// means the first "a" entry is superseded before compaction even runs,
	// because a real index would already have overwritten it. Simulate that
	// by only snapshotting the live entries, one per key.
	appendRecord(t, store, codec.Record{Kind: codec.KindData, Key: []byte("a"), Value: []byte("1")})
	bEntry := appendRecord(t, store, codec.Record{Kind: codec.KindData, Key: []byte("b"), Value: []byte("2")})
	aEntry := appendRecord(t, store, codec.Record{Kind: codec.KindData, Key: []byte("a"), Value: []byte("3")})

	snap := []index.KeyEntry{bEntry, aEntry}

	result, err := compaction.Run(store, snap, log)
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)
	require.Less(t, result.SizeAfter, result.SizeBefore)

	aGot, ok := result.Entries["a"]
	require.True(t, ok)
	frame, err := store.ReadAt(aGot.Offset, aGot.Size)
	require.NoError(t, err)
	decoded, err := codec.Decode(frame)
	require.NoError(t, err)
	require.Equal(t, []byte("3"), decoded.Value)

	bGot, ok := result.Entries["b"]
	require.True(t, ok)
	frame, err = store.ReadAt(bGot.Offset, bGot.Size)
	require.NoError(t, err)
	decoded, err = codec.Decode(frame)
	require.NoError(t, err)
	require.Equal(t, []byte("2"), decoded.Value)
}

func Test_Compaction_DropsTombstones(t *testing.T) {
	t.Parallel()

	log := zap.NewNop().Sugar()
	path := filepath.Join(t.TempDir(), "database.db")
	opts := options.Options{FilePath: path}
	store, err := storage.New(&storage.Config{Options: &opts, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tombEntry := appendRecord(t, store, codec.Record{Kind: codec.KindTombstone, Key: []byte("gone")})

	result, err := compaction.Run(store, []index.KeyEntry{tombEntry}, log)
	require.NoError(t, err)
	require.Empty(t, result.Entries)
}
