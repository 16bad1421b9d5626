package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moanapiquet/kvdb/internal/storage"
	"github.com/moanapiquet/kvdb/pkg/options"
)

func newTestStorage(t *testing.T, path string) *storage.Storage {
	t.Helper()
	opts := options.Options{FilePath: path, MaxSize: 0}
	s, err := storage.New(&storage.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Storage_New_CreatesMissingFileAndParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "database.db")
	s := newTestStorage(t, path)

	_, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, path, s.Path())
}

func Test_Storage_Append_ReturnsSequentialOffsets(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t, filepath.Join(t.TempDir(), "database.db"))

	off1, err := s.Append([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, int64(0), off1)

	off2, err := s.Append([]byte("world!"))
	require.NoError(t, err)
	require.Equal(t, int64(5), off2)

	size, err := s.Size()
	require.NoError(t, err)
	require.Equal(t, int64(11), size)
}

func Test_Storage_ReadAt_ReturnsExactSlice(t *testing.T) {
	t.Parallel()

	s := newTestStorage(t, filepath.Join(t.TempDir(), "database.db"))

	_, err := s.Append([]byte("hello"))
	require.NoError(t, err)
	off, err := s.Append([]byte("world!"))
	require.NoError(t, err)

	got, err := s.ReadAt(off, 6)
	require.NoError(t, err)
	require.Equal(t, []byte("world!"), got)
}

func Test_Storage_ReplaceWith_SwapsFileInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "database.db")
	s := newTestStorage(t, path)

	_, err := s.Append([]byte("original"))
	require.NoError(t, err)

	tempPath := filepath.Join(dir, "database.db.compacted")
	require.NoError(t, os.WriteFile(tempPath, []byte("compacted"), 0644))

	require.NoError(t, s.ReplaceWith(tempPath))

	size, err := s.Size()
	require.NoError(t, err)
	require.Equal(t, int64(len("compacted")), size)

	// The active handle was reopened and still accepts appends.
	off, err := s.Append([]byte("!"))
	require.NoError(t, err)
	require.Equal(t, int64(len("compacted")), off)
}
