package filesys_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moanapiquet/kvdb/pkg/filesys"
)

func Test_CreateDir_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "deeper")
	require.NoError(t, filesys.CreateDir(dir, 0755, true))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func Test_CreateDir_RejectsExistingFileAtPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := filesys.CreateDir(path, 0755, true)
	require.ErrorIs(t, err, filesys.ErrIsNotDir)
}

func Test_DeleteFile_TreatsMissingFileAsSuccess(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "absent")
	require.NoError(t, filesys.DeleteFile(path))
}

func Test_DeleteFile_RemovesExistingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "present")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	require.NoError(t, filesys.DeleteFile(path))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func Test_Exists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0644))

	ok, err := filesys.Exists(present)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = filesys.Exists(filepath.Join(dir, "absent"))
	require.NoError(t, err)
	require.False(t, ok)
}
