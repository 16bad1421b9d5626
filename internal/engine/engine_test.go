package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moanapiquet/kvdb/internal/engine"
	"github.com/moanapiquet/kvdb/pkg/options"
)

func newTestEngine(t *testing.T, opts options.Options) *engine.Engine {
	t.Helper()
	eng, err := engine.New(&engine.Config{Options: &opts, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func Test_Engine_SetGetDelete(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	eng := newTestEngine(t, options.Options{FilePath: path})

	require.NoError(t, eng.Set([]byte("nom"), []byte("rustacean")))

	value, found, err := eng.Get([]byte("nom"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("rustacean"), value)

	require.NoError(t, eng.Delete([]byte("nom")))

	_, found, err = eng.Get([]byte("nom"))
	require.NoError(t, err)
	require.False(t, found)
}

func Test_Engine_Get_AbsentKey(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, options.Options{FilePath: filepath.Join(t.TempDir(), "database.db")})

	_, found, err := eng.Get([]byte("never-written"))
	require.NoError(t, err)
	require.False(t, found)
}

func Test_Engine_Delete_NeverWrittenKey_IsTolerated(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(t, options.Options{FilePath: filepath.Join(t.TempDir(), "database.db")})

	require.NoError(t, eng.Delete([]byte("never-written")))

	_, found, err := eng.Get([]byte("never-written"))
	require.NoError(t, err)
	require.False(t, found)
}

func Test_Engine_Reopen_RecoversIndexLastWriteWins(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")

	eng := newTestEngine(t, options.Options{FilePath: path})
	require.NoError(t, eng.Set([]byte("a"), []byte("1")))
	require.NoError(t, eng.Set([]byte("b"), []byte("2")))
	require.NoError(t, eng.Set([]byte("a"), []byte("3")))
	require.NoError(t, eng.Close())

	reopened := newTestEngine(t, options.Options{FilePath: path})

	aVal, found, err := reopened.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("3"), aVal)

	bVal, found, err := reopened.Get([]byte("b"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), bVal)
}

func Test_Engine_Open_RefusesCorruptedLog(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")

	eng := newTestEngine(t, options.Options{FilePath: path})
	require.NoError(t, eng.Set([]byte("k"), []byte("v")))
	require.NoError(t, eng.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)-5] ^= 0xFF // flip a byte inside the value block
	require.NoError(t, os.WriteFile(path, raw, 0644))

	_, err = engine.New(&engine.Config{Options: &options.Options{FilePath: path}, Logger: zap.NewNop().Sugar()})
	require.Error(t, err)
}

func Test_Engine_Compact_ReducesLogLength(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	eng := newTestEngine(t, options.Options{FilePath: path})

	require.NoError(t, eng.Set([]byte("a"), []byte("1")))
	require.NoError(t, eng.Set([]byte("b"), []byte("2")))
	require.NoError(t, eng.Set([]byte("a"), []byte("3")))

	before, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, eng.Compact())

	after, err := os.Stat(path)
	require.NoError(t, err)
	require.Less(t, after.Size(), before.Size())

	value, found, err := eng.Get([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("3"), value)
}

func Test_Engine_AutomaticCompaction_BoundsLogLength(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	eng := newTestEngine(t, options.Options{FilePath: path, MaxSize: 128})

	for i := 0; i < 50; i++ {
		require.NoError(t, eng.Set([]byte("k"), []byte("0123456789")))
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	// One Data frame for "k"="0123456789": header(9) + key(1) + encoded
	// value (at most len+2, since this value has no repeats to compress) + trailer(4).
	require.LessOrEqual(t, info.Size(), int64(9+1+12+4))

	value, found, err := eng.Get([]byte("k"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("0123456789"), value)
}

func Test_Engine_LogIter_YieldsAllWrittenRecords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	eng := newTestEngine(t, options.Options{FilePath: path})

	require.NoError(t, eng.Set([]byte("a"), []byte("1")))
	require.NoError(t, eng.Set([]byte("b"), []byte("2")))

	it, err := eng.LogIter()
	require.NoError(t, err)
	defer it.Close()

	var count int
	for {
		rec, err := it.Next()
		require.NoError(t, err)
		if rec == nil {
			break
		}
		count++
	}
	require.Equal(t, 2, count)
}

func Test_Engine_Close_IsIdempotentFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.db")
	eng, err := engine.New(&engine.Config{Options: &options.Options{FilePath: path}, Logger: zap.NewNop().Sugar()})
	require.NoError(t, err)

	require.NoError(t, eng.Close())
	require.ErrorIs(t, eng.Close(), engine.ErrEngineClosed)
}
