package options_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moanapiquet/kvdb/pkg/options"
)

func Test_NewDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := options.NewDefaultOptions()
	require.Equal(t, options.DefaultFilePath, opts.FilePath)
	require.Equal(t, options.DefaultMaxSize, opts.MaxSize)
}

func Test_WithFilePath_IgnoresBlank(t *testing.T) {
	t.Parallel()

	opts := options.NewDefaultOptions()
	options.WithFilePath("   ")(&opts)
	require.Equal(t, options.DefaultFilePath, opts.FilePath)

	options.WithFilePath("custom.db")(&opts)
	require.Equal(t, "custom.db", opts.FilePath)
}

func Test_WithMaxSize_AcceptsZeroToDisableCompaction(t *testing.T) {
	t.Parallel()

	opts := options.NewDefaultOptions()
	options.WithMaxSize(0)(&opts)
	require.Equal(t, uint64(0), opts.MaxSize)
}

func Test_WithDefaultOptions_Resets(t *testing.T) {
	t.Parallel()

	opts := options.Options{FilePath: "custom.db", MaxSize: 99}
	options.WithDefaultOptions()(&opts)

	require.Equal(t, options.DefaultFilePath, opts.FilePath)
	require.Equal(t, options.DefaultMaxSize, opts.MaxSize)
}
