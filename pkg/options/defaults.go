package options

const (
	// DefaultFilePath is the log path used when no FilePath is configured.
	DefaultFilePath = "database.db"

	// DefaultMaxSize is the soft log-size bound, in bytes, used when no
	// MaxSize is configured (1 MiB, per spec §6).
	DefaultMaxSize uint64 = 1024 * 1024
)

// defaultOptions holds the default configuration for the store.
var defaultOptions = Options{
	FilePath: DefaultFilePath,
	MaxSize:  DefaultMaxSize,
}

// NewDefaultOptions returns a copy of the package defaults.
func NewDefaultOptions() Options {
	return defaultOptions
}
