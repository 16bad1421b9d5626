// Package options provides the configuration surface for the key/value
// store: where the log file lives, and the soft size bound that triggers
// automatic compaction (spec §6).
package options

import "strings"

// Options defines the configurable parameters for the store. It provides
// control over the two knobs spec.md §6 recognizes: the log's location on
// disk and the size threshold that drives automatic compaction.
type Options struct {
	// FilePath is the filesystem path of the append-only log.
	//
	// Default: "database.db"
	FilePath string `json:"filePath"`

	// MaxSize is the soft upper bound, in bytes, for the log file. When
	// nonzero, every successful set/delete measures the log length and runs
	// compaction passes while it remains at or above MaxSize. Zero disables
	// automatic compaction entirely.
	//
	// Default: 1,048,576 (1 MiB)
	MaxSize uint64 `json:"maxSize"`
}

// OptionFunc is a function type that modifies the store's configuration.
type OptionFunc func(*Options)

// WithDefaultOptions resets Options to the package defaults.
func WithDefaultOptions() OptionFunc {
	return func(o *Options) {
		opts := NewDefaultOptions()
		o.FilePath = opts.FilePath
		o.MaxSize = opts.MaxSize
	}
}

// WithFilePath sets the path of the log file. Blank paths (after trimming)
// are ignored so a caller can pass through an unvalidated flag value safely.
func WithFilePath(path string) OptionFunc {
	return func(o *Options) {
		path = strings.TrimSpace(path)
		if path != "" {
			o.FilePath = path
		}
	}
}

// WithMaxSize sets the soft size bound, in bytes, that triggers automatic
// compaction. A value of zero is accepted and disables automatic compaction
// (spec §4.5 "Automatic compaction").
func WithMaxSize(size uint64) OptionFunc {
	return func(o *Options) {
		o.MaxSize = size
	}
}
