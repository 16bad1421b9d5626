// Package kvstore is the public entry point to the key/value store: a
// Bitcask-style append-only log with an in-memory hash index, fronted by a
// small, thread-safe handle applications construct once and share freely
// (spec §9 "Shared engine state").
package kvstore

import (
	"github.com/moanapiquet/kvdb/internal/engine"
	"github.com/moanapiquet/kvdb/internal/logiter"
	"github.com/moanapiquet/kvdb/pkg/logger"
	"github.com/moanapiquet/kvdb/pkg/options"
	"go.uber.org/zap"
)

// Store is the primary handle applications hold onto. It wraps the internal
// engine and the options it was opened with. A *Store is safe to call
// concurrently from multiple goroutines; duplicating the pointer is exactly
// the idiomatic shared-ownership primitive spec §9 asks for.
type Store struct {
	engine  *engine.Engine
	options *options.Options
}

// Open creates or opens a store for the named service, applying any
// functional options over the package defaults.
func Open(service string, opts ...options.OptionFunc) (*Store, error) {
	return OpenWithLogger(logger.New(service), opts...)
}

// OpenWithLogger is Open with caller-supplied structured logging, useful
// when the store is embedded in an application that already manages its own
// *zap.SugaredLogger lifecycle.
func OpenWithLogger(log *zap.SugaredLogger, opts ...options.OptionFunc) (*Store, error) {
	resolved := options.NewDefaultOptions()
	for _, opt := range opts {
		opt(&resolved)
	}

	eng, err := engine.New(&engine.Config{Logger: log, Options: &resolved})
	if err != nil {
		return nil, err
	}

	return &Store{engine: eng, options: &resolved}, nil
}

// Get retrieves the value stored under key. The second return value reports
// whether the key is present.
func (s *Store) Get(key string) ([]byte, bool, error) {
	return s.engine.Get([]byte(key))
}

// Set stores value under key, replacing any existing value.
func (s *Store) Set(key string, value []byte) error {
	return s.engine.Set([]byte(key), value)
}

// Delete removes key from the store. Deleting an absent key is not an
// error: it appends a tombstone recording that the key is (still) absent.
func (s *Store) Delete(key string) error {
	return s.engine.Delete([]byte(key))
}

// Compact forces an immediate compaction pass regardless of the configured
// size threshold.
func (s *Store) Compact() error {
	return s.engine.Compact()
}

// LogIter returns a fresh iterator over the store's current log file,
// useful for diagnostics and for the scenarios in spec §8 that inspect the
// log directly.
func (s *Store) LogIter() (*logiter.Iterator, error) {
	return s.engine.LogIter()
}

// Close releases the store's file handles and in-memory state. The store
// must not be used afterward.
func (s *Store) Close() error {
	return s.engine.Close()
}
