// Package engine provides the core database engine implementation: the
// coordinator that sits on top of the codec, log iterator, index, storage,
// and compaction packages and exposes the operations a caller actually
// invokes — open, get, set, delete, compact, and log iteration (spec §4.5).
//
// The engine owns the three-lock concurrency model described in spec §5:
// an access gate (readers-writer lock over the engine as a whole), the
// storage package's own file mutex guarding the append handle, and the
// index package's own readers-writer lock. Writes and compaction acquire the
// access gate first and the other two locks underneath it; Get looks its key
// up in the index before it takes the read side of the gate.
package engine

import (
	"bytes"
	stdErrors "errors"
	"sync"
	"sync/atomic"

	"github.com/moanapiquet/kvdb/internal/codec"
	"github.com/moanapiquet/kvdb/internal/compaction"
	"github.com/moanapiquet/kvdb/internal/index"
	"github.com/moanapiquet/kvdb/internal/logiter"
	"github.com/moanapiquet/kvdb/internal/storage"
	"github.com/moanapiquet/kvdb/pkg/errors"
	"github.com/moanapiquet/kvdb/pkg/options"
	"go.uber.org/zap"
)

// ErrEngineClosed is returned when attempting to perform operations on a closed engine.
var ErrEngineClosed = stdErrors.New("operation failed: cannot access closed engine")

// Engine coordinates the subsystems that together implement the store: the
// in-memory Index, the on-disk Storage, and the Compaction rewrite. The zero
// value is not usable; construct with New.
type Engine struct {
	options *options.Options
	log     *zap.SugaredLogger

	closed atomic.Bool
	gate   sync.RWMutex // access gate (spec §5)

	index   *index.Index
	storage *storage.Storage
}

// Config holds all the parameters needed to initialize a new Engine instance.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}

// New opens (creating if necessary) the log file and rebuilds the index by
// replaying it to completion (spec §4.5 "Opening"). It fails with
// CorruptedData if any record in the log has a bad checksum.
func New(config *Config) (*Engine, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "engine configuration is required",
		).WithField("config").WithRule("required")
	}

	idx, err := index.New(&index.Config{Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	store, err := storage.New(&storage.Config{Options: config.Options, Logger: config.Logger})
	if err != nil {
		return nil, err
	}

	if err := recoverIndex(store, idx, config.Logger); err != nil {
		_ = store.Close()
		return nil, err
	}

	return &Engine{options: config.Options, log: config.Logger, index: idx, storage: store}, nil
}

// recoverIndex replays the log from the start, inserting each record's
// (offset, size) under its key and overwriting any prior entry — last write
// wins (spec invariant I2). A record with a failed checksum aborts recovery
// with CorruptedData; the store refuses to open over a corrupted log.
func recoverIndex(store *storage.Storage, idx *index.Index, log *zap.SugaredLogger) error {
	it, err := logiter.Open(store.Path())
	if err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open log file for recovery").
			WithPath(store.Path())
	}
	defer it.Close()

	var count int
	for {
		rec, err := it.Next()
		if err != nil {
			return err
		}
		if rec == nil {
			break
		}
		if !rec.ChecksumOK {
			return errors.NewCorruptedDataError(nil)
		}
		idx.Put(rec.Key, index.Entry{Offset: rec.Offset, Size: rec.Size})
		count++
	}

	log.Infow("recovered index from log", "recordsReplayed", count, "liveKeys", idx.Len())
	return nil
}

// Get returns the current value for key, or (nil, false) if it is absent.
func (e *Engine) Get(key []byte) ([]byte, bool, error) {
	if e.closed.Load() {
		return nil, false, ErrEngineClosed
	}

	entry, ok := e.index.Get(key)
	if !ok {
		return nil, false, nil
	}

	e.gate.RLock()
	defer e.gate.RUnlock()

	frame, err := e.storage.ReadAt(entry.Offset, entry.Size)
	if err != nil {
		return nil, false, err
	}

	decoded, err := codec.Decode(frame)
	if err != nil {
		return nil, false, err
	}

	// The index may be stale relative to an in-flight compaction that
	// relocated this key's frame; a key mismatch means "treat as absent,
	// caller may retry" rather than a hard error (spec §4.5 "get").
	if !bytes.Equal(decoded.Key, key) {
		return nil, false, nil
	}
	if decoded.Kind == codec.KindTombstone {
		return nil, false, nil
	}
	return decoded.Value, true, nil
}

// Set writes a new Data record for key, then runs automatic compaction if
// configured (spec §4.5 "set").
func (e *Engine) Set(key, value []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := e.appendAndIndex(codec.Record{Kind: codec.KindData, Key: key, Value: value}); err != nil {
		return err
	}
	return e.maybeCompact()
}

// Delete appends a Tombstone record for key — the index is updated to point
// at the tombstone, not removed, so a subsequent get observes absence via
// the frame's kind byte rather than a missing index entry (spec §4.5
// "delete").
func (e *Engine) Delete(key []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if err := e.appendAndIndex(codec.Record{Kind: codec.KindTombstone, Key: key}); err != nil {
		return err
	}
	return e.maybeCompact()
}

// appendAndIndex serializes rec, appends it under the write side of the
// access gate, and updates the index to point at the freshly written frame
// (spec §5 "Writers acquire the access gate (write), then the file mutex
// ... then update the index under its own write guard").
func (e *Engine) appendAndIndex(rec codec.Record) error {
	frame := rec.Encode()

	e.gate.Lock()
	defer e.gate.Unlock()

	offset, err := e.storage.Append(frame)
	if err != nil {
		return err
	}

	e.index.Put(rec.Key, index.Entry{Offset: offset, Size: uint32(len(frame))})
	return nil
}

// maybeCompact runs compaction passes while the log is at or over the
// configured maximum size, stopping early if a pass fails to shrink the log
// (spec §4.5 "Automatic compaction").
func (e *Engine) maybeCompact() error {
	if e.options.MaxSize == 0 {
		return nil
	}

	for {
		size, err := e.storage.Size()
		if err != nil {
			return err
		}
		if uint64(size) < e.options.MaxSize {
			return nil
		}

		before := size
		if err := e.Compact(); err != nil {
			return err
		}
		after, err := e.storage.Size()
		if err != nil {
			return err
		}
		if after >= before {
			return nil
		}
	}
}

// Compact rewrites the log to its minimal equivalent, keeping only the
// last-write-wins Data record per live key (spec §4.6).
func (e *Engine) Compact() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}

	e.gate.Lock()
	defer e.gate.Unlock()

	snap := e.index.Snapshot()
	result, err := compaction.Run(e.storage, snap, e.log)
	if err != nil {
		return err
	}

	e.index.Replace(result.Entries)
	return nil
}

// LogIter returns a fresh iterator over the current log file (spec §4.5
// "log_iter").
func (e *Engine) LogIter() (*logiter.Iterator, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	e.gate.RLock()
	defer e.gate.RUnlock()

	return logiter.Open(e.storage.Path())
}

// Close gracefully shuts down the engine and releases its resources.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return ErrEngineClosed
	}

	if err := e.index.Close(); err != nil {
		e.log.Warnw("index close reported an error", "error", err)
	}
	return e.storage.Close()
}
