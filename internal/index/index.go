// Package index provides the in-memory hash table implementation for the
// key/value store. This package embodies the core Bitcask architectural
// principle: keep every key in memory with minimal metadata while the actual
// values live on disk.
//
// The index enables O(1) key lookups through an in-memory hash table while
// keeping per-entry overhead to a single offset and size (spec §4.4).
package index

import (
	stdErrors "errors"
	"sort"

	kverrors "github.com/moanapiquet/kvdb/pkg/errors"
)

var (
	ErrIndexClosed = stdErrors.New("operation failed: cannot access closed index")
)

// New creates an Index ready for concurrent use.
func New(config *Config) (*Index, error) {
	if config == nil || config.Logger == nil {
		return nil, kverrors.NewValidationError(
			nil, kverrors.ErrorCodeInvalidInput, "index configuration is required",
		).WithField("config").WithRule("required")
	}

	return &Index{
		log:     config.Logger,
		entries: make(map[string]Entry, 1024),
	}, nil
}

// Get returns the entry for key, if one is live in the index.
func (idx *Index) Get(key []byte) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[string(key)]
	return e, ok
}

// Put records (or overwrites) the entry for key. Because every write path —
// live sets, deletes, and index recovery — calls Put in increasing-offset
// order, last-write-wins (spec invariant I2) falls out of plain map
// assignment with no extra bookkeeping.
func (idx *Index) Put(key []byte, entry Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[string(key)] = entry
}

// KeyEntry pairs a key with its index entry, used by Snapshot.
type KeyEntry struct {
	Key   []byte
	Entry Entry
}

// Snapshot returns every (key, entry) pair in the index, including keys whose
// entry points at a tombstone, ordered by ascending
// offset — the order compaction reads the old log in for sequential
// locality (spec §4.6 step 2).
func (idx *Index) Snapshot() []KeyEntry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]KeyEntry, 0, len(idx.entries))
	for k, e := range idx.entries {
		out = append(out, KeyEntry{Key: []byte(k), Entry: e})
	}
	sortByOffset(out)
	return out
}

// Replace atomically swaps the entire entry set, used after compaction
// rebuilds the index from scratch (spec §4.6 step 8).
func (idx *Index) Replace(entries map[string]Entry) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = entries
}

// Len reports the number of live keys, mainly useful for logging.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Close releases the index. Subsequent calls fail with ErrIndexClosed.
func (idx *Index) Close() error {
	if !idx.closed.CompareAndSwap(false, true) {
		return ErrIndexClosed
	}

	idx.log.Infow("closing index")

	idx.mu.Lock()
	defer idx.mu.Unlock()

	clear(idx.entries)
	idx.entries = nil

	idx.log.Infow("index closed")
	return nil
}

func sortByOffset(entries []KeyEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Entry.Offset < entries[j].Entry.Offset
	})
}
