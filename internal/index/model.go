package index

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Entry is the absolute minimum metadata required to locate and retrieve a
// record from the log: the byte offset where its frame begins, and the
// frame's total size (spec §3 "IndexEntry"). Every read dereferences one of
// these, so the struct stays two machine words wide.
type Entry struct {
	Offset int64
	Size   uint32
}

// Index is the in-memory hash table mapping keys to their log locations
// (spec §4.4). Keys are unique; the most recent write for a key always wins,
// whether that write was a rebuild during recovery (offset order, §4.5) or a
// live set/delete (program order, enforced by the engine's access gate).
//
// No ordered iteration over keys is promised or needed — range scans are a
// non-goal (spec §9 "Index as mapping, not ordered structure").
type Index struct {
	log     *zap.SugaredLogger
	entries map[string]Entry
	mu      sync.RWMutex
	closed  atomic.Bool
}

// Config supplies the dependencies an Index needs to operate.
type Config struct {
	Logger *zap.SugaredLogger
}
