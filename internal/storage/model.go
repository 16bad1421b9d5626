package storage

import (
	"os"
	"sync"

	"github.com/moanapiquet/kvdb/pkg/options"
	"go.uber.org/zap"
)

// Storage owns the single append-only log file the engine writes through.
// It holds one shared handle for appends, guarded by fileMu so that
// seek-to-end + write + flush behaves as one atomic step from the caller's
// point of view (spec §5 "Log file handle"). Readers never touch this
// handle — they open their own, independent read-only handle on the same
// path (spec §9 "Readers open their own file handle").
type Storage struct {
	path    string
	file    *os.File
	fileMu  sync.Mutex
	options *options.Options
	log     *zap.SugaredLogger
}

// Config supplies the dependencies a Storage needs to operate.
type Config struct {
	Options *options.Options
	Logger  *zap.SugaredLogger
}
