// Package compaction implements the log rewrite that reclaims space spent on
// overwritten and deleted keys: read the live entries off the old log in
// offset order, write a fresh Data-only log containing just those entries,
// and swap it in for the original (spec §4.6).
//
// Nothing here takes the access gate itself — the engine holds the write
// lock for the whole pass (spec §4.6 step 1) and calls Run once it does.
package compaction

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/moanapiquet/kvdb/internal/codec"
	"github.com/moanapiquet/kvdb/internal/index"
	"github.com/moanapiquet/kvdb/internal/storage"
	"github.com/moanapiquet/kvdb/pkg/errors"
	"github.com/moanapiquet/kvdb/pkg/filesys"
	"go.uber.org/zap"
)

const tempSuffix = ".db.compacted"

// Result reports what a compaction pass produced: the rebuilt index, ready
// to install in place of the stale one, and the log length before and after
// so the caller's size-triggered loop (spec §4.5 "Automatic compaction") can
// decide whether to run again.
type Result struct {
	Entries    map[string]index.Entry
	SizeBefore int64
	SizeAfter  int64
}

// Run performs one full compaction pass against store, reading the live set
// out of snap (an offset-ordered snapshot taken by the caller while holding
// the index lock) and returns the rebuilt entry map once the swap has
// completed (spec §4.6 steps 2-8). On any error before the rename, the live
// log is left untouched.
func Run(store *storage.Storage, snap []index.KeyEntry, log *zap.SugaredLogger) (*Result, error) {
	sizeBefore, err := store.Size()
	if err != nil {
		return nil, err
	}

	tempPath := tempFilePath(store.Path())
	if err := filesys.DeleteFile(tempPath); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to remove stale compaction temp file").
			WithPath(tempPath)
	}

	temp, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, tempPath, filepath.Base(tempPath))
	}
	defer temp.Close()

	newEntries := make(map[string]index.Entry, len(snap))
	var offset int64

	for _, ke := range snap {
		value, ok, err := readLiveValue(store, ke.Entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			// A tombstone in the snapshot: the key was already absent by the
			// time compaction ran, or the snapshot raced a concurrent delete
			// under the same write lock. Either way it is dropped, not
			// rewritten (spec §4.6 step 3 "tombstones yield absent").
			continue
		}

		frame := codec.Record{Kind: codec.KindData, Key: ke.Key, Value: value}.Encode()
		if _, err := temp.Write(frame); err != nil {
			return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to write record to compaction temp file").
				WithPath(tempPath).
				WithOffset(int(offset))
		}

		newEntries[string(ke.Key)] = index.Entry{Offset: offset, Size: uint32(len(frame))}
		offset += int64(len(frame))
	}

	if err := temp.Sync(); err != nil {
		return nil, errors.ClassifySyncError(err, filepath.Base(tempPath), tempPath, int(offset))
	}
	if err := temp.Close(); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to close compaction temp file").
			WithPath(tempPath)
	}

	if err := store.ReplaceWith(tempPath); err != nil {
		return nil, err
	}

	sizeAfter, err := store.Size()
	if err != nil {
		return nil, err
	}

	log.Infow("compaction finished",
		"liveKeys", len(newEntries), "sizeBefore", sizeBefore, "sizeAfter", sizeAfter)

	return &Result{Entries: newEntries, SizeBefore: sizeBefore, SizeAfter: sizeAfter}, nil
}

// readLiveValue reads and decodes the frame at entry's location, returning
// (nil, false, nil) for a tombstone and (value, true, nil) for a live
// Data record.
func readLiveValue(store *storage.Storage, entry index.Entry) ([]byte, bool, error) {
	frame, err := store.ReadAt(entry.Offset, entry.Size)
	if err != nil {
		return nil, false, err
	}

	decoded, err := codec.Decode(frame)
	if err != nil {
		return nil, false, err
	}
	if decoded.Kind == codec.KindTombstone {
		return nil, false, nil
	}
	return decoded.Value, true, nil
}

// tempFilePath derives the compaction scratch file's path from the live log
// path: same directory, same base name, tempSuffix extension (spec §4.6
// step 4).
func tempFilePath(logPath string) string {
	dir := filepath.Dir(logPath)
	base := strings.TrimSuffix(filepath.Base(logPath), filepath.Ext(logPath))
	return filepath.Join(dir, base+tempSuffix)
}
