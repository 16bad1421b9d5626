// Package storage owns the single append-only log file a store instance
// writes through: opening it (create-if-missing, read-and-append), appending
// frames under its own mutex, handing out independent read-only handles for
// concurrent reads, and swapping in a freshly compacted file in its place.
//
// Unlike a segmented log, there is exactly one file here at any time — the
// spec's non-goals explicitly exclude multi-file segmentation. Rotation,
// segment discovery, and segment-id bookkeeping have no place in this
// package; what the teacher's storage layer spent on segment rotation this
// one spends on the durability and atomic-swap requirements around a single
// growing file (spec §4.5, §4.6).
package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/moanapiquet/kvdb/pkg/errors"
	"github.com/moanapiquet/kvdb/pkg/filesys"
)

// New opens (creating if necessary) the log file at config.Options.FilePath
// in read-and-append mode (spec §4.5 "Opening").
func New(config *Config) (*Storage, error) {
	if config == nil || config.Options == nil || config.Logger == nil {
		return nil, errors.NewValidationError(
			nil, errors.ErrorCodeInvalidInput, "storage configuration is required",
		).WithField("config").WithRule("required")
	}

	path := config.Options.FilePath
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := filesys.CreateDir(dir, 0755, true); err != nil {
			return nil, errors.ClassifyDirectoryCreationError(err, dir)
		}
	}

	config.Logger.Infow("opening log file", "path", path)

	file, err := openForAppend(path)
	if err != nil {
		return nil, errors.ClassifyFileOpenError(err, path, filepath.Base(path))
	}

	return &Storage{path: path, file: file, options: config.Options, log: config.Logger}, nil
}

// openForAppend opens path for reading and appending, creating it if it
// doesn't exist yet.
func openForAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
}

// Path returns the current log file path.
func (s *Storage) Path() string {
	return s.path
}

// Append writes frame to the end of the log and flushes it to disk,
// returning the byte offset frame was written at (spec §4.5 "set"/"delete":
// "seek-to-end + write + flush").
func (s *Storage) Append(frame []byte) (int64, error) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	offset, err := s.file.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to seek to end of log file").
			WithPath(s.path)
	}

	if _, err := s.file.Write(frame); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to append record to log file").
			WithPath(s.path).
			WithOffset(int(offset))
	}

	if err := s.file.Sync(); err != nil {
		return 0, errors.ClassifySyncError(err, filepath.Base(s.path), s.path, int(offset))
	}

	return offset, nil
}

// Size returns the current length of the log file in bytes.
func (s *Storage) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to stat log file").WithPath(s.path)
	}
	return info.Size(), nil
}

// OpenReader opens a fresh, independent read-only handle on the log file.
// Readers use their own handle rather than the shared append handle so that
// concurrent reads never contend with a writer's seek-to-end cursor
// (spec §5, §9 "Readers open their own file handle").
func (s *Storage) OpenReader() (*os.File, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to open log file for reading").
			WithPath(s.path)
	}
	return f, nil
}

// ReadAt reads exactly size bytes starting at offset from a fresh read-only
// handle, closing it before returning.
func (s *Storage) ReadAt(offset int64, size uint32) ([]byte, error) {
	f, err := s.OpenReader()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read record from log file").
			WithPath(s.path).
			WithOffset(int(offset))
	}
	return buf, nil
}

// ReplaceWith releases the active append handle, atomically swaps tempPath
// in for the live log, and reopens the (now-replaced) path for read-and-
// append use. It is the sole place compaction's file-level swap happens
// (spec §4.6 steps 5-7).
func (s *Storage) ReplaceWith(tempPath string) error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()

	if err := s.file.Close(); err != nil {
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to release active log handle before compaction swap").
			WithPath(s.path)
	}

	if err := replaceAtomic(tempPath, s.path); err != nil {
		// The live log is gone at this point only if replaceAtomic itself
		// failed after removing the destination; reopen whatever is left so
		// the engine stays usable (spec §4.6 "Guarantees").
		reopened, reopenErr := openForAppend(s.path)
		if reopenErr == nil {
			s.file = reopened
		}
		return errors.NewStorageError(err, errors.ErrorCodeIO, "failed to swap compacted log into place").
			WithPath(s.path)
	}

	newFile, err := openForAppend(s.path)
	if err != nil {
		return errors.ClassifyFileOpenError(err, s.path, filepath.Base(s.path))
	}
	s.file = newFile
	return nil
}

// Close releases the active log handle.
func (s *Storage) Close() error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	return s.file.Close()
}
