package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: opening, reading, writing, seeking, or syncing the
	// log file, or any file-system operation around it.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base error taxonomy to handle the
// unique failure modes of the append-only log: malformed frames, checksum
// mismatches, and the usual filesystem failure modes around the one log file
// the engine owns.
const (
	// ErrorCodeCorruptedData indicates a frame's trailing checksum does not
	// match the checksum recomputed over its bytes (spec §4.2, §4.7).
	ErrorCodeCorruptedData ErrorCode = "CORRUPTED_DATA"

	// ErrorCodeInvalidFormat indicates a frame or value-codec block is
	// structurally malformed: a short header, a bad tag byte, a zero-length
	// literal, or an out-of-range back-reference (spec §4.1, §4.2).
	ErrorCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// ErrorCodeKeyNotFound indicates a lookup found no live entry for a key.
	ErrorCodeKeyNotFound ErrorCode = "KEY_NOT_FOUND"

	// ErrorCodeLockPoisoned indicates a concurrency primitive (the access
	// gate, the log file mutex, or the index lock) could not be acquired in
	// a consistent state (spec §4.7).
	ErrorCodeLockPoisoned ErrorCode = "LOCK_POISONED"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// the log file or its directory.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of
	// space while appending, flushing, or compacting the log.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem backing the
	// log is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"

	// ErrorCodeEngineClosed indicates an operation was attempted on an
	// engine handle after Close had already run.
	ErrorCodeEngineClosed ErrorCode = "ENGINE_CLOSED"
)

// Index-specific error codes address failures in the in-memory key-to-offset
// mapping, mainly surfaced during log recovery on open.
const (
	// ErrorCodeIndexKeyNotFound mirrors ErrorCodeKeyNotFound for callers that
	// specifically want to distinguish an index miss from other lookups.
	ErrorCodeIndexKeyNotFound ErrorCode = "INDEX_KEY_NOT_FOUND"

	// ErrorCodeIndexCorrupted indicates the index could not be rebuilt
	// faithfully from the log. A checksum failure during recovery on open is
	// reported with ErrorCodeCorruptedData, not with this code.
	ErrorCodeIndexCorrupted ErrorCode = "INDEX_CORRUPTED"
)
