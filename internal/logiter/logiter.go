// Package logiter implements the lazy, finite, non-restartable sequence of
// parsed records the rest of the engine reads the log through (spec §4.3).
// It never skips a record silently: a well-formed tail ends the sequence
// cleanly, a torn tail ends it cleanly too (tolerating crash-truncated
// writes), and anything else — a bad tag byte, a non-EOF I/O error — is
// surfaced as a terminal error element.
package logiter

import (
	"encoding/binary"
	"io"
	"os"

	kverrors "github.com/moanapiquet/kvdb/pkg/errors"
)

const (
	headerSize    = 9
	trailerSize   = 4
	kindData      = 0
	kindTombstone = 1
)

// Record describes one parsed frame in file order, annotated with the
// location and shape information the index and compactor need (spec §4.3).
type Record struct {
	Offset     int64
	Size       uint32
	Kind       uint8
	Key        []byte
	ValueLen   uint32
	ChecksumOK bool
}

// Iterator is a one-shot cursor over a log file opened for reading.
type Iterator struct {
	file   *os.File
	offset int64
	done   bool
}

// Open starts a fresh iterator over the file at path. The caller owns the
// returned Iterator and must call Close when done (or drain it to
// completion, which closes the underlying handle automatically).
func Open(path string) (*Iterator, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Iterator{file: f}, nil
}

// Close releases the iterator's file handle. Safe to call multiple times.
func (it *Iterator) Close() error {
	if it.file == nil {
		return nil
	}
	err := it.file.Close()
	it.file = nil
	return err
}

// Next returns the next record in file order, or (nil, nil) once the
// sequence has ended cleanly (clean EOF on a record boundary, or a torn tail
// mid-record). Any other error terminates iteration and closes the file.
func (it *Iterator) Next() (*Record, error) {
	if it.done {
		return nil, nil
	}

	header := make([]byte, headerSize)
	if err := readFull(it.file, header); err != nil {
		if err == io.EOF {
			it.finish()
			return nil, nil
		}
		it.finish()
		return nil, err
	}

	kind := header[0]
	if kind != kindData && kind != kindTombstone {
		it.finish()
		return nil, kverrors.NewInvalidFormatError(nil, "unknown record kind byte")
	}

	keyLen := binary.BigEndian.Uint32(header[1:5])
	valLen := binary.BigEndian.Uint32(header[5:9])

	body := make([]byte, int(keyLen)+int(valLen)+trailerSize)
	if err := readFull(it.file, body); err != nil {
		// A torn tail (truncated mid-record) ends the sequence normally; it
		// is not reported as a record or as an error (spec §4.3 "Termination").
		if err == io.EOF {
			it.finish()
			return nil, nil
		}
		it.finish()
		return nil, err
	}

	checksumStart := int(keyLen) + int(valLen)
	storedChecksum := binary.BigEndian.Uint32(body[checksumStart : checksumStart+trailerSize])

	var sum uint32
	for _, b := range header {
		sum += uint32(b)
	}
	for _, b := range body[:checksumStart] {
		sum += uint32(b)
	}

	total := headerSize + int(keyLen) + int(valLen) + trailerSize
	rec := &Record{
		Offset:     it.offset,
		Size:       uint32(total),
		Kind:       kind,
		Key:        append([]byte(nil), body[:keyLen]...),
		ValueLen:   valLen,
		ChecksumOK: sum == storedChecksum,
	}
	it.offset += int64(total)
	return rec, nil
}

func (it *Iterator) finish() {
	it.done = true
	_ = it.Close()
}

// readFull reads exactly len(buf) bytes, treating a zero-byte read at the
// very start of buf as a clean end-of-file and any other short read as a
// torn tail, both surfaced to the caller as io.EOF.
func readFull(r io.Reader, buf []byte) error {
	n, err := io.ReadFull(r, buf)
	if err == nil {
		return nil
	}
	if err == io.ErrUnexpectedEOF || (err == io.EOF && n == 0) {
		return io.EOF
	}
	return err
}
