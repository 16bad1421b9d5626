package codec

import (
	"encoding/binary"

	kverrors "github.com/moanapiquet/kvdb/pkg/errors"
)

// RecordKind distinguishes a live value from a deletion marker (spec §3).
type RecordKind uint8

const (
	KindData      RecordKind = 0
	KindTombstone RecordKind = 1
)

// headerSize is the fixed prefix before the key and value blocks: kind (1) +
// key_len (4) + val_len (4).
const headerSize = 9

// trailerSize is the trailing checksum field.
const trailerSize = 4

// minFrameSize is the smallest legal frame: an empty key and an empty,
// tombstoned value.
const minFrameSize = headerSize + trailerSize

// Record is one logical put or delete, ready to be framed onto the log
// (spec §3 "Record").
type Record struct {
	Kind  RecordKind
	Key   []byte
	Value []byte // ignored (treated as empty) for KindTombstone
}

// Encode serializes r into a self-describing, checksummed frame (spec §4.2).
// Data records pass Value through the value codec before framing; tombstone
// records run the value codec over an empty slice, matching the original
// implementation's behavior of always invoking the codec.
func (r Record) Encode() []byte {
	var encodedValue []byte
	if r.Kind == KindData {
		encodedValue = EncodeValue(r.Value)
	} else {
		encodedValue = EncodeValue(nil)
	}

	total := headerSize + len(r.Key) + len(encodedValue) + trailerSize
	buf := make([]byte, 0, total)

	buf = append(buf, byte(r.Kind))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Key)))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(encodedValue)))
	buf = append(buf, r.Key...)
	buf = append(buf, encodedValue...)

	buf = binary.BigEndian.AppendUint32(buf, checksum(buf))
	return buf
}

// DecodedRecord is the result of decoding a complete frame (spec §4.2
// "Decode rules").
type DecodedRecord struct {
	Kind  RecordKind
	Key   []byte
	Value []byte // nil for KindTombstone
}

// Decode parses a complete frame previously produced by Encode, verifying its
// checksum and decoding its value block. A Tombstone frame decodes with a nil
// Value ("absent"); a Data frame's Value is the value codec's decoding of the
// stored block.
func Decode(frame []byte) (DecodedRecord, error) {
	if len(frame) < minFrameSize {
		return DecodedRecord{}, kverrors.NewInvalidFormatError(nil, "frame shorter than the minimum header+trailer size")
	}

	kindByte := frame[0]
	if kindByte != byte(KindData) && kindByte != byte(KindTombstone) {
		return DecodedRecord{}, kverrors.NewInvalidFormatError(nil, "unknown record kind byte")
	}

	keyLen := int(binary.BigEndian.Uint32(frame[1:5]))
	valLen := int(binary.BigEndian.Uint32(frame[5:9]))

	total := headerSize + keyLen + valLen + trailerSize
	if total != len(frame) {
		return DecodedRecord{}, kverrors.NewInvalidFormatError(nil, "key/value lengths disagree with frame size")
	}

	keyStart := headerSize
	keyEnd := keyStart + keyLen
	valStart := keyEnd
	valEnd := valStart + valLen
	checksumStart := valEnd

	want := binary.BigEndian.Uint32(frame[checksumStart : checksumStart+trailerSize])
	got := checksum(frame[:checksumStart])
	if got != want {
		return DecodedRecord{}, kverrors.NewCorruptedDataError(nil)
	}

	key := frame[keyStart:keyEnd]
	kind := RecordKind(kindByte)
	if kind == KindTombstone {
		return DecodedRecord{Kind: kind, Key: key}, nil
	}

	value, err := DecodeValue(frame[valStart:valEnd])
	if err != nil {
		return DecodedRecord{}, err
	}
	return DecodedRecord{Kind: kind, Key: key, Value: value}, nil
}

// checksum computes the sum-mod-2^32 of every byte in b (spec §3 invariant I4).
func checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum
}
