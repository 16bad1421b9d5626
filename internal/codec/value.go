// Package codec implements the two pure, stateless encodings the on-disk log
// format is built from: a single-window LZ77-style value compressor, and the
// record framing that wraps a key/value pair into a checksummed byte
// sequence (spec §4.1, §4.2). Neither half touches a file; both are exercised
// by internal/engine and internal/compaction, which encode frames for the log
// and decode the frames they read back from it.
package codec

import (
	"encoding/binary"

	kverrors "github.com/moanapiquet/kvdb/pkg/errors"
)

const (
	tagLiteral byte = 0x00
	tagBackref byte = 0x01

	maxWindow = 4095 // largest representable back-reference distance
	maxRun    = 255  // largest representable literal or back-reference length
)

// EncodeValue compresses input with a single-window LZ77-style scheme
// (spec §4.1). It is a pure function: encoding never fails and the empty
// input encodes to the empty output.
func EncodeValue(input []byte) []byte {
	if len(input) == 0 {
		return []byte{}
	}

	out := make([]byte, 0, len(input))
	var literals []byte

	flushLiterals := func() {
		if len(literals) == 0 {
			return
		}
		out = append(out, tagLiteral, byte(len(literals)))
		out = append(out, literals...)
		literals = literals[:0]
	}

	for i := 0; i < len(input); {
		dist, length := findLongestMatch(input, i)
		if length >= 3 {
			flushLiterals()
			out = append(out, tagBackref)
			out = binary.BigEndian.AppendUint16(out, uint16(dist))
			out = append(out, byte(length))
			i += length
			continue
		}

		literals = append(literals, input[i])
		if len(literals) == maxRun {
			flushLiterals()
		}
		i++
	}

	flushLiterals()
	return out
}

// DecodeValue reverses EncodeValue, returning InvalidFormat for any
// structurally malformed input (spec §4.1 "Decoder errors").
func DecodeValue(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return []byte{}, nil
	}

	out := make([]byte, 0, len(input))
	i := 0
	for i < len(input) {
		tag := input[i]
		i++

		switch tag {
		case tagLiteral:
			if i >= len(input) {
				return nil, kverrors.NewInvalidFormatError(nil, "truncated literal header")
			}
			length := int(input[i])
			i++
			if length == 0 {
				return nil, kverrors.NewInvalidFormatError(nil, "literal length is zero")
			}
			if i+length > len(input) {
				return nil, kverrors.NewInvalidFormatError(nil, "truncated literal payload")
			}
			out = append(out, input[i:i+length]...)
			i += length

		case tagBackref:
			if i+3 > len(input) {
				return nil, kverrors.NewInvalidFormatError(nil, "truncated back-reference header")
			}
			dist := int(binary.BigEndian.Uint16(input[i : i+2]))
			length := int(input[i+2])
			i += 3
			if dist == 0 {
				return nil, kverrors.NewInvalidFormatError(nil, "back-reference distance is zero")
			}
			if length == 0 {
				return nil, kverrors.NewInvalidFormatError(nil, "back-reference length is zero")
			}
			if dist > len(out) {
				return nil, kverrors.NewInvalidFormatError(nil, "back-reference distance exceeds decoded length")
			}
			// Overlap-copy semantics: length may exceed dist, so copy byte by
			// byte from the growing output rather than slicing a fixed window
			// (spec §9 "Overlap-copy in the value codec").
			start := len(out) - dist
			for k := 0; k < length; k++ {
				out = append(out, out[start+k])
			}

		default:
			return nil, kverrors.NewInvalidFormatError(nil, "unknown chunk tag")
		}
	}

	return out, nil
}

// findLongestMatch searches the previous window (up to maxWindow bytes) for
// the longest prefix-match of up to maxRun bytes starting at pos. Ties are
// broken toward the smallest distance (spec §4.1 "Encoder policy").
func findLongestMatch(input []byte, pos int) (dist int, length int) {
	start := pos - maxWindow
	if start < 0 {
		start = 0
	}

	for j := start; j < pos; j++ {
		l := 0
		for l < maxRun && pos+l < len(input) && input[j+l] == input[pos+l] {
			l++
		}
		// >= (not >): j increases toward pos as the loop advances, so
		// distance strictly decreases. Keeping ties means the final pick for
		// any given length is the nearest match (spec §4.1 "nearest-first").
		if l >= length {
			length = l
			dist = pos - j
			if length == maxRun {
				break
			}
		}
	}

	return dist, length
}
