// Package wire provides low-level little-endian encoding primitives shared
// by the BCS and Bincode codecs.
package wire

import (
	"encoding/binary"
	"math"
)

// AppendFixed16 appends a 16-bit value in little-endian format.
func AppendFixed16(buf []byte, v uint16) []byte {
	return append(buf, byte(v), byte(v>>8))
}

// AppendFixed32 appends a 32-bit value in little-endian format.
func AppendFixed32(buf []byte, v uint32) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
	)
}

// AppendFixed64 appends a 64-bit value in little-endian format.
func AppendFixed64(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}

// AppendFixed128 appends a 128-bit value (lo, hi) in little-endian format.
func AppendFixed128(buf []byte, lo, hi uint64) []byte {
	buf = AppendFixed64(buf, lo)
	return AppendFixed64(buf, hi)
}

// DecodeFixed16 decodes a little-endian 16-bit value.
func DecodeFixed16(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(data), nil
}

// DecodeFixed32 decodes a little-endian 32-bit value.
func DecodeFixed32(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(data), nil
}

// DecodeFixed64 decodes a little-endian 64-bit value.
func DecodeFixed64(data []byte) (uint64, error) {
	if len(data) < 8 {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint64(data), nil
}

// DecodeFixed128 decodes a little-endian 128-bit value as (lo, hi).
func DecodeFixed128(data []byte) (lo, hi uint64, err error) {
	if len(data) < 16 {
		return 0, 0, ErrTruncated
	}
	lo = binary.LittleEndian.Uint64(data[0:8])
	hi = binary.LittleEndian.Uint64(data[8:16])
	return lo, hi, nil
}

// PutFixed32 writes a 32-bit value to buf in little-endian format.
// The buffer must have at least 4 bytes available.
func PutFixed32(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}

// PutFixed64 writes a 64-bit value to buf in little-endian format.
// The buffer must have at least 8 bytes available.
func PutFixed64(buf []byte, v uint64) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	buf[4] = byte(v >> 32)
	buf[5] = byte(v >> 40)
	buf[6] = byte(v >> 48)
	buf[7] = byte(v >> 56)
}

// Floats are encoded as raw IEEE-754 little-endian bits, with no
// canonicalization: NaN payloads and the sign of zero are preserved
// exactly as the host platform represents them.

// AppendFloat32 appends the raw IEEE-754 little-endian bits of v.
func AppendFloat32(buf []byte, v float32) []byte {
	return AppendFixed32(buf, math.Float32bits(v))
}

// DecodeFloat32 decodes a float32 from its raw IEEE-754 little-endian bits.
func DecodeFloat32(data []byte) (float32, error) {
	bits, err := DecodeFixed32(data)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// AppendFloat64 appends the raw IEEE-754 little-endian bits of v.
func AppendFloat64(buf []byte, v float64) []byte {
	return AppendFixed64(buf, math.Float64bits(v))
}

// DecodeFloat64 decodes a float64 from its raw IEEE-754 little-endian bits.
func DecodeFloat64(data []byte) (float64, error) {
	bits, err := DecodeFixed64(data)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// Size constants for fixed-width primitives.
const (
	Fixed16Size  = 2
	Fixed32Size  = 4
	Fixed64Size  = 8
	Fixed128Size = 16
)
