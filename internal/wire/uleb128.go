package wire

// ULEB128 (unsigned little-endian base-128) is the variable-length integer
// encoding BCS uses for sequence/map/string/bytes length prefixes and for
// enum variant indices. Both are defined over a 32-bit value space, so the
// canonical encoding never exceeds 5 bytes (ceil(32/7) = 5).

// MaxUleb128Len32 is the maximum number of bytes a 32-bit ULEB128 value
// can occupy.
const MaxUleb128Len32 = 5

// AppendUleb128 appends the ULEB128 encoding of a 32-bit value to buf.
//
// The encoding emits 7 bits per byte, least significant group first,
// setting the high bit of every non-final byte:
//
//	0   -> [0x00]
//	1   -> [0x01]
//	127 -> [0x7f]
//	128 -> [0x80, 0x01]
func AppendUleb128(buf []byte, v uint32) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// Uleb128Size returns the number of bytes the ULEB128 encoding of v occupies.
func Uleb128Size(v uint32) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// DecodeUleb128 decodes a ULEB128-encoded 32-bit value from data, returning
// the value and the number of bytes consumed.
//
// Decoding rejects:
//   - a terminating byte equal to zero when it is not the first byte (a
//     redundant, non-canonical encoding, e.g. 128 spelled [0x80, 0x00]
//     instead of the canonical [0x80, 0x01]);
//   - any encoding whose accumulated value exceeds 2^32 - 1, including
//     encodings that never terminate within MaxUleb128Len32 bytes.
func DecodeUleb128(data []byte) (uint32, int, error) {
	var result uint64

	for i := 0; i < len(data); i++ {
		if i >= MaxUleb128Len32 {
			return 0, 0, ErrOverflow
		}

		b := data[i]
		if b&0x80 == 0 {
			if b == 0 && i > 0 {
				return 0, 0, ErrRedundant
			}
			result |= uint64(b) << (7 * i)
			if result > 0xFFFFFFFF {
				return 0, 0, ErrOverflow
			}
			return uint32(result), i + 1, nil
		}

		result |= uint64(b&0x7f) << (7 * i)
	}

	return 0, 0, ErrTruncated
}
