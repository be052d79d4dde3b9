package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixed32RoundTrip(t *testing.T) {
	buf := AppendFixed32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	v, err := DecodeFixed32(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0x01020304), v)
}

func TestFixed64RoundTrip(t *testing.T) {
	buf := AppendFixed64(nil, 0x0102030405060708)
	require.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, buf)
	v, err := DecodeFixed64(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), v)
}

func TestFixed128RoundTrip(t *testing.T) {
	buf := AppendFixed128(nil, 1, 0)
	require.Equal(t, 16, len(buf))
	require.Equal(t, byte(1), buf[0])
	for _, b := range buf[1:] {
		require.Equal(t, byte(0), b)
	}
	lo, hi, err := DecodeFixed128(buf)
	require.NoError(t, err)
	require.Equal(t, uint64(1), lo)
	require.Equal(t, uint64(0), hi)
}

func TestFloat32PreservesNaNPayloadAndSignedZero(t *testing.T) {
	// No float canonicalization beyond raw IEEE-754 bits: a non-canonical
	// NaN payload and -0.0 must round-trip bit-for-bit.
	weirdNaN := math.Float32frombits(0x7F812345)
	buf := AppendFloat32(nil, weirdNaN)
	got, err := DecodeFloat32(buf)
	require.NoError(t, err)
	require.Equal(t, math.Float32bits(weirdNaN), math.Float32bits(got))

	negZero := math.Float32frombits(0x80000000)
	buf = AppendFloat32(nil, negZero)
	got, err = DecodeFloat32(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(0x80000000), math.Float32bits(got))
}

func TestFloat64PreservesNaNPayloadAndSignedZero(t *testing.T) {
	weirdNaN := math.Float64frombits(0x7FF0000000012345)
	buf := AppendFloat64(nil, weirdNaN)
	got, err := DecodeFloat64(buf)
	require.NoError(t, err)
	require.Equal(t, math.Float64bits(weirdNaN), math.Float64bits(got))
}

func TestDecodeFixedTruncated(t *testing.T) {
	_, err := DecodeFixed32([]byte{1, 2})
	require.ErrorIs(t, err, ErrTruncated)
	_, err = DecodeFixed64([]byte{1, 2})
	require.ErrorIs(t, err, ErrTruncated)
	_, _, err = DecodeFixed128(make([]byte, 10))
	require.ErrorIs(t, err, ErrTruncated)
}
