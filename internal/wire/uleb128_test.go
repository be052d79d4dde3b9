package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendUleb128Boundaries(t *testing.T) {
	cases := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0}},
		{1, []byte{1}},
		{127, []byte{127}},
		{128, []byte{128, 1}},
		{3000, []byte{184, 23}},
	}
	for _, c := range cases {
		got := AppendUleb128(nil, c.v)
		require.Equal(t, c.want, got, "v=%d", c.v)
		require.Equal(t, len(c.want), Uleb128Size(c.v))
	}
}

func TestDecodeUleb128Boundaries(t *testing.T) {
	cases := []struct {
		data []byte
		v    uint32
		n    int
	}{
		{[]byte{0}, 0, 1},
		{[]byte{1}, 1, 1},
		{[]byte{127}, 127, 1},
		{[]byte{128, 1}, 128, 2},
		{[]byte{184, 23}, 3000, 2},
	}
	for _, c := range cases {
		v, n, err := DecodeUleb128(c.data)
		require.NoError(t, err)
		require.Equal(t, c.v, v)
		require.Equal(t, c.n, n)
	}
}

func TestDecodeUleb128RejectsOverflow(t *testing.T) {
	_, _, err := DecodeUleb128([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDecodeUleb128RejectsRedundantEncoding(t *testing.T) {
	// 128 canonically encodes to [0x80, 0x01]; [0x80, 0x00] is a redundant
	// non-canonical spelling of the same value and must be rejected.
	_, _, err := DecodeUleb128([]byte{0x80, 0x00})
	require.ErrorIs(t, err, ErrRedundant)
}

func TestDecodeUleb128RejectsValueOverUint32Max(t *testing.T) {
	// 2^32 encoded in ULEB128: low 32 bits are zero, bit 32 set.
	_, _, err := DecodeUleb128([]byte{0x80, 0x80, 0x80, 0x80, 0x10})
	require.ErrorIs(t, err, ErrOverflow)
}

func TestDecodeUleb128Truncated(t *testing.T) {
	_, _, err := DecodeUleb128([]byte{0x80})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestUleb128RoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 2, 126, 127, 128, 129, 1 << 20, 1<<31 - 1, 1 << 31, 0xFFFFFFFF} {
		buf := AppendUleb128(nil, v)
		got, n, err := DecodeUleb128(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}
