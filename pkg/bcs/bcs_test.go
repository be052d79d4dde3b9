package bcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/witness/pkg/format"
)

// Test is a struct exercising a seq field alongside a fixed-size array:
// Test{a: [4,6], b: (3,5)}.
type Test struct {
	A []uint64
	B [2]uint32
}

func testRegistry() *format.Registry {
	reg := format.NewRegistry()
	reg.Set("Test", format.Struct{Fields: []format.NamedField{
		{Name: "A", Format: format.Seq{Element: format.U64}},
		{Name: "B", Format: format.Tuple{Items: []format.Format{format.U32, format.U32}}},
	}})
	return reg
}

func TestScenario6StructByteExactEncoding(t *testing.T) {
	reg := testRegistry()
	c := New(reg, nil)

	data, err := c.Marshal(format.TypeName{Name: "Test"}, Test{A: []uint64{4, 6}, B: [2]uint32{3, 5}})
	require.NoError(t, err)

	want := []byte{
		0x02,
		0x04, 0, 0, 0, 0, 0, 0, 0,
		0x06, 0, 0, 0, 0, 0, 0, 0,
		0x03, 0, 0, 0,
		0x05, 0, 0, 0,
	}
	assert.Equal(t, want, data)

	var got Test
	n, err := c.Unmarshal(format.TypeName{Name: "Test"}, data, &got)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, Test{A: []uint64{4, 6}, B: [2]uint32{3, 5}}, got)
}

func TestUint128MaxEncodesToSixteenFFBytes(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	type wide struct{ Lo, Hi uint64 }

	data, err := c.Marshal(format.U128, wide{Lo: ^uint64(0), Hi: ^uint64(0)})
	require.NoError(t, err)
	want := make([]byte, 16)
	for i := range want {
		want[i] = 0xFF
	}
	assert.Equal(t, want, data)
}

func TestUint128OneEncoding(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	type wide struct{ Lo, Hi uint64 }

	data, err := c.Marshal(format.U128, wide{Lo: 1, Hi: 0})
	require.NoError(t, err)
	want := make([]byte, 16)
	want[0] = 1
	assert.Equal(t, want, data)
}

func TestInt128NegativeOneEncodesToSixteenFFBytes(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	type wide struct{ Lo, Hi uint64 }

	data, err := c.Marshal(format.I128, wide{Lo: ^uint64(0), Hi: ^uint64(0)})
	require.NoError(t, err)
	want := make([]byte, 16)
	for i := range want {
		want[i] = 0xFF
	}
	assert.Equal(t, want, data)
}

func TestInt128MinEncodesToFifteenZerosThenHighBit(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	type wide struct{ Lo, Hi uint64 }

	// -2^127 in two's complement: Lo = 0, Hi = 1<<63.
	data, err := c.Marshal(format.I128, wide{Lo: 0, Hi: 1 << 63})
	require.NoError(t, err)
	want := make([]byte, 16)
	want[15] = 0x80
	assert.Equal(t, want, data)
}

func TestBoolRejectsNonCanonicalByteOnDecode(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	var b bool
	_, err := c.Unmarshal(format.Bool, []byte{2}, &b)
	require.ErrorIs(t, err, ErrNonCanonicalBool)
}

func TestOptionNoneThenSome(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)

	var p *uint32
	data, err := c.Marshal(format.Option{Inner: format.U32}, p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, data)

	v := uint32(7)
	data, err = c.Marshal(format.Option{Inner: format.U32}, &v)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 7, 0, 0, 0}, data)

	var out *uint32
	_, err = c.Unmarshal(format.Option{Inner: format.U32}, data, &out)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, uint32(7), *out)
}

func TestMapCanonicalizesKeyOrderAndRejectsMisorderedKeys(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)

	m := map[uint8]uint8{3: 30, 1: 10, 2: 20}
	data, err := c.Marshal(format.Map{Key: format.U8, Value: format.U8}, m)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1, 10, 2, 20, 3, 30}, data)

	var got map[uint8]uint8
	_, err = c.Unmarshal(format.Map{Key: format.U8, Value: format.U8}, data, &got)
	require.NoError(t, err)
	assert.Equal(t, m, got)

	// A non-canonically-ordered stream must be rejected.
	bad := []byte{2, 2, 20, 1, 10}
	var got2 map[uint8]uint8
	_, err = c.Unmarshal(format.Map{Key: format.U8, Value: format.U8}, bad, &got2)
	require.ErrorIs(t, err, ErrMapKeysNotDistinct)
}

func TestCharIsNotImplemented(t *testing.T) {
	reg := format.NewRegistry()
	c := New(reg, nil)
	_, err := c.Marshal(format.Char, int32('a'))
	require.ErrorIs(t, err, ErrNotImplemented)
}

func TestMaxContainerDepthExceeded(t *testing.T) {
	e := &encoder{reg: format.NewRegistry()}
	var err error
	for i := 0; i < MaxContainerDepth+1; i++ {
		if err = e.enter("$"); err != nil {
			break
		}
	}
	require.ErrorIs(t, err, ErrMaxDepthExceeded)
}
