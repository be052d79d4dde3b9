package tracer

import "reflect"

// Uint128 and Int128 stand in for Go's missing 128-bit integer types.
// A value of one of these types is traced as format.U128 / format.I128
// directly; every other primitive has a native Go Kind to dispatch on, but
// 128-bit integers do not, so the tracer special-cases these two struct
// shapes instead of asking callers to implement Marshaler for something
// this common.
type Uint128 struct{ Lo, Hi uint64 }

// Int128 stores a two's-complement 128-bit signed integer as (Lo, Hi),
// the same split Uint128 uses; Hi's sign bit carries the value's sign.
type Int128 struct{ Lo, Hi uint64 }

var (
	uint128Type = reflect.TypeOf(Uint128{})
	int128Type  = reflect.TypeOf(Int128{})
)
