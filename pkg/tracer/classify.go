package tracer

import "reflect"

// shapeKind is the Go-level classification of a struct type's container
// shape. Go has no syntax for tuple structs or newtypes distinct from an
// ordinary named-field struct, so the mapping is a deliberate convention,
// recorded here rather than left implicit:
//
//   - zero fields                          -> UnitStruct
//   - TupleContainer/TupleVariant marker    -> TupleStruct / VariantTuple
//   - exactly one field, no marker          -> NewTypeStruct / VariantNewType
//   - two or more fields, no marker         -> Struct / VariantStruct
//
// This mirrors how the rest of the Go ecosystem distinguishes "positional"
// from "named" encodings only through an opt-in marker interface (the same
// shape as golang-protobuf's isXxx_Yyy oneof markers, and the interface
// auto-detection pkg/extract's collector does statically via go/types).
type shapeKind int

const (
	shapeUnit shapeKind = iota
	shapeNewType
	shapeTuple
	shapeStruct
)

var (
	tupleContainerType = reflect.TypeOf((*TupleContainer)(nil)).Elem()
	tupleVariantType   = reflect.TypeOf((*TupleVariant)(nil)).Elem()
)

func classifyContainer(t reflect.Type) shapeKind {
	if implementsEither(t, tupleContainerType) {
		return shapeTuple
	}
	return classifyByArity(t)
}

func classifyVariant(t reflect.Type) shapeKind {
	if implementsEither(t, tupleVariantType) {
		return shapeTuple
	}
	return classifyByArity(t)
}

func classifyByArity(t reflect.Type) shapeKind {
	switch t.NumField() {
	case 0:
		return shapeUnit
	case 1:
		return shapeNewType
	default:
		return shapeStruct
	}
}

// implementsEither checks both T and *T against iface, since Go methods
// are commonly defined on pointer receivers.
func implementsEither(t reflect.Type, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return reflect.PointerTo(t).Implements(iface)
}
