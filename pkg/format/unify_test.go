package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifyIdenticalPrimitives(t *testing.T) {
	got, err := Unify(U64, U64, "")
	require.NoError(t, err)
	require.Equal(t, U64, got)
}

func TestUnifyPrimitiveMismatchFails(t *testing.T) {
	_, err := Unify(U64, Str, "pos")
	require.Error(t, err)
	var ie *IncompatibilityError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "pos", ie.Path)
}

func TestUnifyTypeNameOnlyMatchesSameName(t *testing.T) {
	got, err := Unify(TypeName{Name: "Foo"}, TypeName{Name: "Foo"}, "")
	require.NoError(t, err)
	require.Equal(t, TypeName{Name: "Foo"}, got)

	_, err = Unify(TypeName{Name: "Foo"}, TypeName{Name: "Bar"}, "")
	require.Error(t, err)
}

func TestUnifyVariableResolvesToConcrete(t *testing.T) {
	v := NewVariable()
	got, err := Unify(v, U32, "")
	require.NoError(t, err)
	require.Equal(t, U32, got)

	// The cell itself is now resolved; chasing the original Variable again
	// must yield the same concrete format (idempotence of resolution).
	again, err := Unify(v, U32, "")
	require.NoError(t, err)
	require.Equal(t, U32, again)
}

func TestUnifyCommutative(t *testing.T) {
	a := Seq{Element: NewVariable()}
	b := Seq{Element: U16}
	ab, err := Unify(a, b, "")
	require.NoError(t, err)

	c := Seq{Element: NewVariable()}
	d := Seq{Element: U16}
	ba, err := Unify(d, c, "")
	require.NoError(t, err)

	require.Equal(t, ab, ba)
}

func TestUnifyIdempotent(t *testing.T) {
	a := Option{Inner: U8}
	once, err := Unify(a, a, "")
	require.NoError(t, err)
	twice, err := Unify(once, once, "")
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestUnifySeqU8ReducesToBytes(t *testing.T) {
	got, err := Unify(Seq{Element: U8}, Seq{Element: U8}, "")
	require.NoError(t, err)
	require.Equal(t, Bytes, got)
}

func TestUnifyTupleAndTupleArrayDoNotUnify(t *testing.T) {
	_, err := Unify(Tuple{Items: []Format{U8, U8}}, TupleArray{Content: U8, Size: 2}, "")
	require.Error(t, err)
}

func TestUnifyTupleArrayRequiresMatchingSize(t *testing.T) {
	_, err := Unify(TupleArray{Content: U8, Size: 2}, TupleArray{Content: U8, Size: 3}, "")
	require.Error(t, err)
}

func TestOccursCheckRejectsCycle(t *testing.T) {
	v := NewVariable()
	cyclic := Seq{Element: v}
	_, err := Unify(v, cyclic, "")
	require.Error(t, err)
}

func TestOccursCheckAllowsTypeNameBoundary(t *testing.T) {
	// A Variable resolving to a TypeName reference is fine even if that
	// name happens to equal the container currently being traced: the
	// TypeName boundary breaks the structural cycle.
	v := NewVariable()
	got, err := Unify(v, TypeName{Name: "Self"}, "")
	require.NoError(t, err)
	require.Equal(t, TypeName{Name: "Self"}, got)
}

func TestUnifyMapStructural(t *testing.T) {
	a := Map{Key: Str, Value: NewVariable()}
	b := Map{Key: Str, Value: U32}
	got, err := Unify(a, b, "")
	require.NoError(t, err)
	require.Equal(t, Map{Key: Str, Value: U32}, got)
}

func TestUnifyStructFieldsByPosition(t *testing.T) {
	a := Struct{Fields: []NamedField{{Name: "x", Format: NewVariable()}, {Name: "y", Format: U8}}}
	b := Struct{Fields: []NamedField{{Name: "x", Format: I32}, {Name: "y", Format: U8}}}
	got, err := UnifyContainer("Point", a, b)
	require.NoError(t, err)
	want := Struct{Fields: []NamedField{{Name: "x", Format: I32}, {Name: "y", Format: U8}}}
	require.Equal(t, want, got)
}

func TestUnifyEnumMergesVariantsAcrossPasses(t *testing.T) {
	first := NewEnum()
	first.Variants[0] = EnumVariant{Name: "A", Format: VariantUnit{}}

	second := NewEnum()
	second.Variants[1] = EnumVariant{Name: "B", Format: VariantUnit{}}

	merged, err := UnifyContainer("Choice", first, second)
	require.NoError(t, err)
	e := merged.(*Enum)
	require.Len(t, e.Variants, 2)
	require.Equal(t, "A", e.Variants[0].Name)
	require.Equal(t, "B", e.Variants[1].Name)
}

func TestUnifyEnumRejectsIndexNameCollision(t *testing.T) {
	first := NewEnum()
	first.Variants[0] = EnumVariant{Name: "A", Format: VariantUnit{}}
	second := NewEnum()
	second.Variants[0] = EnumVariant{Name: "NotA", Format: VariantUnit{}}

	_, err := UnifyContainer("Choice", first, second)
	require.Error(t, err)
}
