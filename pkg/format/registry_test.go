package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryPreservesInsertionOrderAndSortsOnDemand(t *testing.T) {
	r := NewRegistry()
	r.Set("Zebra", UnitStruct{})
	r.Set("Apple", UnitStruct{})
	require.Equal(t, []string{"Zebra", "Apple"}, r.Names())
	require.Equal(t, []string{"Apple", "Zebra"}, r.SortedNames())
}

func TestRegistryMergeUnifiesRepeatedDefinitions(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Merge("Bar", NewTypeStruct{Inner: NewVariable()}))
	require.NoError(t, r.Merge("Bar", NewTypeStruct{Inner: U64}))

	cf, ok := r.Get("Bar")
	require.True(t, ok)
	require.Equal(t, NewTypeStruct{Inner: U64}, cf)
}

func TestRegistryFinalizeRejectsUnresolvedVariable(t *testing.T) {
	r := NewRegistry()
	r.Set("Bad", NewTypeStruct{Inner: NewVariable()})
	_, err := r.Finalize()
	require.ErrorIs(t, err, ErrUnknownFormatInContainer)
}

func TestRegistryFinalizeRejectsEmptyEnum(t *testing.T) {
	r := NewRegistry()
	r.Set("Empty", NewEnum())
	_, err := r.Finalize()
	require.ErrorIs(t, err, ErrMissingVariants)
}

func TestRegistryFinalizeRejectsUnknownTypeName(t *testing.T) {
	r := NewRegistry()
	r.Set("Holder", NewTypeStruct{Inner: TypeName{Name: "Ghost"}})
	_, err := r.Finalize()
	require.ErrorIs(t, err, ErrUnknownNamedType)
}

func TestRegistryFinalizeAllowsSelfReference(t *testing.T) {
	r := NewRegistry()
	e := NewEnum()
	e.Variants[0] = EnumVariant{Name: "Nil", Format: VariantUnit{}}
	e.Variants[1] = EnumVariant{Name: "Cons", Format: VariantTuple{Fields: []Format{U32, TypeName{Name: "List"}}}}
	r.Set("List", e)

	final, err := r.Finalize()
	require.NoError(t, err)
	require.True(t, final.Has("List"))
}

// Name = NewTypeStruct(Str).
func TestScenarioNewTypeStructOverStr(t *testing.T) {
	r := NewRegistry()
	r.Set("Name", NewTypeStruct{Inner: Str})
	final, err := r.Finalize()
	require.NoError(t, err)
	cf, ok := final.Get("Name")
	require.True(t, ok)
	require.Equal(t, NewTypeStruct{Inner: Str}, cf)
}

// A struct{bar Bar, choice Choice} referencing two named containers by
// TypeName.
func TestScenarioStructReferencingNamedContainers(t *testing.T) {
	r := NewRegistry()
	r.Set("Bar", NewTypeStruct{Inner: U64})

	choice := NewEnum()
	choice.Variants[0] = EnumVariant{Name: "A", Format: VariantUnit{}}
	choice.Variants[1] = EnumVariant{Name: "B", Format: VariantUnit{}}
	choice.Variants[2] = EnumVariant{Name: "C", Format: VariantUnit{}}
	r.Set("Choice", choice)

	r.Set("Holder", Struct{Fields: []NamedField{
		{Name: "bar", Format: TypeName{Name: "Bar"}},
		{Name: "choice", Format: TypeName{Name: "Choice"}},
	}})

	final, err := r.Finalize()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Bar", "Choice", "Holder"}, final.Names())

	holder, _ := final.Get("Holder")
	s := holder.(Struct)
	require.Equal(t, "bar", s.Fields[0].Name)
	require.Equal(t, TypeName{Name: "Bar"}, s.Fields[0].Format)
}
