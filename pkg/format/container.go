package format

import "sort"

// ContainerFormat is the sum type for a named container's shape, per the
// data model's ContainerFormat section.
type ContainerFormat interface {
	containerNode()
	String() string
}

// UnitStruct is a container with no fields, encoded as zero bytes.
type UnitStruct struct{}

func (UnitStruct) containerNode()  {}
func (UnitStruct) String() string  { return "UnitStruct" }

// NewTypeStruct wraps a single inner format. Inner must never be Unit;
// use UnitStruct instead (see the data model invariants).
type NewTypeStruct struct{ Inner Format }

func (NewTypeStruct) containerNode() {}
func (n NewTypeStruct) String() string {
	return "NewTypeStruct(" + n.Inner.String() + ")"
}

// TupleStruct is a fixed-length, unnamed sequence of fields.
type TupleStruct struct{ Fields []Format }

func (TupleStruct) containerNode() {}
func (t TupleStruct) String() string {
	s := "TupleStruct["
	for i, f := range t.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.String()
	}
	return s + "]"
}

// NamedField is one (fieldName, Format) pair of a Struct or a Struct variant.
type NamedField struct {
	Name   string
	Format Format
}

// Struct is a fixed, ordered set of named fields. Field order is
// significant: it is the wire order.
type Struct struct{ Fields []NamedField }

func (Struct) containerNode() {}
func (s Struct) String() string {
	str := "Struct{"
	for i, f := range s.Fields {
		if i > 0 {
			str += ", "
		}
		str += f.Name + ": " + f.Format.String()
	}
	return str + "}"
}

// VariantIndex identifies one case of an Enum.
type VariantIndex = uint32

// EnumVariant is one (name, VariantFormat) case of an Enum, keyed by index.
type EnumVariant struct {
	Name   string
	Format VariantFormat
}

// Enum is a container whose value is exactly one of several named,
// indexed variants. The map is keyed by VariantIndex; SortedIndices
// returns keys in increasing order for deterministic iteration.
type Enum struct {
	Variants map[VariantIndex]EnumVariant
}

func (Enum) containerNode() {}

// NewEnum returns an empty Enum ready for variants to be recorded into it.
func NewEnum() *Enum {
	return &Enum{Variants: make(map[VariantIndex]EnumVariant)}
}

// SortedIndices returns the enum's variant indices in increasing order.
func (e Enum) SortedIndices() []VariantIndex {
	idx := make([]VariantIndex, 0, len(e.Variants))
	for i := range e.Variants {
		idx = append(idx, i)
	}
	sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	return idx
}

func (e Enum) String() string {
	s := "Enum{"
	for i, vi := range e.SortedIndices() {
		if i > 0 {
			s += ", "
		}
		v := e.Variants[vi]
		s += v.Name + "=" + v.Format.String()
	}
	return s + "}"
}
