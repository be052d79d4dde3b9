package format

// VariantFormat is the sum type for the shape carried by one enum case.
type VariantFormat interface {
	variantNode()
	String() string
}

// VariantUnit is a variant with no payload.
type VariantUnit struct{}

func (VariantUnit) variantNode()  {}
func (VariantUnit) String() string { return "Unit" }

// VariantNewType wraps a single inner format.
type VariantNewType struct{ Inner Format }

func (VariantNewType) variantNode() {}
func (v VariantNewType) String() string {
	return "NewType(" + v.Inner.String() + ")"
}

// VariantTuple is a fixed-length, unnamed sequence of fields.
type VariantTuple struct{ Fields []Format }

func (VariantTuple) variantNode() {}
func (v VariantTuple) String() string {
	s := "Tuple["
	for i, f := range v.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.String()
	}
	return s + "]"
}

// VariantStruct is a fixed, ordered set of named fields.
type VariantStruct struct{ Fields []NamedField }

func (VariantStruct) variantNode() {}
func (v VariantStruct) String() string {
	s := "Struct{"
	for i, f := range v.Fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Format.String()
	}
	return s + "}"
}

// VariantVariable is a placeholder used while a variant's shape is still
// being discovered. Like Variable, it must not survive finalization.
type VariantVariable struct{ Cell *VariantCell }

func (VariantVariable) variantNode() {}
func (v VariantVariable) String() string {
	return "Variable"
}

// NewVariantVariable allocates a fresh, unresolved variant placeholder.
func NewVariantVariable() VariantVariable {
	return VariantVariable{Cell: newVariantCell()}
}
