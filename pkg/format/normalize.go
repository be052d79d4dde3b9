package format

// Normalize chases every Variable reachable from f to its current
// resolution. It never errors; the caller checks HasVariable to decide
// whether the result is final-registry-ready (see Registry.Finalize).
func Normalize(f Format) Format {
	f = chase(f)
	switch t := f.(type) {
	case Option:
		return Option{Inner: Normalize(t.Inner)}
	case Seq:
		return reduceSeq(Normalize(t.Element))
	case Map:
		return Map{Key: Normalize(t.Key), Value: Normalize(t.Value)}
	case Tuple:
		items := make([]Format, len(t.Items))
		for i, it := range t.Items {
			items[i] = Normalize(it)
		}
		return Tuple{Items: items}
	case TupleArray:
		return TupleArray{Content: Normalize(t.Content), Size: t.Size}
	default:
		return f
	}
}

// NormalizeVariant is the VariantFormat counterpart of Normalize.
func NormalizeVariant(v VariantFormat) VariantFormat {
	v = chaseVariant(v)
	switch t := v.(type) {
	case VariantNewType:
		return VariantNewType{Inner: Normalize(t.Inner)}
	case VariantTuple:
		fields := make([]Format, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Normalize(f)
		}
		return VariantTuple{Fields: fields}
	case VariantStruct:
		return VariantStruct{Fields: normalizeNamedFields(t.Fields)}
	default:
		return v
	}
}

func normalizeNamedFields(fields []NamedField) []NamedField {
	out := make([]NamedField, len(fields))
	for i, f := range fields {
		out[i] = NamedField{Name: f.Name, Format: Normalize(f.Format)}
	}
	return out
}

// NormalizeContainer normalizes every format reachable from a container's
// shape.
func NormalizeContainer(cf ContainerFormat) ContainerFormat {
	switch t := cf.(type) {
	case NewTypeStruct:
		return NewTypeStruct{Inner: Normalize(t.Inner)}
	case TupleStruct:
		fields := make([]Format, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = Normalize(f)
		}
		return TupleStruct{Fields: fields}
	case Struct:
		return Struct{Fields: normalizeNamedFields(t.Fields)}
	case *Enum:
		out := NewEnum()
		for idx, v := range t.Variants {
			out.Variants[idx] = EnumVariant{Name: v.Name, Format: NormalizeVariant(v.Format)}
		}
		return out
	default:
		return cf
	}
}

// HasVariable reports whether f still contains an unresolved Variable
// after normalization.
func HasVariable(f Format) bool {
	switch t := Normalize(f).(type) {
	case Variable:
		return true
	case Option:
		return HasVariable(t.Inner)
	case Seq:
		return HasVariable(t.Element)
	case Map:
		return HasVariable(t.Key) || HasVariable(t.Value)
	case Tuple:
		for _, it := range t.Items {
			if HasVariable(it) {
				return true
			}
		}
		return false
	case TupleArray:
		return HasVariable(t.Content)
	default:
		return false
	}
}

// HasVariableVariant is the VariantFormat counterpart of HasVariable.
func HasVariableVariant(v VariantFormat) bool {
	switch t := NormalizeVariant(v).(type) {
	case VariantVariable:
		return true
	case VariantNewType:
		return HasVariable(t.Inner)
	case VariantTuple:
		for _, f := range t.Fields {
			if HasVariable(f) {
				return true
			}
		}
		return false
	case VariantStruct:
		for _, f := range t.Fields {
			if HasVariable(f.Format) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// ContainerHasVariable reports whether any position in cf still contains
// an unresolved Variable/VariantVariable.
func ContainerHasVariable(cf ContainerFormat) bool {
	switch t := cf.(type) {
	case NewTypeStruct:
		return HasVariable(t.Inner)
	case TupleStruct:
		for _, f := range t.Fields {
			if HasVariable(f) {
				return true
			}
		}
		return false
	case Struct:
		for _, f := range t.Fields {
			if HasVariable(f.Format) {
				return true
			}
		}
		return false
	case *Enum:
		for _, v := range t.Variants {
			if HasVariableVariant(v.Format) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// WalkTypeNames calls fn for every TypeName reachable from cf.
func WalkTypeNames(cf ContainerFormat, fn func(name string)) {
	var walkFormat func(f Format)
	walkFormat = func(f Format) {
		switch t := f.(type) {
		case TypeName:
			fn(t.Name)
		case Option:
			walkFormat(t.Inner)
		case Seq:
			walkFormat(t.Element)
		case Map:
			walkFormat(t.Key)
			walkFormat(t.Value)
		case Tuple:
			for _, it := range t.Items {
				walkFormat(it)
			}
		case TupleArray:
			walkFormat(t.Content)
		}
	}
	var walkVariant func(v VariantFormat)
	walkVariant = func(v VariantFormat) {
		switch t := v.(type) {
		case VariantNewType:
			walkFormat(t.Inner)
		case VariantTuple:
			for _, f := range t.Fields {
				walkFormat(f)
			}
		case VariantStruct:
			for _, f := range t.Fields {
				walkFormat(f.Format)
			}
		}
	}

	switch t := cf.(type) {
	case NewTypeStruct:
		walkFormat(t.Inner)
	case TupleStruct:
		for _, f := range t.Fields {
			walkFormat(f)
		}
	case Struct:
		for _, f := range t.Fields {
			walkFormat(f.Format)
		}
	case *Enum:
		for _, v := range t.Variants {
			walkVariant(v.Format)
		}
	}
}
