package format

// UnifyVariant merges two observations of the same enum variant's shape.
func UnifyVariant(a, b VariantFormat, path string) (VariantFormat, error) {
	a = chaseVariant(a)
	b = chaseVariant(b)

	if av, ok := a.(VariantVariable); ok {
		return resolveVariantVariable(av, b, path)
	}
	if bv, ok := b.(VariantVariable); ok {
		return resolveVariantVariable(bv, a, path)
	}

	switch at := a.(type) {
	case VariantUnit:
		if _, ok := b.(VariantUnit); ok {
			return at, nil
		}
	case VariantNewType:
		if bt, ok := b.(VariantNewType); ok {
			inner, err := Unify(at.Inner, bt.Inner, path+".NewType")
			if err != nil {
				return nil, err
			}
			return VariantNewType{Inner: inner}, nil
		}
	case VariantTuple:
		if bt, ok := b.(VariantTuple); ok && len(at.Fields) == len(bt.Fields) {
			fields := make([]Format, len(at.Fields))
			for i := range at.Fields {
				u, err := Unify(at.Fields[i], bt.Fields[i], path+".Tuple")
				if err != nil {
					return nil, err
				}
				fields[i] = u
			}
			return VariantTuple{Fields: fields}, nil
		}
	case VariantStruct:
		if bt, ok := b.(VariantStruct); ok {
			fields, err := unifyNamedFields(at.Fields, bt.Fields, path)
			if err != nil {
				return nil, err
			}
			return VariantStruct{Fields: fields}, nil
		}
	}

	return nil, &IncompatibilityError{Path: path}
}

func resolveVariantVariable(v VariantVariable, target VariantFormat, path string) (VariantFormat, error) {
	if tv, ok := target.(VariantVariable); ok {
		if tv.Cell == v.Cell {
			return v, nil
		}
		v.Cell.Resolve(tv)
		return tv, nil
	}
	v.Cell.Resolve(target)
	return target, nil
}

func unifyNamedFields(a, b []NamedField, path string) ([]NamedField, error) {
	if len(a) != len(b) {
		return nil, &IncompatibilityError{Path: path + ".Struct", A: nil, B: nil}
	}
	out := make([]NamedField, len(a))
	for i := range a {
		if a[i].Name != b[i].Name {
			return nil, &IncompatibilityError{Path: path + ".Struct." + a[i].Name}
		}
		u, err := Unify(a[i].Format, b[i].Format, path+"."+a[i].Name)
		if err != nil {
			return nil, err
		}
		out[i] = NamedField{Name: a[i].Name, Format: u}
	}
	return out, nil
}

// UnifyContainer merges two observations of the same container name.
func UnifyContainer(name string, a, b ContainerFormat) (ContainerFormat, error) {
	switch at := a.(type) {
	case UnitStruct:
		if _, ok := b.(UnitStruct); ok {
			return at, nil
		}
	case NewTypeStruct:
		if bt, ok := b.(NewTypeStruct); ok {
			inner, err := Unify(at.Inner, bt.Inner, name)
			if err != nil {
				return nil, err
			}
			return NewTypeStruct{Inner: inner}, nil
		}
	case TupleStruct:
		if bt, ok := b.(TupleStruct); ok && len(at.Fields) == len(bt.Fields) {
			fields := make([]Format, len(at.Fields))
			for i := range at.Fields {
				u, err := Unify(at.Fields[i], bt.Fields[i], name)
				if err != nil {
					return nil, err
				}
				fields[i] = u
			}
			return TupleStruct{Fields: fields}, nil
		}
	case Struct:
		if bt, ok := b.(Struct); ok {
			fields, err := unifyNamedFields(at.Fields, bt.Fields, name)
			if err != nil {
				return nil, err
			}
			return Struct{Fields: fields}, nil
		}
	case *Enum:
		if bt, ok := b.(*Enum); ok {
			return unifyEnums(name, at, bt)
		}
	}
	return nil, &FinalizationError{Container: name, Err: &IncompatibilityError{Path: name, A: nil, B: nil}}
}

func unifyEnums(name string, a, b *Enum) (ContainerFormat, error) {
	merged := NewEnum()
	for idx, va := range a.Variants {
		merged.Variants[idx] = va
	}
	for idx, vb := range b.Variants {
		va, exists := merged.Variants[idx]
		if !exists {
			merged.Variants[idx] = vb
			continue
		}
		if va.Name != vb.Name {
			return nil, &FinalizationError{Container: name, Err: ErrNameCollision}
		}
		uf, err := UnifyVariant(va.Format, vb.Format, name)
		if err != nil {
			return nil, err
		}
		merged.Variants[idx] = EnumVariant{Name: va.Name, Format: uf}
	}
	return merged, nil
}
