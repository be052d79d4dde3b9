package format

// Unify computes the least upper bound of two partial observations of the
// same format position. It builds a new Format rather than editing a or b
// in place, but it does bind any unresolved Variable cells it meets in
// them (cells are shared, so every Format holding the same Variable sees
// the binding). It returns the unified Format or an *IncompatibilityError
// naming path.
//
// Unification is commutative (Unify(a,b) and Unify(b,a) produce
// equivalent results) and idempotent up to the Seq(U8)-to-Bytes reduction
// (Unify(a,a) returns a, except that a Seq(U8) comes back as Bytes;
// re-unifying an already-unified pair is a no-op) by construction: every case below
// is symmetric in its treatment of a and b, and resolving a Variable to
// its own chased value is a no-op.
func Unify(a, b Format, path string) (Format, error) {
	a = chase(a)
	b = chase(b)

	if av, ok := a.(Variable); ok {
		return resolveVariable(av, b, path)
	}
	if bv, ok := b.(Variable); ok {
		return resolveVariable(bv, a, path)
	}

	switch at := a.(type) {
	case Primitive:
		if bt, ok := b.(Primitive); ok && at.Kind == bt.Kind {
			return at, nil
		}
	case TypeName:
		if bt, ok := b.(TypeName); ok && at.Name == bt.Name {
			return at, nil
		}
	case Option:
		if bt, ok := b.(Option); ok {
			inner, err := Unify(at.Inner, bt.Inner, path+".Option")
			if err != nil {
				return nil, err
			}
			return Option{Inner: inner}, nil
		}
	case Seq:
		if bt, ok := b.(Seq); ok {
			elem, err := Unify(at.Element, bt.Element, path+".Seq")
			if err != nil {
				return nil, err
			}
			return reduceSeq(elem), nil
		}
	case Map:
		if bt, ok := b.(Map); ok {
			key, err := Unify(at.Key, bt.Key, path+".Map.Key")
			if err != nil {
				return nil, err
			}
			val, err := Unify(at.Value, bt.Value, path+".Map.Value")
			if err != nil {
				return nil, err
			}
			return Map{Key: key, Value: val}, nil
		}
	case Tuple:
		if bt, ok := b.(Tuple); ok && len(at.Items) == len(bt.Items) {
			items := make([]Format, len(at.Items))
			for i := range at.Items {
				u, err := Unify(at.Items[i], bt.Items[i], path+".Tuple")
				if err != nil {
					return nil, err
				}
				items[i] = u
			}
			return Tuple{Items: items}, nil
		}
	case TupleArray:
		if bt, ok := b.(TupleArray); ok && at.Size == bt.Size {
			content, err := Unify(at.Content, bt.Content, path+".TupleArray")
			if err != nil {
				return nil, err
			}
			return TupleArray{Content: content, Size: at.Size}, nil
		}
	}

	return nil, &IncompatibilityError{Path: path, A: a, B: b}
}

// reduceSeq canonicalizes Seq(U8) into Bytes: a Seq that unifies down to a
// U8 element is folded to the dedicated Bytes primitive rather than left
// as a byte sequence spelled two different ways.
func reduceSeq(elem Format) Format {
	if p, ok := elem.(Primitive); ok && p.Kind == U8.Kind {
		return Bytes
	}
	return Seq{Element: elem}
}

// resolveVariable unifies a Variable cell with a concrete (already-chased)
// target. If the target is itself an unresolved Variable, the two cells
// are linked by resolving one to the other. An occurs-check rejects
// resolving a cell to a term that would reference the cell itself through
// a cycle not broken by a TypeName boundary.
func resolveVariable(v Variable, target Format, path string) (Format, error) {
	if tv, ok := target.(Variable); ok {
		if tv.Cell == v.Cell {
			return v, nil // unifying a variable with itself: no-op
		}
		v.Cell.Resolve(tv)
		return tv, nil
	}

	if occursIn(v.Cell, target) {
		return nil, &IncompatibilityError{Path: path, A: v, B: target}
	}
	v.Cell.Resolve(target)
	return target, nil
}

// occursIn reports whether cell is reachable from f without crossing a
// TypeName boundary (named references do not inline their target, so they
// cannot participate in a structural cycle).
func occursIn(cell *Cell, f Format) bool {
	switch t := f.(type) {
	case Variable:
		return t.Cell == cell
	case Option:
		return occursIn(cell, t.Inner)
	case Seq:
		return occursIn(cell, t.Element)
	case Map:
		return occursIn(cell, t.Key) || occursIn(cell, t.Value)
	case Tuple:
		for _, item := range t.Items {
			if occursIn(cell, item) {
				return true
			}
		}
		return false
	case TupleArray:
		return occursIn(cell, t.Content)
	default:
		return false
	}
}
