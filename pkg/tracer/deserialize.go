package tracer

import (
	"fmt"
	"reflect"

	"github.com/blockberries/witness/pkg/format"
)

// Deserializer is the pseudo-deserializer handed to an Unmarshaler's
// UnmarshalWitness method. It synthesizes witness values rather than
// reading real ones, the mirror image of Serializer.
type Deserializer struct {
	s *session
}

// TraceNested synthesizes a value of the Go type t, the same recursive
// step the default reflect-driven path uses for a nested field. A custom
// Unmarshaler calls this for every nested value it needs to construct.
func (d *Deserializer) TraceNested(t reflect.Type) (reflect.Value, format.Format, error) {
	return d.s.deserializeType(t)
}

// Synthesize is TraceNested's typed, generic counterpart; Go disallows
// type parameters on methods, so it is a package-level function taking a
// *Deserializer instead.
func Synthesize[T any](d *Deserializer) (T, format.Format, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()
	v, f, err := d.s.deserializeType(t)
	if err != nil {
		return zero, nil, err
	}
	return v.Interface().(T), f, nil
}

var unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()

// deserializeType synthesizes a witness value of Go type t along with the
// format that value traces to. It is the deserialization tracer's
// default, reflect-driven path.
func (s *session) deserializeType(t reflect.Type) (reflect.Value, format.Format, error) {
	if t == uint128Type {
		return reflect.Zero(t), format.U128, nil
	}
	if t == int128Type {
		return reflect.Zero(t), format.I128, nil
	}

	if t.Implements(unmarshalerType) || reflect.PointerTo(t).Implements(unmarshalerType) {
		return s.deserializeViaUnmarshaler(t)
	}

	switch t.Kind() {
	case reflect.Ptr:
		elem := t.Elem()
		if s.visiting[elem] > 0 {
			// Already unwinding this type one level up: terminate the
			// chain with None rather than recursing forever.
			return reflect.Zero(t), format.Option{Inner: format.NewVariable()}, nil
		}
		s.visiting[elem]++
		inner, f, err := s.deserializeType(elem)
		s.visiting[elem]--
		if err != nil {
			return reflect.Value{}, nil, err
		}
		ptr := reflect.New(elem)
		ptr.Elem().Set(inner)
		return ptr, format.Option{Inner: f}, nil

	case reflect.Bool:
		return reflect.ValueOf(true), format.Bool, nil
	case reflect.Int8:
		return reflect.ValueOf(int8(1)), format.I8, nil
	case reflect.Int16:
		return reflect.ValueOf(int16(1)), format.I16, nil
	case reflect.Int32:
		return reflect.ValueOf(int32(1)), format.I32, nil
	case reflect.Int64:
		return reflect.ValueOf(int64(1)), format.I64, nil
	case reflect.Int:
		return reflect.ValueOf(int(1)), format.I64, nil
	case reflect.Uint8:
		return reflect.ValueOf(uint8(1)), format.U8, nil
	case reflect.Uint16:
		return reflect.ValueOf(uint16(1)), format.U16, nil
	case reflect.Uint32:
		return reflect.ValueOf(uint32(1)), format.U32, nil
	case reflect.Uint64:
		return reflect.ValueOf(uint64(1)), format.U64, nil
	case reflect.Uint, reflect.Uintptr:
		return reflect.ValueOf(uint(1)).Convert(t), format.U64, nil
	case reflect.Float32:
		return reflect.ValueOf(float32(1)), format.F32, nil
	case reflect.Float64:
		return reflect.ValueOf(float64(1)), format.F64, nil
	case reflect.String:
		return reflect.ValueOf("witness"), format.Str, nil

	case reflect.Slice:
		elem := t.Elem()
		if elem.Kind() == reflect.Uint8 {
			return reflect.ValueOf([]byte{1}), format.Bytes, nil
		}
		if s.visiting[elem] > 0 {
			return reflect.MakeSlice(t, 0, 0), format.Seq{Element: format.NewVariable()}, nil
		}
		s.visiting[elem]++
		ev, f, err := s.deserializeType(elem)
		s.visiting[elem]--
		if err != nil {
			return reflect.Value{}, nil, err
		}
		sl := reflect.MakeSlice(t, 1, 1)
		sl.Index(0).Set(ev)
		return sl, format.Seq{Element: f}, nil

	case reflect.Array:
		ev, f, err := s.deserializeType(t.Elem())
		if err != nil {
			return reflect.Value{}, nil, err
		}
		arr := reflect.New(t).Elem()
		for i := 0; i < t.Len(); i++ {
			arr.Index(i).Set(ev)
		}
		return arr, format.TupleArray{Content: f, Size: uint64(t.Len())}, nil

	case reflect.Map:
		kt, vt := t.Key(), t.Elem()
		if s.visiting[vt] > 0 {
			return reflect.MakeMap(t), format.Map{Key: format.NewVariable(), Value: format.NewVariable()}, nil
		}
		kv, kf, err := s.deserializeType(kt)
		if err != nil {
			return reflect.Value{}, nil, err
		}
		s.visiting[vt]++
		vv, vf, err := s.deserializeType(vt)
		s.visiting[vt]--
		if err != nil {
			return reflect.Value{}, nil, err
		}
		m := reflect.MakeMap(t)
		m.SetMapIndex(kv, vv)
		return m, format.Map{Key: kf, Value: vf}, nil

	case reflect.Struct:
		return s.deserializeStructType(t)

	case reflect.Interface:
		return s.deserializeEnum(t)

	default:
		return reflect.Value{}, nil, fmt.Errorf("tracer: unsupported Go kind %s", t.Kind())
	}
}

func (s *session) deserializeViaUnmarshaler(t reflect.Type) (reflect.Value, format.Format, error) {
	target := reflect.New(t) // *T, addressable regardless of receiver kind
	u, ok := target.Interface().(Unmarshaler)
	if !ok {
		return reflect.Value{}, nil, fmt.Errorf("tracer: %s does not implement Unmarshaler", t)
	}
	v, f, err := u.UnmarshalWitness(&Deserializer{s: s})
	if err != nil {
		return reflect.Value{}, nil, err
	}
	rv := reflect.ValueOf(v)
	if t.Kind() != reflect.Ptr && rv.Kind() == reflect.Ptr && rv.Type().Elem() == t {
		rv = rv.Elem()
	}
	return rv, f, nil
}

func shapeLabel(k shapeKind) string {
	switch k {
	case shapeUnit:
		return "UnitStruct"
	case shapeNewType:
		return "NewTypeStruct"
	case shapeTuple:
		return "TupleStruct"
	default:
		return "Struct"
	}
}

// deserializeStructType synthesizes a struct container, consulting the
// samples store per Config and falling back to it when a custom Validator
// rejects the synthesized witness.
func (s *session) deserializeStructType(t reflect.Type) (reflect.Value, format.Format, error) {
	name := t.Name()
	shape := classifyContainer(t)

	if name != "" && s.cfg.replaySample(shapeLabel(shape)) {
		if sample, ok := s.samples.Lookup(name); ok {
			rv, f, err := s.replaySample(name, sample)
			if err == nil {
				return rv, f, nil
			}
		}
	}

	rv, cf, err := s.synthesizeStruct(t, shape)
	if err != nil {
		return reflect.Value{}, nil, err
	}

	if name == "" {
		return rv, cf, nil
	}

	addr := rv.Addr()
	if v, ok := addr.Interface().(Validator); ok {
		if verr := v.Validate(); verr != nil {
			if sample, ok := s.samples.Lookup(name); ok {
				if rv2, f2, err2 := s.replaySample(name, sample); err2 == nil {
					return rv2, f2, nil
				}
			}
			return reflect.Value{}, nil, &SampleRequiredError{Container: name, Cause: verr}
		}
	}

	if err := s.merge(name, cf); err != nil {
		return reflect.Value{}, nil, err
	}
	return rv, format.TypeName{Name: name}, nil
}

// replaySample re-derives a container's format from a previously recorded
// real value, via the same path the serialization tracer uses.
func (s *session) replaySample(name string, sample any) (reflect.Value, format.Format, error) {
	f, err := s.serializeValue(reflect.ValueOf(sample))
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return reflect.ValueOf(sample), f, nil
}

func (s *session) synthesizeStruct(t reflect.Type, shape shapeKind) (reflect.Value, format.ContainerFormat, error) {
	rv := reflect.New(t).Elem()
	switch shape {
	case shapeUnit:
		return rv, format.UnitStruct{}, nil
	case shapeNewType:
		fv, f, err := s.deserializeType(t.Field(0).Type)
		if err != nil {
			return reflect.Value{}, nil, err
		}
		rv.Field(0).Set(fv)
		return rv, newTypeStructOf(f), nil
	case shapeTuple:
		fields := make([]format.Format, t.NumField())
		for i := range fields {
			fv, f, err := s.deserializeType(t.Field(i).Type)
			if err != nil {
				return reflect.Value{}, nil, err
			}
			rv.Field(i).Set(fv)
			fields[i] = f
		}
		return rv, format.TupleStruct{Fields: fields}, nil
	default:
		fields := make([]format.NamedField, t.NumField())
		for i := range fields {
			fv, f, err := s.deserializeType(t.Field(i).Type)
			if err != nil {
				return reflect.Value{}, nil, err
			}
			rv.Field(i).Set(fv)
			fields[i] = format.NamedField{Name: t.Field(i).Name, Format: f}
		}
		return rv, format.Struct{Fields: fields}, nil
	}
}

// deserializeEnum synthesizes an interface-typed enum value. Unlike a
// Rust match, Go reflection cannot enumerate an interface's implementers,
// so EnumSpec already lists every variant up front; the first (depth 0)
// encounter synthesizes all of them to discover the complete variant set,
// and any nested recursive encounter falls back to the first-listed
// (terminating, per EnumVariantSpec's doc comment) variant only.
func (s *session) deserializeEnum(t reflect.Type) (reflect.Value, format.Format, error) {
	spec, ok := s.enumsByI[t]
	if !ok {
		return reflect.Value{}, nil, fmt.Errorf("tracer: interface type %s has no registered EnumSpec", t)
	}
	if len(spec.Variants) == 0 {
		return reflect.Value{}, nil, fmt.Errorf("tracer: enum %s has no registered variants", spec.Name)
	}

	depth := s.visiting[t]
	s.visiting[t]++
	defer func() { s.visiting[t] = depth }()

	iface := reflect.New(t).Elem()

	if depth > 0 {
		variant := spec.Variants[0]
		cv, vf, err := s.deserializeVariantBody(variant.Type)
		if err != nil {
			return reflect.Value{}, nil, err
		}
		if err := assignVariant(iface, t, cv, variant.Type); err != nil {
			return reflect.Value{}, nil, err
		}
		partial := format.NewEnum()
		partial.Variants[0] = format.EnumVariant{Name: variant.Name, Format: vf}
		if err := s.merge(spec.Name, partial); err != nil {
			return reflect.Value{}, nil, err
		}
		return iface, format.TypeName{Name: spec.Name}, nil
	}

	enumFmt := format.NewEnum()
	for idx, variant := range spec.Variants {
		cv, vf, err := s.deserializeVariantBody(variant.Type)
		if err != nil {
			return reflect.Value{}, nil, err
		}
		enumFmt.Variants[uint32(idx)] = format.EnumVariant{Name: variant.Name, Format: vf}
		if idx == 0 {
			if err := assignVariant(iface, t, cv, variant.Type); err != nil {
				return reflect.Value{}, nil, err
			}
		}
	}
	if err := s.merge(spec.Name, enumFmt); err != nil {
		return reflect.Value{}, nil, err
	}
	return iface, format.TypeName{Name: spec.Name}, nil
}

func assignVariant(iface reflect.Value, ifaceType reflect.Type, concrete reflect.Value, vt reflect.Type) error {
	if vt.Implements(ifaceType) {
		iface.Set(concrete)
		return nil
	}
	if reflect.PointerTo(vt).Implements(ifaceType) {
		ptr := reflect.New(vt)
		ptr.Elem().Set(concrete)
		iface.Set(ptr)
		return nil
	}
	return fmt.Errorf("tracer: %s does not implement %s", vt, ifaceType)
}

func (s *session) deserializeVariantBody(vt reflect.Type) (reflect.Value, format.VariantFormat, error) {
	rv := reflect.New(vt).Elem()
	switch classifyVariant(vt) {
	case shapeUnit:
		return rv, format.VariantUnit{}, nil
	case shapeNewType:
		fv, f, err := s.deserializeType(vt.Field(0).Type)
		if err != nil {
			return reflect.Value{}, nil, err
		}
		rv.Field(0).Set(fv)
		return rv, format.VariantNewType{Inner: f}, nil
	case shapeTuple:
		fields := make([]format.Format, vt.NumField())
		for i := range fields {
			fv, f, err := s.deserializeType(vt.Field(i).Type)
			if err != nil {
				return reflect.Value{}, nil, err
			}
			rv.Field(i).Set(fv)
			fields[i] = f
		}
		return rv, format.VariantTuple{Fields: fields}, nil
	default:
		fields := make([]format.NamedField, vt.NumField())
		for i := range fields {
			fv, f, err := s.deserializeType(vt.Field(i).Type)
			if err != nil {
				return reflect.Value{}, nil, err
			}
			rv.Field(i).Set(fv)
			fields[i] = format.NamedField{Name: vt.Field(i).Name, Format: f}
		}
		return rv, format.VariantStruct{Fields: fields}, nil
	}
}
