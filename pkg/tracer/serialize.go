package tracer

import (
	"fmt"
	"reflect"

	"github.com/blockberries/witness/pkg/format"
)

// Serializer is the pseudo-serializer handed to a Marshaler's
// MarshalWitness method. Each Emit* method corresponds to one format
// construction primitive; composite operations take already-traced
// element formats (obtained by calling back into s.Trace for nested Go
// values) rather than closures, since a value-based builder is the more
// idiomatic Go shape for this than visitor callbacks.
type Serializer struct {
	s *session
}

// Trace recurses into a nested Go value and returns its format, the same
// traversal the default reflect-driven path uses. Custom Marshaler
// implementations call this for every nested value they decompose.
func (ser *Serializer) Trace(v any) (format.Format, error) {
	return ser.s.serializeValue(reflect.ValueOf(v))
}

func (ser *Serializer) EmitPrimitive(p format.Primitive) format.Format { return p }

func (ser *Serializer) EmitOptionNone() format.Format {
	return format.Option{Inner: format.NewVariable()}
}

func (ser *Serializer) EmitOptionSome(inner format.Format) format.Format {
	return format.Option{Inner: inner}
}

func (ser *Serializer) EmitSeq(elements []format.Format) (format.Format, error) {
	elem := format.Format(format.NewVariable())
	var err error
	for _, e := range elements {
		elem, err = format.Unify(elem, e, "seq")
		if err != nil {
			return nil, err
		}
	}
	return format.Seq{Element: elem}, nil
}

func (ser *Serializer) EmitMap(keys, values []format.Format) (format.Format, error) {
	key := format.Format(format.NewVariable())
	val := format.Format(format.NewVariable())
	var err error
	for i := range keys {
		if key, err = format.Unify(key, keys[i], "map.key"); err != nil {
			return nil, err
		}
		if val, err = format.Unify(val, values[i], "map.value"); err != nil {
			return nil, err
		}
	}
	return format.Map{Key: key, Value: val}, nil
}

func (ser *Serializer) EmitTuple(elements []format.Format) format.Format {
	return format.Tuple{Items: elements}
}

func (ser *Serializer) EmitFixedArray(elements []format.Format, size int) (format.Format, error) {
	elem := format.Format(format.NewVariable())
	var err error
	for _, e := range elements {
		elem, err = format.Unify(elem, e, "array")
		if err != nil {
			return nil, err
		}
	}
	return format.TupleArray{Content: elem, Size: uint64(size)}, nil
}

func (ser *Serializer) EmitBytes() format.Format { return format.Bytes }

// EmitUnitStruct, EmitNewTypeStruct, EmitTupleStruct and EmitStruct record
// (and unify) a container definition under name, returning a TypeName
// reference to it.
func (ser *Serializer) EmitUnitStruct(name string) (format.Format, error) {
	if err := ser.s.merge(name, format.UnitStruct{}); err != nil {
		return nil, err
	}
	return format.TypeName{Name: name}, nil
}

func (ser *Serializer) EmitNewTypeStruct(name string, inner format.Format) (format.Format, error) {
	if err := ser.s.merge(name, newTypeStructOf(inner)); err != nil {
		return nil, err
	}
	return format.TypeName{Name: name}, nil
}

func (ser *Serializer) EmitTupleStruct(name string, fields []format.Format) (format.Format, error) {
	if err := ser.s.merge(name, format.TupleStruct{Fields: fields}); err != nil {
		return nil, err
	}
	return format.TypeName{Name: name}, nil
}

func (ser *Serializer) EmitStruct(name string, fields []format.NamedField) (format.Format, error) {
	if err := ser.s.merge(name, format.Struct{Fields: fields}); err != nil {
		return nil, err
	}
	return format.TypeName{Name: name}, nil
}

// EmitEnumVariant records one variant observation of an enum container.
func (ser *Serializer) EmitEnumVariant(name string, index format.VariantIndex, variantName string, body format.VariantFormat) (format.Format, error) {
	partial := format.NewEnum()
	partial.Variants[index] = format.EnumVariant{Name: variantName, Format: body}
	if err := ser.s.merge(name, partial); err != nil {
		return nil, err
	}
	return format.TypeName{Name: name}, nil
}

// newTypeStructOf enforces the data-model invariant that a NewTypeStruct
// never wraps Unit: a single-field struct whose field traced to Unit is a
// UnitStruct instead.
func newTypeStructOf(inner format.Format) format.ContainerFormat {
	if p, ok := inner.(format.Primitive); ok && p.Kind == format.Unit.Kind {
		return format.UnitStruct{}
	}
	return format.NewTypeStruct{Inner: inner}
}

// asMarshaler checks v and *v against Marshaler, mirroring classify.go's
// implementsEither but for an actual reflect.Value rather than a Type.
func asMarshaler(v reflect.Value) (Marshaler, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	if m, ok := v.Interface().(Marshaler); ok {
		return m, true
	}
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	return nil, false
}

// serializeValue is the default, structural traversal used for any value
// whose type does not implement Marshaler.
func (s *session) serializeValue(rv reflect.Value) (format.Format, error) {
	if m, ok := asMarshaler(rv); ok {
		return m.MarshalWitness(&Serializer{s: s})
	}

	if !rv.IsValid() {
		return format.Option{Inner: format.NewVariable()}, nil
	}

	t := rv.Type()

	if t == uint128Type {
		return format.U128, nil
	}
	if t == int128Type {
		return format.I128, nil
	}

	switch t.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return format.Option{Inner: format.NewVariable()}, nil
		}
		inner, err := s.serializeValue(rv.Elem())
		if err != nil {
			return nil, err
		}
		return format.Option{Inner: inner}, nil

	case reflect.Bool:
		return format.Bool, nil
	case reflect.Int8:
		return format.I8, nil
	case reflect.Int16:
		return format.I16, nil
	case reflect.Int32:
		return format.I32, nil
	case reflect.Int64, reflect.Int:
		return format.I64, nil
	case reflect.Uint8:
		return format.U8, nil
	case reflect.Uint16:
		return format.U16, nil
	case reflect.Uint32:
		return format.U32, nil
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		return format.U64, nil
	case reflect.Float32:
		return format.F32, nil
	case reflect.Float64:
		return format.F64, nil
	case reflect.String:
		return format.Str, nil

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return format.Bytes, nil
		}
		elem := format.Format(format.NewVariable())
		for i := 0; i < rv.Len(); i++ {
			f, err := s.serializeValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			if elem, err = format.Unify(elem, f, "seq"); err != nil {
				return nil, err
			}
		}
		return format.Seq{Element: elem}, nil

	case reflect.Array:
		elem := format.Format(format.NewVariable())
		for i := 0; i < rv.Len(); i++ {
			f, err := s.serializeValue(rv.Index(i))
			if err != nil {
				return nil, err
			}
			var uErr error
			if elem, uErr = format.Unify(elem, f, "array"); uErr != nil {
				return nil, uErr
			}
		}
		return format.TupleArray{Content: elem, Size: uint64(rv.Len())}, nil

	case reflect.Map:
		key := format.Format(format.NewVariable())
		val := format.Format(format.NewVariable())
		iter := rv.MapRange()
		for iter.Next() {
			kf, err := s.serializeValue(iter.Key())
			if err != nil {
				return nil, err
			}
			vf, err := s.serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			if key, err = format.Unify(key, kf, "map.key"); err != nil {
				return nil, err
			}
			if val, err = format.Unify(val, vf, "map.value"); err != nil {
				return nil, err
			}
		}
		return format.Map{Key: key, Value: val}, nil

	case reflect.Struct:
		return s.serializeStruct(t, rv)

	case reflect.Interface:
		return s.serializeEnum(t, rv)

	default:
		return nil, fmt.Errorf("tracer: unsupported Go kind %s", t.Kind())
	}
}

func (s *session) serializeStruct(t reflect.Type, rv reflect.Value) (format.Format, error) {
	name := t.Name()
	cf, err := s.buildContainerFormat(t, rv)
	if err != nil {
		return nil, err
	}
	if name == "" {
		// Anonymous struct literal: no container identity to register.
		return cf, nil
	}
	if err := s.merge(name, cf); err != nil {
		return nil, err
	}
	if rv.CanInterface() {
		s.samples.Record(name, rv.Interface())
	}
	return format.TypeName{Name: name}, nil
}

func (s *session) buildContainerFormat(t reflect.Type, rv reflect.Value) (format.ContainerFormat, error) {
	switch classifyContainer(t) {
	case shapeUnit:
		return format.UnitStruct{}, nil
	case shapeNewType:
		inner, err := s.serializeValue(rv.Field(0))
		if err != nil {
			return nil, err
		}
		return newTypeStructOf(inner), nil
	case shapeTuple:
		fields := make([]format.Format, t.NumField())
		for i := range fields {
			f, err := s.serializeValue(rv.Field(i))
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return format.TupleStruct{Fields: fields}, nil
	default:
		fields := make([]format.NamedField, t.NumField())
		for i := range fields {
			f, err := s.serializeValue(rv.Field(i))
			if err != nil {
				return nil, err
			}
			fields[i] = format.NamedField{Name: t.Field(i).Name, Format: f}
		}
		return format.Struct{Fields: fields}, nil
	}
}

func (s *session) serializeEnum(t reflect.Type, rv reflect.Value) (format.Format, error) {
	spec, ok := s.enumsByI[t]
	if !ok {
		return nil, fmt.Errorf("tracer: interface type %s has no registered EnumSpec", t)
	}
	concrete := rv.Elem()
	if !concrete.IsValid() {
		return nil, fmt.Errorf("tracer: nil value for enum %s", spec.Name)
	}
	idx, ok := spec.indexOf(concrete.Type())
	if !ok {
		return nil, fmt.Errorf("tracer: %s is not a registered variant of enum %s", concrete.Type(), spec.Name)
	}
	variantName := spec.Variants[idx].Name
	vf, err := s.buildVariantFormat(concrete.Type(), concrete)
	if err != nil {
		return nil, err
	}
	partial := format.NewEnum()
	partial.Variants[idx] = format.EnumVariant{Name: variantName, Format: vf}
	if err := s.merge(spec.Name, partial); err != nil {
		return nil, err
	}
	if rv.CanInterface() {
		s.samples.Record(spec.Name, rv.Interface())
	}
	return format.TypeName{Name: spec.Name}, nil
}

func (s *session) buildVariantFormat(t reflect.Type, rv reflect.Value) (format.VariantFormat, error) {
	switch classifyVariant(t) {
	case shapeUnit:
		return format.VariantUnit{}, nil
	case shapeNewType:
		inner, err := s.serializeValue(rv.Field(0))
		if err != nil {
			return nil, err
		}
		return format.VariantNewType{Inner: inner}, nil
	case shapeTuple:
		fields := make([]format.Format, t.NumField())
		for i := range fields {
			f, err := s.serializeValue(rv.Field(i))
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return format.VariantTuple{Fields: fields}, nil
	default:
		fields := make([]format.NamedField, t.NumField())
		for i := range fields {
			f, err := s.serializeValue(rv.Field(i))
			if err != nil {
				return nil, err
			}
			fields[i] = format.NamedField{Name: t.Field(i).Name, Format: f}
		}
		return format.VariantStruct{Fields: fields}, nil
	}
}
