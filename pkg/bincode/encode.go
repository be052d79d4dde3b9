package bincode

import (
	"fmt"
	"reflect"

	"github.com/blockberries/witness/internal/variant"
	"github.com/blockberries/witness/internal/wire"
	"github.com/blockberries/witness/pkg/format"
)

// Codec encodes and decodes Go values against a format.Registry using
// Bincode's default configuration: fixed-width 64-bit little-endian
// lengths, 32-bit little-endian variant indices, and maps with no
// required key order. Variants resolves an interface-typed Go value's
// concrete type to its enum VariantIndex and back; it may be nil for
// registries with no Enum containers.
type Codec struct {
	Registry *format.Registry
	Variants *variant.Registry
}

// New returns a Codec backed by reg and variants.
func New(reg *format.Registry, variants *variant.Registry) *Codec {
	return &Codec{Registry: reg, Variants: variants}
}

// Marshal encodes v, whose shape must match f, as Bincode bytes.
func (c *Codec) Marshal(f format.Format, v any) ([]byte, error) {
	enc := &encoder{reg: c.Registry, variants: c.Variants, buf: wire.GetBuffer(64)}
	if err := enc.encodeValue(reflect.ValueOf(v), f, "$"); err != nil {
		wire.PutBuffer(enc.buf)
		return nil, err
	}
	out := make([]byte, len(enc.buf))
	copy(out, enc.buf)
	wire.PutBuffer(enc.buf)
	return out, nil
}

type encoder struct {
	reg      *format.Registry
	variants *variant.Registry
	buf      []byte
	depth    int
}

func (e *encoder) enter(path string) error {
	e.depth++
	if e.depth > MaxContainerDepth {
		return &offsetError{Offset: len(e.buf), Path: path, Err: ErrMaxDepthExceeded}
	}
	return nil
}

func (e *encoder) leave() { e.depth-- }

func (e *encoder) encodeValue(rv reflect.Value, f format.Format, path string) error {
	switch f := f.(type) {
	case format.Primitive:
		return e.encodePrimitive(rv, f, path)

	case format.TypeName:
		cf, ok := e.reg.Get(f.Name)
		if !ok {
			return &offsetError{Offset: len(e.buf), Path: path, Err: ErrUnknownContainer}
		}
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		return e.encodeContainer(rv, f.Name, cf, path)

	case format.Option:
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		if rv.Kind() != reflect.Ptr {
			return &offsetError{Path: path, Err: ErrFormatValueMismatch}
		}
		if rv.IsNil() {
			e.buf = append(e.buf, 0)
			return nil
		}
		e.buf = append(e.buf, 1)
		return e.encodeValue(rv.Elem(), f.Inner, path+".some")

	case format.Seq:
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		e.buf = wire.AppendFixed64(e.buf, uint64(rv.Len()))
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeValue(rv.Index(i), f.Element, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	case format.Map:
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		return e.encodeMap(rv, f, path)

	case format.Tuple:
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return &offsetError{Path: path, Err: ErrFormatValueMismatch}
		}
		for i, item := range f.Items {
			ev, err := tupleElement(rv, i)
			if err != nil {
				return err
			}
			if err := e.encodeValue(ev, item, fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
		return nil

	case format.TupleArray:
		if err := e.enter(path); err != nil {
			return err
		}
		defer e.leave()
		if uint64(rv.Len()) != f.Size {
			return &offsetError{Path: path, Err: ErrFormatValueMismatch}
		}
		for i := 0; i < rv.Len(); i++ {
			if err := e.encodeValue(rv.Index(i), f.Content, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	default:
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: cannot encode unresolved format %s", f)}
	}
}

// tupleElement fetches the i-th positional element of rv, which may be a
// Go struct (TupleStruct-shaped), slice, or array depending on call site.
func tupleElement(rv reflect.Value, i int) (reflect.Value, error) {
	switch rv.Kind() {
	case reflect.Struct:
		if i >= rv.NumField() {
			return reflect.Value{}, ErrFormatValueMismatch
		}
		return rv.Field(i), nil
	case reflect.Slice, reflect.Array:
		if i >= rv.Len() {
			return reflect.Value{}, ErrFormatValueMismatch
		}
		return rv.Index(i), nil
	default:
		return reflect.Value{}, ErrFormatValueMismatch
	}
}

func (e *encoder) encodeContainer(rv reflect.Value, name string, cf format.ContainerFormat, path string) error {
	switch cf := cf.(type) {
	case format.UnitStruct:
		return nil

	case format.NewTypeStruct:
		inner, err := soleField(rv)
		if err != nil {
			return err
		}
		return e.encodeValue(inner, cf.Inner, path+"."+name)

	case format.TupleStruct:
		for i, f := range cf.Fields {
			fv, err := tupleElement(rv, i)
			if err != nil {
				return err
			}
			if err := e.encodeValue(fv, f, fmt.Sprintf("%s.%s[%d]", path, name, i)); err != nil {
				return err
			}
		}
		return nil

	case format.Struct:
		for _, nf := range cf.Fields {
			fv := rv.FieldByName(nf.Name)
			if !fv.IsValid() {
				return &offsetError{Path: path, Err: fmt.Errorf("bincode: %w: %s missing field %s", ErrFormatValueMismatch, name, nf.Name)}
			}
			if err := e.encodeValue(fv, nf.Format, path+"."+nf.Name); err != nil {
				return err
			}
		}
		return nil

	case *format.Enum:
		return e.encodeEnum(rv, name, cf, path)

	default:
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: unknown container format %T", cf)}
	}
}

func soleField(rv reflect.Value) (reflect.Value, error) {
	if rv.Kind() != reflect.Struct || rv.NumField() != 1 {
		return reflect.Value{}, ErrFormatValueMismatch
	}
	return rv.Field(0), nil
}

func (e *encoder) encodeEnum(rv reflect.Value, name string, cf *format.Enum, path string) error {
	if e.variants == nil {
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: no variant registry configured for enum %q", name)}
	}
	idx, err := e.variants.IndexOf(name, rv)
	if err != nil {
		return &offsetError{Path: path, Err: err}
	}
	ev, ok := cf.Variants[idx]
	if !ok {
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: variant index %d not defined for %q", idx, name)}
	}
	e.buf = wire.AppendFixed32(e.buf, idx)
	return e.encodeVariantBody(rv.Elem(), ev.Format, path+"."+ev.Name)
}

func (e *encoder) encodeVariantBody(rv reflect.Value, vf format.VariantFormat, path string) error {
	switch vf := vf.(type) {
	case format.VariantUnit:
		return nil
	case format.VariantNewType:
		inner, err := soleField(rv)
		if err != nil {
			return err
		}
		return e.encodeValue(inner, vf.Inner, path)
	case format.VariantTuple:
		for i, f := range vf.Fields {
			fv, err := tupleElement(rv, i)
			if err != nil {
				return err
			}
			if err := e.encodeValue(fv, f, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case format.VariantStruct:
		for _, nf := range vf.Fields {
			fv := rv.FieldByName(nf.Name)
			if !fv.IsValid() {
				return &offsetError{Path: path, Err: ErrFormatValueMismatch}
			}
			if err := e.encodeValue(fv, nf.Format, path+"."+nf.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: unknown variant format %T", vf)}
	}
}

// encodeMap writes entries in the Go map's natural iteration order. Unlike
// BCS, Bincode maps carry no ordering contract, so there is nothing to sort
// and no duplicate-key check beyond what the Go map type already enforces.
func (e *encoder) encodeMap(rv reflect.Value, f format.Map, path string) error {
	if rv.Kind() != reflect.Map {
		return &offsetError{Path: path, Err: ErrFormatValueMismatch}
	}
	e.buf = wire.AppendFixed64(e.buf, uint64(rv.Len()))
	iter := rv.MapRange()
	for iter.Next() {
		if err := e.encodeValue(iter.Key(), f.Key, path+".key"); err != nil {
			return err
		}
		if err := e.encodeValue(iter.Value(), f.Value, path+".value"); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encodePrimitive(rv reflect.Value, p format.Primitive, path string) error {
	switch p.Kind {
	case "unit":
		return nil
	case "bool":
		if rv.Bool() {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
		return nil
	case "i8":
		e.buf = append(e.buf, byte(rv.Int()))
		return nil
	case "u8":
		e.buf = append(e.buf, byte(rv.Uint()))
		return nil
	case "i16":
		e.buf = wire.AppendFixed16(e.buf, uint16(rv.Int()))
		return nil
	case "u16":
		e.buf = wire.AppendFixed16(e.buf, uint16(rv.Uint()))
		return nil
	case "i32":
		e.buf = wire.AppendFixed32(e.buf, uint32(rv.Int()))
		return nil
	case "u32":
		e.buf = wire.AppendFixed32(e.buf, uint32(rv.Uint()))
		return nil
	case "i64":
		e.buf = wire.AppendFixed64(e.buf, uint64(rv.Int()))
		return nil
	case "u64":
		e.buf = wire.AppendFixed64(e.buf, rv.Uint())
		return nil
	case "i128", "u128":
		lo, hi, err := wide128(rv, path)
		if err != nil {
			return err
		}
		e.buf = wire.AppendFixed128(e.buf, lo, hi)
		return nil
	case "f32":
		e.buf = wire.AppendFloat32(e.buf, float32(rv.Float()))
		return nil
	case "f64":
		e.buf = wire.AppendFloat64(e.buf, rv.Float())
		return nil
	case "char":
		return &offsetError{Path: path, Err: fmt.Errorf("%w: char", ErrNotImplemented)}
	case "str":
		s := rv.String()
		e.buf = wire.AppendFixed64(e.buf, uint64(len(s)))
		e.buf = append(e.buf, s...)
		return nil
	case "bytes":
		b := rv.Bytes()
		e.buf = wire.AppendFixed64(e.buf, uint64(len(b)))
		e.buf = append(e.buf, b...)
		return nil
	default:
		return &offsetError{Path: path, Err: fmt.Errorf("bincode: unknown primitive kind %q", p.Kind)}
	}
}

// wide128 reads the (Lo, Hi uint64) shape of the tracer's Uint128/Int128
// wrapper types by field name rather than by importing pkg/tracer, which
// would create a dependency from the codec layer back up to the tracer.
func wide128(rv reflect.Value, path string) (lo, hi uint64, err error) {
	if rv.Kind() != reflect.Struct || rv.NumField() != 2 {
		return 0, 0, &offsetError{Path: path, Err: ErrFormatValueMismatch}
	}
	loF := rv.FieldByName("Lo")
	hiF := rv.FieldByName("Hi")
	if !loF.IsValid() || !hiF.IsValid() {
		return 0, 0, &offsetError{Path: path, Err: ErrFormatValueMismatch}
	}
	return loF.Uint(), hiF.Uint(), nil
}
