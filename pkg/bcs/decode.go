package bcs

import (
	"fmt"
	"reflect"

	"github.com/blockberries/witness/internal/variant"
	"github.com/blockberries/witness/internal/wire"
	"github.com/blockberries/witness/pkg/format"
)

// Unmarshal decodes BCS-encoded data into out, a non-nil pointer whose
// pointee's shape must match f, and returns the number of bytes consumed.
func (c *Codec) Unmarshal(f format.Format, data []byte, out any) (int, error) {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return 0, &offsetError{Path: "$", Err: fmt.Errorf("bcs: Unmarshal requires a non-nil pointer, got %T", out)}
	}
	dec := &decoder{reg: c.Registry, variants: c.Variants, data: data}
	if err := dec.decodeInto(rv.Elem(), f, "$"); err != nil {
		return 0, err
	}
	return dec.pos, nil
}

type decoder struct {
	reg      *format.Registry
	variants *variant.Registry
	data     []byte
	pos      int
	depth    int
}

func (d *decoder) enter(path string) error {
	d.depth++
	if d.depth > MaxContainerDepth {
		return &offsetError{Offset: d.pos, Path: path, Err: ErrMaxDepthExceeded}
	}
	return nil
}

func (d *decoder) leave() { d.depth-- }

func (d *decoder) remaining() []byte { return d.data[d.pos:] }

func (d *decoder) need(n int, path string) error {
	if len(d.data)-d.pos < n {
		return &offsetError{Offset: d.pos, Path: path, Err: ErrUnexpectedEOF}
	}
	return nil
}

func (d *decoder) take(n int, path string) ([]byte, error) {
	if err := d.need(n, path); err != nil {
		return nil, err
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) uleb128(path string) (uint32, error) {
	v, n, err := wire.DecodeUleb128(d.remaining())
	if err != nil {
		return 0, &offsetError{Offset: d.pos, Path: path, Err: err}
	}
	d.pos += n
	return v, nil
}

func (d *decoder) decodeInto(dst reflect.Value, f format.Format, path string) error {
	switch f := f.(type) {
	case format.Primitive:
		return d.decodePrimitive(dst, f, path)

	case format.TypeName:
		cf, ok := d.reg.Get(f.Name)
		if !ok {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrUnknownContainer}
		}
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		return d.decodeContainer(dst, f.Name, cf, path)

	case format.Option:
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		tag, err := d.take(1, path)
		if err != nil {
			return err
		}
		if dst.Kind() != reflect.Ptr {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		switch tag[0] {
		case 0:
			dst.Set(reflect.Zero(dst.Type()))
			return nil
		case 1:
			ptr := reflect.New(dst.Type().Elem())
			if err := d.decodeInto(ptr.Elem(), f.Inner, path+".some"); err != nil {
				return err
			}
			dst.Set(ptr)
			return nil
		default:
			return &offsetError{Offset: d.pos - 1, Path: path, Err: ErrNonCanonicalBool}
		}

	case format.Seq:
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		n, err := d.uleb128(path)
		if err != nil {
			return err
		}
		if dst.Kind() != reflect.Slice {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		sl := reflect.MakeSlice(dst.Type(), int(n), int(n))
		for i := 0; i < int(n); i++ {
			if err := d.decodeInto(sl.Index(i), f.Element, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		dst.Set(sl)
		return nil

	case format.Map:
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		return d.decodeMap(dst, f, path)

	case format.Tuple:
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		for i, item := range f.Items {
			ev, err := tupleElement(dst, i)
			if err != nil {
				return err
			}
			if err := d.decodeInto(ev, item, fmt.Sprintf("%s.%d", path, i)); err != nil {
				return err
			}
		}
		return nil

	case format.TupleArray:
		if err := d.enter(path); err != nil {
			return err
		}
		defer d.leave()
		if dst.Kind() != reflect.Array || uint64(dst.Len()) != f.Size {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		for i := 0; i < dst.Len(); i++ {
			if err := d.decodeInto(dst.Index(i), f.Content, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil

	default:
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: cannot decode unresolved format %s", f)}
	}
}

func (d *decoder) decodeContainer(dst reflect.Value, name string, cf format.ContainerFormat, path string) error {
	switch cf := cf.(type) {
	case format.UnitStruct:
		return nil

	case format.NewTypeStruct:
		if dst.Kind() != reflect.Struct || dst.NumField() != 1 {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		return d.decodeInto(dst.Field(0), cf.Inner, path+"."+name)

	case format.TupleStruct:
		for i, f := range cf.Fields {
			fv, err := tupleElement(dst, i)
			if err != nil {
				return err
			}
			if err := d.decodeInto(fv, f, fmt.Sprintf("%s.%s[%d]", path, name, i)); err != nil {
				return err
			}
		}
		return nil

	case format.Struct:
		for _, nf := range cf.Fields {
			fv := dst.FieldByName(nf.Name)
			if !fv.IsValid() {
				return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("%w: %s missing field %s", ErrFormatValueMismatch, name, nf.Name)}
			}
			if err := d.decodeInto(fv, nf.Format, path+"."+nf.Name); err != nil {
				return err
			}
		}
		return nil

	case *format.Enum:
		return d.decodeEnum(dst, name, cf, path)

	default:
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: unknown container format %T", cf)}
	}
}

func (d *decoder) decodeEnum(dst reflect.Value, name string, cf *format.Enum, path string) error {
	if d.variants == nil {
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: no variant registry configured for enum %q", name)}
	}
	idx, err := d.uleb128(path)
	if err != nil {
		return err
	}
	ev, ok := cf.Variants[idx]
	if !ok {
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: variant index %d not defined for %q", idx, name)}
	}
	concrete, _, err := d.variants.New(name, idx)
	if err != nil {
		return &offsetError{Offset: d.pos, Path: path, Err: err}
	}
	if err := d.decodeVariantBody(concrete, ev.Format, path+"."+ev.Name); err != nil {
		return err
	}
	boxed, err := d.variants.Box(name, concrete)
	if err != nil {
		return &offsetError{Offset: d.pos, Path: path, Err: err}
	}
	if dst.Kind() != reflect.Interface {
		return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
	}
	dst.Set(boxed)
	return nil
}

func (d *decoder) decodeVariantBody(dst reflect.Value, vf format.VariantFormat, path string) error {
	switch vf := vf.(type) {
	case format.VariantUnit:
		return nil
	case format.VariantNewType:
		if dst.Kind() != reflect.Struct || dst.NumField() != 1 {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		return d.decodeInto(dst.Field(0), vf.Inner, path)
	case format.VariantTuple:
		for i, f := range vf.Fields {
			fv, err := tupleElement(dst, i)
			if err != nil {
				return err
			}
			if err := d.decodeInto(fv, f, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case format.VariantStruct:
		for _, nf := range vf.Fields {
			fv := dst.FieldByName(nf.Name)
			if !fv.IsValid() {
				return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
			}
			if err := d.decodeInto(fv, nf.Format, path+"."+nf.Name); err != nil {
				return err
			}
		}
		return nil
	default:
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: unknown variant format %T", vf)}
	}
}

// decodeMap reads n (key, value) pairs and requires, per the canonical
// map invariant, that the raw encoded key bytes appear in strictly
// increasing order; any tie or inversion means the keys were not pairwise
// distinct and canonically ordered, so decoding fails per the contract.
func (d *decoder) decodeMap(dst reflect.Value, f format.Map, path string) error {
	if dst.Kind() != reflect.Map {
		return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
	}
	n, err := d.uleb128(path)
	if err != nil {
		return err
	}
	m := reflect.MakeMapWithSize(dst.Type(), int(n))
	var prevKey []byte
	for i := 0; i < int(n); i++ {
		start := d.pos
		kv := reflect.New(dst.Type().Key()).Elem()
		if err := d.decodeInto(kv, f.Key, fmt.Sprintf("%s.key[%d]", path, i)); err != nil {
			return err
		}
		keyBytes := d.data[start:d.pos]
		if prevKey != nil && compareBytes(prevKey, keyBytes) >= 0 {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrMapKeysNotDistinct}
		}
		prevKey = keyBytes

		vv := reflect.New(dst.Type().Elem()).Elem()
		if err := d.decodeInto(vv, f.Value, fmt.Sprintf("%s.value[%d]", path, i)); err != nil {
			return err
		}
		m.SetMapIndex(kv, vv)
	}
	dst.Set(m)
	return nil
}

func (d *decoder) decodePrimitive(dst reflect.Value, p format.Primitive, path string) error {
	switch p.Kind {
	case "unit":
		return nil
	case "bool":
		b, err := d.take(1, path)
		if err != nil {
			return err
		}
		switch b[0] {
		case 0:
			dst.SetBool(false)
		case 1:
			dst.SetBool(true)
		default:
			return &offsetError{Offset: d.pos - 1, Path: path, Err: ErrNonCanonicalBool}
		}
		return nil
	case "i8":
		b, err := d.take(1, path)
		if err != nil {
			return err
		}
		dst.SetInt(int64(int8(b[0])))
		return nil
	case "u8":
		b, err := d.take(1, path)
		if err != nil {
			return err
		}
		dst.SetUint(uint64(b[0]))
		return nil
	case "i16":
		b, err := d.take(wire.Fixed16Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed16(b)
		dst.SetInt(int64(int16(v)))
		return nil
	case "u16":
		b, err := d.take(wire.Fixed16Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed16(b)
		dst.SetUint(uint64(v))
		return nil
	case "i32":
		b, err := d.take(wire.Fixed32Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed32(b)
		dst.SetInt(int64(int32(v)))
		return nil
	case "u32":
		b, err := d.take(wire.Fixed32Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed32(b)
		dst.SetUint(uint64(v))
		return nil
	case "i64":
		b, err := d.take(wire.Fixed64Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed64(b)
		dst.SetInt(int64(v))
		return nil
	case "u64":
		b, err := d.take(wire.Fixed64Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFixed64(b)
		dst.SetUint(v)
		return nil
	case "i128", "u128":
		b, err := d.take(wire.Fixed128Size, path)
		if err != nil {
			return err
		}
		lo, hi, _ := wire.DecodeFixed128(b)
		if dst.Kind() != reflect.Struct || dst.NumField() != 2 {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		loF, hiF := dst.FieldByName("Lo"), dst.FieldByName("Hi")
		if !loF.IsValid() || !hiF.IsValid() {
			return &offsetError{Offset: d.pos, Path: path, Err: ErrFormatValueMismatch}
		}
		loF.SetUint(lo)
		hiF.SetUint(hi)
		return nil
	case "f32":
		b, err := d.take(wire.Fixed32Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFloat32(b)
		dst.SetFloat(float64(v))
		return nil
	case "f64":
		b, err := d.take(wire.Fixed64Size, path)
		if err != nil {
			return err
		}
		v, _ := wire.DecodeFloat64(b)
		dst.SetFloat(v)
		return nil
	case "char":
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("%w: char", ErrNotImplemented)}
	case "str":
		n, err := d.uleb128(path)
		if err != nil {
			return err
		}
		b, err := d.take(int(n), path)
		if err != nil {
			return err
		}
		dst.SetString(string(b))
		return nil
	case "bytes":
		n, err := d.uleb128(path)
		if err != nil {
			return err
		}
		b, err := d.take(int(n), path)
		if err != nil {
			return err
		}
		cp := make([]byte, len(b))
		copy(cp, b)
		dst.SetBytes(cp)
		return nil
	default:
		return &offsetError{Offset: d.pos, Path: path, Err: fmt.Errorf("bcs: unknown primitive kind %q", p.Kind)}
	}
}
