package schema

import (
	"fmt"
	"sort"

	"github.com/blockberries/witness/pkg/format"
)

// LoweringError reports a schema construct ToRegistry could not translate
// into a Format.
type LoweringError struct {
	Position Position
	Message  string
}

func (e *LoweringError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// lowerer carries the name sets ToRegistry needs to decide whether a
// NamedType reference resolves to a container already known to the
// schema, the same role RegistryBuilder's enums/interfaces/types maps
// play when pkg/extract lowers Go source instead of schema text.
type lowerer struct {
	messages   map[string]*Message
	enums      map[string]*Enum
	interfaces map[string]*Interface
}

// ToRegistry lowers a parsed, validated schema into a format.Registry. Field
// declaration order in the schema file becomes the struct's wire order;
// the grammar has no per-field numbers.
func (s *Schema) ToRegistry() (*format.Registry, error) {
	l := &lowerer{
		messages:   make(map[string]*Message),
		enums:      make(map[string]*Enum),
		interfaces: make(map[string]*Interface),
	}
	for _, m := range s.Messages {
		l.messages[m.Name] = m
	}
	for _, e := range s.Enums {
		l.enums[e.Name] = e
	}
	for _, i := range s.Interfaces {
		l.interfaces[i.Name] = i
	}

	reg := format.NewRegistry()

	implemented := make(map[string]bool)
	for _, iface := range s.Interfaces {
		enum := format.NewEnum()
		impls := make([]*Implementation, len(iface.Implementations))
		copy(impls, iface.Implementations)
		sort.Slice(impls, func(i, j int) bool { return impls[i].Type.Name < impls[j].Type.Name })

		for i, impl := range impls {
			msg, ok := l.messages[impl.Type.Name]
			if !ok {
				return nil, &LoweringError{Position: impl.Position, Message: fmt.Sprintf("interface %q implementation %q does not name a known message", iface.Name, impl.Type.Name)}
			}
			implemented[msg.Name] = true
			variant, err := l.messageVariant(msg)
			if err != nil {
				return nil, err
			}
			enum.Variants[uint32(i)] = format.EnumVariant{Name: msg.Name, Format: variant}
		}
		reg.Set(iface.Name, enum)
	}

	for _, e := range s.Enums {
		values := make([]*EnumValue, len(e.Values))
		copy(values, e.Values)
		sort.Slice(values, func(i, j int) bool { return values[i].Number < values[j].Number })

		enum := format.NewEnum()
		for i, v := range values {
			enum.Variants[uint32(i)] = format.EnumVariant{Name: v.Name, Format: format.VariantUnit{}}
		}
		reg.Set(e.Name, enum)
	}

	for _, m := range s.Messages {
		if implemented[m.Name] {
			continue
		}
		cf, err := l.messageContainer(m)
		if err != nil {
			return nil, err
		}
		reg.Set(m.Name, cf)
	}

	return reg.Finalize()
}

func (l *lowerer) messageContainer(m *Message) (format.ContainerFormat, error) {
	switch len(m.Fields) {
	case 0:
		return format.UnitStruct{}, nil
	case 1:
		inner, err := l.typeRefToFormat(m.Fields[0])
		if err != nil {
			return nil, err
		}
		return format.NewTypeStruct{Inner: inner}, nil
	default:
		fields, err := l.namedFields(m.Fields)
		if err != nil {
			return nil, err
		}
		return format.Struct{Fields: fields}, nil
	}
}

func (l *lowerer) messageVariant(m *Message) (format.VariantFormat, error) {
	switch len(m.Fields) {
	case 0:
		return format.VariantUnit{}, nil
	case 1:
		inner, err := l.typeRefToFormat(m.Fields[0])
		if err != nil {
			return nil, err
		}
		return format.VariantNewType{Inner: inner}, nil
	default:
		fields, err := l.namedFields(m.Fields)
		if err != nil {
			return nil, err
		}
		return format.VariantStruct{Fields: fields}, nil
	}
}

func (l *lowerer) namedFields(fields []*Field) ([]format.NamedField, error) {
	out := make([]format.NamedField, len(fields))
	for i, f := range fields {
		ff, err := l.typeRefToFormat(f)
		if err != nil {
			return nil, err
		}
		out[i] = format.NamedField{Name: f.Name, Format: ff}
	}
	return out, nil
}

// typeRefToFormat lowers a field's declared type, applying the protobuf-
// style repeated/optional modifiers on top of whatever shape the type
// reference itself already carries.
func (l *lowerer) typeRefToFormat(f *Field) (format.Format, error) {
	if f.MapKey != nil && f.MapValue != nil {
		key, err := l.resolveTypeRef(f.MapKey)
		if err != nil {
			return nil, err
		}
		val, err := l.resolveTypeRef(f.MapValue)
		if err != nil {
			return nil, err
		}
		return format.Map{Key: key, Value: val}, nil
	}

	ff, err := l.resolveTypeRef(f.Type)
	if err != nil {
		return nil, err
	}
	if f.Repeated {
		ff = format.Seq{Element: ff}
	}
	if f.Optional {
		ff = format.Option{Inner: ff}
	}
	return ff, nil
}

func (l *lowerer) resolveTypeRef(t TypeRef) (format.Format, error) {
	switch tt := t.(type) {
	case *ScalarType:
		return l.scalarToFormat(tt)
	case *NamedType:
		if tt.Package != "" {
			return nil, &LoweringError{Position: tt.Position, Message: fmt.Sprintf("cross-schema type reference %q is not supported", tt.String())}
		}
		if _, ok := l.messages[tt.Name]; ok {
			return format.TypeName{Name: tt.Name}, nil
		}
		if _, ok := l.enums[tt.Name]; ok {
			return format.TypeName{Name: tt.Name}, nil
		}
		if _, ok := l.interfaces[tt.Name]; ok {
			return format.TypeName{Name: tt.Name}, nil
		}
		return nil, &LoweringError{Position: tt.Position, Message: fmt.Sprintf("unknown type %q", tt.Name)}
	case *ArrayType:
		elem, err := l.resolveTypeRef(tt.Element)
		if err != nil {
			return nil, err
		}
		if scalar, ok := tt.Element.(*ScalarType); ok && scalar.Name == "uint8" {
			if tt.Size == 0 {
				return format.Bytes, nil
			}
		}
		if tt.Size > 0 {
			return format.TupleArray{Content: elem, Size: uint64(tt.Size)}, nil
		}
		return format.Seq{Element: elem}, nil
	case *MapType:
		key, err := l.resolveTypeRef(tt.Key)
		if err != nil {
			return nil, err
		}
		val, err := l.resolveTypeRef(tt.Value)
		if err != nil {
			return nil, err
		}
		return format.Map{Key: key, Value: val}, nil
	case *PointerType:
		inner, err := l.resolveTypeRef(tt.Element)
		if err != nil {
			return nil, err
		}
		return format.Option{Inner: inner}, nil
	default:
		return nil, &LoweringError{Position: t.Pos(), Message: fmt.Sprintf("unhandled type reference %T", t)}
	}
}

func (l *lowerer) scalarToFormat(t *ScalarType) (format.Format, error) {
	switch t.Name {
	case "bool":
		return format.Bool, nil
	case "int8":
		return format.I8, nil
	case "int16":
		return format.I16, nil
	case "int32":
		return format.I32, nil
	case "int64", "int":
		return format.I64, nil
	case "uint8":
		return format.U8, nil
	case "uint16":
		return format.U16, nil
	case "uint32":
		return format.U32, nil
	case "uint64", "uint":
		return format.U64, nil
	case "float32":
		return format.F32, nil
	case "float64":
		return format.F64, nil
	case "string":
		return format.Str, nil
	case "bytes":
		return format.Bytes, nil
	default:
		return nil, &LoweringError{Position: t.Position, Message: fmt.Sprintf("scalar type %q has no Format mapping", t.Name)}
	}
}
