package extract

import (
	"fmt"
	"go/types"
	"sort"

	"github.com/blockberries/witness/pkg/format"
)

// tupleContainerMethod and tupleVariantMethod name the opt-in marker
// methods a Go type can implement to be collected as a TupleStruct /
// VariantTuple instead of the default Struct / VariantStruct shape,
// mirroring pkg/tracer's TupleContainer/TupleVariant interfaces — but
// checked here via go/types against source, not via reflect against a
// live value.
const (
	tupleContainerMethod = "WitnessTupleStruct"
	tupleVariantMethod   = "WitnessTupleVariant"
)

// RegistryBuilder converts collected type information into a
// format.Registry.
type RegistryBuilder struct {
	types      map[string]*TypeInfo
	interfaces map[string]*InterfaceInfo
	enums      map[string]*EnumInfo
	reg        *format.Registry
	warnings   []string

	// implemented holds the qualified names of types folded into some
	// interface's Enum, so Build skips emitting them again as standalone
	// containers.
	implemented map[string]bool
}

// NewRegistryBuilder creates a new registry builder from a collector's output.
func NewRegistryBuilder(types map[string]*TypeInfo, interfaces map[string]*InterfaceInfo, enums map[string]*EnumInfo) *RegistryBuilder {
	return &RegistryBuilder{
		types:       types,
		interfaces:  interfaces,
		enums:       enums,
		implemented: make(map[string]bool),
	}
}

// Warnings returns any warnings generated while building the registry.
func (b *RegistryBuilder) Warnings() []string {
	return b.warnings
}

func (b *RegistryBuilder) addWarning(msg string) {
	b.warnings = append(b.warnings, msg)
}

// Build constructs a registry from the collected types, interfaces, and
// C-style enums.
func (b *RegistryBuilder) Build() (*format.Registry, error) {
	b.reg = format.NewRegistry()

	b.buildCStyleEnums()
	b.buildInterfaceEnums()
	b.buildStructs()

	return b.reg.Finalize()
}

// buildCStyleEnums handles Go's "named int type + const block" convention:
// each constant becomes a unit variant, in ascending value order.
func (b *RegistryBuilder) buildCStyleEnums() {
	for _, name := range sortedKeys(b.enums) {
		info := b.enums[name]
		if len(info.Values) == 0 {
			continue
		}

		values := make([]*EnumValueInfo, len(info.Values))
		copy(values, info.Values)
		sort.Slice(values, func(i, j int) bool { return values[i].Number < values[j].Number })

		enum := format.NewEnum()
		for i, v := range values {
			enum.Variants[uint32(i)] = format.EnumVariant{Name: v.Name, Format: format.VariantUnit{}}
		}
		b.reg.Set(info.Name, enum)
	}
}

// buildInterfaceEnums handles Go's "interface + implementing structs"
// convention: each implementation becomes a variant, classified by the
// same arity/marker rule pkg/tracer's classifyContainer applies at
// runtime.
func (b *RegistryBuilder) buildInterfaceEnums() {
	for _, name := range sortedKeys(b.interfaces) {
		iface := b.interfaces[name]
		if len(iface.Implementations) == 0 {
			continue
		}

		impls := make([]*TypeInfo, len(iface.Implementations))
		copy(impls, iface.Implementations)
		sort.Slice(impls, func(i, j int) bool { return impls[i].Name < impls[j].Name })

		enum := format.NewEnum()
		for i, impl := range impls {
			qualified := impl.PkgPath + "." + impl.Name
			b.implemented[qualified] = true
			enum.Variants[uint32(i)] = format.EnumVariant{
				Name:   impl.Name,
				Format: b.variantShape(impl),
			}
		}
		b.reg.Set(iface.Name, enum)
	}
}

// buildStructs emits a standalone container for every collected struct
// type that was not folded into an interface's enum above.
func (b *RegistryBuilder) buildStructs() {
	for _, name := range sortedKeys(b.types) {
		typ := b.types[name]
		if b.implemented[name] {
			continue
		}
		b.reg.Set(typ.Name, b.containerShape(typ))
	}
}

func (b *RegistryBuilder) containerShape(typ *TypeInfo) format.ContainerFormat {
	if hasMarkerMethod(typ.GoType, tupleContainerMethod) {
		fields := make([]format.Format, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = b.goTypeToFormat(f.GoType)
		}
		return format.TupleStruct{Fields: fields}
	}

	switch len(typ.Fields) {
	case 0:
		return format.UnitStruct{}
	case 1:
		return format.NewTypeStruct{Inner: b.goTypeToFormat(typ.Fields[0].GoType)}
	default:
		fields := make([]format.NamedField, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = format.NamedField{Name: f.Name, Format: b.goTypeToFormat(f.GoType)}
		}
		return format.Struct{Fields: fields}
	}
}

func (b *RegistryBuilder) variantShape(typ *TypeInfo) format.VariantFormat {
	if hasMarkerMethod(typ.GoType, tupleVariantMethod) {
		fields := make([]format.Format, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = b.goTypeToFormat(f.GoType)
		}
		return format.VariantTuple{Fields: fields}
	}

	switch len(typ.Fields) {
	case 0:
		return format.VariantUnit{}
	case 1:
		return format.VariantNewType{Inner: b.goTypeToFormat(typ.Fields[0].GoType)}
	default:
		fields := make([]format.NamedField, len(typ.Fields))
		for i, f := range typ.Fields {
			fields[i] = format.NamedField{Name: f.Name, Format: b.goTypeToFormat(f.GoType)}
		}
		return format.VariantStruct{Fields: fields}
	}
}

// goTypeToFormat maps a go/types.Type to the Format it traces to at
// runtime. It mirrors pkg/tracer's reflect-driven walk, but reasons about
// declared types instead of live values — so a named type that isn't one
// of the collected containers is assumed to be defined (and therefore
// resolvable) elsewhere in the registry, rather than expanded inline.
func (b *RegistryBuilder) goTypeToFormat(t types.Type) format.Format {
	if ptr, ok := t.(*types.Pointer); ok {
		return format.Option{Inner: b.goTypeToFormat(ptr.Elem())}
	}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		qualified := ""
		if obj.Pkg() != nil {
			qualified = obj.Pkg().Path() + "." + obj.Name()
		}

		if _, ok := b.enums[qualified]; ok {
			return format.TypeName{Name: obj.Name()}
		}
		if _, ok := b.interfaces[qualified]; ok {
			return format.TypeName{Name: obj.Name()}
		}
		if _, ok := b.types[qualified]; ok {
			return format.TypeName{Name: obj.Name()}
		}

		if wide, isWide := b.wide128Format(named); isWide {
			return wide
		}

		// Unknown named type: recurse to its underlying shape rather than
		// treat it as a registry reference that will never resolve.
		return b.goTypeToFormat(named.Underlying())
	}

	switch tt := t.(type) {
	case *types.Basic:
		return b.basicTypeToFormat(tt)

	case *types.Slice:
		if basic, ok := tt.Elem().(*types.Basic); ok && (basic.Kind() == types.Byte || basic.Kind() == types.Uint8) {
			return format.Bytes
		}
		return format.Seq{Element: b.goTypeToFormat(tt.Elem())}

	case *types.Array:
		return format.TupleArray{Content: b.goTypeToFormat(tt.Elem()), Size: uint64(tt.Len())}

	case *types.Map:
		return format.Map{Key: b.goTypeToFormat(tt.Key()), Value: b.goTypeToFormat(tt.Elem())}

	case *types.Interface:
		b.addWarning("field of unregistered interface type treated as opaque bytes")
		return format.Bytes

	default:
		b.addWarning(fmt.Sprintf("unhandled Go type %s treated as opaque bytes", t.String()))
		return format.Bytes
	}
}

// wide128Format recognizes the (Lo, Hi uint64) shape pkg/bcs and
// pkg/bincode duck-type for 128-bit integers. The wire shape does not
// distinguish signedness, so this maps to U128; a type meant to carry a
// signed 128-bit value should be given a field name or doc comment a
// human reviews and corrects to I128 in the generated registry.
func (b *RegistryBuilder) wide128Format(named *types.Named) (format.Format, bool) {
	st, ok := named.Underlying().(*types.Struct)
	if !ok || st.NumFields() != 2 {
		return nil, false
	}
	var lo, hi bool
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		basic, ok := f.Type().(*types.Basic)
		if !ok || basic.Kind() != types.Uint64 {
			return nil, false
		}
		switch f.Name() {
		case "Lo":
			lo = true
		case "Hi":
			hi = true
		}
	}
	if lo && hi {
		return format.U128, true
	}
	return nil, false
}

func (b *RegistryBuilder) basicTypeToFormat(t *types.Basic) format.Format {
	switch t.Kind() {
	case types.Bool:
		return format.Bool
	case types.Int8:
		return format.I8
	case types.Int16:
		return format.I16
	case types.Int32, types.Rune:
		return format.I32
	case types.Int64, types.Int:
		return format.I64
	case types.Uint8, types.Byte:
		return format.U8
	case types.Uint16:
		return format.U16
	case types.Uint32:
		return format.U32
	case types.Uint64, types.Uint:
		return format.U64
	case types.Float32:
		return format.F32
	case types.Float64:
		return format.F64
	case types.String:
		return format.Str
	default:
		b.addWarning(fmt.Sprintf("basic type %s has no direct Format mapping, treated as bytes", t.String()))
		return format.Bytes
	}
}

// hasMarkerMethod checks both T and *T for a method named name, the same
// either-receiver check pkg/tracer's implementsEither performs via
// reflect.
func hasMarkerMethod(t types.Type, name string) bool {
	if lookupMethod(t, name) {
		return true
	}
	if ptr, ok := t.(*types.Pointer); ok {
		return lookupMethod(ptr.Elem(), name)
	}
	return lookupMethod(types.NewPointer(t), name)
}

func lookupMethod(t types.Type, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(t, true, nil, name)
	_, ok := obj.(*types.Func)
	return ok
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
