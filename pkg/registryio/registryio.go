// Package registryio reads and writes the textual registry wire format:
// an ordered mapping of container name to container format, spelled with
// keyword shapes (UNIT_STRUCT, NEWTYPE_STRUCT, STRUCT, ENUM, and so on
// for the formats they carry). Two encodings are supported, YAML and
// JSON, over the same key shapes, so the format a team picks is a matter
// of taste rather than a second contract to maintain.
//
// format.Format and format.ContainerFormat are sum types the same way
// pkg/schema's ast.go nodes are; rather than teach yaml.v3/encoding/json
// custom (Un)MarshalYAML/MarshalJSON methods on those types directly
// (which would pull a serialization-library dependency into pkg/format),
// this package converts to and from a generic map[string]any/[]any tree
// that both encoders already know how to walk.
package registryio

import (
	"fmt"
	"sort"

	"github.com/blockberries/witness/pkg/format"
)

// containerToAny converts a ContainerFormat to its generic wire shape.
func containerToAny(cf format.ContainerFormat) any {
	switch cf := cf.(type) {
	case format.UnitStruct:
		return "UNIT_STRUCT"
	case format.NewTypeStruct:
		return map[string]any{"NEWTYPE_STRUCT": formatToAny(cf.Inner)}
	case format.TupleStruct:
		items := make([]any, len(cf.Fields))
		for i, f := range cf.Fields {
			items[i] = formatToAny(f)
		}
		return map[string]any{"TUPLE_STRUCT": items}
	case format.Struct:
		fields := make([]any, len(cf.Fields))
		for i, nf := range cf.Fields {
			fields[i] = map[string]any{nf.Name: formatToAny(nf.Format)}
		}
		return map[string]any{"STRUCT": fields}
	case *format.Enum:
		variants := make(map[string]any, len(cf.Variants))
		for _, idx := range cf.SortedIndices() {
			v := cf.Variants[idx]
			variants[fmt.Sprintf("%d", idx)] = map[string]any{v.Name: variantToAny(v.Format)}
		}
		return map[string]any{"ENUM": variants}
	default:
		panic(fmt.Sprintf("registryio: unknown container format %T", cf))
	}
}

// variantToAny converts a VariantFormat to its generic wire shape.
func variantToAny(vf format.VariantFormat) any {
	switch vf := vf.(type) {
	case format.VariantUnit:
		return "UNIT"
	case format.VariantNewType:
		return map[string]any{"NEWTYPE": formatToAny(vf.Inner)}
	case format.VariantTuple:
		items := make([]any, len(vf.Fields))
		for i, f := range vf.Fields {
			items[i] = formatToAny(f)
		}
		return map[string]any{"TUPLE": items}
	case format.VariantStruct:
		fields := make([]any, len(vf.Fields))
		for i, nf := range vf.Fields {
			fields[i] = map[string]any{nf.Name: formatToAny(nf.Format)}
		}
		return map[string]any{"STRUCT": fields}
	default:
		panic(fmt.Sprintf("registryio: unknown variant format %T", vf))
	}
}

// formatToAny converts a Format to its generic wire shape.
func formatToAny(f format.Format) any {
	switch f := f.(type) {
	case format.Primitive:
		return primitiveSpelling(f)
	case format.Option:
		return map[string]any{"OPTION": formatToAny(f.Inner)}
	case format.Seq:
		return map[string]any{"SEQ": formatToAny(f.Element)}
	case format.Map:
		return map[string]any{"MAP": map[string]any{
			"KEY":   formatToAny(f.Key),
			"VALUE": formatToAny(f.Value),
		}}
	case format.Tuple:
		items := make([]any, len(f.Items))
		for i, it := range f.Items {
			items[i] = formatToAny(it)
		}
		return map[string]any{"TUPLE": items}
	case format.TupleArray:
		return map[string]any{"TUPLEARRAY": map[string]any{
			"CONTENT": formatToAny(f.Content),
			"SIZE":    f.Size,
		}}
	case format.TypeName:
		return map[string]any{"TYPENAME": f.Name}
	default:
		panic(fmt.Sprintf("registryio: unknown format %T", f))
	}
}

func primitiveSpelling(p format.Primitive) string {
	switch p.Kind {
	case "unit":
		return "UNIT"
	case "bool":
		return "BOOL"
	case "str":
		return "STR"
	case "bytes":
		return "BYTES"
	case "char":
		return "CHAR"
	default:
		// i8..i128, u8..u128, f32, f64 already upper-case their own kind.
		result := ""
		for _, r := range p.Kind {
			if r >= 'a' && r <= 'z' {
				r -= 32
			}
			result += string(r)
		}
		return result
	}
}

func primitiveFromSpelling(s string) (format.Primitive, bool) {
	lower := ""
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 32
		}
		lower += string(r)
	}
	return format.LookupPrimitive(lower)
}

// registryToAny converts a whole registry to its generic wire shape, a
// single map keyed by container name. Callers needing a stable output
// order (for version-control-stable diffs) should iterate
// reg.SortedNames() rather than range over the returned map.
func registryToAny(reg *format.Registry) map[string]any {
	out := make(map[string]any, reg.Len())
	for _, name := range reg.Names() {
		cf, _ := reg.Get(name)
		out[name] = containerToAny(cf)
	}
	return out
}

func registryFromAny(tree map[string]any) (*format.Registry, error) {
	reg := format.NewRegistry()
	names := make([]string, 0, len(tree))
	for name := range tree {
		names = append(names, name)
	}
	// Insertion order does not affect the finalized registry's semantics
	// (only its debug String() ordering), so a stable sort of the decoded
	// keys gives deterministic results without needing to preserve
	// whatever order the underlying decoder produced.
	sort.Strings(names)
	for _, name := range names {
		cf, err := containerFromAny(name, tree[name])
		if err != nil {
			return nil, err
		}
		reg.Set(name, cf)
	}
	return reg, nil
}
