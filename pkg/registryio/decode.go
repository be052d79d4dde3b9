package registryio

import (
	"fmt"

	"github.com/blockberries/witness/pkg/format"
)

// asString requires v to already be a string; both the YAML and JSON
// decode paths normalize scalar nodes to Go strings before the tree
// reaches these functions.
func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// soleKey requires v to be a single-key map and returns that key and value.
func soleKey(v any) (string, any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, val := range m {
		return k, val, true
	}
	return "", nil, false
}

func formatFromAny(v any) (format.Format, error) {
	if s, ok := asString(v); ok {
		if p, ok := primitiveFromSpelling(s); ok {
			return p, nil
		}
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown primitive spelling %q", s)}
	}

	key, payload, ok := soleKey(v)
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected a format node, got %#v", v)}
	}

	switch key {
	case "OPTION":
		inner, err := formatFromAny(payload)
		if err != nil {
			return nil, err
		}
		return format.Option{Inner: inner}, nil

	case "SEQ":
		inner, err := formatFromAny(payload)
		if err != nil {
			return nil, err
		}
		return format.Seq{Element: inner}, nil

	case "MAP":
		m, ok := payload.(map[string]any)
		if !ok {
			return nil, &DecodeError{Reason: "MAP requires KEY and VALUE"}
		}
		keyFmt, err := formatFromAny(m["KEY"])
		if err != nil {
			return nil, err
		}
		valFmt, err := formatFromAny(m["VALUE"])
		if err != nil {
			return nil, err
		}
		return format.Map{Key: keyFmt, Value: valFmt}, nil

	case "TUPLE":
		items, err := formatSlice(payload)
		if err != nil {
			return nil, err
		}
		return format.Tuple{Items: items}, nil

	case "TUPLEARRAY":
		m, ok := payload.(map[string]any)
		if !ok {
			return nil, &DecodeError{Reason: "TUPLEARRAY requires CONTENT and SIZE"}
		}
		content, err := formatFromAny(m["CONTENT"])
		if err != nil {
			return nil, err
		}
		size, err := asUint64(m["SIZE"])
		if err != nil {
			return nil, err
		}
		return format.TupleArray{Content: content, Size: size}, nil

	case "TYPENAME":
		name, ok := asString(payload)
		if !ok {
			return nil, &DecodeError{Reason: "TYPENAME requires a string"}
		}
		return format.TypeName{Name: name}, nil

	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown format key %q", key)}
	}
}

func formatSlice(v any) ([]format.Format, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Reason: "expected a list of formats"}
	}
	out := make([]format.Format, len(items))
	for i, it := range items {
		f, err := formatFromAny(it)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func namedFieldSlice(v any) ([]format.NamedField, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &DecodeError{Reason: "expected a list of named fields"}
	}
	out := make([]format.NamedField, len(items))
	for i, it := range items {
		name, payload, ok := soleKey(it)
		if !ok {
			return nil, &DecodeError{Reason: "expected a single-key {name: format} entry"}
		}
		f, err := formatFromAny(payload)
		if err != nil {
			return nil, err
		}
		out[i] = format.NamedField{Name: name, Format: f}
	}
	return out, nil
}

func variantFromAny(v any) (format.VariantFormat, error) {
	if s, ok := asString(v); ok {
		if s == "UNIT" {
			return format.VariantUnit{}, nil
		}
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown variant spelling %q", s)}
	}

	key, payload, ok := soleKey(v)
	if !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("expected a variant node, got %#v", v)}
	}

	switch key {
	case "NEWTYPE":
		inner, err := formatFromAny(payload)
		if err != nil {
			return nil, err
		}
		return format.VariantNewType{Inner: inner}, nil
	case "TUPLE":
		items, err := formatSlice(payload)
		if err != nil {
			return nil, err
		}
		return format.VariantTuple{Fields: items}, nil
	case "STRUCT":
		fields, err := namedFieldSlice(payload)
		if err != nil {
			return nil, err
		}
		return format.VariantStruct{Fields: fields}, nil
	default:
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown variant key %q", key)}
	}
}

func containerFromAny(name string, v any) (format.ContainerFormat, error) {
	if s, ok := asString(v); ok {
		if s == "UNIT_STRUCT" {
			return format.UnitStruct{}, nil
		}
		return nil, &DecodeError{Container: name, Reason: fmt.Sprintf("unknown container spelling %q", s)}
	}

	key, payload, ok := soleKey(v)
	if !ok {
		return nil, &DecodeError{Container: name, Reason: fmt.Sprintf("expected a container node, got %#v", v)}
	}

	switch key {
	case "NEWTYPE_STRUCT":
		inner, err := formatFromAny(payload)
		if err != nil {
			return nil, &DecodeError{Container: name, Reason: err.Error()}
		}
		return format.NewTypeStruct{Inner: inner}, nil

	case "TUPLE_STRUCT":
		items, err := formatSlice(payload)
		if err != nil {
			return nil, &DecodeError{Container: name, Reason: err.Error()}
		}
		return format.TupleStruct{Fields: items}, nil

	case "STRUCT":
		fields, err := namedFieldSlice(payload)
		if err != nil {
			return nil, &DecodeError{Container: name, Reason: err.Error()}
		}
		return format.Struct{Fields: fields}, nil

	case "ENUM":
		m, ok := payload.(map[string]any)
		if !ok {
			return nil, &DecodeError{Container: name, Reason: "ENUM requires a mapping of index to variant"}
		}
		enum := format.NewEnum()
		for idxStr, entry := range m {
			idx, err := asVariantIndex(idxStr)
			if err != nil {
				return nil, &DecodeError{Container: name, Reason: err.Error()}
			}
			variantName, variantPayload, ok := soleKey(entry)
			if !ok {
				return nil, &DecodeError{Container: name, Reason: "expected a single-key {name: VARIANT_FORMAT} entry"}
			}
			vf, err := variantFromAny(variantPayload)
			if err != nil {
				return nil, &DecodeError{Container: name, Reason: err.Error()}
			}
			enum.Variants[idx] = format.EnumVariant{Name: variantName, Format: vf}
		}
		return enum, nil

	default:
		return nil, &DecodeError{Container: name, Reason: fmt.Sprintf("unknown container key %q", key)}
	}
}
