package tracer

import "reflect"

// EnumVariantSpec names one case of an enum container: the Go concrete
// type that implements the enum's interface, in the position that becomes
// its VariantIndex.
//
// Order matters for recursive enums: list the terminating variant first,
// since the deserialization tracer's base-case rule picks the first
// variant when a recursion point forces a choice.
type EnumVariantSpec struct {
	Name string
	Type reflect.Type
}

// EnumSpec describes all variants of one enum container. Go cannot
// enumerate an interface's implementations via reflection alone (unlike
// Rust's derive-generated match arms), so the orchestrator requires this
// explicit registration before it can trace an interface-typed value or
// run deserialization tracing that needs to synthesize every variant.
type EnumSpec struct {
	Name     string
	Variants []EnumVariantSpec
}

func (e EnumSpec) indexOf(concrete reflect.Type) (uint32, bool) {
	for i, v := range e.Variants {
		if v.Type == concrete {
			return uint32(i), true
		}
	}
	return 0, false
}

// New constructs a zero value of the variant's concrete Go type.
func (v EnumVariantSpec) New() reflect.Value {
	return reflect.New(v.Type).Elem()
}
