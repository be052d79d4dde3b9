// Package format implements the format model: a tagged sum of primitive
// and composite formats, container formats, variant formats, and the
// registry that collects them.
//
// Formats are discovered, not declared: the tracer packages build them up
// incrementally through Unify, and a Registry is only considered final once
// Normalize has chased away every Variable placeholder.
package format

import "fmt"

// Format is the sum type described in the data model's Format section.
// Concrete implementations are the primitive singletons (Unit, Bool, U8, ...)
// and the composite/named/placeholder types below.
type Format interface {
	formatNode()
	// String returns a debug representation, not the registry wire format.
	String() string
}

// Primitive is a Format with no structure of its own.
type Primitive struct {
	// Kind names the primitive: "unit", "bool", "i8".."i128", "u8".."u128",
	// "f32", "f64", "char", "str", "bytes".
	Kind string
}

func (Primitive) formatNode()      {}
func (p Primitive) String() string { return p.Kind }

var (
	Unit  = Primitive{Kind: "unit"}
	Bool  = Primitive{Kind: "bool"}
	I8    = Primitive{Kind: "i8"}
	I16   = Primitive{Kind: "i16"}
	I32   = Primitive{Kind: "i32"}
	I64   = Primitive{Kind: "i64"}
	I128  = Primitive{Kind: "i128"}
	U8    = Primitive{Kind: "u8"}
	U16   = Primitive{Kind: "u16"}
	U32   = Primitive{Kind: "u32"}
	U64   = Primitive{Kind: "u64"}
	U128  = Primitive{Kind: "u128"}
	F32   = Primitive{Kind: "f32"}
	F64   = Primitive{Kind: "f64"}
	Char  = Primitive{Kind: "char"}
	Str   = Primitive{Kind: "str"}
	Bytes = Primitive{Kind: "bytes"}
)

// primitivesByKind is used by unification and by registryio to parse the
// textual spelling of a primitive back into its singleton value.
var primitivesByKind = map[string]Primitive{
	Unit.Kind: Unit, Bool.Kind: Bool,
	I8.Kind: I8, I16.Kind: I16, I32.Kind: I32, I64.Kind: I64, I128.Kind: I128,
	U8.Kind: U8, U16.Kind: U16, U32.Kind: U32, U64.Kind: U64, U128.Kind: U128,
	F32.Kind: F32, F64.Kind: F64, Char.Kind: Char, Str.Kind: Str, Bytes.Kind: Bytes,
}

// LookupPrimitive returns the primitive singleton for a kind name, if any.
func LookupPrimitive(kind string) (Primitive, bool) {
	p, ok := primitivesByKind[kind]
	return p, ok
}

// Option is Option(T): a value that may be absent.
type Option struct{ Inner Format }

func (Option) formatNode()      {}
func (o Option) String() string { return fmt.Sprintf("Option(%s)", o.Inner) }

// Seq is Seq(T): a variable-length homogeneous sequence.
type Seq struct{ Element Format }

func (Seq) formatNode()      {}
func (s Seq) String() string { return fmt.Sprintf("Seq(%s)", s.Element) }

// Map is Map{K, V}.
type Map struct {
	Key   Format
	Value Format
}

func (Map) formatNode()      {}
func (m Map) String() string { return fmt.Sprintf("Map{%s, %s}", m.Key, m.Value) }

// Tuple is Tuple([Format]): a fixed-length heterogeneous sequence.
type Tuple struct{ Items []Format }

func (Tuple) formatNode() {}
func (t Tuple) String() string {
	return fmt.Sprintf("Tuple%v", t.Items)
}

// TupleArray is TupleArray{content, size}: a fixed-length homogeneous array.
// Distinct from Tuple: it has its own wire encoding (no length prefix) and
// does not unify with Tuple even when Size == len(Tuple.Items).
type TupleArray struct {
	Content Format
	Size    uint64
}

func (TupleArray) formatNode() {}
func (a TupleArray) String() string {
	return fmt.Sprintf("TupleArray{%s, %d}", a.Content, a.Size)
}

// TypeName is a named reference to a container defined elsewhere in the
// registry. Two TypeName formats unify only when their names are equal.
type TypeName struct{ Name string }

func (TypeName) formatNode()      {}
func (t TypeName) String() string { return fmt.Sprintf("TypeName(%s)", t.Name) }

// Variable is a resolution cell used during tracing. It must never survive
// into a finalized registry; see Normalize and Registry.Finalize.
type Variable struct{ Cell *Cell }

func (Variable) formatNode()      {}
func (v Variable) String() string { return fmt.Sprintf("Variable(%d)", v.Cell.id) }

// NewVariable allocates a fresh, unresolved Variable.
func NewVariable() Variable {
	return Variable{Cell: newCell()}
}
