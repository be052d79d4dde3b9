package tracer

import "github.com/blockberries/witness/pkg/format"

// Marshaler is a trait-based dispatch hook: a type implements it to drive
// the serialization tracer itself instead of being walked structurally by
// reflect. MarshalWitness must call exactly one Emit* method on s and
// return its result.
type Marshaler interface {
	MarshalWitness(s *Serializer) (format.Format, error)
}

// Unmarshaler is the deserialization counterpart of Marshaler: a type
// implements it to drive the deserialization tracer's witness synthesis
// itself.
type Unmarshaler interface {
	UnmarshalWitness(d *Deserializer) (any, format.Format, error)
}

// Validator lets a type reject a synthesized witness, a hook for types
// whose deserialization needs to validate inputs. The deserialization
// tracer calls Validate after synthesizing a struct value; a replayed
// sample is not validated. On a non-nil error it replays the recorded
// sample if there is one, and otherwise returns a SampleRequiredError.
type Validator interface {
	Validate() error
}

// TupleContainer is an opt-in marker a Go struct type implements to be
// traced as a TupleStruct (fields in declaration order, no field names)
// instead of the default Struct classification. Go has no tuple-struct
// syntax of its own, so this marker is the explicit way to request the
// positional shape; see classify.go.
type TupleContainer interface {
	WitnessTupleStruct()
}

// TupleVariant is TupleContainer's counterpart for an enum variant's
// payload type.
type TupleVariant interface {
	WitnessTupleVariant()
}
