// Package tracer implements the format-tracing engine: a pseudo-serializer
// that discovers formats by walking real values, and a pseudo-deserializer
// that discovers formats by synthesizing witness values, plus the
// orchestrator that drives both to a finalized registry.
//
// Go has no Rust-style derive macros to hang a generic serialize/deserialize
// hook off of, so the default path walks a value structurally via reflect.
// Types that need custom behavior opt in by implementing Marshaler and/or
// Unmarshaler, a trait-based dispatch escape hatch from the default walk.
package tracer

// Config mirrors the orchestrator's tunable defaults.
type Config struct {
	// RecordSampleForNewTypeStruct replays a stored sample when visiting a
	// NewTypeStruct container. Default true.
	RecordSampleForNewTypeStruct bool

	// RecordSampleForStruct replays a stored sample when visiting a Struct
	// container. Default false.
	RecordSampleForStruct bool

	// RecordSampleForTupleStruct replays a stored sample when visiting a
	// TupleStruct container. Default false.
	RecordSampleForTupleStruct bool

	// RecordSampleForUnitStruct replays a stored sample when visiting a
	// UnitStruct container. Default false.
	RecordSampleForUnitStruct bool

	// IsHumanReadable is stored with the configuration only: no tracer code
	// reads it, and Serializer and Deserializer do not expose it, so
	// Marshaler/Unmarshaler implementations cannot branch on it.
	IsHumanReadable bool
}

// DefaultConfig returns the orchestrator's default configuration.
func DefaultConfig() Config {
	return Config{
		RecordSampleForNewTypeStruct: true,
	}
}

func (c Config) replaySample(shape string) bool {
	switch shape {
	case "NewTypeStruct":
		return c.RecordSampleForNewTypeStruct
	case "Struct":
		return c.RecordSampleForStruct
	case "TupleStruct":
		return c.RecordSampleForTupleStruct
	case "UnitStruct":
		return c.RecordSampleForUnitStruct
	default:
		return false
	}
}
