package tracer

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/blockberries/witness/pkg/format"
	"github.com/blockberries/witness/pkg/samples"
)

// Tracer is the orchestrator: it owns the registry a sequence of trace
// calls accumulates into, the samples store those calls read from and
// write to, and the enum registrations needed to interpret Go interface
// values. Every exported method commits its staged registry updates only
// on success, so a failed trace call never corrupts state already
// discovered by earlier calls.
type Tracer struct {
	mu       sync.Mutex
	cfg      Config
	registry *format.Registry
	samples  *samples.Store
	enumsByI map[reflect.Type]EnumSpec
}

// NewTracer returns an empty Tracer configured by cfg.
func NewTracer(cfg Config) *Tracer {
	return &Tracer{
		cfg:      cfg,
		registry: format.NewRegistry(),
		samples:  samples.New(),
		enumsByI: make(map[reflect.Type]EnumSpec),
	}
}

// Samples exposes the tracer's samples store, so callers can pre-record a
// witness value before tracing a type whose custom Validate would
// otherwise reject every synthesized value.
func (t *Tracer) Samples() *samples.Store { return t.samples }

// Registry returns a snapshot of the formats discovered so far.
func (t *Tracer) Registry() *format.Registry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.registry.Clone()
}

// RegisterEnum tells the tracer which concrete Go types implement the
// interface type T, and under what container name and variant order. Go
// reflection cannot enumerate an interface's implementers on its own
// (unlike Rust's exhaustive match over a derive-generated enum), so this
// registration is mandatory before T can be traced. Generic type
// parameters are not permitted on methods, hence the package-level form.
func RegisterEnum[T any](t *Tracer, spec EnumSpec) error {
	iface := reflect.TypeOf((*T)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("tracer: RegisterEnum requires an interface type, got %s", iface)
	}
	for _, v := range spec.Variants {
		if !v.Type.Implements(iface) && !reflect.PointerTo(v.Type).Implements(iface) {
			return fmt.Errorf("tracer: variant %s (%s) does not implement %s", v.Name, v.Type, iface)
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enumsByI[iface] = spec
	return nil
}

// TraceValue runs the serialization tracer over a real Go value, walking
// it structurally (or through its Marshaler, if it implements one) and
// merging every container it observes into the registry.
func (t *Tracer) TraceValue(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := newSession(t.cfg, t.registry, t.samples, t.enumsByI)
	if _, err := sess.serializeValue(reflect.ValueOf(v)); err != nil {
		return err
	}
	t.registry = sess.staged
	return nil
}

// TraceSimpleType runs the deserialization tracer over a type with no
// container identity of its own (a primitive, or a composite of
// primitives) and returns the format it synthesizes to, without requiring
// T to be named or touching the registry for T itself. Nested named
// containers reachable from T are still merged in.
func TraceSimpleType[T any](t *Tracer) (format.Format, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := newSession(t.cfg, t.registry, t.samples, t.enumsByI)
	typ := reflect.TypeOf((*T)(nil)).Elem()
	_, f, err := sess.deserializeType(typ)
	if err != nil {
		return nil, err
	}
	t.registry = sess.staged
	return f, nil
}

// TraceType runs the deserialization tracer over a named container type
// T, synthesizing a witness value for it (and everything it references)
// and merging the result into the registry. If T is already registered,
// TraceType is a no-op that returns the existing format reference — it is
// safe to call repeatedly as new types reference T.
func TraceType[T any](t *Tracer) (format.Format, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	name := typ.Name()
	if name == "" {
		return nil, fmt.Errorf("tracer: TraceType requires a named type, got %s", typ)
	}

	t.mu.Lock()
	if t.registry.Has(name) {
		t.mu.Unlock()
		return format.TypeName{Name: name}, nil
	}
	t.mu.Unlock()

	return traceTypeLocked(t, typ, name)
}

// TraceTypeOnce behaves like TraceType but reports an error instead of
// silently skipping when T is already registered, for callers that need
// to assert a type is traced exactly once.
func TraceTypeOnce[T any](t *Tracer) (format.Format, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	name := typ.Name()
	if name == "" {
		return nil, fmt.Errorf("tracer: TraceTypeOnce requires a named type, got %s", typ)
	}

	t.mu.Lock()
	already := t.registry.Has(name)
	t.mu.Unlock()
	if already {
		return nil, fmt.Errorf("tracer: %s was already traced", name)
	}

	return traceTypeLocked(t, typ, name)
}

func traceTypeLocked(t *Tracer, typ reflect.Type, name string) (format.Format, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess := newSession(t.cfg, t.registry, t.samples, t.enumsByI)
	_, f, err := sess.deserializeType(typ)
	if err != nil {
		return nil, err
	}
	t.registry = sess.staged
	return f, nil
}
