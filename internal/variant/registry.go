// Package variant provides the enum-variant registry the BCS and Bincode
// codecs share for dispatching an interface-typed Go value to its wire
// variant index and back, keyed by VariantIndex rather than a wire TypeID.
package variant

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry maps an enum container name to its interface type and the
// ordered list of concrete Go types that implement it; a concrete type's
// position in the list is its wire VariantIndex.
type Registry struct {
	mu      sync.RWMutex
	iface   map[string]reflect.Type
	variant map[string][]reflect.Type
}

// NewRegistry returns an empty variant registry.
func NewRegistry() *Registry {
	return &Registry{
		iface:   make(map[string]reflect.Type),
		variant: make(map[string][]reflect.Type),
	}
}

// Register records, under container name, the interface type T and the
// zero-valued variants in VariantIndex order. Each sample must be a value
// of the concrete Go type for one variant (its own state is discarded;
// only its type is used).
func Register[T any](r *Registry, name string, samples ...any) error {
	iface := reflect.TypeOf((*T)(nil)).Elem()
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("variant: Register requires an interface type, got %s", iface)
	}
	types := make([]reflect.Type, len(samples))
	for i, s := range samples {
		t := reflect.TypeOf(s)
		if !t.Implements(iface) && !reflect.PointerTo(t).Implements(iface) {
			return fmt.Errorf("variant: %s does not implement %s", t, iface)
		}
		types[i] = t
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.iface[name] = iface
	r.variant[name] = types
	return nil
}

// InterfaceOf returns the interface type registered under name.
func (r *Registry) InterfaceOf(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.iface[name]
	return t, ok
}

// IndexOf returns the VariantIndex of the concrete type held by rv, an
// interface-kind reflect.Value, within the enum registered under name.
func (r *Registry) IndexOf(name string, rv reflect.Value) (uint32, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types, ok := r.variant[name]
	if !ok {
		return 0, fmt.Errorf("variant: %q is not registered", name)
	}
	concrete := rv.Elem().Type()
	for i, t := range types {
		if t == concrete {
			return uint32(i), nil
		}
	}
	return 0, fmt.Errorf("variant: %s is not a registered variant of %q", concrete, name)
}

// New constructs a zero value of the concrete type at index within the
// enum registered under name, addressable so codec decode routines can
// set its fields, along with the interface type it must be boxed into.
func (r *Registry) New(name string, index uint32) (value reflect.Value, iface reflect.Type, err error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types, ok := r.variant[name]
	if !ok {
		return reflect.Value{}, nil, fmt.Errorf("variant: %q is not registered", name)
	}
	if int(index) >= len(types) {
		return reflect.Value{}, nil, fmt.Errorf("variant: index %d out of range for %q (%d variants)", index, name, len(types))
	}
	return reflect.New(types[index]).Elem(), r.iface[name], nil
}

// Box wraps concrete (a value of one of name's registered variant types)
// into an interface value of the registered interface type.
func (r *Registry) Box(name string, concrete reflect.Value) (reflect.Value, error) {
	r.mu.RLock()
	iface, ok := r.iface[name]
	r.mu.RUnlock()
	if !ok {
		return reflect.Value{}, fmt.Errorf("variant: %q is not registered", name)
	}
	t := concrete.Type()
	box := reflect.New(iface).Elem()
	if t.Implements(iface) {
		box.Set(concrete)
		return box, nil
	}
	if reflect.PointerTo(t).Implements(iface) {
		ptr := reflect.New(t)
		ptr.Elem().Set(concrete)
		box.Set(ptr)
		return box, nil
	}
	return reflect.Value{}, fmt.Errorf("variant: %s does not implement %s", t, iface)
}
