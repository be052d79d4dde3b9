package format

import "sort"

// Registry is an ordered mapping from container name to ContainerFormat.
// Iteration order follows insertion order so downstream generators produce
// stable output across runs; SortedNames gives the lexicographic order the
// textual registry formats require on output.
type Registry struct {
	order   []string
	entries map[string]ContainerFormat
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]ContainerFormat)}
}

// Set inserts or replaces the entry for name, preserving first-insertion
// position in iteration order.
func (r *Registry) Set(name string, cf ContainerFormat) {
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = cf
}

// Merge unifies cf into whatever is already registered under name (or
// simply records it if name is new), returning an *IncompatibilityError or
// *FinalizationError if the two observations conflict.
func (r *Registry) Merge(name string, cf ContainerFormat) error {
	existing, ok := r.entries[name]
	if !ok {
		r.Set(name, cf)
		return nil
	}
	unified, err := UnifyContainer(name, existing, cf)
	if err != nil {
		return err
	}
	r.entries[name] = unified
	return nil
}

// Get returns the container format registered under name, if any.
func (r *Registry) Get(name string) (ContainerFormat, bool) {
	cf, ok := r.entries[name]
	return cf, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns container names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// SortedNames returns container names in lexicographic order, the order
// the textual registry formats use for stable diffs.
func (r *Registry) SortedNames() []string {
	out := r.Names()
	sort.Strings(out)
	return out
}

// Len returns the number of registered containers.
func (r *Registry) Len() int { return len(r.entries) }

// Finalize normalizes every entry, then validates: no Variable placeholder
// survives, every enum has at least one variant, and every TypeName
// resolves to a registered container. It returns a new Registry on success
// and leaves r untouched either way; finalization errors never expose a
// partial registry.
func (r *Registry) Finalize() (*Registry, error) {
	out := NewRegistry()
	for _, name := range r.order {
		cf := NormalizeContainer(r.entries[name])
		if ContainerHasVariable(cf) {
			return nil, &FinalizationError{Container: name, Err: ErrUnknownFormatInContainer}
		}
		if e, ok := cf.(*Enum); ok && len(e.Variants) == 0 {
			return nil, &FinalizationError{Container: name, Err: ErrMissingVariants}
		}
		out.Set(name, cf)
	}
	for _, name := range out.order {
		var walkErr error
		WalkTypeNames(out.entries[name], func(ref string) {
			if walkErr == nil && !out.Has(ref) {
				walkErr = &FinalizationError{Container: name, Err: ErrUnknownNamedType}
			}
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return out, nil
}

// Clone returns a shallow copy of the registry (same ContainerFormat
// values, independent ordering/index structures). Used by the tracer
// orchestrator to stage updates that can be discarded on error.
func (r *Registry) Clone() *Registry {
	out := NewRegistry()
	for _, name := range r.order {
		out.Set(name, r.entries[name])
	}
	return out
}
