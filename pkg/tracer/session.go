package tracer

import (
	"reflect"

	"github.com/blockberries/witness/pkg/format"
	"github.com/blockberries/witness/pkg/samples"
)

// session carries the state shared by one DFS pass of either tracer: the
// registry updates staged for this call (committed only on success), the
// samples store in play, the enum registrations needed to interpret
// interface-typed values, and the configuration in effect.
type session struct {
	cfg      Config
	staged   *format.Registry
	samples  *samples.Store
	enumsByI map[reflect.Type]EnumSpec // keyed by interface type

	// visiting tracks, per Go type, how many containing indirections (a
	// pointer, a slice element, a map value, or an enum interface) are
	// currently being unwound for that type, so the deserialization
	// tracer's witness synthesis terminates on recursive type graphs
	// instead of recursing forever.
	visiting map[reflect.Type]int
}

func newSession(cfg Config, base *format.Registry, store *samples.Store, enums map[reflect.Type]EnumSpec) *session {
	return &session{
		cfg:      cfg,
		staged:   base.Clone(),
		samples:  store,
		enumsByI: enums,
		visiting: make(map[reflect.Type]int),
	}
}

func (s *session) merge(name string, cf format.ContainerFormat) error {
	return s.staged.Merge(name, cf)
}
