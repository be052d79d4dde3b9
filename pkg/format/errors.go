package format

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry finalization failures. Check with errors.Is.
var (
	// ErrUnknownFormatInContainer indicates a Variable placeholder survived
	// to finalization.
	ErrUnknownFormatInContainer = errors.New("format: unknown format in container (unresolved Variable)")

	// ErrMissingVariants indicates an enum container has no recorded variants,
	// or was traced partially and at least one variant index was never
	// discovered.
	ErrMissingVariants = errors.New("format: enum is missing variants")

	// ErrUnknownNamedType indicates a TypeName references a container that
	// is not present in the registry.
	ErrUnknownNamedType = errors.New("format: unknown named type")

	// ErrNameCollision indicates two distinct containers attempted to bind
	// the same name with conflicting shapes.
	ErrNameCollision = errors.New("format: name collision")
)

// IncompatibilityError reports a failed Unify call, naming the position
// in the container/field/variant tree where the two observations diverged.
type IncompatibilityError struct {
	// Path describes where the incompatibility was found, e.g.
	// "Message.field[2]" or "Choice variant 1 (B)".
	Path string
	A, B Format
}

func (e *IncompatibilityError) Error() string {
	return fmt.Sprintf("format: incompatible formats at %s: %s vs %s", e.Path, e.A, e.B)
}

// FinalizationError wraps one of the sentinel errors above with the name
// of the offending container.
type FinalizationError struct {
	Container string
	Err       error
}

func (e *FinalizationError) Error() string {
	return fmt.Sprintf("format: finalizing %q: %v", e.Container, e.Err)
}

func (e *FinalizationError) Unwrap() error { return e.Err }
