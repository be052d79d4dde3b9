package registryio

import (
	"fmt"
	"strconv"

	"github.com/blockberries/witness/pkg/format"
)

// DecodeError reports a malformed registry document, naming the
// container it was found under when one is known.
type DecodeError struct {
	Container string
	Reason    string
}

func (e *DecodeError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("registryio: in container %q: %s", e.Container, e.Reason)
	}
	return fmt.Sprintf("registryio: %s", e.Reason)
}

// asUint64 and asVariantIndex accept both the int64/int the YAML decoder
// produces and the float64 encoding/json always produces for numbers.
func asUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case int:
		return uint64(n), nil
	case int64:
		return uint64(n), nil
	case float64:
		return uint64(n), nil
	default:
		return 0, &DecodeError{Reason: fmt.Sprintf("expected a number, got %#v", v)}
	}
}

// asVariantIndex parses an ENUM map's index key, which arrives as a
// string ("0", "1", ...) regardless of whether the document was YAML or
// JSON, since mapping keys are always decoded as strings by both of this
// package's entry points.
func asVariantIndex(idxStr string) (format.VariantIndex, error) {
	n, err := strconv.ParseUint(idxStr, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid enum variant index %q: %w", idxStr, err)
	}
	return format.VariantIndex(n), nil
}
