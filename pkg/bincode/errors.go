// Package bincode implements the Bincode binary codec: fixed 64-bit
// little-endian length prefixes, 32-bit little-endian enum variant
// indices, and unordered maps, driven by a format.Format tree and
// format.Registry rather than struct tags.
package bincode

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions. Check these with errors.Is().
var (
	// ErrUnexpectedEOF indicates the data ended before a value could be
	// fully decoded.
	ErrUnexpectedEOF = errors.New("bincode: unexpected end of data")

	// ErrMaxDepthExceeded indicates a value nested more containers than
	// the depth budget allows.
	ErrMaxDepthExceeded = errors.New("bincode: maximum container depth exceeded")

	// ErrNonCanonicalBool indicates a decoded bool byte was neither 0 nor 1.
	ErrNonCanonicalBool = errors.New("bincode: non-canonical bool byte")

	// ErrNotImplemented indicates a feature this codec deliberately
	// refuses: format.Char is refused unconditionally on both encode and
	// decode.
	ErrNotImplemented = errors.New("bincode: not implemented")

	// ErrUnknownContainer indicates a TypeName referenced a container
	// absent from the codec's registry.
	ErrUnknownContainer = errors.New("bincode: unknown container")

	// ErrFormatValueMismatch indicates the Go value being encoded does
	// not have the shape its format.Format says it should.
	ErrFormatValueMismatch = errors.New("bincode: value does not match format")
)

// MaxContainerDepth bounds how many containers may nest inside one value
// before encode/decode refuses to continue, guarding against stack
// exhaustion on adversarial or cyclic input. Bincode itself places no
// contractual limit on nesting, so this is a defensive ceiling rather
// than part of the wire contract.
const MaxContainerDepth = 500

type offsetError struct {
	Offset int
	Path   string
	Err    error
}

func (e *offsetError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bincode: at offset %d (%s): %v", e.Offset, e.Path, e.Err)
	}
	return fmt.Sprintf("bincode: at offset %d: %v", e.Offset, e.Err)
}

func (e *offsetError) Unwrap() error { return e.Err }
