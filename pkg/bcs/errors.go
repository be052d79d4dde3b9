// Package bcs implements Binary Canonical Serialization: a deterministic
// binary codec with ULEB128 length/variant-index prefixes and strictly
// ordered maps, driven by a format.Format tree and format.Registry rather
// than struct tags.
package bcs

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions. Check these with errors.Is().
var (
	// ErrUnexpectedEOF indicates the data ended before a value could be
	// fully decoded.
	ErrUnexpectedEOF = errors.New("bcs: unexpected end of data")

	// ErrMaxDepthExceeded indicates a value nested more containers than
	// the 500-container depth budget allows.
	ErrMaxDepthExceeded = errors.New("bcs: maximum container depth exceeded")

	// ErrMaxLengthExceeded indicates a sequence, map, string, or byte
	// string exceeded the maximum encodable length, (1<<31)-1.
	ErrMaxLengthExceeded = errors.New("bcs: length exceeds maximum encodable value")

	// ErrNonCanonicalBool indicates a decoded bool byte was neither 0 nor 1.
	ErrNonCanonicalBool = errors.New("bcs: non-canonical bool byte")

	// ErrMapKeysNotDistinct indicates a decoded map's keys, compared by
	// their encoded bytes, were not in strictly increasing order: either
	// two keys were equal or a key came after a larger one.
	ErrMapKeysNotDistinct = errors.New("bcs: map keys are not pairwise distinct")

	// ErrNotImplemented indicates a feature this codec deliberately
	// refuses: format.Char is refused unconditionally on both encode and
	// decode.
	ErrNotImplemented = errors.New("bcs: not implemented")

	// ErrUnknownContainer indicates a TypeName referenced a container
	// absent from the codec's registry.
	ErrUnknownContainer = errors.New("bcs: unknown container")

	// ErrFormatValueMismatch indicates the Go value being encoded does
	// not have the shape its format.Format says it should.
	ErrFormatValueMismatch = errors.New("bcs: value does not match format")
)

// MaxLength is the largest sequence, map, string, or byte-string length
// this codec will encode, (1<<31)-1; a longer one fails encoding with
// ErrMaxLengthExceeded. Decoding does not check length prefixes against
// it, and variant indices are not checked against it. Two candidate constants show up
// across BCS runtimes, (1<<31)-1 and 1<<31; this codec adopts the former,
// matching the more recent runtime generation.
const MaxLength = (1 << 31) - 1

// MaxContainerDepth bounds how many containers (structs, enums, seqs,
// maps, options, tuples) may nest inside one value before encode/decode
// refuses to continue, guarding against stack exhaustion on adversarial
// or cyclic input.
const MaxContainerDepth = 500

// offsetError reports the byte offset at which encoding or decoding failed.
type offsetError struct {
	Offset int
	Path   string
	Err    error
}

func (e *offsetError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("bcs: at offset %d (%s): %v", e.Offset, e.Path, e.Err)
	}
	return fmt.Sprintf("bcs: at offset %d: %v", e.Offset, e.Err)
}

func (e *offsetError) Unwrap() error { return e.Err }
