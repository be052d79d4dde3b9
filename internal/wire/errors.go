package wire

import "errors"

// Errors returned by the low-level encoding primitives in this package.
// Callers (pkg/bcs, pkg/bincode) wrap these with positional context.
var (
	// ErrTruncated indicates the input ended before a value could be fully read.
	ErrTruncated = errors.New("wire: truncated input")

	// ErrOverflow indicates a ULEB128 value exceeds the 32-bit range the
	// BCS length/variant-index encoding is restricted to.
	ErrOverflow = errors.New("wire: uleb128 value overflows 32 bits")

	// ErrRedundant indicates a ULEB128 encoding used more bytes than the
	// canonical (shortest) form requires.
	ErrRedundant = errors.New("wire: uleb128 redundant encoding")
)
