// Package heicerr defines the error kinds surfaced by the container parser
// and the HEVC bitstream/parameter-set/partitioning layers.
package heicerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// Truncated indicates a reader ran out of bytes before satisfying a read.
	Truncated Kind = iota
	// Malformed indicates a structural violation of the container or bitstream.
	Malformed
	// Unsupported indicates valid input outside this core's decodable subset,
	// e.g. 10-bit depth or 4:2:2 chroma.
	Unsupported
	// NoPrimaryImage indicates the container has no resolvable primary item.
	NoPrimaryImage
	// MissingItemData indicates an item's extents could not be resolved to bytes.
	MissingItemData
)

func (k Kind) String() string {
	switch k {
	case Truncated:
		return "truncated"
	case Malformed:
		return "malformed"
	case Unsupported:
		return "unsupported"
	case NoPrimaryImage:
		return "no primary image"
	case MissingItemData:
		return "missing item data"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by this module's public operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap allows errors.Is/errors.As to see through to the cause.
func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(op string, kind Kind) *Error {
	return &Error{Op: op, Kind: kind}
}

// Wrap constructs an *Error wrapping cause with pkg/errors, preserving its
// stack trace for diagnostic logging further up the call tree.
func Wrap(op string, kind Kind, cause error) *Error {
	return &Error{Op: op, Kind: kind, Err: errors.Wrap(cause, op)}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
