// Package draft implements the root and nested draft/produce engine: a
// mutable façade over a closed {Vec, Map, Set, Record} value that lets a
// recipe function make many edits through a single owner.Token, then
// finalizes to a new persistent Value — or returns the original by
// identity if the recipe touched nothing.
//
// Grounded on gaissmai/bart's tablepersist.go "clone root, replay
// mutations onto transient nodes, finalize" shape, generalized from one
// fixed type (Table[V]) to this package's closed tagged union.
package draft

import "golang.org/x/xerrors"

// ErrorKind distinguishes the three error kinds this package raises.
type ErrorKind int

const (
	// IndexError: an out-of-range Vec index.
	IndexError ErrorKind = iota
	// KindMismatch: an operation applied to a Value of the wrong kind
	// (e.g. Push on a Map).
	KindMismatch
	// InternalInvariant: a condition that should be unreachable from any
	// valid sequence of calls through this package's exported API.
	InternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case IndexError:
		return "IndexError"
	case KindMismatch:
		return "KindMismatch"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "ErrorKind(?)"
	}
}

// Error is the error type every panic raised by this package carries,
// wrapping an xerrors-framed cause; callers reach it with errors.As and
// inspect Kind.
type Error struct {
	Kind ErrorKind
	Op   string
	err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

func indexError(op string, index, length int) error {
	return &Error{Kind: IndexError, Op: op, err: xerrors.Errorf("index %d out of range [0,%d)", index, length)}
}

func kindMismatchError(op string, want, got Kind) error {
	return &Error{Kind: KindMismatch, Op: op, err: xerrors.Errorf("expected %v, got %v", want, got)}
}

// invariant panics with an InternalInvariant-kind *Error if cond is
// false. Unlike IndexError/KindMismatch, this should never be reachable
// from any valid sequence of calls through this package's exported API;
// Go has no separate debug/release build mode in the same binary, so
// unlike the source data model this check is never elided.
func invariant(cond bool, op, format string, args ...any) {
	if !cond {
		panic(&Error{Kind: InternalInvariant, Op: op, err: xerrors.Errorf(format, args...)})
	}
}
