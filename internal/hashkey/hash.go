// Package hashkey implements the uniform key-hash function required by
// the HAMT: a stable 32-bit digest for arbitrary keys, with object-like
// (non-comparable, dynamically-typed) keys given a monotonically
// increasing identity tag on first sight, per spec.md §4.2.
//
// The generic Hasher[K] shape follows rogpeppe/generic/anyhash's
// Hasher[T] interface (Hash/Equal decoupled from Go's own comparable
// constraint); the actual digest is produced by xxhash rather than
// hash/maphash so that two process runs of the same *value* (not
// necessarily the same hash/maphash seed) agree — useful for tests that
// compare hash distributions across runs.
package hashkey

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Hasher defines the hash function and equivalence relation the HAMT
// uses for keys of type K. It lets a map instantiated over K=any safely
// hold dynamically-typed keys that might not be comparable with ==.
type Hasher[K any] interface {
	Hash(k K) uint32
	Equal(a, b K) bool
}

// Comparable is a Hasher for any comparable K. Its Equal is consistent
// with Go's built-in ==.
type Comparable[K comparable] struct{}

func (Comparable[K]) Hash(k K) uint32 {
	return Sum(k)
}

func (Comparable[K]) Equal(a, b K) bool {
	return a == b
}

// Dynamic is a Hasher for K=any that tolerates keys whose concrete type
// is not comparable (slices, maps, funcs boxed in an interface). Such
// keys are identified by their data pointer, tagged on first sight, and
// are only ever equal to themselves. A non-comparable struct or array
// value has no data pointer; it gets a fresh tag on every comparison and
// so never compares equal to any key, itself included.
type Dynamic struct{}

func (Dynamic) Hash(k any) uint32 {
	return Sum(k)
}

func (Dynamic) Equal(a, b any) (eq bool) {
	if !isComparable(a) || !isComparable(b) {
		return sameIdentity(a) == sameIdentity(b)
	}
	defer func() {
		// a and b could still differ in comparability at runtime
		// despite passing isComparable (e.g. a struct containing an
		// interface field holding a non-comparable value); fall back
		// to identity rather than propagating the panic.
		if recover() != nil {
			eq = sameIdentity(a) == sameIdentity(b)
		}
	}()
	return a == b
}

func isComparable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.TypeOf(v).Comparable()
}

// tagMu guards tags, the process-global table assigning a monotonic
// identity tag to each non-comparable key observed so far. Tolerates
// concurrent readers with a single writer, per spec.md §5's
// shared-resource policy: every access takes the lock, which is simpler
// than a lock-free insert-once map and sufficient since tagging only
// happens on first sight of a given object.
var (
	tagMu   sync.Mutex
	tagNext uint64
	tags    = map[uintptr]uint64{}
)

// sameIdentity returns a per-process tag for a non-comparable dynamic
// value, keyed by its underlying pointer (slice/map header data pointer,
// or func pointer). The tag is stable only for values that have such a
// pointer; see dataPointer for the rest.
func sameIdentity(v any) uint64 {
	ptr := dataPointer(v)

	tagMu.Lock()
	defer tagMu.Unlock()

	if t, ok := tags[ptr]; ok {
		return t
	}
	tagNext++
	tags[ptr] = tagNext
	return tagNext
}

func dataPointer(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Ptr, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return rv.Pointer()
	default:
		// Last resort: use the interface's own address space via a
		// boxed copy identity. This only happens for odd non-comparable
		// composite types (e.g. a struct embedding a non-comparable
		// field by value); treat every such value as distinct from
		// every other, matching strict identity semantics.
		tagMu.Lock()
		tagNext++
		t := tagNext
		tagMu.Unlock()
		return uintptr(t)
	}
}

// Sum produces the uniform 32-bit digest for an arbitrary comparable or
// dynamically-typed key. +0 and -0 float keys hash identically, matching
// spec.md §4.2's equality carve-out.
func Sum(k any) uint32 {
	h := xxhash.New()
	writeValue(h, reflect.ValueOf(k))
	sum := h.Sum64()
	return uint32(sum) ^ uint32(sum>>32)
}

func writeValue(h *xxhash.Digest, v reflect.Value) {
	if !v.IsValid() {
		h.Write([]byte{0})
		return
	}

	var buf [8]byte
	switch v.Kind() {
	case reflect.String:
		h.WriteString(v.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Int()))
		h.Write(buf[:])
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		binary.LittleEndian.PutUint64(buf[:], v.Uint())
		h.Write(buf[:])
	case reflect.Bool:
		if v.Bool() {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f == 0 {
			f = 0 // normalizes -0 to +0, per the +0/-0 equality carve-out
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(f))
		h.Write(buf[:])
	case reflect.Interface:
		writeValue(h, v.Elem())
	case reflect.Ptr:
		if v.IsNil() {
			h.Write([]byte{0})
			return
		}
		binary.LittleEndian.PutUint64(buf[:], uint64(v.Pointer()))
		h.Write(buf[:])
	case reflect.Struct, reflect.Array:
		fmt.Fprintf(h, "%#v", v.Interface())
	default:
		// Slices, maps, funcs, chans: not comparable, hash by identity
		// tag so two distinct instances never collapse into one key.
		binary.LittleEndian.PutUint64(buf[:], sameIdentity(v.Interface()))
		h.Write(buf[:])
	}
}
