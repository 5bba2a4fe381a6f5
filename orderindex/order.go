// Package orderindex implements an optional insertion-order index that
// can be attached to a Map or Set: a HAMT from key to slot number paired
// with a Vec slot log, so iteration yields entries in the order they
// were first inserted rather than in hash-bucket order. Deleting a key
// tombstones its slot rather than shifting every later slot down;
// tombstones are swept out in a single lazy compaction pass once they
// account for more than half the log.
package orderindex

import (
	"github.com/kestrelcore/pds/hamt"
	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/owner"
	"github.com/kestrelcore/pds/vec"
)

type slot struct {
	key       any
	value     any
	tombstone bool
}

// Index is a persistent insertion-order log over keys of type K holding
// values of type V.
type Index[K, V any] struct {
	byKey  *hamt.Map[K, int] // key -> slot number
	slots  *vec.Vec          // slot number -> slot
	live   int               // count of non-tombstone slots
	hasher hashkey.Hasher[K]
}

// New returns an empty Index using the given hasher for K.
func New[K, V any](h hashkey.Hasher[K]) *Index[K, V] {
	return &Index[K, V]{
		byKey: hamt.New[K, int](h),
		slots: vec.Empty,
		hasher: h,
	}
}

// NewComparable returns an empty Index[K, V] for a built-in comparable K.
func NewComparable[K comparable, V any]() *Index[K, V] {
	return New[K, V](hashkey.Comparable[K]{})
}

// Len returns the number of live (non-deleted) entries.
func (ix *Index[K, V]) Len() int {
	if ix == nil {
		return 0
	}
	return ix.live
}

// Get returns the value stored for key, if present.
func (ix *Index[K, V]) Get(key K) (value V, ok bool) {
	if ix == nil {
		return value, false
	}
	n, found := ix.byKey.Get(key)
	if !found {
		return value, false
	}
	raw, _ := ix.slots.Get(n)
	s := raw.(*slot)
	return s.value.(V), true
}

// Has reports whether key is present.
func (ix *Index[K, V]) Has(key K) bool {
	_, ok := ix.Get(key)
	return ok
}

// Set returns an Index equal to ix except that key now maps to value. An
// existing key keeps its original slot (and so its original position in
// iteration order); a new key is appended as the newest slot.
func (ix *Index[K, V]) Set(o *owner.Token, key K, value V) *Index[K, V] {
	if n, found := ix.byKey.Get(key); found {
		newSlots := ix.slots.Assoc(o, n, &slot{key: key, value: value})
		return &Index[K, V]{byKey: ix.byKey, slots: newSlots, live: ix.live, hasher: ix.hasher}
	}

	newSlots := ix.slots.Push(o, &slot{key: key, value: value})
	newByKey := ix.byKey.Set(o, key, newSlots.Len()-1)
	return &Index[K, V]{byKey: newByKey, slots: newSlots, live: ix.live + 1, hasher: ix.hasher}
}

// Delete returns an Index equal to ix with key removed. The vacated slot
// is tombstoned in place, preserving every other entry's position; ix is
// returned unchanged if key was absent.
func (ix *Index[K, V]) Delete(o *owner.Token, key K) *Index[K, V] {
	n, found := ix.byKey.Get(key)
	if !found {
		return ix
	}

	newByKey := ix.byKey.Delete(o, key)
	newSlots := ix.slots.Assoc(o, n, &slot{tombstone: true})
	next := &Index[K, V]{byKey: newByKey, slots: newSlots, live: ix.live - 1, hasher: ix.hasher}

	if next.holes() > next.slots.Len()/2 && next.slots.Len() > 8 {
		return next.compact(o)
	}
	return next
}

func (ix *Index[K, V]) holes() int {
	return ix.slots.Len() - ix.live
}

// compact rebuilds the slot log with every tombstone swept out, so the
// log's length tracks live entries again instead of growing unbounded
// under a delete-heavy workload.
func (ix *Index[K, V]) compact(o *owner.Token) *Index[K, V] {
	freshSlots := vec.Empty
	freshByKey := hamt.New[K, int](ix.hasher)

	for _, raw := range ix.slots.Iter() {
		s := raw.(*slot)
		if s.tombstone {
			continue
		}
		freshSlots = freshSlots.Push(o, s)
		freshByKey = freshByKey.Set(o, s.key.(K), freshSlots.Len()-1)
	}

	return &Index[K, V]{byKey: freshByKey, slots: freshSlots, live: ix.live, hasher: ix.hasher}
}

// Clone returns a copy of ix's header sharing the same structure; Index
// is persistent, so nothing below the header is copied.
func (ix *Index[K, V]) Clone() *Index[K, V] {
	if ix == nil {
		return nil
	}
	c := *ix
	return &c
}

// Iter returns a finite, non-restartable iterator over ix's entries in
// insertion order, for use with range-over-func (go1.23).
func (ix *Index[K, V]) Iter() func(yield func(K, V) bool) {
	return func(yield func(K, V) bool) {
		if ix == nil {
			return
		}
		for _, raw := range ix.slots.Iter() {
			s := raw.(*slot)
			if s.tombstone {
				continue
			}
			if !yield(s.key.(K), s.value.(V)) {
				return
			}
		}
	}
}
