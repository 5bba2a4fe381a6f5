// Package sparse implements a popcount-compressed sparse array over a
// fixed 32-wide bitmap: the storage shape for HAMT branch children.
//
// This is the 32-wide narrowing of gaissmai/bart's internal/sparse.Array,
// which wraps an arbitrary-width bitset to fit a 256-wide multibit trie;
// a 5-bit radix trie always fits in a single uint32, so the bitset here
// is just that one word.
package sparse

import "github.com/kestrelcore/pds/internal/bitutil"

// Array is a generic popcount-compressed sparse array with payload T,
// addressed by position 0..31.
type Array[T any] struct {
	Bitmap uint32
	Items  []T
}

// Get returns the value at position i, if present.
func (a *Array[T]) Get(i uint) (value T, ok bool) {
	if a.test(i) {
		return a.Items[a.rank(i)], true
	}
	return value, false
}

// Len returns the number of items in the array.
func (a *Array[T]) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Items)
}

// Copy returns a shallow copy of the array; Items are copied by
// assignment, not deep-cloned.
func (a *Array[T]) Copy() *Array[T] {
	if a == nil {
		return nil
	}
	return &Array[T]{
		Bitmap: a.Bitmap,
		Items:  append(a.Items[:0:0], a.Items...),
	}
}

// InsertAt inserts value at position i, returning true if a value already
// occupied that position (in which case it was overwritten).
func (a *Array[T]) InsertAt(i uint, value T) (existed bool) {
	if a.test(i) {
		a.Items[a.rank(i)] = value
		return true
	}

	a.Bitmap |= 1 << i
	a.insertItem(a.rank(i), value)
	return false
}

// DeleteAt removes the value at position i, if present.
func (a *Array[T]) DeleteAt(i uint) (value T, existed bool) {
	if !a.test(i) {
		return value, false
	}

	rank := a.rank(i)
	value = a.Items[rank]

	a.deleteItem(rank)
	a.Bitmap &^= 1 << i

	return value, true
}

func (a *Array[T]) test(i uint) bool {
	return a.Bitmap&(1<<i) != 0
}

// rank returns the slice index a value at bitmap position i occupies (or
// would occupy if inserted).
func (a *Array[T]) rank(i uint) int {
	return bitutil.Rank(a.Bitmap, i)
}

func (a *Array[T]) insertItem(i int, item T) {
	if len(a.Items) < cap(a.Items) {
		a.Items = a.Items[:len(a.Items)+1]
	} else {
		var zero T
		a.Items = append(a.Items, zero)
	}
	copy(a.Items[i+1:], a.Items[i:])
	a.Items[i] = item
}

func (a *Array[T]) deleteItem(i int) {
	var zero T
	nl := len(a.Items) - 1
	copy(a.Items[i:], a.Items[i+1:])
	a.Items[nl] = zero
	a.Items = a.Items[:nl]
}
