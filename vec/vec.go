// Package vec implements a persistent indexed vector: a radix-32 trie
// with a mutable tail buffer, supporting indexed get/assoc, push/pop at
// the tail, concatenation, and slicing, all under the transient-owner
// editing protocol from package owner.
//
// The trie shape follows the classic Clojure persistent-vector algorithm
// (grounded here on the nsjph/go-seq PVector: ConsV/pushTail/AssocN/
// popTail/newPath), adapted from an always-copy persistent API to one
// that also accepts an *owner.Token so a batch of edits through a single
// produce call clones each touched node only once.
package vec

import (
	"fmt"

	"github.com/kestrelcore/pds/internal/bitutil"
	"github.com/kestrelcore/pds/owner"
)

const (
	shiftStep = bitutil.Bits
	width     = bitutil.Width
	mask      = bitutil.Mask
)

// IndexError reports an out-of-range index passed to Assoc.
type IndexError struct {
	Index, Len int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vec: index %d out of range [0,%d)", e.Index, e.Len)
}

var emptyLeaf = &node{isLeaf: true}

// Vec is a persistent indexed sequence of T, represented as type any
// internally; callers type-assert on Get.
type Vec struct {
	count      int
	treeCount  int // elements held by the trie; count-treeCount sits in tail
	shift      uint
	root       *node
	tail       []any
	tailOwner  *owner.Token
}

// Empty is the zero-length Vec. The zero value of Vec is also valid and
// equivalent to Empty.
var Empty = &Vec{root: emptyLeaf}

// New returns an empty Vec.
func New() *Vec {
	return Empty
}

// FromSlice builds a Vec holding a copy of xs, in order.
func FromSlice[T any](xs []T) *Vec {
	v := Empty
	o := owner.New()
	for _, x := range xs {
		v = v.Push(o, x)
	}
	return v
}

// ToSlice returns a fresh []T holding every element of v in order.
// Panics if T does not match the type the Vec was built with.
func ToSlice[T any](v *Vec) []T {
	out := make([]T, 0, v.Len())
	v.forEach(func(val any) {
		out = append(out, val.(T))
	})
	return out
}

// Len returns the number of elements in v.
func (v *Vec) Len() int {
	if v == nil {
		return 0
	}
	return v.count
}

// Get returns the element at index i, or (nil, false) if i is out of
// range. Complexity is O(log32 n), O(1) once i falls in the tail.
func (v *Vec) Get(i int) (value any, ok bool) {
	if v == nil || i < 0 || i >= v.count {
		return nil, false
	}
	if i >= v.treeCount {
		return v.tail[i-v.treeCount], true
	}
	n := v.root
	cur := i
	for shift := v.shift; shift > 0; shift -= shiftStep {
		slot, sub := n.slotFor(cur, shift)
		n = n.items[slot].(*node)
		cur = sub
	}
	return n.items[cur], true
}

// Assoc returns a Vec equal to v except that position i holds val.
// Panics with *IndexError if i is not in [0, v.Len()). Nodes on the
// path from root to i owned by o are mutated in place; others are
// cloned.
func (v *Vec) Assoc(o *owner.Token, i int, val any) *Vec {
	if i < 0 || i >= v.count {
		panic(&IndexError{Index: i, Len: v.count})
	}

	if i >= v.treeCount {
		tail := ensureOwnedTail(v.tail, v.tailOwner, o)
		tail[i-v.treeCount] = val
		return &Vec{
			count: v.count, treeCount: v.treeCount, shift: v.shift,
			root: v.root, tail: tail, tailOwner: o,
		}
	}

	newRoot := assocTree(v.root, o, v.shift, i, val)
	return &Vec{
		count: v.count, treeCount: v.treeCount, shift: v.shift,
		root: newRoot, tail: v.tail, tailOwner: v.tailOwner,
	}
}

// assocTree descends the trie rooted at n, threading the recursion's local
// index (i, relative to the current subtree) down through each level's
// slotFor so relaxed nodes - whose children aren't uniformly sized - are
// navigated correctly, not just regular ones.
func assocTree(n *node, o *owner.Token, shift uint, i int, val any) *node {
	nn := ensureOwned(n, o)
	if shift == 0 {
		nn.items[i] = val
		return nn
	}
	slot, sub := nn.slotFor(i, shift)
	child := nn.items[slot].(*node)
	nn.items[slot] = assocTree(child, o, shift-shiftStep, sub, val)
	return nn
}

func ensureOwnedTail(tail []any, tailOwner, o *owner.Token) []any {
	if o != nil && owner.Is(tailOwner, o) {
		return tail
	}
	return append([]any(nil), tail...)
}

// Push appends val to the end of v.
func (v *Vec) Push(o *owner.Token, val any) *Vec {
	if len(v.tail) < width {
		tail := ensureOwnedTail(v.tail, v.tailOwner, o)
		tail = append(tail, val)
		return &Vec{
			count: v.count + 1, treeCount: v.treeCount, shift: v.shift,
			root: v.root, tail: tail, tailOwner: o,
		}
	}

	// Tail is full: fold it into the trie and start a fresh tail. This
	// goes through the same seam-merge machinery as Concat (foldLeafIntoTree)
	// rather than a closed-form regular-spine walk, so a Push onto a Vec
	// produced by a prior Concat or Slice (whose rightmost spine may carry
	// relaxed, non-uniform nodes) stays correct instead of assuming every
	// existing child is full.
	tailNode := newLeaf(o, ensureOwnedTail(v.tail, v.tailOwner, o))
	newRoot, newShift := foldLeafIntoTree(o, v.root, v.shift, v.treeCount, tailNode)

	return &Vec{
		count: v.count + 1, treeCount: v.treeCount + width, shift: newShift,
		root: newRoot, tail: []any{val}, tailOwner: o,
	}
}

// Pop removes the last element of v, returning the shortened Vec and the
// popped value. Popping an empty Vec returns (v, nil, false).
func (v *Vec) Pop(o *owner.Token) (result *Vec, popped any, ok bool) {
	if v.count == 0 {
		return v, nil, false
	}

	popped = v.tail[len(v.tail)-1]

	if v.count == 1 {
		return Empty, popped, true
	}

	if len(v.tail) > 1 {
		tail := ensureOwnedTail(v.tail, v.tailOwner, o)
		tail = tail[:len(tail)-1]
		return &Vec{
			count: v.count - 1, treeCount: v.treeCount, shift: v.shift,
			root: v.root, tail: tail, tailOwner: o,
		}, popped, true
	}

	// Tail empties: demote the trie's rightmost width elements (or all of
	// them, if it holds fewer) into a fresh tail, via the same
	// relaxed-safe sliceLeft/sliceRight split Slice uses, rather than a
	// closed-form regular-spine walk - a Vec whose rightmost spine was
	// left relaxed by a prior Concat or Slice stays correct here too.
	demote := width
	if v.treeCount < demote {
		demote = v.treeCount
	}
	newTreeCount := v.treeCount - demote

	tailNode, tailShift := sliceLeft(o, v.root, v.shift, newTreeCount)
	newTail := collectItems(tailNode, tailShift)

	newRoot, newShift := emptyLeaf, uint(0)
	if newTreeCount > 0 {
		newRoot, newShift = sliceRight(o, v.root, v.shift, newTreeCount)
	}

	return &Vec{
		count: v.count - 1, treeCount: newTreeCount, shift: newShift,
		root: newRoot, tail: newTail, tailOwner: o,
	}, popped, true
}

// forEach walks every element of v in order.
func (v *Vec) forEach(f func(any)) {
	if v == nil || v.count == 0 {
		return
	}
	walkTree(v.root, v.shift, f)
	for _, x := range v.tail {
		f(x)
	}
}

func walkTree(n *node, shift uint, f func(any)) {
	if shift == 0 {
		for _, x := range n.items {
			f(x)
		}
		return
	}
	for _, c := range n.items {
		if c == nil {
			continue
		}
		walkTree(c.(*node), shift-shiftStep, f)
	}
}

// Iter returns a finite, non-restartable forward iterator over v's
// elements, for use with range-over-func (go1.23).
func (v *Vec) Iter() func(yield func(int, any) bool) {
	return func(yield func(int, any) bool) {
		if v == nil {
			return
		}
		i := 0
		stop := false
		visit := func(x any) {
			if stop {
				return
			}
			if !yield(i, x) {
				stop = true
				return
			}
			i++
		}
		v.forEach(visit)
	}
}
