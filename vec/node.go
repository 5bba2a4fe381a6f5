package vec

import "github.com/kestrelcore/pds/owner"

// node is a trie level. A regular node's children (or leaf values) are
// uniformly sized except possibly the last; a relaxed node carries a
// cumulative sizes table because it was produced by concat or slice and
// its children sizes no longer follow the uniform rule.
//
// A leaf (shift == 0) stores values directly in items; an internal node
// stores *node children in items.
type node struct {
	items  []any // leaf: T values; internal: *node children
	sizes  []int // non-nil only for relaxed internal nodes
	owner  *owner.Token
	isLeaf bool
}

func newLeaf(o *owner.Token, items []any) *node {
	return &node{items: items, owner: o, isLeaf: true}
}

func newBranch(o *owner.Token, children []any) *node {
	return &node{items: children, owner: o}
}

// clone returns a shallow copy of n stamped with o.
func (n *node) clone(o *owner.Token) *node {
	c := &node{
		items:  append([]any(nil), n.items...),
		owner:  o,
		isLeaf: n.isLeaf,
	}
	if n.sizes != nil {
		c.sizes = append([]int(nil), n.sizes...)
	}
	return c
}

// ensureOwned returns n unchanged if it is already stamped with o,
// otherwise a clone stamped with o. This is the transient rule from
// spec.md §4.1, generalizing gaissmai/bart's tablepersist.go clone path
// (which always clones) to clone only when ownership doesn't match.
func ensureOwned(n *node, o *owner.Token) *node {
	if o != nil && owner.Is(n.owner, o) {
		return n
	}
	return n.clone(o)
}

// relaxed reports whether n carries an explicit cumulative sizes table.
func (n *node) relaxed() bool {
	return n.sizes != nil
}

// childSize returns the number of logical elements held by child i,
// consulting the relaxed sizes table when present or computing the
// regular uniform size otherwise.
func (n *node) childSize(i int, shift uint) int {
	if n.relaxed() {
		if i == 0 {
			return n.sizes[0]
		}
		return n.sizes[i] - n.sizes[i-1]
	}
	return 1 << shift
}

// slotFor finds the child index and sub-index for logical index i within
// a node at the given shift. For regular nodes this is O(1); for relaxed
// nodes it is a short linear scan over the cumulative sizes table, per
// spec.md §4.1's "relaxed-node index search".
func (n *node) slotFor(i int, shift uint) (slot, subIndex int) {
	if !n.relaxed() {
		slot = (i >> shift) & mask
		subIndex = i - slot<<shift
		return slot, subIndex
	}

	slot = 0
	for n.sizes[slot] <= i {
		slot++
	}
	if slot == 0 {
		subIndex = i
	} else {
		subIndex = i - n.sizes[slot-1]
	}
	return slot, subIndex
}

func buildSizes(childSizes []int) []int {
	sizes := make([]int, len(childSizes))
	total := 0
	for i, s := range childSizes {
		total += s
		sizes[i] = total
	}
	return sizes
}
