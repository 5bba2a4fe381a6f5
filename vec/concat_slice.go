package vec

import "github.com/kestrelcore/pds/owner"

// Concat returns a Vec holding every element of v followed by every
// element of other. Shared subtrees of both operands are reused wherever
// a boundary doesn't cut through them; only the nodes along the seam
// between v's trailing edge and other's leading edge are rebuilt, as
// relaxed nodes carrying a sizes table.
func (v *Vec) Concat(o *owner.Token, other *Vec) *Vec {
	if v.Len() == 0 {
		return other
	}
	if other.Len() == 0 {
		return v
	}

	aRoot, aShift, aTreeCount := foldTailIntoTree(o, v)

	if other.treeCount == 0 {
		// other's elements live entirely in its tail; they simply become
		// new trailing elements after a's (now tail-free) tree.
		return &Vec{
			count: v.count + other.count, treeCount: aTreeCount, shift: aShift,
			root: aRoot, tail: append([]any(nil), other.tail...), tailOwner: o,
		}
	}

	rA, rB, sA, _ := equalizeShift(o, aRoot, aShift, other.root, other.shift)
	merged := concatNodes(o, rA, rB, sA)
	newRoot, newShift := wrapMerged(o, merged, sA)

	return &Vec{
		count: v.count + other.count, treeCount: aTreeCount + other.treeCount, shift: newShift,
		root: newRoot, tail: append([]any(nil), other.tail...), tailOwner: o,
	}
}

// Slice returns a Vec holding v[lo:hi). Panics with *IndexError if the
// range isn't within [0, v.Len()].
func (v *Vec) Slice(o *owner.Token, lo, hi int) *Vec {
	if lo < 0 || hi > v.count || lo > hi {
		panic(&IndexError{Index: lo, Len: v.count})
	}
	if lo == hi {
		return Empty
	}
	if lo == 0 && hi == v.count {
		return v
	}

	root, shift, _ := foldTailIntoTree(o, v)
	root, shift = sliceRight(o, root, shift, hi)
	root, shift = sliceLeft(o, root, shift, lo)

	total := hi - lo
	tailLen := total % width
	if tailLen == 0 {
		tailLen = width
	}
	treeCountFinal := total - tailLen

	if treeCountFinal == 0 {
		return &Vec{
			count: total, treeCount: 0, shift: 0,
			root: emptyLeaf, tail: collectItems(root, shift), tailOwner: o,
		}
	}

	treeRoot, treeShift := sliceRight(o, root, shift, treeCountFinal)
	tailRoot, tailShift := sliceLeft(o, root, shift, treeCountFinal)

	return &Vec{
		count: total, treeCount: treeCountFinal, shift: treeShift,
		root: treeRoot, tail: collectItems(tailRoot, tailShift), tailOwner: o,
	}
}

// subtreeCount returns the number of logical elements held under n at the
// given shift: the relaxed sizes table's last entry, or the uniform
// regular-node formula (every present child of a never-sliced, never-
// concatenated node is completely full).
func subtreeCount(n *node, shift uint) int {
	if n.relaxed() {
		return n.sizes[len(n.sizes)-1]
	}
	if shift == 0 {
		return len(n.items)
	}
	return len(n.items) << shift
}

// foldTailIntoTree returns a (root, shift, treeCount) triple with every
// element of v's tail folded into the trie, so the tail can be discarded
// by the caller. This is the degenerate case of concatNodes where the
// "right" operand is a single leaf holding the tail's (possibly ragged)
// items.
func foldTailIntoTree(o *owner.Token, v *Vec) (*node, uint, int) {
	if len(v.tail) == 0 {
		return v.root, v.shift, v.treeCount
	}
	tailLeaf := newLeaf(o, append([]any(nil), v.tail...))
	newRoot, newShift := foldLeafIntoTree(o, v.root, v.shift, v.treeCount, tailLeaf)
	return newRoot, newShift, v.treeCount + len(v.tail)
}

// foldLeafIntoTree appends leaf (a full or ragged width-sized chunk) as
// the new rightmost leaf of the tree rooted at root/shift, which holds
// treeCount elements. Used by both foldTailIntoTree and Push's tail-fold
// step; relaxed-safe since it goes through the same concatNodes seam
// merge Concat uses, not a closed-form regular-spine walk.
func foldLeafIntoTree(o *owner.Token, root *node, shift uint, treeCount int, leaf *node) (*node, uint) {
	if treeCount == 0 {
		return leaf, 0
	}
	rA, rB, sA, _ := equalizeShift(o, root, shift, leaf, 0)
	merged := concatNodes(o, rA, rB, sA)
	return wrapMerged(o, merged, sA)
}

// equalizeShift wraps whichever of rootA/rootB is shallower in single-
// child relaxed branches until both sit at the same shift, so concatNodes
// can zip them level by level.
func equalizeShift(o *owner.Token, rootA *node, shiftA uint, rootB *node, shiftB uint) (*node, *node, uint, uint) {
	for shiftA < shiftB {
		rootA = wrapOnce(o, rootA, shiftA)
		shiftA += shiftStep
	}
	for shiftB < shiftA {
		rootB = wrapOnce(o, rootB, shiftB)
		shiftB += shiftStep
	}
	return rootA, rootB, shiftA, shiftB
}

// wrapOnce wraps n in a new single-child branch one level up. The wrapper
// is always relaxed since n's own count may be less than a full child's
// worth of capacity at the new shift (n might itself be the result of a
// prior slice or concat).
func wrapOnce(o *owner.Token, n *node, shift uint) *node {
	b := newBranch(o, []any{n})
	b.sizes = []int{subtreeCount(n, shift)}
	return b
}

// concatNodes merges left and right, both at the given shift, into one or
// two sibling nodes at that same shift holding, in order, every element
// of left followed by every element of right. Two nodes come back only
// when the merge at this level overflows width children (or width items,
// at a leaf); the caller folds that pair under a new parent.
func concatNodes(o *owner.Token, left, right *node, shift uint) []*node {
	if shift == 0 {
		combined := append(append([]any(nil), left.items...), right.items...)
		if len(combined) <= width {
			return []*node{newLeaf(o, combined)}
		}
		return []*node{
			newLeaf(o, combined[:width]),
			newLeaf(o, combined[width:]),
		}
	}

	lastIdx := len(left.items) - 1
	mergedTail := concatNodes(o, left.items[lastIdx].(*node), right.items[0].(*node), shift-shiftStep)

	middle := append([]any(nil), left.items[:lastIdx]...)
	for _, n := range mergedTail {
		middle = append(middle, n)
	}
	middle = append(middle, right.items[1:]...)

	if len(middle) <= width {
		return []*node{buildRelaxedBranch(o, middle, shift-shiftStep)}
	}
	return []*node{
		buildRelaxedBranch(o, middle[:width], shift-shiftStep),
		buildRelaxedBranch(o, middle[width:], shift-shiftStep),
	}
}

// wrapMerged folds the 1-or-2 node result of a top-level concatNodes call
// under a single root, growing shift by one level when two siblings came
// back.
func wrapMerged(o *owner.Token, merged []*node, shift uint) (*node, uint) {
	if len(merged) == 1 {
		return merged[0], shift
	}
	b := newBranch(o, []any{merged[0], merged[1]})
	b.sizes = buildSizesFromChildren(b.items, shift)
	return b, shift + shiftStep
}

func buildRelaxedBranch(o *owner.Token, children []any, childShift uint) *node {
	b := newBranch(o, append([]any(nil), children...))
	b.sizes = buildSizesFromChildren(b.items, childShift)
	return b
}

func buildSizesFromChildren(children []any, childShift uint) []int {
	sizes := make([]int, len(children))
	total := 0
	for i, c := range children {
		total += subtreeCount(c.(*node), childShift)
		sizes[i] = total
	}
	return sizes
}

// sliceRight returns the subtree of n (at shift) holding only its first k
// elements (0 < k <= subtreeCount(n, shift)), demoting single-child
// spines so the returned shift stays tight to the surviving content.
func sliceRight(o *owner.Token, n *node, shift uint, k int) (*node, uint) {
	if k == subtreeCount(n, shift) {
		return n, shift
	}
	if shift == 0 {
		return newLeaf(o, append([]any(nil), n.items[:k]...)), 0
	}

	slot, sub := n.slotFor(k-1, shift)
	child := n.items[slot].(*node)
	newChild, childShift := sliceRight(o, child, shift-shiftStep, sub+1)

	if slot == 0 {
		return newChild, childShift
	}

	for childShift < shift-shiftStep {
		newChild = wrapOnce(o, newChild, childShift)
		childShift += shiftStep
	}
	kept := append(append([]any(nil), n.items[:slot]...), newChild)
	b := newBranch(o, kept)
	b.sizes = buildSizesFromChildren(kept, shift-shiftStep)
	return b, shift
}

// sliceLeft returns the subtree of n (at shift) with its first k elements
// dropped (0 <= k < subtreeCount(n, shift)), demoting single-child spines
// symmetrically to sliceRight.
func sliceLeft(o *owner.Token, n *node, shift uint, k int) (*node, uint) {
	if k == 0 {
		return n, shift
	}
	if shift == 0 {
		return newLeaf(o, append([]any(nil), n.items[k:]...)), 0
	}

	slot, sub := n.slotFor(k, shift)
	child := n.items[slot].(*node)
	newChild, childShift := sliceLeft(o, child, shift-shiftStep, sub)

	kept := append([]any{newChild}, n.items[slot+1:]...)
	if len(kept) == 1 {
		return newChild, childShift
	}
	for childShift < shift-shiftStep {
		newChild = wrapOnce(o, newChild, childShift)
		childShift += shiftStep
	}
	kept[0] = newChild

	b := newBranch(o, kept)
	b.sizes = buildSizesFromChildren(kept, shift-shiftStep)
	return b, shift
}

// collectItems flattens every element of the subtree n (at shift) into a
// fresh slice, in order.
func collectItems(n *node, shift uint) []any {
	if shift == 0 {
		return append([]any(nil), n.items...)
	}
	out := make([]any, 0, subtreeCount(n, shift))
	for _, c := range n.items {
		out = append(out, collectItems(c.(*node), shift-shiftStep)...)
	}
	return out
}
