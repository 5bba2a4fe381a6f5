package hamt

import (
	"github.com/kestrelcore/pds/internal/bitutil"
	"github.com/kestrelcore/pds/internal/sparse"
	"github.com/kestrelcore/pds/owner"
)

// maxDepth is how many 5-bit chunks a 32-bit hash yields (ceil(32/5)); a
// collision node takes over once a key's hash is fully consumed and two
// keys still disagree.
const maxDepth = 7

// entry is a slot in a branch node: either a direct key/value leaf (child
// nil) or a pointer one level further down the trie.
type entry struct {
	key, value any
	child      *node
}

// node is a trie level. A branch node addresses its children by a
// popcount-compressed sparse array keyed on a 5-bit hash chunk (mirroring
// vec's radix-32 trie, narrowed the same way gaissmai/bart's
// internal/sparse.Array was); a collision node, reached once a key's
// 32-bit hash is fully consumed, falls back to a flat list of colliding
// key/value pairs.
type node struct {
	owner      *owner.Token
	branch     *sparse.Array[entry]
	collisions []entry
}

func newBranch(o *owner.Token) *node {
	return &node{owner: o, branch: &sparse.Array[entry]{}}
}

func newCollision(o *owner.Token, es ...entry) *node {
	return &node{owner: o, collisions: append([]entry(nil), es...)}
}

func (n *node) isCollision() bool {
	return n.branch == nil
}

func (n *node) isEmpty() bool {
	if n.isCollision() {
		return len(n.collisions) == 0
	}
	return n.branch.Len() == 0
}

// clone returns a shallow copy of n stamped with o.
func (n *node) clone(o *owner.Token) *node {
	c := &node{owner: o}
	if n.branch != nil {
		c.branch = n.branch.Copy()
	}
	if n.collisions != nil {
		c.collisions = append([]entry(nil), n.collisions...)
	}
	return c
}

// ensureOwned returns n unchanged if it is already stamped with o,
// otherwise a clone stamped with o - the same transient rule vec/node.go
// uses, generalizing gaissmai/bart's always-clone tablepersist.go path to
// clone only when ownership doesn't match.
func ensureOwned(n *node, o *owner.Token) *node {
	if o != nil && owner.Is(n.owner, o) {
		return n
	}
	return n.clone(o)
}

// collapseChild reports the sole surviving leaf of n, if n holds exactly
// one leaf entry and nothing else. Used after a delete shrinks a child to
// a single leaf, so the trie doesn't accumulate chains of single-child
// branches - the same collapse-on-delete discipline gaissmai/bart applies
// to its own path-compressed nodes.
func collapseChild(n *node) (entry, bool) {
	if n.isCollision() {
		if len(n.collisions) == 1 {
			return n.collisions[0], true
		}
		return entry{}, false
	}
	if n.branch.Len() == 1 {
		only := n.branch.Items[0]
		if only.child == nil {
			return only, true
		}
	}
	return entry{}, false
}

func chunkAt(h uint32, depth int) uint {
	return uint(bitutil.ChunkAt(h, depth))
}
