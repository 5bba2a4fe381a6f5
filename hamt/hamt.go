// Package hamt implements a persistent Map[K, V] as a Hash Array Mapped
// Trie: a radix-32 trie over a key's hash, using the popcount-compressed
// sparse-array node shape of internal/sparse, under the same
// transient-owner editing protocol as package vec.
//
// Grounded on the CBOR HAMT in masslbs-network-schema's go-hamt (Trie/
// Node/Entry, bitmap-indexed sparse entries via bits.OnesCount64,
// leaf-to-branch promotion on hash collision, branch-to-leaf collapse on
// delete, a maxDepth linear-scan fallback once hash bits run out) and on
// gsuneido's genny-hamt generic instantiation pattern, adapted from a
// fixed concrete-key trie to one parameterized by a hashkey.Hasher[K] so
// K need not be Go's built-in comparable.
package hamt

import (
	"reflect"

	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/owner"
)

// Map is a persistent hash map from K to V.
type Map[K, V any] struct {
	root   *node
	count  int
	hasher hashkey.Hasher[K]
}

// New returns an empty Map using the given hasher for K.
func New[K, V any](h hashkey.Hasher[K]) *Map[K, V] {
	return &Map[K, V]{root: newBranch(nil), hasher: h}
}

// NewComparable returns an empty Map[K, V] for a built-in comparable K.
func NewComparable[K comparable, V any]() *Map[K, V] {
	return New[K, V](hashkey.Comparable[K]{})
}

// Len returns the number of entries in m.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Get returns the value stored for key, if present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	if m == nil {
		return value, false
	}
	h := m.hasher.Hash(key)
	n := m.root
	for depth := 0; ; depth++ {
		if n.isCollision() {
			for _, e := range n.collisions {
				if m.hasher.Equal(e.key.(K), key) {
					return e.value.(V), true
				}
			}
			return value, false
		}
		e, found := n.branch.Get(chunkAt(h, depth))
		if !found {
			return value, false
		}
		if e.child != nil {
			n = e.child
			continue
		}
		if m.hasher.Equal(e.key.(K), key) {
			return e.value.(V), true
		}
		return value, false
	}
}

// Has reports whether key is present in m.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Set returns a Map equal to m except that key now maps to value. Nodes
// along the path to key owned by o are mutated in place; others are
// cloned.
func (m *Map[K, V]) Set(o *owner.Token, key K, value V) *Map[K, V] {
	h := m.hasher.Hash(key)
	newRoot, grew := setNode(m.root, o, m.hasher, key, value, h, 0)
	count := m.count
	if grew {
		count++
	}
	return &Map[K, V]{root: newRoot, count: count, hasher: m.hasher}
}

// Delete returns a Map equal to m with key (and its value) removed. If
// key is absent, m itself is returned unchanged.
func (m *Map[K, V]) Delete(o *owner.Token, key K) *Map[K, V] {
	h := m.hasher.Hash(key)
	newRoot, deleted := deleteNode(m.root, o, m.hasher, key, h, 0)
	if !deleted {
		return m
	}
	return &Map[K, V]{root: newRoot, count: m.count - 1, hasher: m.hasher}
}

// Clone returns a copy of m's header sharing the same trie; Map is
// persistent, so nothing below the header is copied.
func (m *Map[K, V]) Clone() *Map[K, V] {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Equal reports whether m and other hold the same key/value pairs,
// comparing values with reflect.DeepEqual.
func (m *Map[K, V]) Equal(other *Map[K, V]) bool {
	if m == other {
		return true
	}
	if m.Len() != other.Len() {
		return false
	}
	eq := true
	m.Iter()(func(k K, v V) bool {
		ov, ok := other.Get(k)
		if !ok || !reflect.DeepEqual(v, ov) {
			eq = false
			return false
		}
		return true
	})
	return eq
}

func setNode[K, V any](n *node, o *owner.Token, hasher hashkey.Hasher[K], key K, value V, h uint32, depth int) (*node, bool) {
	if n.isCollision() {
		return setCollision(n, o, hasher, key, value)
	}

	nn := ensureOwned(n, o)
	chunk := chunkAt(h, depth)
	existing, found := nn.branch.Get(chunk)
	if !found {
		nn.branch.InsertAt(chunk, entry{key: key, value: value})
		return nn, true
	}

	if existing.child != nil {
		newChild, grew := setNode(existing.child, o, hasher, key, value, h, depth+1)
		nn.branch.InsertAt(chunk, entry{child: newChild})
		return nn, grew
	}

	if hasher.Equal(existing.key.(K), key) {
		nn.branch.InsertAt(chunk, entry{key: key, value: value})
		return nn, false
	}

	// Two different keys land on the same chunk: push both down into a
	// fresh subtree, recursing until their hash chunks diverge (or the
	// hash is exhausted, in which case a collision node).
	child := splitLeaf(o, hasher, existing, key, value, h, depth+1)
	nn.branch.InsertAt(chunk, entry{child: child})
	return nn, true
}

func splitLeaf[K, V any](o *owner.Token, hasher hashkey.Hasher[K], old entry, key K, value V, h uint32, depth int) *node {
	if depth >= maxDepth {
		return newCollision(o, old, entry{key: key, value: value})
	}
	oldHash := hasher.Hash(old.key.(K))
	oldChunk := chunkAt(oldHash, depth)
	newChunk := chunkAt(h, depth)

	if oldChunk == newChunk {
		child := splitLeaf[K, V](o, hasher, old, key, value, h, depth+1)
		b := newBranch(o)
		b.branch.InsertAt(oldChunk, entry{child: child})
		return b
	}

	b := newBranch(o)
	b.branch.InsertAt(oldChunk, old)
	b.branch.InsertAt(newChunk, entry{key: key, value: value})
	return b
}

func setCollision[K, V any](n *node, o *owner.Token, hasher hashkey.Hasher[K], key K, value V) (*node, bool) {
	nn := ensureOwned(n, o)
	for i, e := range nn.collisions {
		if hasher.Equal(e.key.(K), key) {
			nn.collisions[i] = entry{key: key, value: value}
			return nn, false
		}
	}
	nn.collisions = append(nn.collisions, entry{key: key, value: value})
	return nn, true
}

func deleteNode[K, V any](n *node, o *owner.Token, hasher hashkey.Hasher[K], key K, h uint32, depth int) (*node, bool) {
	if n.isCollision() {
		for i, e := range n.collisions {
			if hasher.Equal(e.key.(K), key) {
				nn := ensureOwned(n, o)
				nn.collisions = append(nn.collisions[:i:i], nn.collisions[i+1:]...)
				return nn, true
			}
		}
		return n, false
	}

	chunk := chunkAt(h, depth)
	existing, found := n.branch.Get(chunk)
	if !found {
		return n, false
	}

	if existing.child == nil {
		if !hasher.Equal(existing.key.(K), key) {
			return n, false
		}
		nn := ensureOwned(n, o)
		nn.branch.DeleteAt(chunk)
		return nn, true
	}

	newChild, deleted := deleteNode(existing.child, o, hasher, key, h, depth+1)
	if !deleted {
		return n, false
	}

	nn := ensureOwned(n, o)
	switch {
	case newChild.isEmpty():
		nn.branch.DeleteAt(chunk)
	default:
		if collapsed, ok := collapseChild(newChild); ok {
			nn.branch.InsertAt(chunk, collapsed)
		} else {
			nn.branch.InsertAt(chunk, entry{child: newChild})
		}
	}
	return nn, true
}
