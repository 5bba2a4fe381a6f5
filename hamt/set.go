package hamt

import (
	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/owner"
)

// Set is a persistent unordered set of K, realized as a Map[K,
// struct{}] — the same trick the spec's Set module is defined in terms
// of Map for.
type Set[K any] struct {
	m *Map[K, struct{}]
}

// NewSet returns an empty Set using the given hasher for K.
func NewSet[K any](h hashkey.Hasher[K]) *Set[K] {
	return &Set[K]{m: New[K, struct{}](h)}
}

// NewComparableSet returns an empty Set[K] for a built-in comparable K.
func NewComparableSet[K comparable]() *Set[K] {
	return NewSet[K](hashkey.Comparable[K]{})
}

// Len returns the number of elements in s.
func (s *Set[K]) Len() int {
	if s == nil {
		return 0
	}
	return s.m.Len()
}

// Has reports whether k is a member of s.
func (s *Set[K]) Has(k K) bool {
	if s == nil {
		return false
	}
	return s.m.Has(k)
}

// Add returns a Set equal to s with k added.
func (s *Set[K]) Add(o *owner.Token, k K) *Set[K] {
	return &Set[K]{m: s.m.Set(o, k, struct{}{})}
}

// Delete returns a Set equal to s with k removed.
func (s *Set[K]) Delete(o *owner.Token, k K) *Set[K] {
	nm := s.m.Delete(o, k)
	if nm == s.m {
		return s
	}
	return &Set[K]{m: nm}
}

// Clone returns a new Set header sharing s's structure; Set is
// persistent, so nothing below the header is copied.
func (s *Set[K]) Clone() *Set[K] {
	if s == nil {
		return nil
	}
	return &Set[K]{m: s.m.Clone()}
}

// Equal reports whether s and other hold the same elements.
func (s *Set[K]) Equal(other *Set[K]) bool {
	if s == other {
		return true
	}
	if s == nil || other == nil {
		return s.Len() == other.Len()
	}
	return s.m.Equal(other.m)
}

// Iter returns a finite, non-restartable iterator over s's elements.
func (s *Set[K]) Iter() func(yield func(K) bool) {
	return func(yield func(K) bool) {
		if s == nil {
			return
		}
		s.m.Iter()(func(k K, _ struct{}) bool {
			return yield(k)
		})
	}
}
