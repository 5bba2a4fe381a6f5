package hamt

import (
	"fmt"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	qt "github.com/frankban/quicktest"

	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/owner"
)

func collect[K comparable, V any](m *Map[K, V]) map[K]V {
	out := map[K]V{}
	m.Iter()(func(k K, v V) bool {
		out[k] = v
		return true
	})
	return out
}

func TestSetGetRoundTrip(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[string, int]()
	want := map[string]int{}
	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("key-%d", i)
		m = m.Set(o, key, i)
		want[key] = i
	}

	c.Assert(m.Len(), qt.Equals, len(want))
	for k, v := range want {
		got, ok := m.Get(k)
		c.Assert(ok, qt.IsTrue)
		c.Assert(got, qt.Equals, v)
	}

	if diff := cmp.Diff(want, collect(m)); diff != "" {
		t.Fatalf("Map contents mismatch (-want +got):\n%s", diff)
	}
}

func TestSetOverwriteDoesNotGrowCount(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[string, int]()
	m = m.Set(o, "a", 1)
	m = m.Set(o, "a", 2)

	c.Assert(m.Len(), qt.Equals, 1)
	got, ok := m.Get("a")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, 2)
}

func TestSetDoesNotMutateSource(t *testing.T) {
	c := qt.New(t)

	o1 := owner.New()
	base := NewComparable[string, int]()
	for i := 0; i < 100; i++ {
		base = base.Set(o1, fmt.Sprintf("k%d", i), i)
	}

	o2 := owner.New()
	edited := base.Set(o2, "k50", -1)

	got, _ := base.Get("k50")
	c.Assert(got, qt.Equals, 50)
	got, _ = edited.Get("k50")
	c.Assert(got, qt.Equals, -1)
	c.Assert(base.Len(), qt.Equals, 100)
	c.Assert(edited.Len(), qt.Equals, 100)
}

func TestDeleteRemovesAndShrinks(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[int, string]()
	for i := 0; i < 200; i++ {
		m = m.Set(o, i, fmt.Sprintf("v%d", i))
	}
	c.Assert(m.Len(), qt.Equals, 200)

	for i := 0; i < 200; i += 2 {
		m = m.Delete(o, i)
	}
	c.Assert(m.Len(), qt.Equals, 100)

	for i := 0; i < 200; i++ {
		_, ok := m.Get(i)
		c.Assert(ok, qt.Equals, i%2 == 1)
	}
}

func TestDeleteAbsentKeyIsNoop(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[string, int]().Set(o, "a", 1)
	same := m.Delete(o, "missing")
	c.Assert(same, qt.Equals, m)
}

func TestDeleteThenReinsertRoundTrips(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[int, int]()
	for i := 0; i < 64; i++ {
		m = m.Set(o, i, i*i)
	}
	for i := 0; i < 64; i++ {
		m = m.Delete(o, i)
	}
	c.Assert(m.Len(), qt.Equals, 0)

	m = m.Set(o, 7, 49)
	c.Assert(m.Len(), qt.Equals, 1)
	got, ok := m.Get(7)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, 49)
}

func TestEqualIgnoresInsertionOrder(t *testing.T) {
	c := qt.New(t)

	o1, o2 := owner.New(), owner.New()
	a := NewComparable[string, int]().Set(o1, "x", 1).Set(o1, "y", 2)
	b := NewComparable[string, int]().Set(o2, "y", 2).Set(o2, "x", 1)

	c.Assert(a.Equal(b), qt.IsTrue)
	c.Assert(b.Equal(a), qt.IsTrue)

	diff := a.Set(o2, "z", 3)
	c.Assert(a.Equal(diff), qt.IsFalse)
}

func TestDynamicHasherAcceptsNonComparableKeys(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := New[any, string](hashkey.Dynamic{})
	sliceKey := []int{1, 2, 3}
	m = m.Set(o, sliceKey, "slice-value")
	m = m.Set(o, "plain", "plain-value")

	got, ok := m.Get(sliceKey)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, "slice-value")

	got, ok = m.Get("plain")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, "plain-value")

	otherSlice := []int{1, 2, 3}
	_, ok = m.Get(otherSlice)
	c.Assert(ok, qt.IsFalse) // distinct slice instance, distinct identity
}

func TestSetType(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	s := NewComparableSet[string]()
	s = s.Add(o, "a")
	s = s.Add(o, "b")
	s = s.Add(o, "a") // idempotent

	c.Assert(s.Len(), qt.Equals, 2)
	c.Assert(s.Has("a"), qt.IsTrue)
	c.Assert(s.Has("c"), qt.IsFalse)

	s2 := s.Delete(owner.New(), "a")
	c.Assert(s2.Len(), qt.Equals, 1)
	c.Assert(s.Len(), qt.Equals, 2) // original untouched

	var seen []string
	s.Iter()(func(k string) bool {
		seen = append(seen, k)
		return true
	})
	sort.Strings(seen)
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Fatalf("Set contents mismatch (-want +got):\n%s", diff)
	}
}

func TestIterStopsEarly(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[int, int]()
	for i := 0; i < 50; i++ {
		m = m.Set(o, i, i)
	}

	count := 0
	m.Iter()(func(k, v int) bool {
		count++
		return count < 5
	})
	c.Assert(count, qt.Equals, 5)
}

func TestManyKeysForceCollisionSplits(t *testing.T) {
	c := qt.New(t)

	o := owner.New()
	m := NewComparable[int, int]()
	const n = 5000
	for i := 0; i < n; i++ {
		m = m.Set(o, i, i)
	}
	c.Assert(m.Len(), qt.Equals, n)
	for i := 0; i < n; i += 37 {
		got, ok := m.Get(i)
		c.Assert(ok, qt.IsTrue)
		c.Assert(got, qt.Equals, i)
	}
}
