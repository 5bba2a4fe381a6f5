package vec

import (
	"testing"

	"github.com/kestrelcore/pds/owner"
)

func mustGet(t *testing.T, v *Vec, i int) int {
	t.Helper()
	val, ok := v.Get(i)
	if !ok {
		t.Fatalf("Get(%d): expected ok, got missing (len=%d)", i, v.Len())
	}
	return val.(int)
}

func buildRange(n int) *Vec {
	o := owner.New()
	v := Empty
	for i := 0; i < n; i++ {
		v = v.Push(o, i)
	}
	return v
}

func TestPushGetRoundTrip(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 31, 32, 33, 63, 64, 65, 1000, 1025} {
		v := buildRange(n)
		if got := v.Len(); got != n {
			t.Fatalf("n=%d: Len() = %d, want %d", n, got, n)
		}
		for i := 0; i < n; i++ {
			if got := mustGet(t, v, i); got != i {
				t.Fatalf("n=%d: Get(%d) = %d, want %d", n, i, got, i)
			}
		}
		if _, ok := v.Get(n); n >= 0 && ok {
			t.Fatalf("n=%d: Get(%d) should be out of range", n, n)
		}
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	t.Parallel()

	o := owner.New()
	v := buildRange(1025)

	for i := 1025; i > 0; i-- {
		var popped any
		var ok bool
		v, popped, ok = v.Pop(o)
		if !ok {
			t.Fatalf("Pop at len %d: expected ok", i)
		}
		if popped.(int) != i-1 {
			t.Fatalf("Pop at len %d: popped %v, want %d", i, popped, i-1)
		}
		if v.Len() != i-1 {
			t.Fatalf("Pop at len %d: new Len() = %d, want %d", i, v.Len(), i-1)
		}
	}
	if _, _, ok := v.Pop(o); ok {
		t.Fatalf("Pop on empty Vec should report ok=false")
	}
}

func TestAssocDoesNotMutateSource(t *testing.T) {
	t.Parallel()

	base := buildRange(100)
	o := owner.New()
	edited := base.Assoc(o, 50, -1)

	if got := mustGet(t, base, 50); got != 50 {
		t.Fatalf("base mutated by Assoc: Get(50) = %d, want 50", got)
	}
	if got := mustGet(t, edited, 50); got != -1 {
		t.Fatalf("edited.Get(50) = %d, want -1", got)
	}
	for i := 0; i < 100; i++ {
		if i == 50 {
			continue
		}
		if got := mustGet(t, edited, i); got != i {
			t.Fatalf("edited.Get(%d) = %d, want %d", i, got, i)
		}
	}
}

func TestAssocSharesUntouchedNodes(t *testing.T) {
	t.Parallel()

	base := buildRange(1000)
	o := owner.New()
	edited := base.Assoc(o, 991, -1) // last index still inside the trie, not the tail

	// Only the rightmost spine should differ; a sibling leaf far from the
	// edit must be the identical node, not a clone.
	if base.root == edited.root {
		t.Fatalf("expected root to differ after Assoc touched it")
	}
	leftBase := base.root.items[0]
	leftEdited := edited.root.items[0]
	if leftBase != leftEdited {
		t.Fatalf("expected untouched leftmost subtree to be shared by identity")
	}
}

func TestAssocOutOfRangePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Assoc to panic on out-of-range index")
		}
	}()
	buildRange(5).Assoc(owner.New(), 5, 0)
}

func TestConcatPreservesOrder(t *testing.T) {
	t.Parallel()

	for _, pair := range [][2]int{{0, 10}, {10, 0}, {31, 1}, {32, 32}, {5, 100}, {100, 5}, {1000, 1000}} {
		a := buildRange(pair[0])
		bOwner := owner.New()
		b := Empty
		for i := 0; i < pair[1]; i++ {
			b = b.Push(bOwner, pair[0]+i)
		}

		o := owner.New()
		cat := a.Concat(o, b)

		want := pair[0] + pair[1]
		if cat.Len() != want {
			t.Fatalf("Concat(%d,%d): Len() = %d, want %d", pair[0], pair[1], cat.Len(), want)
		}
		for i := 0; i < want; i++ {
			if got := mustGet(t, cat, i); got != i {
				t.Fatalf("Concat(%d,%d): Get(%d) = %d, want %d", pair[0], pair[1], i, got, i)
			}
		}
	}
}

func TestConcatIdentityOnEmptyOperand(t *testing.T) {
	t.Parallel()

	v := buildRange(10)
	o := owner.New()

	if got := v.Concat(o, Empty); got != v {
		t.Fatalf("Concat with empty right operand should return v by identity")
	}
	if got := Empty.Concat(o, v); got != v {
		t.Fatalf("Concat with empty left operand should return the right operand by identity")
	}
}

func TestSlice(t *testing.T) {
	t.Parallel()

	cases := []struct{ n, lo, hi int }{
		{100, 0, 100},
		{100, 0, 0},
		{100, 10, 10},
		{100, 0, 1},
		{100, 99, 100},
		{100, 10, 90},
		{1000, 31, 999},
		{1000, 32, 64},
		{1000, 500, 501},
	}

	for _, c := range cases {
		v := buildRange(c.n)
		o := owner.New()
		s := v.Slice(o, c.lo, c.hi)

		want := c.hi - c.lo
		if s.Len() != want {
			t.Fatalf("Slice(%d,%d) of n=%d: Len() = %d, want %d", c.lo, c.hi, c.n, s.Len(), want)
		}
		for i := 0; i < want; i++ {
			if got := mustGet(t, s, i); got != c.lo+i {
				t.Fatalf("Slice(%d,%d) of n=%d: Get(%d) = %d, want %d", c.lo, c.hi, c.n, i, got, c.lo+i)
			}
		}
	}
}

func TestSliceFullRangeIsIdentity(t *testing.T) {
	t.Parallel()

	v := buildRange(50)
	if got := v.Slice(owner.New(), 0, v.Len()); got != v {
		t.Fatalf("Slice(0, Len()) should return v by identity")
	}
}

func TestSliceOutOfRangePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatalf("expected Slice to panic on an out-of-range bound")
		}
	}()
	buildRange(10).Slice(owner.New(), 0, 11)
}

func TestSliceThenPushExtendsCorrectly(t *testing.T) {
	t.Parallel()

	v := buildRange(200)
	o := owner.New()
	s := v.Slice(o, 50, 150) // 100 elements: 50..149

	s = s.Push(o, -1)
	if got := s.Len(); got != 101 {
		t.Fatalf("Len() after push = %d, want 101", got)
	}
	if got := mustGet(t, s, 100); got != -1 {
		t.Fatalf("Get(100) = %d, want -1", got)
	}
	for i := 0; i < 100; i++ {
		if got := mustGet(t, s, i); got != 50+i {
			t.Fatalf("Get(%d) = %d, want %d", i, got, 50+i)
		}
	}
}

func TestFromSliceToSliceRoundTrip(t *testing.T) {
	t.Parallel()

	xs := make([]int, 500)
	for i := range xs {
		xs[i] = i * 3
	}
	v := FromSlice(xs)
	got := ToSlice[int](v)

	if len(got) != len(xs) {
		t.Fatalf("ToSlice length = %d, want %d", len(got), len(xs))
	}
	for i := range xs {
		if got[i] != xs[i] {
			t.Fatalf("ToSlice[%d] = %d, want %d", i, got[i], xs[i])
		}
	}
}

func TestIterYieldsInOrderAndStopsEarly(t *testing.T) {
	t.Parallel()

	v := buildRange(40)
	var seen []int
	for i, x := range v.Iter() {
		if i >= 5 {
			break
		}
		seen = append(seen, x.(int))
	}
	want := []int{0, 1, 2, 3, 4}
	if len(seen) != len(want) {
		t.Fatalf("Iter stopped-early length = %d, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("Iter()[%d] = %d, want %d", i, seen[i], want[i])
		}
	}
}
