package draft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	qt "github.com/frankban/quicktest"

	"github.com/kestrelcore/pds/hamt"
	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/vec"
)

func vecValues(v *Value) []any {
	vv := v.asVec("test")
	out := make([]any, 0, vv.Len())
	for _, x := range vv.Iter() {
		out = append(out, x)
	}
	return out
}

func TestProduceReturnsBaseByIdentityWhenNothingChanges(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.FromSlice([]int{1, 2, 3}))
	result := Produce(base, func(d *Draft) {
		d.Get(0) // read-only
	})

	c.Assert(result, qt.Equals, base)
}

func TestProduceVecPushSet(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.FromSlice([]int{1, 2, 3}))
	result := Produce(base, func(d *Draft) {
		d.Push(4)
		d.Set(0, 99)
	})

	c.Assert(result, qt.Not(qt.Equals), base)
	if diff := cmp.Diff([]any{1, 2, 3}, vecValues(base)); diff != "" {
		t.Fatalf("base mutated by Produce (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{99, 2, 3, 4}, vecValues(result)); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestProduceMapSetDelete(t *testing.T) {
	c := qt.New(t)

	base := NewMap(hamt.New[any, any](hashkey.Dynamic{}))
	base = Produce(base, func(d *Draft) {
		d.SetKey("a", 1)
		d.SetKey("b", 2)
	})

	result := Produce(base, func(d *Draft) {
		d.SetKey("a", 100)
		d.DeleteKey("b")
	})

	v, ok := base.asMap("test").Get("a")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, 1)

	v, ok = result.asMap("test").Get("a")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, 100)

	_, ok = result.asMap("test").Get("b")
	c.Assert(ok, qt.IsFalse)
}

func TestProduceSetAddRemove(t *testing.T) {
	c := qt.New(t)

	base := NewSet(hamt.NewSet[any](hashkey.Dynamic{}))
	base = Produce(base, func(d *Draft) {
		d.Add("x")
		d.Add("y")
	})

	result := Produce(base, func(d *Draft) {
		d.Remove("x")
		d.Add("z")
	})

	c.Assert(base.asSet("test").Has("x"), qt.IsTrue)
	c.Assert(result.asSet("test").Has("x"), qt.IsFalse)
	c.Assert(result.asSet("test").Has("z"), qt.IsTrue)
}

func TestNestedIndexDraftFoldsBack(t *testing.T) {
	c := qt.New(t)

	inner := NewVec(vec.FromSlice([]int{10, 20}))
	outer := NewVec(vec.FromSlice([]any{inner, "scalar"}))

	result := Produce(outer, func(d *Draft) {
		nested := d.Index(0)
		nested.Push(30)
	})

	c.Assert(result, qt.Not(qt.Equals), outer)

	outerVals := vecValues(outer)
	c.Assert(outerVals[0], qt.Equals, inner) // original untouched by identity

	resultVals := vecValues(result)
	newInner := resultVals[0].(*Value)
	c.Assert(newInner, qt.Not(qt.Equals), inner)
	if diff := cmp.Diff([]any{10, 20, 30}, vecValues(newInner)); diff != "" {
		t.Fatalf("nested result mismatch (-want +got):\n%s", diff)
	}
}

func TestNestedUntouchedIndexPreservesIdentity(t *testing.T) {
	c := qt.New(t)

	inner := NewVec(vec.FromSlice([]int{1, 2}))
	outer := NewVec(vec.FromSlice([]any{inner}))

	result := Produce(outer, func(d *Draft) {
		d.Index(0) // opened, but never edited
		_ = d.Len()
	})

	c.Assert(result, qt.Equals, outer) // nothing changed anywhere
}

func TestNestedFieldDraftFoldsBack(t *testing.T) {
	c := qt.New(t)

	inner := NewMap(hamt.New[any, any](hashkey.Dynamic{}))
	outer := NewRecord(Field{Name: "child", Value: inner}, Field{Name: "label", Value: "rec"})

	result := Produce(outer, func(d *Draft) {
		child := d.Field("child")
		child.SetKey("k", "v")
	})

	c.Assert(result, qt.Not(qt.Equals), outer)

	label, ok := outer.asRecord("test").fields.Get("label")
	c.Assert(ok, qt.IsTrue)
	c.Assert(label, qt.Equals, "rec")

	childResult, _ := result.asRecord("test").fields.Get("child")
	v, ok := childResult.(*Value).asMap("test").Get("k")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "v")

	origChild, _ := outer.asRecord("test").fields.Get("child")
	c.Assert(origChild, qt.Equals, inner)
}

func TestKindMismatchPanics(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.Empty)
	c.Assert(func() {
		Produce(base, func(d *Draft) {
			d.SetKey("a", 1)
		})
	}, qt.PanicMatches, "SetKey:.*")
}

func TestIndexOutOfRangePanics(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.FromSlice([]int{1, 2, 3}))
	c.Assert(func() {
		Produce(base, func(d *Draft) {
			d.Get(10)
		})
	}, qt.PanicMatches, "Get:.*")
}

func TestDispatcherSetAny(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.FromSlice([]int{1, 2, 3}))
	result := Produce(base, func(d *Draft) {
		d.SetAny(1, 200)
	})

	got, ok := result.asVec("test").Get(1)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, 200)
}

func TestIsManagedTracksConstructorsAndProduce(t *testing.T) {
	c := qt.New(t)

	base := NewVec(vec.FromSlice([]int{1}))
	c.Assert(IsManaged(base), qt.IsTrue)

	result := Produce(base, func(d *Draft) { d.Push(2) })
	c.Assert(IsManaged(result), qt.IsTrue)

	unmanaged := &Value{kind: KindVec, vec: vec.Empty}
	c.Assert(IsManaged(unmanaged), qt.IsFalse)
}
