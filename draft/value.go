package draft

import (
	"github.com/kestrelcore/pds/hamt"
	"github.com/kestrelcore/pds/internal/hashkey"
	"github.com/kestrelcore/pds/orderindex"
	"github.com/kestrelcore/pds/owner"
	"github.com/kestrelcore/pds/vec"
)

// Kind identifies which of the four collection shapes a Value holds.
type Kind int

const (
	KindVec Kind = iota
	KindMap
	KindSet
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindVec:
		return "Vec"
	case KindMap:
		return "Map"
	case KindSet:
		return "Set"
	case KindRecord:
		return "Record"
	default:
		return "Kind(?)"
	}
}

// Value is the closed tagged union the draft/produce engine operates
// over: a persistent Vec, Map, Set, or Record. Exactly one payload field
// is meaningful, selected by kind.
type Value struct {
	kind Kind
	vec  *vec.Vec
	m    *hamt.Map[any, any]
	set  *hamt.Set[any]
	rec  *Record
}

// Record is a fixed set of named fields, each an arbitrary scalar or
// another managed *Value, stored in declaration order.
type Record struct {
	fields *orderindex.Index[string, any]
}

// Kind reports which collection shape v holds.
func (v *Value) Kind() Kind {
	return v.kind
}

// Len reports v's element or field count.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	return v.length()
}

func (v *Value) length() int {
	switch v.kind {
	case KindVec:
		return v.vec.Len()
	case KindMap:
		return v.m.Len()
	case KindSet:
		return v.set.Len()
	case KindRecord:
		return v.rec.fields.Len()
	default:
		invariant(false, "length", "unknown kind %d", v.kind)
		return 0
	}
}

func (v *Value) asVec(op string) *vec.Vec {
	if v.kind != KindVec {
		panic(kindMismatchError(op, KindVec, v.kind))
	}
	return v.vec
}

func (v *Value) asMap(op string) *hamt.Map[any, any] {
	if v.kind != KindMap {
		panic(kindMismatchError(op, KindMap, v.kind))
	}
	return v.m
}

func (v *Value) asSet(op string) *hamt.Set[any] {
	if v.kind != KindSet {
		panic(kindMismatchError(op, KindSet, v.kind))
	}
	return v.set
}

func (v *Value) asRecord(op string) *Record {
	if v.kind != KindRecord {
		panic(kindMismatchError(op, KindRecord, v.kind))
	}
	return v.rec
}

// NewVec wraps vv as a managed Value, immediately published: a
// freshly-built persistent Vec has no active owner and is already safe
// to share across multiple references.
func NewVec(vv *vec.Vec) *Value {
	v := &Value{kind: KindVec, vec: vv}
	markPublished(v)
	return v
}

// NewMap wraps mm as a managed Value.
func NewMap(mm *hamt.Map[any, any]) *Value {
	v := &Value{kind: KindMap, m: mm}
	markPublished(v)
	return v
}

// NewSet wraps ss as a managed Value.
func NewSet(ss *hamt.Set[any]) *Value {
	v := &Value{kind: KindSet, set: ss}
	markPublished(v)
	return v
}

// EmptyVec returns a managed Value wrapping an empty Vec.
func EmptyVec() *Value {
	return NewVec(vec.Empty)
}

// EmptyMap returns a managed Value wrapping an empty Map keyed by
// dynamically-typed (possibly non-comparable) keys.
func EmptyMap() *Value {
	return NewMap(hamt.New[any, any](hashkey.Dynamic{}))
}

// EmptySet returns a managed Value wrapping an empty Set of
// dynamically-typed members.
func EmptySet() *Value {
	return NewSet(hamt.NewSet[any](hashkey.Dynamic{}))
}

// Field is a single name/value pair passed to NewRecord.
type Field struct {
	Name  string
	Value any
}

// NewRecord builds a Record Value from fields in declaration order.
func NewRecord(fields ...Field) *Value {
	idx := orderindex.NewComparable[string, any]()
	o := owner.New()
	for _, f := range fields {
		idx = idx.Set(o, f.Name, f.Value)
	}
	v := &Value{kind: KindRecord, rec: &Record{fields: idx}}
	markPublished(v)
	return v
}

// IsManaged reports whether v was returned by some prior Produce call or
// one of the New*/Empty* constructors: an immutable handle safe to
// reference from multiple places without copying.
func IsManaged(v *Value) bool {
	return isPublished(v)
}
