package draft

import "github.com/kestrelcore/pds/owner"

// Draft is a mutable façade over a Value, live for the duration of one
// Produce call. Edits apply immediately to transient copies stamped with
// the call's owner.Token (so a batch of edits clones each touched node
// only once); when the recipe returns, Produce finalizes the Draft into
// the resulting persistent Value, or the original by identity if nothing
// changed.
type Draft struct {
	base    *Value
	working *Value
	owner   *owner.Token
	dirty   bool

	nested map[int]*Draft    // opened via Index, keyed by Vec slot
	fields map[string]*Draft // opened via Field, keyed by Record field name
}

// Produce applies recipe to a mutable Draft over base and returns the
// resulting Value: base itself, by identity, if recipe made no edits,
// or a new Value sharing every untouched subtree with base otherwise.
func Produce(base *Value, recipe func(d *Draft)) *Value {
	d := &Draft{base: base, working: base, owner: owner.New()}
	recipe(d)
	return d.finalize()
}

// Kind reports which collection shape this Draft currently wraps.
func (d *Draft) Kind() Kind {
	return d.working.kind
}

// Len reports the current element or field count.
func (d *Draft) Len() int {
	return d.working.length()
}

// Get returns the element at Vec index i.
func (d *Draft) Get(i int) any {
	vv := d.working.asVec("Get")
	val, ok := vv.Get(i)
	if !ok {
		panic(indexError("Get", i, vv.Len()))
	}
	return val
}

// Set replaces the element at Vec index i with val.
func (d *Draft) Set(i int, val any) {
	vv := d.working.asVec("Set")
	d.working = &Value{kind: KindVec, vec: vv.Assoc(d.owner, i, val)}
	d.dirty = true
}

// Push appends val to the Vec this Draft wraps.
func (d *Draft) Push(val any) {
	vv := d.working.asVec("Push")
	d.working = &Value{kind: KindVec, vec: vv.Push(d.owner, val)}
	d.dirty = true
}

// Pop removes and returns the last element of the Vec this Draft wraps.
func (d *Draft) Pop() (any, bool) {
	vv := d.working.asVec("Pop")
	newVec, popped, ok := vv.Pop(d.owner)
	if ok {
		d.working = &Value{kind: KindVec, vec: newVec}
		d.dirty = true
	}
	return popped, ok
}

// GetKey returns the value stored for key in the Map this Draft wraps.
func (d *Draft) GetKey(key any) (any, bool) {
	mm := d.working.asMap("GetKey")
	return mm.Get(key)
}

// SetKey stores value under key in the Map this Draft wraps.
func (d *Draft) SetKey(key, value any) {
	mm := d.working.asMap("SetKey")
	d.working = &Value{kind: KindMap, m: mm.Set(d.owner, key, value)}
	d.dirty = true
}

// DeleteKey removes key from the Map this Draft wraps, if present.
func (d *Draft) DeleteKey(key any) {
	mm := d.working.asMap("DeleteKey")
	newMap := mm.Delete(d.owner, key)
	if newMap != mm {
		d.working = &Value{kind: KindMap, m: newMap}
		d.dirty = true
	}
}

// Has reports whether key is a member of the Map or Set this Draft
// wraps.
func (d *Draft) Has(key any) bool {
	switch d.working.kind {
	case KindMap:
		return d.working.m.Has(key)
	case KindSet:
		return d.working.set.Has(key)
	default:
		panic(kindMismatchError("Has", KindMap, d.working.kind))
	}
}

// Add adds member to the Set this Draft wraps.
func (d *Draft) Add(member any) {
	s := d.working.asSet("Add")
	d.working = &Value{kind: KindSet, set: s.Add(d.owner, member)}
	d.dirty = true
}

// Remove removes member from the Set this Draft wraps, if present.
func (d *Draft) Remove(member any) {
	s := d.working.asSet("Remove")
	newSet := s.Delete(d.owner, member)
	if newSet != s {
		d.working = &Value{kind: KindSet, set: newSet}
		d.dirty = true
	}
}

// GetField returns the value stored under name in the Record this Draft
// wraps.
func (d *Draft) GetField(name string) (any, bool) {
	rec := d.working.asRecord("GetField")
	return rec.fields.Get(name)
}

// SetField replaces the value stored under name in the Record this Draft
// wraps. Use Field instead when value is itself a nested Vec/Map/Set/
// Record you want to edit in place.
func (d *Draft) SetField(name string, value any) {
	rec := d.working.asRecord("SetField")
	d.working = &Value{kind: KindRecord, rec: &Record{fields: rec.fields.Set(d.owner, name, value)}}
	d.dirty = true
}

// finalize folds every opened nested draft back into this Draft's
// working value bottom-up (a nested draft finalizes its own nested
// drafts first), then returns the result: base by identity if nothing in
// this subtree changed, or the new working Value, newly marked
// published so IsManaged reports it.
func (d *Draft) finalize() *Value {
	for i, nd := range d.nested {
		childResult := nd.finalize()
		if childResult == nd.base {
			continue // untouched: nothing to fold back
		}
		vv := d.working.asVec("finalize")
		d.working = &Value{kind: KindVec, vec: vv.Assoc(d.owner, i, childResult)}
		d.dirty = true
	}
	for name, nd := range d.fields {
		childResult := nd.finalize()
		if childResult == nd.base {
			continue
		}
		rec := d.working.asRecord("finalize")
		d.working = &Value{kind: KindRecord, rec: &Record{fields: rec.fields.Set(d.owner, name, childResult)}}
		d.dirty = true
	}

	if !d.dirty {
		return d.base
	}
	markPublished(d.working)
	return d.working
}
