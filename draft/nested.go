package draft

// Index opens a nested Draft over the Value stored at position i of the
// Vec this Draft wraps, so edits to that nested collection replay
// against the same owner.Token as the rest of this produce call and fold
// back into this Draft's working Vec when this Draft finalizes. Calling
// Index twice for the same i within one produce call returns the same
// nested Draft rather than two independently-edited ones.
func (d *Draft) Index(i int) *Draft {
	vv := d.working.asVec("Index")
	raw, ok := vv.Get(i)
	if !ok {
		panic(indexError("Index", i, vv.Len()))
	}
	nestedBase, ok := raw.(*Value)
	if !ok {
		panic(kindMismatchError("Index", KindRecord, d.working.kind))
	}

	if d.nested == nil {
		d.nested = map[int]*Draft{}
	}
	if nd, ok := d.nested[i]; ok {
		return nd
	}
	nd := &Draft{base: nestedBase, working: nestedBase, owner: d.owner}
	d.nested[i] = nd
	return nd
}

// Field opens a nested Draft over the Value stored under name in the
// Record this Draft wraps. Identical identity discipline to Index, keyed
// by field name instead of slot.
func (d *Draft) Field(name string) *Draft {
	rec := d.working.asRecord("Field")
	raw, ok := rec.fields.Get(name)
	if !ok {
		panic(kindMismatchError("Field", KindRecord, d.working.kind))
	}
	nestedBase, ok := raw.(*Value)
	if !ok {
		panic(kindMismatchError("Field", KindRecord, d.working.kind))
	}

	if d.fields == nil {
		d.fields = map[string]*Draft{}
	}
	if nd, ok := d.fields[name]; ok {
		return nd
	}
	nd := &Draft{base: nestedBase, working: nestedBase, owner: d.owner}
	d.fields[name] = nd
	return nd
}
