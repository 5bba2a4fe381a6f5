package draft

// GetAny and SetAny let a caller that doesn't statically know a Draft's
// kind (a generic JSON-patch applier, say) still drive it through one
// call site: they dispatch to whichever of {Vec, Map, Set, Record} the
// Draft currently wraps, based on selector's dynamic type.

// GetAny reads the element addressed by selector: an int index for a
// Vec, any key for a Map, or a field name (string) for a Record. Sets
// have no addressable read; use Has.
func (d *Draft) GetAny(selector any) (any, bool) {
	switch d.working.kind {
	case KindVec:
		i, ok := selector.(int)
		if !ok {
			panic(kindMismatchError("GetAny", KindVec, d.working.kind))
		}
		return d.working.vec.Get(i)
	case KindMap:
		return d.working.m.Get(selector)
	case KindRecord:
		name, ok := selector.(string)
		if !ok {
			panic(kindMismatchError("GetAny", KindRecord, d.working.kind))
		}
		return d.working.rec.fields.Get(name)
	default:
		panic(kindMismatchError("GetAny", KindMap, d.working.kind))
	}
}

// SetAny writes value at the position addressed by selector, with the
// same selector typing as GetAny; for a Set, selector is ignored and
// value is the member to add.
func (d *Draft) SetAny(selector, value any) {
	switch d.working.kind {
	case KindVec:
		i, ok := selector.(int)
		if !ok {
			panic(kindMismatchError("SetAny", KindVec, d.working.kind))
		}
		d.Set(i, value)
	case KindMap:
		d.SetKey(selector, value)
	case KindSet:
		d.Add(value)
	case KindRecord:
		name, ok := selector.(string)
		if !ok {
			panic(kindMismatchError("SetAny", KindRecord, d.working.kind))
		}
		d.SetField(name, value)
	default:
		panic(kindMismatchError("SetAny", KindVec, d.working.kind))
	}
}
