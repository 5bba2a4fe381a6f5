package draft

import "sync"

// identity tracks every *Value ever returned by Produce or one of the
// New*/Empty* constructors; IsManaged reads it to recognize such a value
// as a safe, immutable handle.
// Process-global and guarded by a RWMutex since independent Produce
// calls on unrelated bases may run concurrently, the same discipline
// internal/hashkey's object-identity tag table uses.
var identity = struct {
	mu        sync.RWMutex
	published map[*Value]struct{}
}{published: map[*Value]struct{}{}}

func markPublished(v *Value) {
	if v == nil {
		return
	}
	identity.mu.Lock()
	identity.published[v] = struct{}{}
	identity.mu.Unlock()
}

func isPublished(v *Value) bool {
	if v == nil {
		return false
	}
	identity.mu.RLock()
	_, ok := identity.published[v]
	identity.mu.RUnlock()
	return ok
}
