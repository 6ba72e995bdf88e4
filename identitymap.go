package fastjson

// IdentityMap tracks pointer identities seen during one Marshal call, so
// Options.DetectCycles can turn a self-referential Go value into an
// ErrType error instead of an infinite recursion. The Go shape of
// original_source/ext/oj's circarray.c, which keeps an analogous
// seen-pointers table while dumping a Ruby object graph; reduced here to
// the opt-in hook spec.md's Design Notes call for rather than a default-on
// behavior, since walking every pointer costs something even when no
// cycle exists.
type IdentityMap struct {
	seen map[uintptr]bool
}

// NewIdentityMap returns an empty IdentityMap.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{seen: make(map[uintptr]bool)}
}

// Enter records ptr as being under construction, returning false if ptr
// was already entered (a cycle) and true otherwise. Pair every true
// result with a deferred Leave.
func (m *IdentityMap) Enter(ptr uintptr) bool {
	if m.seen[ptr] {
		return false
	}
	m.seen[ptr] = true
	return true
}

// Leave releases ptr, allowing it to appear again in a sibling branch of
// the value graph (only true cycles — an ancestor pointing back to
// itself — are rejected, not every diamond-shaped sharing of a pointer).
func (m *IdentityMap) Leave(ptr uintptr) {
	delete(m.seen, ptr)
}
