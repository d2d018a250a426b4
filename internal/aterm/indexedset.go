package aterm

// IndexedSet assigns dense, stable indices to terms. Indices are handed out
// monotonically; removing an element frees its index for reuse but never
// renumbers the others. The set's contents are protected as store roots
// for its lifetime.
type IndexedSet struct {
	store *Store
	index map[*Term]int
	elems []*Term
	free  []int
}

// NewIndexedSet creates an empty indexed set backed by the store.
func NewIndexedSet(store *Store) *IndexedSet {
	is := &IndexedSet{store: store, index: make(map[*Term]int)}
	store.ProtectArray(&is.elems)
	return is
}

// Put inserts t, returning its index and whether it was newly added.
// Putting a present element returns the existing index with isNew false.
func (is *IndexedSet) Put(t *Term) (int, bool) {
	if i, ok := is.index[t]; ok {
		return i, false
	}
	var i int
	if n := len(is.free); n > 0 {
		i = is.free[n-1]
		is.free = is.free[:n-1]
		is.elems[i] = t
	} else {
		i = len(is.elems)
		is.elems = append(is.elems, t)
	}
	is.index[t] = i
	return i, true
}

// Index returns t's index, or -1 when absent.
func (is *IndexedSet) Index(t *Term) int {
	if i, ok := is.index[t]; ok {
		return i
	}
	return -1
}

// Remove deletes t from the set.
func (is *IndexedSet) Remove(t *Term) {
	i, ok := is.index[t]
	if !ok {
		return
	}
	delete(is.index, t)
	is.elems[i] = nil
	is.free = append(is.free, i)
}

// At returns the element with index i, or nil when the slot is free.
func (is *IndexedSet) At(i int) *Term {
	if i < 0 || i >= len(is.elems) {
		return nil
	}
	return is.elems[i]
}

// Elements returns the present elements in index order.
func (is *IndexedSet) Elements() []*Term {
	out := make([]*Term, 0, len(is.index))
	for _, t := range is.elems {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// Size returns the number of present elements.
func (is *IndexedSet) Size() int { return len(is.index) }

// Destroy releases the set's root registration.
func (is *IndexedSet) Destroy() {
	is.store.UnprotectArray(&is.elems)
	is.index = nil
	is.elems = nil
	is.free = nil
}
