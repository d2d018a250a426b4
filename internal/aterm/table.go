package aterm

// Table is a term-to-term mapping whose keys and values count as store
// roots for its lifetime. Iteration order of Keys and Values follows
// insertion order, so traversals are deterministic.
type Table struct {
	store *Store
	m     map[*Term]*Term
	order []*Term
	live  []*Term
}

// NewTable creates an empty table backed by the store.
func NewTable(store *Store) *Table {
	tb := &Table{store: store, m: make(map[*Term]*Term)}
	store.ProtectArray(&tb.live)
	return tb
}

// Put maps key to value, replacing any previous value.
func (tb *Table) Put(key, value *Term) {
	if _, ok := tb.m[key]; !ok {
		tb.order = append(tb.order, key)
	}
	tb.m[key] = value
	tb.rebuildLive()
}

// Get returns the value for key, or nil when absent.
func (tb *Table) Get(key *Term) *Term { return tb.m[key] }

// Remove deletes the entry for key.
func (tb *Table) Remove(key *Term) {
	if _, ok := tb.m[key]; !ok {
		return
	}
	delete(tb.m, key)
	for i, k := range tb.order {
		if k == key {
			tb.order = append(tb.order[:i], tb.order[i+1:]...)
			break
		}
	}
	tb.rebuildLive()
}

// Keys returns the keys in insertion order.
func (tb *Table) Keys() []*Term {
	out := make([]*Term, len(tb.order))
	copy(out, tb.order)
	return out
}

// Values returns the values in key insertion order.
func (tb *Table) Values() []*Term {
	out := make([]*Term, 0, len(tb.order))
	for _, k := range tb.order {
		out = append(out, tb.m[k])
	}
	return out
}

// Size returns the number of entries.
func (tb *Table) Size() int { return len(tb.m) }

// Reset empties the table, keeping it usable.
func (tb *Table) Reset() {
	tb.m = make(map[*Term]*Term)
	tb.order = nil
	tb.rebuildLive()
}

// Destroy releases the table's root registration.
func (tb *Table) Destroy() {
	tb.store.UnprotectArray(&tb.live)
	tb.m = nil
	tb.order = nil
	tb.live = nil
}

func (tb *Table) rebuildLive() {
	tb.live = tb.live[:0]
	for _, k := range tb.order {
		tb.live = append(tb.live, k, tb.m[k])
	}
}
