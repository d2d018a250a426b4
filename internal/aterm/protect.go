package aterm

// Root protection. A term is alive iff it is reachable from a registered
// root (invariant T3): a protected term, a protected cell, a protected
// slice of cells, or a child of a live term. Collect evicts everything else
// from the intern tables; the Go runtime then reclaims the nodes.
//
// Protection is counted, so Protect/Unprotect pairs nest.

// Protect registers t as a root.
func (s *Store) Protect(t *Term) {
	if t != nil {
		s.roots[t]++
	}
}

// Unprotect removes one registration of t.
func (s *Store) Unprotect(t *Term) {
	if t == nil {
		return
	}
	if s.roots[t] <= 1 {
		delete(s.roots, t)
	} else {
		s.roots[t]--
	}
}

// ProtectCell registers the cell *p as a root. The cell may be freely
// reassigned; the term it holds at collection time is what stays alive.
func (s *Store) ProtectCell(p **Term) { s.rootPtrs[p]++ }

// UnprotectCell removes one registration of the cell.
func (s *Store) UnprotectCell(p **Term) {
	if s.rootPtrs[p] <= 1 {
		delete(s.rootPtrs, p)
	} else {
		s.rootPtrs[p]--
	}
}

// ProtectArray registers a slice of term cells as roots. Reassigning an
// element is always safe. The registration tracks the slice header through
// the pointer, so growing the slice in place keeps protection intact.
func (s *Store) ProtectArray(arr *[]*Term) {
	s.rootCells = append(s.rootCells, arr)
}

// UnprotectArray removes a slice registration.
func (s *Store) UnprotectArray(arr *[]*Term) {
	for i, c := range s.rootCells {
		if c == arr {
			s.rootCells = append(s.rootCells[:i], s.rootCells[i+1:]...)
			return
		}
	}
}

func mark(t *Term) {
	if t == nil || t.marked {
		return
	}
	t.marked = true
	for _, a := range t.args {
		mark(a)
	}
}

// Collect drops every interned node not reachable from a root. Indexed
// sets and tables participate as roots through their registered contents
// (they register their backing slices on creation).
func (s *Store) Collect() {
	for t := range s.roots {
		mark(t)
	}
	for p := range s.rootPtrs {
		mark(*p)
	}
	for _, arr := range s.rootCells {
		for _, t := range *arr {
			mark(t)
		}
	}
	// The reserved constants stay regardless.
	mark(s.empty)
	mark(s.invalid)

	for h, bucket := range s.buckets {
		kept := bucket[:0]
		for _, t := range bucket {
			if t.marked {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(s.buckets, h)
		} else {
			s.buckets[h] = kept
		}
	}
	for n, t := range s.ints {
		if !t.marked {
			delete(s.ints, n)
		}
	}
	for _, bucket := range s.buckets {
		for _, t := range bucket {
			t.marked = false
		}
	}
	for _, t := range s.ints {
		t.marked = false
	}
}
