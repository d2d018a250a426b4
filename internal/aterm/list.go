package aterm

// Empty returns the empty list.
func (s *Store) Empty() *Term { return s.empty }

// Cons prepends head to tail.
func (s *Store) Cons(head, tail *Term) *Term {
	return s.makeNode(KindList, s.consSym, []*Term{head, tail})
}

// List builds a list from elements, left to right.
func (s *Store) List(elems ...*Term) *Term {
	l := s.empty
	for i := len(elems) - 1; i >= 0; i-- {
		l = s.Cons(elems[i], l)
	}
	return l
}

// Head returns the first element of a non-empty list.
func Head(l *Term) *Term { return l.args[0] }

// Tail returns the list without its first element.
func Tail(l *Term) *Term { return l.args[1] }

// Length returns the number of elements of a list.
func Length(l *Term) int { return l.length }

// At returns the i-th element of a list.
func At(l *Term, i int) *Term {
	for ; i > 0; i-- {
		l = l.args[1]
	}
	return l.args[0]
}

// Slice copies the list's elements into a Go slice.
func Slice(l *Term) []*Term {
	out := make([]*Term, 0, l.length)
	for ; !l.IsEmpty(); l = l.args[1] {
		out = append(out, l.args[0])
	}
	return out
}

// Reverse returns the list with its elements in reverse order.
func (s *Store) Reverse(l *Term) *Term {
	out := s.empty
	for ; !l.IsEmpty(); l = l.args[1] {
		out = s.Cons(l.args[0], out)
	}
	return out
}

// Concat appends m behind l.
func (s *Store) Concat(l, m *Term) *Term {
	if l.IsEmpty() {
		return m
	}
	if m.IsEmpty() {
		return l
	}
	elems := Slice(l)
	out := m
	for i := len(elems) - 1; i >= 0; i-- {
		out = s.Cons(elems[i], out)
	}
	return out
}

// Append adds elem at the end of l.
func (s *Store) Append(l, elem *Term) *Term {
	return s.Concat(l, s.Cons(elem, s.empty))
}

// Replace returns l with the element at position i replaced by elem.
func (s *Store) Replace(l *Term, elem *Term, i int) *Term {
	elems := Slice(l)
	elems[i] = elem
	return s.List(elems...)
}

// IndexOf returns the position of elem in l starting at position start,
// or -1 if absent. Comparison is pointer equality.
func IndexOf(l *Term, elem *Term, start int) int {
	i := 0
	for ; !l.IsEmpty(); l, i = l.args[1], i+1 {
		if i >= start && l.args[0] == elem {
			return i
		}
	}
	return -1
}

// Member reports whether elem occurs in l.
func Member(l *Term, elem *Term) bool { return IndexOf(l, elem, 0) >= 0 }
