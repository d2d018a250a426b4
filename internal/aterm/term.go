package aterm

import (
	"strconv"
	"strings"
)

// Kind discriminates the three term shapes.
type Kind uint8

const (
	KindAppl Kind = iota
	KindInt
	KindList
)

// Term is an immutable node in the maximally shared term DAG. Terms are only
// created through a Store, which hash-conses them: two structurally equal
// terms are the same pointer (invariant T1), so Equal is pointer comparison.
//
// Lists are Appl nodes with the reserved head symbols "[_,_]" (cons) and
// "[]" (empty); they carry KindList so list traversals need no symbol
// compare.
type Term struct {
	kind Kind
	sym  *Symbol
	args []*Term
	n    int64
	hash uint64

	// length caches the list length on cons nodes, making Length O(1)
	// after construction.
	length int

	marked bool
}

func (t *Term) Kind() Kind { return t.kind }

// Function returns the head symbol of an application.
func (t *Term) Function() *Symbol { return t.sym }

// Arity returns the number of children of an application.
func (t *Term) Arity() int { return len(t.args) }

// Arg returns the i-th child of an application.
func (t *Term) Arg(i int) *Term { return t.args[i] }

// Args returns the children. The slice must not be mutated (invariant T2).
func (t *Term) Args() []*Term { return t.args }

// Int returns the payload of an integer term.
func (t *Term) Int() int64 { return t.n }

// IsInt reports whether t is an integer term.
func (t *Term) IsInt() bool { return t.kind == KindInt }

// IsList reports whether t is a list node (empty or cons).
func (t *Term) IsList() bool { return t.kind == KindList }

// IsEmpty reports whether t is the empty list.
func (t *Term) IsEmpty() bool { return t.kind == KindList && len(t.args) == 0 }

// Equal is O(1): hash-consing makes structural equality pointer equality.
func Equal(t, u *Term) bool { return t == u }

// Name returns the head-symbol name of an application. Interned name
// terms are nullary quoted applications, so this reads their payload.
func Name(t *Term) string { return t.sym.Name }

func (t *Term) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Term) write(b *strings.Builder) {
	switch t.kind {
	case KindInt:
		b.WriteString(strconv.FormatInt(t.n, 10))
	case KindList:
		b.WriteByte('[')
		for i, cur := 0, t; !cur.IsEmpty(); i, cur = i+1, cur.args[1] {
			if i > 0 {
				b.WriteByte(',')
			}
			cur.args[0].write(b)
		}
		b.WriteByte(']')
	default:
		if t.sym.Quoted {
			b.WriteString(strconv.Quote(t.sym.Name))
		} else {
			b.WriteString(t.sym.Name)
		}
		if len(t.args) > 0 {
			b.WriteByte('(')
			for i, a := range t.args {
				if i > 0 {
					b.WriteByte(',')
				}
				a.write(b)
			}
			b.WriteByte(')')
		}
	}
}
