package subst

import (
	"fmt"
	"strings"

	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// Names hands out names guaranteed not to collide with anything already
// interned in the store's symbol table. One counter per prefix.
type Names struct {
	m        *syntax.Maker
	counters map[string]int
}

// NewNames creates a fresh-name pool over the maker's store.
func NewNames(m *syntax.Maker) *Names {
	return &Names{m: m, counters: make(map[string]int)}
}

// FreshName returns an interned name term with the given prefix. The
// prefix is stripped of any digit tail first so repeated freshening does
// not pile up counters.
func (n *Names) FreshName(prefix string) *aterm.Term {
	prefix = strings.TrimRight(prefix, "0123456789")
	if prefix == "" {
		prefix = "v"
	}
	for {
		n.counters[prefix]++
		cand := fmt.Sprintf("%s%d", prefix, n.counters[prefix])
		if !n.m.Store.NameInterned(cand) {
			return n.m.Str(cand)
		}
	}
}

// FreshVar combines FreshName with a sort into a new variable.
func (n *Names) FreshVar(prefix string, sort *aterm.Term) *aterm.Term {
	return n.m.DataVarId(n.FreshName(prefix), sort)
}
