package syntax

import (
	"sort"

	"mcrl2/internal/aterm"
)

// Structural accessors over the node shapes of syntax.go. These never
// allocate new syntax; they unpack existing terms.

// VarName returns the name term of a DataVarId.
func (m *Maker) VarName(v *aterm.Term) *aterm.Term { return v.Arg(0) }

// VarSort returns the sort of a DataVarId.
func (m *Maker) VarSort(v *aterm.Term) *aterm.Term { return v.Arg(1) }

// OpIdSort returns the sort annotation of an OpId.
func (m *Maker) OpIdSort(op *aterm.Term) *aterm.Term { return op.Arg(1) }

// HeadOf unpacks a nested application spine down to its head.
func (m *Maker) HeadOf(e *aterm.Term) *aterm.Term {
	for m.IsDataAppl(e) {
		e = e.Arg(0)
	}
	return e
}

// ArgsOf collects the arguments of a (possibly nested) application spine,
// outermost last.
func (m *Maker) ArgsOf(e *aterm.Term) []*aterm.Term {
	var args []*aterm.Term
	for m.IsDataAppl(e) {
		args = append(aterm.Slice(e.Arg(1)), args...)
		e = e.Arg(0)
	}
	return args
}

// ArrowDomain returns the domain sort list of an arrow sort.
func (m *Maker) ArrowDomain(sort *aterm.Term) *aterm.Term { return sort.Arg(0) }

// ArrowCodomain returns the codomain of an arrow sort.
func (m *Maker) ArrowCodomain(sort *aterm.Term) *aterm.Term { return sort.Arg(1) }

// TargetSort strips all arrows off a sort.
func (m *Maker) TargetSort(sort *aterm.Term) *aterm.Term {
	for m.IsSortArrow(sort) {
		sort = sort.Arg(1)
	}
	return sort
}

// SortOf returns the sort of a data expression, or Nil when it cannot be
// determined (e.g. an unannotated number).
func (m *Maker) SortOf(e *aterm.Term) *aterm.Term {
	switch {
	case m.IsDataVarId(e), m.IsOpId(e):
		return e.Arg(1)
	case m.IsNumber(e):
		return e.Arg(1)
	case m.IsDataAppl(e):
		headSort := m.SortOf(e.Arg(0))
		if !m.IsSortArrow(headSort) {
			return m.Nil()
		}
		return m.ArrowCodomain(headSort)
	case m.IsLambda(e):
		doms := m.Store.Empty()
		for _, v := range aterm.Slice(e.Arg(0)) {
			doms = m.Store.Append(doms, m.VarSort(v))
		}
		return m.SortArrow(doms, m.SortOf(e.Arg(1)))
	case m.IsForall(e), m.IsExists(e):
		return m.SortBool
	case m.IsWhr(e):
		return m.SortOf(e.Arg(0))
	case is(e, m.symListEnum):
		return m.SortList(e.Arg(1))
	case is(e, m.symSetEnum), is(e, m.symSetComp):
		return m.SortSet(e.Arg(1))
	case is(e, m.symBagEnum), is(e, m.symBagComp):
		return m.SortBag(e.Arg(1))
	default:
		return m.Nil()
	}
}

// SortsOf maps SortOf over a list of expressions.
func (m *Maker) SortsOf(l *aterm.Term) *aterm.Term {
	out := m.Store.Empty()
	for _, e := range aterm.Slice(l) {
		out = m.Store.Append(out, m.SortOf(e))
	}
	return out
}

// ActionActId returns the ActId of an action.
func (m *Maker) ActionActId(act *aterm.Term) *aterm.Term { return act.Arg(0) }

// ActionArgs returns the argument list of an action.
func (m *Maker) ActionArgs(act *aterm.Term) *aterm.Term { return act.Arg(1) }

// ActIdName returns the name term of an ActId.
func (m *Maker) ActIdName(id *aterm.Term) *aterm.Term { return id.Arg(0) }

// ActIdSorts returns the argument sort list of an ActId.
func (m *Maker) ActIdSorts(id *aterm.Term) *aterm.Term { return id.Arg(1) }

// actionLess is the canonical ordering on actions: interned-symbol index
// of the name, then length of the argument sort list. Stable across runs
// by construction, unlike an address compare.
func (m *Maker) actionLess(a1, a2 *aterm.Term) bool {
	n1 := m.ActIdName(m.ActionActId(a1)).Function()
	n2 := m.ActIdName(m.ActionActId(a2)).Function()
	if n1 != n2 {
		return n1.Index() < n2.Index()
	}
	return aterm.Length(m.ActIdSorts(m.ActionActId(a1))) < aterm.Length(m.ActIdSorts(m.ActionActId(a2)))
}

// SortActions returns the action list in canonical order, so multi-actions
// compare by pointer equality after normalisation.
func (m *Maker) SortActions(actions *aterm.Term) *aterm.Term {
	elems := aterm.Slice(actions)
	sort.SliceStable(elems, func(i, j int) bool { return m.actionLess(elems[i], elems[j]) })
	return m.Store.List(elems...)
}

// SortMultAct normalises a multi-action's action order.
func (m *Maker) SortMultAct(ma *aterm.Term) *aterm.Term {
	if !m.IsMultAct(ma) {
		return ma
	}
	return m.MultAct(m.SortActions(ma.Arg(0)))
}

// MergeMultActs merges the action lists of two multi-actions, keeping the
// canonical order.
func (m *Maker) MergeMultActs(ma1, ma2 *aterm.Term) *aterm.Term {
	merged := m.Store.Concat(ma1.Arg(0), ma2.Arg(0))
	return m.MultAct(m.SortActions(merged))
}

// MultActNames returns the action names of a multi-action in its action
// order; the names are not sorted here.
func (m *Maker) MultActNames(ma *aterm.Term) *aterm.Term {
	out := m.Store.Empty()
	for _, a := range aterm.Slice(ma.Arg(0)) {
		out = m.Store.Append(out, m.ActIdName(m.ActionActId(a)))
	}
	return out
}
