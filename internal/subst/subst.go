// Package subst implements variable-safe substitution and the occurrence
// primitives the lineariser's correctness depends on. Substitution is pure
// and sharing-preserving: when nothing triggers, the original term handle
// comes back unchanged.
package subst

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// Pair is a single (variable, replacement) binding.
type Pair struct {
	Var  *aterm.Term
	Repl *aterm.Term
}

// Subst is an ordered list of bindings applied simultaneously.
type Subst []Pair

// Lookup returns the replacement for v, or nil.
func (s Subst) Lookup(v *aterm.Term) *aterm.Term {
	for _, p := range s {
		if p.Var == v {
			return p.Repl
		}
	}
	return nil
}

// Without returns s minus the bindings whose variable is bound here.
func (s Subst) Without(boundVars []*aterm.Term) Subst {
	out := make(Subst, 0, len(s))
	for _, p := range s {
		shadowed := false
		for _, v := range boundVars {
			if p.Var == v {
				shadowed = true
				break
			}
		}
		if !shadowed {
			out = append(out, p)
		}
	}
	return out
}

// Applier carries the syntax maker and fresh-name pool a substitution may
// need for capture-avoiding renames.
type Applier struct {
	M     *syntax.Maker
	Fresh *Names
}

// NewApplier creates an applier over the maker's store.
func NewApplier(m *syntax.Maker) *Applier {
	return &Applier{M: m, Fresh: NewNames(m)}
}

// Data applies s to a data expression.
func (a *Applier) Data(e *aterm.Term, s Subst) *aterm.Term {
	if len(s) == 0 {
		return e
	}
	m := a.M
	switch {
	case m.IsDataVarId(e):
		if r := s.Lookup(e); r != nil {
			return r
		}
		return e
	case m.IsOpId(e), m.IsNumber(e):
		return e
	case m.IsDataAppl(e):
		head := a.Data(e.Arg(0), s)
		args := a.dataList(e.Arg(1), s)
		if head == e.Arg(0) && args == e.Arg(1) {
			return e
		}
		return m.DataAppl(head, args)
	case m.IsBinder(e):
		return a.binder(e, s)
	case m.IsWhr(e):
		return a.whr(e, s)
	case e.IsList():
		return a.dataList(e, s)
	default:
		return e
	}
}

func (a *Applier) dataList(l *aterm.Term, s Subst) *aterm.Term {
	elems := aterm.Slice(l)
	changed := false
	for i, e := range elems {
		r := a.Data(e, s)
		if r != e {
			elems[i] = r
			changed = true
		}
	}
	if !changed {
		return l
	}
	return a.M.Store.List(elems...)
}

// binder substitutes under Forall/Exists/Lambda/SetComp/BagComp, renaming
// bound variables whenever capture would occur.
func (a *Applier) binder(e *aterm.Term, s Subst) *aterm.Term {
	m := a.M
	bound := aterm.Slice(e.Arg(0))
	inner := s.Without(bound)

	// Rename any bound variable that occurs free in a replacement.
	var rename Subst
	newBound := make([]*aterm.Term, len(bound))
	copy(newBound, bound)
	for i, v := range bound {
		captured := false
		for _, p := range inner {
			if OccursIn(m, v, p.Repl) {
				captured = true
				break
			}
		}
		if captured {
			fresh := a.Fresh.FreshVar(aterm.Name(m.VarName(v)), m.VarSort(v))
			newBound[i] = fresh
			rename = append(rename, Pair{Var: v, Repl: fresh})
		}
	}
	body := e.Arg(1)
	if len(rename) > 0 {
		body = a.Data(body, rename)
	}
	newBody := a.Data(body, inner)
	if newBody == e.Arg(1) && len(rename) == 0 {
		return e
	}
	return m.Store.MakeAppl(e.Function(), m.Store.List(newBound...), newBody)
}

func (a *Applier) whr(e *aterm.Term, s Subst) *aterm.Term {
	m := a.M
	decls := aterm.Slice(e.Arg(1))
	var bound []*aterm.Term
	newDecls := make([]*aterm.Term, len(decls))
	changed := false
	for i, d := range decls {
		bound = append(bound, d.Arg(0))
		r := a.Data(d.Arg(1), s)
		if r != d.Arg(1) {
			newDecls[i] = m.WhrDecl(d.Arg(0), r)
			changed = true
		} else {
			newDecls[i] = d
		}
	}
	inner := s.Without(bound)
	body := a.Data(e.Arg(0), inner)
	if body == e.Arg(0) && !changed {
		return e
	}
	return m.Whr(body, m.Store.List(newDecls...))
}

// MultAct applies s to the arguments of every action of a multi-action;
// Delta passes through.
func (a *Applier) MultAct(ma *aterm.Term, s Subst) *aterm.Term {
	m := a.M
	if m.IsDelta(ma) || len(s) == 0 {
		return ma
	}
	actions := aterm.Slice(ma.Arg(0))
	changed := false
	for i, act := range actions {
		args := a.dataList(m.ActionArgs(act), s)
		if args != m.ActionArgs(act) {
			actions[i] = m.Action(m.ActionActId(act), args)
			changed = true
		}
	}
	if !changed {
		return ma
	}
	return m.MultAct(m.Store.List(actions...))
}

// Proc applies s to a pCRL process term.
func (a *Applier) Proc(p *aterm.Term, s Subst) *aterm.Term {
	if len(s) == 0 {
		return p
	}
	m := a.M
	switch {
	case m.IsChoice(p), m.IsSeq(p), m.IsMerge(p), m.IsLMerge(p), m.IsSync(p):
		l := a.Proc(p.Arg(0), s)
		r := a.Proc(p.Arg(1), s)
		if l == p.Arg(0) && r == p.Arg(1) {
			return p
		}
		return m.Store.MakeAppl(p.Function(), l, r)
	case m.IsCond(p):
		g := a.Data(p.Arg(0), s)
		th := a.Proc(p.Arg(1), s)
		el := a.Proc(p.Arg(2), s)
		if g == p.Arg(0) && th == p.Arg(1) && el == p.Arg(2) {
			return p
		}
		return m.Cond(g, th, el)
	case m.IsSum(p):
		bound := aterm.Slice(p.Arg(0))
		inner := s.Without(bound)
		var rename Subst
		newBound := make([]*aterm.Term, len(bound))
		copy(newBound, bound)
		for i, v := range bound {
			captured := false
			for _, pr := range inner {
				if OccursIn(m, v, pr.Repl) {
					captured = true
					break
				}
			}
			if captured {
				fresh := a.Fresh.FreshVar(aterm.Name(m.VarName(v)), m.VarSort(v))
				newBound[i] = fresh
				rename = append(rename, Pair{Var: v, Repl: fresh})
			}
		}
		body := p.Arg(1)
		if len(rename) > 0 {
			body = a.Proc(body, rename)
		}
		newBody := a.Proc(body, inner)
		if newBody == p.Arg(1) && len(rename) == 0 {
			return p
		}
		return m.Sum(m.Store.List(newBound...), newBody)
	case m.IsAtTime(p):
		pr := a.Proc(p.Arg(0), s)
		tm := a.Data(p.Arg(1), s)
		if pr == p.Arg(0) && tm == p.Arg(1) {
			return p
		}
		return m.AtTime(pr, tm)
	case m.IsProcess(p):
		args := a.dataList(p.Arg(1), s)
		if args == p.Arg(1) {
			return p
		}
		return m.Process(p.Arg(0), args)
	case m.IsAction(p):
		args := a.dataList(m.ActionArgs(p), s)
		if args == m.ActionArgs(p) {
			return p
		}
		return m.Action(m.ActionActId(p), args)
	case m.IsMultAct(p):
		return a.MultAct(p, s)
	case m.IsHide(p), m.IsBlock(p), m.IsRename(p), m.IsComm(p), m.IsAllow(p):
		body := a.Proc(p.Arg(1), s)
		if body == p.Arg(1) {
			return p
		}
		return m.Store.MakeAppl(p.Function(), p.Arg(0), body)
	default:
		return p
	}
}

// Assignments applies s to the right-hand sides of an assignment list.
func (a *Applier) Assignments(asgs *aterm.Term, s Subst) *aterm.Term {
	m := a.M
	if len(s) == 0 {
		return asgs
	}
	elems := aterm.Slice(asgs)
	changed := false
	for i, asg := range elems {
		rhs := a.Data(asg.Arg(1), s)
		if rhs != asg.Arg(1) {
			elems[i] = m.Assignment(asg.Arg(0), rhs)
			changed = true
		}
	}
	if !changed {
		return asgs
	}
	return m.Store.List(elems...)
}

// Time applies s to a time expression, passing Nil through.
func (a *Applier) Time(t *aterm.Term, s Subst) *aterm.Term {
	if a.M.IsNil(t) {
		return t
	}
	return a.Data(t, s)
}
