package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Sum elimination. A conjunct x == t (or t == x) with x a sum variable
// not occurring in t fixes x to t; the substitution is applied across
// the whole summand and x leaves the sum variables. Repeated to a
// fixpoint per summand.

// sumElimSummand eliminates what it can from one summand.
func (c *Context) sumElimSummand(smd *aterm.Term) *aterm.Term {
	m := c.M
	sumVars := smd.Arg(0)
	condition := smd.Arg(1)
	multiAction := smd.Arg(2)
	actTime := smd.Arg(3)
	nextState := smd.Arg(4)

	for {
		v, t, rest, ok := c.findEliminableEquality(condition, sumVars)
		if !ok {
			break
		}
		pairs := subst.Subst{{Var: v, Repl: t}}
		sumVars = c.removeVar(sumVars, v)
		condition = c.rewriteTerm(c.Ap.Data(rest, pairs))
		if m.IsMultAct(multiAction) {
			multiAction = c.Ap.MultAct(multiAction, pairs)
		}
		actTime = c.Ap.Time(actTime, pairs)
		nextState = c.Ap.Data(nextState, pairs)
	}
	return m.Summand(sumVars, condition, multiAction, actTime, nextState)
}

// findEliminableEquality digs through the conjunction structure for a
// conjunct x == t with x in sumVars and x not free in t. It returns the
// variable, the value, and the condition with that conjunct removed.
func (c *Context) findEliminableEquality(cond *aterm.Term, sumVars *aterm.Term) (*aterm.Term, *aterm.Term, *aterm.Term, bool) {
	m := c.M
	if m.IsAnd(cond) {
		l, r := m.BinArgs(cond)
		if v, t, rest, ok := c.findEliminableEquality(l, sumVars); ok {
			return v, t, m.And(rest, r), true
		}
		if v, t, rest, ok := c.findEliminableEquality(r, sumVars); ok {
			return v, t, m.And(l, rest), true
		}
		return nil, nil, nil, false
	}
	if !m.IsEq(cond) {
		return nil, nil, nil, false
	}
	l, r := m.BinArgs(cond)
	if m.IsDataVarId(r) && aterm.Member(sumVars, r) {
		l, r = r, l
	}
	if m.IsDataVarId(l) && aterm.Member(sumVars, l) && !subst.OccursIn(m, l, r) {
		return l, r, m.True(), true
	}
	return nil, nil, nil, false
}

func (c *Context) removeVar(vars *aterm.Term, v *aterm.Term) *aterm.Term {
	out := c.Store.Empty()
	for _, u := range aterm.Slice(vars) {
		if u != v {
			out = c.Store.Append(out, u)
		}
	}
	return out
}

// sumElimination runs sum elimination over every summand of an ips.
func (c *Context) sumElimination(p *ips) *ips {
	if c.Config.NoSumElm {
		return p
	}
	out := c.Store.Empty()
	for _, smd := range aterm.Slice(p.sums) {
		out = c.Store.Append(out, c.sumElimSummand(smd))
	}
	return &ips{init: p.init, pars: p.pars, sums: out}
}
