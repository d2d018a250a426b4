package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Communication expansion, following Muck van Weerdenburg's calculation
// of communication with open terms: every maximal set of disjoint
// subsequences of a multi-action that matches a communication left-hand
// side yields a candidate summand, guarded by the argument equalities and
// by the negated "a larger communication could have applied" condition.

// commEntry is one communication a1|...|ak -> b with the lhs label names
// in canonical order.
type commEntry struct {
	lhs *aterm.Term // sorted list of name terms
	rhs *aterm.Term // name term, or nil for tau
	tmp *aterm.Term // per-query scan state
	ok  bool
}

type commTable []*commEntry

func (c *Context) makeCommTable(communications *aterm.Term) commTable {
	m := c.M
	var table commTable
	for _, ce := range aterm.Slice(communications) {
		names := c.sortedLabelNames(ce.Arg(0).Arg(0))
		var rhs *aterm.Term
		if !m.IsTau(ce.Arg(1)) && !m.IsNil(ce.Arg(1)) {
			rhs = ce.Arg(1)
		}
		table = append(table, &commEntry{lhs: names, rhs: rhs})
	}
	return table
}

func (c *Context) actionName(act *aterm.Term) *aterm.Term {
	return c.M.ActIdName(c.M.ActionActId(act))
}

// canCommunicate reports whether the actions of ma exactly match a
// left-hand side. It returns the resulting action identifier, or isTau
// when the result is tau, or ok=false when no entry matches.
func (c *Context) canCommunicate(table commTable, ma []*aterm.Term) (actId *aterm.Term, isTau, ok bool) {
	for _, e := range table {
		e.tmp, e.ok = e.lhs, true
	}
	for _, act := range ma {
		name := c.actionName(act)
		anyOk := false
		for _, e := range table {
			if !e.ok {
				continue
			}
			if e.tmp.IsEmpty() || aterm.Head(e.tmp) != name {
				e.ok = false
				continue
			}
			e.tmp = aterm.Tail(e.tmp)
			anyOk = true
		}
		if !anyOk {
			return nil, false, false
		}
	}
	for _, e := range table {
		if e.ok && e.tmp.IsEmpty() {
			if e.rhs == nil {
				return nil, true, true
			}
			sorts := c.M.ActIdSorts(c.M.ActionActId(ma[0]))
			return c.M.ActId(e.rhs, sorts), false, true
		}
	}
	return nil, false, false
}

// mightCommunicate reports whether ma is a subbag of some left-hand side;
// with haveRest set the remainder of that lhs must be coverable by rest.
func (c *Context) mightCommunicate(table commTable, ma []*aterm.Term, rest []*aterm.Term, haveRest bool) bool {
	for _, e := range table {
		e.tmp, e.ok = e.lhs, true
	}
	for _, act := range ma {
		name := c.actionName(act)
		anyOk := false
		for _, e := range table {
			if !e.ok {
				continue
			}
			if e.tmp.IsEmpty() {
				e.ok = false
				continue
			}
			// skip lhs labels not present in ma when no remainder is
			// prescribed; with a remainder they must come from rest
			for !e.tmp.IsEmpty() && aterm.Head(e.tmp) != name {
				if haveRest {
					e.ok = false
					break
				}
				e.tmp = aterm.Tail(e.tmp)
			}
			if !e.ok || e.tmp.IsEmpty() {
				e.ok = false
				continue
			}
			e.tmp = aterm.Tail(e.tmp)
			anyOk = true
		}
		if !anyOk {
			return false
		}
	}
	if !haveRest {
		return true
	}
	for _, e := range table {
		if !e.ok {
			continue
		}
		r := rest
		covered := true
		for l := e.tmp; !l.IsEmpty(); l = aterm.Tail(l) {
			name := aterm.Head(l)
			found := false
			for len(r) > 0 {
				if c.actionName(r[0]) == name {
					r = r[1:]
					found = true
					break
				}
				r = r[1:]
			}
			if !found {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}
	return false
}

// actionTuple pairs a candidate multi-action with the data condition
// under which it arises.
type actionTuple struct {
	actions *aterm.Term
	cond    *aterm.Term
}

// pairwiseMatch equates two argument lists position by position; a
// length or sort mismatch is false.
func (c *Context) pairwiseMatch(l1, l2 *aterm.Term) *aterm.Term {
	m := c.M
	if aterm.Length(l1) != aterm.Length(l2) {
		return m.False()
	}
	result := m.True()
	e1, e2 := aterm.Slice(l1), aterm.Slice(l2)
	for i := range e1 {
		if m.SortOf(e1[i]) != m.SortOf(e2[i]) {
			return m.False()
		}
		result = m.And(m.Eq(e1[i], e2[i]), result)
	}
	return result
}

// insertActionSorted keeps candidate multi-actions canonically ordered.
func (c *Context) insertActionSorted(act, list *aterm.Term) *aterm.Term {
	return c.M.SortActions(c.Store.Cons(act, list))
}

// addActionCondition extends every tuple of L with an optional action and
// an extra condition, accumulating onto S.
func (c *Context) addActionCondition(act, cond *aterm.Term, L, S []actionTuple) []actionTuple {
	m := c.M
	for _, t := range L {
		actions := t.actions
		if act != nil {
			actions = c.insertActionSorted(act, actions)
		}
		S = append(S, actionTuple{actions: actions, cond: m.And(t.cond, cond)})
	}
	return S
}

// phi enumerates the ways m|w|n can communicate: all of m, none of w and
// any subset of n take part; d is the shared data argument list.
func (c *Context) phi(table commTable, m, d, w, n, r []*aterm.Term, haveR bool) []actionTuple {
	mk := c.M
	if !c.mightCommunicate(table, m, n, true) {
		return nil
	}
	if len(n) == 0 {
		actId, isTau, ok := c.canCommunicate(table, m)
		if !ok {
			return nil
		}
		T := c.gammaAux(table, w, r, haveR)
		var act *aterm.Term
		if !isTau {
			act = mk.Action(actId, c.Store.List(d...))
		}
		return c.addActionCondition(act, mk.True(), T, nil)
	}
	first, o := n[0], n[1:]
	T := c.phi(table, append(append([]*aterm.Term{}, m...), first), d, w, o, r, haveR)
	S := c.addActionCondition(nil,
		c.pairwiseMatch(c.Store.List(d...), mk.ActionArgs(first)), T, nil)
	return append(S, c.phi(table, m, d, append(append([]*aterm.Term{}, w...), first), o, r, haveR)...)
}

// xi tests whether some extension of alpha inside beta can communicate.
func (c *Context) xi(table commTable, alpha, beta []*aterm.Term) bool {
	if len(beta) == 0 {
		_, _, ok := c.canCommunicate(table, alpha)
		return ok
	}
	a, rest := beta[0], beta[1:]
	l := append(append([]*aterm.Term{}, alpha...), a)
	if _, _, ok := c.canCommunicate(table, l); ok {
		return true
	}
	if c.mightCommunicate(table, l, rest, true) {
		return c.xi(table, l, rest) || c.xi(table, alpha, rest)
	}
	return c.xi(table, alpha, rest)
}

// psi collects, for every pair inside alpha that might extend to a
// communication, the matching condition of their arguments.
func (c *Context) psi(table commTable, alpha []*aterm.Term) []*aterm.Term {
	m := c.M
	var conds []*aterm.Term
	for i := 0; i < len(alpha); i++ {
		for j := i + 1; j < len(alpha); j++ {
			pair := []*aterm.Term{alpha[i], alpha[j]}
			rest := alpha[j+1:]
			if c.mightCommunicate(table, pair, rest, true) && c.xi(table, pair, rest) {
				conds = append(conds,
					c.pairwiseMatch(m.ActionArgs(alpha[i]), m.ActionArgs(alpha[j])))
			}
		}
	}
	return conds
}

// negatedConjunction is the "no other maximal communication applied"
// side condition.
func (c *Context) negatedConjunction(conds []*aterm.Term) *aterm.Term {
	m := c.M
	result := m.True()
	for _, cd := range conds {
		result = m.And(m.Not(cd), result)
	}
	return result
}

// gammaAux is the gamma function over the remaining multi-action, with r
// accumulating the actions already left out of communications.
func (c *Context) gammaAux(table commTable, multiaction, r []*aterm.Term, haveR bool) []actionTuple {
	m := c.M
	if len(multiaction) == 0 {
		cond := m.True()
		if haveR {
			cond = c.negatedConjunction(c.psi(table, r))
		}
		return []actionTuple{{actions: c.Store.Empty(), cond: cond}}
	}
	first, rest := multiaction[0], multiaction[1:]
	S := c.phi(table, []*aterm.Term{first}, aterm.Slice(m.ActionArgs(first)), nil, rest, r, haveR)
	var r2 []*aterm.Term
	if haveR {
		r2 = append(append([]*aterm.Term{}, r...), first)
	} else {
		r2 = []*aterm.Term{first}
	}
	T := c.gammaAux(table, rest, r2, true)
	return c.addActionCondition(first, m.True(), T, S)
}

// makeMultiActionConditionList yields all candidate multi-actions of one
// summand with mutually exclusive conditions; when nothing communicates
// the original multi-action survives with condition true.
func (c *Context) makeMultiActionConditionList(table commTable, multiaction *aterm.Term) []actionTuple {
	return c.gammaAux(table, aterm.Slice(multiaction), nil, false)
}

// applyCommSumElimination folds a communication condition into a summand,
// eliminating sum variables bound by its equalities.
func (c *Context) applyCommSumElimination(sumVars, condition, multiAction, actTime, nextState, commCondition *aterm.Term) (*aterm.Term, *aterm.Term, *aterm.Term, *aterm.Term, *aterm.Term) {
	m := c.M
	conjuncts := c.flattenConjunction(commCondition, nil)
	for i := 0; i < len(conjuncts); i++ {
		cd := conjuncts[i]
		if m.IsTrue(cd) {
			continue
		}
		if m.IsEq(cd) {
			l, r := m.BinArgs(cd)
			if m.IsDataVarId(r) && aterm.Member(sumVars, r) {
				l, r = r, l
			}
			if m.IsDataVarId(l) && aterm.Member(sumVars, l) && !subst.OccursIn(m, l, r) {
				pairs := subst.Subst{{Var: l, Repl: r}}
				sumVars = c.removeVar(sumVars, l)
				condition = c.Ap.Data(condition, pairs)
				if m.IsMultAct(multiAction) {
					multiAction = c.Ap.MultAct(multiAction, pairs)
				}
				actTime = c.Ap.Time(actTime, pairs)
				nextState = c.substNextState(nextState, pairs)
				for j := i + 1; j < len(conjuncts); j++ {
					conjuncts[j] = c.Ap.Data(conjuncts[j], pairs)
				}
				continue
			}
		}
		condition = m.And(condition, cd)
	}
	return sumVars, condition, multiAction, actTime, nextState
}

func (c *Context) flattenConjunction(t *aterm.Term, acc []*aterm.Term) []*aterm.Term {
	if c.M.IsAnd(t) {
		l, r := c.M.BinArgs(t)
		return c.flattenConjunction(r, c.flattenConjunction(l, acc))
	}
	return append(acc, t)
}

// communicationComposition expands the communication operator over a
// summand set.
func (c *Context) communicationComposition(communications *aterm.Term, p *ips) *ips {
	m := c.M
	table := c.makeCommTable(communications)
	before := aterm.Length(p.sums)

	var deltaSummands []*aterm.Term
	result := c.Store.Empty()
	for _, smd := range aterm.Slice(p.sums) {
		multiaction := smd.Arg(2)
		if m.IsDelta(multiaction) {
			deltaSummands = append(deltaSummands, smd)
			continue
		}
		sumVars := smd.Arg(0)
		condition := smd.Arg(1)
		actTime := smd.Arg(3)
		nextState := smd.Arg(4)

		// Recall a delta summand with the plain condition: communication
		// makes conditions much more complex, and this simple fallback
		// keeps later delta elimination effective.
		deltaVars := c.Store.Empty()
		for _, v := range aterm.Slice(sumVars) {
			if subst.OccursIn(m, v, condition) ||
				(!m.IsNil(actTime) && subst.OccursIn(m, v, actTime)) {
				deltaVars = c.Store.Append(deltaVars, v)
			}
		}
		deltaSummands = append(deltaSummands,
			m.Summand(deltaVars, condition, m.Delta(), actTime, nextState))

		for _, tuple := range c.makeMultiActionConditionList(table, multiaction.Arg(0)) {
			commCondition := c.rewriteTerm(tuple.cond)
			newMA := m.MultAct(tuple.actions)
			newSumVars, newCondition, newMA2, newTime, newNext := sumVars, condition, newMA, actTime, nextState
			if !c.Config.NoSumElm {
				newSumVars, newCondition, newMA2, newTime, newNext =
					c.applyCommSumElimination(sumVars, condition, newMA, actTime, nextState, commCondition)
				newCondition = c.rewriteTerm(newCondition)
			} else {
				newCondition = c.rewriteTerm(m.And(newCondition, commCondition))
			}
			if !m.IsFalse(newCondition) {
				result = c.Store.Append(result,
					m.Summand(newSumVars, newCondition, newMA2, newTime, newNext))
			}
		}
	}

	if c.Config.NoDeltaElimination {
		for _, d := range deltaSummands {
			result = c.Store.Append(result, d)
		}
	} else {
		for _, d := range deltaSummands {
			result = c.insertTimedDeltaSummand(result, d)
		}
	}
	c.log.Debugf("calculating the communication operator on %d summands resulting in %d summands",
		before, aterm.Length(result))
	return &ips{init: p.init, pars: p.pars, sums: result}
}
