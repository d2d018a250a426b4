package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Parallel composition. The two summand sets interleave (guarded by the
// other side's ultimate-delay condition when time is involved) and
// synchronise pairwise on compatible multi-actions.

// constructRenaming renames the variables of pars2 that clash with pars1.
// It returns the adapted pars2 (unique with respect to pars1) and the
// renaming pairs for the clashing subset.
func (c *Context) constructRenaming(pars1, pars2 *aterm.Term) (*aterm.Term, subst.Subst) {
	var pairs subst.Subst
	out := c.Store.Empty()
	for _, v := range aterm.Slice(pars2) {
		if c.occursByName(v, pars1) {
			fresh := c.Ap.Fresh.FreshVar(aterm.Name(c.M.VarName(v)), c.M.VarSort(v))
			pairs = append(pairs, subst.Pair{Var: v, Repl: fresh})
			out = c.Store.Append(out, fresh)
		} else {
			out = c.Store.Append(out, v)
		}
	}
	return out, pairs
}

// singleUltimateDelay builds ∃ sumvars. cond ∧ T ≤ t for one summand.
// The existential is realised by a fresh predicate symbol declared with a
// defining equation; the declaration is part of the output specification.
func (c *Context) singleUltimateDelay(sumVars, freeVars, condition, timeVar, actionTime *aterm.Term) *aterm.Term {
	m := c.M
	result := c.rewriteTerm(m.And(condition, m.LTE(timeVar, actionTime)))
	variables := c.Store.List(timeVar)
	for _, fv := range aterm.Slice(freeVars) {
		if subst.OccursIn(m, fv, result) {
			variables = c.Store.Cons(fv, variables)
		}
	}
	for _, fv := range c.spec.procDataVars {
		if subst.OccursIn(m, fv, result) {
			variables = c.Store.Cons(fv, variables)
		}
	}

	remaining := aterm.Slice(sumVars)
	for i, sv := range remaining {
		if !subst.OccursIn(m, sv, result) {
			continue
		}
		extended := c.Store.Concat(variables, c.Store.List(remaining[i+1:]...))
		extended = c.Store.Append(extended, sv)
		fn := m.OpId(c.Ap.Fresh.FreshName("ExistsFun"),
			m.SortArrow(m.SortsOf(extended), m.SortBool))
		c.insertMapping(fn)
		c.declareEquationVariables(extended)
		c.newEquation(nil, m.Apply(fn, aterm.Slice(extended)...), result)
		c.endEquationSection()
		applied := m.Apply(fn, aterm.Slice(c.Store.Concat(variables, c.Store.List(remaining[i+1:]...)))...)
		result = m.Exists(c.Store.List(sv), applied)
	}
	return result
}

// ultimateDelayCondition disjoins the delay clauses of a summand set; an
// untimed summand makes the whole condition true.
func (c *Context) ultimateDelayCondition(sums, freeVars, timeVar *aterm.Term) *aterm.Term {
	m := c.M
	result := m.False()
	for _, smd := range aterm.Slice(sums) {
		if m.IsNil(smd.Arg(3)) {
			return m.True()
		}
		result = m.Or(result,
			c.singleUltimateDelay(smd.Arg(0), freeVars, smd.Arg(1), timeVar, smd.Arg(3)))
	}
	return result
}

// renamedSummand is one summand with its sum variables renamed apart.
type renamedSummand struct {
	sumVars     *aterm.Term
	condition   *aterm.Term
	multiAction *aterm.Term
	actTime     *aterm.Term
	nextState   *aterm.Term
	terminated  bool
}

func (c *Context) renameSummandApart(smd *aterm.Term, banned *aterm.Term) renamedSummand {
	m := c.M
	newVars, pairs := c.constructRenaming(banned, smd.Arg(0))
	rs := renamedSummand{
		sumVars:    newVars,
		condition:  c.Ap.Data(smd.Arg(1), pairs),
		actTime:    c.Ap.Time(smd.Arg(3), pairs),
		nextState:  c.substNextState(smd.Arg(4), pairs),
		terminated: c.summandTerminated(smd),
	}
	ma := smd.Arg(2)
	if m.IsMultAct(ma) {
		ma = c.Ap.MultAct(ma, pairs)
	}
	rs.multiAction = ma
	return rs
}

// isTermination recognises the distinguished termination multi-action.
func (c *Context) isTermination(ma *aterm.Term) bool {
	return ma == c.terminationAction
}

// combineSumLists produces the summands of p1 || p2: interleavings of
// both sides constrained by the other side's ultimate delay, plus the
// pairwise synchronisations.
func (c *Context) combineSumLists(p1, p2 *ips, pars2Renaming subst.Subst, pars2 *aterm.Term, allPars *aterm.Term) *aterm.Term {
	m := c.M
	result := c.Store.Empty()
	timeVar := c.Ap.Fresh.FreshVar("timevar", m.SortReal)

	applyPars2 := func(t *aterm.Term) *aterm.Term { return c.Ap.Data(t, pars2Renaming) }
	applyPars2Next := func(t *aterm.Term) *aterm.Term { return c.substNextState(t, pars2Renaming) }

	// Interleavings of the left side, delayed by the right.
	udRight := applyPars2(c.ultimateDelayCondition(p2.sums, pars2, timeVar))
	for _, smd := range aterm.Slice(p1.sums) {
		rs := c.renameSummandApart(smd, allPars)
		if c.isTermination(rs.multiAction) {
			continue
		}
		sumVars, condition, actTime := rs.sumVars, rs.condition, rs.actTime
		if m.IsNil(actTime) {
			if !m.IsTrue(udRight) {
				actTime = timeVar
				sumVars = c.Store.Cons(timeVar, sumVars)
				condition = m.And(udRight, condition)
			}
		} else {
			inter := c.Ap.Data(udRight, subst.Subst{{Var: timeVar, Repl: actTime}})
			condition = m.And(inter, condition)
		}
		condition = c.rewriteTerm(condition)
		if !m.IsFalse(condition) {
			result = c.Store.Append(result,
				m.Summand(sumVars, condition, rs.multiAction, actTime, rs.nextState))
		}
	}

	// Interleavings of the right side, delayed by the left.
	udLeft := c.ultimateDelayCondition(p1.sums, p1.pars, timeVar)
	for _, smd := range aterm.Slice(p2.sums) {
		rs := c.renameSummandApart(smd, allPars)
		if c.isTermination(rs.multiAction) {
			continue
		}
		sumVars := rs.sumVars
		condition := applyPars2(rs.condition)
		actTime := rs.actTime
		if !m.IsNil(actTime) {
			actTime = applyPars2(actTime)
		}
		ma := rs.multiAction
		if m.IsMultAct(ma) {
			ma = c.Ap.MultAct(ma, pars2Renaming)
		}
		nextState := applyPars2Next(rs.nextState)
		if m.IsNil(actTime) {
			if !m.IsTrue(udLeft) {
				actTime = timeVar
				sumVars = c.Store.Cons(timeVar, sumVars)
				condition = m.And(udLeft, condition)
			}
		} else {
			inter := c.Ap.Data(udLeft, subst.Subst{{Var: timeVar, Repl: actTime}})
			condition = m.And(inter, condition)
		}
		condition = c.rewriteTerm(condition)
		if !m.IsFalse(condition) {
			result = c.Store.Append(result,
				m.Summand(sumVars, condition, ma, actTime, nextState))
		}
	}

	// Synchronisations.
	for _, smd1 := range aterm.Slice(p1.sums) {
		rs1 := c.renameSummandApart(smd1, allPars)
		for _, smd2 := range aterm.Slice(p2.sums) {
			rs2 := c.renameSummandApart(smd2, c.Store.Concat(rs1.sumVars, allPars))
			term1 := c.isTermination(rs1.multiAction)
			term2 := c.isTermination(rs2.multiAction)
			if term1 != term2 {
				continue
			}
			ma2 := rs2.multiAction
			if m.IsMultAct(ma2) {
				ma2 = c.Ap.MultAct(ma2, pars2Renaming)
			}
			var ma3 *aterm.Term
			switch {
			case term1 && term2:
				ma3 = c.terminationAction
			case m.IsDelta(rs1.multiAction) || m.IsDelta(ma2):
				ma3 = m.Delta()
			default:
				ma3 = m.MergeMultActs(rs1.multiAction, ma2)
			}
			condition2 := applyPars2(rs2.condition)
			condition3 := m.And(rs1.condition, condition2)
			time2 := rs2.actTime
			if !m.IsNil(time2) {
				time2 = applyPars2(time2)
			}
			var time3 *aterm.Term
			switch {
			case m.IsNil(rs1.actTime):
				time3 = time2
			case m.IsNil(time2):
				time3 = rs1.actTime
			default:
				time3 = rs1.actTime
				condition3 = m.And(condition3, m.Eq(rs1.actTime, time2))
			}
			nextState2 := applyPars2Next(rs2.nextState)
			var nextState3 *aterm.Term
			switch {
			case rs1.terminated && rs2.terminated:
				nextState3 = c.terminatedNextState()
			case rs1.terminated:
				nextState3 = nextState2
			case rs2.terminated:
				nextState3 = rs1.nextState
			default:
				nextState3 = c.Store.Concat(rs1.nextState, nextState2)
			}
			condition3 = c.rewriteTerm(condition3)
			if !m.IsFalse(condition3) && !m.IsDelta(ma3) {
				result = c.Store.Append(result,
					m.Summand(c.Store.Concat(rs1.sumVars, rs2.sumVars),
						condition3, ma3, time3, nextState3))
			}
		}
	}
	return result
}

// parallelComposition combines two linearised operands.
func (c *Context) parallelComposition(p1, p2 *ips) *ips {
	pars3, renaming := c.constructRenaming(p1.pars, p2.pars)
	allPars := c.Store.Concat(p1.pars, pars3)
	sums := c.combineSumLists(p1, p2, renaming, p2.pars, allPars)
	c.log.Debugf("calculating parallel composition: %d || %d = %d",
		aterm.Length(p1.sums), aterm.Length(p2.sums), aterm.Length(sums))
	return &ips{
		init: c.Store.Concat(p1.init, c.Ap.Assignments(p2.init, renaming)),
		pars: allPars,
		sums: sums,
	}
}

// nameComposition instantiates a linearised process for one invocation.
func (c *Context) nameComposition(procId, args *aterm.Term, p *ips) *ips {
	pars := aterm.Slice(c.object(procId).parameters)
	actuals := aterm.Slice(args)
	var pairs subst.Subst
	for i := range pars {
		if pars[i] != actuals[i] {
			pairs = append(pairs, subst.Pair{Var: pars[i], Repl: actuals[i]})
		}
	}
	return &ips{init: c.Ap.Assignments(p.init, pairs), pars: p.pars, sums: p.sums}
}
