package linear

import (
	"sort"

	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Operator expansion over a linearised summand set: hide, allow, block
// (encapsulation) and rename, plus the delta-summand insertion heuristic
// they share.

func inNameSet(name *aterm.Term, set *aterm.Term) bool {
	return aterm.Member(set, name)
}

// hideMultiAction strikes the actions whose label is hidden; an emptied
// multi-action is tau (the empty multi-action).
func (c *Context) hideMultiAction(hideList, ma *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsDelta(ma) {
		return ma
	}
	kept := c.Store.Empty()
	for _, act := range aterm.Slice(ma.Arg(0)) {
		if !inNameSet(m.ActIdName(m.ActionActId(act)), hideList) {
			kept = c.Store.Append(kept, act)
		}
	}
	return m.MultAct(kept)
}

func (c *Context) hideComposition(hideList *aterm.Term, p *ips) *ips {
	m := c.M
	out := c.Store.Empty()
	for _, smd := range aterm.Slice(p.sums) {
		out = c.Store.Append(out, m.Summand(
			smd.Arg(0), smd.Arg(1),
			c.hideMultiAction(hideList, smd.Arg(2)),
			smd.Arg(3), smd.Arg(4)))
	}
	return &ips{init: p.init, pars: p.pars, sums: out}
}

// impliesCondition is the cheap structural implication test used by the
// delta-elimination heuristic: literals, pointer-equal subterms, and the
// boolean connectives only.
func (c *Context) impliesCondition(c1, c2 *aterm.Term) bool {
	m := c.M
	if m.IsTrue(c2) || m.IsFalse(c1) {
		return true
	}
	if m.IsTrue(c1) || m.IsFalse(c2) {
		return false
	}
	if c1 == c2 {
		return true
	}
	// Conjunctions before disjunctions; the other order is measurably
	// slower on branching conditions.
	if m.IsAnd(c2) {
		l, r := m.BinArgs(c2)
		return c.impliesCondition(c1, l) && c.impliesCondition(c1, r)
	}
	if m.IsOr(c1) {
		l, r := m.BinArgs(c1)
		return c.impliesCondition(l, c2) && c.impliesCondition(r, c2)
	}
	if m.IsAnd(c1) {
		l, r := m.BinArgs(c1)
		return c.impliesCondition(l, c2) || c.impliesCondition(r, c2)
	}
	if m.IsOr(c2) {
		l, r := m.BinArgs(c2)
		return c.impliesCondition(c1, l) || c.impliesCondition(c1, r)
	}
	return false
}

// insertTimedDeltaSummand adds a delta summand unless an existing summand
// supersedes it; a superseded existing delta summand is dropped, and the
// summand that removed a delta moves to the front so it is met early.
func (c *Context) insertTimedDeltaSummand(sums *aterm.Term, s *aterm.Term) *aterm.Term {
	m := c.M
	cond := s.Arg(1)
	actTime := s.Arg(3)
	result := c.Store.Empty()
	for l := sums; !l.IsEmpty(); l = aterm.Tail(l) {
		smd := aterm.Head(l)
		cond1 := smd.Arg(1)
		if c.impliesCondition(cond, cond1) &&
			(actTime == smd.Arg(3) || m.IsNil(smd.Arg(3))) {
			return c.Store.Cons(smd,
				c.Store.Concat(c.Store.Reverse(result), aterm.Tail(l)))
		}
		if m.IsDelta(smd.Arg(2)) && c.impliesCondition(cond1, cond) &&
			(actTime == smd.Arg(3) || m.IsNil(actTime)) {
			continue
		}
		result = c.Store.Cons(smd, result)
	}
	return c.Store.Append(c.Store.Reverse(result),
		m.Summand(s.Arg(0), cond, s.Arg(2), actTime, c.Store.Empty()))
}

// restrictSumVars keeps the sum variables that still occur in the
// condition or the time stamp.
func (c *Context) restrictSumVars(smd *aterm.Term) *aterm.Term {
	m := c.M
	kept := c.Store.Empty()
	for _, v := range aterm.Slice(smd.Arg(0)) {
		if subst.OccursIn(m, v, smd.Arg(1)) ||
			(!m.IsNil(smd.Arg(3)) && subst.OccursIn(m, v, smd.Arg(3))) {
			kept = c.Store.Append(kept, v)
		}
	}
	return kept
}

// sortedLabelNames normalises a multi-action-name term to a sorted list
// of label names. Labels are ordered by interned-symbol index, which is
// stable across runs.
func (c *Context) sortedLabelNames(names *aterm.Term) *aterm.Term {
	elems := aterm.Slice(names)
	sort.SliceStable(elems, func(i, j int) bool {
		return elems[i].Function().Index() < elems[j].Function().Index()
	})
	return c.Store.List(elems...)
}

// allowMatch tests a multi-action against one allowed label sequence.
func (c *Context) allowMatch(allowNames, ma *aterm.Term) bool {
	m := c.M
	walker := allowNames
	for _, act := range aterm.Slice(ma.Arg(0)) {
		if walker.IsEmpty() {
			return false
		}
		if aterm.Head(walker) != m.ActIdName(m.ActionActId(act)) {
			return false
		}
		walker = aterm.Tail(walker)
	}
	return walker.IsEmpty()
}

// allowed tests a multi-action against the allow set; tau always passes.
func (c *Context) allowed(allowList []*aterm.Term, ma *aterm.Term) bool {
	if c.M.IsDelta(ma) {
		return false
	}
	if ma.Arg(0).IsEmpty() {
		return true
	}
	for _, names := range allowList {
		if c.allowMatch(names, ma) {
			return true
		}
	}
	return false
}

func (c *Context) allowComposition(allowSpecs *aterm.Term, p *ips) *ips {
	m := c.M
	var allowList []*aterm.Term
	for _, spec := range aterm.Slice(allowSpecs) {
		allowList = append(allowList, c.sortedLabelNames(spec.Arg(0)))
	}
	c.log.Debugf("calculating the allow operator on %d summands", aterm.Length(p.sums))

	actionSums := c.Store.Empty()
	var simpleDeltas, deltas []*aterm.Term
	for _, smd := range aterm.Slice(p.sums) {
		ma := m.SortMultAct(smd.Arg(2))
		if c.allowed(allowList, ma) {
			actionSums = c.Store.Append(actionSums, smd)
			continue
		}
		demoted := m.Summand(c.restrictSumVars(smd), smd.Arg(1), m.Delta(), smd.Arg(3), smd.Arg(4))
		if m.IsTrue(smd.Arg(1)) {
			simpleDeltas = append(simpleDeltas, demoted)
		} else {
			deltas = append(deltas, demoted)
		}
	}

	result := actionSums
	all := append(simpleDeltas, deltas...)
	if c.Config.NoDeltaElimination {
		for _, d := range all {
			result = c.Store.Append(result, d)
		}
	} else {
		for _, d := range all {
			result = c.insertTimedDeltaSummand(result, d)
		}
	}
	return &ips{init: p.init, pars: p.pars, sums: result}
}

// encapMultiAction demotes a multi-action to delta when any of its labels
// is blocked.
func (c *Context) encapMultiAction(encapList, ma *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsDelta(ma) {
		return ma
	}
	for _, act := range aterm.Slice(ma.Arg(0)) {
		if inNameSet(m.ActIdName(m.ActionActId(act)), encapList) {
			return m.Delta()
		}
	}
	return ma
}

func (c *Context) encapComposition(encapList *aterm.Term, p *ips) *ips {
	m := c.M
	actionSums := c.Store.Empty()
	var deltas []*aterm.Term
	for _, smd := range aterm.Slice(p.sums) {
		ma := c.encapMultiAction(encapList, smd.Arg(2))
		if !m.IsDelta(ma) || m.IsDelta(smd.Arg(2)) {
			actionSums = c.Store.Append(actionSums,
				m.Summand(smd.Arg(0), smd.Arg(1), ma, smd.Arg(3), smd.Arg(4)))
			continue
		}
		deltas = append(deltas,
			m.Summand(c.restrictSumVars(smd), smd.Arg(1), m.Delta(), smd.Arg(3), smd.Arg(4)))
	}
	result := actionSums
	if c.Config.NoDeltaElimination {
		for _, d := range deltas {
			result = c.Store.Append(result, d)
		}
	} else {
		for _, d := range deltas {
			result = c.insertTimedDeltaSummand(result, d)
		}
	}
	return &ips{init: p.init, pars: p.pars, sums: result}
}

// renameAction rewrites an action's label through the renaming list.
func (c *Context) renameAction(renamings *aterm.Term, act *aterm.Term) *aterm.Term {
	m := c.M
	actId := m.ActionActId(act)
	for _, r := range aterm.Slice(renamings) {
		if r.Arg(0) == m.ActIdName(actId) {
			return m.Action(m.ActId(r.Arg(1), m.ActIdSorts(actId)), m.ActionArgs(act))
		}
	}
	return act
}

func (c *Context) renameComposition(renamings *aterm.Term, p *ips) *ips {
	m := c.M
	out := c.Store.Empty()
	for _, smd := range aterm.Slice(p.sums) {
		ma := smd.Arg(2)
		if !m.IsDelta(ma) {
			actions := aterm.Slice(ma.Arg(0))
			for i, act := range actions {
				actions[i] = c.renameAction(renamings, act)
			}
			ma = m.SortMultAct(m.MultAct(c.Store.List(actions...)))
		}
		out = c.Store.Append(out, m.Summand(smd.Arg(0), smd.Arg(1), ma, smd.Arg(3), smd.Arg(4)))
	}
	return &ips{init: p.init, pars: p.pars, sums: out}
}
