package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Clustering merges summands that share an action pattern into a single
// summand quantified over a fresh enumerated-type variable e. Every data
// position becomes a case application over e; the per-sort case functions
// are generated on the enumerated type as needed. Summand selection is
// deterministic: clusters keep the order in which their first members
// were appended, and members keep list order.

// canBeClustered decides which summands may share a cluster: identical
// action-identifier sequences, matching time presence, delta with delta.
func (c *Context) canBeClustered(s1, s2 *aterm.Term) bool {
	m := c.M
	if m.IsNil(s1.Arg(3)) != m.IsNil(s2.Arg(3)) {
		return false
	}
	if c.summandTerminated(s1) != c.summandTerminated(s2) {
		return false
	}
	return c.identicalActionIds(s1.Arg(2), s2.Arg(2))
}

// mergeVars renames the sum variables of a summand onto the shared list,
// reusing one shared variable per sort occurrence and extending the
// shared list when a summand needs more.
func (c *Context) mergeVars(sumVars *aterm.Term, shared *[]*aterm.Term) subst.Subst {
	used := make(map[int]bool)
	var pairs subst.Subst
	for _, v := range aterm.Slice(sumVars) {
		sort := c.M.VarSort(v)
		target := -1
		for i, sv := range *shared {
			if !used[i] && c.M.VarSort(sv) == sort {
				target = i
				break
			}
		}
		if target < 0 {
			fresh := c.Ap.Fresh.FreshVar(aterm.Name(c.M.VarName(v)), sort)
			*shared = append(*shared, fresh)
			target = len(*shared) - 1
		}
		used[target] = true
		if (*shared)[target] != v {
			pairs = append(pairs, subst.Pair{Var: v, Repl: (*shared)[target]})
		}
	}
	return pairs
}

// rhsAssignment finds the value a final-form summand assigns to par.
func (c *Context) rhsAssignment(par, assignments *aterm.Term) *aterm.Term {
	for _, a := range aterm.Slice(assignments) {
		if a.Arg(0) == par {
			return a.Arg(1)
		}
	}
	return par
}

// clusterActions clusters the summand list. With withAssignments set the
// next states are assignment lists (the final LPE form); otherwise they
// are value lists aligned with pars.
func (c *Context) clusterActions(sums *aterm.Term, pars *aterm.Term, withAssignments bool) *aterm.Term {
	summands := aterm.Slice(sums)
	clustered := make([]bool, len(summands))
	out := c.Store.Empty()

	for i, smd := range summands {
		if clustered[i] {
			continue
		}
		// Terminated summands never cluster: they have no next state to
		// merge over.
		cluster := []*aterm.Term{smd}
		clustered[i] = true
		if !c.summandTerminated(smd) {
			for j := i + 1; j < len(summands); j++ {
				if !clustered[j] && !c.summandTerminated(summands[j]) &&
					c.canBeClustered(smd, summands[j]) {
					cluster = append(cluster, summands[j])
					clustered[j] = true
				}
			}
		}
		if len(cluster) == 1 {
			out = c.Store.Append(out, smd)
			continue
		}
		out = c.Store.Append(out, c.clusterGroup(cluster, pars, withAssignments))
	}
	return out
}

// clusterGroup merges one cluster into a single summand.
func (c *Context) clusterGroup(cluster []*aterm.Term, pars *aterm.Term, withAssignments bool) *aterm.Term {
	m := c.M
	n := len(cluster)
	e := c.createEnumeratedType(n)
	eVar := c.Ap.Fresh.FreshVar("e", e.sortId)

	var shared []*aterm.Term
	renamings := make([]subst.Subst, n)
	for i, smd := range cluster {
		renamings[i] = c.mergeVars(smd.Arg(0), &shared)
	}

	conditions := make([]*aterm.Term, n)
	for i, smd := range cluster {
		conditions[i] = c.Ap.Data(smd.Arg(1), renamings[i])
	}
	condition := c.applyCase(e, eVar, conditions, m.SortBool)

	// Multi-action arguments share the pattern, so each argument
	// position becomes one case application.
	var multiAction *aterm.Term
	first := cluster[0].Arg(2)
	if m.IsDelta(first) {
		multiAction = first
	} else {
		actions := aterm.Slice(first.Arg(0))
		newActions := make([]*aterm.Term, len(actions))
		for ai, act := range actions {
			argCount := aterm.Length(m.ActionArgs(act))
			newArgs := c.Store.Empty()
			for k := 0; k < argCount; k++ {
				alts := make([]*aterm.Term, n)
				for i, smd := range cluster {
					a := aterm.At(smd.Arg(2).Arg(0), ai)
					alts[i] = c.Ap.Data(aterm.At(m.ActionArgs(a), k), renamings[i])
				}
				sort := aterm.At(m.ActIdSorts(m.ActionActId(act)), k)
				newArgs = c.Store.Append(newArgs, c.applyCase(e, eVar, alts, sort))
			}
			newActions[ai] = m.Action(m.ActionActId(act), newArgs)
		}
		multiAction = m.MultAct(c.Store.List(newActions...))
	}

	time := m.Nil()
	if !m.IsNil(cluster[0].Arg(3)) {
		alts := make([]*aterm.Term, n)
		for i, smd := range cluster {
			alts[i] = c.Ap.Data(smd.Arg(3), renamings[i])
		}
		time = c.applyCase(e, eVar, alts, m.SortReal)
	}

	var nextState *aterm.Term
	if withAssignments {
		nextState = c.Store.Empty()
		for _, par := range aterm.Slice(pars) {
			alts := make([]*aterm.Term, n)
			for i, smd := range cluster {
				alts[i] = c.Ap.Data(c.rhsAssignment(par, smd.Arg(4)), renamings[i])
			}
			v := c.applyCase(e, eVar, alts, m.VarSort(par))
			if v != par {
				nextState = c.Store.Append(nextState, m.Assignment(par, v))
			}
		}
	} else {
		nextState = c.Store.Empty()
		count := aterm.Length(cluster[0].Arg(4))
		for k := 0; k < count; k++ {
			alts := make([]*aterm.Term, n)
			for i, smd := range cluster {
				alts[i] = c.Ap.Data(aterm.At(smd.Arg(4), k), renamings[i])
			}
			var sort *aterm.Term
			if k < aterm.Length(pars) {
				sort = m.VarSort(aterm.At(pars, k))
			} else {
				sort = m.SortOf(alts[0])
			}
			nextState = c.Store.Append(nextState, c.applyCase(e, eVar, alts, sort))
		}
	}

	sumVars := c.Store.List(shared...)
	sumVars = c.Store.Append(sumVars, eVar)
	return m.Summand(sumVars, condition, multiAction, time, nextState)
}

// clusterFinalResult applies clustering to a finished LPE body.
func (c *Context) clusterFinalResult(p *ips) *ips {
	return &ips{
		init: p.init,
		pars: p.pars,
		sums: c.clusterActions(p.sums, p.pars, true),
	}
}
