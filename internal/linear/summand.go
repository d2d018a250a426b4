package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// ips is the intermediate "initial process specification": the initial
// value list, the parameter list, and the summands collected so far.
// Summand next-states hold value lists; they only become assignment lists
// at the very end of a pCRL generation.
type ips struct {
	init *aterm.Term // list of initial values / assignments
	pars *aterm.Term // list of DataVarId
	sums *aterm.Term // list of LPESummand
}

// terminatedNextState marks a summand with no continuation. The reserved
// head keeps it distinguishable from an empty value list.
func (c *Context) terminatedNextState() *aterm.Term { return c.M.Nil() }

// substNextState substitutes into a next state that is already in
// assignment form, passing the terminated marker through.
func (c *Context) substNextState(ns *aterm.Term, pairs subst.Subst) *aterm.Term {
	if c.M.IsNil(ns) {
		return ns
	}
	return c.Ap.Assignments(ns, pairs)
}

func (c *Context) summandTerminated(smd *aterm.Term) bool {
	return c.M.IsNil(smd.Arg(4))
}

// identicalActionIds compares two multi-actions by action identifiers.
func (c *Context) identicalActionIds(ma1, ma2 *aterm.Term) bool {
	m := c.M
	if m.IsDelta(ma1) {
		return m.IsDelta(ma2)
	}
	if m.IsDelta(ma2) {
		return false
	}
	l1, l2 := ma1.Arg(0), ma2.Arg(0)
	for !l1.IsEmpty() && !l2.IsEmpty() {
		if m.ActionActId(aterm.Head(l1)) != m.ActionActId(aterm.Head(l2)) {
			return false
		}
		l1, l2 = aterm.Tail(l1), aterm.Tail(l2)
	}
	return l1.IsEmpty() && l2.IsEmpty()
}

// variablesEqual matches two sum-variable lists up to renaming; on
// success the pairs rename vars onto vars1.
func (c *Context) variablesEqual(vars, vars1 *aterm.Term) (subst.Subst, bool) {
	if aterm.Length(vars) != aterm.Length(vars1) {
		return nil, false
	}
	var pairs subst.Subst
	for !vars.IsEmpty() {
		v, v1 := aterm.Head(vars), aterm.Head(vars1)
		if c.M.VarSort(v) != c.M.VarSort(v1) {
			return nil, false
		}
		if v != v1 {
			pairs = append(pairs, subst.Pair{Var: v, Repl: v1})
		}
		vars, vars1 = aterm.Tail(vars), aterm.Tail(vars1)
	}
	return pairs, true
}

// insertSummand adds a summand to the list, folding it into an existing
// summand that differs only in its condition. Untimed delta summands are
// dropped outright.
func (c *Context) insertSummand(sums *aterm.Term, sumVars, condition, multiAction, actTime, procArgs *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsDelta(multiAction) && m.IsNil(actTime) && !c.Config.NoDeltaElimination {
		return sums
	}
	prefix := c.Store.Empty()
	for walker := sums; !walker.IsEmpty(); walker = aterm.Tail(walker) {
		smd := aterm.Head(walker)
		if !c.identicalActionIds(multiAction, smd.Arg(2)) {
			prefix = c.Store.Cons(smd, prefix)
			continue
		}
		pairs, ok := c.variablesEqual(sumVars, smd.Arg(0))
		if !ok {
			prefix = c.Store.Cons(smd, prefix)
			continue
		}
		args2 := c.Ap.Data(procArgs, pairs)
		time2 := c.Ap.Time(actTime, pairs)
		ma2 := multiAction
		if m.IsMultAct(multiAction) {
			ma2 = c.Ap.MultAct(multiAction, pairs)
		}
		if args2 == smd.Arg(4) && time2 == smd.Arg(3) && ma2 == smd.Arg(2) {
			merged := m.Summand(smd.Arg(0),
				m.Or(smd.Arg(1), c.Ap.Data(condition, pairs)),
				smd.Arg(2), smd.Arg(3), smd.Arg(4))
			return c.Store.Cons(merged, c.Store.Concat(c.Store.Reverse(prefix), aterm.Tail(walker)))
		}
		prefix = c.Store.Cons(smd, prefix)
	}
	return c.Store.Cons(m.Summand(sumVars, condition, multiAction, actTime, procArgs),
		c.Store.Reverse(prefix))
}

// addSummands compiles one GNF branch into summands, attaching the state
// guard and encoding the continuation.
func (c *Context) addSummands(procId, summandTerm *aterm.Term, pCRLprocs []*aterm.Term, st *stackType, canTerminate bool, singleState bool, sums *aterm.Term) (*aterm.Term, error) {
	m := c.M
	sumVars := c.Store.Empty()
	for m.IsSum(summandTerm) {
		sumVars = c.Store.Concat(summandTerm.Arg(0), sumVars)
		summandTerm = summandTerm.Arg(1)
	}

	regular := c.Config.regular()
	var condition1 *aterm.Term
	if regular && singleState {
		condition1 = m.True()
	} else {
		condition1 = c.stateCondition(procId, pCRLprocs, st)
	}
	for m.IsCond(summandTerm) {
		local := summandTerm.Arg(0)
		if regular && singleState {
			condition1 = m.And(local, condition1)
		} else if regular {
			condition1 = m.And(condition1, local)
		} else {
			condition1 = m.And(condition1, c.adaptTermToStack(local, st, sumVars))
		}
		summandTerm = summandTerm.Arg(1)
	}

	if m.IsSeq(summandTerm) {
		t1, t2 := summandTerm.Arg(0), summandTerm.Arg(1)
		atTime := m.Nil()
		if m.IsAtTime(t1) {
			atTime = t1.Arg(1)
			t1 = t1.Arg(0)
		}
		multiAction := c.headMultiAction(t1)
		procArgs, err := c.makeProcArgs(t2, st, pCRLprocs, sumVars, singleState)
		if err != nil {
			return nil, err
		}
		if !regular {
			if !m.IsDelta(multiAction) {
				multiAction = c.adaptMultiActionToStack(multiAction, st, sumVars)
			}
			if !m.IsNil(atTime) {
				atTime = c.adaptTermToStack(atTime, st, sumVars)
			}
		}
		return c.insertSummand(sums, sumVars, c.rewriteTerm(condition1), multiAction, atTime, procArgs), nil
	}

	// A bare multi-action or deadlock ends this branch.
	atTime := m.Nil()
	if m.IsAtTime(summandTerm) {
		atTime = summandTerm.Arg(1)
		summandTerm = summandTerm.Arg(0)
	}
	multiAction := c.headMultiAction(summandTerm)

	if regular {
		if !m.IsDelta(multiAction) {
			c.internalf(summandTerm, "terminating process surfaced in a regular linearisation")
		}
		return c.insertSummand(sums, sumVars, c.rewriteTerm(condition1), multiAction, atTime,
			c.dummyParameterList(st, singleState)), nil
	}

	// Stack mode: the process may or may not terminate afterwards, so
	// the guard splits over the emptiness of the popped stack.
	pop := m.Apply(st.opns.pop, st.stackVar)
	emptyPops := m.Apply(st.opns.isEmpty, pop)
	condition2 := condition1
	if canTerminate {
		condition2 = m.And(m.Not(emptyPops), condition1)
	}
	multiAction = c.adaptMultiActionToStack(multiAction, st, sumVars)
	procArgs := c.Store.List(pop)
	sums = c.insertSummand(sums, sumVars, c.rewriteTerm(condition2), multiAction, atTime, procArgs)
	if canTerminate {
		condition2 = m.And(emptyPops, condition1)
		sums = c.insertSummand(sums, sumVars, c.rewriteTerm(condition2), multiAction, atTime,
			c.terminatedNextState())
	}
	return sums, nil
}

// headMultiAction normalises the head of a branch to Delta or a MultAct.
func (c *Context) headMultiAction(t *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsDelta(t):
		return t
	case m.IsTau(t):
		return m.MultAct(c.Store.Empty())
	case m.IsAction(t):
		return m.MultAct(c.Store.List(t))
	case m.IsMultAct(t):
		return t
	}
	c.internalf(t, "expected a multi-action at the head of a summand")
	return nil
}

// collectSumList walks every collected pCRL body and extracts summands.
func (c *Context) collectSumList(pCRLprocs []*aterm.Term, st *stackType, canTerminate, singleState bool) (*aterm.Term, error) {
	sums := c.Store.Empty()
	for _, procId := range pCRLprocs {
		o := c.object(procId)
		var err error
		sums, err = c.collectSumListTerm(procId, o.body, pCRLprocs, st,
			canTerminate && o.canTerminate, singleState, sums)
		if err != nil {
			return nil, err
		}
	}
	return sums, nil
}

func (c *Context) collectSumListTerm(procId, body *aterm.Term, pCRLprocs []*aterm.Term, st *stackType, canTerminate, singleState bool, sums *aterm.Term) (*aterm.Term, error) {
	if c.M.IsChoice(body) {
		sums, err := c.collectSumListTerm(procId, body.Arg(0), pCRLprocs, st, canTerminate, singleState, sums)
		if err != nil {
			return nil, err
		}
		return c.collectSumListTerm(procId, body.Arg(1), pCRLprocs, st, canTerminate, singleState, sums)
	}
	return c.addSummands(procId, body, pCRLprocs, st, canTerminate, singleState, sums)
}

// collectParameterList joins the parameters of all pCRL processes,
// renaming a same-named parameter of a different sort.
func (c *Context) collectParameterList(pCRLprocs []*aterm.Term) *aterm.Term {
	parameters := c.Store.Empty()
	for _, procId := range pCRLprocs {
		o := c.object(procId)
		for _, v := range aterm.Slice(o.parameters) {
			v2, present := c.resolveParameter(v, parameters, o)
			if !present {
				parameters = c.Store.Append(parameters, v2)
			}
		}
	}
	return parameters
}

// resolveParameter decides whether var is already among vl. A variable
// with the same name but a different sort is renamed inside its process
// so the aggregated parameters keep unique names.
func (c *Context) resolveParameter(v *aterm.Term, vl *aterm.Term, o *object) (*aterm.Term, bool) {
	m := c.M
	for _, v1 := range aterm.Slice(vl) {
		if v == v1 {
			return v, true
		}
		if m.VarName(v) == m.VarName(v1) {
			fresh := c.Ap.Fresh.FreshVar(aterm.Name(m.VarName(v)), m.VarSort(v))
			pairs := subst.Subst{{Var: v, Repl: fresh}}
			o.parameters = c.Ap.Data(o.parameters, pairs)
			o.body = c.Ap.Proc(o.body, pairs)
			return fresh, false
		}
	}
	return v, false
}

// generateLPEpCRL linearises one aggregated pCRL cluster into an ips.
func (c *Context) generateLPEpCRL(procId *aterm.Term, canTerminate bool) (*ips, error) {
	o := c.object(procId)
	pCRLprocs := []*aterm.Term{procId}
	c.makePcrlProcs(o.body, &pCRLprocs)
	singleState := len(pCRLprocs) == 1

	parameters := c.collectParameterList(pCRLprocs)
	c.alphaConversion(procId, parameters)

	regular := c.Config.regular()
	if (!singleState || !regular) && c.Config.NewState && !c.Config.Binary {
		c.createEnumeratedType(len(pCRLprocs))
	}
	st := c.newStack(parameters, pCRLprocs)
	initial := c.makeInitialState(procId, st, pCRLprocs, singleState)
	sums, err := c.collectSumList(pCRLprocs, st, canTerminate && o.canTerminate, singleState)
	if err != nil {
		return nil, err
	}

	if !c.Config.NoIntermediateCluster {
		var clusterVars *aterm.Term
		switch {
		case regular && c.Config.Binary && c.Config.NewState:
			clusterVars = st.parameterList
			if !singleState {
				clusterVars = c.Store.Concat(c.Store.List(st.booleanStateVars...), clusterVars)
			}
		case regular:
			if singleState {
				clusterVars = st.parameterList
			} else {
				clusterVars = c.Store.Cons(st.stackVar, st.parameterList)
			}
		default:
			clusterVars = c.Store.List(st.stackVar)
		}
		sums = c.clusterActions(sums, clusterVars, false)
	}

	if regular {
		pars := st.parameterList
		if c.Config.Binary && c.Config.NewState {
			pars = c.Store.Concat(c.Store.List(st.booleanStateVars...), pars)
		} else if !singleState {
			pars = c.Store.Cons(st.stackVar, pars)
		}
		return &ips{init: initial, pars: pars, sums: sums}, nil
	}
	return &ips{init: initial, pars: c.Store.List(st.stackVar), sums: sums}, nil
}

// makePcrlProcs collects the process identifiers reachable inside one
// pCRL cluster.
func (c *Context) makePcrlProcs(t *aterm.Term, procs *[]*aterm.Term) {
	m := c.M
	switch {
	case m.IsChoice(t), m.IsSeq(t):
		c.makePcrlProcs(t.Arg(0), procs)
		c.makePcrlProcs(t.Arg(1), procs)
	case m.IsCond(t), m.IsSum(t):
		c.makePcrlProcs(t.Arg(1), procs)
	case m.IsProcess(t):
		procId := t.Arg(0)
		for _, p := range *procs {
			if p == procId {
				return
			}
		}
		*procs = append(*procs, procId)
		c.makePcrlProcs(c.object(procId).body, procs)
	case m.IsMultAct(t), m.IsDelta(t), m.IsAtTime(t):
	default:
		c.internalf(t, "unexpected process format while collecting pCRL processes")
	}
}

// alphaConversion makes the bound variables of a GNF cluster distinct
// from the aggregated parameters.
func (c *Context) alphaConversion(procId *aterm.Term, parameters *aterm.Term) {
	o := c.object(procId)
	switch o.status {
	case statusGNF, statusMultiAction:
		o.status = statusGNFAlpha
		o.body = c.alphaConversionTerm(o.body, parameters, nil)
	case statusMCRLDone:
		c.alphaConversionTerm(o.body, parameters, nil)
	case statusGNFAlpha:
	default:
		c.internalf(procId, "unexpected status %d in alpha conversion", o.status)
	}
}

func (c *Context) alphaConversionTerm(t *aterm.Term, parameters *aterm.Term, pairs subst.Subst) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(t), m.IsSeq(t), m.IsSync(t), m.IsBInit(t):
		return c.Store.MakeAppl(t.Function(),
			c.alphaConversionTerm(t.Arg(0), parameters, pairs),
			c.alphaConversionTerm(t.Arg(1), parameters, pairs))
	case m.IsMerge(t):
		c.alphaConversionTerm(t.Arg(0), parameters, pairs)
		c.alphaConversionTerm(t.Arg(1), parameters, pairs)
		return nil
	case m.IsAtTime(t):
		return m.AtTime(
			c.alphaConversionTerm(t.Arg(0), parameters, pairs),
			c.Ap.Data(t.Arg(1), pairs))
	case m.IsCond(t):
		return m.Cond(c.Ap.Data(t.Arg(0), pairs),
			c.alphaConversionTerm(t.Arg(1), parameters, pairs), m.Delta())
	case m.IsSum(t):
		sumVars, renames := subst.AlphaConvert(c.Ap, t.Arg(0), aterm.Slice(parameters), nil)
		pairs2 := append(append(subst.Subst{}, pairs...), renames...)
		return m.Sum(sumVars, c.alphaConversionTerm(t.Arg(1),
			c.Store.Concat(sumVars, parameters), pairs2))
	case m.IsProcess(t):
		c.alphaConversion(t.Arg(0), parameters)
		return m.Process(t.Arg(0), c.Ap.Data(t.Arg(1), pairs))
	case m.IsAction(t):
		return m.Action(t.Arg(0), c.Ap.Data(m.ActionArgs(t), pairs))
	case m.IsMultAct(t):
		return c.Ap.MultAct(t, pairs)
	case m.IsDelta(t), m.IsTau(t):
		return t
	case m.IsHide(t), m.IsRename(t), m.IsComm(t), m.IsAllow(t), m.IsBlock(t):
		c.alphaConversionTerm(t.Arg(1), parameters, pairs)
		return nil
	}
	c.internalf(t, "unexpected process format in alpha conversion")
	return nil
}
