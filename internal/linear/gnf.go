package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
	"mcrl2/internal/subst"
)

// Greibach normal form. First every pCRL body is brought to a form where
// heads are actions or process variables (bodyToVarHeadGNF); then leading
// process variables are inlined until every body starts with a
// multi-action (procsToRealGNF). Unguarded recursion surfaces here.

// gnfState orders the positions of the head-normalisation state machine.
type gnfState int

const (
	stateAlt gnfState = iota
	stateSum
	stateSeq
	stateName
	stateMultiAction
)

// varPosition distinguishes the first position of a body from later ones.
type varPosition int

const (
	posFirst varPosition = iota
	posLater
)

// multiActionParameters builds fresh variables matching the argument
// sorts of the actions of a multi-action.
func (c *Context) multiActionParameters(ma *aterm.Term) *aterm.Term {
	out := c.Store.Empty()
	for _, act := range aterm.Slice(ma.Arg(0)) {
		for _, sort := range aterm.Slice(c.M.ActIdSorts(c.M.ActionActId(act))) {
			prefix := "a"
			if c.M.IsSortId(sort) {
				prefix = aterm.Name(sort.Arg(0))
			}
			out = c.Store.Append(out, c.Ap.Fresh.FreshVar(prefix, sort))
		}
	}
	return out
}

// multiActionArguments concatenates the argument lists of a multi-action.
func (c *Context) multiActionArguments(ma *aterm.Term) *aterm.Term {
	out := c.Store.Empty()
	for _, act := range aterm.Slice(ma.Arg(0)) {
		out = c.Store.Concat(out, c.M.ActionArgs(act))
	}
	return out
}

// addMultiAction interns a multi-action by its action-identifier
// sequence, so identical multi-actions share one synthesised process.
func (c *Context) addMultiAction(ma *aterm.Term) *object {
	names := c.Store.Empty()
	for _, act := range aterm.Slice(ma.Arg(0)) {
		names = c.Store.Append(names, c.M.ActionActId(act))
	}
	if o := c.object(names); o != nil {
		return o
	}
	o := c.addObject(names)
	o.kind = objMultiAct
	o.parameters = c.multiActionParameters(ma)
	pars := aterm.Slice(o.parameters)
	actions := c.Store.Empty()
	i := 0
	for _, actId := range aterm.Slice(names) {
		n := aterm.Length(c.M.ActIdSorts(actId))
		args := c.Store.Empty()
		for k := 0; k < n; k++ {
			args = c.Store.Append(args, pars[i])
			i++
		}
		actions = c.Store.Append(actions, c.M.Action(actId, args))
	}
	o.body = c.M.MultAct(actions)
	return o
}

// multiActionProcess returns the synthesised process invocation for a
// multi-action reached at a later position.
func (c *Context) multiActionProcess(ma *aterm.Term) *aterm.Term {
	o := c.addMultiAction(ma)
	if o.targetProc == nil {
		o.targetProc = c.newProcess(o.parameters, o.body, statusGNF, true)
	}
	return c.M.Process(o.targetProc, c.multiActionArguments(ma))
}

// wrapTime pushes a time annotation down to the head of a GNF-headed body.
func (c *Context) wrapTime(body, time, freeVars *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body):
		return m.Choice(
			c.wrapTime(body.Arg(0), time, freeVars),
			c.wrapTime(body.Arg(1), time, freeVars))
	case m.IsSum(body):
		sumVars, pairs := subst.AlphaConvert(c.Ap, body.Arg(0), aterm.Slice(freeVars), nil)
		body1 := c.Ap.Proc(body.Arg(1), pairs)
		time1 := c.Ap.Data(time, pairs)
		return m.Sum(sumVars, c.wrapTime(body1, time1, c.Store.Concat(sumVars, freeVars)))
	case m.IsCond(body):
		return m.Cond(body.Arg(0), c.wrapTime(body.Arg(1), time, freeVars), m.Delta())
	case m.IsSeq(body):
		return m.Seq(c.wrapTime(body.Arg(0), time, freeVars), body.Arg(1))
	case m.IsAtTime(body):
		p := c.newProcess(freeVars, body, statusPCRL, c.canTerminateBody(body, nil, nil))
		return m.AtTime(m.Process(p, c.object(p).parameters), time)
	case m.IsProcess(body), m.IsMultAct(body), m.IsDelta(body):
		return m.AtTime(body, time)
	}
	c.internalf(body, "expected a pCRL process while wrapping time")
	return nil
}

// bodyToVarHeadGNF normalises body so that every head position holds an
// action, a multi-action or a process variable. A bare multi-action at a
// later position becomes an invocation of its synthesised process.
// A trailing conditional behind an action is deliberately distributed,
// a·(c→x<>y) becoming c→a·x <> !c→a·y, which trades action duplication
// for a smaller state space.
func (c *Context) bodyToVarHeadGNF(body *aterm.Term, s gnfState, freeVars *aterm.Term, v varPosition) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body):
		if stateAlt >= s {
			return m.Choice(
				c.bodyToVarHeadGNF(body.Arg(0), stateAlt, freeVars, posFirst),
				c.bodyToVarHeadGNF(body.Arg(1), stateAlt, freeVars, posFirst))
		}
		body = c.bodyToVarHeadGNF(body, stateAlt, freeVars, posFirst)
		p := c.newProcess(freeVars, body, statusPCRL, c.canTerminateBody(body, nil, nil))
		return m.Process(p, c.object(p).parameters)

	case m.IsSum(body):
		if stateSum >= s {
			sumVars, pairs := subst.AlphaConvert(c.Ap, body.Arg(0), aterm.Slice(freeVars), nil)
			body1 := c.Ap.Proc(body.Arg(1), pairs)
			body1 = c.bodyToVarHeadGNF(body1, stateSum, c.Store.Concat(sumVars, freeVars), posFirst)
			// The conditional distribution below can produce a choice
			// here, over which the sum variables must be spread.
			if m.IsChoice(body1) {
				return m.Choice(m.Sum(sumVars, body1.Arg(0)), m.Sum(sumVars, body1.Arg(1)))
			}
			return m.Sum(sumVars, body1)
		}
		body = c.bodyToVarHeadGNF(body, stateAlt, freeVars, posFirst)
		p := c.newProcess(freeVars, body, statusPCRL, c.canTerminateBody(body, nil, nil))
		return m.Process(p, c.object(p).parameters)

	case m.IsCond(body):
		condition, then, els := body.Arg(0), body.Arg(1), body.Arg(2)
		if s <= stateSum && (m.IsDelta(then) || m.IsDelta(els)) {
			if m.IsDelta(els) {
				return m.Cond(condition,
					c.bodyToVarHeadGNF(then, stateSeq, freeVars, posFirst), m.Delta())
			}
			return m.Cond(m.Not(condition),
				c.bodyToVarHeadGNF(els, stateSeq, freeVars, posFirst), m.Delta())
		}
		if s == stateAlt {
			return m.Choice(
				m.Cond(condition,
					c.bodyToVarHeadGNF(then, stateSeq, freeVars, posFirst), m.Delta()),
				m.Cond(m.Not(condition),
					c.bodyToVarHeadGNF(els, stateSeq, freeVars, posFirst), m.Delta()))
		}
		body = c.bodyToVarHeadGNF(body, stateAlt, freeVars, posFirst)
		p := c.newProcess(freeVars, body, statusPCRL, c.canTerminateBody(body, nil, nil))
		return m.Process(p, c.object(p).parameters)

	case m.IsSeq(body):
		body1, body2 := body.Arg(0), body.Arg(1)
		if s <= stateSeq {
			body1 = c.bodyToVarHeadGNF(body1, stateName, freeVars, v)
			if m.IsCond(body2) && s <= stateSum {
				// a·(c→x<>y)  ⇒  c→a·x <> !c→a·y
				body3 := c.bodyToVarHeadGNF(body2.Arg(1), stateSeq, freeVars, posLater)
				body4 := c.bodyToVarHeadGNF(body2.Arg(2), stateSeq, freeVars, posLater)
				cond := body2.Arg(0)
				return m.Choice(
					m.Cond(cond, m.Seq(body1, body3), m.Delta()),
					m.Cond(m.Not(cond), m.Seq(body1, body4), m.Delta()))
			}
			body2 = c.bodyToVarHeadGNF(body2, stateSeq, freeVars, posLater)
			return m.Seq(body1, body2)
		}
		body1 = c.bodyToVarHeadGNF(body, stateAlt, freeVars, posFirst)
		p := c.newProcess(freeVars, body1, statusPCRL, c.canTerminateBody(body1, nil, nil))
		return m.Process(p, c.object(p).parameters)

	case m.IsAction(body):
		ma := m.MultAct(c.Store.List(body))
		if s == stateMultiAction || v == posFirst {
			return ma
		}
		return c.multiActionProcess(ma)

	case m.IsMultAct(body):
		if s == stateMultiAction || v == posFirst {
			return body
		}
		return c.multiActionProcess(body)

	case m.IsSync(body):
		ma := m.MergeMultActs(
			c.bodyToVarHeadGNF(body.Arg(0), stateMultiAction, freeVars, v),
			c.bodyToVarHeadGNF(body.Arg(1), stateMultiAction, freeVars, v))
		if s == stateMultiAction || v == posFirst {
			return ma
		}
		return c.multiActionProcess(ma)

	case m.IsAtTime(body):
		body1 := c.bodyToVarHeadGNF(body.Arg(0), s, freeVars, posFirst)
		body1 = c.wrapTime(body1, body.Arg(1), freeVars)
		if v == posFirst {
			return body1
		}
		p := c.newProcess(freeVars, body1, statusPCRL, c.canTerminateBody(body1, nil, nil))
		return m.Process(p, c.object(p).parameters)

	case m.IsProcess(body):
		return body

	case m.IsTau(body):
		if v == posFirst {
			return m.MultAct(c.Store.Empty())
		}
		if c.tauProcId == nil {
			c.tauProcId = c.newProcess(c.Store.Empty(), m.MultAct(c.Store.Empty()), statusPCRL, true)
		}
		return m.Process(c.tauProcId, c.Store.Empty())

	case m.IsDelta(body):
		if v == posFirst {
			return body
		}
		if c.deltaProcId == nil {
			c.deltaProcId = c.newProcess(c.Store.Empty(), body, statusPCRL, false)
		}
		return m.Process(c.deltaProcId, c.Store.Empty())
	}
	c.internalf(body, "unexpected process format in head normalisation")
	return nil
}

// procsToVarHeadGNF head-normalises every collected pCRL process.
func (c *Context) procsToVarHeadGNF(procs []*aterm.Term) {
	for _, procId := range procs {
		o := c.object(procId)
		o.body = c.bodyToVarHeadGNF(o.body, stateAlt, o.parameters, posFirst)
	}
}

// putBehind appends body2 behind every branch of body1.
func (c *Context) putBehind(body1, body2 *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body1):
		return m.Choice(c.putBehind(body1.Arg(0), body2), c.putBehind(body1.Arg(1), body2))
	case m.IsSeq(body1):
		return m.Seq(body1.Arg(0), c.putBehind(body1.Arg(1), body2))
	case m.IsCond(body1):
		return m.Cond(body1.Arg(0), c.putBehind(body1.Arg(1), body2), m.Delta())
	case m.IsSum(body1):
		sumVars, pairs := subst.AlphaConvert(c.Ap, body1.Arg(0), nil, []*aterm.Term{body2})
		return m.Sum(sumVars, c.putBehind(c.Ap.Proc(body1.Arg(1), pairs), body2))
	case m.IsMultAct(body1), m.IsProcess(body1), m.IsAtTime(body1):
		return m.Seq(body1, body2)
	case m.IsDelta(body1):
		return body1
	}
	c.internalf(body1, "unexpected process format while sequencing")
	return nil
}

// distributeCondition guards every branch of body1 with condition.
func (c *Context) distributeCondition(body1, condition *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body1):
		return m.Choice(
			c.distributeCondition(body1.Arg(0), condition),
			c.distributeCondition(body1.Arg(1), condition))
	case m.IsSeq(body1), m.IsMultAct(body1), m.IsProcess(body1), m.IsTau(body1):
		return m.Cond(condition, body1, m.Delta())
	case m.IsCond(body1):
		return m.Cond(m.And(body1.Arg(0), condition), body1.Arg(1), m.Delta())
	case m.IsSum(body1):
		sumVars, pairs := subst.AlphaConvert(c.Ap, body1.Arg(0), nil, []*aterm.Term{condition})
		return m.Sum(sumVars, c.distributeCondition(c.Ap.Proc(body1.Arg(1), pairs), condition))
	case m.IsDelta(body1):
		return body1
	}
	c.internalf(body1, "unexpected process format while distributing a condition")
	return nil
}

// distributeSum pushes sum variables through the choice structure.
func (c *Context) distributeSum(sumVars, body1 *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body1):
		return m.Choice(c.distributeSum(sumVars, body1.Arg(0)), c.distributeSum(sumVars, body1.Arg(1)))
	case m.IsSeq(body1), m.IsCond(body1), m.IsMultAct(body1), m.IsProcess(body1):
		return m.Sum(sumVars, body1)
	case m.IsSum(body1):
		return m.Sum(c.Store.Concat(sumVars, body1.Arg(0)), body1.Arg(1))
	case m.IsDelta(body1), m.IsTau(body1):
		return body1
	}
	c.internalf(body1, "unexpected process format while distributing a sum")
	return nil
}

// distributeTime pushes a time annotation into a GNF body, collecting an
// equality condition when a nested time annotation is met.
func (c *Context) distributeTime(body, time, freeVars *aterm.Term, timeCondition **aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(body):
		return m.Choice(
			c.distributeTime(body.Arg(0), time, freeVars, timeCondition),
			c.distributeTime(body.Arg(1), time, freeVars, timeCondition))
	case m.IsSum(body):
		sumVars, pairs := subst.AlphaConvert(c.Ap, body.Arg(0), aterm.Slice(freeVars), nil)
		body1 := c.Ap.Proc(body.Arg(1), pairs)
		time1 := c.Ap.Data(time, pairs)
		return m.Sum(sumVars, c.distributeTime(body1, time1, c.Store.Concat(sumVars, freeVars), timeCondition))
	case m.IsCond(body):
		inner := m.True()
		innerPtr := &inner
		body1 := c.distributeTime(body.Arg(1), time, freeVars, innerPtr)
		return m.Cond(m.And(body.Arg(0), *innerPtr), body1, m.Delta())
	case m.IsSeq(body):
		return m.Seq(c.distributeTime(body.Arg(0), time, freeVars, timeCondition), body.Arg(1))
	case m.IsAtTime(body):
		*timeCondition = m.Eq(time, body.Arg(1))
		return body
	case m.IsMultAct(body), m.IsDelta(body):
		return m.AtTime(body, time)
	}
	c.internalf(body, "expected a pCRL process while distributing time")
	return nil
}

// extractNames lists the process references of a GNF tail sequence; a
// non-terminating reference cuts the sequence.
func (c *Context) extractNames(sequence *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsAction(sequence) || m.IsProcess(sequence) {
		return c.Store.List(sequence)
	}
	if m.IsSeq(sequence) {
		first := sequence.Arg(0)
		if m.IsProcess(first) {
			if c.object(first.Arg(0)).canTerminate {
				return c.Store.Cons(first, c.extractNames(sequence.Arg(1)))
			}
			return c.Store.List(first)
		}
	}
	c.internalf(sequence, "expected a sequence of process names")
	return nil
}

// matchSequence compares two reference sequences by process identifier.
func (c *Context) matchSequence(s1, s2 *aterm.Term) bool {
	for !s1.IsEmpty() && !s2.IsEmpty() {
		if aterm.Head(s1).Arg(0) != aterm.Head(s2).Arg(0) {
			return false
		}
		s1, s2 = aterm.Tail(s1), aterm.Tail(s2)
	}
	return s1.IsEmpty() && s2.IsEmpty()
}

// existingProcessForSequence finds a previously generated process that
// stands for the same sequence.
func (c *Context) existingProcessForSequence(processNames, processBody *aterm.Term) *aterm.Term {
	if c.Config.Method == MethodRegular2 {
		for _, p := range c.seqVarNames {
			if c.matchSequence(processNames, c.object(p).representedProcesses) {
				return p
			}
		}
		return nil
	}
	for _, p := range c.seqVarNames {
		if c.object(p).representedProcess == processBody {
			return p
		}
	}
	return nil
}

// parsCollect collects the parameters of a reference sequence for
// regular2, renaming clashes, and builds the canonical new body.
func (c *Context) parsCollect(oldBody *aterm.Term, newBody **aterm.Term) *aterm.Term {
	m := c.M
	if m.IsProcess(oldBody) {
		procId := oldBody.Arg(0)
		parameters := c.object(procId).parameters
		*newBody = m.Process(procId, parameters)
		return parameters
	}
	if m.IsSeq(oldBody) {
		first := oldBody.Arg(0)
		if m.IsProcess(first) {
			procId := first.Arg(0)
			pars := c.parsCollect(oldBody.Arg(1), newBody)
			renamed, _ := c.constructRenaming(pars, c.object(procId).parameters)
			*newBody = m.Seq(m.Process(procId, renamed), *newBody)
			return c.Store.Concat(renamed, pars)
		}
	}
	c.internalf(oldBody, "expected a sequence of process names")
	return nil
}

func (c *Context) argsCollect(t *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsProcess(t) {
		return t.Arg(1)
	}
	if m.IsSeq(t) {
		return c.Store.Concat(t.Arg(0).Arg(1), c.argsCollect(t.Arg(1)))
	}
	c.internalf(t, "expected a sequence of process names")
	return nil
}

// createRegularInvocation replaces a sequence of process references by an
// invocation of a single (possibly freshly generated) process.
func (c *Context) createRegularInvocation(sequence *aterm.Term, todo *[]*aterm.Term, freeVars *aterm.Term) *aterm.Term {
	m := c.M
	sequence = c.rewriteProc(sequence)
	processNames := c.extractNames(sequence)
	if aterm.Length(processNames) == 1 {
		if m.IsProcess(sequence) {
			return sequence
		}
		return sequence.Arg(0)
	}
	newProcess := c.existingProcessForSequence(processNames, sequence)
	if newProcess == nil {
		if c.Config.Method == MethodRegular2 {
			var newBody *aterm.Term
			pars := c.parsCollect(sequence, &newBody)
			newProcess = c.newProcess(pars, newBody, statusPCRL, c.canTerminateBody(newBody, nil, nil))
			c.object(newProcess).representedProcesses = processNames
		} else {
			newProcess = c.newProcess(freeVars, sequence, statusPCRL, c.canTerminateBody(sequence, nil, nil))
			c.object(newProcess).representedProcess = sequence
		}
		c.seqVarNames = append(c.seqVarNames, newProcess)
		*todo = append(*todo, newProcess)
	}
	var args *aterm.Term
	if c.Config.Method == MethodRegular2 {
		args = c.argsCollect(sequence)
	} else {
		args = c.object(newProcess).parameters
	}
	return m.Process(newProcess, args)
}

// toRegularForm replaces every tail sequence by a single invocation.
func (c *Context) toRegularForm(t *aterm.Term, todo *[]*aterm.Term, freeVars *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsChoice(t):
		return m.Choice(c.toRegularForm(t.Arg(0), todo, freeVars), c.toRegularForm(t.Arg(1), todo, freeVars))
	case m.IsSeq(t):
		return m.Seq(t.Arg(0), c.createRegularInvocation(t.Arg(1), todo, freeVars))
	case m.IsCond(t):
		return m.Cond(t.Arg(0), c.toRegularForm(t.Arg(1), todo, freeVars), m.Delta())
	case m.IsSum(t):
		return m.Sum(t.Arg(0), c.toRegularForm(t.Arg(1), todo, c.Store.Concat(t.Arg(0), freeVars)))
	case m.IsMultAct(t), m.IsDelta(t), m.IsTau(t), m.IsAtTime(t):
		return t
	}
	c.internalf(t, "regular form expects a GNF body")
	return nil
}

// toRealGNFBody inlines a leading process variable until a multi-action
// heads the body, or returns nil for an mCRL body.
func (c *Context) toRealGNFBody(body *aterm.Term, v varPosition, todo *[]*aterm.Term, mode procStatus, freeVars *aterm.Term) (*aterm.Term, error) {
	m := c.M
	switch {
	case m.IsAtTime(body):
		body1, err := c.toRealGNFBody(body.Arg(0), posFirst, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		cond := m.True()
		return c.distributeTime(body1, body.Arg(1), freeVars, &cond), nil

	case m.IsSync(body):
		return nil, c.fatalf(diag.ErrorBadNesting, body, "synchronisation operator cannot occur here")

	case m.IsChoice(body):
		body1, err := c.toRealGNFBody(body.Arg(0), posFirst, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		body2, err := c.toRealGNFBody(body.Arg(1), posFirst, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		return m.Choice(body1, body2), nil

	case m.IsSeq(body):
		body1, err := c.toRealGNFBody(body.Arg(0), v, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		body2, err := c.toRealGNFBody(body.Arg(1), posLater, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		t3 := c.putBehind(body1, body2)
		if c.Config.regular() && v == posFirst {
			t3 = c.toRegularForm(t3, todo, freeVars)
		}
		return t3, nil

	case m.IsCond(body):
		body1, err := c.toRealGNFBody(body.Arg(1), posFirst, todo, mode, freeVars)
		if err != nil {
			return nil, err
		}
		return c.distributeCondition(body1, body.Arg(0)), nil

	case m.IsSum(body):
		sumVars := body.Arg(0)
		body1, err := c.toRealGNFBody(body.Arg(1), posFirst, todo, mode, c.Store.Concat(sumVars, freeVars))
		if err != nil {
			return nil, err
		}
		return c.distributeSum(sumVars, body1), nil

	case m.IsMultAct(body), m.IsDelta(body):
		return body, nil

	case m.IsProcess(body):
		procId := body.Arg(0)
		if v == posLater {
			*todo = append(*todo, procId)
			return body, nil
		}
		o := c.object(procId)
		if o.status == statusMCRL {
			*todo = append(*todo, procId)
			return nil, nil
		}
		if err := c.toRealGNFRec(procId, posFirst, todo); err != nil {
			return nil, err
		}
		var pairs subst.Subst
		pars := aterm.Slice(o.parameters)
		args := aterm.Slice(body.Arg(1))
		for i := range pars {
			pairs = append(pairs, subst.Pair{Var: pars[i], Repl: args[i]})
		}
		t3 := c.Ap.Proc(o.body, pairs)
		if c.Config.regular() {
			t3 = c.toRegularForm(t3, todo, freeVars)
		}
		return t3, nil

	case m.IsMerge(body):
		if _, err := c.toRealGNFBody(body.Arg(0), posLater, todo, mode, freeVars); err != nil {
			return nil, err
		}
		if _, err := c.toRealGNFBody(body.Arg(1), posLater, todo, mode, freeVars); err != nil {
			return nil, err
		}
		return nil, nil

	case m.IsHide(body), m.IsRename(body), m.IsAllow(body), m.IsBlock(body), m.IsComm(body):
		if _, err := c.toRealGNFBody(body.Arg(1), posLater, todo, mode, freeVars); err != nil {
			return nil, err
		}
		return nil, nil
	}
	c.internalf(body, "unexpected process format in GNF transformation")
	return nil, nil
}

func (c *Context) toRealGNFRec(procId *aterm.Term, v varPosition, todo *[]*aterm.Term) error {
	o := c.object(procId)
	switch o.status {
	case statusPCRL:
		o.status = statusGNFBusy
		t, err := c.toRealGNFBody(o.body, posFirst, todo, statusPCRL, o.parameters)
		if err != nil {
			return err
		}
		if o.status != statusGNFBusy {
			c.internalf(procId, "recursion state corrupted during GNF transformation")
		}
		o.body = t
		o.status = statusGNF
		return nil
	case statusMCRL:
		o.status = statusMCRLBusy
		if _, err := c.toRealGNFBody(o.body, posFirst, todo, statusMCRL, o.parameters); err != nil {
			return err
		}
		o.status = statusMCRLDone
		return nil
	case statusGNFBusy:
		if v == posFirst {
			return c.fatalf(diag.ErrorUnguarded, procId, "unguarded recursion in process %s",
				aterm.Name(procId.Arg(0)))
		}
		return nil
	case statusGNF, statusMCRLDone, statusMultiAction, statusGNFAlpha:
		return nil
	case statusMCRLBusy:
		return c.fatalf(diag.ErrorUnguarded, procId, "unguarded recursion without pCRL operators")
	}
	c.internalf(procId, "unexpected process status %d", o.status)
	return nil
}

// procsToRealGNF drives the head-substitution to closure from the
// initial process.
func (c *Context) procsToRealGNF(initProc *aterm.Term) error {
	todo := []*aterm.Term{initProc}
	for len(todo) > 0 {
		procId := todo[0]
		todo = todo[1:]
		if err := c.toRealGNFRec(procId, posFirst, &todo); err != nil {
			return err
		}
	}
	return nil
}
