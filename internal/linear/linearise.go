package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
	"mcrl2/internal/subst"
)

// Top-level driver: ingest, classify, analyse termination, split, bring
// to GNF, generate the LPE bottom-up over the mCRL operator tree, and
// assemble the output specification.

// generateLPEmCRLTerm expands one mCRL body.
func (c *Context) generateLPEmCRLTerm(t *aterm.Term, canTerminate bool) (*ips, error) {
	m := c.M
	switch {
	case m.IsProcess(t):
		p, err := c.generateLPEmCRL(t.Arg(0), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.nameComposition(t.Arg(0), t.Arg(1), p), nil
	case m.IsMerge(t):
		p1, err := c.generateLPEmCRLTerm(t.Arg(0), canTerminate)
		if err != nil {
			return nil, err
		}
		p2, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.parallelComposition(p1, p2), nil
	case m.IsHide(t):
		p, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.hideComposition(t.Arg(0), p), nil
	case m.IsAllow(t):
		p, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.allowComposition(t.Arg(0), p), nil
	case m.IsBlock(t):
		p, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.encapComposition(t.Arg(0), p), nil
	case m.IsRename(t):
		p, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.renameComposition(t.Arg(0), p), nil
	case m.IsComm(t):
		p, err := c.generateLPEmCRLTerm(t.Arg(1), canTerminate)
		if err != nil {
			return nil, err
		}
		return c.communicationComposition(t.Arg(0), p), nil
	}
	c.internalf(t, "expected an mCRL term")
	return nil, nil
}

// generateLPEmCRL dispatches on the descriptor status.
func (c *Context) generateLPEmCRL(procId *aterm.Term, canTerminate bool) (*ips, error) {
	o := c.object(procId)
	switch o.status {
	case statusGNF, statusPCRL, statusGNFAlpha, statusMultiAction:
		p, err := c.generateLPEpCRL(procId, canTerminate && o.canTerminate)
		if err != nil {
			return nil, err
		}
		p = c.sumElimination(p)
		return c.replaceArgumentsByAssignments(p), nil
	case statusMCRLDone, statusMCRLLin, statusMCRL:
		o.status = statusMCRLLin
		return c.generateLPEmCRLTerm(o.body, canTerminate && o.canTerminate)
	}
	c.internalf(procId, "unexpected process status %d at LPE generation", o.status)
	return nil, nil
}

// replaceArgumentsByAssignments turns next-state value lists into
// assignment lists, dropping identical assignments.
func (c *Context) replaceArgumentsByAssignments(p *ips) *ips {
	m := c.M
	toAssignments := func(args *aterm.Term) *aterm.Term {
		if m.IsNil(args) {
			return c.Store.Empty()
		}
		out := c.Store.Empty()
		walker := args
		for _, par := range aterm.Slice(p.pars) {
			arg := aterm.Head(walker)
			walker = aterm.Tail(walker)
			if par != arg {
				out = c.Store.Append(out, m.Assignment(par, arg))
			}
		}
		return out
	}
	sums := c.Store.Empty()
	for _, smd := range aterm.Slice(p.sums) {
		var next *aterm.Term
		if c.summandTerminated(smd) {
			next = smd.Arg(4)
		} else {
			next = toAssignments(smd.Arg(4))
		}
		sums = c.Store.Append(sums,
			m.Summand(smd.Arg(0), smd.Arg(1), smd.Arg(2), smd.Arg(3), next))
	}
	return &ips{init: toAssignments(p.init), pars: p.pars, sums: sums}
}

// addTerminationActionIfNecessary declares the Terminate action when any
// summand still performs it.
func (c *Context) addTerminationActionIfNecessary(p *ips) {
	for _, smd := range aterm.Slice(p.sums) {
		if smd.Arg(2) == c.terminationAction {
			actId := c.M.ActionActId(aterm.Head(c.terminationAction.Arg(0)))
			c.spec.acts = append(c.spec.acts, actId)
			return
		}
	}
}

// sieveProcDataVarsSummands keeps the free variables that occur in some
// summand.
func (c *Context) sieveProcDataVarsSummands(sums *aterm.Term) *aterm.Term {
	m := c.M
	out := c.Store.Empty()
	for _, v := range c.spec.procDataVars {
		for _, smd := range aterm.Slice(sums) {
			if subst.OccursInSummand(m, v, smd) {
				out = c.Store.Append(out, v)
				break
			}
		}
	}
	return out
}

// sieveProcDataVarsAssignments keeps the free variables occurring in the
// initial assignments.
func (c *Context) sieveProcDataVarsAssignments(assignments *aterm.Term) *aterm.Term {
	m := c.M
	out := c.Store.Empty()
	for _, v := range c.spec.procDataVars {
		for _, a := range aterm.Slice(assignments) {
			if subst.OccursIn(m, v, a.Arg(1)) {
				out = c.Store.Append(out, v)
				break
			}
		}
	}
	return out
}

// transform runs the staged pipeline on the stored initial process.
func (c *Context) transform(initProc *aterm.Term) (*ips, error) {
	if _, err := c.determineProcessStatus(initProc); err != nil {
		return nil, err
	}
	c.determineTermination(initProc)
	initProc = c.splitProcesses(initProc)
	pcrlProcs := c.collectPcrlProcesses(initProc)
	if len(pcrlProcs) == 0 {
		return nil, c.fatalf(diag.ErrorNoPCRL, initProc, "there are no pCRL processes to be linearised")
	}
	c.procsToVarHeadGNF(pcrlProcs)
	if err := c.procsToRealGNF(initProc); err != nil {
		return nil, err
	}
	p, err := c.generateLPEmCRL(initProc, c.object(initProc).canTerminate)
	if err != nil {
		return nil, err
	}
	if c.Config.FinalCluster {
		p = c.clusterFinalResult(p)
	}
	c.addTerminationActionIfNecessary(p)
	return p, nil
}

// Linearise transforms a specification term into a linearised
// specification whose process part is a single LPE.
func Linearise(c *Context, spec *aterm.Term) (*aterm.Term, error) {
	m := c.M
	initProc, err := c.ingest(spec)
	if err != nil {
		return nil, err
	}
	if err := c.initializeSymbols(); err != nil {
		return nil, err
	}
	p, err := c.transform(initProc)
	if err != nil {
		return nil, err
	}
	// The summand list is reversed exactly once so summands appear in
	// input order when the input already was an LPE.
	lpe := m.LPE(
		c.sieveProcDataVarsSummands(p.sums),
		p.pars,
		c.Store.Reverse(p.sums))
	lpeInit := m.LPEInit(c.sieveProcDataVarsAssignments(p.init), p.init)
	return m.Spec(
		m.SortSpec(c.Store.List(c.spec.sorts...)),
		m.ConsSpec(c.Store.List(c.spec.constructors...)),
		m.MapSpec(c.Store.List(c.spec.maps...)),
		m.DataEqnSpec(c.Store.List(c.spec.eqns...)),
		m.ActSpec(c.Store.List(c.spec.acts...)),
		lpe,
		lpeInit), nil
}
