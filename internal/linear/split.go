package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// Success-action wrapping. Every pCRL process that can terminate is
// rewritten into body . Terminated**, where Terminated** performs the
// distinguished Terminate action and deadlocks. pCRL fragments nested in
// an mCRL composition are lifted into fresh process identifiers whose
// parameters are the variables the fragment actually uses.

// parametersInBody filters parameters down to those occurring in body.
func (c *Context) parametersInBody(parameters, body *aterm.Term) *aterm.Term {
	out := c.Store.Empty()
	for _, v := range aterm.Slice(parameters) {
		if subst.OccursInProc(c.M, v, body, false) {
			out = c.Store.Append(out, v)
		}
	}
	return out
}

// newProcess declares a fresh process with the parameters that occur in
// body and returns its ProcVarId.
func (c *Context) newProcess(parameters, body *aterm.Term, status procStatus, canTerminate bool) *aterm.Term {
	pars := c.parametersInBody(parameters, body)
	procId := c.M.ProcVarId(c.Ap.Fresh.FreshName("P"), c.M.SortsOf(pars))
	if _, err := c.insertProcDeclaration(procId, pars, body, status, canTerminate); err != nil {
		c.internalf(procId, "fresh process clashes with a declaration: %v", err)
	}
	return procId
}

// splitProcesses rewrites the process graph from procId, wrapping
// terminating pCRL processes and splitting mCRL bodies.
func (c *Context) splitProcesses(procId *aterm.Term) *aterm.Term {
	visited := aterm.NewTable(c.Store)
	defer visited.Destroy()
	return c.splitProcess(procId, visited)
}

func (c *Context) splitProcess(procId *aterm.Term, visited *aterm.Table) *aterm.Term {
	if r := visited.Get(procId); r != nil {
		return r
	}
	o := c.object(procId)
	if o.status != statusMCRL && !o.canTerminate {
		return procId
	}
	newProcId := c.M.ProcVarId(c.Ap.Fresh.FreshName(aterm.Name(procId.Arg(0))), procId.Arg(1))
	if o.status == statusMCRL {
		visited.Put(procId, newProcId)
		if _, err := c.insertProcDeclaration(
			newProcId, o.parameters,
			c.splitBody(o.body, visited, o.parameters),
			statusMCRL, false); err != nil {
			c.internalf(newProcId, "split process clashes: %v", err)
		}
		return newProcId
	}
	// terminating pCRL process
	visited.Put(procId, newProcId)
	if _, err := c.insertProcDeclaration(
		newProcId, o.parameters,
		c.M.Seq(o.body, c.M.Process(c.terminatedProcId, c.Store.Empty())),
		statusPCRL,
		c.canTerminateBody(o.body, nil, nil)); err != nil {
		c.internalf(newProcId, "split process clashes: %v", err)
	}
	return newProcId
}

func (c *Context) splitBody(t *aterm.Term, visited *aterm.Table, parameters *aterm.Term) *aterm.Term {
	if r := visited.Get(t); r != nil {
		return r
	}
	m := c.M
	var result *aterm.Term
	switch {
	case m.IsMerge(t):
		result = m.Merge(
			c.splitBody(t.Arg(0), visited, parameters),
			c.splitBody(t.Arg(1), visited, parameters))
	case m.IsProcess(t):
		result = m.Process(c.splitProcess(t.Arg(0), visited), t.Arg(1))
	case m.IsHide(t), m.IsRename(t), m.IsAllow(t), m.IsBlock(t), m.IsComm(t):
		result = c.Store.MakeAppl(t.Function(), t.Arg(0),
			c.splitBody(t.Arg(1), visited, parameters))
	case m.IsChoice(t), m.IsSeq(t), m.IsCond(t), m.IsSum(t), m.IsAction(t),
		m.IsDelta(t), m.IsTau(t), m.IsAtTime(t), m.IsSync(t):
		body := t
		if c.canTerminateBody(t, nil, nil) {
			body = m.Seq(t, m.Process(c.terminatedProcId, c.Store.Empty()))
		}
		p := c.newProcess(parameters, body, statusPCRL, false)
		result = m.Process(p, c.object(p).parameters)
	default:
		c.internalf(t, "unexpected process format while splitting")
	}
	visited.Put(t, result)
	return result
}
