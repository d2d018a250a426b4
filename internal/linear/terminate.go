package linear

import (
	"mcrl2/internal/aterm"
)

// Termination analysis: a process can terminate iff some branch of its
// body reaches a successful end. Choice and conditional are disjunctive,
// sequence and synchronisation conjunctive, sum passes through, actions
// and tau succeed, delta does not. The relation is computed as a fixpoint
// over the process descriptors.

// canTerminateBody evaluates the seed relation on a body. When visited is
// non-nil, process references are followed recursively and descriptor
// flags are updated; the stable flag is cleared whenever a flag changes.
func (c *Context) canTerminateBody(t *aterm.Term, stable *bool, visited *aterm.IndexedSet) bool {
	m := c.M
	switch {
	case m.IsMerge(t), m.IsSeq(t), m.IsSync(t):
		r1 := c.canTerminateBody(t.Arg(0), stable, visited)
		r2 := c.canTerminateBody(t.Arg(1), stable, visited)
		return r1 && r2
	case m.IsProcess(t):
		if visited != nil {
			return c.canTerminateRec(t.Arg(0), stable, visited)
		}
		return c.object(t.Arg(0)).canTerminate
	case m.IsHide(t), m.IsRename(t), m.IsAllow(t), m.IsBlock(t), m.IsComm(t):
		return c.canTerminateBody(t.Arg(1), stable, visited)
	case m.IsChoice(t):
		r1 := c.canTerminateBody(t.Arg(0), stable, visited)
		r2 := c.canTerminateBody(t.Arg(1), stable, visited)
		return r1 || r2
	case m.IsCond(t):
		r1 := c.canTerminateBody(t.Arg(1), stable, visited)
		r2 := c.canTerminateBody(t.Arg(2), stable, visited)
		return r1 || r2
	case m.IsSum(t):
		return c.canTerminateBody(t.Arg(1), stable, visited)
	case m.IsAction(t), m.IsMultAct(t), m.IsTau(t):
		return true
	case m.IsDelta(t):
		return false
	case m.IsAtTime(t):
		return c.canTerminateBody(t.Arg(0), stable, visited)
	}
	c.internalf(t, "unexpected process format in termination analysis")
	return false
}

func (c *Context) canTerminateRec(procId *aterm.Term, stable *bool, visited *aterm.IndexedSet) bool {
	o := c.object(procId)
	if _, isNew := visited.Put(procId); isNew {
		ct := c.canTerminateBody(o.body, stable, visited)
		if o.canTerminate != ct {
			o.canTerminate = ct
			if stable != nil {
				*stable = false
			}
		}
	}
	return o.canTerminate
}

// determineTermination iterates the propagation to a fixpoint.
func (c *Context) determineTermination(initProc *aterm.Term) {
	for stable := false; !stable; {
		stable = true
		visited := aterm.NewIndexedSet(c.Store)
		c.canTerminateRec(initProc, &stable, visited)
		visited.Destroy()
	}
}
