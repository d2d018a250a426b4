package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
)

// Classification decides for every process whether it is a pCRL process
// (pure sequential fragment), an mCRL process (parallel composition and
// its derivative operators at the top) or a multi-action, and rejects
// operators that occur in an illegal nesting.

// determineProcessStatus walks the process graph from the initial process,
// expecting the mCRL status there, and returns the pCRL processes found.
func (c *Context) determineProcessStatus(initProc *aterm.Term) ([]*aterm.Term, error) {
	var pcrl []*aterm.Term
	if err := c.statusRec(initProc, statusMCRL, &pcrl); err != nil {
		return nil, err
	}
	return pcrl, nil
}

func (c *Context) statusRec(procId *aterm.Term, status procStatus, pcrl *[]*aterm.Term) error {
	o := c.object(procId)
	if o == nil {
		return c.fatalf(diag.ErrorUndeclared, procId, "process %s is not declared",
			aterm.Name(procId.Arg(0)))
	}
	appendPcrl := func() {
		for _, p := range *pcrl {
			if p == procId {
				return
			}
		}
		*pcrl = append(*pcrl, procId)
	}
	if o.status == statusUnknown {
		o.status = status
		if status == statusPCRL {
			appendPcrl()
			_, err := c.statusTerm(o.body, statusPCRL, pcrl)
			return err
		}
		s, err := c.statusTerm(o.body, statusMCRL, pcrl)
		if err != nil {
			return err
		}
		if s != status {
			o.status = s
			appendPcrl()
			_, err = c.statusTerm(o.body, statusPCRL, pcrl)
			return err
		}
		return nil
	}
	if o.status == statusMCRL && status == statusPCRL {
		o.status = statusPCRL
		appendPcrl()
		_, err := c.statusTerm(o.body, statusPCRL, pcrl)
		return err
	}
	return nil
}

// statusTerm classifies one body, checking the nesting discipline: mCRL
// operators may not occur under pCRL operators, pCRL operators may not
// occur inside multi-actions, and Sync joins multi-actions only.
func (c *Context) statusTerm(body *aterm.Term, status procStatus, pcrl *[]*aterm.Term) (procStatus, error) {
	m := c.M
	switch {
	case m.IsChoice(body), m.IsSeq(body):
		opname := "choice"
		if m.IsSeq(body) {
			opname = "sequential"
		}
		if status == statusMultiAction {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"%s operator occurs in a multi-action", opname)
		}
		s1, err := c.statusTerm(body.Arg(0), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		s2, err := c.statusTerm(body.Arg(1), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		if s1 == statusMCRL || s2 == statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"mCRL operators occur within the scope of a %s operator", opname)
		}
		return statusPCRL, nil

	case m.IsMerge(body):
		if status != statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"the parallel operator occurs in the scope of pCRL operators")
		}
		if _, err := c.statusTerm(body.Arg(0), statusMCRL, pcrl); err != nil {
			return 0, err
		}
		if _, err := c.statusTerm(body.Arg(1), statusMCRL, pcrl); err != nil {
			return 0, err
		}
		return statusMCRL, nil

	case m.IsLMerge(body):
		return 0, c.fatalf(diag.ErrorLeftMerge, body,
			"cannot linearise a specification containing a left merge")

	case m.IsBInit(body):
		return 0, c.fatalf(diag.ErrorBoundedInit, body,
			"cannot linearise a specification with the bounded initialisation operator")

	case m.IsCond(body):
		if status == statusMultiAction {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"if-then-else occurs in a multi-action")
		}
		s1, err := c.statusTerm(body.Arg(1), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		s2, err := c.statusTerm(body.Arg(2), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		if s1 == statusMCRL || s2 == statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"mCRL operators occur in the scope of the if-then-else operator")
		}
		return statusPCRL, nil

	case m.IsSum(body):
		if status == statusMultiAction {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"sum operator occurs within a multi-action")
		}
		s1, err := c.statusTerm(body.Arg(1), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		if s1 == statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"mCRL operators occur in the scope of the sum operator")
		}
		return statusPCRL, nil

	case m.IsComm(body), m.IsHide(body), m.IsRename(body), m.IsAllow(body), m.IsBlock(body):
		if status != statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"an mCRL operator occurs in the scope of pCRL operators")
		}
		if _, err := c.statusTerm(body.Arg(1), statusMCRL, pcrl); err != nil {
			return 0, err
		}
		return statusMCRL, nil

	case m.IsAtTime(body):
		c.timeUsed = true
		if status == statusMultiAction {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"a time operator occurs in a multi-action")
		}
		s1, err := c.statusTerm(body.Arg(0), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		if s1 == statusMCRL {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"an mCRL operator occurs in the scope of a time operator")
		}
		return statusPCRL, nil

	case m.IsSync(body):
		s1, err := c.statusTerm(body.Arg(0), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		s2, err := c.statusTerm(body.Arg(1), statusPCRL, pcrl)
		if err != nil {
			return 0, err
		}
		if s1 != statusMultiAction || s2 != statusMultiAction {
			return 0, c.fatalf(diag.ErrorBadNesting, body,
				"objects other than multi-actions occur in the scope of a synchronisation operator")
		}
		return statusMultiAction, nil

	case m.IsAction(body):
		actId := m.ActionActId(body)
		if c.object(actId) == nil {
			return 0, c.fatalf(diag.ErrorUndeclared, body, "action %s is not declared",
				aterm.Name(m.ActIdName(actId)))
		}
		return statusMultiAction, nil

	case m.IsProcess(body):
		if err := c.statusRec(body.Arg(0), status, pcrl); err != nil {
			return 0, err
		}
		return status, nil

	case m.IsDelta(body):
		return statusPCRL, nil

	case m.IsTau(body):
		return statusMultiAction, nil
	}
	return 0, c.fatalf(diag.ErrorBadInput, body, "process has an unexpected format")
}

// collectPcrlProcesses gathers every pCRL process reachable from the
// initial process after splitting.
func (c *Context) collectPcrlProcesses(initProc *aterm.Term) []*aterm.Term {
	visited := aterm.NewIndexedSet(c.Store)
	defer visited.Destroy()
	var out []*aterm.Term
	c.collectPcrlRec(initProc, visited, &out)
	return out
}

func (c *Context) collectPcrlRec(procId *aterm.Term, visited *aterm.IndexedSet, out *[]*aterm.Term) {
	if _, isNew := visited.Put(procId); !isNew {
		return
	}
	o := c.object(procId)
	if o.status == statusPCRL || o.status == statusMultiAction {
		*out = append(*out, procId)
	}
	c.collectPcrlTerm(o.body, visited, out)
}

func (c *Context) collectPcrlTerm(body *aterm.Term, visited *aterm.IndexedSet, out *[]*aterm.Term) {
	m := c.M
	switch {
	case m.IsChoice(body), m.IsSeq(body), m.IsMerge(body), m.IsSync(body):
		c.collectPcrlTerm(body.Arg(0), visited, out)
		c.collectPcrlTerm(body.Arg(1), visited, out)
	case m.IsCond(body):
		c.collectPcrlTerm(body.Arg(1), visited, out)
		c.collectPcrlTerm(body.Arg(2), visited, out)
	case m.IsSum(body):
		c.collectPcrlTerm(body.Arg(1), visited, out)
	case m.IsAtTime(body):
		c.collectPcrlTerm(body.Arg(0), visited, out)
	case m.IsHide(body), m.IsRename(body), m.IsAllow(body), m.IsBlock(body), m.IsComm(body):
		c.collectPcrlTerm(body.Arg(1), visited, out)
	case m.IsProcess(body):
		c.collectPcrlRec(body.Arg(0), visited, out)
	}
}
