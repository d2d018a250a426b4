package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
)

// ingest stores the declarations of the input specification term into the
// descriptor table and the output sections, installs the data equations in
// the rewriter, and registers the initial process under the reserved name
// "init" (which cannot occur as an identifier in the input).
func (c *Context) ingest(spec *aterm.Term) (*aterm.Term, error) {
	m := c.M
	if !m.IsSpec(spec) {
		return nil, c.fatalf(diag.ErrorBadInput, spec, "input is not a specification term")
	}

	// Builtin sorts exist before anything from the input is seen.
	for _, s := range []*aterm.Term{m.SortBool, m.SortPos, m.SortNat, m.SortInt, m.SortReal} {
		c.insertSort(s)
	}
	for _, op := range []*aterm.Term{m.True(), m.False()} {
		c.insertConstructor(op)
	}

	for _, sort := range aterm.Slice(spec.Arg(0).Arg(0)) {
		if c.existsSort(sort) {
			return nil, c.fatalf(diag.ErrorDoubleDecl, sort, "sort %s is declared twice", diag.Summarize(sort))
		}
		c.insertSort(sort)
	}
	for _, cons := range aterm.Slice(spec.Arg(1).Arg(0)) {
		if !c.existsSort(m.OpIdSort(cons)) {
			return nil, c.fatalf(diag.ErrorUndeclared, cons,
				"constructor %s has an undeclared sort", aterm.Name(cons.Arg(0)))
		}
		c.insertConstructor(cons)
	}
	for _, mp := range aterm.Slice(spec.Arg(2).Arg(0)) {
		if !c.existsSort(m.OpIdSort(mp)) {
			return nil, c.fatalf(diag.ErrorUndeclared, mp,
				"mapping %s has an undeclared sort", aterm.Name(mp.Arg(0)))
		}
		c.insertMapping(mp)
	}
	for _, eqn := range aterm.Slice(spec.Arg(3).Arg(0)) {
		c.declareEquationVariables(eqn.Arg(0))
		var cond *aterm.Term
		if !m.IsNil(eqn.Arg(1)) {
			cond = eqn.Arg(1)
		}
		c.newEquation(cond, eqn.Arg(2), eqn.Arg(3))
		c.endEquationSection()
	}
	for _, act := range aterm.Slice(spec.Arg(4).Arg(0)) {
		if err := c.insertAction(act); err != nil {
			return nil, err
		}
		c.spec.acts = append(c.spec.acts, act)
	}
	for _, pe := range aterm.Slice(spec.Arg(5).Arg(0)) {
		if !m.IsProcEqn(pe) {
			return nil, c.fatalf(diag.ErrorBadInput, pe, "expected a process equation")
		}
		if _, err := c.insertProcDeclaration(pe.Arg(0), pe.Arg(1), pe.Arg(2), statusUnknown, false); err != nil {
			return nil, err
		}
	}

	init := spec.Arg(6)
	c.spec.initDataVars = init.Arg(0)
	initProc := m.ProcVarId(m.Str("init"), c.Store.Empty())
	if _, err := c.insertProcDeclaration(initProc, c.Store.Empty(), init.Arg(1), statusUnknown, false); err != nil {
		return nil, err
	}
	c.spec.init = initProc
	return initProc, nil
}

// initializeSymbols declares the distinguished termination machinery.
// It runs after ingest so the fresh Terminate name cannot clash with a
// declared action.
func (c *Context) initializeSymbols() error {
	m := c.M
	termActId := m.ActId(c.Ap.Fresh.FreshName("Terminate"), c.Store.Empty())
	c.terminationAction = m.MultAct(c.Store.List(m.Action(termActId, c.Store.Empty())))
	c.terminatedProcId = m.ProcVarId(m.Str("Terminated**"), c.Store.Empty())
	_, err := c.insertProcDeclaration(
		c.terminatedProcId,
		c.Store.Empty(),
		m.Seq(c.terminationAction, m.Delta()),
		statusPCRL,
		false)
	return err
}
