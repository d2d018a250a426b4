package linear

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
)

// Control-state encoding. In regular modes a single state variable
// carries the process index; in stack mode a generated Stack datatype
// holds the continuation frames: push takes the state and one value per
// aggregated parameter, and pop/getstate/getN/isempty recover them.

type stackOps struct {
	stackSort  *aterm.Term
	sorts      *aterm.Term
	get        []*aterm.Term
	push       *aterm.Term
	emptyStack *aterm.Term
	isEmpty    *aterm.Term
	pop        *aterm.Term
	getState   *aterm.Term
}

type stackType struct {
	opns             *stackOps
	parameterList    *aterm.Term
	stackVar         *aterm.Term
	noOfStates       int
	booleanStateVars []*aterm.Term
	next             *stackType
}

func (c *Context) matchParameterSorts(p1, p2 *aterm.Term) bool {
	for !p1.IsEmpty() && !p2.IsEmpty() {
		if c.M.VarSort(aterm.Head(p1)) != c.M.VarSort(aterm.Head(p2)) {
			return false
		}
		p1, p2 = aterm.Tail(p1), aterm.Tail(p2)
	}
	return p1.IsEmpty() && p2.IsEmpty()
}

func (c *Context) findStackOps(parameters *aterm.Term) *stackOps {
	for s := c.stacks; s != nil; s = s.next {
		if c.matchParameterSorts(parameters, s.parameterList) {
			return s.opns
		}
	}
	return nil
}

// upperPowerOf2 returns the number of bits needed for i states.
func upperPowerOf2(i int) int {
	n := 0
	for v := 1; v < i; v <<= 1 {
		n++
	}
	return n
}

// newStack builds the state bookkeeping for one aggregated pCRL process:
// the state variable (regular modes) or the full stack datatype with its
// laws (stack mode).
func (c *Context) newStack(parameterList *aterm.Term, pCRLprocs []*aterm.Term) *stackType {
	m := c.M
	stateName := "s3"
	if c.Config.StateNames && len(pCRLprocs) > 0 {
		stateName = aterm.Name(pCRLprocs[len(pCRLprocs)-1].Arg(0))
	}
	st := &stackType{
		parameterList: parameterList,
		noOfStates:    len(pCRLprocs),
		next:          c.stacks,
	}
	if c.Config.Binary && c.Config.NewState {
		for i := upperPowerOf2(st.noOfStates); i > 0; i-- {
			st.booleanStateVars = append(st.booleanStateVars,
				c.Ap.Fresh.FreshVar("bst", m.SortBool))
		}
	}

	if c.Config.regular() {
		if c.Config.NewState && !c.Config.Binary {
			e := c.createEnumeratedType(st.noOfStates)
			st.stackVar = c.Ap.Fresh.FreshVar(stateName, e.sortId)
		} else {
			st.stackVar = c.Ap.Fresh.FreshVar(stateName, m.SortPos)
		}
		return st
	}

	// Stack mode: reuse a compatible stack datatype when one exists.
	if opns := c.findStackOps(parameterList); opns != nil {
		st.opns = opns
		st.stackVar = c.Ap.Fresh.FreshVar(stateName, opns.stackSort)
		c.stacks = st
		return st
	}

	opns := &stackOps{}
	st.opns = opns
	opns.stackSort = m.SortIdFromTerm(c.Ap.Fresh.FreshName("Stack"))
	c.insertSort(opns.stackSort)
	st.stackVar = c.Ap.Fresh.FreshVar(stateName, opns.stackSort)
	c.stacks = st

	opns.sorts = c.Store.Empty()
	for _, par := range aterm.Slice(parameterList) {
		sort := m.VarSort(par)
		opns.sorts = c.Store.Append(opns.sorts, sort)
		getMap := m.OpId(
			c.Ap.Fresh.FreshName("get"+aterm.Name(m.VarName(par))),
			m.SortArrow(c.Store.List(opns.stackSort), sort))
		c.insertMapping(getMap)
		opns.get = append(opns.get, getMap)
	}

	pushDomain := c.Store.List(m.SortPos)
	pushDomain = c.Store.Concat(pushDomain, opns.sorts)
	pushDomain = c.Store.Append(pushDomain, opns.stackSort)
	opns.getState = m.OpId(c.Ap.Fresh.FreshName("getstate"),
		m.SortArrow(c.Store.List(opns.stackSort), m.SortPos))
	c.insertMapping(opns.getState)
	opns.push = m.OpId(c.Ap.Fresh.FreshName("push"),
		m.SortArrow(pushDomain, opns.stackSort))
	c.insertConstructor(opns.push)
	opns.emptyStack = m.OpId(c.Ap.Fresh.FreshName("emptystack"), opns.stackSort)
	c.insertConstructor(opns.emptyStack)
	opns.isEmpty = m.OpId(c.Ap.Fresh.FreshName("isempty"),
		m.SortArrow(c.Store.List(opns.stackSort), m.SortBool))
	c.insertMapping(opns.isEmpty)
	opns.pop = m.OpId(c.Ap.Fresh.FreshName("pop"),
		m.SortArrow(c.Store.List(opns.stackSort), opns.stackSort))
	c.insertMapping(opns.pop)

	// Laws: the empty stack is empty, a push is not, pop and the
	// projections undo a push.
	stateVar := c.Ap.Fresh.FreshVar("svr", m.SortPos)
	argVars := []*aterm.Term{stateVar}
	for _, sort := range aterm.Slice(opns.sorts) {
		prefix := "v"
		if m.IsSortId(sort) {
			prefix = aterm.Name(sort.Arg(0))
		}
		argVars = append(argVars, c.Ap.Fresh.FreshVar(prefix, sort))
	}
	argVars = append(argVars, st.stackVar)
	pushTerm := m.Apply(opns.push, argVars...)

	c.declareEquationVariables(c.Store.List(argVars...))
	c.newEquation(nil, m.Apply(opns.isEmpty, opns.emptyStack), m.True())
	c.newEquation(nil, m.Apply(opns.isEmpty, pushTerm), m.False())
	c.newEquation(nil, m.Apply(opns.pop, pushTerm), st.stackVar)
	c.newEquation(nil, m.Apply(opns.getState, pushTerm), stateVar)
	for i, getMap := range opns.get {
		c.newEquation(nil, m.Apply(getMap, pushTerm), argVars[i+1])
	}
	c.endEquationSection()
	return st
}

// stateIndex gives the 1-based index of procId among the pCRL processes.
func stateIndex(procId *aterm.Term, pCRLprocs []*aterm.Term) int {
	for i, p := range pCRLprocs {
		if p == procId {
			return i + 1
		}
	}
	return -1
}

// processEncoding prepends the encoding of state i to the value list t.
func (c *Context) processEncoding(i int, t *aterm.Term, st *stackType) *aterm.Term {
	m := c.M
	if !c.Config.NewState && !c.Config.Binary {
		pos, err := m.PosExpr(int64(i))
		if err != nil {
			c.internalf(nil, "state index out of range: %v", err)
		}
		return c.Store.Cons(pos, t)
	}
	i = i - 1 // count from 0 below
	if !c.Config.Binary {
		e := c.createEnumeratedType(st.noOfStates)
		return c.Store.Cons(e.elementNames[i], t)
	}
	// binary encoding, least significant bit first
	var bits []*aterm.Term
	for k := upperPowerOf2(st.noOfStates); k > 0; k-- {
		if i%2 == 0 {
			bits = append(bits, m.False())
			i = i / 2
		} else {
			bits = append(bits, m.True())
			i = (i - 1) / 2
		}
	}
	for j := len(bits) - 1; j >= 0; j-- {
		t = c.Store.Cons(bits[j], t)
	}
	return t
}

// stateCondition builds the guard selecting state i of procId.
func (c *Context) stateCondition(procId *aterm.Term, pCRLprocs []*aterm.Term, st *stackType) *aterm.Term {
	m := c.M
	i := stateIndex(procId, pCRLprocs)
	if i < 0 {
		c.internalf(procId, "process is not among the collected pCRL processes")
	}
	if !c.Config.Binary {
		stateValue := aterm.Head(c.processEncoding(i, c.Store.Empty(), st))
		if c.Config.regular() {
			return m.Eq(st.stackVar, stateValue)
		}
		return m.Eq(m.Apply(st.opns.getState, st.stackVar), stateValue)
	}
	// encode the index over the boolean state variables
	var cond *aterm.Term
	i = i - 1
	for _, bv := range st.booleanStateVars {
		var clause *aterm.Term
		if i%2 == 0 {
			clause = m.Not(bv)
			i = i / 2
		} else {
			clause = bv
			i = (i - 1) / 2
		}
		if cond == nil {
			cond = clause
		} else {
			cond = m.And(clause, cond)
		}
	}
	return cond
}

// getVar maps an aggregated parameter to its projection from the stack.
func (c *Context) getVar(v *aterm.Term, st *stackType) *aterm.Term {
	for _, fv := range c.spec.procDataVars {
		if fv == v {
			return v
		}
	}
	i := 0
	for _, par := range aterm.Slice(st.parameterList) {
		if par == v {
			return c.M.Apply(st.opns.get[i], st.stackVar)
		}
		i++
	}
	c.internalf(v, "variable has no stack projection")
	return v
}

// adaptTermToStack replaces parameters by stack projections, leaving the
// local sum variables untouched.
func (c *Context) adaptTermToStack(t *aterm.Term, st *stackType, vars *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsOpId(t), m.IsNumber(t):
		return t
	case m.IsDataVarId(t):
		if aterm.Member(vars, t) {
			return t
		}
		return c.getVar(t, st)
	case m.IsDataAppl(t):
		args := aterm.Slice(t.Arg(1))
		for i, a := range args {
			args[i] = c.adaptTermToStack(a, st, vars)
		}
		return m.DataAppl(c.adaptTermToStack(t.Arg(0), st, vars), c.Store.List(args...))
	}
	c.internalf(t, "expected a data expression while adapting to the stack")
	return nil
}

func (c *Context) adaptTermListToStack(l *aterm.Term, st *stackType, vars *aterm.Term) *aterm.Term {
	elems := aterm.Slice(l)
	for i, e := range elems {
		elems[i] = c.adaptTermToStack(e, st, vars)
	}
	return c.Store.List(elems...)
}

func (c *Context) adaptMultiActionToStack(ma *aterm.Term, st *stackType, vars *aterm.Term) *aterm.Term {
	m := c.M
	if m.IsDelta(ma) {
		return ma
	}
	actions := aterm.Slice(ma.Arg(0))
	for i, act := range actions {
		actions[i] = m.Action(m.ActionActId(act),
			c.adaptTermListToStack(m.ActionArgs(act), st, vars))
	}
	return m.MultAct(c.Store.List(actions...))
}

// findValue produces the value of aggregated parameter s for an
// invocation with formal pars and actual args; parameters the invoked
// process does not use get a don't-care term.
func (c *Context) findValue(s *aterm.Term, pars, args *aterm.Term, st *stackType, vars *aterm.Term) *aterm.Term {
	var result *aterm.Term
	if n := aterm.IndexOf(pars, s, 0); n >= 0 {
		result = aterm.At(args, n)
	} else {
		result = c.dummyTerm(c.M.VarSort(s))
	}
	if c.Config.regular() {
		return result
	}
	return c.adaptTermToStack(result, st, vars)
}

// findArguments evaluates every aggregated parameter for an invocation,
// with tail appended behind the produced values.
func (c *Context) findArguments(pars, parList, args, tail *aterm.Term, st *stackType, vars *aterm.Term) *aterm.Term {
	out := tail
	elems := aterm.Slice(parList)
	for i := len(elems) - 1; i >= 0; i-- {
		out = c.Store.Cons(c.findValue(elems[i], pars, args, st, vars), out)
	}
	return out
}

// pushInvocation encodes the invocation of procId with args: the state
// value plus parameter values (regular), or a push application (stack).
func (c *Context) pushInvocation(procId, args, tail *aterm.Term, st *stackType, pCRLprocs []*aterm.Term, vars *aterm.Term, singleState bool) *aterm.Term {
	t := c.findArguments(c.object(procId).parameters, st.parameterList, args, tail, st, vars)
	i := stateIndex(procId, pCRLprocs)
	if c.Config.regular() {
		if singleState {
			return t
		}
		return c.processEncoding(i, t, st)
	}
	return c.Store.List(c.M.Apply(st.opns.push,
		aterm.Slice(c.processEncoding(i, t, st))...))
}

// makeProcArgs compiles the continuation of a summand: a next-state value
// list (regular) or a single stack value (stack mode).
func (c *Context) makeProcArgs(t *aterm.Term, st *stackType, pCRLprocs []*aterm.Term, vars *aterm.Term, singleState bool) (*aterm.Term, error) {
	m := c.M
	if m.IsSeq(t) {
		if c.Config.regular() {
			return nil, c.fatalf(diag.ErrorNotRegular, t, "process is not regular, as it has stacking variables")
		}
		process := t.Arg(0)
		procId := process.Arg(0)
		args := process.Arg(1)
		if c.object(procId).canTerminate {
			t3, err := c.makeProcArgs(t.Arg(1), st, pCRLprocs, vars, singleState)
			if err != nil {
				return nil, err
			}
			return c.Store.List(aterm.Head(
				c.pushInvocation(procId, args, t3, st, pCRLprocs, vars, singleState))), nil
		}
		t3 := c.pushInvocation(procId, args, c.Store.List(st.opns.emptyStack), st, pCRLprocs, vars, singleState)
		return c.Store.List(aterm.Head(t3)), nil
	}
	if m.IsProcess(t) {
		procId := t.Arg(0)
		args := t.Arg(1)
		if c.Config.regular() {
			return c.pushInvocation(procId, args, c.Store.Empty(), st, pCRLprocs, vars, singleState), nil
		}
		var tail *aterm.Term
		if c.object(procId).canTerminate {
			tail = c.Store.List(m.Apply(st.opns.pop, st.stackVar))
		} else {
			tail = c.Store.List(st.opns.emptyStack)
		}
		t3 := c.pushInvocation(procId, args, tail, st, pCRLprocs, vars, singleState)
		return c.Store.List(aterm.Head(t3)), nil
	}
	return nil, c.fatalf(diag.ErrorNotRegular, t, "expected a sequence or a process name")
}

// occursByName reports whether a variable with the same name occurs in
// pars, regardless of its sort.
func (c *Context) occursByName(name *aterm.Term, pars *aterm.Term) bool {
	n := c.M.VarName(name)
	for _, p := range aterm.Slice(pars) {
		if c.M.VarName(p) == n {
			return true
		}
	}
	return false
}

// pushDummy fills the aggregated parameter list for the initial state:
// parameters of the initial process keep their variables, all others get
// a don't-care value.
func (c *Context) pushDummy(parameters *aterm.Term, st *stackType) *aterm.Term {
	out := c.Store.Empty()
	elems := aterm.Slice(st.parameterList)
	for i := len(elems) - 1; i >= 0; i-- {
		par := elems[i]
		var val *aterm.Term
		if c.occursByName(par, parameters) {
			val = par
		} else {
			val = c.dummyTerm(c.M.VarSort(par))
		}
		out = c.Store.Cons(val, out)
	}
	if !c.Config.regular() {
		out = c.Store.Append(out, st.opns.emptyStack)
	}
	return out
}

// makeInitialState encodes the initial process invocation.
func (c *Context) makeInitialState(initialProcId *aterm.Term, st *stackType, pCRLprocs []*aterm.Term, singleState bool) *aterm.Term {
	i := stateIndex(initialProcId, pCRLprocs)
	t := c.pushDummy(c.object(initialProcId).parameters, st)
	if c.Config.regular() {
		if singleState {
			return t
		}
		return c.processEncoding(i, t, st)
	}
	return c.Store.List(c.M.Apply(st.opns.push,
		aterm.Slice(c.processEncoding(i, t, st))...))
}

// dummyParameterList is the next-state list of a regular termination
// summand: every parameter keeps its current value.
func (c *Context) dummyParameterList(st *stackType, singleState bool) *aterm.Term {
	out := c.Store.Empty()
	if !singleState {
		out = c.Store.Cons(st.stackVar, out)
	}
	return c.Store.Concat(out, st.parameterList)
}
