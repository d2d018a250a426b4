// Package linear implements the staged transformation of an mCRL2
// specification into a linear process equation: classification of the
// process graph, termination analysis, Greibach normal form, control-state
// encoding, parallel expansion and operator elimination, and the final
// cleanup passes.
package linear

import (
	"fmt"

	"github.com/tliron/commonlog"

	"mcrl2/internal/aterm"
	"mcrl2/internal/diag"
	"mcrl2/internal/rewrite"
	"mcrl2/internal/subst"
	"mcrl2/internal/syntax"
)

// objectKind tags an entry in the descriptor table.
type objectKind int

const (
	objNone objectKind = iota
	objMap
	objFunc
	objAct
	objProc
	objVariable
	objSort
	objMultiAct
)

// procStatus is the processing state of a process descriptor.
type procStatus int

const (
	statusUnknown procStatus = iota
	statusMCRL
	statusMCRLDone
	statusMCRLBusy
	statusMCRLLin
	statusPCRL
	statusMultiAction
	statusGNF
	statusGNFAlpha
	statusGNFBusy
)

// object is one descriptor-table entry: the canonical name term, its kind,
// parameters, body and processing bookkeeping. Entries are appended
// monotonically while a specification is linearised.
type object struct {
	name        *aterm.Term
	kind        objectKind
	constructor bool
	parameters  *aterm.Term // list of DataVarId
	body        *aterm.Term
	status      procStatus
	canTerminate bool

	// targetProc is the synthesised process representing a multi-action.
	targetProc *aterm.Term
	// representedProcess(es) track which GNF sequence a generated
	// process stands for (regular / regular2 interning).
	representedProcess   *aterm.Term
	representedProcesses *aterm.Term
}

// specSections accumulates the declaration sections of the output
// specification.
type specSections struct {
	sorts        []*aterm.Term
	constructors []*aterm.Term
	maps         []*aterm.Term
	eqns         []*aterm.Term
	acts         []*aterm.Term
	procDataVars []*aterm.Term
	initDataVars *aterm.Term
	init         *aterm.Term
}

// Context is the linearisation state: the term store and syntax maker,
// the descriptor table, the enumerated-type and stack-type catalogues,
// the fresh-name pool and the rewriter. One Context serves one
// specification; none of its tables shrink before it is discarded.
type Context struct {
	Store  *aterm.Store
	M      *syntax.Maker
	Ap     *subst.Applier
	Rw     *rewrite.Rewriter
	Report *diag.Reporter
	Config Config

	log commonlog.Logger

	objects     map[*aterm.Term]*object
	objectOrder []*aterm.Term
	spec        specSections

	enumTypes *enumType
	stacks    *stackType

	eqnVars *aterm.Term // open equation section, nil when closed

	timeUsed bool

	terminationAction *aterm.Term // MultAct([Action(Terminate,[])])
	terminatedProcId  *aterm.Term
	tauProcId         *aterm.Term
	deltaProcId       *aterm.Term

	seqVarNames []*aterm.Term // generated processes standing for sequences
}

// NewContext creates a linearisation context over a fresh maker.
func NewContext(store *aterm.Store, cfg Config) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := syntax.NewMaker(store)
	rw, err := rewrite.New(m, cfg.Rewriter, nil)
	if err != nil {
		return nil, err
	}
	return &Context{
		Store:   store,
		M:       m,
		Ap:      subst.NewApplier(m),
		Rw:      rw,
		Report:  diag.NewReporter(),
		Config:  cfg,
		log:     commonlog.GetLogger("mcrl2.linear"),
		objects: make(map[*aterm.Term]*object),
	}, nil
}

// fatalf records a fatal diagnostic and returns it as an error, aborting
// the current pipeline stage.
func (c *Context) fatalf(code string, subject *aterm.Term, format string, args ...any) error {
	c.Report.Errorf(code, subject, format, args...)
	return fmt.Errorf(format, args...)
}

// internalf reports a data-consistency violation. These indicate an
// impossible state and abort the process.
func (c *Context) internalf(subject *aterm.Term, format string, args ...any) {
	c.Report.Errorf(diag.ErrorInternal, subject, format, args...)
	panic(fmt.Sprintf(format, args...))
}

// addObject appends a descriptor for name; double insertion is the
// caller's error to detect via lookup first.
func (c *Context) addObject(name *aterm.Term) *object {
	o := &object{name: name}
	c.objects[name] = o
	c.objectOrder = append(c.objectOrder, name)
	return o
}

func (c *Context) object(name *aterm.Term) *object { return c.objects[name] }

func (c *Context) insertSort(sort *aterm.Term) {
	if _, ok := c.objects[sort]; ok {
		return
	}
	o := c.addObject(sort)
	o.kind = objSort
	c.spec.sorts = append(c.spec.sorts, sort)
}

func (c *Context) existsSort(sort *aterm.Term) bool {
	if c.M.IsSortArrow(sort) {
		return c.existsSorts(c.M.ArrowDomain(sort)) && c.existsSort(c.M.ArrowCodomain(sort))
	}
	if c.M.IsSortList(sort) || c.M.IsSortSet(sort) || c.M.IsSortBag(sort) {
		return c.existsSort(sort.Arg(0))
	}
	_, ok := c.objects[sort]
	return ok
}

func (c *Context) existsSorts(l *aterm.Term) bool {
	for _, s := range aterm.Slice(l) {
		if !c.existsSort(s) {
			return false
		}
	}
	return true
}

func (c *Context) insertConstructor(op *aterm.Term) {
	if _, ok := c.objects[op]; ok {
		return
	}
	o := c.addObject(op)
	o.kind = objFunc
	o.constructor = true
	c.spec.constructors = append(c.spec.constructors, op)
}

func (c *Context) insertMapping(op *aterm.Term) {
	if _, ok := c.objects[op]; ok {
		return
	}
	o := c.addObject(op)
	o.kind = objMap
	c.spec.maps = append(c.spec.maps, op)
}

func (c *Context) insertAction(actId *aterm.Term) error {
	if _, ok := c.objects[actId]; ok {
		return c.fatalf(diag.ErrorDoubleDecl, actId, "action %s is declared twice",
			aterm.Name(c.M.ActIdName(actId)))
	}
	if !c.existsSorts(c.M.ActIdSorts(actId)) {
		return c.fatalf(diag.ErrorUndeclared, actId, "action %s refers to an undeclared sort",
			aterm.Name(c.M.ActIdName(actId)))
	}
	o := c.addObject(actId)
	o.kind = objAct
	return nil
}

// insertProcDeclaration registers a process descriptor.
func (c *Context) insertProcDeclaration(procId, parameters, body *aterm.Term, status procStatus, canTerminate bool) (*object, error) {
	if !c.M.IsProcVarId(procId) {
		c.internalf(procId, "expected a process declaration")
	}
	if _, ok := c.objects[procId]; ok {
		return nil, c.fatalf(diag.ErrorDoubleDecl, procId, "process %s is declared twice",
			aterm.Name(procId.Arg(0)))
	}
	if !c.existsSorts(procId.Arg(1)) {
		return nil, c.fatalf(diag.ErrorUndeclared, procId, "process %s refers to an undeclared sort",
			aterm.Name(procId.Arg(0)))
	}
	o := c.addObject(procId)
	o.kind = objProc
	o.parameters = parameters
	o.body = body
	o.status = status
	o.canTerminate = canTerminate
	return o, nil
}

// Equation sections: variables are declared once, equations added, and
// the section closed, mirroring how generated datatypes declare laws.

func (c *Context) declareEquationVariables(vars *aterm.Term) {
	if c.eqnVars != nil {
		c.internalf(vars, "equation section is still open")
	}
	c.eqnVars = vars
}

func (c *Context) newEquation(condition, lhs, rhs *aterm.Term) {
	if c.eqnVars == nil {
		c.internalf(lhs, "equation variables must be declared first")
	}
	cond := condition
	if cond == nil {
		cond = c.M.Nil()
	}
	eqn := c.M.DataEqn(c.eqnVars, cond, lhs, rhs)
	c.spec.eqns = append(c.spec.eqns, eqn)
	if !c.Config.NoRewrite {
		var cnd *aterm.Term
		if !c.M.IsNil(cond) {
			cnd = cond
		}
		if err := c.Rw.AddEquation(rewrite.Equation{
			Vars: aterm.Slice(c.eqnVars),
			Cond: cnd,
			LHS:  lhs,
			RHS:  rhs,
		}); err != nil {
			c.Report.Errorf(diag.ErrorBadInput, lhs, "equation cannot be used for rewriting: %v", err)
		}
	}
}

func (c *Context) endEquationSection() {
	if c.eqnVars == nil {
		c.internalf(nil, "closing an equation section that is not open")
	}
	c.eqnVars = nil
}

// rewriteTerm normalises a data expression unless rewriting is disabled.
func (c *Context) rewriteTerm(t *aterm.Term) *aterm.Term {
	if c.Config.NoRewrite {
		return t
	}
	return c.Rw.RewriteExpr(t)
}

// rewriteProc maps rewriteTerm over the data positions of a pCRL term.
func (c *Context) rewriteProc(p *aterm.Term) *aterm.Term {
	m := c.M
	switch {
	case m.IsCond(p):
		return m.Cond(c.rewriteTerm(p.Arg(0)), c.rewriteProc(p.Arg(1)), c.rewriteProc(p.Arg(2)))
	case m.IsChoice(p), m.IsSeq(p):
		return c.Store.MakeAppl(p.Function(), c.rewriteProc(p.Arg(0)), c.rewriteProc(p.Arg(1)))
	case m.IsSum(p):
		return m.Sum(p.Arg(0), c.rewriteProc(p.Arg(1)))
	case m.IsAtTime(p):
		return m.AtTime(c.rewriteProc(p.Arg(0)), c.rewriteTerm(p.Arg(1)))
	case m.IsProcess(p):
		return m.Process(p.Arg(0), c.rewriteTermList(p.Arg(1)))
	case m.IsAction(p):
		return m.Action(p.Arg(0), c.rewriteTermList(p.Arg(1)))
	case m.IsMultAct(p):
		acts := aterm.Slice(p.Arg(0))
		for i, a := range acts {
			acts[i] = m.Action(m.ActionActId(a), c.rewriteTermList(m.ActionArgs(a)))
		}
		return m.MultAct(c.Store.List(acts...))
	default:
		return p
	}
}

func (c *Context) rewriteTermList(l *aterm.Term) *aterm.Term {
	elems := aterm.Slice(l)
	for i, e := range elems {
		elems[i] = c.rewriteTerm(e)
	}
	return c.Store.List(elems...)
}

// dummyTerm yields a term of the requested sort for don't-care positions:
// a free variable when free variables are allowed, else a constant
// constructor, else a constant mapping, else a freshly declared constant.
func (c *Context) dummyTerm(sort *aterm.Term) *aterm.Term {
	if !c.Config.NoFreeVars {
		v := c.Ap.Fresh.FreshVar("freevar", sort)
		c.spec.procDataVars = append(c.spec.procDataVars, v)
		return v
	}
	for _, name := range c.objectOrder {
		o := c.objects[name]
		if o.kind == objFunc && c.M.OpIdSort(name) == sort {
			return name
		}
	}
	for _, name := range c.objectOrder {
		o := c.objects[name]
		if o.kind == objMap && c.M.OpIdSort(name) == sort {
			return name
		}
	}
	var base string
	if c.M.IsSortId(sort) {
		base = "dummy" + aterm.Name(sort.Arg(0))
	} else {
		base = "dummy"
	}
	dummy := c.M.OpId(c.Ap.Fresh.FreshName(base), sort)
	c.insertMapping(dummy)
	return dummy
}

// Enumerator returns a solution enumerator over the specification's
// constructors, for use by condition simplification and external
// checkers.
func (c *Context) Enumerator() *rewrite.Enumerator {
	return rewrite.NewEnumerator(c.Rw, c.Ap, c.constructorsOf)
}

// constructorsOf lists the constructor operations whose target sort is
// the given sort; the enumerator searches over these.
func (c *Context) constructorsOf(sort *aterm.Term) []*aterm.Term {
	var out []*aterm.Term
	for _, name := range c.objectOrder {
		o := c.objects[name]
		if o.kind == objFunc && o.constructor && c.M.TargetSort(c.M.OpIdSort(name)) == sort {
			out = append(out, name)
		}
	}
	return out
}
