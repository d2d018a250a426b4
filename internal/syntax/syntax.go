package syntax

import (
	"mcrl2/internal/aterm"
)

// Maker provides typed constructors and recognisers for the mCRL2 abstract
// syntax on top of the shared term store. All reserved head symbols are
// interned once at construction, so recognisers reduce to a pointer compare
// on the head symbol.
type Maker struct {
	Store *aterm.Store

	symSortId     *aterm.Symbol
	symSortArrow  *aterm.Symbol
	symSortList   *aterm.Symbol
	symSortSet    *aterm.Symbol
	symSortBag    *aterm.Symbol
	symSortStruct *aterm.Symbol
	symStructCons *aterm.Symbol
	symUnknown    *aterm.Symbol

	symOpId      *aterm.Symbol
	symDataVarId *aterm.Symbol
	symDataAppl  *aterm.Symbol
	symNumber    *aterm.Symbol
	symForall    *aterm.Symbol
	symExists    *aterm.Symbol
	symLambda    *aterm.Symbol
	symWhr       *aterm.Symbol
	symWhrDecl   *aterm.Symbol
	symListEnum  *aterm.Symbol
	symSetEnum   *aterm.Symbol
	symBagEnum   *aterm.Symbol
	symSetComp   *aterm.Symbol
	symBagComp   *aterm.Symbol

	symActId  *aterm.Symbol
	symAction *aterm.Symbol

	symMultAct *aterm.Symbol
	symDelta   *aterm.Symbol
	symTau     *aterm.Symbol

	symProcVarId *aterm.Symbol
	symProcess   *aterm.Symbol
	symSeq       *aterm.Symbol
	symChoice    *aterm.Symbol
	symSum       *aterm.Symbol
	symCond      *aterm.Symbol
	symMerge     *aterm.Symbol
	symLMerge    *aterm.Symbol
	symSync      *aterm.Symbol
	symAtTime    *aterm.Symbol
	symAllow     *aterm.Symbol
	symBlock     *aterm.Symbol
	symHide      *aterm.Symbol
	symRename    *aterm.Symbol
	symRenaming  *aterm.Symbol
	symComm      *aterm.Symbol
	symCommExpr  *aterm.Symbol
	symMActName  *aterm.Symbol
	symBInit     *aterm.Symbol

	symSummand    *aterm.Symbol
	symAssignment *aterm.Symbol
	symLPE        *aterm.Symbol
	symLPEInit    *aterm.Symbol

	symSpec        *aterm.Symbol
	symSortSpec    *aterm.Symbol
	symConsSpec    *aterm.Symbol
	symMapSpec     *aterm.Symbol
	symDataEqnSpec *aterm.Symbol
	symDataEqn     *aterm.Symbol
	symActSpec     *aterm.Symbol
	symProcEqnSpec *aterm.Symbol
	symProcEqn     *aterm.Symbol
	symInit        *aterm.Symbol

	symNil *aterm.Symbol
	nilT   *aterm.Term
	deltaT *aterm.Term
	tauT   *aterm.Term

	strings map[string]*aterm.Term

	*Builtins
}

// NewMaker interns the reserved symbols and the builtin registry.
func NewMaker(store *aterm.Store) *Maker {
	m := &Maker{Store: store, strings: make(map[string]*aterm.Term)}
	sym := func(name string, arity int) *aterm.Symbol {
		return store.MakeSymbol(name, arity, false)
	}
	m.symSortId = sym("SortId", 1)
	m.symSortArrow = sym("SortArrow", 2)
	m.symSortList = sym("SortList", 1)
	m.symSortSet = sym("SortSet", 1)
	m.symSortBag = sym("SortBag", 1)
	m.symSortStruct = sym("SortStruct", 1)
	m.symStructCons = sym("StructCons", 3)
	m.symUnknown = sym("SortUnknown", 0)

	m.symOpId = sym("OpId", 2)
	m.symDataVarId = sym("DataVarId", 2)
	m.symDataAppl = sym("DataAppl", 2)
	m.symNumber = sym("Number", 2)
	m.symForall = sym("Forall", 2)
	m.symExists = sym("Exists", 2)
	m.symLambda = sym("Lambda", 2)
	m.symWhr = sym("Whr", 2)
	m.symWhrDecl = sym("WhrDecl", 2)
	m.symListEnum = sym("ListEnum", 2)
	m.symSetEnum = sym("SetEnum", 2)
	m.symBagEnum = sym("BagEnum", 2)
	m.symSetComp = sym("SetComp", 2)
	m.symBagComp = sym("BagComp", 2)

	m.symActId = sym("ActId", 2)
	m.symAction = sym("Action", 2)
	m.symMultAct = sym("MultAct", 1)
	m.symDelta = sym("Delta", 0)
	m.symTau = sym("Tau", 0)

	m.symProcVarId = sym("ProcVarId", 2)
	m.symProcess = sym("Process", 2)
	m.symSeq = sym("Seq", 2)
	m.symChoice = sym("Choice", 2)
	m.symSum = sym("Sum", 2)
	m.symCond = sym("Cond", 3)
	m.symMerge = sym("Merge", 2)
	m.symLMerge = sym("LMerge", 2)
	m.symSync = sym("Sync", 2)
	m.symAtTime = sym("AtTime", 2)
	m.symAllow = sym("Allow", 2)
	m.symBlock = sym("Block", 2)
	m.symHide = sym("Hide", 2)
	m.symRename = sym("Rename", 2)
	m.symRenaming = sym("Renaming", 2)
	m.symComm = sym("Comm", 2)
	m.symCommExpr = sym("CommExpr", 2)
	m.symMActName = sym("MultActName", 1)
	m.symBInit = sym("BInit", 2)

	m.symSummand = sym("LPESummand", 5)
	m.symAssignment = sym("Assignment", 2)
	m.symLPE = sym("LPE", 3)
	m.symLPEInit = sym("LPEInit", 2)

	m.symSpec = sym("SpecV1", 7)
	m.symSortSpec = sym("SortSpec", 1)
	m.symConsSpec = sym("ConsSpec", 1)
	m.symMapSpec = sym("MapSpec", 1)
	m.symDataEqnSpec = sym("DataEqnSpec", 1)
	m.symDataEqn = sym("DataEqn", 4)
	m.symActSpec = sym("ActSpec", 1)
	m.symProcEqnSpec = sym("ProcEqnSpec", 1)
	m.symProcEqn = sym("ProcEqn", 3)
	m.symInit = sym("Init", 2)

	m.symNil = sym("Nil", 0)
	m.nilT = store.MakeAppl(m.symNil)
	m.deltaT = store.MakeAppl(m.symDelta)
	m.tauT = store.MakeAppl(m.symTau)

	m.Builtins = newBuiltins(m)
	return m
}

// Str interns a name as a quoted nullary application, the single string
// pool shared with fresh-name generation.
func (m *Maker) Str(name string) *aterm.Term {
	if t, ok := m.strings[name]; ok {
		return t
	}
	t := m.Store.MakeAppl(m.Store.MakeSymbol(name, 0, true))
	m.strings[name] = t
	return t
}

func is(t *aterm.Term, s *aterm.Symbol) bool {
	return t.Kind() == aterm.KindAppl && t.Function() == s
}

// Sort expressions.

func (m *Maker) SortId(name string) *aterm.Term {
	return m.Store.MakeAppl(m.symSortId, m.Str(name))
}
func (m *Maker) SortIdFromTerm(name *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortId, name)
}
func (m *Maker) SortArrow(domain, codomain *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortArrow, domain, codomain)
}
func (m *Maker) SortList(elem *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortList, elem)
}
func (m *Maker) SortSet(elem *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortSet, elem)
}
func (m *Maker) SortBag(elem *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortBag, elem)
}
func (m *Maker) SortStruct(constructors *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortStruct, constructors)
}
func (m *Maker) StructCons(name, argSorts, recogniser *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symStructCons, name, argSorts, recogniser)
}
func (m *Maker) SortUnknown() *aterm.Term { return m.Store.MakeAppl(m.symUnknown) }

func (m *Maker) IsSortId(t *aterm.Term) bool     { return is(t, m.symSortId) }
func (m *Maker) IsSortArrow(t *aterm.Term) bool  { return is(t, m.symSortArrow) }
func (m *Maker) IsSortList(t *aterm.Term) bool   { return is(t, m.symSortList) }
func (m *Maker) IsSortSet(t *aterm.Term) bool    { return is(t, m.symSortSet) }
func (m *Maker) IsSortBag(t *aterm.Term) bool    { return is(t, m.symSortBag) }
func (m *Maker) IsSortStruct(t *aterm.Term) bool { return is(t, m.symSortStruct) }

// Data expressions.

func (m *Maker) OpId(name *aterm.Term, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symOpId, name, sort)
}
func (m *Maker) DataVarId(name *aterm.Term, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symDataVarId, name, sort)
}
func (m *Maker) Var(name string, sort *aterm.Term) *aterm.Term {
	return m.DataVarId(m.Str(name), sort)
}

// DataAppl applies head to a list of arguments. A nullary application is
// collapsed to the head itself.
func (m *Maker) DataAppl(head *aterm.Term, args *aterm.Term) *aterm.Term {
	if args.IsEmpty() {
		return head
	}
	return m.Store.MakeAppl(m.symDataAppl, head, args)
}
func (m *Maker) Apply(head *aterm.Term, args ...*aterm.Term) *aterm.Term {
	return m.DataAppl(head, m.Store.List(args...))
}
func (m *Maker) Number(value *aterm.Term, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symNumber, value, sort)
}
func (m *Maker) Forall(vars, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symForall, vars, body)
}
func (m *Maker) Exists(vars, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symExists, vars, body)
}
func (m *Maker) Lambda(vars, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symLambda, vars, body)
}
func (m *Maker) Whr(body, decls *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symWhr, body, decls)
}
func (m *Maker) WhrDecl(v, e *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symWhrDecl, v, e)
}
func (m *Maker) ListEnum(elems, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symListEnum, elems, sort)
}
func (m *Maker) SetEnum(elems, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSetEnum, elems, sort)
}
func (m *Maker) BagEnum(elems, sort *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symBagEnum, elems, sort)
}
func (m *Maker) SetComp(v, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSetComp, v, body)
}
func (m *Maker) BagComp(v, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symBagComp, v, body)
}

func (m *Maker) IsOpId(t *aterm.Term) bool      { return is(t, m.symOpId) }
func (m *Maker) IsDataVarId(t *aterm.Term) bool { return is(t, m.symDataVarId) }
func (m *Maker) IsDataAppl(t *aterm.Term) bool  { return is(t, m.symDataAppl) }
func (m *Maker) IsNumber(t *aterm.Term) bool    { return is(t, m.symNumber) }
func (m *Maker) IsForall(t *aterm.Term) bool    { return is(t, m.symForall) }
func (m *Maker) IsExists(t *aterm.Term) bool    { return is(t, m.symExists) }
func (m *Maker) IsLambda(t *aterm.Term) bool    { return is(t, m.symLambda) }
func (m *Maker) IsWhr(t *aterm.Term) bool       { return is(t, m.symWhr) }
func (m *Maker) IsBinder(t *aterm.Term) bool {
	return m.IsForall(t) || m.IsExists(t) || m.IsLambda(t) ||
		is(t, m.symSetComp) || is(t, m.symBagComp)
}

// Actions and multi-actions.

func (m *Maker) ActId(name *aterm.Term, sorts *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symActId, name, sorts)
}
func (m *Maker) Action(actId, args *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symAction, actId, args)
}
func (m *Maker) MultAct(actions *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symMultAct, actions)
}
func (m *Maker) Delta() *aterm.Term { return m.deltaT }
func (m *Maker) Tau() *aterm.Term   { return m.tauT }

func (m *Maker) IsActId(t *aterm.Term) bool   { return is(t, m.symActId) }
func (m *Maker) IsAction(t *aterm.Term) bool  { return is(t, m.symAction) }
func (m *Maker) IsMultAct(t *aterm.Term) bool { return is(t, m.symMultAct) }
func (m *Maker) IsDelta(t *aterm.Term) bool   { return is(t, m.symDelta) }
func (m *Maker) IsTau(t *aterm.Term) bool     { return is(t, m.symTau) }

// Process expressions.

func (m *Maker) ProcVarId(name *aterm.Term, sorts *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symProcVarId, name, sorts)
}
func (m *Maker) Process(procVarId, args *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symProcess, procVarId, args)
}
func (m *Maker) Seq(a, b *aterm.Term) *aterm.Term    { return m.Store.MakeAppl(m.symSeq, a, b) }
func (m *Maker) Choice(a, b *aterm.Term) *aterm.Term { return m.Store.MakeAppl(m.symChoice, a, b) }
func (m *Maker) Sum(vars, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSum, vars, body)
}
func (m *Maker) Cond(guard, then, els *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symCond, guard, then, els)
}
func (m *Maker) Merge(a, b *aterm.Term) *aterm.Term  { return m.Store.MakeAppl(m.symMerge, a, b) }
func (m *Maker) LMerge(a, b *aterm.Term) *aterm.Term { return m.Store.MakeAppl(m.symLMerge, a, b) }
func (m *Maker) Sync(a, b *aterm.Term) *aterm.Term   { return m.Store.MakeAppl(m.symSync, a, b) }
func (m *Maker) AtTime(p, t *aterm.Term) *aterm.Term { return m.Store.MakeAppl(m.symAtTime, p, t) }
func (m *Maker) Allow(mas, p *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symAllow, mas, p)
}
func (m *Maker) Block(acts, p *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symBlock, acts, p)
}
func (m *Maker) Hide(acts, p *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symHide, acts, p)
}
func (m *Maker) Rename(renamings, p *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symRename, renamings, p)
}
func (m *Maker) Renaming(from, to *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symRenaming, from, to)
}
func (m *Maker) Comm(exprs, p *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symComm, exprs, p)
}
func (m *Maker) CommExpr(lhs, rhs *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symCommExpr, lhs, rhs)
}
func (m *Maker) MultActName(names *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symMActName, names)
}
func (m *Maker) BInit(a, b *aterm.Term) *aterm.Term { return m.Store.MakeAppl(m.symBInit, a, b) }

func (m *Maker) IsProcVarId(t *aterm.Term) bool { return is(t, m.symProcVarId) }
func (m *Maker) IsProcess(t *aterm.Term) bool   { return is(t, m.symProcess) }
func (m *Maker) IsSeq(t *aterm.Term) bool       { return is(t, m.symSeq) }
func (m *Maker) IsChoice(t *aterm.Term) bool    { return is(t, m.symChoice) }
func (m *Maker) IsSum(t *aterm.Term) bool       { return is(t, m.symSum) }
func (m *Maker) IsCond(t *aterm.Term) bool      { return is(t, m.symCond) }
func (m *Maker) IsMerge(t *aterm.Term) bool     { return is(t, m.symMerge) }
func (m *Maker) IsLMerge(t *aterm.Term) bool    { return is(t, m.symLMerge) }
func (m *Maker) IsSync(t *aterm.Term) bool      { return is(t, m.symSync) }
func (m *Maker) IsAtTime(t *aterm.Term) bool    { return is(t, m.symAtTime) }
func (m *Maker) IsAllow(t *aterm.Term) bool     { return is(t, m.symAllow) }
func (m *Maker) IsBlock(t *aterm.Term) bool     { return is(t, m.symBlock) }
func (m *Maker) IsHide(t *aterm.Term) bool      { return is(t, m.symHide) }
func (m *Maker) IsRename(t *aterm.Term) bool    { return is(t, m.symRename) }
func (m *Maker) IsComm(t *aterm.Term) bool      { return is(t, m.symComm) }
func (m *Maker) IsBInit(t *aterm.Term) bool     { return is(t, m.symBInit) }

// LPE shapes.

func (m *Maker) Summand(sumVars, cond, multAct, time, assignments *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSummand, sumVars, cond, multAct, time, assignments)
}
func (m *Maker) Assignment(param, expr *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symAssignment, param, expr)
}
func (m *Maker) LPE(freeVars, params, summands *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symLPE, freeVars, params, summands)
}
func (m *Maker) LPEInit(freeVars, assignments *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symLPEInit, freeVars, assignments)
}

func (m *Maker) IsSummand(t *aterm.Term) bool    { return is(t, m.symSummand) }
func (m *Maker) IsAssignment(t *aterm.Term) bool { return is(t, m.symAssignment) }
func (m *Maker) IsLPE(t *aterm.Term) bool        { return is(t, m.symLPE) }
func (m *Maker) IsLPEInit(t *aterm.Term) bool    { return is(t, m.symLPEInit) }

// Specifications.

func (m *Maker) Spec(sortSpec, consSpec, mapSpec, eqnSpec, actSpec, procSpec, init *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSpec, sortSpec, consSpec, mapSpec, eqnSpec, actSpec, procSpec, init)
}
func (m *Maker) SortSpec(decls *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symSortSpec, decls)
}
func (m *Maker) ConsSpec(decls *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symConsSpec, decls)
}
func (m *Maker) MapSpec(decls *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symMapSpec, decls)
}
func (m *Maker) DataEqnSpec(eqns *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symDataEqnSpec, eqns)
}
func (m *Maker) DataEqn(vars, cond, lhs, rhs *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symDataEqn, vars, cond, lhs, rhs)
}
func (m *Maker) ActSpec(decls *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symActSpec, decls)
}
func (m *Maker) ProcEqnSpec(eqns *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symProcEqnSpec, eqns)
}
func (m *Maker) ProcEqn(procVarId, vars, body *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symProcEqn, procVarId, vars, body)
}
func (m *Maker) Init(freeVars, proc *aterm.Term) *aterm.Term {
	return m.Store.MakeAppl(m.symInit, freeVars, proc)
}
func (m *Maker) Nil() *aterm.Term { return m.nilT }

func (m *Maker) IsSpec(t *aterm.Term) bool     { return is(t, m.symSpec) }
func (m *Maker) IsDataEqn(t *aterm.Term) bool  { return is(t, m.symDataEqn) }
func (m *Maker) IsProcEqn(t *aterm.Term) bool  { return is(t, m.symProcEqn) }
func (m *Maker) IsInit(t *aterm.Term) bool     { return is(t, m.symInit) }
func (m *Maker) IsNil(t *aterm.Term) bool      { return t == m.nilT }
func (m *Maker) IsCommExpr(t *aterm.Term) bool { return is(t, m.symCommExpr) }
func (m *Maker) IsRenaming(t *aterm.Term) bool { return is(t, m.symRenaming) }
