package syntax

import (
	"fmt"

	"mcrl2/internal/aterm"
)

// Builtin identifier names. The '@' prefix marks system constructors that
// cannot clash with user identifiers.
const (
	NameTrue   = "true"
	NameFalse  = "false"
	NameNot    = "!"
	NameAnd    = "&&"
	NameOr     = "||"
	NameImp    = "=>"
	NameEq     = "=="
	NameNeq    = "!="
	NameIf     = "if"
	NameForall = "forall"
	NameExists = "exists"
	NameLTE    = "<="
	NameLT     = "<"
	NameGTE    = ">="
	NameGT     = ">"
	NameAdd    = "+"
	NameSubt   = "-"
	NameMult   = "*"
	NameDiv    = "div"
	NameMod    = "mod"
	NameSucc   = "succ"
	NamePred   = "pred"
	NameMax    = "max"
	NameMin    = "min"
	NameAbs    = "abs"

	NameC0   = "@c0"
	NameC1   = "@c1"
	NameCDub = "@cDub"
	NameCNat = "@cNat"
	NameCInt = "@cInt"
	NameCNeg = "@cNeg"

	NameEmptyList = "[]"
	NameListCons  = "|>"
	NameListSnoc  = "<|"
	NameConcat    = "++"
	NameListSize  = "#"
	NameEltAt     = "."
	NameEltIn     = "in"
	NameHead      = "head"
	NameTail      = "tail"

	NameEmptySet     = "{}"
	NameSetUnion     = "+"
	NameSetDiff      = "-"
	NameSetIntersect = "*"
	NameSetIn        = "in"
	NameEmptyBag     = "{:}"
	NameBagCount     = "count"
)

// Builtins interns the builtin sorts and the most used operator
// identifiers. Sort-parametric operators (equality, comparison, list and
// set primitives) are built on demand through the *Op methods.
type Builtins struct {
	mk *Maker

	SortBool *aterm.Term
	SortPos  *aterm.Term
	SortNat  *aterm.Term
	SortInt  *aterm.Term
	SortReal *aterm.Term

	opTrue  *aterm.Term
	opFalse *aterm.Term
	opNot   *aterm.Term
	opAnd   *aterm.Term
	opOr    *aterm.Term
	opImp   *aterm.Term

	opC1   *aterm.Term
	opCDub *aterm.Term
	opC0   *aterm.Term
	opCNat *aterm.Term
	opCInt *aterm.Term
	opCNeg *aterm.Term
}

func newBuiltins(m *Maker) *Builtins {
	b := &Builtins{mk: m}
	b.SortBool = m.SortId("Bool")
	b.SortPos = m.SortId("Pos")
	b.SortNat = m.SortId("Nat")
	b.SortInt = m.SortId("Int")
	b.SortReal = m.SortId("Real")

	b.opTrue = m.OpId(m.Str(NameTrue), b.SortBool)
	b.opFalse = m.OpId(m.Str(NameFalse), b.SortBool)
	bool1 := m.SortArrow(m.Store.List(b.SortBool), b.SortBool)
	bool2 := m.SortArrow(m.Store.List(b.SortBool, b.SortBool), b.SortBool)
	b.opNot = m.OpId(m.Str(NameNot), bool1)
	b.opAnd = m.OpId(m.Str(NameAnd), bool2)
	b.opOr = m.OpId(m.Str(NameOr), bool2)
	b.opImp = m.OpId(m.Str(NameImp), bool2)

	b.opC1 = m.OpId(m.Str(NameC1), b.SortPos)
	b.opCDub = m.OpId(m.Str(NameCDub),
		m.SortArrow(m.Store.List(b.SortBool, b.SortPos), b.SortPos))
	b.opC0 = m.OpId(m.Str(NameC0), b.SortNat)
	b.opCNat = m.OpId(m.Str(NameCNat),
		m.SortArrow(m.Store.List(b.SortPos), b.SortNat))
	b.opCInt = m.OpId(m.Str(NameCInt),
		m.SortArrow(m.Store.List(b.SortNat), b.SortInt))
	b.opCNeg = m.OpId(m.Str(NameCNeg),
		m.SortArrow(m.Store.List(b.SortPos), b.SortInt))
	return b
}

// True and False return the boolean constants.
func (b *Builtins) True() *aterm.Term  { return b.opTrue }
func (b *Builtins) False() *aterm.Term { return b.opFalse }

// IsTrue recognises the literal true, also under a trivial application.
func (b *Builtins) IsTrue(e *aterm.Term) bool { return e == b.opTrue }

// IsFalse recognises the literal false.
func (b *Builtins) IsFalse(e *aterm.Term) bool { return e == b.opFalse }

// Not negates, folding double negation and literals.
func (b *Builtins) Not(e *aterm.Term) *aterm.Term {
	switch {
	case b.IsTrue(e):
		return b.opFalse
	case b.IsFalse(e):
		return b.opTrue
	case b.IsNot(e):
		return b.mk.ArgsOf(e)[0]
	}
	return b.mk.Apply(b.opNot, e)
}

// And conjoins, folding the unit and zero.
func (b *Builtins) And(e1, e2 *aterm.Term) *aterm.Term {
	switch {
	case b.IsTrue(e1):
		return e2
	case b.IsTrue(e2):
		return e1
	case b.IsFalse(e1) || b.IsFalse(e2):
		return b.opFalse
	}
	return b.mk.Apply(b.opAnd, e1, e2)
}

// Or disjoins, folding the unit and zero.
func (b *Builtins) Or(e1, e2 *aterm.Term) *aterm.Term {
	switch {
	case b.IsFalse(e1):
		return e2
	case b.IsFalse(e2):
		return e1
	case b.IsTrue(e1) || b.IsTrue(e2):
		return b.opTrue
	}
	return b.mk.Apply(b.opOr, e1, e2)
}

// Imp builds implication.
func (b *Builtins) Imp(e1, e2 *aterm.Term) *aterm.Term {
	if b.IsTrue(e1) {
		return e2
	}
	return b.mk.Apply(b.opImp, e1, e2)
}

func (b *Builtins) isBoolOp2(e *aterm.Term, op *aterm.Term) bool {
	return b.mk.IsDataAppl(e) && e.Arg(0) == op && aterm.Length(e.Arg(1)) == 2
}

// IsAnd recognises a conjunction.
func (b *Builtins) IsAnd(e *aterm.Term) bool { return b.isBoolOp2(e, b.opAnd) }

// IsOr recognises a disjunction.
func (b *Builtins) IsOr(e *aterm.Term) bool { return b.isBoolOp2(e, b.opOr) }

// IsNot recognises a negation.
func (b *Builtins) IsNot(e *aterm.Term) bool {
	return b.mk.IsDataAppl(e) && e.Arg(0) == b.opNot
}

// BinArgs returns the two arguments of a binary application.
func (b *Builtins) BinArgs(e *aterm.Term) (*aterm.Term, *aterm.Term) {
	l := e.Arg(1)
	return aterm.Head(l), aterm.Head(aterm.Tail(l))
}

// EqOp returns the equality operator at the given argument sort.
func (b *Builtins) EqOp(sort *aterm.Term) *aterm.Term {
	return b.mk.OpId(b.mk.Str(NameEq),
		b.mk.SortArrow(b.mk.Store.List(sort, sort), b.SortBool))
}

// Eq builds e1 == e2, at the sort of e1.
func (b *Builtins) Eq(e1, e2 *aterm.Term) *aterm.Term {
	if e1 == e2 {
		return b.opTrue
	}
	return b.mk.Apply(b.EqOp(b.mk.SortOf(e1)), e1, e2)
}

// IsEq recognises an equality application.
func (b *Builtins) IsEq(e *aterm.Term) bool {
	if !b.mk.IsDataAppl(e) {
		return false
	}
	head := e.Arg(0)
	return b.mk.IsOpId(head) && aterm.Name(head.Arg(0)) == NameEq &&
		aterm.Length(e.Arg(1)) == 2
}

// NeqOp returns inequality at the given sort.
func (b *Builtins) NeqOp(sort *aterm.Term) *aterm.Term {
	return b.mk.OpId(b.mk.Str(NameNeq),
		b.mk.SortArrow(b.mk.Store.List(sort, sort), b.SortBool))
}

// IfOp returns if-then-else at the given result sort.
func (b *Builtins) IfOp(sort *aterm.Term) *aterm.Term {
	return b.mk.OpId(b.mk.Str(NameIf),
		b.mk.SortArrow(b.mk.Store.List(b.SortBool, sort, sort), sort))
}

// If builds if(c, e1, e2) at the sort of e1.
func (b *Builtins) If(c, e1, e2 *aterm.Term) *aterm.Term {
	switch {
	case b.IsTrue(c):
		return e1
	case b.IsFalse(c):
		return e2
	case e1 == e2:
		return e1
	}
	return b.mk.Apply(b.IfOp(b.mk.SortOf(e1)), c, e1, e2)
}

// CmpOp returns one of the comparison operators at the given sort.
func (b *Builtins) CmpOp(name string, sort *aterm.Term) *aterm.Term {
	return b.mk.OpId(b.mk.Str(name),
		b.mk.SortArrow(b.mk.Store.List(sort, sort), b.SortBool))
}

// LTE builds e1 <= e2 at the sort of e1.
func (b *Builtins) LTE(e1, e2 *aterm.Term) *aterm.Term {
	return b.mk.Apply(b.CmpOp(NameLTE, b.mk.SortOf(e1)), e1, e2)
}

// maxDecimal bounds the decimal literal helpers. The original manipulated
// literals as character strings with no overflow check; here literals
// beyond the bound are rejected rather than wrapped.
const maxDecimal = int64(1) << 62

// PosExpr builds the positive-number constructor term for n >= 1 as a
// @cDub/@c1 chain over the binary digits of n.
func (b *Builtins) PosExpr(n int64) (*aterm.Term, error) {
	if n < 1 || n > maxDecimal {
		return nil, fmt.Errorf("positive literal %d out of range [1, 2^62]", n)
	}
	if n == 1 {
		return b.opC1, nil
	}
	bit := b.opFalse
	if n%2 == 1 {
		bit = b.opTrue
	}
	rest, err := b.PosExpr(n / 2)
	if err != nil {
		return nil, err
	}
	return b.mk.Apply(b.opCDub, bit, rest), nil
}

// NatExpr builds the natural-number constructor term for n >= 0.
func (b *Builtins) NatExpr(n int64) (*aterm.Term, error) {
	if n < 0 || n > maxDecimal {
		return nil, fmt.Errorf("natural literal %d out of range [0, 2^62]", n)
	}
	if n == 0 {
		return b.opC0, nil
	}
	p, err := b.PosExpr(n)
	if err != nil {
		return nil, err
	}
	return b.mk.Apply(b.opCNat, p), nil
}

// IntExpr builds the integer constructor term for any n in range.
func (b *Builtins) IntExpr(n int64) (*aterm.Term, error) {
	if n >= 0 {
		nat, err := b.NatExpr(n)
		if err != nil {
			return nil, err
		}
		return b.mk.Apply(b.opCInt, nat), nil
	}
	if -n > maxDecimal {
		return nil, fmt.Errorf("integer literal %d out of range", n)
	}
	p, err := b.PosExpr(-n)
	if err != nil {
		return nil, err
	}
	return b.mk.Apply(b.opCNeg, p), nil
}

// NumberExpr resolves a Number node to its constructor representation
// at the annotated sort.
func (b *Builtins) NumberExpr(num *aterm.Term) (*aterm.Term, error) {
	valueName := aterm.Name(num.Arg(0))
	sort := num.Arg(1)
	var n int64
	if _, err := fmt.Sscanf(valueName, "%d", &n); err != nil {
		return nil, fmt.Errorf("malformed number literal %q", valueName)
	}
	switch sort {
	case b.SortPos:
		return b.PosExpr(n)
	case b.SortNat:
		return b.NatExpr(n)
	default:
		return b.IntExpr(n)
	}
}
