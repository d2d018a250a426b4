package subst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

func setup() (*aterm.Store, *syntax.Maker, *Applier) {
	s := aterm.NewStore()
	m := syntax.NewMaker(s)
	return s, m, NewApplier(m)
}

func TestEmptySubstitutionIsIdentity(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	e := m.Apply(m.OpId(m.Str("f"), m.SortArrow(s.List(nat), nat)), x)

	assert.Same(t, e, ap.Data(e, nil), "substitute with no pairs returns the identical handle")
}

func TestSharingPreservedWhenNothingTriggers(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	y := m.Var("y", nat)
	e := m.Apply(m.OpId(m.Str("f"), m.SortArrow(s.List(nat), nat)), y)

	out := ap.Data(e, Subst{{Var: x, Repl: m.True()}})
	assert.Same(t, e, out, "a substitution that does not occur leaves the handle untouched")
}

func TestSimpleSubstitution(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	f := m.OpId(m.Str("f"), m.SortArrow(s.List(nat, nat), nat))
	v := m.Var("v", nat)

	e := m.Apply(f, x, x)
	out := ap.Data(e, Subst{{Var: x, Repl: v}})
	assert.Same(t, m.Apply(f, v, v), out)
}

func TestShadowedVariableNotSubstituted(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)

	forall := m.Forall(s.List(x), m.Apply(m.EqOp(nat), x, x))
	out := ap.Data(forall, Subst{{Var: x, Repl: m.Var("v", nat)}})
	assert.Same(t, forall, out, "bound occurrences are shadowed")
}

func TestCaptureAvoidance(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	y := m.Var("y", nat)

	// (forall y. y == x)[x := y] must not capture the free y.
	forall := m.Forall(s.List(y), m.Eq(y, x))
	out := ap.Data(forall, Subst{{Var: x, Repl: y}})
	assert.NotSame(t, forall, out)

	bound := aterm.Head(out.Arg(0))
	assert.NotSame(t, y, bound, "the bound variable must have been renamed")
	l, r := m.BinArgs(out.Arg(1))
	assert.Same(t, bound, l)
	assert.Same(t, y, r, "the substituted y stays free")
}

func TestProcessSubstitution(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	v := m.Var("v", nat)
	aId := m.ActId(m.Str("a"), s.List(nat))
	p := m.Seq(m.Action(aId, s.List(x)), m.Process(m.ProcVarId(m.Str("P"), s.List(nat)), s.List(x)))

	out := ap.Proc(p, Subst{{Var: x, Repl: v}})
	assert.Same(t, v, aterm.Head(m.ActionArgs(out.Arg(0))))
	assert.Same(t, v, aterm.Head(out.Arg(1).Arg(1)))
}

func TestSumShadowingInProcess(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	aId := m.ActId(m.Str("a"), s.List(nat))
	sum := m.Sum(s.List(x), m.Action(aId, s.List(x)))

	out := ap.Proc(sum, Subst{{Var: x, Repl: m.Var("v", nat)}})
	assert.Same(t, sum, out)
}

func TestOccursIn(t *testing.T) {
	s, m, _ := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	y := m.Var("y", nat)
	f := m.OpId(m.Str("f"), m.SortArrow(s.List(nat), nat))

	assert.True(t, OccursIn(m, x, m.Apply(f, x)))
	assert.False(t, OccursIn(m, y, m.Apply(f, x)))
	assert.False(t, OccursIn(m, x, m.Forall(s.List(x), m.Apply(m.EqOp(nat), x, x))),
		"bound occurrences are not free occurrences")
	assert.True(t, OccursInList(m, x, s.List(y, x)))
}

func TestOccursInProcStrict(t *testing.T) {
	s, m, _ := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	sum := m.Sum(s.List(x), m.MultAct(s.Empty()))

	assert.False(t, OccursInProc(m, x, sum, false))
	assert.True(t, OccursInProc(m, x, sum, true), "strict counts sum-bound occurrences")
}

func TestAlphaConvertEmptyBanSet(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	vars := s.List(m.Var("x", nat), m.Var("y", nat))

	out, pairs := AlphaConvert(ap, vars, nil, nil)
	assert.Same(t, vars, out, "an empty ban set returns the variables unchanged")
	assert.Empty(t, pairs)
}

func TestAlphaConvertRenamesClashes(t *testing.T) {
	s, m, ap := setup()
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	y := m.Var("y", nat)
	vars := s.List(x, y)

	out, pairs := AlphaConvert(ap, vars, []*aterm.Term{x}, nil)
	assert.Len(t, pairs, 1)
	assert.Same(t, x, pairs[0].Var)
	assert.NotSame(t, x, aterm.Head(out))
	assert.Same(t, y, aterm.Head(aterm.Tail(out)), "non-clashing variables survive")
	assert.Same(t, m.VarSort(x), m.VarSort(aterm.Head(out)))
}

func TestFreshNamesNeverCollide(t *testing.T) {
	s, m, _ := setup()
	names := NewNames(m)
	m.Str("x1") // already interned

	n1 := names.FreshName("x")
	assert.NotEqual(t, "x1", aterm.Name(n1))
	n2 := names.FreshName("x")
	assert.NotEqual(t, aterm.Name(n1), aterm.Name(n2))
	assert.True(t, s.NameInterned(aterm.Name(n1)))

	// a digit tail on the prefix is stripped before counting
	n3 := names.FreshName("P17")
	assert.Equal(t, byte('P'), aterm.Name(n3)[0])
}
