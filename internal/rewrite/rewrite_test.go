package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
	"mcrl2/internal/syntax"
)

// peano builds a tiny rewrite system over a unary number sort:
// plus(zero, y) = y and plus(succ(x), y) = succ(plus(x, y)).
type peano struct {
	s    *aterm.Store
	m    *syntax.Maker
	nat  *aterm.Term
	zero *aterm.Term
	succ *aterm.Term
	plus *aterm.Term
}

func newPeano() *peano {
	s := aterm.NewStore()
	m := syntax.NewMaker(s)
	nat := m.SortId("N")
	return &peano{
		s:    s,
		m:    m,
		nat:  nat,
		zero: m.OpId(m.Str("zero"), nat),
		succ: m.OpId(m.Str("succ"), m.SortArrow(s.List(nat), nat)),
		plus: m.OpId(m.Str("plus"), m.SortArrow(s.List(nat, nat), nat)),
	}
}

func (p *peano) equations() []Equation {
	x := p.m.Var("x", p.nat)
	y := p.m.Var("y", p.nat)
	return []Equation{
		{Vars: []*aterm.Term{y}, LHS: p.m.Apply(p.plus, p.zero, y), RHS: y},
		{Vars: []*aterm.Term{x, y},
			LHS: p.m.Apply(p.plus, p.m.Apply(p.succ, x), y),
			RHS: p.m.Apply(p.succ, p.m.Apply(p.plus, x, y))},
	}
}

func (p *peano) num(n int) *aterm.Term {
	t := p.zero
	for i := 0; i < n; i++ {
		t = p.m.Apply(p.succ, t)
	}
	return t
}

func testBothStrategies(t *testing.T, f func(t *testing.T, strategy Strategy)) {
	t.Run("inner", func(t *testing.T) { f(t, StrategyInner) })
	t.Run("compact", func(t *testing.T) { f(t, StrategyCompact) })
}

func TestRewritePeanoAddition(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		r, err := New(p.m, strategy, p.equations())
		require.NoError(t, err)

		sum := p.m.Apply(p.plus, p.num(2), p.num(3))
		assert.Same(t, p.num(5), r.RewriteExpr(sum))
	})
}

func TestRewriteIdempotent(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		r, err := New(p.m, strategy, p.equations())
		require.NoError(t, err)

		sum := p.m.Apply(p.plus, p.num(1), p.num(1))
		once := r.RewriteExpr(sum)
		assert.Same(t, once, r.RewriteExpr(once), "rewrite(rewrite(t)) = rewrite(t)")
	})
}

func TestNoApplicableRuleReturnsSelf(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		r, err := New(p.m, strategy, p.equations())
		require.NoError(t, err)

		v := p.m.Var("v", p.nat)
		assert.Same(t, v, r.RewriteExpr(v))
		assert.Same(t, p.num(2), r.RewriteExpr(p.num(2)), "constructor terms are normal forms")
	})
}

func TestConditionalRule(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		m := p.m
		x := m.Var("x", p.nat)
		iszero := m.OpId(m.Str("iszero"), m.SortArrow(p.s.List(p.nat), m.SortBool))
		eqns := []Equation{
			{Vars: nil, LHS: m.Apply(iszero, p.zero), RHS: m.True()},
			{Vars: []*aterm.Term{x}, LHS: m.Apply(iszero, m.Apply(p.succ, x)), RHS: m.False()},
			// norm(x) = zero if iszero(x)
			{Vars: []*aterm.Term{x},
				Cond: m.Apply(iszero, x),
				LHS:  m.Apply(m.OpId(m.Str("norm"), m.SortArrow(p.s.List(p.nat), p.nat)), x),
				RHS:  p.zero},
		}
		r, err := New(m, strategy, eqns)
		require.NoError(t, err)

		norm := m.OpId(m.Str("norm"), m.SortArrow(p.s.List(p.nat), p.nat))
		assert.Same(t, p.zero, r.RewriteExpr(m.Apply(norm, p.zero)))
		// condition rewrites to false: the rule does not fire
		assert.Same(t, m.Apply(norm, p.num(1)), r.RewriteExpr(m.Apply(norm, p.num(1))))
	})
}

func TestRuleOrderPreserved(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		m := p.m
		f := m.OpId(m.Str("f"), m.SortArrow(p.s.List(p.nat), p.nat))
		x := m.Var("x", p.nat)
		// two overlapping rules; the first installed must win
		eqns := []Equation{
			{Vars: []*aterm.Term{x}, LHS: m.Apply(f, x), RHS: p.zero},
			{Vars: []*aterm.Term{x}, LHS: m.Apply(f, x), RHS: p.num(1)},
		}
		r, err := New(m, strategy, eqns)
		require.NoError(t, err)
		assert.Same(t, p.zero, r.RewriteExpr(m.Apply(f, p.num(3))))
	})
}

func TestSubstitutionContext(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		r, err := New(p.m, strategy, p.equations())
		require.NoError(t, err)

		v := p.m.Var("v", p.nat)
		r.SetSubstitution(v, r.ToInternal(p.num(2)))
		sum := p.m.Apply(p.plus, v, p.num(1))
		assert.Same(t, p.num(3), r.RewriteExpr(sum))

		r.ClearSubstitution(v)
		assert.Same(t, p.m.Apply(p.plus, v, p.num(1)),
			r.RewriteExpr(sum), "cleared substitution no longer applies")
	})
}

func TestInternalRoundTrip(t *testing.T) {
	testBothStrategies(t, func(t *testing.T, strategy Strategy) {
		p := newPeano()
		r, err := New(p.m, strategy, nil)
		require.NoError(t, err)

		e := p.m.Apply(p.plus, p.num(1), p.num(2))
		i1 := r.ToInternal(e)
		i2 := r.ToInternal(e)
		assert.Same(t, i1, i2, "closed conversions are cached")
		assert.Same(t, e, r.FromInternal(i1))
	})
}

func TestBadEquationHead(t *testing.T) {
	p := newPeano()
	x := p.m.Var("x", p.nat)
	_, err := New(p.m, StrategyCompact, []Equation{{Vars: []*aterm.Term{x}, LHS: x, RHS: x}})
	assert.Error(t, err, "a variable left-hand side has no head symbol")
}

func TestParseStrategy(t *testing.T) {
	st, err := ParseStrategy("inner")
	require.NoError(t, err)
	assert.Equal(t, StrategyInner, st)
	st, err = ParseStrategy("innerc")
	require.NoError(t, err)
	assert.Equal(t, StrategyCompact, st)
	_, err = ParseStrategy("jitty")
	assert.Error(t, err)
}

// Enumerator tests.

func enumeratorOver(p *peano, r *Rewriter) *Enumerator {
	ap := subst.NewApplier(p.m)
	return NewEnumerator(r, ap, func(sort *aterm.Term) []*aterm.Term {
		if sort == p.nat {
			return []*aterm.Term{p.zero, p.succ}
		}
		if sort == p.m.SortBool {
			return []*aterm.Term{p.m.False(), p.m.True()}
		}
		return nil
	})
}

func TestEnumerateBooleans(t *testing.T) {
	p := newPeano()
	r, err := New(p.m, StrategyCompact, p.equations())
	require.NoError(t, err)
	e := enumeratorOver(p, r)

	b := p.m.Var("b", p.m.SortBool)
	sols, err := e.Enumerate([]*aterm.Term{b}, b, true)
	require.NoError(t, err)
	require.Len(t, sols, 1, "only b := true satisfies the predicate b")
	assert.Same(t, p.m.True(), sols[0].Lookup(b))
}

func TestEnumerateEqualityElimination(t *testing.T) {
	p := newPeano()
	r, err := New(p.m, StrategyCompact, p.equations())
	require.NoError(t, err)
	e := enumeratorOver(p, r)

	// x == succ(zero) binds x directly without search.
	x := p.m.Var("x", p.nat)
	sols, err := e.Enumerate([]*aterm.Term{x}, p.m.Eq(x, p.num(1)), true)
	require.NoError(t, err)
	require.Len(t, sols, 1)
	assert.Same(t, p.num(1), sols[0].Lookup(x))
}

func TestEnumerateFunctionSortFails(t *testing.T) {
	p := newPeano()
	r, err := New(p.m, StrategyCompact, nil)
	require.NoError(t, err)
	e := enumeratorOver(p, r)

	f := p.m.Var("f", p.m.SortArrow(p.s.List(p.nat), p.nat))
	_, err = e.Enumerate([]*aterm.Term{f}, p.m.True(), true)
	assert.ErrorContains(t, err, "function sort")
}

func TestEnumerateNoConstructors(t *testing.T) {
	p := newPeano()
	r, err := New(p.m, StrategyCompact, nil)
	require.NoError(t, err)
	e := enumeratorOver(p, r)

	u := p.m.Var("u", p.m.SortId("Opaque"))
	_, err = e.Enumerate([]*aterm.Term{u}, p.m.Eq(u, u), true)
	assert.Error(t, err)
}
