package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcrl2/internal/aterm"
)

func TestRecognisers(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)

	nat := m.SortId("Nat")
	assert.True(t, m.IsSortId(nat))
	assert.False(t, m.IsSortArrow(nat))

	arrow := m.SortArrow(s.List(nat), m.SortBool)
	assert.True(t, m.IsSortArrow(arrow))
	assert.Same(t, m.SortBool, m.ArrowCodomain(arrow))

	x := m.Var("x", nat)
	assert.True(t, m.IsDataVarId(x))
	assert.Same(t, nat, m.VarSort(x))
	assert.Equal(t, "x", aterm.Name(m.VarName(x)))

	p := m.Seq(m.Delta(), m.Tau())
	assert.True(t, m.IsSeq(p))
	assert.True(t, m.IsDelta(p.Arg(0)))
	assert.True(t, m.IsTau(p.Arg(1)))
}

func TestApplicationSpine(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)
	nat := m.SortId("Nat")
	f := m.OpId(m.Str("f"), m.SortArrow(s.List(nat, nat), nat))
	x := m.Var("x", nat)
	y := m.Var("y", nat)

	app := m.Apply(f, x, y)
	assert.Same(t, f, m.HeadOf(app))
	assert.Equal(t, []*aterm.Term{x, y}, m.ArgsOf(app))
	assert.Same(t, nat, m.SortOf(app))

	// nullary application collapses to the head
	assert.Same(t, f, m.Apply(f))
}

func TestSortOf(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)
	nat := m.SortId("Nat")
	x := m.Var("x", nat)

	assert.Same(t, nat, m.SortOf(x))
	assert.Same(t, m.SortBool, m.SortOf(m.True()))
	assert.Same(t, m.SortBool, m.SortOf(m.Forall(s.List(x), m.True())))

	lam := m.Lambda(s.List(x), m.True())
	lamSort := m.SortOf(lam)
	assert.True(t, m.IsSortArrow(lamSort))
	assert.Same(t, m.SortBool, m.ArrowCodomain(lamSort))
	assert.Same(t, nat, m.TargetSort(m.SortArrow(s.List(nat), m.SortArrow(s.List(nat), nat))))
}

func TestBooleanSmartConstructors(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)
	nat := m.SortId("Nat")
	x := m.Var("x", nat)
	b := m.Eq(x, x)
	assert.Same(t, m.True(), b, "x == x folds to true")

	c := m.Eq(x, m.Var("y", nat))
	assert.True(t, m.IsEq(c))
	l, r := m.BinArgs(c)
	assert.Same(t, x, l)
	assert.Equal(t, "y", aterm.Name(m.VarName(r)))

	assert.Same(t, c, m.And(m.True(), c))
	assert.Same(t, m.False(), m.And(c, m.False()))
	assert.Same(t, c, m.Or(c, m.False()))
	assert.Same(t, m.True(), m.Or(c, m.True()))
	assert.Same(t, m.False(), m.Not(m.True()))
	assert.Same(t, c, m.Not(m.Not(c)))
	assert.True(t, m.IsAnd(m.And(c, m.Not(c))))

	assert.Same(t, x, m.If(m.True(), x, r))
	assert.Same(t, r, m.If(m.False(), x, r))
	assert.Same(t, x, m.If(c, x, x))
}

func TestNumberConstruction(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)

	one, err := m.PosExpr(1)
	require.NoError(t, err)
	assert.True(t, m.IsOpId(one))
	assert.Equal(t, NameC1, aterm.Name(one.Arg(0)))

	six, err := m.PosExpr(6)
	require.NoError(t, err)
	// 6 = cDub(false, cDub(true, c1))
	assert.Equal(t, NameCDub, aterm.Name(m.HeadOf(six).Arg(0)))

	zero, err := m.NatExpr(0)
	require.NoError(t, err)
	assert.Equal(t, NameC0, aterm.Name(zero.Arg(0)))

	minus, err := m.IntExpr(-3)
	require.NoError(t, err)
	assert.Equal(t, NameCNeg, aterm.Name(m.HeadOf(minus).Arg(0)))

	_, err = m.PosExpr(0)
	assert.Error(t, err, "Pos excludes zero")
	_, err = m.NatExpr(-1)
	assert.Error(t, err)
	_, err = m.PosExpr((1 << 62) + 1)
	assert.Error(t, err, "literals beyond the range are rejected, not wrapped")
}

func TestMultiActionSorting(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)

	// names interned in order a, b: canonical order follows intern order
	aId := m.ActId(m.Str("a"), s.Empty())
	bId := m.ActId(m.Str("b"), s.Empty())
	actA := m.Action(aId, s.Empty())
	actB := m.Action(bId, s.Empty())

	ma1 := m.SortMultAct(m.MultAct(s.List(actB, actA)))
	ma2 := m.SortMultAct(m.MultAct(s.List(actA, actB)))
	assert.Same(t, ma1, ma2, "sorted multi-actions compare by pointer")

	merged := m.MergeMultActs(m.MultAct(s.List(actB)), m.MultAct(s.List(actA)))
	assert.Same(t, ma1, merged)
}

func TestStringPool(t *testing.T) {
	s := aterm.NewStore()
	m := NewMaker(s)
	assert.Same(t, m.Str("hello"), m.Str("hello"))
	assert.True(t, s.NameInterned("hello"))
}
