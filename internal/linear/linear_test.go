package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// specBuilder assembles small input specifications for the scenarios.
type specBuilder struct {
	s     *aterm.Store
	m     *syntax.Maker
	acts  []*aterm.Term
	procs []*aterm.Term
}

func newSpecBuilder() *specBuilder {
	s := aterm.NewStore()
	return &specBuilder{s: s, m: syntax.NewMaker(s)}
}

func (b *specBuilder) action(name string, sorts ...*aterm.Term) *aterm.Term {
	id := b.m.ActId(b.m.Str(name), b.s.List(sorts...))
	b.acts = append(b.acts, id)
	return id
}

func (b *specBuilder) declare(name string) *aterm.Term {
	return b.m.ProcVarId(b.m.Str(name), b.s.Empty())
}

func (b *specBuilder) define(id, body *aterm.Term) {
	b.procs = append(b.procs, b.m.ProcEqn(id, b.s.Empty(), body))
}

func (b *specBuilder) process(name string, body *aterm.Term) *aterm.Term {
	id := b.declare(name)
	b.define(id, body)
	return id
}

func (b *specBuilder) spec(init *aterm.Term) *aterm.Term {
	m := b.m
	return m.Spec(
		m.SortSpec(b.s.Empty()),
		m.ConsSpec(b.s.Empty()),
		m.MapSpec(b.s.Empty()),
		m.DataEqnSpec(b.s.Empty()),
		m.ActSpec(b.s.List(b.acts...)),
		m.ProcEqnSpec(b.s.List(b.procs...)),
		m.Init(b.s.Empty(), init))
}

func linearise(t *testing.T, b *specBuilder, init *aterm.Term, cfg Config) (*Context, *aterm.Term) {
	t.Helper()
	ctx, err := NewContext(b.s, cfg)
	require.NoError(t, err)
	// the builder's maker and the context's maker share one store, so
	// their terms coincide node for node
	result, err := Linearise(ctx, b.spec(init))
	require.NoError(t, err)
	require.False(t, ctx.Report.Failed())
	return ctx, result
}

// lpeSummands unpacks the LPE of a linearised specification.
func lpeSummands(t *testing.T, ctx *Context, result *aterm.Term) []*aterm.Term {
	t.Helper()
	lpe := result.Arg(5)
	require.True(t, ctx.M.IsLPE(lpe))
	return aterm.Slice(lpe.Arg(2))
}

func summandLabels(ctx *Context, smd *aterm.Term) []string {
	m := ctx.M
	ma := smd.Arg(2)
	if m.IsDelta(ma) {
		return []string{"delta"}
	}
	var out []string
	for _, act := range aterm.Slice(ma.Arg(0)) {
		out = append(out, aterm.Name(m.ActIdName(m.ActionActId(act))))
	}
	return out
}

func TestSingleRecursiveAction(t *testing.T) {
	// P = a . P  linearises to a single summand with condition true.
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	p := b.declare("P")
	b.define(p, m.Seq(m.Action(aId, b.s.Empty()), m.Process(p, b.s.Empty())))

	ctx, result := linearise(t, b, m.Process(p, b.s.Empty()), DefaultConfig())
	sums := lpeSummands(t, ctx, result)
	require.Len(t, sums, 1)
	smd := sums[0]
	assert.True(t, ctx.M.IsTrue(smd.Arg(1)), "the guard is true")
	assert.Equal(t, []string{"a"}, summandLabels(ctx, smd))
	assert.True(t, smd.Arg(0).IsEmpty(), "no sum variables")
	assert.True(t, smd.Arg(4).IsEmpty(), "single-state recursion needs no assignments")
	assert.True(t, ctx.M.IsNil(smd.Arg(3)), "untimed")
}

func TestNondeterministicChoice(t *testing.T) {
	// P = a + b  terminates, so the Terminate action appears too.
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	bId := b.action("b")
	p := b.process("P", m.Choice(m.Action(aId, b.s.Empty()), m.Action(bId, b.s.Empty())))

	ctx, result := linearise(t, b, m.Process(p, b.s.Empty()), DefaultConfig())
	sums := lpeSummands(t, ctx, result)
	require.Len(t, sums, 3)

	var labels []string
	for _, smd := range sums {
		labels = append(labels, summandLabels(ctx, smd)...)
	}
	assert.Contains(t, labels, "a")
	assert.Contains(t, labels, "b")
	assert.Contains(t, labels, "Terminate1")
}

func TestParallelInterleaving(t *testing.T) {
	// P || Q with P = a.delta and Q = b.delta: the single-action
	// summands interleave and at most one synchronised summand remains.
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	bId := b.action("b")
	p := b.process("P", m.Seq(m.Action(aId, b.s.Empty()), m.Delta()))
	q := b.process("Q", m.Seq(m.Action(bId, b.s.Empty()), m.Delta()))

	ctx, result := linearise(t, b,
		m.Merge(m.Process(p, b.s.Empty()), m.Process(q, b.s.Empty())), DefaultConfig())
	sums := lpeSummands(t, ctx, result)
	assert.LessOrEqual(t, len(sums), 3)

	single := map[string]bool{}
	for _, smd := range sums {
		labels := summandLabels(ctx, smd)
		if len(labels) == 1 {
			single[labels[0]] = true
		}
	}
	assert.True(t, single["a"], "an interleaved a summand exists")
	assert.True(t, single["b"], "an interleaved b summand exists")

	// parameters: one control state per operand
	lpe := result.Arg(5)
	assert.Equal(t, 2, aterm.Length(lpe.Arg(1)))
}

func TestCommunication(t *testing.T) {
	// Comm({c|d -> e}, c(1).delta || d(1).delta): the synchronised
	// summand communicates into e(1); no c|d multi-action survives.
	b := newSpecBuilder()
	m := b.m
	one, err := m.NatExpr(1)
	require.NoError(t, err)
	nat := m.SortId("Nat")
	cId := b.action("c", nat)
	dId := b.action("d", nat)
	b.action("e", nat)

	p := b.process("P", m.Seq(m.Action(cId, b.s.List(one)), m.Delta()))
	q := b.process("Q", m.Seq(m.Action(dId, b.s.List(one)), m.Delta()))

	commSpec := b.s.List(m.CommExpr(
		m.MultActName(b.s.List(m.Str("c"), m.Str("d"))),
		m.Str("e")))
	init := m.Comm(commSpec,
		m.Merge(m.Process(p, b.s.Empty()), m.Process(q, b.s.Empty())))

	ctx, result := linearise(t, b, init, DefaultConfig())
	sums := lpeSummands(t, ctx, result)

	foundE := false
	for _, smd := range sums {
		labels := summandLabels(ctx, smd)
		assert.LessOrEqual(t, len(labels), 1, "no two-action multi-action survives communication")
		if len(labels) == 1 && labels[0] == "e" {
			foundE = true
			args := ctx.M.ActionArgs(aterm.Head(smd.Arg(2).Arg(0)))
			assert.Same(t, one, aterm.Head(args), "the communicated action keeps the argument")
		}
	}
	assert.True(t, foundE, "a summand performing e exists")
}

func TestSumEliminationLaw(t *testing.T) {
	// Sum x:Bool. (x == true && rest) -> a(x) with next state [x]
	// loses x and instantiates the argument.
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	x := m.Var("x", m.SortBool)
	rest := m.Var("r", m.SortBool)
	aId := m.ActId(m.Str("a"), b.s.List(m.SortBool))
	smd := m.Summand(
		b.s.List(x),
		m.And(m.Apply(ctx.M.EqOp(m.SortBool), x, m.True()), rest),
		m.MultAct(b.s.List(m.Action(aId, b.s.List(x)))),
		m.Nil(),
		b.s.List(x))

	out := ctx.sumElimSummand(smd)
	assert.True(t, out.Arg(0).IsEmpty(), "x is removed from the sum variables")
	assert.Same(t, rest, out.Arg(1), "the equality conjunct is gone")
	args := ctx.M.ActionArgs(aterm.Head(out.Arg(2).Arg(0)))
	assert.Same(t, m.True(), aterm.Head(args), "x is instantiated in the action")
	assert.Same(t, m.True(), aterm.Head(out.Arg(4)), "x is instantiated in the next state")
}

func TestHideNothingIsIdentity(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	aId := m.ActId(m.Str("a"), b.s.Empty())
	smd := m.Summand(b.s.Empty(), m.True(),
		m.MultAct(b.s.List(m.Action(aId, b.s.Empty()))), m.Nil(), b.s.Empty())
	p := &ips{init: b.s.Empty(), pars: b.s.Empty(), sums: b.s.List(smd)}

	out := ctx.hideComposition(b.s.Empty(), p)
	assert.Same(t, p.sums, out.sums, "hiding nothing leaves the summands shared")
}

func TestHideStrikesActions(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	aId := m.ActId(m.Str("a"), b.s.Empty())
	bId := m.ActId(m.Str("b"), b.s.Empty())
	ma := m.MultAct(b.s.List(m.Action(aId, b.s.Empty()), m.Action(bId, b.s.Empty())))
	smd := m.Summand(b.s.Empty(), m.True(), ma, m.Nil(), b.s.Empty())
	p := &ips{init: b.s.Empty(), pars: b.s.Empty(), sums: b.s.List(smd)}

	out := ctx.hideComposition(b.s.List(m.Str("a")), p)
	left := aterm.Head(out.sums).Arg(2)
	require.Equal(t, 1, aterm.Length(left.Arg(0)))
	assert.Equal(t, "b", aterm.Name(m.ActIdName(m.ActionActId(aterm.Head(left.Arg(0))))))

	// hiding everything leaves tau, the empty multi-action
	out = ctx.hideComposition(b.s.List(m.Str("a"), m.Str("b")), p)
	assert.True(t, aterm.Head(out.sums).Arg(2).Arg(0).IsEmpty())
}

func TestAllowComposition(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	aId := m.ActId(m.Str("a"), b.s.Empty())
	bId := m.ActId(m.Str("b"), b.s.Empty())
	mkSummand := func(id *aterm.Term) *aterm.Term {
		return m.Summand(b.s.Empty(), m.True(),
			m.MultAct(b.s.List(m.Action(id, b.s.Empty()))), m.Nil(), b.s.Empty())
	}
	p := &ips{init: b.s.Empty(), pars: b.s.Empty(),
		sums: b.s.List(mkSummand(aId), mkSummand(bId))}

	// allowing both labels keeps both summands
	allowBoth := b.s.List(
		m.MultActName(b.s.List(m.Str("a"))),
		m.MultActName(b.s.List(m.Str("b"))))
	out := ctx.allowComposition(allowBoth, p)
	assert.Equal(t, 2, aterm.Length(out.sums))

	// allowing only a demotes b to a delta summand (or eliminates it)
	out = ctx.allowComposition(b.s.List(m.MultActName(b.s.List(m.Str("a")))), p)
	for _, smd := range aterm.Slice(out.sums) {
		labels := summandLabels(ctx, smd)
		assert.NotEqual(t, []string{"b"}, labels, "b must not survive the allow")
	}

	// tau passes any allow set
	tauSummand := m.Summand(b.s.Empty(), m.True(), m.MultAct(b.s.Empty()), m.Nil(), b.s.Empty())
	pTau := &ips{init: b.s.Empty(), pars: b.s.Empty(), sums: b.s.List(tauSummand)}
	out = ctx.allowComposition(b.s.Empty(), pTau)
	require.Equal(t, 1, aterm.Length(out.sums))
	assert.True(t, aterm.Head(out.sums).Arg(2).Arg(0).IsEmpty())
}

func TestBlockComposition(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	aId := m.ActId(m.Str("a"), b.s.Empty())
	smd := m.Summand(b.s.Empty(), m.True(),
		m.MultAct(b.s.List(m.Action(aId, b.s.Empty()))), m.Nil(), b.s.Empty())
	p := &ips{init: b.s.Empty(), pars: b.s.Empty(), sums: b.s.List(smd)}

	out := ctx.encapComposition(b.s.List(m.Str("a")), p)
	// the only summand becomes an untimed delta; with no other summand to
	// supersede it, the insertion heuristic keeps it
	for _, s := range aterm.Slice(out.sums) {
		assert.Equal(t, []string{"delta"}, summandLabels(ctx, s))
	}
}

func TestRenameComposition(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	aId := m.ActId(m.Str("a"), b.s.Empty())
	smd := m.Summand(b.s.Empty(), m.True(),
		m.MultAct(b.s.List(m.Action(aId, b.s.Empty()))), m.Nil(), b.s.Empty())
	p := &ips{init: b.s.Empty(), pars: b.s.Empty(), sums: b.s.List(smd)}

	out := ctx.renameComposition(b.s.List(m.Renaming(m.Str("a"), m.Str("z"))), p)
	assert.Equal(t, []string{"z"}, summandLabels(ctx, aterm.Head(out.sums)))
}

func TestImpliesCondition(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	x := m.Var("x", m.SortBool)
	y := m.Var("y", m.SortBool)
	assert.True(t, ctx.impliesCondition(x, m.True()))
	assert.True(t, ctx.impliesCondition(m.False(), x))
	assert.True(t, ctx.impliesCondition(x, x))
	assert.True(t, ctx.impliesCondition(m.And(x, y), x))
	assert.True(t, ctx.impliesCondition(x, m.Or(x, y)))
	assert.False(t, ctx.impliesCondition(x, m.And(x, y)))
	assert.False(t, ctx.impliesCondition(m.Or(x, y), x))
	assert.True(t, ctx.impliesCondition(m.Or(x, y), m.Or(x, y)))
}

func TestRejectsLeftMergeAndBoundedInit(t *testing.T) {
	for _, mk := range []func(m *syntax.Maker, p *aterm.Term) *aterm.Term{
		func(m *syntax.Maker, p *aterm.Term) *aterm.Term { return m.LMerge(p, p) },
		func(m *syntax.Maker, p *aterm.Term) *aterm.Term { return m.BInit(p, p) },
	} {
		b := newSpecBuilder()
		m := b.m
		aId := b.action("a")
		p := b.process("P", m.Seq(m.Action(aId, b.s.Empty()), m.Delta()))

		ctx, err := NewContext(b.s, DefaultConfig())
		require.NoError(t, err)
		_, err = Linearise(ctx, b.spec(mk(m, m.Process(p, b.s.Empty()))))
		assert.Error(t, err)
		assert.True(t, ctx.Report.Failed())
	}
}

func TestRejectsChoiceUnderMerge(t *testing.T) {
	// Choice directly above a parallel operator is an illegal nesting.
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	p := b.process("P", m.Seq(m.Action(aId, b.s.Empty()), m.Delta()))
	q := b.process("Q", m.Merge(m.Process(p, b.s.Empty()), m.Process(p, b.s.Empty())))

	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)
	init := m.Choice(m.Process(q, b.s.Empty()), m.Process(p, b.s.Empty()))
	_, err = Linearise(ctx, b.spec(init))
	assert.Error(t, err)
}

func TestEnumeratedTypeFactory(t *testing.T) {
	b := newSpecBuilder()
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	e3 := ctx.createEnumeratedType(3)
	assert.Equal(t, 3, e3.size)
	assert.Len(t, e3.elementNames, 3)
	assert.Same(t, e3, ctx.createEnumeratedType(3), "types are cached by size")

	e2 := ctx.createEnumeratedType(2)
	assert.Same(t, ctx.M.SortBool, e2.sortId, "size two reuses Bool")
	assert.Same(t, ctx.M.False(), e2.elementNames[0])
	assert.Same(t, ctx.M.True(), e2.elementNames[1])

	// the case function on Bool over a boolean enum is if
	f := ctx.caseFunction(e2, ctx.M.SortBool)
	assert.Same(t, ctx.M.IfOp(ctx.M.SortBool), f)

	f3 := ctx.caseFunction(e3, ctx.M.SortBool)
	assert.Same(t, f3, ctx.caseFunction(e3, ctx.M.SortBool), "case functions are cached per sort")
}

func TestClusterActionsMergesSummands(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	ctx, err := NewContext(b.s, DefaultConfig())
	require.NoError(t, err)

	nat := m.SortId("Nat")
	aId := m.ActId(m.Str("a"), b.s.List(nat))
	par := m.Var("p", nat)
	v1, err2 := m.NatExpr(1)
	require.NoError(t, err2)
	v2, err2 := m.NatExpr(2)
	require.NoError(t, err2)
	c1 := m.Var("g1", m.SortBool)
	c2 := m.Var("g2", m.SortBool)

	mkSummand := func(cond, arg *aterm.Term) *aterm.Term {
		return m.Summand(b.s.Empty(), cond,
			m.MultAct(b.s.List(m.Action(aId, b.s.List(arg)))), m.Nil(), b.s.List(arg))
	}
	sums := b.s.List(mkSummand(c1, v1), mkSummand(c2, v2))
	out := ctx.clusterActions(sums, b.s.List(par), false)
	require.Equal(t, 1, aterm.Length(out), "summands with one action pattern cluster into one")

	smd := aterm.Head(out)
	require.Equal(t, 1, aterm.Length(smd.Arg(0)), "the cluster introduces the selector variable")
	sel := aterm.Head(smd.Arg(0))
	assert.Same(t, ctx.M.SortBool, m.VarSort(sel), "a two-way cluster selects over Bool")
	// the clustered condition is if(e, ., .) on Bool
	cond := smd.Arg(1)
	assert.Same(t, m.IfOp(m.SortBool), m.HeadOf(cond))
}

func TestLineariseAlreadyLinearShape(t *testing.T) {
	// R4: a specification that is already one guarded summand produces
	// an LPE with one summand.
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	p := b.declare("P")
	b.define(p, m.Cond(m.True(),
		m.Seq(m.Action(aId, b.s.Empty()), m.Process(p, b.s.Empty())), m.Delta()))

	ctx, result := linearise(t, b, m.Process(p, b.s.Empty()), DefaultConfig())
	sums := lpeSummands(t, ctx, result)
	assert.Len(t, sums, 1)
}

func TestStackModeSingleAction(t *testing.T) {
	cfg := Config{Method: MethodStack}
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	p := b.declare("P")
	b.define(p, m.Seq(m.Action(aId, b.s.Empty()), m.Process(p, b.s.Empty())))

	ctx, result := linearise(t, b, m.Process(p, b.s.Empty()), cfg)
	sums := lpeSummands(t, ctx, result)
	require.NotEmpty(t, sums)
	lpe := result.Arg(5)
	require.Equal(t, 1, aterm.Length(lpe.Arg(1)), "stack mode has one stack parameter")
	stackVar := aterm.Head(lpe.Arg(1))
	assert.Contains(t, aterm.Name(ctx.M.VarSort(stackVar).Arg(0)), "Stack")
}

func TestRegular2SharesSequences(t *testing.T) {
	b := newSpecBuilder()
	m := b.m
	aId := b.action("a")
	bId := b.action("b")
	p := b.declare("P")
	// P = a . b . P : the b-headed tail sequence is interned once
	b.define(p, m.Seq(m.Action(aId, b.s.Empty()),
		m.Seq(m.Action(bId, b.s.Empty()), m.Process(p, b.s.Empty()))))

	cfg := DefaultConfig()
	cfg.Method = MethodRegular2
	ctx, result := linearise(t, b, m.Process(p, b.s.Empty()), cfg)
	sums := lpeSummands(t, ctx, result)
	assert.Len(t, sums, 2)

	var labels []string
	for _, smd := range sums {
		labels = append(labels, summandLabels(ctx, smd)...)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, labels)
}
