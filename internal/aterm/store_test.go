package aterm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolInterning(t *testing.T) {
	s := NewStore()
	f1 := s.MakeSymbol("f", 2, false)
	f2 := s.MakeSymbol("f", 2, false)
	assert.Same(t, f1, f2, "equal symbol inputs should return the same handle")

	g := s.MakeSymbol("f", 3, false)
	assert.NotSame(t, f1, g, "different arities are different symbols")

	q := s.MakeSymbol("f", 2, true)
	assert.NotSame(t, f1, q, "quoted and unquoted symbols differ")

	assert.True(t, s.NameInterned("f"))
	assert.False(t, s.NameInterned("zzz"))
}

func TestMaximalSharing(t *testing.T) {
	s := NewStore()
	f := s.MakeSymbol("f", 2, false)
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	b := s.MakeAppl(s.MakeSymbol("b", 0, false))

	t1 := s.MakeAppl(f, a, b)
	t2 := s.MakeAppl(f, a, b)
	assert.Same(t, t1, t2, "structurally equal terms must share one node")
	assert.True(t, Equal(t1, t2))

	t3 := s.MakeAppl(f, b, a)
	assert.False(t, Equal(t1, t3))

	// I2: rebuilding a node from its own pieces yields the same children.
	rebuilt := s.MakeAppl(t1.Function(), t1.Arg(0), t1.Arg(1))
	assert.Same(t, t1, rebuilt)
	for i := 0; i < t1.Arity(); i++ {
		assert.Same(t, t1.Arg(i), rebuilt.Arg(i))
	}
}

func TestIntegersShared(t *testing.T) {
	s := NewStore()
	assert.Same(t, s.MakeInt(42), s.MakeInt(42))
	assert.NotSame(t, s.MakeInt(42), s.MakeInt(43))
	assert.Equal(t, int64(-7), s.MakeInt(-7).Int())
}

func TestListOperations(t *testing.T) {
	s := NewStore()
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	b := s.MakeAppl(s.MakeSymbol("b", 0, false))
	c := s.MakeAppl(s.MakeSymbol("c", 0, false))

	l := s.List(a, b, c)
	assert.Equal(t, 3, Length(l))
	assert.Same(t, a, Head(l))
	assert.Same(t, b, At(l, 1))
	assert.Same(t, c, At(l, 2))
	assert.Equal(t, 1, IndexOf(l, b, 0))
	assert.Equal(t, -1, IndexOf(l, b, 2))
	assert.True(t, Member(l, c))

	rev := s.Reverse(l)
	assert.Same(t, c, Head(rev))
	assert.Same(t, l, s.Reverse(rev), "reversal round-trips to the shared node")

	cat := s.Concat(s.List(a), s.List(b, c))
	assert.Same(t, l, cat)

	repl := s.Replace(l, c, 0)
	assert.Same(t, c, Head(repl))
	assert.Equal(t, 3, Length(repl))

	assert.True(t, s.Empty().IsEmpty())
	assert.Equal(t, 0, Length(s.Empty()))
}

func TestTermPrinting(t *testing.T) {
	s := NewStore()
	f := s.MakeSymbol("f", 2, false)
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	term := s.MakeAppl(f, a, s.List(a, s.MakeInt(5)))
	assert.Equal(t, "f(a,[a,5])", term.String())

	q := s.MakeAppl(s.MakeSymbol("x y", 0, true))
	assert.Equal(t, `"x y"`, q.String())
}

func TestIndexedSet(t *testing.T) {
	s := NewStore()
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	b := s.MakeAppl(s.MakeSymbol("b", 0, false))

	set := NewIndexedSet(s)
	defer set.Destroy()

	i, isNew := set.Put(a)
	assert.Equal(t, 0, i)
	assert.True(t, isNew)
	j, isNew := set.Put(b)
	assert.Equal(t, 1, j)
	assert.True(t, isNew)

	i2, isNew := set.Put(a)
	assert.Equal(t, i, i2, "existing element keeps its index")
	assert.False(t, isNew)

	assert.Equal(t, 1, set.Index(b))
	set.Remove(b)
	assert.Equal(t, -1, set.Index(b))
	assert.Nil(t, set.At(1))

	// freed indices are reused, the others stay stable
	k, _ := set.Put(b)
	assert.Equal(t, 1, k)
	assert.Equal(t, 0, set.Index(a))
	assert.Equal(t, []*Term{a, b}, set.Elements())
}

func TestTable(t *testing.T) {
	s := NewStore()
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	b := s.MakeAppl(s.MakeSymbol("b", 0, false))

	tb := NewTable(s)
	defer tb.Destroy()
	tb.Put(a, b)
	assert.Same(t, b, tb.Get(a))
	assert.Nil(t, tb.Get(b))

	tb.Put(b, a)
	assert.Equal(t, []*Term{a, b}, tb.Keys())
	assert.Equal(t, []*Term{b, a}, tb.Values())

	tb.Remove(a)
	assert.Nil(t, tb.Get(a))
	assert.Equal(t, 1, tb.Size())
	tb.Reset()
	assert.Equal(t, 0, tb.Size())
}

func TestCollectKeepsRootedTerms(t *testing.T) {
	s := NewStore()
	f := s.MakeSymbol("f", 1, false)
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))
	kept := s.MakeAppl(f, a)
	lost := s.MakeAppl(f, s.MakeAppl(s.MakeSymbol("b", 0, false)))

	s.Protect(kept)
	before := s.NodeCount()
	s.Collect()
	after := s.NodeCount()
	assert.Less(t, after, before, "unrooted nodes must be evicted")

	// The kept node is still the canonical representative.
	assert.Same(t, kept, s.MakeAppl(f, a))
	// The lost node is rebuilt fresh, proving it was evicted.
	rebuilt := s.MakeAppl(f, s.MakeAppl(s.MakeSymbol("b", 0, false)))
	assert.NotSame(t, lost, rebuilt)

	s.Unprotect(kept)
}

func TestProtectCellAndArray(t *testing.T) {
	s := NewStore()
	f := s.MakeSymbol("f", 1, false)
	a := s.MakeAppl(s.MakeSymbol("a", 0, false))

	cell := s.MakeAppl(f, a)
	s.ProtectCell(&cell)
	arr := []*Term{s.MakeAppl(f, cell)}
	s.ProtectArray(&arr)

	s.Collect()
	assert.Same(t, cell, s.MakeAppl(f, a))
	assert.Same(t, arr[0], s.MakeAppl(f, cell))

	s.UnprotectCell(&cell)
	s.UnprotectArray(&arr)
}

func TestTextRoundTrip(t *testing.T) {
	s := NewStore()
	src := `f(a,"quoted name"(1,-2),[x,y(z)])`
	term, err := s.ReadTextString(src)
	require.NoError(t, err)
	assert.False(t, s.IsInvalid(term))

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, term))
	again, err := s.ReadTextString(buf.String())
	require.NoError(t, err)
	assert.Same(t, term, again, "text round trip must hit the shared node")
}

func TestTextMalformed(t *testing.T) {
	s := NewStore()
	term, err := s.ReadTextString("f(a,")
	assert.Error(t, err)
	assert.True(t, s.IsInvalid(term), "malformed input yields the invalid term")
}

func TestBinaryRoundTrip(t *testing.T) {
	s := NewStore()
	term, err := s.ReadTextString(`Spec(f(a,a),[1,2,3],"id")`)
	require.NoError(t, err)

	var buf bytes.Buffer
	info := TypeInfo{Creator: "test", Descriptors: [4]string{DescriptorMCRL2, "", "", ""}}
	require.NoError(t, WriteBinary(&buf, term, info))

	s2 := NewStore()
	read, info2, err := s2.ReadBinary(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "test", info2.Creator)
	assert.Equal(t, DescriptorMCRL2, info2.Descriptors[0])
	assert.Equal(t, term.String(), read.String())
}

func TestBinaryMalformed(t *testing.T) {
	s := NewStore()
	_, _, err := s.ReadBinary(bytes.NewReader([]byte{0x80, 0x00}))
	assert.Error(t, err)
}

func TestPackedUintWidths(t *testing.T) {
	s := NewStore()
	// exercise 1, 2, 4 and 8 byte value widths through integer payloads
	for _, n := range []int64{0, 200, 70000, 5_000_000_000, -3} {
		var buf bytes.Buffer
		require.NoError(t, WriteBinary(&buf, s.MakeInt(n), TypeInfo{}))
		read, _, err := s.ReadBinary(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, n, read.Int())
	}
}
