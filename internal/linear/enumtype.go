package linear

import (
	"fmt"

	"mcrl2/internal/aterm"
)

// enumType is one generated Enum_k datatype: k constants, an equality
// with the identity and pairwise-distinctness laws, and one case function
// per target sort. Types are cached by size for the context's lifetime.
type enumType struct {
	size          int
	sortId        *aterm.Term
	elementNames  []*aterm.Term
	caseFunctions []*aterm.Term
	next          *enumType
}

// createEnumeratedType returns the cached Enum_k for the given size,
// declaring it on first use. Size 2 reuses Bool with elements false and
// true.
func (c *Context) createEnumeratedType(size int) *enumType {
	for e := c.enumTypes; e != nil; e = e.next {
		if e.size == size {
			return e
		}
	}
	m := c.M
	e := &enumType{size: size, next: c.enumTypes}
	c.enumTypes = e
	if size == 2 {
		e.sortId = m.SortBool
		e.elementNames = []*aterm.Term{m.False(), m.True()}
		return e
	}
	e.sortId = m.SortIdFromTerm(c.Ap.Fresh.FreshName(fmt.Sprintf("Enum%d", size)))
	c.insertSort(e.sortId)
	for i := 0; i < size; i++ {
		elem := m.OpId(c.Ap.Fresh.FreshName(fmt.Sprintf("e%d_%d", i, size)), e.sortId)
		c.insertConstructor(elem)
		e.elementNames = append(e.elementNames, elem)
	}

	// v == v reduces to true; distinct constants reduce to false.
	eqOp := m.EqOp(e.sortId)
	c.insertMapping(eqOp)
	v := c.Ap.Fresh.FreshVar("v", e.sortId)
	c.declareEquationVariables(c.Store.List(v))
	c.newEquation(nil, m.Apply(eqOp, v, v), m.True())
	c.endEquationSection()
	c.declareEquationVariables(c.Store.Empty())
	for i, ei := range e.elementNames {
		for j, ej := range e.elementNames {
			if i != j {
				c.newEquation(nil, m.Apply(eqOp, ei, ej), m.False())
			}
		}
	}
	c.endEquationSection()
	return e
}

// caseFunction returns the case function of e on the given target sort,
// declaring it and its laws on first use. For the boolean enumerated type
// on the builtin sorts the if function serves; applyCase passes it the
// alternatives in reverse element order, since if selects its first
// alternative on true, the second element.
func (c *Context) caseFunction(e *enumType, sort *aterm.Term) *aterm.Term {
	m := c.M
	for _, f := range e.caseFunctions {
		if c.caseFunctionTarget(f) == sort {
			return f
		}
	}
	if e.sortId == m.SortBool && e.size == 2 &&
		(sort == m.SortBool || sort == m.SortPos || sort == m.SortNat ||
			sort == m.SortInt || sort == m.SortReal) {
		f := m.IfOp(sort)
		e.caseFunctions = append(e.caseFunctions, f)
		return f
	}
	domain := c.Store.List(e.sortId)
	for j := 0; j < e.size; j++ {
		domain = c.Store.Append(domain, sort)
	}
	var base string
	if m.IsSortId(sort) {
		base = fmt.Sprintf("C%d_%s", e.size, aterm.Name(sort.Arg(0)))
	} else {
		base = fmt.Sprintf("C%d_fun", e.size)
	}
	f := m.OpId(c.Ap.Fresh.FreshName(base), m.SortArrow(domain, sort))
	c.insertMapping(f)
	e.caseFunctions = append(e.caseFunctions, f)
	c.defineCaseEquations(e, f, sort)
	return f
}

// caseFunctionTarget recovers the target sort of a case function.
func (c *Context) caseFunctionTarget(f *aterm.Term) *aterm.Term {
	return c.M.ArrowCodomain(c.M.OpIdSort(f))
}

// defineCaseEquations declares C(e, x, ..., x) = x and C(ei, y1, ..., yk) = yi.
func (c *Context) defineCaseEquations(e *enumType, f, sort *aterm.Term) {
	m := c.M
	x := c.Ap.Fresh.FreshVar("x", sort)
	ev := c.Ap.Fresh.FreshVar("e", e.sortId)
	defaultArgs := []*aterm.Term{ev}
	for j := 0; j < e.size; j++ {
		defaultArgs = append(defaultArgs, x)
	}
	c.declareEquationVariables(c.Store.List(ev, x))
	c.newEquation(nil, m.Apply(f, defaultArgs...), x)
	c.endEquationSection()

	ys := make([]*aterm.Term, e.size)
	for j := range ys {
		ys[j] = c.Ap.Fresh.FreshVar("y", sort)
	}
	c.declareEquationVariables(c.Store.List(ys...))
	for i, ei := range e.elementNames {
		args := append([]*aterm.Term{ei}, ys...)
		c.newEquation(nil, m.Apply(f, args...), ys[i])
	}
	c.endEquationSection()
}

// applyCase builds the case application C(selector, a1, ..., ak),
// collapsing to the single alternative when all agree.
func (c *Context) applyCase(e *enumType, selector *aterm.Term, alternatives []*aterm.Term, sort *aterm.Term) *aterm.Term {
	allEqual := true
	for _, a := range alternatives[1:] {
		if a != alternatives[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return alternatives[0]
	}
	f := c.caseFunction(e, sort)
	if e.sortId == c.M.SortBool && f == c.M.IfOp(sort) {
		// elements are [false, true]; if(b, x, y) is x for true
		alternatives = []*aterm.Term{alternatives[1], alternatives[0]}
	}
	return c.M.Apply(f, append([]*aterm.Term{selector}, alternatives...)...)
}
