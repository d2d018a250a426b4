package rewrite

import (
	"fmt"

	"github.com/tliron/commonlog"

	"mcrl2/internal/aterm"
	"mcrl2/internal/subst"
)

// ConstructorFinder resolves a sort to its constructor operation
// identifiers, or nil when the sort has none declared.
type ConstructorFinder func(sort *aterm.Term) []*aterm.Term

// Enumerator searches variable assignments satisfying a boolean predicate
// by bounded depth-first expansion of constructor applications, pruning
// branches whose predicate rewrites to false.
type Enumerator struct {
	r    *Rewriter
	ap   *subst.Applier
	cons ConstructorFinder
	log  commonlog.Logger

	// maxVars guards runaway searches: exceeding it warns and raises the
	// bound by a factor of five.
	maxVars  int
	usedVars int
}

// NewEnumerator builds an enumerator over the rewriter.
func NewEnumerator(r *Rewriter, ap *subst.Applier, cons ConstructorFinder) *Enumerator {
	return &Enumerator{
		r:       r,
		ap:      ap,
		cons:    cons,
		log:     commonlog.GetLogger("mcrl2.enum"),
		maxVars: 1000,
	}
}

// Enumerate yields every assignment of vars under which pred does not
// rewrite to false; with onlyTrue set, only assignments whose predicate
// rewrites to the literal true are yielded, and a closed residue that is
// neither true nor false is an error.
func (e *Enumerator) Enumerate(vars []*aterm.Term, pred *aterm.Term, onlyTrue bool) ([]subst.Subst, error) {
	m := e.r.m
	for _, v := range vars {
		if m.IsSortArrow(m.VarSort(v)) {
			return nil, fmt.Errorf("cannot enumerate variable %s of function sort %s",
				aterm.Name(m.VarName(v)), m.VarSort(v))
		}
	}
	e.usedVars = len(vars)
	var out []subst.Subst
	err := e.solve(vars, pred, nil, onlyTrue, &out)
	return out, err
}

func (e *Enumerator) solve(unbound []*aterm.Term, pred *aterm.Term, acc subst.Subst, onlyTrue bool, out *[]subst.Subst) error {
	m := e.r.m

	// Equality elimination: a conjunct x == t (or t == x) with x unbound
	// and x not free in t binds x directly and drops the conjunct.
	if len(unbound) > 0 {
		if v, t, rest, ok := e.findEquality(pred, unbound); ok {
			pred2 := e.ap.Data(rest, subst.Subst{{Var: v, Repl: t}})
			acc2 := e.applyBinding(acc, v, t)
			return e.solve(removeVar(unbound, v), pred2, acc2, onlyTrue, out)
		}
	}

	norm := e.r.RewriteExpr(pred)
	if m.IsFalse(norm) {
		return nil
	}
	if len(unbound) == 0 {
		if m.IsTrue(norm) {
			*out = append(*out, acc)
			return nil
		}
		if onlyTrue {
			return fmt.Errorf("predicate %s does not reduce to a boolean value", norm)
		}
		*out = append(*out, acc)
		return nil
	}

	v := unbound[0]
	rest := unbound[1:]
	sort := m.VarSort(v)
	if m.IsSortArrow(sort) {
		return fmt.Errorf("cannot enumerate variable %s of function sort %s",
			aterm.Name(m.VarName(v)), sort)
	}
	constructors := e.cons(sort)
	if len(constructors) == 0 {
		return fmt.Errorf("sort %s has no constructors to enumerate", sort)
	}
	for _, c := range constructors {
		csort := m.OpIdSort(c)
		var cand *aterm.Term
		next := rest
		if m.IsSortArrow(csort) {
			argSorts := aterm.Slice(m.ArrowDomain(csort))
			e.usedVars += len(argSorts)
			if e.usedVars > e.maxVars {
				e.log.Warningf("enumeration uses more than %d variables; raising the bound", e.maxVars)
				e.maxVars *= 5
			}
			args := make([]*aterm.Term, len(argSorts))
			for i, as := range argSorts {
				args[i] = e.ap.Fresh.FreshVar("e", as)
			}
			cand = m.Apply(c, args...)
			next = append(append([]*aterm.Term{}, rest...), args...)
		} else {
			cand = c
		}
		pred2 := e.ap.Data(norm, subst.Subst{{Var: v, Repl: cand}})
		if err := e.solve(next, pred2, e.applyBinding(acc, v, cand), onlyTrue, out); err != nil {
			return err
		}
	}
	return nil
}

// findEquality digs through the conjunction structure of pred for an
// eliminable equality; it returns the variable, its value, and the
// predicate with that conjunct replaced by true.
func (e *Enumerator) findEquality(pred *aterm.Term, unbound []*aterm.Term) (*aterm.Term, *aterm.Term, *aterm.Term, bool) {
	m := e.r.m
	if m.IsAnd(pred) {
		l, r := m.BinArgs(pred)
		if v, t, rest, ok := e.findEquality(l, unbound); ok {
			return v, t, m.And(rest, r), true
		}
		if v, t, rest, ok := e.findEquality(r, unbound); ok {
			return v, t, m.And(l, rest), true
		}
		return nil, nil, nil, false
	}
	if !m.IsEq(pred) {
		return nil, nil, nil, false
	}
	l, r := m.BinArgs(pred)
	for _, v := range unbound {
		if l == v && !subst.OccursIn(m, v, r) {
			return v, r, m.True(), true
		}
		if r == v && !subst.OccursIn(m, v, l) {
			return v, l, m.True(), true
		}
	}
	return nil, nil, nil, false
}

// applyBinding extends acc with v := t, also mapping t through earlier
// bindings so assignments stay closed with respect to each other.
func (e *Enumerator) applyBinding(acc subst.Subst, v, t *aterm.Term) subst.Subst {
	out := make(subst.Subst, len(acc), len(acc)+1)
	for i, p := range acc {
		out[i] = subst.Pair{Var: p.Var, Repl: e.ap.Data(p.Repl, subst.Subst{{Var: v, Repl: t}})}
	}
	return append(out, subst.Pair{Var: v, Repl: t})
}

func removeVar(vars []*aterm.Term, v *aterm.Term) []*aterm.Term {
	out := make([]*aterm.Term, 0, len(vars)-1)
	for _, u := range vars {
		if u != v {
			out = append(out, u)
		}
	}
	return out
}
