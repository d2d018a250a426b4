// Package rewrite implements the equation-driven term reducer. Two
// internal representations are selectable: an innermost strategy over a
// cons-list form and a compact strategy over fixed-width application
// nodes. Both normalise leaves-up and index equations by the head symbol
// of the left-hand side, trying rules in installation order.
package rewrite

import (
	"fmt"

	"github.com/tliron/commonlog"

	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// Strategy selects the internal term representation.
type Strategy int

const (
	// StrategyInner uses the cons-list form [head, arg1, ..., argN].
	StrategyInner Strategy = iota
	// StrategyCompact uses one fixed-width Appl node per application.
	StrategyCompact
)

// ParseStrategy maps a configuration string onto a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "inner", "innermost":
		return StrategyInner, nil
	case "compact", "innerc":
		return StrategyCompact, nil
	}
	return 0, fmt.Errorf("unknown rewrite strategy %q", s)
}

// Equation is one conditional rewrite rule: forall Vars. LHS = RHS if Cond.
type Equation struct {
	Vars []*aterm.Term
	Cond *aterm.Term
	LHS  *aterm.Term
	RHS  *aterm.Term
}

type rule struct {
	vars map[*aterm.Term]bool
	cond *aterm.Term // internal form, nil for unconditional
	lhs  *aterm.Term // internal form
	rhs  *aterm.Term // internal form
}

// Rewriter reduces data expressions to normal form under the installed
// equations. It is single-threaded; nested calls on independent Rewriters
// are fine, reentrant calls on the same one are not.
type Rewriter struct {
	m        *syntax.Maker
	strategy Strategy
	log      commonlog.Logger

	// rules indexed by head term (an OpId); order within a bucket is
	// installation order and is never rearranged.
	rules map[*aterm.Term][]*rule

	// env is the threaded substitution context (set_substitution).
	env map[*aterm.Term]*aterm.Term

	// compact-form symbol table: one symbol per (head, arity).
	applSyms map[applKey]*aterm.Symbol
	applHead map[*aterm.Symbol]*aterm.Term

	toCache   map[*aterm.Term]*aterm.Term
	fromCache map[*aterm.Term]*aterm.Term

	innerSym *aterm.Symbol // head marker for the list form
}

type applKey struct {
	head  *aterm.Term
	arity int
}

// New creates a rewriter with the given strategy and installs eqns.
func New(m *syntax.Maker, strategy Strategy, eqns []Equation) (*Rewriter, error) {
	r := &Rewriter{
		m:         m,
		strategy:  strategy,
		log:       commonlog.GetLogger("mcrl2.rewrite"),
		rules:     make(map[*aterm.Term][]*rule),
		env:       make(map[*aterm.Term]*aterm.Term),
		applSyms:  make(map[applKey]*aterm.Symbol),
		applHead:  make(map[*aterm.Symbol]*aterm.Term),
		toCache:   make(map[*aterm.Term]*aterm.Term),
		fromCache: make(map[*aterm.Term]*aterm.Term),
		innerSym:  m.Store.MakeSymbol("@rewr_appl", 2, false),
	}
	for _, e := range eqns {
		if err := r.AddEquation(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Maker exposes the syntax maker the rewriter operates over.
func (r *Rewriter) Maker() *syntax.Maker { return r.m }

// AddEquation installs one rule. Rules are tried in installation order at
// each redex; reordering is not performed because confluence of the user's
// equation set is not verified.
func (r *Rewriter) AddEquation(e Equation) error {
	head := r.m.HeadOf(e.LHS)
	if !r.m.IsOpId(head) {
		return fmt.Errorf("rewrite: equation head is not an operation: %s", head)
	}
	rl := &rule{
		vars: make(map[*aterm.Term]bool, len(e.Vars)),
		lhs:  r.ToInternal(e.LHS),
		rhs:  r.ToInternal(e.RHS),
	}
	for _, v := range e.Vars {
		rl.vars[v] = true
	}
	if e.Cond != nil && !r.m.IsTrue(e.Cond) && !r.m.IsNil(e.Cond) {
		rl.cond = r.ToInternal(e.Cond)
	}
	r.rules[head] = append(r.rules[head], rl)
	return nil
}

// SetSubstitution binds a variable to an already-internal term for the
// duration of subsequent Rewrite calls.
func (r *Rewriter) SetSubstitution(v, internal *aterm.Term) {
	r.env[v] = internal
}

// ClearSubstitution removes the binding of v.
func (r *Rewriter) ClearSubstitution(v *aterm.Term) {
	delete(r.env, v)
}

// ClearAllSubstitutions empties the substitution context.
func (r *Rewriter) ClearAllSubstitutions() {
	r.env = make(map[*aterm.Term]*aterm.Term)
}

// decompose splits an internal node into head and argument slice.
// The ok result is false for variables, literals and other leaves.
func (r *Rewriter) decompose(t *aterm.Term) (*aterm.Term, []*aterm.Term, bool) {
	switch r.strategy {
	case StrategyInner:
		if t.Kind() == aterm.KindAppl && t.Function() == r.innerSym {
			l := t.Arg(1)
			return t.Arg(0), aterm.Slice(l), true
		}
	default:
		if sym := t.Function(); t.Kind() == aterm.KindAppl {
			if head, ok := r.applHead[sym]; ok {
				return head, t.Args(), true
			}
		}
	}
	if r.m.IsOpId(t) {
		return t, nil, true
	}
	return nil, nil, false
}

// rebuild is the inverse of decompose.
func (r *Rewriter) rebuild(head *aterm.Term, args []*aterm.Term) *aterm.Term {
	if len(args) == 0 {
		return head
	}
	switch r.strategy {
	case StrategyInner:
		return r.m.Store.MakeAppl(r.innerSym, head, r.m.Store.List(args...))
	default:
		key := applKey{head, len(args)}
		sym, ok := r.applSyms[key]
		if !ok {
			name := fmt.Sprintf("@rewr_appl#%d#%d", len(r.applSyms), len(args))
			sym = r.m.Store.MakeSymbol(name, len(args), false)
			r.applSyms[key] = sym
			r.applHead[sym] = head
		}
		return r.m.Store.MakeAppl(sym, args...)
	}
}

// ToInternal converts a data expression to the strategy's internal form.
// Closed sub-conversions are cached idempotently.
func (r *Rewriter) ToInternal(t *aterm.Term) *aterm.Term {
	if c, ok := r.toCache[t]; ok {
		return c
	}
	var out *aterm.Term
	m := r.m
	switch {
	case m.IsDataAppl(t):
		head := m.HeadOf(t)
		args := m.ArgsOf(t)
		iargs := make([]*aterm.Term, len(args))
		for i, a := range args {
			iargs[i] = r.ToInternal(a)
		}
		out = r.rebuild(r.ToInternal(head), iargs)
	case m.IsNumber(t):
		e, err := m.NumberExpr(t)
		if err != nil {
			out = t
		} else {
			out = r.ToInternal(e)
		}
	default:
		// Variables, operation identifiers and binder-headed terms are
		// their own internal form.
		out = t
	}
	r.toCache[t] = out
	return out
}

// FromInternal converts an internal term back to user syntax.
func (r *Rewriter) FromInternal(t *aterm.Term) *aterm.Term {
	if c, ok := r.fromCache[t]; ok {
		return c
	}
	out := t
	if head, args, ok := r.decompose(t); ok && len(args) > 0 {
		ext := make([]*aterm.Term, len(args))
		for i, a := range args {
			ext[i] = r.FromInternal(a)
		}
		out = r.m.Apply(r.FromInternal(head), ext...)
	}
	r.fromCache[t] = out
	return out
}

// Rewrite normalises an internal term: every subterm is normalised before
// rules are attempted at its position, and the result is in normal form
// for closed terms.
func (r *Rewriter) Rewrite(t *aterm.Term) *aterm.Term {
	m := r.m
	if m.IsDataVarId(t) {
		if b, ok := r.env[t]; ok {
			return b
		}
		return t
	}
	head, args, ok := r.decompose(t)
	if !ok {
		return t
	}
	nargs := make([]*aterm.Term, len(args))
	for i, a := range args {
		nargs[i] = r.Rewrite(a)
	}
	return r.rewriteHead(head, nargs)
}

// rewriteHead repeatedly fires rules at the root until none applies.
func (r *Rewriter) rewriteHead(head *aterm.Term, args []*aterm.Term) *aterm.Term {
	for steps := 0; ; steps++ {
		fired := false
		for _, rl := range r.rules[head] {
			binding := make(map[*aterm.Term]*aterm.Term)
			if !r.match(rl.lhs, r.rebuild(head, args), rl.vars, binding) {
				continue
			}
			if rl.cond != nil {
				c := r.Rewrite(r.instantiate(rl.cond, binding))
				if !r.m.IsTrue(c) {
					continue
				}
			}
			result := r.Rewrite(r.instantiate(rl.rhs, binding))
			nh, nargs, ok := r.decompose(result)
			if !ok {
				return result
			}
			head, args = nh, nargs
			fired = true
			break
		}
		if !fired {
			return r.rebuild(head, args)
		}
	}
}

// match unifies a linear first-order pattern with a subject. Variables
// occur on the pattern side only; a repeated variable must bind equal
// subjects, which costs one pointer compare.
func (r *Rewriter) match(pat, sub *aterm.Term, vars map[*aterm.Term]bool, binding map[*aterm.Term]*aterm.Term) bool {
	if vars[pat] {
		if prev, ok := binding[pat]; ok {
			return prev == sub
		}
		binding[pat] = sub
		return true
	}
	if pat == sub {
		return true
	}
	ph, pargs, pok := r.decompose(pat)
	sh, sargs, sok := r.decompose(sub)
	if !pok || !sok || ph != sh || len(pargs) != len(sargs) {
		return false
	}
	for i := range pargs {
		if !r.match(pargs[i], sargs[i], vars, binding) {
			return false
		}
	}
	return true
}

// instantiate substitutes a binding into an internal term.
func (r *Rewriter) instantiate(t *aterm.Term, binding map[*aterm.Term]*aterm.Term) *aterm.Term {
	if b, ok := binding[t]; ok {
		return b
	}
	head, args, ok := r.decompose(t)
	if !ok || len(args) == 0 {
		return t
	}
	nargs := make([]*aterm.Term, len(args))
	changed := false
	for i, a := range args {
		nargs[i] = r.instantiate(a, binding)
		if nargs[i] != a {
			changed = true
		}
	}
	nhead := r.instantiate(head, binding)
	if !changed && nhead == head {
		return t
	}
	return r.rebuild(nhead, nargs)
}

// RewriteExpr is the round trip: user syntax in, normal form out.
func (r *Rewriter) RewriteExpr(t *aterm.Term) *aterm.Term {
	return r.FromInternal(r.Rewrite(r.ToInternal(t)))
}
