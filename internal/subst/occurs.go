package subst

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// OccursIn reports whether the variable v occurs free in t. The search
// uses pointer equality and short-circuits under shadowing binders.
func OccursIn(m *syntax.Maker, v, t *aterm.Term) bool {
	if t == v {
		return true
	}
	switch {
	case m.IsDataVarId(t), m.IsOpId(t), m.IsNumber(t):
		return false
	case m.IsBinder(t), m.IsSum(t):
		for _, b := range aterm.Slice(t.Arg(0)) {
			if b == v {
				return false
			}
		}
		return OccursIn(m, v, t.Arg(1))
	case m.IsWhr(t):
		for _, d := range aterm.Slice(t.Arg(1)) {
			if OccursIn(m, v, d.Arg(1)) {
				return true
			}
			if d.Arg(0) == v {
				return false
			}
		}
		return OccursIn(m, v, t.Arg(0))
	case t.IsList():
		return OccursInList(m, v, t)
	case t.IsInt():
		return false
	default:
		for i := 0; i < t.Arity(); i++ {
			if OccursIn(m, v, t.Arg(i)) {
				return true
			}
		}
		return false
	}
}

// OccursInList reports whether v occurs free in any element of l.
func OccursInList(m *syntax.Maker, v, l *aterm.Term) bool {
	for ; !l.IsEmpty(); l = aterm.Tail(l) {
		if OccursIn(m, v, aterm.Head(l)) {
			return true
		}
	}
	return false
}

// OccursInProc reports whether v occurs in a pCRL process term. With
// strict set, sum-bound occurrences of v count too (used to detect name
// clashes rather than free occurrences).
func OccursInProc(m *syntax.Maker, v, p *aterm.Term, strict bool) bool {
	switch {
	case m.IsChoice(p), m.IsSeq(p), m.IsMerge(p), m.IsLMerge(p), m.IsSync(p):
		return OccursInProc(m, v, p.Arg(0), strict) || OccursInProc(m, v, p.Arg(1), strict)
	case m.IsCond(p):
		return OccursIn(m, v, p.Arg(0)) ||
			OccursInProc(m, v, p.Arg(1), strict) || OccursInProc(m, v, p.Arg(2), strict)
	case m.IsSum(p):
		if !strict {
			for _, b := range aterm.Slice(p.Arg(0)) {
				if b == v {
					return false
				}
			}
		} else if aterm.Member(p.Arg(0), v) {
			return true
		}
		return OccursInProc(m, v, p.Arg(1), strict)
	case m.IsAtTime(p):
		return OccursInProc(m, v, p.Arg(0), strict) || OccursIn(m, v, p.Arg(1))
	case m.IsProcess(p):
		return OccursInList(m, v, p.Arg(1))
	case m.IsAction(p):
		return OccursInList(m, v, m.ActionArgs(p))
	case m.IsMultAct(p):
		if m.IsDelta(p) {
			return false
		}
		for _, act := range aterm.Slice(p.Arg(0)) {
			if OccursInList(m, v, m.ActionArgs(act)) {
				return true
			}
		}
		return false
	case m.IsHide(p), m.IsBlock(p), m.IsRename(p), m.IsComm(p), m.IsAllow(p):
		return OccursInProc(m, v, p.Arg(1), strict)
	default:
		return false
	}
}

// OccursInSummand reports whether v occurs in the condition, action, time
// or assignment right-hand sides of a summand.
func OccursInSummand(m *syntax.Maker, v, smd *aterm.Term) bool {
	if OccursIn(m, v, smd.Arg(1)) {
		return true
	}
	ma := smd.Arg(2)
	if m.IsMultAct(ma) {
		for _, act := range aterm.Slice(ma.Arg(0)) {
			if OccursInList(m, v, m.ActionArgs(act)) {
				return true
			}
		}
	}
	if !m.IsNil(smd.Arg(3)) && OccursIn(m, v, smd.Arg(3)) {
		return true
	}
	if smd.Arg(4).IsList() {
		for _, asg := range aterm.Slice(smd.Arg(4)) {
			if OccursIn(m, v, asg.Arg(1)) {
				return true
			}
		}
	}
	return false
}
