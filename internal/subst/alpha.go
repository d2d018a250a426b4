package subst

import (
	"mcrl2/internal/aterm"
	"mcrl2/internal/syntax"
)

// AlphaConvert renames the sum variables that conflict with the ban set:
// a variable is renamed when it equals a banned variable, shares a name
// with one, or occurs free in a banned term. It returns the new variable
// list and the renaming pairs; with an empty ban set the input comes back
// untouched (law R3).
func AlphaConvert(a *Applier, sumVars *aterm.Term, bannedVars, bannedTerms []*aterm.Term) (*aterm.Term, Subst) {
	m := a.M
	var pairs Subst
	vars := aterm.Slice(sumVars)
	changed := false
	for i, v := range vars {
		if !conflicts(m, v, bannedVars, bannedTerms) {
			continue
		}
		fresh := a.Fresh.FreshVar(aterm.Name(m.VarName(v)), m.VarSort(v))
		pairs = append(pairs, Pair{Var: v, Repl: fresh})
		vars[i] = fresh
		changed = true
	}
	if !changed {
		return sumVars, nil
	}
	return m.Store.List(vars...), pairs
}

func conflicts(m *syntax.Maker, v *aterm.Term, bannedVars, bannedTerms []*aterm.Term) bool {
	name := m.VarName(v)
	for _, b := range bannedVars {
		if b == v || m.VarName(b) == name {
			return true
		}
	}
	for _, t := range bannedTerms {
		if OccursIn(m, v, t) {
			return true
		}
	}
	return false
}
