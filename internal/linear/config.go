package linear

import (
	"fmt"

	"mcrl2/internal/rewrite"
)

// LinMethod selects the control-flow encoding of §stacking/regularisation.
type LinMethod int

const (
	// MethodStack encodes continuations in a generated stack datatype.
	MethodStack LinMethod = iota
	// MethodRegular encodes the control state in one state parameter.
	MethodRegular
	// MethodRegular2 is regular with lazily interned reference sequences.
	MethodRegular2
)

// ParseLinMethod maps a flag value onto a LinMethod.
func ParseLinMethod(s string) (LinMethod, error) {
	switch s {
	case "stack":
		return MethodStack, nil
	case "regular":
		return MethodRegular, nil
	case "regular2":
		return MethodRegular2, nil
	}
	return 0, fmt.Errorf("unknown linearisation method %q", s)
}

// Config carries the linearisation options. DefaultConfig returns the
// defaults: regular method, enumerated state, intermediate clustering on,
// sum elimination on, rewriting on with the compact strategy. The zero
// value selects the stack method, the Pos state encoding and the inner
// strategy.
type Config struct {
	Method LinMethod

	// Rewriter selects the rewrite strategy used during linearisation.
	Rewriter rewrite.Strategy

	// FinalCluster applies clustering to the final result.
	FinalCluster bool

	// NoIntermediateCluster skips clustering between pipeline stages.
	NoIntermediateCluster bool

	// NewState selects the enumerated state encoding; when false the
	// state parameter is a Pos value (the old encoding).
	NewState bool

	// Binary uses a boolean tuple for the state; overrides NewState.
	Binary bool

	// NoSumElm disables sum elimination.
	NoSumElm bool

	// StateNames derives state constants from process names.
	StateNames bool

	// NoRewrite disables the rewriter during linearisation.
	NoRewrite bool

	// NoFreeVars forbids free data variables in emitted processes and
	// forces dummy constants instead.
	NoFreeVars bool

	// NoDeltaElimination disables the delta-summand collapse heuristic.
	NoDeltaElimination bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Method: MethodRegular, NewState: true, Rewriter: rewrite.StrategyCompact}
}

func (c Config) regular() bool { return c.Method != MethodStack }

// Validate rejects nonsensical flag combinations.
func (c Config) Validate() error {
	if c.Method == MethodStack && c.Binary {
		return fmt.Errorf("cannot combine stacks with binary state encoding")
	}
	if c.Method == MethodStack && c.NewState {
		return fmt.Errorf("cannot combine stacks with an enumerated state encoding")
	}
	return nil
}
