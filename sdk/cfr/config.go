package cfr

import (
	"errors"
)

// Method selects between full-tree CFR (C4) and one of the Monte-Carlo
// sampling kernels (C5).
type Method uint8

const (
	FullTraversal Method = iota
	MonteCarlo
)

func (m Method) String() string {
	switch m {
	case FullTraversal:
		return "full"
	case MonteCarlo:
		return "montecarlo"
	default:
		return "unknown"
	}
}

// defaultPruneEpsilon is the ε below which both players' reach probabilities
// must fall before a branch is skipped. Treated as configurable per the
// pruning open question; this value is the one named as the intended
// default.
const defaultPruneEpsilon = 1e-6

// SolverConfig aggregates every parameter that controls a solving run. It is
// immutable once passed to NewSolver.
type SolverConfig struct {
	// Variant selects the regret/strategy weighting rule: Vanilla, Linear,
	// CFRPlus, or DCFR.
	Variant Variant
	// DCFR holds the three exponents used when Variant == DCFR. Ignored
	// otherwise. Zero value is invalid; use DefaultDCFRParams() as a base.
	DCFR DCFRParams

	// Method picks between a full-tree traversal and Monte-Carlo sampling.
	Method Method
	// Sampling selects which MCCFR kernel runs when Method == MonteCarlo.
	Sampling Sampling

	// Iterations is the total number of CFR iterations to run. Each
	// iteration updates a single alternating player.
	Iterations int
	// Workers is the number of goroutines dispatching iterations
	// concurrently. Must be >= 1.
	Workers int
	// Seed seeds every worker's thread-local PRNG stream; each worker's
	// actual seed is derived from it combined with the worker's index so
	// that distinct workers never share a stream.
	Seed uint64
	// PruneEpsilon is the reach-probability threshold below which a branch
	// is skipped for Vanilla/Linear/DCFR, by both the full-tree and the
	// Monte-Carlo kernels. CFR+ ignores it.
	PruneEpsilon float64

	// ProgressEvery, if > 0, invokes the Solver's Monitor after
	// approximately this many completed iterations (completion order across
	// workers is not sequential, so this is a spacing, not an exact count).
	// Zero disables periodic progress reporting.
	ProgressEvery int
}

// Validate reports whether c is well-formed enough to build a Solver from.
func (c SolverConfig) Validate() error {
	if c.Iterations <= 0 {
		return errors.New("iterations must be > 0")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.PruneEpsilon < 0 {
		return errors.New("prune epsilon cannot be negative")
	}
	if c.Method == MonteCarlo && c.Sampling > Chance {
		return errors.New("invalid sampling mode")
	}
	if c.Variant > DCFR {
		return errors.New("invalid variant")
	}
	return nil
}

// DefaultSolverConfig returns a single-threaded, vanilla full-traversal
// configuration suitable for small test games and as a base for overrides.
func DefaultSolverConfig() SolverConfig {
	return SolverConfig{
		Variant:      Vanilla,
		DCFR:         DefaultDCFRParams(),
		Method:       FullTraversal,
		Sampling:     External,
		Iterations:   1000,
		Workers:      1,
		Seed:         1,
		PruneEpsilon: defaultPruneEpsilon,
	}
}
