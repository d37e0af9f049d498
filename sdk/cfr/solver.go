package cfr

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cfrsolver/internal/randutil"
)

// Solver drives CFR/MCCFR iterations against a fixed Tree and InfoSetTable.
// A Solver is reusable: calling Run again continues from the iteration
// counter's current value rather than resetting it.
type Solver struct {
	tree  *Tree
	table *InfoSetTable
	cfg   SolverConfig
	clock quartz.Clock

	iteration atomic.Int64
}

// NewSolver builds the info-set table for tree and returns a Solver ready to
// run against it. cfg is validated first; an invalid config is reported as
// the returned error, not a panic.
func NewSolver(tree *Tree, cfg SolverConfig) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := BuildInfoSetTable(tree, cfg.Variant.ClampsRegret())
	if err != nil {
		return nil, err
	}
	return &Solver{
		tree:  tree,
		table: table,
		cfg:   cfg,
		clock: quartz.NewReal(),
	}, nil
}

// Table returns the solver's info-set table, for callers that want to build
// a Strategy (C6) or run best response (C7) without re-solving.
func (s *Solver) Table() *InfoSetTable { return s.table }

// Iteration returns the number of iterations started so far; once Run
// returns, every one of them has completed.
func (s *Solver) Iteration() int { return int(s.iteration.Load()) }

// Run dispatches cfg.Iterations CFR or MCCFR iterations across cfg.Workers
// goroutines and blocks until they all complete, or ctx is cancelled. Each
// iteration picks its own 1-based, distinct iteration index via an atomic
// fetch-add and alternates the updating player by that index's parity:
// odd iterations update P1, even iterations update P2. monitor, if non-nil,
// is called roughly every cfg.ProgressEvery completed iterations.
func (s *Solver) Run(ctx context.Context, monitor Monitor) error {
	start := s.clock.Now()
	target := s.Iteration() + s.cfg.Iterations

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < s.cfg.Workers; w++ {
		// Derive each worker's stream from the run seed and its own worker
		// index through randutil's avalanche mix, rather than a plain
		// offset, so nearby seeds or worker counts don't produce
		// correlated pcg32 streams.
		workerSeed := randutil.New(int64(s.cfg.Seed)+int64(w)).Uint64()
		g.Go(func() error {
			return s.worker(ctx, workerSeed, target, start, monitor)
		})
	}
	return g.Wait()
}

func (s *Solver) worker(ctx context.Context, seed uint64, target int, start time.Time, monitor Monitor) error {
	var full *fullCFR
	var mc *mccfr
	if s.cfg.Method == FullTraversal {
		full = newFullCFR(s.tree, s.table, s.cfg.Variant, s.cfg.DCFR, s.cfg.PruneEpsilon)
	} else {
		mc = newMCCFR(s.tree, s.table, s.cfg.Variant, s.cfg.DCFR, s.cfg.Sampling, s.cfg.PruneEpsilon, seed)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := int(s.iteration.Add(1))
		if t > target {
			s.iteration.Add(-1)
			return nil
		}

		updating := P1
		if t%2 == 0 {
			updating = P2
		}

		if full != nil {
			full.run(0, updating, 1, 1, 1, t)
		} else {
			mc.run(0, updating, 1, 1, 1, 1, t)
		}

		if monitor != nil && s.cfg.ProgressEvery > 0 && t%s.cfg.ProgressEvery == 0 {
			monitor(Progress{
				Iteration: t,
				Target:    target,
				InfoSets:  s.table.Size(),
				Elapsed:   s.clock.Now().Sub(start),
			})
		}
	}
}
