package cfr

// Sampling selects which of the three Monte-Carlo CFR variants a worker's
// mccfr kernel runs. All three share C3's InfoSetTable and the weighting
// machinery in variant.go; they differ only in which nodes are enumerated
// versus sampled, and in what importance correction (if any) the sampled
// path needs.
type Sampling int

const (
	// External samples only the opponent's nodes and chance; the updating
	// player enumerates every action, same as full-tree CFR. This is the
	// default: it needs no importance correction and has the lowest variance
	// of the three.
	External Sampling = iota
	// Outcome samples every decision, including the updating player's,
	// tracking the joint sample probability and correcting by it.
	Outcome
	// Chance samples only chance nodes; both players enumerate fully. This
	// is vanilla CFR with chance outcomes drawn by Monte Carlo rather than
	// summed exactly.
	Chance
)

func (s Sampling) String() string {
	switch s {
	case External:
		return "external"
	case Outcome:
		return "outcome"
	case Chance:
		return "chance"
	default:
		return "unknown"
	}
}

// mccfr runs one sampled CFR iteration for a single updating player and owns
// the thread-local state (PRNG) a worker needs; it must never be shared
// across goroutines. Per-node scratch is always a local stack array, never a
// struct field — see the comment on fullCFR for why.
type mccfr struct {
	tree    *Tree
	table   *InfoSetTable
	w       weights
	mode    Sampling
	rng     *pcg32
	pruneEV float64
}

func newMCCFR(tree *Tree, table *InfoSetTable, v Variant, dcfr DCFRParams, mode Sampling, pruneEps float64, seed uint64) *mccfr {
	return &mccfr{
		tree:    tree,
		table:   table,
		w:       newWeights(v, dcfr),
		mode:    mode,
		rng:     newPCG32(seed),
		pruneEV: pruneEps,
	}
}

// run is the entry point for one sampled iteration, mirroring fullCFR.run's
// signature and return convention. q is the joint probability of every
// sampling decision made so far along this path; it only matters to Outcome,
// which divides the terminal payoff by it to correct for the sample bias.
func (c *mccfr) run(node int, updating Player, pi1, pi2, pic, q float64, t int) float64 {
	tree := c.tree

	if tree.IsTerminal(node) {
		u := float64(tree.Payoff(node))
		if c.mode == Outcome {
			return u / q
		}
		return u
	}

	if !c.w.variant.ClampsRegret() && pi1 < c.pruneEV && pi2 < c.pruneEV {
		return 0
	}

	kind := tree.Kind(node)
	if kind == Chance {
		return c.runChance(node, updating, pi1, pi2, pic, q, t)
	}
	return c.runPlayer(node, kind, updating, pi1, pi2, pic, q, t)
}

func (c *mccfr) runChance(node int, updating Player, pi1, pi2, pic, q float64, t int) float64 {
	tree := c.tree
	n := tree.NumChildren(node)

	var probsArr [maxActionSlots]float64
	probs := probsArr[:n]
	for i := 0; i < n; i++ {
		probs[i] = tree.ChildProbability(node, i)
	}
	i := c.rng.sample(probs)
	child := tree.Child(node, i)

	if c.mode == External {
		// Sampling probabilities cancel out in the counterfactual value
		// computation: no division by the drawn outcome's probability.
		return c.run(child, updating, pi1, pi2, pic, q, t)
	}
	return c.run(child, updating, pi1, pi2, pic*probs[i], q*probs[i], t)
}

func (c *mccfr) runPlayer(node int, kind, updating Player, pi1, pi2, pic, q float64, t int) float64 {
	tree := c.tree
	n := tree.NumChildren(node)
	slot := c.table.SlotFor(node)

	var stratArr [maxActionSlots]float64
	strat := stratArr[:n]
	c.table.CurrentStrategy(slot, strat)

	acting := kind == updating
	sampleThisNode := c.mode == Outcome || (c.mode != Chance && !acting)

	if !sampleThisNode {
		return c.enumeratePlayer(node, kind, updating, strat, n, pi1, pi2, pic, q, t)
	}

	i := c.rng.sample(strat)
	child := tree.Child(node, i)

	var childUtil float64
	if kind == P1 {
		childUtil = c.run(child, updating, pi1*strat[i], pi2, pic, q*strat[i], t)
	} else {
		childUtil = c.run(child, updating, pi1, pi2*strat[i], pic, q*strat[i], t)
	}

	// Outcome sampling accumulates only at the updating player's own node,
	// the same alternation-only discipline fullCFR and enumeratePlayer use:
	// the non-updating player's cumulative strategy is left untouched this
	// iteration and gets its turn on the iterations where it is updating.
	if c.mode == Outcome && acting {
		c.accumulateOutcomeSampled(slot, n, i, kind, pi1, pi2, pic, childUtil, q*strat[i], t)
	}

	return childUtil
}

// enumeratePlayer expands every action at node, as full-tree CFR does,
// either because node belongs to the updating player under external/chance
// sampling, or because both players enumerate under chance sampling.
func (c *mccfr) enumeratePlayer(node int, kind, updating Player, strat []float64, n int, pi1, pi2, pic, q float64, t int) float64 {
	tree := c.tree

	var utilArr [maxActionSlots]float64
	util := utilArr[:n]
	var nodeUtil float64
	for i := 0; i < n; i++ {
		child := tree.Child(node, i)
		var cu float64
		if kind == P1 {
			cu = c.run(child, updating, pi1*strat[i], pi2, pic, q, t)
		} else {
			cu = c.run(child, updating, pi1, pi2*strat[i], pic, q, t)
		}
		util[i] = cu
		nodeUtil += strat[i] * cu
	}

	if kind != updating {
		return nodeUtil
	}

	slot := c.table.SlotFor(node)
	var oppReach float64
	if kind == P1 {
		oppReach = pi2 * pic
	} else {
		oppReach = pi1 * pic
	}
	ownReach := pi1
	if kind == P2 {
		ownReach = pi2
	}

	var regretArr [maxActionSlots]float64
	regretDelta := regretArr[:n]
	for i := 0; i < n; i++ {
		inst := util[i] - nodeUtil
		if kind == P2 {
			inst = -inst
		}
		regretDelta[i] = c.w.regretWeight(t, inst) * oppReach * inst
	}

	strategyDelta := util
	sw := c.w.strategyWeight(t) * ownReach
	for i := 0; i < n; i++ {
		strategyDelta[i] = sw * strat[i]
	}
	c.table.Accumulate(slot, regretDelta, strategyDelta)

	return nodeUtil
}

// accumulateOutcomeSampled applies outcome sampling's importance-corrected
// regret delta for the one action actually sampled at the updating player's
// node: every other action gets zero delta this iteration. q is the joint
// sample probability through and including this node's own sampled action.
// childUtil already carries the terminal's 1/q correction for everything
// sampled deeper in the tree, so it is used directly as the instantaneous
// value, not divided again here.
func (c *mccfr) accumulateOutcomeSampled(slot, n, sampled int, kind Player, pi1, pi2, pic, childUtil, q float64, t int) {
	var oppReach float64
	if kind == P1 {
		oppReach = pi2 * pic
	} else {
		oppReach = pi1 * pic
	}
	ownReach := pi1
	if kind == P2 {
		ownReach = pi2
	}

	var regretArr, strategyArr [maxActionSlots]float64
	regretDelta := regretArr[:n]
	strategyDelta := strategyArr[:n]

	inst := childUtil
	if kind == P2 {
		inst = -childUtil
	}
	regretDelta[sampled] = c.w.regretWeight(t, inst) * oppReach * inst
	strategyDelta[sampled] = c.w.strategyWeight(t) * ownReach / q

	c.table.Accumulate(slot, regretDelta, strategyDelta)
}
