package cfr

// fullCFR performs one full-tree CFR pass for a single updating player: every
// node is visited under the current reach probabilities, but only the
// updating player's information sets receive a regret/strategy accumulation
// this iteration. The opposing player's nodes are still expanded (their
// current strategy is read to weight the recursion correctly) but contribute
// no write. Iterations alternate the updating player across odd/even
// iteration numbers; see Solver.Run.
//
// Per-node scratch (strategy, child utilities, deltas) is always a local,
// fixed-width stack array, never a field on this struct: the recursion
// revisits the same struct instance at every depth, so a shared buffer would
// be clobbered by a child's own use of it before the parent finished reading
// its own values back out.
type fullCFR struct {
	tree    *Tree
	table   *InfoSetTable
	w       weights
	pruneEV float64 // prune when both reach probabilities fall below this
}

func newFullCFR(tree *Tree, table *InfoSetTable, v Variant, dcfr DCFRParams, pruneEps float64) *fullCFR {
	return &fullCFR{
		tree:    tree,
		table:   table,
		w:       newWeights(v, dcfr),
		pruneEV: pruneEps,
	}
}

// run walks node and returns its expected P1-perspective utility under pi1,
// pi2, pic — the reach probabilities of P1, P2, and chance respectively along
// the path taken to reach node. t is the 1-based iteration number, used by
// Linear/CFR+/DCFR's weight functions. updating names the player whose
// information sets accumulate deltas this iteration.
func (c *fullCFR) run(node int, updating Player, pi1, pi2, pic float64, t int) float64 {
	tree := c.tree

	if tree.IsTerminal(node) {
		return float64(tree.Payoff(node))
	}

	if !c.w.variant.ClampsRegret() && pi1 < c.pruneEV && pi2 < c.pruneEV {
		return 0
	}

	kind := tree.Kind(node)
	if kind == Chance {
		return c.runChance(node, updating, pi1, pi2, pic, t)
	}
	return c.runPlayer(node, kind, updating, pi1, pi2, pic, t)
}

func (c *fullCFR) runChance(node int, updating Player, pi1, pi2, pic float64, t int) float64 {
	tree := c.tree
	n := tree.NumChildren(node)
	var ev float64
	for i := 0; i < n; i++ {
		p := tree.ChildProbability(node, i)
		if p <= 0 {
			continue
		}
		child := tree.Child(node, i)
		ev += p * c.run(child, updating, pi1, pi2, pic*p, t)
	}
	return ev
}

func (c *fullCFR) runPlayer(node int, kind, updating Player, pi1, pi2, pic float64, t int) float64 {
	tree := c.tree
	n := tree.NumChildren(node)
	slot := c.table.SlotFor(node)

	var stratArr [maxActionSlots]float64
	strat := stratArr[:n]
	c.table.CurrentStrategy(slot, strat)

	var utilArr [maxActionSlots]float64
	util := utilArr[:n]
	var nodeUtil float64
	for i := 0; i < n; i++ {
		child := tree.Child(node, i)
		var cu float64
		if kind == P1 {
			cu = c.run(child, updating, pi1*strat[i], pi2, pic, t)
		} else {
			cu = c.run(child, updating, pi1, pi2*strat[i], pic, t)
		}
		util[i] = cu
		nodeUtil += strat[i] * cu
	}

	if kind != updating {
		return nodeUtil
	}

	// Counterfactual reach probability: the product of the opponent's and
	// chance's reach, excluding the acting player's own contribution.
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

	strategyDelta := util // util's values are already folded into nodeUtil; safe to overwrite
	sw := c.w.strategyWeight(t) * ownReach
	for i := 0; i < n; i++ {
		strategyDelta[i] = sw * strat[i]
	}

	c.table.Accumulate(slot, regretDelta, strategyDelta)

	return nodeUtil
}
