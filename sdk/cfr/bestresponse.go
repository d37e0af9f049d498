package cfr

import (
	"math"
	"sort"
)

// exploitabilityGuardEpsilon is the |v| threshold below which exploitability's
// normalization is skipped (see Exploitability). Dividing by a near-zero
// game value blows the metric up to an uninformative spike in symmetric
// games such as Rock-Paper-Scissors, whose equilibrium value is exactly 0.
const exploitabilityGuardEpsilon = 1e-6

// valueUnderStrategy returns the expected P1-perspective value of every node
// when both players follow strategy, via a single postorder pass over tree
// (descending node index, which is always a valid postorder since every
// child's index exceeds its parent's). No information-set aggregation is
// needed here: evaluating a fixed strategy's value at a node only consults
// that node's own action distribution, never requires comparing it against
// sibling histories in the same info set.
func valueUnderStrategy(tree *Tree, strategy *Strategy) []float64 {
	values := make([]float64, tree.NumNodes())
	for i := tree.NumNodes() - 1; i >= 0; i-- {
		if tree.IsTerminal(i) {
			values[i] = float64(tree.Payoff(i))
			continue
		}
		n := tree.NumChildren(i)
		if tree.Kind(i) == Chance {
			var v float64
			for a := 0; a < n; a++ {
				v += tree.ChildProbability(i, a) * values[tree.Child(i, a)]
			}
			values[i] = v
			continue
		}

		_, probs := strategy.GetStrategy(infoSetKeyView(tree.InfoSetKey(i)))
		var v float64
		for a := 0; a < n; a++ {
			p := 1.0 / float64(n)
			if probs != nil {
				p = probs[a]
			}
			v += p * values[tree.Child(i, a)]
		}
		values[i] = v
	}
	return values
}

// infoSetKeyView adapts a raw tree-stored key back into the InfoSet
// interface Strategy.GetStrategy expects, without needing the original
// Game's InfoSet type: the key bytes are all either side of that interface
// ever compares.
type infoSetKeyView []byte

func (k infoSetKeyView) Key() []byte { return k }

// BestResponse computes a deterministic policy maximizing target's expected
// payoff against strategy, returning the P1-perspective value of the
// resulting game and the chosen action per info-set key.
//
// It aggregates over every State sharing an info set, per §4.6: target's
// decision at one info set must be identical across every history that
// conflates into it, so the action is chosen once per info set by summing
// reach-weighted child values across all its member states, not locally per
// tree node.
func BestResponse(tree *Tree, game StateGame, strategy *Strategy, target Player) (value float64, policy map[string]Action) {
	values := make([]float64, tree.NumNodes())
	decided := make(map[string]int) // info-set key -> chosen action index
	policy = make(map[string]Action)

	opponent := target.Opponent()
	sign := 1.0
	if target == P2 {
		sign = -1.0
	}

	// Visit nodes deepest first (ties in ascending index order), so every
	// node at one depth is handled only after all nodes one level deeper.
	depth := make([]int, tree.NumNodes())
	order := make([]int, tree.NumNodes())
	for i := range order {
		order[i] = i
		for a := 0; a < tree.NumChildren(i); a++ {
			depth[tree.Child(i, a)] = depth[i] + 1
		}
	}
	sort.SliceStable(order, func(x, y int) bool { return depth[order[x]] > depth[order[y]] })

	for _, i := range order {
		if tree.IsTerminal(i) {
			values[i] = float64(tree.Payoff(i))
			continue
		}
		n := tree.NumChildren(i)
		kind := tree.Kind(i)

		if kind == Chance {
			var v float64
			for a := 0; a < n; a++ {
				v += tree.ChildProbability(i, a) * values[tree.Child(i, a)]
			}
			values[i] = v
			continue
		}

		if kind != target {
			_, probs := strategy.GetStrategy(infoSetKeyView(tree.InfoSetKey(i)))
			var v float64
			for a := 0; a < n; a++ {
				p := 1.0 / float64(n)
				if probs != nil {
					p = probs[a]
				}
				v += p * values[tree.Child(i, a)]
			}
			values[i] = v
			continue
		}

		key := string(tree.InfoSetKey(i))
		best, ok := decided[key]
		if !ok {
			best = decideInfoSet(tree, game, strategy, values, key, opponent, sign, n)
			decided[key] = best
			policy[key] = tree.Action(i, best)
		}
		values[i] = values[tree.Child(i, best)]
	}

	return values[0], policy
}

// decideInfoSet aggregates reach-weighted child values across every State
// sharing the info set named by key and returns the index of the
// highest-value action, ties broken toward the smallest index. BestResponse
// calls it at the first member of the info set its depth-ordered scan
// reaches; by then every node one level deeper holds a final value in
// values, so the children of every member at that same depth are final too.
// Members of one info set are assumed to share a depth, as they do in the
// games in this repository.
func decideInfoSet(tree *Tree, game StateGame, strategy *Strategy, values []float64, key string, opponent Player, sign float64, n int) int {
	totals := make([]float64, n)

	for _, s := range tree.StatesForInfoSet([]byte(key)) {
		reach := game.ChanceReachProbability(s)
		for _, ia := range game.InfoSetsAndActions(s, opponent) {
			actions, probs := strategy.GetStrategy(ia.InfoSet)
			idx := actionIndex(actions, ia.Action)
			if idx < 0 || probs == nil {
				reach = 0
				break
			}
			reach *= probs[idx]
		}
		if reach == 0 {
			continue
		}

		node, ok := tree.NodeForState(s)
		if !ok {
			continue
		}
		for a := 0; a < n; a++ {
			totals[a] += reach * sign * values[tree.Child(node, a)]
		}
	}

	best := 0
	for a := 1; a < n; a++ {
		if totals[a] > totals[best] {
			best = a
		}
	}
	return best
}

func actionIndex(actions []Action, a Action) int {
	for i, x := range actions {
		if x == a {
			return i
		}
	}
	return -1
}

// Exploitability reports the average one-sided gain either player achieves
// by unilaterally deviating from strategy to a best response, normalized by
// the magnitude of strategy's own game value.
//
// When |v| falls below exploitabilityGuardEpsilon — as it does for
// symmetric zero-sum games such as Rock-Paper-Scissors, whose equilibrium
// value is exactly 0 — dividing by it would blow an already-near-zero
// numerator up into noise. In that regime this returns the unnormalized
// numerator (v1-v)+(v-v2) halved instead, per the decision recorded for this
// open question: a reasonable reading of "the source divides anyway" is
// that the guard exists precisely so implementers stop doing that.
func Exploitability(tree *Tree, game StateGame, strategy *Strategy) float64 {
	v := valueUnderStrategy(tree, strategy)[0]
	v1, _ := BestResponse(tree, game, strategy, P1)
	v2, _ := BestResponse(tree, game, strategy, P2)

	num := (math.Abs(v1-v) + math.Abs(v-v2)) / 2
	if math.Abs(v) < exploitabilityGuardEpsilon {
		return num
	}
	return num / math.Abs(v)
}
