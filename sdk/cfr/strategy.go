package cfr

// Strategy is the averaged policy extracted from an InfoSetTable: for every
// player information set reached during solving, the normalized cumulative
// strategy vector, paired with the action labels it applies to. Once built
// it has no dependency on the Tree or InfoSetTable it was extracted from.
type Strategy struct {
	entries map[string]strategyEntry
	rng     *pcg32
}

type strategyEntry struct {
	actions []Action
	probs   []float64
}

// BuildStrategy performs the single-threaded pass over tree and table that
// produces the average strategy: every player node's InfoSet is visited at
// most once (later occurrences are skipped, since InfoSet consistency
// guarantees they'd produce the same action list and probabilities anyway).
func BuildStrategy(tree *Tree, table *InfoSetTable, seed uint64) *Strategy {
	s := &Strategy{
		entries: make(map[string]strategyEntry),
		rng:     newPCG32(seed),
	}

	for node := 0; node < tree.NumNodes(); node++ {
		if tree.IsTerminal(node) || tree.Kind(node) == Chance {
			continue
		}
		key := string(tree.InfoSetKey(node))
		if _, ok := s.entries[key]; ok {
			continue
		}

		n := tree.NumChildren(node)
		slot := table.SlotFor(node)
		probs := make([]float64, n)
		table.AverageStrategy(slot, probs)

		actions := make([]Action, n)
		for i := 0; i < n; i++ {
			actions[i] = tree.Action(node, i)
		}

		s.entries[key] = strategyEntry{actions: actions, probs: probs}
	}

	return s
}

// GetStrategy returns the probability distribution over infoSet's actions,
// in the same order as the actions returned alongside it. It returns nil if
// infoSet was never visited while building the strategy.
func (s *Strategy) GetStrategy(infoSet InfoSet) (actions []Action, probs []float64) {
	e, ok := s.entries[string(infoSet.Key())]
	if !ok {
		return nil, nil
	}
	return e.actions, e.probs
}

// GetAction samples a single action from infoSet's distribution. It panics
// if infoSet was never visited while building the strategy — callers should
// only query information sets reachable in the tree the strategy was built
// from.
func (s *Strategy) GetAction(infoSet InfoSet) Action {
	e, ok := s.entries[string(infoSet.Key())]
	if !ok {
		violate("Strategy.GetAction", "unknown info set %q", infoSet.Key())
	}
	return e.actions[s.rng.sample(e.probs)]
}

// Size returns the number of distinct information sets the strategy covers.
func (s *Strategy) Size() int { return len(s.entries) }
