package cfr

// Tree is a flat, pointer-free snapshot of the entire reachable game state
// space rooted at a Game's initial history. It is built once by Build and is
// thereafter immutable; many CFR/MCCFR iterations read it concurrently with no
// synchronization, which is only safe because every field here is a plain
// index into a contiguous array rather than a pointer into a live object
// graph.
//
// Node i's kind and fan-out are packed into a single uint32 (see packKindFanout):
// the low 2 bits hold the Player tag, the remaining bits hold the fan-out.
// Fan-out 0 marks a terminal node; its payoff is stashed in childStart[i]
// rather than wasting a dedicated array.
type Tree struct {
	kindFanout []uint32
	childStart []int32
	children   []int32
	actionsFor []Action
	probFor    []float64
	infoKey    [][]byte

	// statesByInfoSet maps an InfoSet's Key() to every State observed to share
	// it, populated during the build when the Game also implements StateGame.
	// Best response (C7) uses this to aggregate over histories an info set
	// conflates.
	statesByInfoSet map[string][]State
	// nodeForState is the inverse of GetState(): it recovers the tree node a
	// given State was recorded at, so best response can look up a member
	// state's own children after aggregating reach across its info set.
	nodeForState map[State]int32
}

const (
	kindBits       = 2
	kindMask       = 1<<kindBits - 1
	terminalFanout = 0
)

func packKindFanout(kind Player, fanout int) uint32 {
	return uint32(kind)&kindMask | uint32(fanout)<<kindBits
}

// NumNodes returns the total number of nodes in the tree, including the root
// (index 0), internal nodes, and terminals.
func (t *Tree) NumNodes() int { return len(t.kindFanout) }

// Kind returns the node's tag: P1, P2, or Chance. It is meaningless for
// terminal nodes (callers should check IsTerminal first).
func (t *Tree) Kind(node int) Player {
	return Player(t.kindFanout[node] & kindMask)
}

// IsTerminal reports whether node has zero fan-out.
func (t *Tree) IsTerminal(node int) bool {
	return t.kindFanout[node]>>kindBits == terminalFanout
}

// NumChildren returns the node's fan-out; 0 for terminals.
func (t *Tree) NumChildren(node int) int {
	return int(t.kindFanout[node] >> kindBits)
}

// Child returns the node index of the i-th child of node.
func (t *Tree) Child(node, i int) int {
	start := t.childStart[node]
	return int(t.children[int(start)+i])
}

// Action returns the action label of the i-th child of node.
func (t *Tree) Action(node, i int) Action {
	start := t.childStart[node]
	return t.actionsFor[int(start)+i]
}

// ChildProbability returns the precomputed, normalized chance probability of
// reaching the i-th child. Only meaningful when Kind(node) == Chance.
func (t *Tree) ChildProbability(node, i int) float64 {
	start := t.childStart[node]
	return t.probFor[int(start)+i]
}

// Payoff returns the signed P1-perspective payoff stored at a terminal node.
func (t *Tree) Payoff(node int) int {
	return int(t.childStart[node])
}

// InfoSetKey returns the byte-stable info-set key recorded for node, or nil if
// node is a chance or terminal node (info sets are only meaningful at player
// nodes).
func (t *Tree) InfoSetKey(node int) []byte {
	return t.infoKey[node]
}

// StatesForInfoSet returns every State observed to share the given info-set
// key during the tree build. It is empty unless the Game used to build the
// tree also implemented StateGame.
func (t *Tree) StatesForInfoSet(key []byte) []State {
	return t.statesByInfoSet[string(key)]
}

// NodeForState returns the tree node that was recorded at the given State
// during the build, or false if s was never observed (or the Game did not
// implement StateGame).
func (t *Tree) NodeForState(s State) (int, bool) {
	n, ok := t.nodeForState[s]
	return int(n), ok
}

// builder accumulates the flat arrays during a single recursive DFS over a
// Game. It exists separately from Tree so Build can return an immutable value
// once construction completes.
type builder struct {
	game Game

	kindFanout []uint32
	childStart []int32
	children   []int32
	actionsFor []Action
	probFor    []float64
	infoKey    [][]byte

	statesByInfoSet map[string][]State
	nodeForState    map[State]int32
	onPath          map[State]bool

	maxPlayerActions int
	maxChanceActions int
}

// Build performs a recursive depth-first walk of g starting from its initial
// state and returns the resulting flat tree. g is mutated in place via
// Play/Undo during the walk and is left in its initial state (Reset) when
// Build returns.
//
// Build panics with a *ContractViolation if g's fan-out exceeds its declared
// bounds or if the same State recurs along a single root-to-node path (a
// cycle). Both indicate a broken Game implementation, not a recoverable
// runtime condition.
func Build(g Game) *Tree {
	g.Reset()
	b := &builder{
		game:             g,
		statesByInfoSet:  make(map[string][]State),
		nodeForState:     make(map[State]int32),
		onPath:           make(map[State]bool),
		maxPlayerActions: g.MaxPlayerActions(),
		maxChanceActions: g.MaxChanceActions(),
	}
	b.visit()
	g.Reset()

	return &Tree{
		kindFanout:      b.kindFanout,
		childStart:      b.childStart,
		children:        b.children,
		actionsFor:      b.actionsFor,
		probFor:         b.probFor,
		infoKey:         b.infoKey,
		statesByInfoSet: b.statesByInfoSet,
		nodeForState:    b.nodeForState,
	}
}

// visit records the current history as a new node, recurses over its
// children, and returns the node's index. Node indices are assigned in
// preorder, so every child index is strictly greater than its parent's —
// the invariant that lets solvers traverse the tree iteratively if desired.
func (b *builder) visit() int {
	g := b.game

	if sg, ok := g.(StateGame); ok {
		st := sg.GetState()
		if b.onPath[st] {
			violate("Build", "cycle detected: state repeats along root-to-node path")
		}
		b.onPath[st] = true
		defer delete(b.onPath, st)
	}

	idx := len(b.kindFanout)
	b.kindFanout = append(b.kindFanout, 0) // placeholder, patched below
	b.childStart = append(b.childStart, 0)
	b.infoKey = append(b.infoKey, nil)

	if g.GameOver() {
		b.kindFanout[idx] = packKindFanout(P1, terminalFanout)
		b.childStart[idx] = int32(g.Payoff())
		return idx
	}

	kind := g.CurrentPlayer()
	bound := b.maxPlayerActions
	if kind == Chance {
		bound = b.maxChanceActions
	}

	actions := make([]Action, bound)
	n := g.Actions(actions)
	if n <= 0 {
		violate("Build", "non-terminal node at player %s returned zero actions", kind)
	}
	if n > bound {
		violate("Build", "fan-out %d exceeds bound %d for player %s", n, bound, kind)
	}
	actions = actions[:n]

	if kind != Chance {
		b.infoKey[idx] = g.InfoSetFor(kind).Key()
	}

	var probs []float64
	if kind == Chance {
		weights := make([]int, n)
		m := g.Probabilities(weights)
		if m != n {
			violate("Build", "chance probabilities count %d does not match action count %d", m, n)
		}
		total := 0
		for _, w := range weights {
			if w < 0 {
				violate("Build", "negative chance weight %d", w)
			}
			total += w
		}
		if total <= 0 {
			violate("Build", "chance weights sum to non-positive total %d", total)
		}
		probs = make([]float64, n)
		for i, w := range weights {
			probs[i] = float64(w) / float64(total)
		}
	}

	childStart := len(b.children)
	b.childStart[idx] = int32(childStart)
	b.children = append(b.children, make([]int32, n)...)
	b.actionsFor = append(b.actionsFor, actions...)
	if kind == Chance {
		b.probFor = append(b.probFor, probs...)
	} else {
		b.probFor = append(b.probFor, make([]float64, n)...)
	}

	if kind != Chance {
		if sg, ok := g.(StateGame); ok {
			st := sg.GetState()
			key := string(b.infoKey[idx])
			b.statesByInfoSet[key] = append(b.statesByInfoSet[key], st)
			b.nodeForState[st] = int32(idx)
		}
	}

	for i, a := range actions {
		g.Play(a)
		childIdx := b.visit()
		g.Undo(a)
		b.children[childStart+i] = int32(childIdx)
	}

	b.kindFanout[idx] = packKindFanout(kind, n)
	return idx
}
