// Package cfr implements the solver core: a compact game-tree representation,
// the CFR/MCCFR iteration family, and best-response/exploitability analysis for
// two-player zero-sum imperfect-information extensive-form games with chance.
package cfr

import "fmt"

// Player tags the acting side at a node. Payoffs are always expressed from P1's
// perspective; payoff(P2) = -payoff(P1).
type Player uint8

const (
	P1 Player = iota
	P2
	Chance
)

func (p Player) String() string {
	switch p {
	case P1:
		return "P1"
	case P2:
		return "P2"
	case Chance:
		return "Chance"
	default:
		return "unknown"
	}
}

// Opponent returns the other player. Calling it on Chance is a programming error.
func (p Player) Opponent() Player {
	switch p {
	case P1:
		return P2
	case P2:
		return P1
	default:
		panic("cfr: Opponent called on Chance")
	}
}

// Action is an opaque small value defined by the Game. Actions at chance nodes
// and player nodes share the same value space but are never compared across
// node kinds.
type Action uint8

// State identifies a concrete history, including both players' private
// information. It is only used to key per-state data during best-response
// computation (C7); the core never inspects its bits. Its dynamic type must
// be comparable, since States are used as map keys.
type State any

// InfoSet identifies what the acting player knows at a node: their private
// information plus the public history. Multiple States can share one InfoSet —
// that is precisely what makes the game imperfect-information. Values must be
// hashable and are used verbatim as map/perfect-hash keys, so implementations
// should make Key() stable and collision-free across distinct info sets.
type InfoSet interface {
	// Key returns a byte-stable identifier suitable for hashing.
	Key() []byte
}

// Game is the full contract a concrete extensive-form game exposes to the
// solver core. The core never inspects a game's internal state beyond this
// interface; game rules, card evaluation, and hand abstraction are the caller's
// responsibility, not the solver's.
//
// Implementations are mutated in place by Play/Undo while the tree is walked
// depth-first, mirroring the source's recursive builder: reset() once, then
// play/undo along a single root-to-leaf path at a time.
type Game interface {
	// MaxPlayerActions bounds the number of actions at any player node.
	MaxPlayerActions() int
	// MaxChanceActions bounds the number of actions at any chance node.
	MaxChanceActions() int

	// Reset returns the game to its initial state.
	Reset()

	// CurrentPlayer reports whose turn it is; Chance at stochastic events.
	CurrentPlayer() Player
	// IsChance is equivalent to CurrentPlayer() == Chance.
	IsChance() bool
	// GameOver is true iff the current history is terminal.
	GameOver() bool

	// InfoSetFor returns the given player's knowledge at the current history.
	// It is meaningful only when player is the acting player or, for best
	// response, the non-acting player being queried via InfoSetsAndActions.
	InfoSetFor(player Player) InfoSet

	// Actions fills out with the legal actions in canonical, stable order and
	// returns the count. len(out) must be >= MaxPlayerActions()/MaxChanceActions().
	Actions(out []Action) int
	// Probabilities fills out with integer chance weights parallel to the
	// actions most recently returned by Actions; only valid at chance nodes.
	// Weights may be any positive values; the tree builder normalizes them.
	Probabilities(out []int) int

	// Play applies action a, advancing the current history.
	Play(a Action)
	// Undo reverses the most recent Play(a), restoring the prior history
	// exactly: undo(play(a)) is the identity.
	Undo(a Action)

	// Payoff returns the signed P1-perspective payoff at a terminal history.
	// It is only valid when GameOver() is true.
	Payoff() int

	// GetState returns an opaque identifier for the current history.
	GetState() State
	// SampleAction draws a single chance action according to Probabilities.
	// Only valid at chance nodes; used by naive Monte-Carlo baselines.
	SampleAction() Action
}

// StateGame is the superset of Game required by best-response computation
// (C7), which must aggregate values across every State sharing an InfoSet.
type StateGame interface {
	Game

	// InfoSetsAndActions returns, for the given state and player, the sequence
	// of (InfoSet, Action) pairs that player's strategy traverses in arriving
	// at state. It is static/pure and does not mutate the game.
	InfoSetsAndActions(s State, player Player) []InfoSetAction

	// ChanceReachProbability returns the product of chance probabilities along
	// the root-to-state path. It is static/pure.
	ChanceReachProbability(s State) float64
}

// InfoSetAction pairs an information set with the action taken from it, as
// produced by StateGame.InfoSetsAndActions.
type InfoSetAction struct {
	InfoSet InfoSet
	Action  Action
}

// ContractViolation indicates the caller's Game implementation broke an
// invariant the core relies on (fan-out bounds, negative chance weights,
// payoff queried off a non-terminal node, and so on). The core never treats
// these as recoverable; callers are expected to fix the Game, not catch this.
type ContractViolation struct {
	Op     string
	Detail string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("cfr: game contract violation in %s: %s", e.Op, e.Detail)
}

func violate(op, format string, args ...any) {
	panic(&ContractViolation{Op: op, Detail: fmt.Sprintf(format, args...)})
}
