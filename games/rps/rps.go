// Package rps implements Rock-Paper-Scissors as a cfr.Game: P1 moves first,
// P2 moves second but shares a single information set across every one of
// P1's possible first moves, so P2 genuinely cannot distinguish which move
// P1 made — the standard trick for encoding simultaneous play as a
// sequential extensive-form game.
package rps

import "github.com/lox/cfrsolver/sdk/cfr"

// Action identifies one of the three throws; the value space is shared
// between P1 and P2.
const (
	Rock cfr.Action = iota
	Paper
	Scissors
)

var infoSetP1 = key("P1")
var infoSetP2 = key("P2")

// key is a byte-stable InfoSet for a game with only two decision points,
// neither of which needs to encode any history.
type key string

func (k key) Key() []byte { return []byte(k) }

// State names a complete history: which throw (if any) each player has
// committed to. -1 marks "not yet played".
type State struct {
	P1, P2 int8
}

// Game is a cfr.Game and cfr.StateGame implementation of Rock-Paper-Scissors.
type Game struct {
	s State
}

// New returns a Game at its initial, pre-move state.
func New() *Game {
	return &Game{s: State{P1: -1, P2: -1}}
}

func (g *Game) MaxPlayerActions() int { return 3 }
func (g *Game) MaxChanceActions() int { return 1 }

func (g *Game) Reset() { g.s = State{P1: -1, P2: -1} }

func (g *Game) CurrentPlayer() cfr.Player {
	if g.s.P1 < 0 {
		return cfr.P1
	}
	return cfr.P2
}

func (g *Game) IsChance() bool { return false }

func (g *Game) GameOver() bool {
	return g.s.P1 >= 0 && g.s.P2 >= 0
}

func (g *Game) InfoSetFor(player cfr.Player) cfr.InfoSet {
	if player == cfr.P1 {
		return infoSetP1
	}
	return infoSetP2
}

func (g *Game) Actions(out []cfr.Action) int {
	out[0], out[1], out[2] = Rock, Paper, Scissors
	return 3
}

func (g *Game) Probabilities(out []int) int {
	panic("rps: Probabilities called; rps has no chance nodes")
}

func (g *Game) Play(a cfr.Action) {
	if g.s.P1 < 0 {
		g.s.P1 = int8(a)
		return
	}
	g.s.P2 = int8(a)
}

func (g *Game) Undo(a cfr.Action) {
	if g.s.P2 >= 0 {
		g.s.P2 = -1
		return
	}
	g.s.P1 = -1
}

// Payoff returns the signed P1-perspective result: +1 win, -1 loss, 0 tie.
func (g *Game) Payoff() int {
	return beats(g.s.P1, g.s.P2) - beats(g.s.P2, g.s.P1)
}

// beats returns 1 if a beats b under standard RPS rules, else 0.
func beats(a, b int8) int {
	if a == b {
		return 0
	}
	if (a-b+3)%3 == 1 {
		return 1
	}
	return 0
}

func (g *Game) GetState() cfr.State { return g.s }

func (g *Game) SampleAction() cfr.Action {
	panic("rps: SampleAction called; rps has no chance nodes")
}

// InfoSetsAndActions returns the single decision player made on the path to
// s, or none if player hasn't acted yet along that path.
func (g *Game) InfoSetsAndActions(s cfr.State, player cfr.Player) []cfr.InfoSetAction {
	st := s.(State)
	if player == cfr.P1 {
		if st.P1 < 0 {
			return nil
		}
		return []cfr.InfoSetAction{{InfoSet: infoSetP1, Action: cfr.Action(st.P1)}}
	}
	if st.P2 < 0 {
		return nil
	}
	return []cfr.InfoSetAction{{InfoSet: infoSetP2, Action: cfr.Action(st.P2)}}
}

// ChanceReachProbability is always 1: rps has no chance nodes.
func (g *Game) ChanceReachProbability(s cfr.State) float64 { return 1 }
