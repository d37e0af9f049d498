// Package kuhn implements three-card Kuhn poker as a cfr.Game. Each player
// antes 1, is dealt one of {Jack, Queen, King} (the third card stays
// unseen), and may Pass or Bet; a bet must be met with a further Pass
// (fold) or Bet (call). Action labels are Pass/Bet throughout rather than
// separate check/fold/call/bet tokens, following the standard formalization
// of the game: a Pass before any bet is a check, a Pass facing a bet is a
// fold, and a Bet facing a bet is a call.
package kuhn

import (
	"math/rand"

	"github.com/lox/cfrsolver/sdk/cfr"
)

// Card ranks; higher value beats lower at showdown.
const (
	Jack cfr.Action = iota
	Queen
	King
)

const (
	Pass = iota
	Bet
)

// State is a complete history: both players' dealt cards (unknown to the
// opponent) and the public action sequence so far.
type State struct {
	Card1, Card2 int8
	Hist         [3]int8
	Len          int8
}

// Game is a cfr.Game and cfr.StateGame implementation of Kuhn poker.
type Game struct {
	s State
}

// New returns a Game before either card has been dealt.
func New() *Game {
	return &Game{s: State{Card1: -1, Card2: -1}}
}

func (g *Game) MaxPlayerActions() int { return 2 }
func (g *Game) MaxChanceActions() int { return 3 }

func (g *Game) Reset() { g.s = State{Card1: -1, Card2: -1} }

func (g *Game) CurrentPlayer() cfr.Player {
	s := &g.s
	if s.Card1 < 0 || s.Card2 < 0 {
		return cfr.Chance
	}
	switch s.Len {
	case 0:
		return cfr.P1
	case 1:
		return cfr.P2
	case 2:
		if s.Hist[0] == Pass && s.Hist[1] == Bet {
			return cfr.P1
		}
	}
	panic("kuhn: CurrentPlayer called on a terminal history")
}

func (g *Game) IsChance() bool { return g.s.Card1 < 0 || g.s.Card2 < 0 }

func (g *Game) GameOver() bool {
	s := &g.s
	if s.Card1 < 0 || s.Card2 < 0 {
		return false
	}
	switch s.Len {
	case 2:
		return !(s.Hist[0] == Pass && s.Hist[1] == Bet)
	case 3:
		return true
	}
	return false
}

func (g *Game) InfoSetFor(player cfr.Player) cfr.InfoSet {
	s := &g.s
	card := s.Card1
	if player == cfr.P2 {
		card = s.Card2
	}
	return byteKey(infoSetKey(card, s.Hist[:s.Len]))
}

// infoSetKey packs a player's own card and the public action prefix they
// face into a byte-stable key. Card and history-prefix together are exactly
// what distinguishes one of this player's decision points from another.
func infoSetKey(card int8, hist []int8) []byte {
	k := make([]byte, 0, 2+len(hist))
	k = append(k, byte(card), byte(len(hist)))
	for _, a := range hist {
		k = append(k, byte(a))
	}
	return k
}

func (g *Game) Actions(out []cfr.Action) int {
	if g.s.Card1 < 0 {
		out[0], out[1], out[2] = Jack, Queen, King
		return 3
	}
	if g.s.Card2 < 0 {
		n := 0
		for c := Jack; c <= King; c++ {
			if c != cfr.Action(g.s.Card1) {
				out[n] = c
				n++
			}
		}
		return n
	}
	out[0], out[1] = Pass, Bet
	return 2
}

func (g *Game) Probabilities(out []int) int {
	if g.s.Card1 < 0 {
		out[0], out[1], out[2] = 1, 1, 1
		return 3
	}
	out[0], out[1] = 1, 1
	return 2
}

func (g *Game) Play(a cfr.Action) {
	s := &g.s
	switch {
	case s.Card1 < 0:
		s.Card1 = int8(a)
	case s.Card2 < 0:
		s.Card2 = int8(a)
	default:
		s.Hist[s.Len] = int8(a)
		s.Len++
	}
}

func (g *Game) Undo(a cfr.Action) {
	s := &g.s
	switch {
	case s.Len > 0:
		s.Len--
		s.Hist[s.Len] = 0
	case s.Card2 >= 0:
		s.Card2 = -1
	default:
		s.Card1 = -1
	}
}

// Payoff returns the signed P1-perspective result in antes: the winner takes
// the loser's ante (1), plus the loser's extra bet (2 in all) when a bet was
// called.
func (g *Game) Payoff() int {
	s := &g.s
	hist := s.Hist[:s.Len]
	sign := 1
	if s.Card2 > s.Card1 {
		sign = -1
	}

	switch string(bytesOf(hist)) {
	case "pp":
		return sign * 1
	case "bp":
		return 1 // P2 folded facing P1's bet
	case "pbp":
		return -1 // P1 folded facing P2's bet
	case "bb", "pbb":
		return sign * 2
	}
	panic("kuhn: Payoff called on a non-terminal history")
}

func bytesOf(hist []int8) []byte {
	b := make([]byte, len(hist))
	for i, a := range hist {
		if a == Pass {
			b[i] = 'p'
		} else {
			b[i] = 'b'
		}
	}
	return b
}

func (g *Game) GetState() cfr.State { return g.s }

// SampleAction draws a chance action uniformly, for naive Monte-Carlo
// baselines; it is never used by the CFR/MCCFR kernels themselves, which
// carry their own thread-local streams.
func (g *Game) SampleAction() cfr.Action {
	var out [3]cfr.Action
	n := g.Actions(out[:])
	return out[rand.Intn(n)]
}

// InfoSetsAndActions returns the (InfoSet, Action) pairs player decided on
// the path to s: P1 decides at history positions 0 and (if reached) 2; P2
// decides at position 1.
func (g *Game) InfoSetsAndActions(state cfr.State, player cfr.Player) []cfr.InfoSetAction {
	s := state.(State)
	var out []cfr.InfoSetAction

	if player == cfr.P1 {
		if s.Len >= 1 {
			out = append(out, cfr.InfoSetAction{
				InfoSet: byteKey(infoSetKey(s.Card1, nil)),
				Action:  cfr.Action(s.Hist[0]),
			})
		}
		if s.Len >= 3 {
			out = append(out, cfr.InfoSetAction{
				InfoSet: byteKey(infoSetKey(s.Card1, s.Hist[:2])),
				Action:  cfr.Action(s.Hist[2]),
			})
		}
		return out
	}

	if s.Len >= 2 {
		out = append(out, cfr.InfoSetAction{
			InfoSet: byteKey(infoSetKey(s.Card2, s.Hist[:1])),
			Action:  cfr.Action(s.Hist[1]),
		})
	}
	return out
}

// byteKey adapts a raw key into the InfoSet interface.
type byteKey []byte

func (k byteKey) Key() []byte { return k }

// ChanceReachProbability is the same for every fully dealt hand: draw one of
// three cards for P1, then one of the remaining two for P2.
func (g *Game) ChanceReachProbability(s cfr.State) float64 {
	return 1.0 / 6.0
}
