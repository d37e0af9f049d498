// Package leduc implements the no-raise variant of Leduc Hold'em as a
// cfr.Game: a 6-card deck (ranks Jack/Queen/King, two suits each), one
// private card per player, a public card revealed between two betting
// rounds, and fixed bet sizes per round. "No-raise" means a bet can only be
// met with a fold or a call, never re-raised — the only departure from
// standard Leduc, and the one this core's Non-goals call for (no
// multi-player or arbitrarily-deep betting trees to abstract over).
package leduc

import (
	"math/rand"

	"github.com/lox/cfrsolver/sdk/cfr"
)

const (
	Pass = iota
	Bet
)

const (
	round1Bet = 2
	round2Bet = 4
	ante      = 1
)

// State is a complete history: both private cards, the public card (-1
// until revealed), and each round's action sequence.
type State struct {
	Card1, Card2, Public int8
	Round1               [3]int8
	Round1Len            int8
	Round2               [3]int8
	Round2Len            int8
}

// Game is a cfr.Game and cfr.StateGame implementation of no-raise Leduc.
type Game struct {
	s State
}

// New returns a Game before any card has been dealt.
func New() *Game {
	return &Game{s: State{Card1: -1, Card2: -1, Public: -1}}
}

func (g *Game) MaxPlayerActions() int { return 2 }
func (g *Game) MaxChanceActions() int { return 6 }

func (g *Game) Reset() { g.s = State{Card1: -1, Card2: -1, Public: -1} }

// rank maps a card id (0..5) to its rank (0=Jack, 1=Queen, 2=King); two card
// ids share each rank.
func rank(card int8) int8 { return card % 3 }

// roundStatus reports whether a round's action sequence has concluded and,
// if so, whether it ended in a fold. The five reachable patterns (pp, bp,
// bb, pbp, pbb) are identical to a single round of Kuhn poker, since both
// games share the same Pass/Bet-facing-a-bet action alphabet per round.
func roundStatus(hist []int8) (done, folded bool) {
	switch len(hist) {
	case 0, 1:
		return false, false
	case 2:
		switch {
		case hist[0] == Pass && hist[1] == Pass:
			return true, false
		case hist[0] == Bet && hist[1] == Pass:
			return true, true
		case hist[0] == Bet && hist[1] == Bet:
			return true, false
		default: // Pass, Bet: round continues
			return false, false
		}
	case 3:
		return true, hist[2] == Pass
	}
	panic("leduc: round history longer than 3 actions")
}

// actorAt returns who acts at the given position within a round's action
// sequence (positions 0 and 2 are P1's, position 1 is P2's), mirroring
// kuhn's single-round structure.
func actorAt(pos int) cfr.Player {
	if pos == 1 {
		return cfr.P2
	}
	return cfr.P1
}

func (g *Game) CurrentPlayer() cfr.Player {
	s := &g.s
	if s.Card1 < 0 || s.Card2 < 0 {
		return cfr.Chance
	}
	done1, folded1 := roundStatus(s.Round1[:s.Round1Len])
	if !done1 {
		return actorAt(int(s.Round1Len))
	}
	if folded1 {
		panic("leduc: CurrentPlayer called on a terminal history")
	}
	if s.Public < 0 {
		return cfr.Chance
	}
	done2, _ := roundStatus(s.Round2[:s.Round2Len])
	if !done2 {
		return actorAt(int(s.Round2Len))
	}
	panic("leduc: CurrentPlayer called on a terminal history")
}

func (g *Game) IsChance() bool { return g.CurrentPlayer() == cfr.Chance }

func (g *Game) GameOver() bool {
	s := &g.s
	if s.Card1 < 0 || s.Card2 < 0 {
		return false
	}
	done1, folded1 := roundStatus(s.Round1[:s.Round1Len])
	if !done1 {
		return false
	}
	if folded1 {
		return true
	}
	if s.Public < 0 {
		return false
	}
	done2, _ := roundStatus(s.Round2[:s.Round2Len])
	return done2
}

func (g *Game) InfoSetFor(player cfr.Player) cfr.InfoSet {
	s := &g.s
	card := s.Card1
	if player == cfr.P2 {
		card = s.Card2
	}
	return byteKey(infoSetKey(card, s.Public, s.Round1[:s.Round1Len], s.Round2[:s.Round2Len]))
}

// infoSetKey packs a player's own card, the public card (or -1 before
// round 2), and both rounds' public action prefixes into a byte-stable key.
func infoSetKey(card, public int8, r1, r2 []int8) []byte {
	k := make([]byte, 0, 4+len(r1)+len(r2))
	k = append(k, byte(card), byte(public), byte(len(r1)), byte(len(r2)))
	k = append(k, int8sToBytes(r1)...)
	k = append(k, int8sToBytes(r2)...)
	return k
}

func int8sToBytes(xs []int8) []byte {
	b := make([]byte, len(xs))
	for i, x := range xs {
		b[i] = byte(x)
	}
	return b
}

func (g *Game) Actions(out []cfr.Action) int {
	s := &g.s
	switch {
	case s.Card1 < 0:
		for i := 0; i < 6; i++ {
			out[i] = cfr.Action(i)
		}
		return 6
	case s.Card2 < 0:
		n := 0
		for i := 0; i < 6; i++ {
			if int8(i) != s.Card1 {
				out[n] = cfr.Action(i)
				n++
			}
		}
		return n
	}

	done1, folded1 := roundStatus(s.Round1[:s.Round1Len])
	if !done1 {
		out[0], out[1] = Pass, Bet
		return 2
	}
	if !folded1 && s.Public < 0 {
		n := 0
		for i := 0; i < 6; i++ {
			if int8(i) != s.Card1 && int8(i) != s.Card2 {
				out[n] = cfr.Action(i)
				n++
			}
		}
		return n
	}
	out[0], out[1] = Pass, Bet
	return 2
}

func (g *Game) Probabilities(out []int) int {
	s := &g.s
	switch {
	case s.Card1 < 0:
		for i := range out[:6] {
			out[i] = 1
		}
		return 6
	case s.Card2 < 0:
		for i := range out[:5] {
			out[i] = 1
		}
		return 5
	}
	for i := range out[:4] {
		out[i] = 1
	}
	return 4
}

func (g *Game) Play(a cfr.Action) {
	s := &g.s
	switch {
	case s.Card1 < 0:
		s.Card1 = int8(a)
	case s.Card2 < 0:
		s.Card2 = int8(a)
	default:
		done1, folded1 := roundStatus(s.Round1[:s.Round1Len])
		switch {
		case !done1:
			s.Round1[s.Round1Len] = int8(a)
			s.Round1Len++
		case !folded1 && s.Public < 0:
			s.Public = int8(a)
		default:
			s.Round2[s.Round2Len] = int8(a)
			s.Round2Len++
		}
	}
}

func (g *Game) Undo(a cfr.Action) {
	s := &g.s
	switch {
	case s.Round2Len > 0:
		s.Round2Len--
		s.Round2[s.Round2Len] = 0
	case s.Public >= 0:
		s.Public = -1
	case s.Round1Len > 0:
		s.Round1Len--
		s.Round1[s.Round1Len] = 0
	case s.Card2 >= 0:
		s.Card2 = -1
	default:
		s.Card1 = -1
	}
}

// Payoff returns the signed P1-perspective result. Contributions are always
// matched between the two players except when one side folds before
// matching a bet, so the winner's net gain equals whatever the loser put
// in — a single formula covers both fold and showdown resolutions.
func (g *Game) Payoff() int {
	s := &g.s
	done1, folded1 := roundStatus(s.Round1[:s.Round1Len])
	if !done1 {
		panic("leduc: Payoff called on a non-terminal history")
	}

	if folded1 {
		if s.Round1[0] == Bet { // "bp": P1 bet, P2 folded
			return ante
		}
		return -ante // "pbp": P2 bet, P1 folded
	}

	contribRound1 := 0
	if s.Round1Len == 2 && s.Round1[1] == Bet {
		contribRound1 = round1Bet
	} else if s.Round1Len == 3 {
		contribRound1 = round1Bet
	}

	done2, folded2 := roundStatus(s.Round2[:s.Round2Len])
	if !done2 {
		panic("leduc: Payoff called on a non-terminal history")
	}
	if folded2 {
		lead := ante + contribRound1
		if s.Round2[0] == Bet { // P1 bet round 2, P2 folded
			return lead
		}
		return -lead // P1 folded round 2
	}

	contribRound2 := 0
	if s.Round2Len == 2 && s.Round2[1] == Bet {
		contribRound2 = round2Bet
	} else if s.Round2Len == 3 {
		contribRound2 = round2Bet
	}
	contrib := ante + contribRound1 + contribRound2

	switch {
	case rank(s.Card1) == rank(s.Public):
		return contrib
	case rank(s.Card2) == rank(s.Public):
		return -contrib
	case rank(s.Card1) > rank(s.Card2):
		return contrib
	case rank(s.Card2) > rank(s.Card1):
		return -contrib
	default:
		return 0
	}
}

func (g *Game) GetState() cfr.State { return g.s }

// SampleAction draws a chance action uniformly, for naive Monte-Carlo
// baselines; the CFR/MCCFR kernels never call it.
func (g *Game) SampleAction() cfr.Action {
	var out [6]cfr.Action
	n := g.Actions(out[:])
	return out[rand.Intn(n)]
}

// InfoSetsAndActions returns the (InfoSet, Action) pairs player decided on
// the path to s, across both betting rounds.
func (g *Game) InfoSetsAndActions(state cfr.State, player cfr.Player) []cfr.InfoSetAction {
	s := state.(State)
	var out []cfr.InfoSetAction

	card1, card2 := s.Card1, s.Card2
	card := card1
	if player == cfr.P2 {
		card = card2
	}

	// appendRound records player's decisions within one round's action
	// sequence. r1/r2 are the full histories to key against: a round-1
	// decision keys on an empty round-2 prefix (round 2 hasn't started
	// yet), while a round-2 decision keys on the *complete* round-1
	// history plus its own prefix up to (not including) the decision.
	appendRound := func(hist [3]int8, n int8, public int8, fullRound1 []int8, keyingRound2 bool) {
		for i := int8(0); i < n; i++ {
			if actorAt(int(i)) != player {
				continue
			}
			var prefix [3]int8
			copy(prefix[:], hist[:i])

			r1, r2 := fullRound1, []int8(nil)
			if keyingRound2 {
				r2 = prefix[:i]
			} else {
				r1 = prefix[:i]
			}
			out = append(out, cfr.InfoSetAction{
				InfoSet: byteKey(infoSetKey(card, public, r1, r2)),
				Action:  cfr.Action(hist[i]),
			})
		}
	}

	appendRound(s.Round1, s.Round1Len, -1, nil, false)
	if s.Public >= 0 {
		appendRound(s.Round2, s.Round2Len, s.Public, s.Round1[:s.Round1Len], true)
	}
	return out
}

// byteKey adapts a raw key into the InfoSet interface.
type byteKey []byte

func (k byteKey) Key() []byte { return k }

// ChanceReachProbability is constant across every fully dealt hand: draw
// one of six cards for P1, one of the remaining five for P2, and (once
// round 1 resolves without a fold) one of the remaining four as the public
// card.
func (g *Game) ChanceReachProbability(s cfr.State) float64 {
	st := s.(State)
	if st.Public < 0 {
		return 1.0 / 30.0 // 1/6 * 1/5
	}
	return 1.0 / 120.0 // 1/6 * 1/5 * 1/4
}
