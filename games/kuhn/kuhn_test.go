package kuhn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfrsolver/sdk/cfr"
)

func TestUndoIsInverseOfPlayThroughFullHand(t *testing.T) {
	g := New()
	states := []cfr.State{g.GetState()}

	play := func(a cfr.Action) {
		g.Play(a)
		states = append(states, g.GetState())
	}
	play(Jack)
	play(Queen)
	play(Bet)
	play(Pass)

	for i := 0; i < 3; i++ {
		g.Undo(0)
		assert.Equal(t, states[len(states)-2-i], g.GetState())
	}
}

func TestChanceDealsDistinctCardsToEachPlayer(t *testing.T) {
	g := New()
	g.Play(King)
	var out [3]cfr.Action
	n := g.Actions(out[:])
	require.Equal(t, 2, n)
	for _, a := range out[:n] {
		assert.NotEqual(t, King, a)
	}
}

func TestGameOverDetectsFoldAndShowdownHistories(t *testing.T) {
	cases := []struct {
		name string
		play []cfr.Action
		over bool
	}{
		{"pp showdown", []cfr.Action{Pass, Pass}, true},
		{"bp fold", []cfr.Action{Bet, Pass}, true},
		{"bb showdown", []cfr.Action{Bet, Bet}, true},
		{"pb continues", []cfr.Action{Pass, Bet}, false},
		{"pbp fold", []cfr.Action{Pass, Bet, Pass}, true},
		{"pbb showdown", []cfr.Action{Pass, Bet, Bet}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := New()
			g.Play(Jack)
			g.Play(Queen)
			for _, a := range tc.play {
				g.Play(a)
			}
			assert.Equal(t, tc.over, g.GameOver())
		})
	}
}

func TestPayoffMatchesKnownShowdownAndFoldValues(t *testing.T) {
	play := func(c1, c2 cfr.Action, hist ...cfr.Action) int {
		g := New()
		g.Play(c1)
		g.Play(c2)
		for _, a := range hist {
			g.Play(a)
		}
		return g.Payoff()
	}

	assert.Equal(t, 1, play(King, Jack, Pass, Pass))
	assert.Equal(t, -1, play(Jack, King, Pass, Pass))
	assert.Equal(t, 1, play(Jack, King, Bet, Pass))
	assert.Equal(t, -1, play(King, Jack, Pass, Bet, Pass))
	assert.Equal(t, 2, play(King, Jack, Bet, Bet))
	assert.Equal(t, -2, play(Jack, King, Pass, Bet, Bet))
}

func TestKuhnVanillaCFRConvergesTowardLowExploitability(t *testing.T) {
	tree := cfr.Build(New())
	cfg := cfr.DefaultSolverConfig()
	cfg.Iterations = 60000
	cfg.Workers = 1

	solver, err := cfr.NewSolver(tree, cfg)
	require.NoError(t, err)
	require.NoError(t, solver.Run(context.Background(), nil))

	strategy := cfr.BuildStrategy(tree, solver.Table(), 1)
	v := cfr.Exploitability(tree, New(), strategy)
	// At the equilibrium, a fully-trained solver's own exploitability should
	// be small; this pins convergence rather than an exact game value,
	// since BuildStrategy's average strategy only approaches equilibrium
	// asymptotically.
	assert.Less(t, v, 0.05)
}
