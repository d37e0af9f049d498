package cfr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestResponseDominanceOnRPSLikeFixture(t *testing.T) {
	tree := Build(&rpsLikeGame{})
	_, strategy := solveFull(t, tree, Vanilla, 5000)

	v := valueUnderStrategy(tree, strategy)[0]
	v1, _ := BestResponse(tree, &rpsLikeGame{}, strategy, P1)
	v2, _ := BestResponse(tree, &rpsLikeGame{}, strategy, P2)

	// value(BR_P1 vs sigma) >= value(sigma vs sigma) >= value(sigma vs BR_P2)
	assert.GreaterOrEqual(t, v1, v-1e-6)
	assert.GreaterOrEqual(t, v+1e-6, v2)
}

func TestExploitabilityApproachesZeroNearEquilibrium(t *testing.T) {
	tree := Build(&rpsLikeGame{})
	_, strategy := solveFull(t, tree, Vanilla, 20000)

	expl := Exploitability(tree, &rpsLikeGame{}, strategy)
	assert.Less(t, expl, 0.1)
}

func TestExploitabilityGuardAvoidsDivisionByNearZeroValue(t *testing.T) {
	tree := Build(&rpsLikeGame{})
	// An untrained strategy table: every info set falls back to uniform,
	// which is RPS's actual equilibrium, so v ~ 0 and the guard must kick in
	// rather than blow the metric up.
	table, err := BuildInfoSetTable(tree, false)
	require.NoError(t, err)
	strategy := BuildStrategy(tree, table, 1)

	v := valueUnderStrategy(tree, strategy)[0]
	require.Less(t, math.Abs(v), exploitabilityGuardEpsilon)

	expl := Exploitability(tree, &rpsLikeGame{}, strategy)
	assert.False(t, math.IsNaN(expl))
	assert.False(t, math.IsInf(expl, 0))
}

func TestBestResponseTiesBreakTowardSmallestActionIndex(t *testing.T) {
	tree := Build(&rpsLikeGame{})
	table, err := BuildInfoSetTable(tree, false)
	require.NoError(t, err)
	strategy := BuildStrategy(tree, table, 1)

	// Against a uniform opponent every action is equally good; BR must still
	// pick deterministically (smallest index) rather than panic or vary.
	_, policy1 := BestResponse(tree, &rpsLikeGame{}, strategy, P1)
	_, policy2 := BestResponse(tree, &rpsLikeGame{}, strategy, P1)
	assert.Equal(t, policy1, policy2)
	assert.Equal(t, Action(0), policy1["p1"])
}
