package cfr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeActionTree is a synthetic two-level tree: one P1 node with three
// children, all terminals, used to exercise InfoSetTable in isolation from
// the tree builder.
func threeActionTree() *Tree {
	return &Tree{
		kindFanout: []uint32{
			packKindFanout(P1, 3),
			packKindFanout(P1, 0),
			packKindFanout(P1, 0),
			packKindFanout(P1, 0),
		},
		childStart: []int32{0, 0, 0, 0},
		children:   []int32{1, 2, 3},
		actionsFor: []Action{0, 1, 2},
		probFor:    []float64{0, 0, 0},
		infoKey:    [][]byte{[]byte("only"), nil, nil, nil},
	}
}

func buildSingleEntryTable(t *testing.T, clampOnWrite bool) (*InfoSetTable, int) {
	t.Helper()
	tree := threeActionTree()
	table, err := BuildInfoSetTable(tree, clampOnWrite)
	require.NoError(t, err)
	require.Equal(t, 1, table.Size())
	return table, table.SlotFor(0)
}

func TestRegretMatchingNormalizesPositiveRegrets(t *testing.T) {
	table, slot := buildSingleEntryTable(t, false)

	table.Accumulate(slot, []float64{2, 4, 0}, []float64{0, 0, 0})

	strat := make([]float64, 3)
	table.CurrentStrategy(slot, strat)

	assert.InDelta(t, 1.0, strat[0]+strat[1]+strat[2], 1e-12)
	assert.InDelta(t, 2.0/6.0, strat[0], 1e-12)
	assert.InDelta(t, 4.0/6.0, strat[1], 1e-12)
	assert.InDelta(t, 0.0, strat[2], 1e-12)
	for _, p := range strat {
		assert.GreaterOrEqual(t, p, 0.0)
	}
}

func TestRegretMatchingUniformFallbackWhenAllNonPositive(t *testing.T) {
	table, slot := buildSingleEntryTable(t, false)

	table.Accumulate(slot, []float64{-1, 0, -5}, []float64{0, 0, 0})

	strat := make([]float64, 3)
	table.CurrentStrategy(slot, strat)
	for _, p := range strat {
		assert.InDelta(t, 1.0/3.0, p, 1e-12)
	}
}

func TestAccumulateAdditivity(t *testing.T) {
	table, slot := buildSingleEntryTable(t, false)

	table.Accumulate(slot, []float64{1, 2, 3}, []float64{0.5, 0.5, 0.5})
	table.Accumulate(slot, []float64{1, -2, 3}, []float64{0.5, 0.5, 0.5})

	strat := make([]float64, 3)
	table.CurrentStrategy(slot, strat)
	// R = [2, 0, 6] after both accumulations; positive sum is 8.
	assert.InDelta(t, 2.0/8.0, strat[0], 1e-12)
	assert.InDelta(t, 0.0, strat[1], 1e-12)
	assert.InDelta(t, 6.0/8.0, strat[2], 1e-12)

	avg := make([]float64, 3)
	table.AverageStrategy(slot, avg)
	for _, p := range avg {
		assert.InDelta(t, 1.0/3.0, p, 1e-12) // S = [1,1,1] after both accumulations
	}
}

func TestCFRPlusClampsRegretsNonNegative(t *testing.T) {
	table, slot := buildSingleEntryTable(t, true)

	table.Accumulate(slot, []float64{-5, 2, -1}, []float64{0, 0, 0})
	table.Accumulate(slot, []float64{1, 1, 1}, []float64{0, 0, 0})

	strat := make([]float64, 3)
	table.CurrentStrategy(slot, strat)
	for _, p := range strat {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	// First accumulate floors R[0] at 0 (from -5) and R[2] at 0 (from -1)
	// before the second accumulate adds 1 to each, giving R = [1, 3, 1].
	assert.InDelta(t, 1.0/5.0, strat[0], 1e-12)
	assert.InDelta(t, 3.0/5.0, strat[1], 1e-12)
	assert.InDelta(t, 1.0/5.0, strat[2], 1e-12)
}

func TestAccumulateConcurrentWritersSumCorrectly(t *testing.T) {
	table, slot := buildSingleEntryTable(t, false)

	const writers = 50
	const perWriter = 100
	var wg sync.WaitGroup
	wg.Add(writers)
	for w := 0; w < writers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				table.Accumulate(slot, []float64{1, 0, 0}, []float64{0, 1, 0})
			}
		}()
	}
	wg.Wait()

	avg := make([]float64, 3)
	table.AverageStrategy(slot, avg)
	assert.InDelta(t, 0.0, avg[0], 1e-9)
	assert.InDelta(t, 1.0, avg[1], 1e-9)
	assert.InDelta(t, 0.0, avg[2], 1e-9)
}

func TestAverageStrategyUniformFallbackWhenUnvisited(t *testing.T) {
	table, slot := buildSingleEntryTable(t, false)

	avg := make([]float64, 3)
	table.AverageStrategy(slot, avg)
	for _, p := range avg {
		assert.InDelta(t, 1.0/3.0, p, 1e-12)
	}
}

func TestBuildInfoSetTableRejectsTooManyActions(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*ContractViolation)
		assert.True(t, ok)
	}()

	big := &Tree{
		kindFanout: []uint32{packKindFanout(P1, maxActionSlots+1)},
		childStart: []int32{0},
		infoKey:    [][]byte{[]byte("too-wide")},
	}
	_, _ = BuildInfoSetTable(big, false)
}

func TestSlotForReturnsMinusOneForChanceAndTerminalNodes(t *testing.T) {
	tree := threeActionTree()
	table, err := BuildInfoSetTable(tree, false)
	require.NoError(t, err)

	assert.Equal(t, -1, table.SlotFor(1))
	assert.Equal(t, -1, table.SlotFor(2))
	assert.Equal(t, -1, table.SlotFor(3))
}
