package neighborhood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

func twoByTwo(t *testing.T) *jobshop.Instance {
	t.Helper()
	inst, err := jobshop.NewInstance([][]jobshop.Step{
		{{Machine: 0, Duration: 3}, {Machine: 1, Duration: 2}},
		{{Machine: 1, Duration: 2}, {Machine: 0, Duration: 2}},
	}, 2)
	require.NoError(t, err)
	return inst
}

func collect(it *Iterator) []Move {
	var moves []Move
	for {
		mv, ok := it.Next()
		if !ok {
			return moves
		}
		moves = append(moves, mv)
	}
}

func TestMoveApplyIsSelfInverse(t *testing.T) {
	inst := twoByTwo(t)
	s := jobshop.NewSchedule(inst)
	mv := Move{Machine: 1, Pos: 0}

	mv.Apply(s)
	assert.Equal(t, []jobshop.OpID{2, 1}, s.MachineSequence(1))
	mv.Apply(s)
	assert.Equal(t, []jobshop.OpID{1, 2}, s.MachineSequence(1))
}

func TestAllEnumeratesEveryAdjacentPair(t *testing.T) {
	inst := twoByTwo(t)
	s := jobshop.NewSchedule(inst)

	moves := collect(All(s))
	assert.Equal(t, []Move{{Machine: 0, Pos: 0}, {Machine: 1, Pos: 0}}, moves)
}

func TestAllCountMatchesAdjacentPairs(t *testing.T) {
	inst, err := jobshop.NewInstance([][]jobshop.Step{
		{{Machine: 0, Duration: 1}, {Machine: 1, Duration: 1}, {Machine: 2, Duration: 1}},
		{{Machine: 0, Duration: 1}, {Machine: 2, Duration: 1}, {Machine: 1, Duration: 1}},
		{{Machine: 1, Duration: 1}, {Machine: 0, Duration: 1}, {Machine: 2, Duration: 1}},
	}, 3)
	require.NoError(t, err)
	s := jobshop.NewSchedule(inst)

	want := 0
	for m := 0; m < inst.NumMachines(); m++ {
		want += len(s.MachineSequence(m)) - 1
	}
	assert.Len(t, collect(All(s)), want)
}

func TestCriticalYieldsOnlyTightSameMachinePairs(t *testing.T) {
	inst := twoByTwo(t)
	s := jobshop.NewSchedule(inst)
	eval := jobshop.NewEvaluator(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	moves := collect(Critical(s, timing))
	require.Equal(t, []Move{{Machine: 1, Pos: 0}}, moves)

	// Applying the critical move improves the makespan here.
	moves[0].Apply(s)
	ms, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, 5, ms)
}

func TestCriticalIsSubsetOfAll(t *testing.T) {
	inst, err := jobshop.NewInstance([][]jobshop.Step{
		{{Machine: 0, Duration: 4}, {Machine: 1, Duration: 3}, {Machine: 2, Duration: 2}},
		{{Machine: 1, Duration: 2}, {Machine: 0, Duration: 3}, {Machine: 2, Duration: 4}},
		{{Machine: 2, Duration: 3}, {Machine: 1, Duration: 2}, {Machine: 0, Duration: 1}},
	}, 3)
	require.NoError(t, err)
	s := jobshop.NewSchedule(inst)
	eval := jobshop.NewEvaluator(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	all := make(map[Move]bool)
	for _, mv := range collect(All(s)) {
		all[mv] = true
	}
	for _, mv := range collect(Critical(s, timing)) {
		assert.True(t, all[mv], "critical move %+v not in the full neighborhood", mv)
	}
}
