package jobshop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceNumbersOpsJobMajor(t *testing.T) {
	inst, err := NewInstance([][]Step{
		{{Machine: 0, Duration: 3}, {Machine: 1, Duration: 2}},
		{{Machine: 1, Duration: 2}, {Machine: 0, Duration: 2}},
	}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, inst.NumJobs())
	assert.Equal(t, 2, inst.NumMachines())
	assert.Equal(t, 4, inst.NumOps())

	assert.Equal(t, []OpID{0, 1}, inst.Job(0))
	assert.Equal(t, []OpID{2, 3}, inst.Job(1))

	assert.Equal(t, Operation{Job: 0, Index: 0, Machine: 0, Duration: 3}, inst.Op(0))
	assert.Equal(t, Operation{Job: 1, Index: 1, Machine: 0, Duration: 2}, inst.Op(3))

	assert.Equal(t, []OpID{0, 3}, inst.MachineOps(0))
	assert.Equal(t, []OpID{1, 2}, inst.MachineOps(1))

	assert.Equal(t, 5, inst.MachineLoad(0))
	assert.Equal(t, 4, inst.MachineLoad(1))
}

func TestNewInstanceRejectsMalformedInput(t *testing.T) {
	valid := [][]Step{{{Machine: 0, Duration: 1}}}

	cases := []struct {
		name     string
		jobs     [][]Step
		machines int
	}{
		{"no machines", valid, 0},
		{"no jobs", nil, 1},
		{"empty job", [][]Step{{}}, 1},
		{"negative duration", [][]Step{{{Machine: 0, Duration: -1}}}, 1},
		{"machine out of range", [][]Step{{{Machine: 5, Duration: 1}}}, 3},
		{"negative machine", [][]Step{{{Machine: -1, Duration: 1}}}, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inst, err := NewInstance(tc.jobs, tc.machines)
			require.Error(t, err)
			assert.Nil(t, inst)

			var merr *MalformedInstanceError
			require.ErrorAs(t, err, &merr)
		})
	}
}

func TestMalformedInstanceErrorLocatesDefect(t *testing.T) {
	_, err := NewInstance([][]Step{
		{{Machine: 0, Duration: 1}},
		{{Machine: 0, Duration: 1}, {Machine: 5, Duration: 1}},
	}, 3)
	var merr *MalformedInstanceError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, 1, merr.Job)
	assert.Equal(t, 1, merr.Op)
}

func TestRandomInstanceVisitsEveryMachineOnce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	inst := RandomInstance(6, 4, 1, 99, rng)

	assert.Equal(t, 6, inst.NumJobs())
	assert.Equal(t, 4, inst.NumMachines())
	assert.Equal(t, 24, inst.NumOps())

	for j := 0; j < inst.NumJobs(); j++ {
		seen := make(map[int]bool)
		for _, op := range inst.Job(j) {
			o := inst.Op(op)
			assert.False(t, seen[o.Machine], "job %d visits machine %d twice", j, o.Machine)
			seen[o.Machine] = true
			assert.GreaterOrEqual(t, o.Duration, 1)
			assert.LessOrEqual(t, o.Duration, 99)
		}
		assert.Len(t, seen, 4)
	}
}

func TestRandomInstancePanicsOnBadArguments(t *testing.T) {
	assert.Panics(t, func() { RandomInstance(2, 2, 1, 99, nil) })
	assert.Panics(t, func() {
		RandomInstance(2, 2, 10, 5, rand.New(rand.NewSource(1)))
	})
}
