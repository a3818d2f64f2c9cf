package jobshop

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakespanHandComputed(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)

	s := NewSchedule(inst)
	ms, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, 9, ms)

	// Letting job 1 go first on machine 1 removes the idle gap.
	require.NoError(t, s.SetMachineSequence(1, []OpID{2, 1}))
	ms, ok = eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, 5, ms)
}

func TestEvaluateDerivesStartAndEndTimes(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)
	assert.Equal(t, 9, timing.Makespan())

	assert.Equal(t, 0, timing.Start(0))
	assert.Equal(t, 3, timing.End(0))
	assert.Equal(t, 3, timing.Start(1))
	assert.Equal(t, 5, timing.End(1))
	assert.Equal(t, 5, timing.Start(2))
	assert.Equal(t, 7, timing.End(2))
	assert.Equal(t, 7, timing.Start(3))
	assert.Equal(t, 9, timing.End(3))
}

func TestTimingSurvivesFurtherEvaluatorCalls(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	other := NewSchedule(inst)
	require.NoError(t, other.SetMachineSequence(1, []OpID{2, 1}))
	_, ok = eval.Makespan(other)
	require.True(t, ok)

	assert.Equal(t, 9, timing.Makespan())
	assert.Equal(t, 7, timing.Start(3))
}

func TestCyclicMachineOrderIsInfeasible(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	// Machine 0 waiting on job 1 while machine 1 waits on job 0 closes
	// a cycle through the job precedence edges.
	require.NoError(t, s.SetMachineSequence(0, []OpID{3, 0}))

	_, ok := eval.Makespan(s)
	assert.False(t, ok)
	_, ok = eval.Evaluate(s)
	assert.False(t, ok)

	// The evaluator recovers for the next call.
	require.NoError(t, s.SetMachineSequence(0, []OpID{0, 3}))
	ms, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, 9, ms)
}

func TestTimingRecurrenceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inst := RandomInstance(6, 4, 1, 50, rng)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	jobSum := 0
	for j := 0; j < inst.NumJobs(); j++ {
		sum := 0
		for i, op := range inst.Job(j) {
			o := inst.Op(op)
			sum += o.Duration
			assert.Equal(t, timing.Start(op)+o.Duration, timing.End(op))
			if i > 0 {
				prev := inst.Job(j)[i-1]
				assert.GreaterOrEqual(t, timing.Start(op), timing.End(prev))
			}
		}
		if sum > jobSum {
			jobSum = sum
		}
	}

	maxLoad := 0
	for m := 0; m < inst.NumMachines(); m++ {
		q := s.MachineSequence(m)
		for i := 1; i < len(q); i++ {
			assert.GreaterOrEqual(t, timing.Start(q[i]), timing.End(q[i-1]))
		}
		if load := inst.MachineLoad(m); load > maxLoad {
			maxLoad = load
		}
	}

	assert.GreaterOrEqual(t, timing.Makespan(), maxLoad)
	assert.GreaterOrEqual(t, timing.Makespan(), jobSum)
}

func TestTimelineOrderedByMachineAndStart(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	want := []TimelineEntry{
		{Op: 0, Job: 0, Machine: 0, Start: 0, End: 3},
		{Op: 3, Job: 1, Machine: 0, Start: 7, End: 9},
		{Op: 1, Job: 0, Machine: 1, Start: 3, End: 5},
		{Op: 2, Job: 1, Machine: 1, Start: 5, End: 7},
	}
	assert.Equal(t, want, timing.Timeline())
}

func TestCriticalPathFollowsBindingPredecessors(t *testing.T) {
	inst := twoByTwo(t)
	eval := NewEvaluator(inst)
	s := NewSchedule(inst)

	timing, ok := eval.Evaluate(s)
	require.True(t, ok)

	path := timing.CriticalPath()
	assert.Equal(t, []OpID{0, 1, 2, 3}, path)

	// Every link on the path has no slack.
	for i := 1; i < len(path); i++ {
		assert.Equal(t, timing.End(path[i-1]), timing.Start(path[i]))
	}
	assert.Equal(t, timing.Makespan(), timing.End(path[len(path)-1]))
}
