package localsearch

import (
	"context"
	"math/rand"
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

func TestNewValidatesConfigAndRng(t *testing.T) {
	_, err := New(Config{}, rand.New(rand.NewSource(1)))
	assert.Error(t, err)

	_, err = New(DefaultConfig(), nil)
	assert.Error(t, err)

	r, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestHillClimbReachesLocalOptimum(t *testing.T) {
	inst := twoByTwo(t)
	eval := jobshop.NewEvaluator(inst)
	s := jobshop.NewSchedule(inst)

	r, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ms, evals, err := r.Improve(context.Background(), eval, s)
	require.NoError(t, err)
	assert.Equal(t, 5, ms)
	assert.Greater(t, evals, 0)

	// Возвращённый makespan выводится из самого расписания
	got, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, ms, got)
}

func TestHillClimbNeverWorsens(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	inst := jobshop.RandomInstance(5, 4, 1, 30, rng)
	eval := jobshop.NewEvaluator(inst)

	cfg := DefaultConfig()
	cfg.Moves = MovesAll
	r, err := New(cfg, rng)
	require.NoError(t, err)

	s := jobshop.NewSchedule(inst)
	before, ok := eval.Makespan(s)
	require.True(t, ok)

	ms, _, err := r.Improve(context.Background(), eval, s)
	require.NoError(t, err)
	assert.LessOrEqual(t, ms, before)

	got, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, ms, got)
}

func TestHillClimbHonorsIterationBudget(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	inst := jobshop.RandomInstance(6, 5, 1, 50, rng)
	eval := jobshop.NewEvaluator(inst)

	cfg := DefaultConfig()
	cfg.Iterations = 1
	cfg.Moves = MovesAll
	r, err := New(cfg, rng)
	require.NoError(t, err)

	s := jobshop.NewSchedule(inst)
	before, ok := eval.Makespan(s)
	require.True(t, ok)

	ms, evals, err := r.Improve(context.Background(), eval, s)
	require.NoError(t, err)
	assert.LessOrEqual(t, ms, before)
	// Начальная оценка, один ход и не более одного пересчёта
	assert.LessOrEqual(t, evals, 3)
}

func TestAnnealNeverReturnsWorseThanInput(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	inst := jobshop.RandomInstance(5, 4, 1, 30, rng)
	eval := jobshop.NewEvaluator(inst)

	cfg := DefaultConfig()
	cfg.Acceptance = AcceptAnneal
	r, err := New(cfg, rng)
	require.NoError(t, err)

	s := jobshop.NewSchedule(inst)
	before, ok := eval.Makespan(s)
	require.True(t, ok)

	ms, _, err := r.Improve(context.Background(), eval, s)
	require.NoError(t, err)
	assert.LessOrEqual(t, ms, before)

	// Лучшее найденное решение восстановлено в расписании
	got, ok := eval.Makespan(s)
	require.True(t, ok)
	assert.Equal(t, ms, got)
}

func TestImproveRejectsInfeasibleSchedule(t *testing.T) {
	inst := twoByTwo(t)
	eval := jobshop.NewEvaluator(inst)
	s := jobshop.NewSchedule(inst)
	require.NoError(t, s.SetMachineSequence(0, []jobshop.OpID{3, 0}))

	r, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, _, err = r.Improve(context.Background(), eval, s)
	assert.Error(t, err)
}

func TestImproveStopsOnCancelledContext(t *testing.T) {
	inst := twoByTwo(t)
	eval := jobshop.NewEvaluator(inst)
	s := jobshop.NewSchedule(inst)

	r, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = r.Improve(ctx, eval, s)
	assert.ErrorIs(t, err, context.Canceled)
}
