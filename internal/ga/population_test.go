package ga

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

// crossed: A = M1 -> M2, B = M2 -> M1. Половина случайных порядков даёт makespan == LB == 2.
func crossed(t *testing.T) *jobshop.Problem {
	t.Helper()
	p, err := jobshop.NewProblem([]jobshop.Job{
		{ID: "A", Ops: []jobshop.Operation{{Machine: "M1", Duration: 1}, {Machine: "M2", Duration: 1}}},
		{ID: "B", Ops: []jobshop.Operation{{Machine: "M2", Duration: 1}, {Machine: "M1", Duration: 1}}},
	})
	require.NoError(t, err)
	require.Equal(t, 2, p.LowerBound())
	return p
}

func makespans(t *testing.T, p *jobshop.Problem, pop Population) []int {
	t.Helper()
	e, err := jobshop.NewEvaluator(p)
	require.NoError(t, err)
	out := make([]int, len(pop))
	for i, ind := range pop {
		ms, err := e.Makespan(ind)
		require.NoError(t, err)
		out[i] = ms
	}
	return out
}

func TestInitialPopulationAvoidsLowerBound(t *testing.T) {
	p := jobshop.DefaultProblem()
	pop, rep, err := CreateInitialPopulation(p, 50, DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, pop, 50)

	assert.True(t, rep.LowerBoundFree())
	assert.Empty(t, rep.Exhausted)
	assert.NoError(t, rep.Err())
	assert.Equal(t, 50, rep.Slots)
	assert.Equal(t, 40, rep.LowerBound)
	for _, ms := range makespans(t, p, pop) {
		assert.Greater(t, ms, 40)
	}
}

func TestInitialPopulationResamples(t *testing.T) {
	p := crossed(t)
	pop, rep, err := CreateInitialPopulation(p, 20, DefaultConfig(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	assert.Greater(t, rep.Resampled, 0)
	assert.Zero(t, rep.Perturbed)
	assert.True(t, rep.LowerBoundFree())
	assert.Greater(t, rep.Evaluations, 20)
	for _, ms := range makespans(t, p, pop) {
		assert.Greater(t, ms, 2)
	}
}

func TestInitialPopulationPerturbsWhenResamplingIsOff(t *testing.T) {
	p := crossed(t)
	cfg := DefaultConfig()
	cfg.MaxResamples = 0

	pop, rep, err := CreateInitialPopulation(p, 20, cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	assert.Greater(t, rep.Perturbed, 0)
	assert.Equal(t, rep.Resampled, rep.Perturbed)
	assert.True(t, rep.LowerBoundFree())
	for i, ind := range pop {
		require.NoError(t, jobshop.ValidateIndividual(p, ind), "slot %d", i)
	}
}

func TestInitialPopulationWithoutAvoidance(t *testing.T) {
	p := crossed(t)
	cfg := DefaultConfig()
	cfg.AvoidLowerBound = false

	pop, rep, err := CreateInitialPopulation(p, 40, cfg, rand.New(rand.NewSource(4)))
	require.NoError(t, err)

	atLB := 0
	for _, ms := range makespans(t, p, pop) {
		if ms == 2 {
			atLB++
		}
	}
	assert.Zero(t, rep.Resampled)
	assert.Equal(t, atLB, rep.AtLowerBound)
	assert.Greater(t, rep.AtLowerBound, 0)
	assert.False(t, rep.LowerBoundFree())
	assert.Equal(t, 40, rep.Evaluations)
}

func TestInitialPopulationExhaustionIsSoft(t *testing.T) {
	// У единственной работы любое расписание совпадает с нижней оценкой.
	p, err := jobshop.NewProblem([]jobshop.Job{
		{ID: "J1", Ops: []jobshop.Operation{{Machine: "M1", Duration: 2}, {Machine: "M2", Duration: 3}}},
	})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.MaxResamples = 5
	cfg.MaxPerturbations = 5

	pop, rep, err := CreateInitialPopulation(p, 4, cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	require.Len(t, pop, 4)

	require.Len(t, rep.Exhausted, 4)
	assert.Equal(t, 4, rep.AtLowerBound)
	assert.False(t, rep.LowerBoundFree())
	assert.Equal(t, 1, rep.Exhausted[1].Slot)
	assert.Equal(t, 5, rep.Exhausted[1].Makespan)

	err = rep.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExhausted))
	var ee *ExhaustionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 0, ee.Slot)
}

func TestPerturbAboveBound(t *testing.T) {
	p := crossed(t)
	e, err := jobshop.NewEvaluator(p)
	require.NoError(t, err)

	// A0 B0 A1 B1 — makespan 2.
	ind := jobshop.Individual{{Job: 0, Index: 0}, {Job: 1, Index: 0}, {Job: 0, Index: 1}, {Job: 1, Index: 1}}
	require.Equal(t, 2, e.MustMakespan(ind))

	out, ms, evals := perturbAboveBound(ind, e, 2, 400, rand.New(rand.NewSource(6)))
	assert.Greater(t, ms, 2)
	assert.Equal(t, ms, e.MustMakespan(out))
	assert.GreaterOrEqual(t, evals, 2)
	assert.Equal(t, 2, e.MustMakespan(ind), "input must stay untouched")
}

func TestInitialPopulationRejectsNegativeSize(t *testing.T) {
	_, _, err := CreateInitialPopulation(jobshop.DefaultProblem(), -1, DefaultConfig(), rand.New(rand.NewSource(1)))
	assert.ErrorContains(t, err, "-1")

	pop, rep, err := CreateInitialPopulation(jobshop.DefaultProblem(), 0, DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, pop)
	assert.Zero(t, rep.Evaluations)
}
