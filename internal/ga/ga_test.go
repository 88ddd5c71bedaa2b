package ga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

func TestRunDefaultProblem(t *testing.T) {
	p := jobshop.DefaultProblem()
	res, err := Run(context.Background(), p, RunOptions{
		Population:   50,
		Generations:  150,
		MutationRate: 0.2,
		Elitism:      true,
	}, rand.New(rand.NewSource(2024)), nil)
	require.NoError(t, err)

	assert.Equal(t, 40, res.LowerBound)
	assert.GreaterOrEqual(t, res.Makespan, 40)
	require.NoError(t, jobshop.ValidateIndividual(p, res.Individual))
	assert.Equal(t, res.Makespan, res.Schedule.Makespan())
	assert.Equal(t, 150, res.Iterations)
	assert.GreaterOrEqual(t, res.Gap(), 0.0)

	seeding, ok := Seeding(res)
	require.True(t, ok)
	assert.True(t, seeding.LowerBoundFree(), "initial population must exclude makespan == LB")

	// Глобально лучший не ухудшается, а с элитизмом не ухудшается и лучший в поколении.
	require.Len(t, res.History, 151)
	for i := 1; i < len(res.History); i++ {
		assert.LessOrEqual(t, res.History[i].GlobalBest, res.History[i-1].GlobalBest)
		assert.LessOrEqual(t, res.History[i].Best, res.History[i-1].Best)
		assert.LessOrEqual(t, res.History[i].Best, res.History[i].Worst)
	}
	assert.Equal(t, res.Makespan, res.History[150].GlobalBest)

	// Построенное расписание совпадает с повторной сборкой.
	again, err := jobshop.Build(p, res.Individual)
	require.NoError(t, err)
	if diff := cmp.Diff(res.Schedule, again); diff != "" {
		t.Fatalf("schedule differs from rebuild (-result +rebuild):\n%s", diff)
	}
}

func TestSolveDeterministic(t *testing.T) {
	p := jobshop.DefaultProblem()
	cfg := DefaultConfig()
	cfg.Generations = 40

	solve := func(workers int) (jobshop.Individual, int, []int) {
		c := cfg
		c.Workers = workers
		s, err := New(c, rand.New(rand.NewSource(77)))
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), p)
		require.NoError(t, err)
		trace := make([]int, len(res.History))
		for i, h := range res.History {
			trace[i] = h.Best
		}
		return res.Individual, res.Makespan, trace
	}

	ind1, ms1, trace1 := solve(1)
	ind2, ms2, trace2 := solve(1)
	ind4, ms4, trace4 := solve(4)

	assert.Equal(t, ind1, ind2)
	assert.Equal(t, ms1, ms2)
	assert.Equal(t, trace1, trace2)

	assert.Equal(t, ind1, ind4, "worker count must not change the search")
	assert.Equal(t, ms1, ms4)
	assert.Equal(t, trace1, trace4)
}

func TestSolveWithoutElitism(t *testing.T) {
	p := jobshop.DefaultProblem()
	cfg := DefaultConfig()
	cfg.Elitism = false
	cfg.Generations = 30
	s, err := New(cfg, rand.New(rand.NewSource(8)))
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), p)
	require.NoError(t, err)
	require.NoError(t, jobshop.ValidateIndividual(p, res.Individual))
	for _, h := range res.History {
		assert.LessOrEqual(t, res.Makespan, h.Best, "global best is the minimum over all generations")
	}
}

func TestSolveCancelledReturnsBestSoFar(t *testing.T) {
	p := jobshop.DefaultProblem()
	s, err := New(DefaultConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.Solve(ctx, p)
	require.ErrorIs(t, err, context.Canceled)
	require.NoError(t, jobshop.ValidateIndividual(p, res.Individual))
	assert.Equal(t, "context", res.Meta["stopped"])
	assert.Zero(t, res.Iterations)
	assert.Len(t, res.History, 1)
}

func TestSolveSingleJobDegradesSoftly(t *testing.T) {
	p, err := jobshop.NewProblem([]jobshop.Job{
		{ID: "J1", Ops: []jobshop.Operation{{Machine: "M1", Duration: 2}, {Machine: "M2", Duration: 3}}},
	})
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Population = 4
	cfg.Generations = 3
	cfg.MaxResamples = 2
	cfg.MaxPerturbations = 2
	s, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	s.Log = logger

	res, err := s.Solve(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Makespan)

	seeding, ok := Seeding(res)
	require.True(t, ok)
	assert.Len(t, seeding.Exhausted, 4)
	assert.False(t, seeding.LowerBoundFree())

	warned := false
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned, "exhaustion must be logged")
}

func TestSolveReportsGenerations(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	cfg := DefaultConfig()
	cfg.Generations = 30
	cfg.ReportEvery = 15
	s, err := New(cfg, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	s.Log = logger

	_, err = s.Solve(context.Background(), jobshop.DefaultProblem())
	require.NoError(t, err)

	var gens []int
	for _, e := range hook.AllEntries() {
		if e.Message != "generation" {
			continue
		}
		gen := e.Data["gen"].(int)
		gens = append(gens, gen)
		if gen == 0 {
			assert.Equal(t, 40, e.Data["lb"])
			assert.Equal(t, 20, e.Data["longest_job"])
		}
	}
	assert.Equal(t, []int{0, 1, 15, 30}, gens)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cases := map[string]func(*Config){
		"population":    func(c *Config) { c.Population = 1 },
		"generations":   func(c *Config) { c.Generations = 0 },
		"mutation rate": func(c *Config) { c.MutationRate = 1.5 },
		"attempts":      func(c *Config) { c.MutationAttempts = 0 },
		"resamples":     func(c *Config) { c.MaxResamples = -1 },
		"perturbations": func(c *Config) { c.MaxPerturbations = -1 },
		"workers":       func(c *Config) { c.Workers = -2 },
		"report every":  func(c *Config) { c.ReportEvery = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewRejectsNilRand(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)
}

func TestParallelEvaluationCancelledIsContextStop(t *testing.T) {
	p := jobshop.DefaultProblem()
	pool, err := newEvalPool(p, 4)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	pop := make(Population, 8)
	for i := range pop {
		pop[i] = GenerateIndividual(p, rng)
	}
	fit := make([]int, len(pop))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = pool.evaluate(ctx, pop, fit, 1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "context", stopReason(ctx))

	require.NoError(t, pool.evaluate(context.Background(), pop, fit, 0))
	for _, f := range fit {
		assert.Less(t, f, -39)
	}
	assert.Equal(t, "error", stopReason(context.Background()))
}
