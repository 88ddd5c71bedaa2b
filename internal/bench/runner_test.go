package bench

import (
	"context"
	"encoding/csv"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/ga"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

func gaAlgorithm(t *testing.T) Algorithm {
	t.Helper()
	cfg := ga.DefaultConfig()
	cfg.Population = 20
	cfg.Generations = 20
	return Algorithm{Name: "GA", Factory: func(seed int64) opt.Optimizer {
		s, err := ga.New(cfg, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		return s
	}}
}

type fixedOptimizer struct {
	res opt.Result
	err error
}

func (f fixedOptimizer) Solve(context.Context, *jobshop.Problem) (opt.Result, error) {
	return f.res, f.err
}

func TestRunCase(t *testing.T) {
	r := Runner{Runs: 3, BaseSeed: 10}
	rec, err := r.RunCase(context.Background(), Case{Name: "kitchen", Problem: jobshop.DefaultProblem()}, gaAlgorithm(t))
	require.NoError(t, err)

	assert.Equal(t, "GA", rec.Algo)
	assert.Equal(t, "kitchen", rec.Case)
	assert.Equal(t, 6, rec.Jobs)
	assert.Equal(t, 3, rec.Machines)
	assert.Equal(t, 18, rec.Operations)
	assert.Equal(t, 3, rec.Runs)
	assert.Equal(t, 40, rec.LowerBound)
	assert.GreaterOrEqual(t, rec.MakespanBest, 40)
	assert.GreaterOrEqual(t, rec.MakespanMean, float64(rec.MakespanBest))
	assert.GreaterOrEqual(t, rec.GapMeanPct, 0.0)
	assert.LessOrEqual(t, rec.LowerBoundHits, 3)
}

func TestRunCaseRejectsBadResults(t *testing.T) {
	p := jobshop.DefaultProblem()
	r := Runner{Runs: 1}

	broken := Algorithm{Name: "broken", Factory: func(int64) opt.Optimizer {
		return fixedOptimizer{res: opt.Result{Individual: jobshop.Individual{{Job: 0, Index: 0}}}}
	}}
	_, err := r.RunCase(context.Background(), Case{Name: "kitchen", Problem: p}, broken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jobshop.ErrInvalidIndividual))

	failing := Algorithm{Name: "failing", Factory: func(int64) opt.Optimizer {
		return fixedOptimizer{err: errors.New("boom")}
	}}
	_, err = r.RunCase(context.Background(), Case{Name: "kitchen", Problem: p}, failing)
	assert.ErrorContains(t, err, "boom")

	_, err = r.RunCase(context.Background(), Case{Name: "empty"}, failing)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.csv")
	records := []Record{{
		Algo: "GA", Case: "kitchen", Jobs: 6, Machines: 3, Operations: 18, Runs: 2, LowerBound: 40,
		TimeBestMs: 1.5, TimeMeanMs: 2, MakespanBest: 42, MakespanMean: 43, GapMeanPct: 7.5, LowerBoundHits: 0,
	}}
	require.NoError(t, WriteCSV(path, records))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "algo", rows[0][0])
	assert.Equal(t, "lb_hits", rows[0][len(rows[0])-1])
	assert.Equal(t, []string{"GA", "kitchen", "6", "3", "18", "2", "40"}, rows[1][:7])
	assert.Equal(t, "42", rows[1][10])
	assert.Equal(t, "7.500000", rows[1][13])
}

func TestWriteCSVInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	require.NoError(t, WriteCSV("results.csv", nil))
	_, err = os.Stat("results.csv")
	assert.NoError(t, err)
}
