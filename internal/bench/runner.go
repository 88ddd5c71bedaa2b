package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) opt.Optimizer
}

// Case — именованная задача для серии запусков.
type Case struct {
	Name    string
	Problem *jobshop.Problem
}

type Record struct {
	Algo       string
	Case       string
	Jobs       int
	Machines   int
	Operations int
	Runs       int
	LowerBound int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64
	GapMeanPct   float64
	// LowerBoundHits — число запусков, достигших нижней оценки (доказанный оптимум).
	LowerBoundHits int
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	if err := c.Problem.Validate(); err != nil {
		return Record{}, fmt.Errorf("case %s: %w", c.Name, err)
	}
	lb := c.Problem.LowerBound()

	makespans := make([]int, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	gaps := make([]float64, 0, r.Runs)
	hits := 0

	for i := 0; i < r.Runs; i++ {
		runSeed := r.BaseSeed + int64(i)

		op := algo.Factory(runSeed)

		runCtx := ctx
		cancel := func() {}
		if r.PerRunTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
		}
		start := time.Now()
		res, err := op.Solve(runCtx, c.Problem)
		dur := time.Since(start)
		cancel()

		if err != nil && runCtx.Err() != nil {
			return Record{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
		}
		if err != nil {
			return Record{}, fmt.Errorf("run %d: solve error: %w", i, err)
		}
		if err := jobshop.ValidateIndividual(c.Problem, res.Individual); err != nil {
			return Record{}, fmt.Errorf("run %d: invalid result: %w", i, err)
		}
		if res.Makespan < lb {
			return Record{}, fmt.Errorf("run %d: makespan %d below lower bound %d", i, res.Makespan, lb)
		}

		makespans = append(makespans, res.Makespan)
		timesMs = append(timesMs, float64(dur.Microseconds())/1000.0)
		gaps = append(gaps, res.Gap())
		if res.Makespan == lb {
			hits++
		}
	}

	msStats := CalcStats(makespans)
	tStats := CalcStats(timesMs)
	gapStats := CalcStats(gaps)

	return Record{
		Algo:       algo.Name,
		Case:       c.Name,
		Jobs:       c.Problem.NumJobs(),
		Machines:   c.Problem.NumMachines(),
		Operations: c.Problem.NumOps(),
		Runs:       r.Runs,
		LowerBound: lb,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest:   msStats.Best,
		MakespanMean:   msStats.Mean,
		MakespanStd:    msStats.Std,
		GapMeanPct:     gapStats.Mean,
		LowerBoundHits: hits,
	}, nil
}

func WriteCSV(path string, records []Record) error {
	if d := dirOf(path); d != "" {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"algo", "case", "jobs", "machines", "operations", "runs", "lower_bound",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std", "gap_mean_pct", "lb_hits",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Algo,
			r.Case,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Operations),
			itoa(r.Runs),
			itoa(r.LowerBound),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),
			ftoa(r.GapMeanPct),
			itoa(r.LowerBoundHits),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
