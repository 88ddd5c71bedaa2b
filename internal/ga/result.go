package ga

import (
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

func toOptResult(
	p *jobshop.Problem,
	best jobshop.Individual,
	bestMakespan, evals, gens int,
	history []opt.IterationStats,
	meta map[string]any,
) opt.Result {
	ind := best.Clone()
	// Особь прошла оценку, поэтому построение расписания не может завершиться ошибкой.
	sched, err := jobshop.Build(p, ind)
	if err != nil {
		panic(err)
	}
	return opt.Result{
		Individual:  ind,
		Schedule:    sched,
		Makespan:    bestMakespan,
		LowerBound:  p.LowerBound(),
		Evaluations: evals,
		Iterations:  gens,
		History:     history,
		Meta:        meta,
	}
}
