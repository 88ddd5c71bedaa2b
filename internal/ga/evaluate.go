package ga

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jobShop/internal/jobshop"
)

// evalPool оценивает популяцию; по одному Evaluator на воркера.
type evalPool struct {
	evaluators []*jobshop.Evaluator
}

func newEvalPool(p *jobshop.Problem, workers int) (*evalPool, error) {
	workers = max(workers, 1)
	pool := &evalPool{evaluators: make([]*jobshop.Evaluator, workers)}
	for i := range pool.evaluators {
		e, err := jobshop.NewEvaluator(p)
		if err != nil {
			return nil, err
		}
		pool.evaluators[i] = e
	}
	return pool, nil
}

// evaluate записывает fitness особей pop[from:] в fit[from:].
// Результат не зависит от числа воркеров: оценка — чистая функция особи.
func (ep *evalPool) evaluate(ctx context.Context, pop Population, fit []int, from int) error {
	n := len(pop) - from
	workers := min(len(ep.evaluators), n)
	if workers <= 1 {
		return evaluateRange(ep.evaluators[0], pop, fit, from, len(pop))
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := from + w*chunk
		hi := min(lo+chunk, len(pop))
		if lo >= hi {
			break
		}
		e := ep.evaluators[w]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return evaluateRange(e, pop, fit, lo, hi)
		})
	}
	return g.Wait()
}

func evaluateRange(e *jobshop.Evaluator, pop Population, fit []int, lo, hi int) error {
	for i := lo; i < hi; i++ {
		f, err := e.Fitness(pop[i])
		if err != nil {
			return fmt.Errorf("особь %d: %w", i, err)
		}
		fit[i] = f
	}
	return nil
}
