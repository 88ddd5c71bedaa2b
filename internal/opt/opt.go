package opt

import (
	"context"
	"time"

	"jobShop/internal/jobshop"
)

type Optimizer interface {
	Solve(ctx context.Context, p *jobshop.Problem) (Result, error)
}

// Result — лучшая найденная особь и её расписание.
type Result struct {
	Individual  jobshop.Individual
	Schedule    jobshop.Schedule
	Makespan    int
	LowerBound  int
	Evaluations int
	Iterations  int
	Duration    time.Duration
	// History — статистика по итерациям (поколениям), если солвер её ведёт.
	History []IterationStats
	Meta    map[string]any
}

// IterationStats — makespan лучшей, средней и худшей особи итерации
// и глобально лучший makespan на момент её окончания.
type IterationStats struct {
	Iteration  int
	Best       int
	Mean       float64
	Worst      int
	GlobalBest int
}

// Gap — относительное превышение нижней оценки, в процентах.
func (r Result) Gap() float64 {
	if r.LowerBound <= 0 {
		return 0
	}
	return float64(r.Makespan-r.LowerBound) * 100 / float64(r.LowerBound)
}
