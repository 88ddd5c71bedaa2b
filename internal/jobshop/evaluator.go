package jobshop

import "fmt"

// Evaluator строит расписания и считает makespan/fitness.
// Держит рабочие буферы, поэтому не безопасен для конкурентного использования:
// каждому воркеру нужен свой Evaluator.
type Evaluator struct {
	p            *Problem
	jobReady     []int
	machineReady []int
	next         []int
}

func NewEvaluator(p *Problem) (*Evaluator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{
		p:            p,
		jobReady:     make([]int, p.NumJobs()),
		machineReady: make([]int, p.NumMachines()),
		next:         make([]int, p.NumJobs()),
	}, nil
}

func (e *Evaluator) check(ind Individual) error {
	if e == nil || e.p == nil {
		return fmt.Errorf("nil evaluator")
	}
	return validateInto(e.p, ind, e.next)
}

func (e *Evaluator) Makespan(ind Individual) (int, error) {
	if err := e.check(ind); err != nil {
		return 0, err
	}
	return e.simulate(ind, nil), nil
}

// Fitness = -makespan: алгоритмы всегда максимизируют fitness.
func (e *Evaluator) Fitness(ind Individual) (int, error) {
	ms, err := e.Makespan(ind)
	if err != nil {
		return 0, err
	}
	return -ms, nil
}

func (e *Evaluator) MustMakespan(ind Individual) int {
	ms, err := e.Makespan(ind)
	if err != nil {
		panic(err)
	}
	return ms
}

func (e *Evaluator) MustFitness(ind Individual) int {
	return -e.MustMakespan(ind)
}
