package ga

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hashicorp/go-multierror"

	"jobShop/internal/jobshop"
)

// ErrExhausted — не удалось получить особь с makespan > LB в пределах бюджета.
var ErrExhausted = errors.New("lower bound avoidance exhausted")

type ExhaustionError struct {
	Slot       int
	Makespan   int
	LowerBound int
}

func (e *ExhaustionError) Error() string {
	return fmt.Sprintf("slot %d: makespan %d still at lower bound %d", e.Slot, e.Makespan, e.LowerBound)
}

func (e *ExhaustionError) Is(target error) bool { return target == ErrExhausted }

type Population []jobshop.Individual

// SeedReport описывает построение начальной популяции.
type SeedReport struct {
	Slots int
	// Resampled — слоты, где первая особь попала в LB и потребовалась пересборка.
	Resampled int
	// Perturbed — слоты, где пересборка не помогла и применялись локальные обмены.
	Perturbed   int
	Exhausted   []*ExhaustionError
	LowerBound  int
	Evaluations int
	// AtLowerBound — число особей итоговой популяции с makespan == LB.
	AtLowerBound int
}

// LowerBoundFree — в начальной популяции нет ни одной особи на нижней оценке.
func (r SeedReport) LowerBoundFree() bool { return r.AtLowerBound == 0 }

// Err объединяет ошибки исчерпания. Это мягкая деградация, а не отказ запуска.
func (r SeedReport) Err() error {
	var errs *multierror.Error
	for _, e := range r.Exhausted {
		errs = multierror.Append(errs, e)
	}
	return errs.ErrorOrNil()
}

// GenerateIndividual строит случайную допустимую особь: на каждом шаге
// выбирается равновероятно одна из «доступных» операций (по одной на работу —
// её наименьшая ещё не выбранная), после чего на её место встаёт следующая
// операция той же работы.
func GenerateIndividual(p *jobshop.Problem, rng *rand.Rand) jobshop.Individual {
	ind := make(jobshop.Individual, 0, p.NumOps())
	frontier := make([]jobshop.OpRef, 0, p.NumJobs())
	for j := 0; j < p.NumJobs(); j++ {
		frontier = append(frontier, jobshop.OpRef{Job: j})
	}

	for len(frontier) > 0 {
		k := rng.Intn(len(frontier))
		ref := frontier[k]
		ind = append(ind, ref)
		if ref.Index+1 < p.JobLen(ref.Job) {
			frontier[k] = jobshop.OpRef{Job: ref.Job, Index: ref.Index + 1}
		} else {
			frontier[k] = frontier[len(frontier)-1]
			frontier = frontier[:len(frontier)-1]
		}
	}
	return ind
}

// CreateInitialPopulation строит популяцию размера size. При cfg.AvoidLowerBound
// особь с makespan == LB пересобирается (до cfg.MaxResamples раз), затем
// возмущается допустимыми обменами (до cfg.MaxPerturbations попыток).
// Если и это не помогло, особь принимается как есть и попадает в отчёт.
func CreateInitialPopulation(p *jobshop.Problem, size int, cfg Config, rng *rand.Rand) (Population, SeedReport, error) {
	if size < 0 {
		return nil, SeedReport{}, fmt.Errorf("размер популяции должен быть >= 0 (получено %d)", size)
	}
	eval, err := jobshop.NewEvaluator(p)
	if err != nil {
		return nil, SeedReport{}, err
	}

	lb := p.LowerBound()
	rep := SeedReport{Slots: size, LowerBound: lb}
	pop := make(Population, 0, size)

	for slot := 0; slot < size; slot++ {
		ind := GenerateIndividual(p, rng)
		ms := eval.MustMakespan(ind)
		rep.Evaluations++

		if cfg.AvoidLowerBound && ms <= lb {
			rep.Resampled++
			for tries := 0; ms <= lb && tries < cfg.MaxResamples; tries++ {
				ind = GenerateIndividual(p, rng)
				ms = eval.MustMakespan(ind)
				rep.Evaluations++
			}
			if ms <= lb {
				rep.Perturbed++
				var evals int
				ind, ms, evals = perturbAboveBound(ind, eval, lb, cfg.MaxPerturbations, rng)
				rep.Evaluations += evals
			}
			if ms <= lb {
				rep.Exhausted = append(rep.Exhausted, &ExhaustionError{Slot: slot, Makespan: ms, LowerBound: lb})
			}
		}

		if ms == lb {
			rep.AtLowerBound++
		}
		pop = append(pop, ind)
	}
	return pop, rep, nil
}

// perturbAboveBound накапливает случайные допустимые обмены на копии особи,
// пока makespan не превысит lb или не кончится бюджет.
func perturbAboveBound(
	ind jobshop.Individual,
	eval *jobshop.Evaluator,
	lb, budget int,
	rng *rand.Rand,
) (jobshop.Individual, int, int) {
	tmp := ind.Clone()
	ms := eval.MustMakespan(tmp)
	evals := 1
	if len(tmp) < 2 {
		return tmp, ms, evals
	}
	for a := 0; a < budget; a++ {
		i, j := distinctPair(len(tmp), rng)
		if !tmp.SwapSafe(i, j) {
			continue
		}
		ms = eval.MustMakespan(tmp)
		evals++
		if ms > lb {
			break
		}
	}
	return tmp, ms, evals
}
