package sa

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"jobShop/internal/ga"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Solver - структура реализации алгоритма имитации отжига
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (opt.Result, error) {
	start := time.Now()

	if err := p.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	eval, err := jobshop.NewEvaluator(p)
	if err != nil {
		return opt.Result{}, err
	}

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * p.NumOps()
	}

	// Текущее и кандидатное решения
	curr := ga.GenerateIndividual(p, s.Rng)
	cand := curr.Clone()

	currCost := eval.MustMakespan(curr)
	bestCost := currCost
	best := curr.Clone()

	evals := 1
	T := s.Cfg.InitialTemp
	iter := 0

	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := s.result(p, best, bestCost, evals, iter, T)
			res.Meta["stopped"] = "context"
			res.Duration = time.Since(start)
			return res, err
		}

		copy(cand, curr)
		if !s.neighbor(cand) {
			// Допустимый ход не найден — только охлаждение
			T *= s.Cfg.Alpha
			continue
		}

		candCost := eval.MustMakespan(cand)
		evals++

		delta := candCost - currCost
		accept := false
		if delta <= 0 {
			// Улучшающее решение принимаем всегда
			accept = true
		} else {
			// Критерий Метрополиса:
			// допускает принятие ухудшающих решений
			if s.Rng.Float64() < math.Exp(-float64(delta)/T) {
				accept = true
			}
		}

		if accept {
			// Обмен ролей текущего и кандидатного решений
			curr, cand = cand, curr
			currCost = candCost

			// Обновление глобально лучшего решения
			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"iterations": iter,
			"best":       bestCost,
			"lb":         p.LowerBound(),
			"final_temp": T,
		}).Info("annealing finished")
	}

	res := s.result(p, best, bestCost, evals, iter, T)
	res.Duration = time.Since(start)
	return res, nil
}

// neighbor применяет к p один допустимый ход выбранной окрестности.
func (s *Solver) neighbor(p jobshop.Individual) bool {
	n := len(p)
	if n < 2 {
		return false
	}
	for a := 0; a < s.Cfg.MoveAttempts; a++ {
		i := s.Rng.Intn(n)
		j := s.Rng.Intn(n - 1)
		if j >= i {
			j++
		}
		switch s.Cfg.Neighborhood {
		case NeighborhoodInsert:
			// Перемещение операции из позиции i в позицию j
			if p.MoveSafe(i, j) {
				return true
			}
		default:
			// Обмен двух операций разных работ
			if p.SwapSafe(i, j) {
				return true
			}
		}
	}
	return false
}

func (s *Solver) result(p *jobshop.Problem, best jobshop.Individual, bestCost, evals, iters int, T float64) opt.Result {
	ind := best.Clone()
	sched, err := jobshop.Build(p, ind)
	if err != nil {
		panic(err)
	}
	return opt.Result{
		Individual:  ind,
		Schedule:    sched,
		Makespan:    bestCost,
		LowerBound:  p.LowerBound(),
		Evaluations: evals,
		Iterations:  iters,
		Meta: map[string]any{
			"initial_temp": s.Cfg.InitialTemp,
			"final_temp":   s.Cfg.FinalTemp,
			"alpha":        s.Cfg.Alpha,
			"neighborhood": string(s.Cfg.Neighborhood),
			"temperature":  T,
		},
	}
}
