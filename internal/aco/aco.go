package aco

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Solver - структура реализации муравьиного алгоритма.
// Муравей строит последовательность операций, на каждом шаге выбирая работу,
// чья следующая операция будет поставлена в очередь.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

// New возвращает новый ACO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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
	startTime := time.Now()

	// Валидация входных данных
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

	n := p.NumJobs()

	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * p.NumOps()
	}

	// Суффиксные суммы длительностей: rest[j][k] — работа, оставшаяся в job j
	// начиная с операции k. Чем больше осталось — тем привлекательнее работа.
	rest := make([][]float64, n)
	norm := float64(p.LongestJob())
	for j := 0; j < n; j++ {
		l := p.JobLen(j)
		rest[j] = make([]float64, l)
		acc := 0
		for k := l - 1; k >= 0; k-- {
			acc += p.Op(jobshop.OpRef{Job: j, Index: k}).Duration
			rest[j][k] = float64(acc) / norm
		}
	}

	// Матрица феромонов
	tau := make([]float64, (n+1)*n)
	for i := range tau {
		tau[i] = s.Cfg.Tau0
	}

	// Вспомогательные буферы
	c := &colony{
		p:         p,
		n:         n,
		tau:       tau,
		rest:      rest,
		alpha:     s.Cfg.Alpha,
		beta:      s.Cfg.Beta,
		k:         s.Cfg.CandidateK,
		rng:       s.Rng,
		available: make([]int, n),
		next:      make([]int, n),
		weights:   make([]float64, n),
	}
	ind := make(jobshop.Individual, p.NumOps())
	iterBest := make(jobshop.Individual, p.NumOps())

	var best jobshop.Individual
	bestCost := math.MaxInt
	evals := 0

	for iter := 0; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			if best == nil {
				return opt.Result{Iterations: iter, Duration: time.Since(startTime), Meta: map[string]any{"stopped": "context"}}, err
			}
			res := s.result(p, best, bestCost, evals, iter)
			res.Meta["stopped"] = "context"
			res.Duration = time.Since(startTime)
			return res, err
		}

		// Лучшее решение текущей итерации
		iterBestCost := math.MaxInt

		// Муравьи пошли
		for a := 0; a < s.Cfg.Ants; a++ {
			c.construct(ind)

			cost := eval.MustMakespan(ind)
			evals++

			// Локальное лучшее за итерацию
			if cost < iterBestCost {
				iterBestCost = cost
				copy(iterBest, ind)
			}
			// Глобальное лучшее за всё время
			if cost < bestCost {
				bestCost = cost
				best = ind.Clone()
			}
		}

		// Испарение феромона
		ev := 1.0 - s.Cfg.Rho
		for i := range tau {
			tau[i] *= ev
			if tau[i] < 1e-12 {
				tau[i] = 1e-12
			}
		}

		// Добавление феромона только по лучшему пути итерации
		addPheromonePath(tau, n, iterBest, s.Cfg.Q/float64(iterBestCost))
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"iterations": maxIter,
			"best":       bestCost,
			"lb":         p.LowerBound(),
		}).Info("ant colony finished")
	}

	res := s.result(p, best, bestCost, evals, maxIter)
	res.Duration = time.Since(startTime)
	return res, nil
}

func (s *Solver) result(p *jobshop.Problem, best jobshop.Individual, bestCost, evals, iters int) opt.Result {
	sched, err := jobshop.Build(p, best)
	if err != nil {
		panic(err)
	}
	return opt.Result{
		Individual:  best,
		Schedule:    sched,
		Makespan:    bestCost,
		LowerBound:  p.LowerBound(),
		Evaluations: evals,
		Iterations:  iters,
		Meta: map[string]any{
			"ants":        s.Cfg.Ants,
			"alpha":       s.Cfg.Alpha,
			"beta":        s.Cfg.Beta,
			"rho":         s.Cfg.Rho,
			"Q":           s.Cfg.Q,
			"tau0":        s.Cfg.Tau0,
			"candidate_k": s.Cfg.CandidateK,
		},
	}
}

func tauIdx(n, from, to int) int {
	return from*n + to
}

// addPheromonePath усиливает феромон вдоль последовательности работ особи
// от фиктивного старта до последней операции.
func addPheromonePath(tau []float64, n int, ind jobshop.Individual, delta float64) {
	if len(ind) == 0 {
		return
	}
	tau[tauIdx(n, n, ind[0].Job)] += delta
	for i := 0; i < len(ind)-1; i++ {
		tau[tauIdx(n, ind[i].Job, ind[i+1].Job)] += delta
	}
}

// colony хранит общие для всех муравьёв данные и буферы построения.
type colony struct {
	p    *jobshop.Problem
	n    int
	tau  []float64
	rest [][]float64

	alpha, beta float64
	k           int
	rng         *rand.Rand

	available []int     // работы, у которых остались операции
	next      []int     // номер следующей операции каждой работы
	weights   []float64 // веса вероятностного выбора
}

// construct строит одну особь. Выбирать можно только работы фронта,
// поэтому порядок операций внутри работы соблюдается автоматически.
func (c *colony) construct(out jobshop.Individual) {
	n := c.n
	for j := 0; j < n; j++ {
		c.available[j] = j
		c.next[j] = 0
	}
	rem := n

	prev := n // prev — предыдущая вершина

	for pos := range out {
		// Ограничение списка кандидатов
		k := rem
		if c.k > 0 && c.k < rem {
			k = c.k
			for t := 0; t < k; t++ {
				r := t + c.rng.Intn(rem-t)
				c.available[t], c.available[r] = c.available[r], c.available[t]
			}
		}

		// Подсчёт весов вероятностей выбора
		sumW := 0.0
		for i := 0; i < k; i++ {
			j := c.available[i]
			t := c.tau[tauIdx(n, prev, j)]

			// Формула ACO
			w := fastPow(t, c.alpha) * fastPow(c.rest[j][c.next[j]], c.beta)
			c.weights[i] = w
			sumW += w
		}

		// Стохастический выбор следующей работы
		var chosenIdx int
		if sumW <= 0 {
			chosenIdx = c.rng.Intn(k)
		} else {
			r := c.rng.Float64() * sumW
			acc := 0.0
			chosenIdx = k - 1
			for i := 0; i < k; i++ {
				acc += c.weights[i]
				if r <= acc {
					chosenIdx = i
					break
				}
			}
		}

		job := c.available[chosenIdx]
		out[pos] = jobshop.OpRef{Job: job, Index: c.next[job]}
		c.next[job]++
		prev = job

		// Работа без оставшихся операций покидает фронт
		if c.next[job] == c.p.JobLen(job) {
			c.available[chosenIdx], c.available[rem-1] =
				c.available[rem-1], c.available[chosenIdx]
			rem--
		}
	}
}

// fastPow — оптимизация для частых степеней.
// Таким образом избегаем вызова math.Pow в простых случаях.
func fastPow(x, p float64) float64 {
	if p == 0 {
		return 1.0
	}
	if p == 1 {
		return x
	}
	if p == 2 {
		return x * x
	}
	return math.Pow(x, p)
}
