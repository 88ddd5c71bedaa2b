package pso

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Solver - структура реализации алгоритма роя частиц.
// Позиция частицы — вектор random-keys, по одному ключу на операцию.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

// New возвращает новый PSO-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// particle описывает одну частицу роя.
type particle struct {
	// pos — позиция частицы
	pos []float64
	// vel — скорость частицы
	vel []float64

	// pBestPos — лучшая позиция частицы за всё время
	pBestPos []float64
	// pBestCost — значение целевой функции в pBestPos
	pBestCost int

	// Вспомогательные буферы
	indScratch jobshop.Individual
	idxScratch []int
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (opt.Result, error) {
	start := time.Now()

	// Валидация конфигурации
	if err := p.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	// Оценка целевой функции
	eval, err := jobshop.NewEvaluator(p)
	if err != nil {
		return opt.Result{}, err
	}

	n := p.NumOps()
	dec := newDecoder(p)

	iters := s.Cfg.Iterations
	if iters <= 0 {
		iters = s.Cfg.IterationsPerOp * n
	}

	// Инициализация частиц
	ps := make([]particle, s.Cfg.Particles)
	for i := range ps {
		ps[i] = particle{
			pos:        make([]float64, n),
			vel:        make([]float64, n),
			pBestPos:   make([]float64, n),
			pBestCost:  math.MaxInt,
			indScratch: make(jobshop.Individual, n),
			idxScratch: make([]int, n),
		}
	}

	posMin, posMax := s.Cfg.PosMin, s.Cfg.PosMax
	doPosClamp := posMin < posMax

	// Случайная инициализация позиций и скоростей частиц
	for i := range ps {
		for d := 0; d < n; d++ {
			// Инициализация позиции
			if doPosClamp {
				ps[i].pos[d] = posMin + s.Rng.Float64()*(posMax-posMin)
			} else {
				ps[i].pos[d] = s.Rng.Float64()
			}
			// Инициализация скорости
			if s.Cfg.VMax > 0 {
				ps[i].vel[d] = (s.Rng.Float64()*2 - 1) * s.Cfg.VMax
			} else {
				ps[i].vel[d] = (s.Rng.Float64()*2 - 1) * 0.1
			}
		}

		// Оценка начального положения частицы
		dec.decode(ps[i].pos, ps[i].indScratch, ps[i].idxScratch)
		ps[i].pBestCost = eval.MustMakespan(ps[i].indScratch)
		copy(ps[i].pBestPos, ps[i].pos)
	}

	evals := s.Cfg.Particles

	// Вычисление глобально лучшего решения
	gBestPos := make([]float64, n)
	gBest := make(jobshop.Individual, n)
	gBestCost := math.MaxInt

	for i := range ps {
		if ps[i].pBestCost < gBestCost {
			gBestCost = ps[i].pBestCost
			copy(gBestPos, ps[i].pBestPos)
			copy(gBest, ps[i].indScratch)
		}
	}

	w, c1, c2 := s.Cfg.W, s.Cfg.C1, s.Cfg.C2
	vMax := s.Cfg.VMax

	// Основной цикл
	for iter := 0; iter < iters; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := s.result(p, gBest, gBestCost, evals, iter)
			res.Meta["stopped"] = "context"
			res.Duration = time.Since(start)
			return res, err
		}

		for i := range ps {
			pt := &ps[i]

			// Обновление скорости и позиции частицы
			for d := 0; d < n; d++ {
				r1 := s.Rng.Float64()
				r2 := s.Rng.Float64()

				v := w*pt.vel[d] +
					c1*r1*(pt.pBestPos[d]-pt.pos[d]) +
					c2*r2*(gBestPos[d]-pt.pos[d])

				// Ограничение скорости
				if vMax > 0 {
					if v > vMax {
						v = vMax
					} else if v < -vMax {
						v = -vMax
					}
				}
				pt.vel[d] = v

				// Обновление позиции
				x := pt.pos[d] + v
				if doPosClamp {
					if x < posMin {
						x = posMin
						pt.vel[d] = 0
					} else if x > posMax {
						x = posMax
						pt.vel[d] = 0
					}
				}
				pt.pos[d] = x
			}

			// Оценка нового положения частицы
			dec.decode(pt.pos, pt.indScratch, pt.idxScratch)
			cost := eval.MustMakespan(pt.indScratch)
			evals++

			// Обновление личного лучшего решения
			if cost < pt.pBestCost {
				pt.pBestCost = cost
				copy(pt.pBestPos, pt.pos)
			}

			// Обновление глобального лучшего решения
			if cost < gBestCost {
				gBestCost = cost
				copy(gBestPos, pt.pos)
				copy(gBest, pt.indScratch)
			}
		}
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"iterations": iters,
			"best":       gBestCost,
			"lb":         p.LowerBound(),
		}).Info("particle swarm finished")
	}

	res := s.result(p, gBest, gBestCost, evals, iters)
	res.Duration = time.Since(start)
	return res, nil
}

func (s *Solver) result(p *jobshop.Problem, best jobshop.Individual, bestCost, evals, iters int) opt.Result {
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
			"particles": s.Cfg.Particles,
			"w":         s.Cfg.W,
			"c1":        s.Cfg.C1,
			"c2":        s.Cfg.C2,
			"vmax":      s.Cfg.VMax,
			"pos_min":   s.Cfg.PosMin,
			"pos_max":   s.Cfg.PosMax,
		},
	}
}

// decoder переводит random-keys в особь: ключ с номером i принадлежит
// работе jobOf[i], а порядок ключей задаёт порядок работ в очереди.
type decoder struct {
	jobOf []int
	next  []int
}

func newDecoder(p *jobshop.Problem) *decoder {
	jobOf := make([]int, 0, p.NumOps())
	for j := 0; j < p.NumJobs(); j++ {
		for k := 0; k < p.JobLen(j); k++ {
			jobOf = append(jobOf, j)
		}
	}
	return &decoder{jobOf: jobOf, next: make([]int, p.NumJobs())}
}

// decode сортирует индексы по ключам (при равенстве — по индексу) и выдаёт
// каждой работе её операции по очереди, поэтому особь всегда допустима.
func (d *decoder) decode(keys []float64, out jobshop.Individual, idxScratch []int) {
	n := len(keys)
	for i := 0; i < n; i++ {
		idxScratch[i] = i
	}
	sort.Slice(idxScratch, func(i, j int) bool {
		a := idxScratch[i]
		b := idxScratch[j]
		ka := keys[a]
		kb := keys[b]
		if ka == kb {
			return a < b
		}
		return ka < kb
	})

	for j := range d.next {
		d.next[j] = 0
	}
	for pos, idx := range idxScratch {
		job := d.jobOf[idx]
		out[pos] = jobshop.OpRef{Job: job, Index: d.next[job]}
		d.next[job]++
	}
}
