package ts

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

// Solver — табу-поиск по порядкам операций.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve — основной цикл алгоритма
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (opt.Result, error) {
	start := time.Now()

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

	n := p.NumOps()
	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerOp * n
	}

	// Текущее и кандидатное решения
	curr := ga.GenerateIndividual(p, s.Rng)
	cand := curr.Clone()

	currCost := eval.MustMakespan(curr)
	evals := 1

	// Глобально лучшее решение
	best := curr.Clone()
	bestCost := currCost

	// Ёмкость выбирается с запасом относительно длины табу
	tabu := newTabuList(max(32, (s.Cfg.TabuTenure+s.Cfg.TabuTenureRand)*4))

	iter := 0
	for ; iter < maxIter && n > 1; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := s.result(p, best, bestCost, evals, iter)
			res.Meta["stopped"] = "context"
			res.Duration = time.Since(start)
			return res, err
		}

		// Лучший разрешённый ход и запасной (лучший без учёта табу)
		var chosen, fallback move
		chosen.cost, fallback.cost = math.MaxInt, math.MaxInt

		for k := 0; k < s.Cfg.NeighborsPerIter; k++ {
			from := s.Rng.Intn(n)
			to := s.Rng.Intn(n - 1)
			if to >= from {
				to++
			}

			copy(cand, curr)
			if !s.apply(cand, from, to) {
				continue
			}
			op := p.FlatIndex(curr[from])

			cost := eval.MustMakespan(cand)
			evals++

			m := move{from: from, to: to, op: op, cost: cost}
			if cost < fallback.cost {
				fallback = m
			}

			// Табуированный ход пропускается,
			// если не выполняется критерий аспирации
			if tabu.IsTabu(moveKey(op, to), iter) && cost >= bestCost {
				continue
			}
			if cost < chosen.cost {
				chosen = m
			}
		}

		if chosen.cost == math.MaxInt {
			chosen = fallback
		}
		// Ни одного допустимого хода среди сэмплов — пробуем снова
		if chosen.cost == math.MaxInt {
			continue
		}

		s.apply(curr, chosen.from, chosen.to)
		currCost = chosen.cost

		// Запрет вернуть операцию на прежнюю позицию
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosen.op, chosen.from), iter+tenure)

		// Обновление глобально лучшего решения
		if currCost < bestCost {
			bestCost = currCost
			copy(best, curr)
		}
	}

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"iterations": iter,
			"best":       bestCost,
			"lb":         p.LowerBound(),
		}).Info("tabu search finished")
	}

	res := s.result(p, best, bestCost, evals, iter)
	res.Duration = time.Since(start)
	return res, nil
}

type move struct {
	from, to int
	// op — сквозной номер перемещаемой операции
	op   int
	cost int
}

func (s *Solver) apply(ind jobshop.Individual, from, to int) bool {
	if s.Cfg.Neighborhood == NeighborhoodSwap {
		return ind.SwapSafe(from, to)
	}
	return ind.MoveSafe(from, to)
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
			"tabu_tenure":        s.Cfg.TabuTenure,
			"tabu_tenure_rand":   s.Cfg.TabuTenureRand,
			"neighbors_per_iter": s.Cfg.NeighborsPerIter,
			"neighborhood":       string(s.Cfg.Neighborhood),
		},
	}
}

// tabuList — структура табу-списка.
// Реализована как кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
}

// newTabuList создаёт табу-список заданной ёмкости.
func newTabuList(capacity int) *tabuList {
	if capacity < 8 {
		capacity = 8
	}
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

// IsTabu проверяет, является ли ход табуированным на текущей итерации.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add добавляет новый табу-ход с указанием итерации истечения.
func (t *tabuList) Add(k uint64, expiry int) {
	// Вытесняемый элемент удаляется, только если его срок не был обновлён
	if oldK := t.key[t.i]; oldK != 0 {
		if curExp, ok := t.m[oldK]; ok && curExp == t.exp[t.i] {
			delete(t.m, oldK)
		}
	}

	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry

	t.i++
	if t.i >= len(t.key) {
		t.i = 0
	}
}

// moveKey — ключ «операция op на позиции pos»; никогда не равен нулю.
func moveKey(op, pos int) uint64 {
	return (uint64(uint32(op))+1)<<32 | uint64(uint32(pos))
}
