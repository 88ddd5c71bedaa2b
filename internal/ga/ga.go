package ga

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
)

// Solver — генетический алгоритм для задачи job-shop.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	// Log получает статистику поколений; nil — без вывода.
	Log logrus.FieldLogger
}

// New возвращает новый GA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// RunOptions — параметры запуска в минимальной форме.
type RunOptions struct {
	Population   int
	Generations  int
	MutationRate float64
	Elitism      bool
}

// Run запускает GA с настройками по умолчанию, переопределёнными o.
func Run(ctx context.Context, p *jobshop.Problem, o RunOptions, rng *rand.Rand, log logrus.FieldLogger) (opt.Result, error) {
	cfg := DefaultConfig()
	cfg.Population = o.Population
	cfg.Generations = o.Generations
	cfg.MutationRate = o.MutationRate
	cfg.Elitism = o.Elitism

	s, err := New(cfg, rng)
	if err != nil {
		return opt.Result{}, err
	}
	s.Log = log
	return s.Solve(ctx, p)
}

// Seeding извлекает отчёт о начальной популяции из результата GA.
func Seeding(res opt.Result) (SeedReport, bool) {
	rep, ok := res.Meta["seeding"].(SeedReport)
	return rep, ok
}

// stopReason — значение Meta["stopped"] при ошибке оценки: отмена контекста
// во время параллельной оценки не является ошибкой популяции.
func stopReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return "context"
	}
	return "error"
}

func (s *Solver) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, p *jobshop.Problem) (opt.Result, error) {
	start := time.Now()

	// Проверка корректности входных данных и конфигурации
	if err := p.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	log := s.logger()

	pool, err := newEvalPool(p, s.Cfg.Workers)
	if err != nil {
		return opt.Result{}, err
	}

	lb := p.LowerBound()
	popSize := s.Cfg.Population

	// Начальная популяция без особей на нижней оценке
	popA, seeding, err := CreateInitialPopulation(p, popSize, s.Cfg, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	if err := seeding.Err(); err != nil {
		log.WithError(err).WithField("exhausted", len(seeding.Exhausted)).
			Warn("initial population still contains lower-bound individuals")
	}

	fitA := make([]int, popSize)
	if err := pool.evaluate(ctx, popA, fitA, 0); err != nil {
		return opt.Result{}, err
	}
	evaluations := seeding.Evaluations + popSize

	// Глобально лучшая особь
	bestIdx := argmax(fitA)
	best := popA[bestIdx].Clone()
	bestFit := fitA[bestIdx]

	history := make([]opt.IterationStats, 0, s.Cfg.Generations+1)
	st := statsOf(0, fitA, bestFit)
	history = append(history, st)
	log.WithFields(logrus.Fields{
		"gen":          0,
		"gen_best":     st.Best,
		"avg":          fmt.Sprintf("%.2f", st.Mean),
		"global_best":  st.GlobalBest,
		"lb":           lb,
		"loads":        p.MachineLoads(),
		"longest_job":  p.LongestJob(),
		"lb_free_seed": seeding.LowerBoundFree(),
	}).Info("generation")

	// Буфер следующего поколения
	popB := make(Population, popSize)
	for i := range popB {
		popB[i] = make(jobshop.Individual, p.NumOps())
	}
	fitB := make([]int, popSize)

	// mark и stamp используются кроссовером для отметки уже включённых операций
	mark := make([]int, p.NumOps())
	stamp := 0

	meta := map[string]any{
		"population":    popSize,
		"generations":   s.Cfg.Generations,
		"mutation_rate": s.Cfg.MutationRate,
		"elitism":       s.Cfg.Elitism,
		"seeding":       seeding,
	}

	for gen := 1; gen <= s.Cfg.Generations; gen++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			meta["stopped"] = "context"
			res := toOptResult(p, best, -bestFit, evaluations, gen-1, history, meta)
			res.Duration = time.Since(start)
			return res, err
		}

		write := 0

		// Элитизм: лучшая особь предыдущего поколения без изменений
		if s.Cfg.Elitism {
			copy(popB[0], popA[bestIdx])
			fitB[0] = fitA[bestIdx]
			write++
		}
		first := write

		for ; write < popSize; write++ {
			// Турнирный отбор
			p1 := tournamentSelect(fitA, s.Rng)
			p2 := tournamentSelect(fitA, s.Rng)

			// Кроссовер
			child := popB[write]
			orderCrossover(popA[p1], popA[p2], child, p.FlatIndex, s.Rng, mark, &stamp)

			// Мутация
			if s.Rng.Float64() < s.Cfg.MutationRate {
				mutateSwap(child, s.Cfg.MutationAttempts, s.Rng)
			}
		}

		if err := pool.evaluate(ctx, popB, fitB, first); err != nil {
			meta["stopped"] = stopReason(ctx)
			res := toOptResult(p, best, -bestFit, evaluations, gen-1, history, meta)
			res.Duration = time.Since(start)
			return res, err
		}
		evaluations += popSize - first

		// Смена поколений
		popA, popB = popB, popA
		fitA, fitB = fitB, fitA

		bestIdx = argmax(fitA)
		if fitA[bestIdx] > bestFit {
			bestFit = fitA[bestIdx]
			copy(best, popA[bestIdx])
		}

		st := statsOf(gen, fitA, bestFit)
		history = append(history, st)
		if s.shouldReport(gen) {
			log.WithFields(logrus.Fields{
				"gen":         gen,
				"gen_best":    st.Best,
				"avg":         fmt.Sprintf("%.2f", st.Mean),
				"global_best": st.GlobalBest,
			}).Info("generation")
		}
	}

	res := toOptResult(p, best, -bestFit, evaluations, s.Cfg.Generations, history, meta)
	res.Duration = time.Since(start)
	return res, nil
}

func (s *Solver) shouldReport(gen int) bool {
	if gen == 1 || gen == s.Cfg.Generations {
		return true
	}
	return s.Cfg.ReportEvery > 0 && gen%s.Cfg.ReportEvery == 0
}

// argmax возвращает индекс первой особи с максимальной fitness.
func argmax(fit []int) int {
	best := 0
	for i := 1; i < len(fit); i++ {
		if fit[i] > fit[best] {
			best = i
		}
	}
	return best
}

func statsOf(gen int, fit []int, globalBestFit int) opt.IterationStats {
	st := opt.IterationStats{
		Iteration:  gen,
		Best:       -fit[0],
		Worst:      -fit[0],
		GlobalBest: -globalBestFit,
	}
	sum := 0
	for _, f := range fit {
		ms := -f
		st.Best = min(st.Best, ms)
		st.Worst = max(st.Worst, ms)
		sum += ms
	}
	st.Mean = float64(sum) / float64(len(fit))
	return st
}
