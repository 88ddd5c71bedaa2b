package main

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"jobShop/internal/aco"
	"jobShop/internal/ga"
	"jobShop/internal/opt"
	"jobShop/internal/pso"
	"jobShop/internal/sa"
	"jobShop/internal/ts"
)

// registerSolverFlags добавляет параметры алгоритмов; используется solve и bench.
func registerSolverFlags(flags *pflag.FlagSet) {
	gaDef := ga.DefaultConfig()
	saDef := sa.DefaultConfig()
	tsDef := ts.DefaultConfig()
	acoDef := aco.DefaultConfig()
	psoDef := pso.DefaultConfig()

	// --- Генетический алгоритм ---
	flags.Int("ga-pop", gaDef.Population, "размер популяции")
	flags.Int("ga-gen", gaDef.Generations, "количество поколений")
	flags.Float64("ga-mut", gaDef.MutationRate, "вероятность мутации")
	flags.Bool("ga-elitism", gaDef.Elitism, "перенос лучшей особи в следующее поколение")
	flags.Int("ga-mut-attempts", gaDef.MutationAttempts, "попыток найти допустимый обмен при мутации")
	flags.Bool("ga-avoid-lb", gaDef.AvoidLowerBound, "исключать особи с makespan == LB из начальной популяции")
	flags.Int("ga-resamples", gaDef.MaxResamples, "пересборок особи на слот при попадании в LB")
	flags.Int("ga-perturbations", gaDef.MaxPerturbations, "попыток локальных обменов после исчерпания пересборок")
	flags.Int("ga-workers", gaDef.Workers, "воркеров для параллельной оценки популяции")
	flags.Int("ga-report-every", gaDef.ReportEvery, "период вывода статистики поколений")

	// --- Алгоритм имитации отжига ---
	flags.Int("sa-iter", saDef.Iterations, "общее количество итераций (0 => sa-iter-per-op × число операций)")
	flags.Int("sa-iter-per-op", saDef.IterationsPerOp, "количество итераций на одну операцию")
	flags.Float64("sa-t0", saDef.InitialTemp, "начальная температура")
	flags.Float64("sa-tmin", saDef.FinalTemp, "конечная температура")
	flags.Float64("sa-alpha", saDef.Alpha, "коэффициент охлаждения (alpha)")
	flags.String("sa-neigh", string(saDef.Neighborhood), "тип окрестности: swap | insert")

	// --- Табу-поиск ---
	flags.Int("ts-iter", tsDef.Iterations, "общее количество итераций (0 => ts-iter-per-op × число операций)")
	flags.Int("ts-iter-per-op", tsDef.IterationsPerOp, "количество итераций на одну операцию")
	flags.Int("ts-tenure", tsDef.TabuTenure, "длина табу-списка (в итерациях)")
	flags.Int("ts-tenure-rand", tsDef.TabuTenureRand, "случайное добавление к сроку табу [0..rand]")
	flags.Int("ts-neighbors", tsDef.NeighborsPerIter, "количество рассматриваемых соседей на итерацию")
	flags.String("ts-neigh", string(tsDef.Neighborhood), "тип окрестности: insert | swap")

	// --- Муравьиный алгоритм ---
	flags.Int("aco-iter", acoDef.Iterations, "общее количество итераций (0 => aco-iter-per-op × число операций)")
	flags.Int("aco-iter-per-op", acoDef.IterationsPerOp, "количество итераций на одну операцию")
	flags.Int("aco-ants", acoDef.Ants, "количество муравьёв")
	flags.Float64("aco-alpha", acoDef.Alpha, "вес феромона (alpha)")
	flags.Float64("aco-beta", acoDef.Beta, "вес эвристики (beta)")
	flags.Float64("aco-rho", acoDef.Rho, "коэффициент испарения (rho)")
	flags.Float64("aco-q", acoDef.Q, "коэффициент усиления феромона (Q)")
	flags.Float64("aco-tau0", acoDef.Tau0, "начальное значение феромона")
	flags.Int("aco-cand-k", acoDef.CandidateK, "ограничение кандидатов: 0 = все")

	// --- Алгоритм роя частиц ---
	flags.Int("pso-iter", psoDef.Iterations, "общее количество итераций (0 => pso-iter-per-op × число операций)")
	flags.Int("pso-iter-per-op", psoDef.IterationsPerOp, "количество итераций на одну операцию")
	flags.Int("pso-particles", psoDef.Particles, "количество частиц")
	flags.Float64("pso-w", psoDef.W, "инерционный вес (w)")
	flags.Float64("pso-c1", psoDef.C1, "когнитивный коэффициент (c1)")
	flags.Float64("pso-c2", psoDef.C2, "социальный коэффициент (c2)")
	flags.Float64("pso-vmax", psoDef.VMax, "ограничение скорости (0 => без ограничения)")
	flags.Float64("pso-pos-min", psoDef.PosMin, "минимальное значение позиции")
	flags.Float64("pso-pos-max", psoDef.PosMax, "максимальное значение позиции")
}

func gaConfig() (ga.Config, error) {
	cfg := ga.Config{
		Population:       v.GetInt("ga-pop"),
		Generations:      v.GetInt("ga-gen"),
		MutationRate:     v.GetFloat64("ga-mut"),
		Elitism:          v.GetBool("ga-elitism"),
		MutationAttempts: v.GetInt("ga-mut-attempts"),
		AvoidLowerBound:  v.GetBool("ga-avoid-lb"),
		MaxResamples:     v.GetInt("ga-resamples"),
		MaxPerturbations: v.GetInt("ga-perturbations"),
		Workers:          v.GetInt("ga-workers"),
		ReportEvery:      v.GetInt("ga-report-every"),
	}
	if err := cfg.Validate(); err != nil {
		return ga.Config{}, fmt.Errorf("конфликт в конфигурации генетического алгоритма: %w", err)
	}
	return cfg, nil
}

func saConfig() (sa.Config, error) {
	cfg := sa.DefaultConfig()
	cfg.Iterations = v.GetInt("sa-iter")
	cfg.IterationsPerOp = v.GetInt("sa-iter-per-op")
	cfg.InitialTemp = v.GetFloat64("sa-t0")
	cfg.FinalTemp = v.GetFloat64("sa-tmin")
	cfg.Alpha = v.GetFloat64("sa-alpha")
	cfg.Neighborhood = sa.Neighborhood(v.GetString("sa-neigh"))
	if err := cfg.Validate(); err != nil {
		return sa.Config{}, fmt.Errorf("конфликт в конфигурации алгоритма имитации отжига: %w", err)
	}
	return cfg, nil
}

func tsConfig() (ts.Config, error) {
	cfg := ts.Config{
		Iterations:       v.GetInt("ts-iter"),
		IterationsPerOp:  v.GetInt("ts-iter-per-op"),
		TabuTenure:       v.GetInt("ts-tenure"),
		TabuTenureRand:   v.GetInt("ts-tenure-rand"),
		NeighborsPerIter: v.GetInt("ts-neighbors"),
		Neighborhood:     ts.Neighborhood(v.GetString("ts-neigh")),
	}
	if err := cfg.Validate(); err != nil {
		return ts.Config{}, fmt.Errorf("конфликт в конфигурации табу-поиска: %w", err)
	}
	return cfg, nil
}

func acoConfig() (aco.Config, error) {
	cfg := aco.Config{
		Iterations:      v.GetInt("aco-iter"),
		IterationsPerOp: v.GetInt("aco-iter-per-op"),
		Ants:            v.GetInt("aco-ants"),
		Alpha:           v.GetFloat64("aco-alpha"),
		Beta:            v.GetFloat64("aco-beta"),
		Rho:             v.GetFloat64("aco-rho"),
		Q:               v.GetFloat64("aco-q"),
		Tau0:            v.GetFloat64("aco-tau0"),
		CandidateK:      v.GetInt("aco-cand-k"),
	}
	if err := cfg.Validate(); err != nil {
		return aco.Config{}, fmt.Errorf("конфликт в конфигурации муравьиного алгоритма: %w", err)
	}
	return cfg, nil
}

func psoConfig() (pso.Config, error) {
	cfg := pso.Config{
		Iterations:      v.GetInt("pso-iter"),
		IterationsPerOp: v.GetInt("pso-iter-per-op"),
		Particles:       v.GetInt("pso-particles"),
		W:               v.GetFloat64("pso-w"),
		C1:              v.GetFloat64("pso-c1"),
		C2:              v.GetFloat64("pso-c2"),
		VMax:            v.GetFloat64("pso-vmax"),
		PosMin:          v.GetFloat64("pso-pos-min"),
		PosMax:          v.GetFloat64("pso-pos-max"),
	}
	if err := cfg.Validate(); err != nil {
		return pso.Config{}, fmt.Errorf("конфликт в конфигурации алгоритма роя частиц: %w", err)
	}
	return cfg, nil
}

// Фабрики

func newGAFactory(cfg ga.Config, log logrus.FieldLogger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ga.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Log = log
		return solver
	}
}

func newSAFactory(cfg sa.Config, log logrus.FieldLogger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := sa.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Log = log
		return solver
	}
}

func newTSFactory(cfg ts.Config, log logrus.FieldLogger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := ts.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Log = log
		return solver
	}
}

func newACOFactory(cfg aco.Config, log logrus.FieldLogger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := aco.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Log = log
		return solver
	}
}

func newPSOFactory(cfg pso.Config, log logrus.FieldLogger) func(seed int64) opt.Optimizer {
	return func(seed int64) opt.Optimizer {
		solver, _ := pso.New(cfg, rand.New(rand.NewSource(seed)))
		solver.Log = log
		return solver
	}
}

// factories возвращает фабрики всех доступных алгоритмов по имени.
func factories(log logrus.FieldLogger) (map[string]func(seed int64) opt.Optimizer, error) {
	gaCfg, err := gaConfig()
	if err != nil {
		return nil, err
	}
	saCfg, err := saConfig()
	if err != nil {
		return nil, err
	}
	tsCfg, err := tsConfig()
	if err != nil {
		return nil, err
	}
	acoCfg, err := acoConfig()
	if err != nil {
		return nil, err
	}
	psoCfg, err := psoConfig()
	if err != nil {
		return nil, err
	}
	return map[string]func(seed int64) opt.Optimizer{
		"GA":  newGAFactory(gaCfg, log),
		"SA":  newSAFactory(saCfg, log),
		"TS":  newTSFactory(tsCfg, log),
		"ACO": newACOFactory(acoCfg, log),
		"PSO": newPSOFactory(psoCfg, log),
	}, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, strings.ToUpper(p))
		}
	}
	return out
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
