package main

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"jobShop/internal/bench"
	"jobShop/internal/jobshop"
)

var benchCmd = &cobra.Command{
	Use:   "bench [problem files...]",
	Short: "Run every selected algorithm several times and write statistics to CSV",
	RunE:  runBench,
}

func registerBenchCommand(root *cobra.Command) {
	root.AddCommand(benchCmd)

	flags := benchCmd.Flags()
	flags.String("out", "artifacts/results.csv", "путь к выходному CSV-файлу")
	flags.String("algos", "GA,SA,TS,ACO,PSO", "список алгоритмов: GA, SA, TS, ACO, PSO (через запятую)")
	flags.Int("runs", 10, "количество запусков каждого алгоритма (с разными сидами)")
	flags.Int64("seed", 1000, "базовый сид для запусков алгоритмов")
	flags.Duration("per-run-timeout", 0, "таймаут одного запуска; 0 — без ограничения")
	flags.String("pairs", "", "размеры случайных задач JxM через запятую, например 20x5,50x10,100x20")
	flags.Int64("instance-seed", 777, "базовый сид генерации случайных задач")
	registerSolverFlags(flags)
}

func runBench(cmd *cobra.Command, args []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	// Подробный лог поколений на каждом запуске только мешает.
	solverLog := logrus.New()
	solverLog.SetOutput(cmd.ErrOrStderr())
	solverLog.SetFormatter(log.Formatter)
	solverLog.SetLevel(logrus.WarnLevel)
	if log.IsLevelEnabled(logrus.DebugLevel) {
		solverLog.SetLevel(log.GetLevel())
	}

	cases, err := benchCases(log, args)
	if err != nil {
		return err
	}

	available, err := factories(solverLog)
	if err != nil {
		return err
	}
	var selected []bench.Algorithm
	for _, a := range splitCSV(v.GetString("algos")) {
		factory, ok := available[a]
		if !ok {
			return fmt.Errorf("алгоритм не предоставлен в программе %q; доступные: %v", a, keys(available))
		}
		selected = append(selected, bench.Algorithm{Name: a, Factory: factory})
	}
	if len(selected) == 0 {
		return fmt.Errorf("не выбран ни один алгоритм")
	}

	runner := bench.Runner{
		Runs:          v.GetInt("runs"),
		BaseSeed:      v.GetInt64("seed"),
		PerRunTimeout: v.GetDuration("per-run-timeout"),
	}
	if runner.Runs <= 0 {
		return fmt.Errorf("runs должно быть > 0")
	}

	out := cmd.OutOrStdout()
	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			fmt.Fprintf(out, "Запущен алгоритм %s; задача %s: %d работ %d машин (общее кол-во запусков=%d)...\n",
				a.Name, c.Name, c.Problem.NumJobs(), c.Problem.NumMachines(), runner.Runs)

			rec, err := runner.RunCase(cmd.Context(), c, a)
			if err != nil {
				return err
			}
			records = append(records, rec)

			fmt.Fprintf(out, "  Значение целевой функции: лучшее=%d среднее=%.2f стандартное отклонение=%.2f (LB=%d, попаданий в LB=%d) | Время: среднее=%.2fms среднее отклонение=%.2fms\n",
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.LowerBound, rec.LowerBoundHits,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	path := v.GetString("out")
	if err := bench.WriteCSV(path, records); err != nil {
		return fmt.Errorf("ошибка при записи в CSV: %w", err)
	}
	fmt.Fprintln(out, "Результаты сохранены в", path)
	return nil
}

// benchCases собирает задачи из аргументов и --pairs; если нет ни того,
// ни другого — --problem или встроенный экземпляр.
func benchCases(log logrus.FieldLogger, paths []string) ([]bench.Case, error) {
	generated, err := parsePairs(v.GetString("pairs"), v.GetInt64("instance-seed"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 && len(generated) == 0 {
		p, err := loadProblem(log)
		if err != nil {
			return nil, err
		}
		name := "default"
		if path := v.GetString("problem"); path != "" {
			name = caseName(path)
		}
		return []bench.Case{{Name: name, Problem: p}}, nil
	}

	opts := machineOptions()
	cases := make([]bench.Case, 0, len(paths))
	for _, path := range paths {
		p, err := jobshop.LoadProblem(path, opts...)
		if err != nil {
			return nil, err
		}
		cases = append(cases, bench.Case{Name: caseName(path), Problem: p})
	}
	return append(cases, generated...), nil
}

// Границы длительностей операций случайных задач.
const (
	minOpTime = 1
	maxOpTime = 99
)

// parsePairs строит случайные задачи по списку "JxM". Сид каждой задачи
// зависит от её позиции и размера, поэтому набор воспроизводим.
func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(strings.ToLower(p), "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x10", p)
		}
		jobs, err := strconv.Atoi(strings.TrimSpace(jm[0]))
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := strconv.Atoi(strings.TrimSpace(jm[1]))
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)
		prob, err := jobshop.RandomProblem(jobs, machines, minOpTime, maxOpTime, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, fmt.Errorf("пара %q: %w", p, err)
		}
		cases = append(cases, bench.Case{
			Name:    fmt.Sprintf("%dx%d", jobs, machines),
			Problem: prob,
		})
	}

	return cases, nil
}

func caseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
