package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobShop/internal/ga"
	"jobShop/internal/report"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Search for a short schedule and print it",
	RunE:  runSolve,
}

func registerSolveCommand(root *cobra.Command) {
	root.AddCommand(solveCmd)

	flags := solveCmd.Flags()
	flags.String("algo", "GA", "алгоритм: GA, SA, TS, ACO или PSO")
	flags.Int64("seed", 1, "сид генератора случайных чисел")
	flags.String("csv", "", "путь для сохранения расписания в CSV")
	flags.Bool("gantt", false, "вывести текстовую диаграмму Ганта")
	flags.Int("gantt-width", 80, "ширина шкалы времени диаграммы Ганта (0 — колонка на единицу времени)")
	registerSolverFlags(flags)
}

func runSolve(cmd *cobra.Command, _ []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	p, err := loadProblem(log)
	if err != nil {
		return err
	}

	available, err := factories(log)
	if err != nil {
		return err
	}
	name := splitCSV(v.GetString("algo"))
	if len(name) != 1 {
		return fmt.Errorf("ожидается ровно один алгоритм, получено %q", v.GetString("algo"))
	}
	factory, ok := available[name[0]]
	if !ok {
		return fmt.Errorf("алгоритм %q не предоставлен в программе; доступные: %v", name[0], keys(available))
	}

	res, err := factory(v.GetInt64("seed")).Solve(cmd.Context(), p)
	if err != nil && res.Individual == nil {
		return err
	}
	if err != nil {
		log.WithError(err).Warn("search stopped early, printing best schedule found so far")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Best schedule found:")
	if err := report.WriteTable(out, p, res.Schedule); err != nil {
		return err
	}
	fmt.Fprintf(out, "Lower bound: %d (gap %.2f%%), evaluations: %d, time: %s\n",
		res.LowerBound, res.Gap(), res.Evaluations, res.Duration)
	if seed, ok := ga.Seeding(res); ok {
		fmt.Fprintf(out, "Initial population free of LB individuals: %v (resampled=%d perturbed=%d exhausted=%d)\n",
			seed.LowerBoundFree(), seed.Resampled, seed.Perturbed, len(seed.Exhausted))
	}

	if v.GetBool("gantt") {
		fmt.Fprintln(out)
		if err := report.WriteGantt(out, p, res.Schedule, v.GetInt("gantt-width")); err != nil {
			return err
		}
	}

	if path := v.GetString("csv"); path != "" {
		if err := report.SaveCSV(path, p, res.Schedule); err != nil {
			return fmt.Errorf("ошибка при записи в CSV: %w", err)
		}
		log.WithField("path", path).Info("schedule saved")
	}
	return nil
}
