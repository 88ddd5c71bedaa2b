package ga

import "fmt"

type Config struct {
	Population   int
	Generations  int
	MutationRate float64
	// Elitism переносит лучшую особь поколения в следующее без изменений.
	Elitism bool
	// MutationAttempts — сколько пар позиций пробует мутация,
	// прежде чем отказаться (допустимы только обмены, сохраняющие порядок операций).
	MutationAttempts int

	// AvoidLowerBound запрещает особи с makespan == LB в начальной популяции.
	AvoidLowerBound  bool
	MaxResamples     int
	MaxPerturbations int

	// Workers > 1 включает параллельную оценку популяции.
	Workers int
	// ReportEvery — период вывода статистики поколений (0 — только первое и последнее).
	ReportEvery int
}

func (c Config) Validate() error {
	if c.Population <= 1 {
		return fmt.Errorf(
			"размер популяции должен быть > 1 (получено %d)",
			c.Population,
		)
	}
	if c.Generations <= 0 {
		return fmt.Errorf(
			"количество поколений должно быть > 0 (получено %d)",
			c.Generations,
		)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf(
			"вероятность мутации должна быть в диапазоне [0,1] (получено %f)",
			c.MutationRate,
		)
	}
	if c.MutationAttempts <= 0 {
		return fmt.Errorf(
			"число попыток мутации должно быть > 0 (получено %d)",
			c.MutationAttempts,
		)
	}
	if c.MaxResamples < 0 || c.MaxPerturbations < 0 {
		return fmt.Errorf(
			"бюджеты пересэмплирования и возмущений должны быть >= 0 (получено %d и %d)",
			c.MaxResamples,
			c.MaxPerturbations,
		)
	}
	if c.Workers < 0 {
		return fmt.Errorf(
			"число воркеров должно быть >= 0 (получено %d)",
			c.Workers,
		)
	}
	if c.ReportEvery < 0 {
		return fmt.Errorf(
			"период отчёта должен быть >= 0 (получено %d)",
			c.ReportEvery,
		)
	}
	return nil
}

func DefaultConfig() Config {
	return Config{
		Population:       50,
		Generations:      150,
		MutationRate:     0.2,
		Elitism:          true,
		MutationAttempts: 16,
		AvoidLowerBound:  true,
		MaxResamples:     500,
		MaxPerturbations: 400,
		Workers:          1,
		ReportEvery:      15,
	}
}
