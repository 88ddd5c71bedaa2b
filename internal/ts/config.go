package ts

import "fmt"

// Neighborhood определяет тип окрестности.
type Neighborhood string

const (
	NeighborhoodInsert Neighborhood = "insert"
	NeighborhoodSwap   Neighborhood = "swap"
)

type Config struct {
	Iterations int
	// IterationsPerOp используется, если Iterations == 0.
	IterationsPerOp int

	// TabuTenure — на сколько итераций запрещается вернуть операцию на прежнюю позицию.
	TabuTenure     int
	TabuTenureRand int

	// NeighborsPerIter — сколько случайных ходов пробуется за итерацию;
	// ходы, нарушающие порядок операций в работе, отбрасываются без оценки.
	NeighborsPerIter int

	Neighborhood Neighborhood
}

func DefaultConfig() Config {
	return Config{
		Iterations:      0,
		IterationsPerOp: 40,

		TabuTenure:     7,
		TabuTenureRand: 3,

		NeighborsPerIter: 60,
		Neighborhood:     NeighborhoodInsert,
	}
}

func (c Config) Validate() error {
	if c.Iterations <= 0 && c.IterationsPerOp <= 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerOp > 0",
		)
	}
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.NeighborsPerIter <= 0 {
		return fmt.Errorf(
			"NeighborsPerIter должно быть > 0 (получено %d)",
			c.NeighborsPerIter,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodInsert, NeighborhoodSwap:
		// ok
	default:
		return fmt.Errorf(
			"неизвестный тип окрестности %q",
			c.Neighborhood,
		)
	}
	return nil
}
