package ga

import (
	"math/rand"

	"jobShop/internal/jobshop"
)

// tournamentSelect реализует бинарный турнир: две различные особи,
// побеждает строго большая fitness, при равенстве — первая выбранная.
func tournamentSelect(fitness []int, rng *rand.Rand) int {
	a, b := distinctPair(len(fitness), rng)
	if fitness[b] > fitness[a] {
		return b
	}
	return a
}

// distinctPair возвращает два различных индекса из [0, n), n >= 2.
func distinctPair(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// orderCrossover копирует отрезок [i, j) первого родителя на те же позиции,
// остальные позиции заполняются операциями второго родителя в его порядке:
// child = remaining[:i] + p1[i:j] + remaining[i:].
// Порядок операций каждой работы сохраняется, т.к. оба родителя допустимы.
func orderCrossover(
	p1, p2, child jobshop.Individual,
	flat func(jobshop.OpRef) int,
	rng *rand.Rand,
	mark []int,
	stamp *int,
) {
	n := len(p1)
	if n < 2 {
		copy(child, p1)
		return
	}

	i, j := distinctPair(n, rng)
	if i > j {
		i, j = j, i
	}

	*stamp++
	cur := *stamp
	for k := i; k < j; k++ {
		mark[flat(p1[k])] = cur
	}

	// Заполнение оставшихся позиций генами второго родителя, минуя отрезок
	w := 0
	for _, ref := range p2 {
		if mark[flat(ref)] == cur {
			continue
		}
		if w == i {
			w = j
		}
		child[w] = ref
		w++
	}
	copy(child[i:j], p1[i:j])
}

// mutateSwap меняет местами две случайные позиции, если обмен сохраняет
// порядок операций внутри работ. Делает не больше attempts попыток.
func mutateSwap(ind jobshop.Individual, attempts int, rng *rand.Rand) bool {
	if len(ind) < 2 {
		return false
	}
	for a := 0; a < attempts; a++ {
		i, j := distinctPair(len(ind), rng)
		if ind.SwapSafe(i, j) {
			return true
		}
	}
	return false
}
