package jobshop

import (
	"fmt"
	"math/rand"
	"strconv"
)

// RandomProblem генерирует экземпляр размера jobs×machines: каждая работа
// проходит все станки ровно по одному разу в случайном порядке,
// длительности равномерно распределены в [minTime, maxTime].
// Станки получают id "M1".."Mm", работы — "J1".."Jn".
func RandomProblem(jobs, machines, minTime, maxTime int, rng *rand.Rand) (*Problem, error) {
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	if jobs <= 0 || machines <= 0 {
		return nil, fmt.Errorf("количество работ и станков должно быть > 0 (получено %dx%d)", jobs, machines)
	}
	if minTime <= 0 || maxTime < minTime {
		return nil, fmt.Errorf("некорректные границы длительности [%d, %d]", minTime, maxTime)
	}

	ids := make([]string, machines)
	for m := range ids {
		ids[m] = "M" + strconv.Itoa(m+1)
	}

	span := maxTime - minTime + 1
	list := make([]Job, jobs)
	for j := range list {
		route := rng.Perm(machines)
		ops := make([]Operation, machines)
		for k, m := range route {
			ops[k] = Operation{Machine: ids[m], Duration: minTime + rng.Intn(span)}
		}
		list[j] = Job{ID: "J" + strconv.Itoa(j+1), Ops: ops}
	}
	return NewProblem(list, WithMachines(ids...))
}
