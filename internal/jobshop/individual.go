package jobshop

import "fmt"

// OpRef ссылается на операцию Index работы Job (индексы внутри Problem).
type OpRef struct {
	Job   int
	Index int
}

// Individual — порядок обработки всех операций задачи.
// Внутри каждой работы операции идут по возрастанию индекса.
type Individual []OpRef

func (ind Individual) Clone() Individual {
	out := make(Individual, len(ind))
	copy(out, ind)
	return out
}

// ValidateIndividual проверяет, что ind — перестановка всех операций p
// с сохранением порядка внутри каждой работы.
func ValidateIndividual(p *Problem, ind Individual) error {
	return validateInto(p, ind, make([]int, p.NumJobs()))
}

// validateInto — ValidateIndividual с внешним буфером next (len == NumJobs).
func validateInto(p *Problem, ind Individual, next []int) error {
	if len(ind) != p.NumOps() {
		return &ValidationError{Position: -1, Reason: fmt.Sprintf("length must be %d (got %d)", p.NumOps(), len(ind))}
	}
	for j := range next {
		next[j] = 0
	}
	for pos, ref := range ind {
		if ref.Job < 0 || ref.Job >= len(next) {
			return &ValidationError{Position: pos, Reason: fmt.Sprintf("job %d out of range [0,%d)", ref.Job, len(next))}
		}
		want := next[ref.Job]
		switch {
		case ref.Index < want:
			return &ValidationError{Position: pos, Reason: fmt.Sprintf("duplicate operation %s/%d", p.JobID(ref.Job), ref.Index)}
		case ref.Index >= p.JobLen(ref.Job):
			return &ValidationError{Position: pos, Reason: fmt.Sprintf("operation %s/%d out of range", p.JobID(ref.Job), ref.Index)}
		case ref.Index > want:
			return &ValidationError{Position: pos, Reason: fmt.Sprintf("operation %s/%d placed before %s/%d", p.JobID(ref.Job), ref.Index, p.JobID(ref.Job), want)}
		}
		next[ref.Job]++
	}
	return nil
}

// SwapSafe меняет местами позиции i и j, только если обмен не нарушает
// порядок операций: работы различны и между позициями нет других операций
// ни одной из двух работ. Возвращает false, если обмен отклонён.
func (ind Individual) SwapSafe(i, j int) bool {
	if i == j || i < 0 || j < 0 || i >= len(ind) || j >= len(ind) {
		return false
	}
	if i > j {
		i, j = j, i
	}
	a, b := ind[i].Job, ind[j].Job
	if a == b {
		return false
	}
	for k := i + 1; k < j; k++ {
		if job := ind[k].Job; job == a || job == b {
			return false
		}
	}
	ind[i], ind[j] = ind[j], ind[i]
	return true
}

// MoveSafe извлекает операцию из позиции from и вставляет её в позицию to,
// если на пройденном участке нет операций той же работы.
func (ind Individual) MoveSafe(from, to int) bool {
	if from == to || from < 0 || to < 0 || from >= len(ind) || to >= len(ind) {
		return false
	}
	job := ind[from].Job
	lo, hi := from+1, to
	if to < from {
		lo, hi = to, from-1
	}
	for k := lo; k <= hi; k++ {
		if ind[k].Job == job {
			return false
		}
	}

	ref := ind[from]
	if from < to {
		// Сдвиг элементов влево
		copy(ind[from:to], ind[from+1:to+1])
	} else {
		// Сдвиг элементов вправо
		copy(ind[to+1:from+1], ind[to:from])
	}
	ind[to] = ref
	return true
}
