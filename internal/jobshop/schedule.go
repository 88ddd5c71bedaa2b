package jobshop

import "sort"

// Slot — интервал [Start, End) обработки одной операции.
type Slot struct {
	Start int
	End   int
}

// Schedule хранит интервалы по работам: Slots[j][k] — операция k работы j.
type Schedule struct {
	Slots [][]Slot
}

func (s Schedule) Slot(ref OpRef) Slot { return s.Slots[ref.Job][ref.Index] }

// Makespan — максимальное время окончания; 0 для пустого расписания.
func (s Schedule) Makespan() int {
	ms := 0
	for _, job := range s.Slots {
		for _, slot := range job {
			ms = max(ms, slot.End)
		}
	}
	return ms
}

// Len — число запланированных операций.
func (s Schedule) Len() int {
	n := 0
	for _, job := range s.Slots {
		n += len(job)
	}
	return n
}

// Assignment — строка расписания для вывода и экспорта.
type Assignment struct {
	Job      string
	Index    int
	Machine  string
	Duration int
	Start    int
	End      int
}

// Assignments разворачивает расписание в строки, отсортированные по началу,
// затем по порядку работ в задаче и индексу операции.
func (s Schedule) Assignments(p *Problem) []Assignment {
	type row struct {
		job int
		a   Assignment
	}
	rows := make([]row, 0, s.Len())
	for j, job := range s.Slots {
		for k, slot := range job {
			op := p.Op(OpRef{Job: j, Index: k})
			rows = append(rows, row{job: j, a: Assignment{
				Job:      p.JobID(j),
				Index:    k,
				Machine:  op.Machine,
				Duration: op.Duration,
				Start:    slot.Start,
				End:      slot.End,
			}})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.a.Start != b.a.Start {
			return a.a.Start < b.a.Start
		}
		if a.job != b.job {
			return a.job < b.job
		}
		return a.a.Index < b.a.Index
	})

	out := make([]Assignment, len(rows))
	for i, r := range rows {
		out[i] = r.a
	}
	return out
}

// Build строит расписание для особи ind. Удобная обёртка над Evaluator.Build.
func Build(p *Problem, ind Individual) (Schedule, error) {
	e, err := NewEvaluator(p)
	if err != nil {
		return Schedule{}, err
	}
	return e.Build(ind)
}

// Build моделирует обработку операций в порядке ind: каждая операция
// начинается, когда освободились и её работа, и её станок.
// Особь должна быть допустимой, иначе возвращается *ValidationError.
func (e *Evaluator) Build(ind Individual) (Schedule, error) {
	if err := e.check(ind); err != nil {
		return Schedule{}, err
	}

	slots := make([][]Slot, e.p.NumJobs())
	for j := range slots {
		slots[j] = make([]Slot, e.p.JobLen(j))
	}
	e.simulate(ind, func(ref OpRef, start, end int) {
		slots[ref.Job][ref.Index] = Slot{Start: start, End: end}
	})
	return Schedule{Slots: slots}, nil
}

func (e *Evaluator) simulate(ind Individual, record func(ref OpRef, start, end int)) int {
	for j := range e.jobReady {
		e.jobReady[j] = 0
	}
	for m := range e.machineReady {
		e.machineReady[m] = 0
	}

	ms := 0
	for _, ref := range ind {
		m := e.p.machineOf(ref)
		start := max(e.jobReady[ref.Job], e.machineReady[m])
		end := start + e.p.Op(ref).Duration
		e.jobReady[ref.Job] = end
		e.machineReady[m] = end
		if record != nil {
			record(ref, start, end)
		}
		ms = max(ms, end)
	}
	return ms
}
