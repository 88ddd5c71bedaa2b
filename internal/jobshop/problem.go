package jobshop

import (
	"errors"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Operation — шаг работы: станок и длительность обработки.
type Operation struct {
	Machine  string
	Duration int
}

// Job — упорядоченная цепочка операций.
type Job struct {
	ID  string
	Ops []Operation
}

// Problem — неизменяемое описание задачи job-shop.
// Создаётся только через NewProblem / ProblemFromMap / загрузчики.
type Problem struct {
	jobs       []Job
	machines   []string
	machineIdx map[string]int
	// opMachine[j][k] — индекс станка для операции k работы j
	opMachine [][]int
	// offset[j] — номер первой операции работы j в сквозной нумерации
	offset []int
	numOps int
}

type ProblemOption func(*problemOptions)

type problemOptions struct {
	machines []string
}

// WithMachines задаёт явный список станков. Ссылка на станок вне списка — FormatError.
func WithMachines(ids ...string) ProblemOption {
	return func(o *problemOptions) {
		o.machines = append([]string(nil), ids...)
	}
}

// NewProblem проверяет и сохраняет работы в переданном порядке.
// Все найденные ошибки формата возвращаются одной multierror.
func NewProblem(jobs []Job, opts ...ProblemOption) (*Problem, error) {
	var o problemOptions
	for _, opt := range opts {
		opt(&o)
	}
	if len(jobs) == 0 {
		return nil, formatErr("", -1, "no jobs defined")
	}

	var errs *multierror.Error
	p := &Problem{
		jobs:       make([]Job, 0, len(jobs)),
		machineIdx: make(map[string]int),
		opMachine:  make([][]int, 0, len(jobs)),
		offset:     make([]int, 0, len(jobs)),
	}

	declared := len(o.machines) > 0
	for _, m := range o.machines {
		if m == "" {
			errs = multierror.Append(errs, formatErr("", -1, "empty machine id in machine list"))
			continue
		}
		if _, dup := p.machineIdx[m]; dup {
			errs = multierror.Append(errs, formatErr("", -1, "duplicate machine %q in machine list", m))
			continue
		}
		p.machineIdx[m] = len(p.machines)
		p.machines = append(p.machines, m)
	}

	seen := make(map[string]bool, len(jobs))
	for _, job := range jobs {
		switch {
		case job.ID == "":
			errs = multierror.Append(errs, formatErr("", -1, "job with empty id"))
		case seen[job.ID]:
			errs = multierror.Append(errs, formatErr(job.ID, -1, "duplicate job id"))
		}
		seen[job.ID] = true

		if len(job.Ops) == 0 {
			errs = multierror.Append(errs, formatErr(job.ID, -1, "job has no operations"))
		}

		ops := make([]Operation, len(job.Ops))
		copy(ops, job.Ops)
		machinesOf := make([]int, len(ops))
		for k, op := range ops {
			if op.Duration <= 0 {
				errs = multierror.Append(errs, formatErr(job.ID, k, "duration must be > 0 (got %d)", op.Duration))
			}
			if op.Machine == "" {
				errs = multierror.Append(errs, formatErr(job.ID, k, "empty machine id"))
				continue
			}
			idx, ok := p.machineIdx[op.Machine]
			if !ok {
				if declared {
					errs = multierror.Append(errs, formatErr(job.ID, k, "unknown machine %q", op.Machine))
					continue
				}
				idx = len(p.machines)
				p.machineIdx[op.Machine] = idx
				p.machines = append(p.machines, op.Machine)
			}
			machinesOf[k] = idx
		}

		p.jobs = append(p.jobs, Job{ID: job.ID, Ops: ops})
		p.opMachine = append(p.opMachine, machinesOf)
		p.offset = append(p.offset, p.numOps)
		p.numOps += len(ops)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

// ProblemFromMap строит задачу из отображения id работы → операции.
// Работы упорядочиваются по id, чтобы результат не зависел от обхода map.
func ProblemFromMap(jobs map[string][]Operation, opts ...ProblemOption) (*Problem, error) {
	ids := make([]string, 0, len(jobs))
	for id := range jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	list := make([]Job, 0, len(ids))
	for _, id := range ids {
		list = append(list, Job{ID: id, Ops: jobs[id]})
	}
	return NewProblem(list, opts...)
}

func (p *Problem) Validate() error {
	if p == nil {
		return errors.New("problem is nil")
	}
	if len(p.jobs) == 0 || len(p.opMachine) != len(p.jobs) {
		return errors.New("problem is not initialized (use NewProblem)")
	}
	return nil
}

func (p *Problem) NumJobs() int     { return len(p.jobs) }
func (p *Problem) NumOps() int      { return p.numOps }
func (p *Problem) NumMachines() int { return len(p.machines) }

// JobLen — число операций работы j.
func (p *Problem) JobLen(j int) int { return len(p.jobs[j].Ops) }

func (p *Problem) JobID(j int) string { return p.jobs[j].ID }

// Jobs возвращает копию списка работ.
func (p *Problem) Jobs() []Job {
	out := make([]Job, len(p.jobs))
	for i, job := range p.jobs {
		ops := make([]Operation, len(job.Ops))
		copy(ops, job.Ops)
		out[i] = Job{ID: job.ID, Ops: ops}
	}
	return out
}

// Machines возвращает станки в порядке объявления (или первого упоминания).
func (p *Problem) Machines() []string {
	return append([]string(nil), p.machines...)
}

func (p *Problem) Op(ref OpRef) Operation { return p.jobs[ref.Job].Ops[ref.Index] }

// FlatIndex — сквозной номер операции в диапазоне [0, NumOps).
func (p *Problem) FlatIndex(ref OpRef) int { return p.offset[ref.Job] + ref.Index }

func (p *Problem) machineOf(ref OpRef) int { return p.opMachine[ref.Job][ref.Index] }

// MachineLoads — суммарная длительность операций на каждом станке.
func (p *Problem) MachineLoads() map[string]int {
	loads := make(map[string]int, len(p.machines))
	for _, m := range p.machines {
		loads[m] = 0
	}
	for _, job := range p.jobs {
		for _, op := range job.Ops {
			loads[op.Machine] += op.Duration
		}
	}
	return loads
}

// JobDurations — суммарная длительность каждой работы.
func (p *Problem) JobDurations() map[string]int {
	out := make(map[string]int, len(p.jobs))
	for _, job := range p.jobs {
		out[job.ID] = jobTotal(job)
	}
	return out
}

func (p *Problem) MaxMachineLoad() int {
	best := 0
	for _, load := range p.MachineLoads() {
		best = max(best, load)
	}
	return best
}

func (p *Problem) LongestJob() int {
	best := 0
	for _, job := range p.jobs {
		best = max(best, jobTotal(job))
	}
	return best
}

// LowerBound = max(максимальная загрузка станка, самая длинная работа).
// Ни одно допустимое расписание не короче этой величины.
func (p *Problem) LowerBound() int {
	return max(p.MaxMachineLoad(), p.LongestJob())
}

// ComputeLowerBound — то же, что p.LowerBound().
func ComputeLowerBound(p *Problem) int { return p.LowerBound() }

func jobTotal(job Job) int {
	total := 0
	for _, op := range job.Ops {
		total += op.Duration
	}
	return total
}
