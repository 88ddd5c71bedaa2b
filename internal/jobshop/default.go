package jobshop

// DefaultProblem — учебный экземпляр: шесть работ на трёх станках
// (M1 — духовка, M2 — плита, M3 — блендер).
// Нижняя оценка 40 — загрузка M1 (15+5+8+3+3+6).
func DefaultProblem() *Problem {
	p, err := NewProblem([]Job{
		{ID: "J1", Ops: []Operation{{"M3", 2}, {"M2", 3}, {"M1", 15}}},
		{ID: "J2", Ops: []Operation{{"M2", 4}, {"M3", 2}, {"M2", 6}}},
		{ID: "J3", Ops: []Operation{{"M1", 5}, {"M2", 2}, {"M3", 3}}},
		{ID: "J4", Ops: []Operation{{"M2", 2}, {"M1", 8}, {"M2", 2}}},
		{ID: "J5", Ops: []Operation{{"M3", 4}, {"M1", 3}, {"M1", 3}}},
		{ID: "J6", Ops: []Operation{{"M1", 6}, {"M2", 5}, {"M3", 2}}},
	}, WithMachines("M1", "M2", "M3"))
	if err != nil {
		panic(err)
	}
	return p
}
