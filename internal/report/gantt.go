package report

import (
	"fmt"
	"io"
	"strings"

	"jobShop/internal/jobshop"
)

const jobSymbols = "123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// WriteGantt рисует по строке на станок; каждая операция закрашена
// символом своей работы, простои — точками. width — число колонок на шкалу
// времени (<= 0 — одна колонка на единицу времени).
func WriteGantt(w io.Writer, p *jobshop.Problem, s jobshop.Schedule, width int) error {
	ms := s.Makespan()
	if ms == 0 {
		_, err := fmt.Fprintln(w, "(empty schedule)")
		return err
	}
	if width <= 0 {
		width = ms
	}
	col := func(t int) int { return t * width / ms }

	machines := p.Machines()
	rows := make(map[string][]byte, len(machines))
	nameWidth := 0
	for _, m := range machines {
		rows[m] = []byte(strings.Repeat(".", width))
		nameWidth = max(nameWidth, len(m))
	}

	symbol := make(map[string]byte, p.NumJobs())
	for j := 0; j < p.NumJobs(); j++ {
		sym := byte('#')
		if j < len(jobSymbols) {
			sym = jobSymbols[j]
		}
		symbol[p.JobID(j)] = sym
	}

	for _, a := range s.Assignments(p) {
		row := rows[a.Machine]
		lo, hi := col(a.Start), col(a.End)
		if hi == lo && hi < width {
			hi++
		}
		for c := lo; c < hi; c++ {
			row[c] = symbol[a.Job]
		}
	}

	for _, m := range machines {
		if _, err := fmt.Fprintf(w, "%-*s |%s|\n", nameWidth, m, rows[m]); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%-*s  0%*d\n", nameWidth, "", width-1, ms); err != nil {
		return err
	}

	legend := make([]string, 0, p.NumJobs())
	for j := 0; j < p.NumJobs(); j++ {
		legend = append(legend, fmt.Sprintf("%c=%s", symbol[p.JobID(j)], p.JobID(j)))
	}
	_, err := fmt.Fprintln(w, strings.Join(legend, " "))
	return err
}
