// Package report форматирует готовое расписание: таблица, CSV и текстовая диаграмма Ганта.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"jobShop/internal/jobshop"
)

// WriteTable печатает операции в порядке начала и итоговый makespan.
// Номера операций в выводе начинаются с 1.
func WriteTable(w io.Writer, p *jobshop.Problem, s jobshop.Schedule) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "JOB\tOP\tMACHINE\tSTART\tEND")
	for _, a := range s.Assignments(p) {
		fmt.Fprintf(tw, "%s\tOp%d\t%s\t%d\t%d\n", a.Job, a.Index+1, a.Machine, a.Start, a.End)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal makespan: %d\n", s.Makespan())
	return err
}

var csvHeader = []string{"job", "op_index", "machine", "duration", "start", "end"}

func WriteCSV(w io.Writer, p *jobshop.Problem, s jobshop.Schedule) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, a := range s.Assignments(p) {
		row := []string{
			a.Job,
			strconv.Itoa(a.Index + 1),
			a.Machine,
			strconv.Itoa(a.Duration),
			strconv.Itoa(a.Start),
			strconv.Itoa(a.End),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV записывает расписание в файл, создавая каталоги при необходимости.
func SaveCSV(path string, p *jobshop.Problem, s jobshop.Schedule) error {
	if d := filepath.Dir(path); d != "." {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, p, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
