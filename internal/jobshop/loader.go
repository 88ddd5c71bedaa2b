package jobshop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format — формат файла с описанием задачи.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
	// FormatJSP — текстовый формат JSPLIB / OR-Library.
	FormatJSP Format = "jsp"
)

// FormatFromPath определяет формат по расширению файла.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	case ".txt", ".jsp":
		return FormatJSP, nil
	default:
		return "", fmt.Errorf("cannot detect problem format from %q (want .yaml, .yml, .json, .hcl, .txt or .jsp)", path)
	}
}

// LoadProblem читает задачу из файла. Ошибки содержимого — FormatError.
func LoadProblem(path string, opts ...ProblemOption) (*Problem, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problem %s: %w", path, err)
	}
	p, err := parseProblem(data, format, filepath.Base(path), opts)
	if err != nil {
		return nil, fmt.Errorf("load problem %s: %w", path, err)
	}
	return p, nil
}

// ParseProblem разбирает задачу из памяти.
func ParseProblem(data []byte, format Format, opts ...ProblemOption) (*Problem, error) {
	return parseProblem(data, format, "problem."+string(format), opts)
}

func parseProblem(data []byte, format Format, filename string, opts []ProblemOption) (*Problem, error) {
	var (
		jobs     []Job
		machines []string
		err      error
	)
	switch format {
	case FormatYAML, FormatJSON:
		jobs, err = parseDocument(data)
	case FormatHCL:
		jobs, machines, err = parseHCL(data, filename)
	case FormatJSP:
		jobs, machines, err = parseJSP(data)
	default:
		return nil, fmt.Errorf("unsupported problem format %q", format)
	}
	if err != nil {
		return nil, err
	}

	// Станки, объявленные в файле, можно переопределить опциями вызывающего.
	if len(machines) > 0 {
		opts = append([]ProblemOption{WithMachines(machines...)}, opts...)
	}
	return NewProblem(jobs, opts...)
}
