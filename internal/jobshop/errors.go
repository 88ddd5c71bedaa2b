package jobshop

import (
	"errors"
	"fmt"
)

var (
	// ErrFormat соответствует любой *FormatError (errors.Is).
	ErrFormat = errors.New("malformed problem definition")
	// ErrInvalidIndividual соответствует любой *ValidationError (errors.Is).
	ErrInvalidIndividual = errors.New("invalid individual")
)

// FormatError описывает одну ошибку в определении задачи.
// Index < 0, если ошибка не относится к конкретной операции.
type FormatError struct {
	Job    string
	Index  int
	Reason string
}

func (e *FormatError) Error() string {
	switch {
	case e.Job == "":
		return "format: " + e.Reason
	case e.Index < 0:
		return fmt.Sprintf("format: job %q: %s", e.Job, e.Reason)
	default:
		return fmt.Sprintf("format: job %q op %d: %s", e.Job, e.Index, e.Reason)
	}
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

func formatErr(job string, index int, format string, args ...any) *FormatError {
	return &FormatError{Job: job, Index: index, Reason: fmt.Sprintf(format, args...)}
}

// ValidationError — особь нарушает порядок операций внутри работы
// или не является перестановкой всех операций задачи.
type ValidationError struct {
	Position int
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Position < 0 {
		return "individual: " + e.Reason
	}
	return fmt.Sprintf("individual position %d: %s", e.Position, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidIndividual }
