package main

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"jobShop/internal/jobshop"
)

var validateCmd = &cobra.Command{
	Use:   "validate [problem files...]",
	Short: "Check problem files and report every format error found",
	RunE:  runValidate,
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		if p := v.GetString("problem"); p != "" {
			paths = []string{p}
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("не указан файл задачи: передайте путь аргументом или через --problem")
	}

	opts := machineOptions()

	out := cmd.OutOrStdout()
	var result *multierror.Error
	for _, path := range paths {
		p, err := jobshop.LoadProblem(path, opts...)
		if err != nil {
			fmt.Fprintf(out, "%s: INVALID\n", path)
			var merr *multierror.Error
			if errors.As(err, &merr) {
				for _, e := range merr.Errors {
					fmt.Fprintf(out, "  - %v\n", e)
				}
			} else {
				fmt.Fprintf(out, "  - %v\n", err)
			}
			result = multierror.Append(result, err)
			continue
		}
		log.WithField("path", path).Debug("problem is valid")
		fmt.Fprintf(out, "%s: OK (%d jobs, %d machines, %d operations, lower bound %d)\n",
			path, p.NumJobs(), p.NumMachines(), p.NumOps(), p.LowerBound())
	}
	if result != nil {
		return fmt.Errorf("%d of %d problem files are invalid", len(result.Errors), len(paths))
	}
	return nil
}
