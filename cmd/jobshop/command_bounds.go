package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print the makespan lower bound with machine loads and job durations",
	RunE:  runBounds,
}

func registerBoundsCommand(root *cobra.Command) {
	root.AddCommand(boundsCmd)
}

func runBounds(cmd *cobra.Command, _ []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	p, err := loadProblem(log)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	loads := p.MachineLoads()
	fmt.Fprintln(tw, "Machine\tLoad")
	for _, m := range p.Machines() {
		fmt.Fprintf(tw, "%s\t%d\n", m, loads[m])
	}
	fmt.Fprintln(tw)

	durations := p.JobDurations()
	fmt.Fprintln(tw, "Job\tDuration")
	for j := 0; j < p.NumJobs(); j++ {
		fmt.Fprintf(tw, "%s\t%d\n", p.JobID(j), durations[p.JobID(j)])
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Max machine load\t%d\n", p.MaxMachineLoad())
	fmt.Fprintf(tw, "Longest job\t%d\n", p.LongestJob())
	fmt.Fprintf(tw, "Lower bound\t%d\n", p.LowerBound())
	return tw.Flush()
}
