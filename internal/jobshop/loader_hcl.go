package jobshop

import (
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclProblem — корневые блоки HCL-файла:
//
//	machines = ["M1", "M2"]
//
//	job "J1" {
//	  operation {
//	    machine  = "M2"
//	    duration = 3
//	  }
//	}
type hclProblem struct {
	Machines []string `hcl:"machines,optional"`
	Jobs     []hclJob `hcl:"job,block"`
}

type hclJob struct {
	ID         string         `hcl:"id,label"`
	Operations []hclOperation `hcl:"operation,block"`
}

type hclOperation struct {
	Machine  string `hcl:"machine"`
	Duration int    `hcl:"duration"`
}

func parseHCL(data []byte, filename string) ([]Job, []string, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, nil, formatErr("", -1, "parse hcl: %v", diags)
	}

	var root hclProblem
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, nil, formatErr("", -1, "decode hcl: %v", diags)
	}

	jobs := make([]Job, 0, len(root.Jobs))
	for _, j := range root.Jobs {
		ops := make([]Operation, 0, len(j.Operations))
		for _, op := range j.Operations {
			ops = append(ops, Operation{Machine: op.Machine, Duration: op.Duration})
		}
		jobs = append(jobs, Job{ID: j.ID, Ops: ops})
	}
	return jobs, root.Machines, nil
}
