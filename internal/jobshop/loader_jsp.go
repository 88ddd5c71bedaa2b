package jobshop

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parseJSP разбирает классический текстовый формат JSPLIB / OR-Library:
//
//	# комментарий
//	<jobs> <machines>
//	<machine> <duration> <machine> <duration> ...   (по строке на работу)
//
// Станки нумеруются с нуля и получают id "M<n>", работы — "J1", "J2", ...
func parseJSP(data []byte) ([]Job, []string, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	var (
		jobs             []Job
		nJobs, nMachines int
		header           bool
		line             int
	)
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		nums := make([]int, len(fields))
		for i, f := range fields {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, nil, formatErr("", -1, "line %d: %q is not an integer", line, f)
			}
			nums[i] = v
		}

		if !header {
			if len(nums) < 2 || nums[0] <= 0 || nums[1] <= 0 {
				return nil, nil, formatErr("", -1, "line %d: header must be \"<jobs> <machines>\" with positive values", line)
			}
			nJobs, nMachines = nums[0], nums[1]
			header = true
			continue
		}

		id := "J" + strconv.Itoa(len(jobs)+1)
		if len(nums)%2 != 0 {
			return nil, nil, formatErr(id, -1, "line %d: expected machine/duration pairs", line)
		}
		ops := make([]Operation, 0, len(nums)/2)
		for i := 0; i+1 < len(nums); i += 2 {
			ops = append(ops, Operation{Machine: jspMachine(nums[i]), Duration: nums[i+1]})
		}
		jobs = append(jobs, Job{ID: id, Ops: ops})
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read jsp: %w", err)
	}
	if !header {
		return nil, nil, formatErr("", -1, "missing \"<jobs> <machines>\" header")
	}
	if len(jobs) != nJobs {
		return nil, nil, formatErr("", -1, "header declares %d jobs, found %d", nJobs, len(jobs))
	}

	machines := make([]string, nMachines)
	for m := range machines {
		machines[m] = jspMachine(m)
	}
	return jobs, machines, nil
}

func jspMachine(n int) string { return "M" + strconv.Itoa(n) }
