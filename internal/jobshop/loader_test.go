package jobshop_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

const yamlProblem = `
# порядок работ сохраняется
J2: [[M1, 3], [M2, 2]]
J1:
  - {machine: M2, duration: 4}
  - [M1, 1]
`

func TestParseYAMLKeepsJobOrder(t *testing.T) {
	p, err := jobshop.ParseProblem([]byte(yamlProblem), jobshop.FormatYAML)
	require.NoError(t, err)

	require.Equal(t, 2, p.NumJobs())
	assert.Equal(t, "J2", p.JobID(0))
	assert.Equal(t, "J1", p.JobID(1))
	assert.Equal(t, []string{"M1", "M2"}, p.Machines())
	assert.Equal(t, jobshop.Operation{Machine: "M2", Duration: 4}, p.Op(jobshop.OpRef{Job: 1, Index: 0}))
	assert.Equal(t, jobshop.Operation{Machine: "M1", Duration: 1}, p.Op(jobshop.OpRef{Job: 1, Index: 1}))
	assert.Equal(t, 6, p.LowerBound())
}

func TestParseJSON(t *testing.T) {
	doc := `{
    "J1": [["M1", 2], {"machine": "M2", "duration": 3}],
    "J2": [[1, 5]]
}`
	p, err := jobshop.ParseProblem([]byte(doc), jobshop.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "J1", p.JobID(0))
	assert.Equal(t, []string{"M1", "M2", "1"}, p.Machines())
	assert.Equal(t, 5, p.LowerBound())
}

func TestParseDocumentFormatErrors(t *testing.T) {
	cases := map[string]string{
		"empty":             ``,
		"not a mapping":     `[[M1, 1]]`,
		"three-item pair":   `J1: [[M1, 2, 3]]`,
		"string duration":   `J1: [[M1, fast]]`,
		"fraction":          `J1: [[M1, 2.5]]`,
		"extra field":       `J1: [{machine: M1, duration: 2, colour: red}]`,
		"missing duration":  `J1: [{machine: M1}]`,
		"negative duration": `J1: [[M1, -1]]`,
		"no operations":     `J1: []`,
		"syntax":            `J1: [[M1, 2]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jobshop.ParseProblem([]byte(doc), jobshop.FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, jobshop.ErrFormat), "got %v", err)
		})
	}
}

func TestParseUnknownMachine(t *testing.T) {
	_, err := jobshop.ParseProblem([]byte(`J1: [[M1, 1], [M7, 2]]`), jobshop.FormatYAML, jobshop.WithMachines("M1", "M2"))
	require.Error(t, err)

	var fe *jobshop.FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "J1", fe.Job)
	assert.Equal(t, 1, fe.Index)
	assert.Contains(t, fe.Reason, "M7")
}

const hclProblem = `
machines = ["M1", "M2"]

job "J1" {
  operation {
    machine  = "M1"
    duration = 3
  }
  operation {
    machine  = "M2"
    duration = 2
  }
}

job "J2" {
  operation {
    machine  = "M2"
    duration = 4
  }
}
`

func TestParseHCL(t *testing.T) {
	p, err := jobshop.ParseProblem([]byte(hclProblem), jobshop.FormatHCL)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumJobs())
	assert.Equal(t, 3, p.NumOps())
	assert.Equal(t, []string{"M1", "M2"}, p.Machines())
	assert.Equal(t, map[string]int{"M1": 3, "M2": 6}, p.MachineLoads())
	assert.Equal(t, 6, p.LowerBound())
}

func TestParseHCLErrors(t *testing.T) {
	t.Run("undeclared machine", func(t *testing.T) {
		doc := `
machines = ["M1"]

job "J1" {
  operation {
    machine  = "M3"
    duration = 1
  }
}
`
		_, err := jobshop.ParseProblem([]byte(doc), jobshop.FormatHCL)
		assert.True(t, errors.Is(err, jobshop.ErrFormat))
	})
	t.Run("syntax", func(t *testing.T) {
		_, err := jobshop.ParseProblem([]byte(`job "J1" {`), jobshop.FormatHCL)
		assert.True(t, errors.Is(err, jobshop.ErrFormat))
	})
	t.Run("missing duration", func(t *testing.T) {
		doc := `
job "J1" {
  operation {
    machine = "M1"
  }
}
`
		_, err := jobshop.ParseProblem([]byte(doc), jobshop.FormatHCL)
		assert.True(t, errors.Is(err, jobshop.ErrFormat))
	})
}

const jspProblem = `# instance: tiny
2 3
0 3 1 2 2 2
1 4 0 1
`

func TestParseJSP(t *testing.T) {
	p, err := jobshop.ParseProblem([]byte(jspProblem), jobshop.FormatJSP)
	require.NoError(t, err)
	assert.Equal(t, "J1", p.JobID(0))
	assert.Equal(t, "J2", p.JobID(1))
	assert.Equal(t, []string{"M0", "M1", "M2"}, p.Machines())
	assert.Equal(t, jobshop.Operation{Machine: "M1", Duration: 4}, p.Op(jobshop.OpRef{Job: 1, Index: 0}))
	assert.Equal(t, 7, p.LowerBound())
}

func TestParseJSPErrors(t *testing.T) {
	cases := map[string]string{
		"no header":        "# nothing\n",
		"bad header":       "2\n0 1\n",
		"job count":        "3 2\n0 1 1 1\n1 2 0 2\n",
		"odd pair count":   "1 2\n0 1 1\n",
		"not a number":     "1 2\n0 x\n",
		"machine overflow": "1 2\n0 1 5 1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jobshop.ParseProblem([]byte(doc), jobshop.FormatJSP)
			require.Error(t, err)
			assert.True(t, errors.Is(err, jobshop.ErrFormat), "got %v", err)
		})
	}
}

func TestLoadProblemFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kitchen.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlProblem), 0o644))

	p, err := jobshop.LoadProblem(path)
	require.NoError(t, err)
	assert.Equal(t, 2, p.NumJobs())

	_, err = jobshop.LoadProblem(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, jobshop.ErrFormat), "I/O errors are not format errors")

	_, err = jobshop.LoadProblem(filepath.Join(dir, "problem.xml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]jobshop.Format{
		"a.yaml":     jobshop.FormatYAML,
		"a.YML":      jobshop.FormatYAML,
		"dir/a.json": jobshop.FormatJSON,
		"a.hcl":      jobshop.FormatHCL,
		"ft06.txt":   jobshop.FormatJSP,
		"ft06.jsp":   jobshop.FormatJSP,
	} {
		got, err := jobshop.FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := jobshop.FormatFromPath("problem")
	assert.Error(t, err)
}
