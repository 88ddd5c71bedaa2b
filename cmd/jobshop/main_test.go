package main

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobShop/internal/jobshop"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBoundsCommand(t *testing.T) {
	out, err := execute(t, "bounds")
	require.NoError(t, err)
	assert.Regexp(t, `M1\s+40`, out)
	assert.Regexp(t, `J1\s+20`, out)
	assert.Regexp(t, `Lower bound\s+40`, out)
}

func TestSolveCommand(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "schedule.csv")
	out, err := execute(t, "solve", "--ga-pop", "10", "--ga-gen", "5", "--seed", "3", "--gantt", "--csv", csvPath, "--log-level", "warn")
	require.NoError(t, err)

	assert.Contains(t, out, "Total makespan:")
	assert.Contains(t, out, "Lower bound: 40")
	assert.Contains(t, out, "Initial population free of LB individuals: true")
	assert.Contains(t, out, "1=J1")

	_, err = os.Stat(csvPath)
	assert.NoError(t, err)
}

func TestSolveCommandRejectsBadConfig(t *testing.T) {
	_, err := execute(t, "solve", "--algo", "GA", "--ga-mut", "2", "--log-level", "warn")
	assert.Error(t, err)
	_, err = execute(t, "solve", "--algo", "XX", "--ga-mut", "0.2", "--log-level", "warn")
	assert.ErrorContains(t, err, "XX")
}

func TestSolveCommandOtherAlgorithms(t *testing.T) {
	for _, algo := range []string{"SA", "TS", "ACO", "PSO"} {
		out, err := execute(t, "solve", "--algo", algo, "--seed", "2",
			"--sa-iter", "200", "--ts-iter", "30", "--aco-iter", "10", "--pso-iter", "10", "--log-level", "warn")
		require.NoError(t, err, algo)
		assert.Contains(t, out, "Lower bound: 40", algo)
		assert.NotContains(t, out, "Initial population", algo)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(good, []byte("J1: [[M1, 2], [M2, 3]]\nJ2: [[M2, 1]]\n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("J1: [[M1, 0]]\nJ2: []\n"), 0o644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "OK (2 jobs, 2 machines, 3 operations, lower bound 5)")

	out, err = execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "bad.yaml: INVALID")
	assert.Contains(t, out, "duration must be > 0")
	assert.Contains(t, out, "job has no operations")
}

func TestBenchCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	out, err := execute(t, "bench", "--runs", "2", "--algos", "ga,ts",
		"--ga-pop", "10", "--ga-gen", "5", "--ts-iter", "50", "--out", path, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "Запущен алгоритм GA")
	assert.Contains(t, out, "Запущен алгоритм TS")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, bytes.Count(data, []byte("\n")))
}

func TestBenchCommandPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	out, err := execute(t, "bench", "--runs", "1", "--algos", "aco,pso", "--pairs", "4x3,5x2",
		"--instance-seed", "7", "--aco-iter", "5", "--pso-iter", "5", "--out", path, "--log-level", "warn")
	require.NoError(t, err)
	assert.Contains(t, out, "Запущен алгоритм ACO; задача 4x3: 4 работ 3 машин")
	assert.Contains(t, out, "Запущен алгоритм PSO; задача 5x2: 5 работ 2 машин")
	assert.NotContains(t, out, "задача default")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, bytes.Count(data, []byte("\n")))
}

func TestParsePairs(t *testing.T) {
	cases, err := parsePairs("20x5, 3X2", 777)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "20x5", cases[0].Name)
	assert.Equal(t, 20, cases[0].Problem.NumJobs())
	assert.Equal(t, 5, cases[0].Problem.NumMachines())
	assert.Equal(t, "3x2", cases[1].Name)
	assert.Equal(t, 6, cases[1].Problem.NumOps())

	want, err := jobshop.RandomProblem(3, 2, minOpTime, maxOpTime, rand.New(rand.NewSource(777+10_000+300+2)))
	require.NoError(t, err)
	assert.Equal(t, want.Jobs(), cases[1].Problem.Jobs())

	again, err := parsePairs("20x5", 777)
	require.NoError(t, err)
	assert.Equal(t, cases[0].Problem.Jobs(), again[0].Problem.Jobs())

	empty, err := parsePairs("", 777)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, bad := range []string{"20", "ax5", "0x3", "2x3x4"} {
		_, err := parsePairs(bad, 777)
		assert.Error(t, err, bad)
	}
}

func TestMachinesFromEnvironment(t *testing.T) {
	good := filepath.Join(t.TempDir(), "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("J1: [[M1, 2], [M2, 3]]\nJ2: [[M2, 1]]\n"), 0o644))

	t.Setenv("JOBSHOP_MACHINES", "M1,M2")
	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "OK (2 jobs, 2 machines")

	t.Setenv("JOBSHOP_MACHINES", "M1")
	out, err = execute(t, "validate", good)
	require.Error(t, err)
	assert.Contains(t, out, `unknown machine "M2"`)
}

func TestMachineList(t *testing.T) {
	assert.Equal(t, []string{"M1", "M2", "M3"}, machineList([]string{"M1,M2 M3"}))
	assert.Equal(t, []string{"M1", "M2"}, machineList([]string{"M1", " ,M2, "}))
	assert.Empty(t, machineList(nil))
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"GA", "SA"}, splitCSV(" ga, SA ,,"))
	assert.Nil(t, splitCSV(""))
}
