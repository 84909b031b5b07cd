package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mipsgrade/internal/simulator"
	"github.com/roach88/mipsgrade/internal/testutil"
)

const bytesSuite = `
name: bytes
tests:
  - name: store byte
    program: store.asm
    initial_state:
      registers:
        a0: 0x45
    expected_state:
      memory:
        "0x10010000": {value: "0x45", size: byte}

  - name: wrong register
    program: store.asm
    expected_state:
      registers:
        v0: 7
`

const passingSuite = `
name: passing
tests:
  - name: vacuous
    program: store.asm
`

// suiteDir lays out a directory with two suites sharing one program.
func suiteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "store.asm", "")
	writeFile(t, dir, "bytes.yaml", bytesSuite)
	writeFile(t, dir, "nested/passing.yml", passingSuite)
	writeFile(t, dir, "nested/store.asm", "")
	writeFile(t, dir, "notes.txt", "not a suite")
	return dir
}

func bytesSimulator() *testutil.FakeSimulator {
	return testutil.NewFakeSimulator().WatchText(testutil.WatchOutput(
		map[uint32]uint32{0x10010000: 0x45},
		map[string]uint32{"v0": 3},
	))
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, &RootOptions{}, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentSuite(t *testing.T) {
	stdout, _, err := execute(t, &RootOptions{}, "test", "/nonexistent/suites")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "suite not found")
}

func TestTestCommandDirectory(t *testing.T) {
	dir := suiteDir(t)
	sim := bytesSimulator()

	stdout, _, err := execute(t, withSimulator(sim), "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, stdout, "bytes (1/2 passed)")
	assert.Contains(t, stdout, "✓ store byte")
	assert.Contains(t, stdout, "✗ wrong register (score 0.00)")
	assert.Contains(t, stdout, "Incorrect value in $v0! Expected: 7 Actual: 0x00000003")
	assert.Contains(t, stdout, "passing (1/1 passed)")
	assert.Contains(t, stdout, "Test Summary: 2 passed, 1 failed, 3 total")
	assert.NotContains(t, stdout, "notes")
}

func TestTestCommandFilter(t *testing.T) {
	dir := suiteDir(t)
	sim := bytesSimulator()

	stdout, _, err := execute(t, withSimulator(sim), "test", filepath.Join(dir, "bytes.yaml"), "--filter", "store*")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bytes (1/1 passed)")
	assert.NotContains(t, stdout, "wrong register")
	assert.Contains(t, stdout, "✓ All cases passed")
	assert.Equal(t, 1, sim.CallCount(simulator.Watch))
}

func TestTestCommandInvalidFilter(t *testing.T) {
	dir := suiteDir(t)
	stdout, _, err := execute(t, withSimulator(bytesSimulator()), "test", dir, "--filter", "[")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "invalid filter pattern")
}

func TestTestCommandInvalidSuite(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.yaml", "name: empty\ntests: []\n")

	stdout, _, err := execute(t, withSimulator(bytesSimulator()), "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stdout, "invalid suite")
}

func TestTestCommandJSON(t *testing.T) {
	dir := suiteDir(t)
	opts := withSimulator(bytesSimulator())
	opts.RunIDs = testutil.NewFixedRunIDs("run-1", "run-2")

	stdout, _, err := execute(t, opts, "--format", "json", "test", dir, "--parallel", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
	assert.Equal(t, "1 case(s) failed", resp.Error.Message)

	assert.Equal(t, 3, resp.Data.Total)
	assert.Equal(t, 2, resp.Data.Passed)
	require.Len(t, resp.Data.Suites, 2)

	first := resp.Data.Suites[0]
	assert.Equal(t, "run-1", first.RunID)
	assert.Equal(t, "bytes", first.Suite)
	require.Len(t, first.Cases, 2)
	assert.Equal(t, "store byte", first.Cases[0].Name)
	assert.True(t, first.Cases[0].Passed())
	assert.Equal(t, "wrong register", first.Cases[1].Name)
	assert.False(t, first.Cases[1].Passed())

	assert.Equal(t, "run-2", resp.Data.Suites[1].RunID)
}
