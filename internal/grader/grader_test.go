package grader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/simulator"
	"github.com/roach88/mipsgrade/internal/state"
	"github.com/roach88/mipsgrade/internal/testutil"
)

// sources writes a placeholder program and harness and returns their paths.
func sources(t *testing.T) (program, harness string) {
	t.Helper()
	dir := t.TempDir()
	program = filepath.Join(dir, "prog.asm")
	harness = filepath.Join(dir, "harness.asm")
	require.NoError(t, os.WriteFile(program, []byte(".text\nmain:\n"), 0644))
	require.NoError(t, os.WriteFile(harness, []byte(".text\nj main\n"), 0644))
	return program, harness
}

func newGrader(sim simulator.Simulator) *Grader {
	return New(config.Default(), sim, nil)
}

func TestFinalState_PartialCredit(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.V0, "10").Register(state.A0, "3").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(
		testutil.WatchOutput(nil, map[string]uint32{"v0": 10, "a0": 4}))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 0.5, res.Score)
	assert.Equal(t, []string{"Incorrect value in $a0! Expected: 3 Actual: 0x00000004"}, res.Messages)
}

func TestFinalState_LittleEndianExtraction(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().
		Memory("0x10010010", "0x78", state.Byte).
		Memory("0x10010011", "0x56", state.Byte).
		Memory("0x10010012", "0x34", state.Byte).
		Memory("0x10010013", "0x12", state.Byte).
		Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(
		testutil.WatchOutput(map[uint32]uint32{0x10010010: 0x12345678}, nil))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
	assert.Empty(t, res.Messages)

	watch := sim.Calls()[2]
	assert.Equal(t, []string{"0x10010010-0x10010010"}, watch.Targets)
}

func TestFinalState_HalfwordAndWordExtraction(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().
		Memory("0x10010010", "0x5678", state.Halfword).
		Memory("0x10010012", "0x1234", state.Halfword).
		Memory("0x10010014", "0x12345678", state.Word).
		Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(testutil.WatchOutput(
		map[uint32]uint32{0x10010010: 0x12345678, 0x10010014: 0x12345678}, nil))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
	assert.Equal(t, []string{"0x10010010-0x10010010", "0x10010014-0x10010014"}, sim.Calls()[2].Targets)
}

func TestFinalState_MemoryMismatchMessage(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().
		Memory("0x10010001", "0x45", state.Byte).
		Memory("0x10010004", "69420", state.Word).
		Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(testutil.WatchOutput(
		map[uint32]uint32{0x10010000: 0x00004400, 0x10010004: 69420}, nil))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.5, res.Score)
	assert.Equal(t, []string{"Incorrect value in 0x10010001! Expected: 0x45 Actual: 0x44"}, res.Messages)
}

func TestFinalState_VacuousPass(t *testing.T) {
	program, harness := sources(t)
	sim := testutil.NewFakeSimulator()

	res, err := newGrader(sim).FinalState(context.Background(), state.Empty(), program, harness, 100)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 1.0, res.Score)
	assert.Empty(t, res.Messages)
	assert.Empty(t, sim.Calls()[2].Targets)
}

func TestFinalState_VacuousPassLogged(t *testing.T) {
	program, harness := sources(t)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	sim := testutil.NewFakeSimulator().WatchText(testutil.WatchOutput(nil, map[string]uint32{"v0": 0}))
	g := New(config.Default(), sim, logger)
	_, err := g.FinalState(context.Background(), nil, program, harness, 100)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "passes vacuously")

	buf.Reset()
	expected, err := state.New().Register(state.V0, "0").Build()
	require.NoError(t, err)
	_, err = g.FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "passes vacuously")
}

func TestFinalState_AssembleFailureShortCircuits(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.V0, "1").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().AssembleError("Error in prog.asm line 3: invalid instruction")

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, []string{program + " did not assemble correctly"}, res.Messages)
	assert.Len(t, sim.Calls(), 1)
}

func TestFinalState_RunFailureShortCircuits(t *testing.T) {
	program, harness := sources(t)
	sim := testutil.NewFakeSimulator().RunExit(1)

	res, err := newGrader(sim).FinalState(context.Background(), state.Empty(), program, harness, 100)
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, []string{program + " did not run correctly"}, res.Messages)
	assert.Equal(t, 1, sim.CallCount(simulator.Assemble))
	assert.Equal(t, 1, sim.CallCount(simulator.Run))
	assert.Equal(t, 0, sim.CallCount(simulator.Watch))
}

func TestFinalState_MissingFiles(t *testing.T) {
	program, harness := sources(t)
	missing := filepath.Join(t.TempDir(), "nope.asm")

	tests := []struct {
		name    string
		program string
		harness string
	}{
		{"program", missing, harness},
		{"harness", program, missing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := testutil.NewFakeSimulator()
			res, err := newGrader(sim).FinalState(context.Background(), state.Empty(), tt.program, tt.harness, 100)
			require.NoError(t, err)

			assert.False(t, res.Success)
			assert.Equal(t, []string{missing + " does not exist"}, res.Messages)
			assert.Empty(t, sim.Calls())
		})
	}
}

func TestFinalState_MissingMemoryIsSoft(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().
		Register(state.V0, "10").
		Memory("0x1000", "30", state.Word).
		Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(
		testutil.WatchOutput(nil, map[string]uint32{"v0": 10}))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, 0.5, res.Score)
	assert.Equal(t, []string{"No value reported for 0x00001000"}, res.Messages)
}

func TestFinalState_MissingRegisterIsHard(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.S0, "1").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText("Mem[0x10010000]\t0x00000000")

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, IsProtocolError(err))
	assert.Contains(t, err.Error(), "$s0")
}

func TestFinalState_UnreadableRegisterIsProtocolError(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.V0, "1").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText("$v0\tgarbage")

	_, err = newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	assert.True(t, IsProtocolError(err))
}

func TestFinalState_OrderIndependent(t *testing.T) {
	program, harness := sources(t)

	a, err := state.New().
		Register(state.A0, "1").
		Register(state.V0, "2").
		Memory("0x1004", "4", state.Word).
		Memory("0x1000", "3", state.Word).
		Build()
	require.NoError(t, err)

	b, err := state.New().
		Memory("0x1000", "3", state.Word).
		Register(state.V0, "2").
		Memory("4100", "4", state.Word).
		Register(state.A0, "1").
		Build()
	require.NoError(t, err)

	text := testutil.WatchOutput(map[uint32]uint32{0x1000: 3, 0x1004: 5}, map[string]uint32{"a0": 1, "v0": 7})

	simA := testutil.NewFakeSimulator().WatchText(text)
	resA, err := newGrader(simA).FinalState(context.Background(), a, program, harness, 100)
	require.NoError(t, err)

	simB := testutil.NewFakeSimulator().WatchText(text)
	resB, err := newGrader(simB).FinalState(context.Background(), b, program, harness, 100)
	require.NoError(t, err)

	assert.Equal(t, resA, resB)
	assert.Equal(t, 0.5, resA.Score)
	assert.Equal(t, simA.Calls()[2].Targets, simB.Calls()[2].Targets)
}

func TestFinalState_InvocationSequence(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.V0, "10").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText("$v0\t0x0000000a")

	_, err = newGrader(sim).FinalState(context.Background(), expected, program, harness, 0)
	require.NoError(t, err)

	calls := sim.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, simulator.Assemble, calls[0].Mode)
	assert.Equal(t, simulator.Run, calls[1].Mode)
	assert.Equal(t, simulator.Watch, calls[2].Mode)
	for _, c := range calls {
		assert.Equal(t, harness, c.Harness)
		assert.Equal(t, program, c.Program)
	}
	assert.Equal(t, config.DefaultMaxSteps, calls[1].MaxSteps)
	assert.Equal(t, config.DefaultMaxSteps, calls[2].MaxSteps)
	assert.Equal(t, []string{"v0"}, calls[2].Targets)
}

func TestFinalState_NoHarness(t *testing.T) {
	program, _ := sources(t)
	sim := testutil.NewFakeSimulator()

	res, err := newGrader(sim).FinalState(context.Background(), nil, program, "", 10)
	require.NoError(t, err)
	assert.True(t, res.Success)
	for _, c := range sim.Calls() {
		assert.Empty(t, c.Harness)
	}
}

func TestFinalState_NegativeExpectedValues(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().
		Register(state.V0, "-1").
		Memory("0x10010003", "-1", state.Byte).
		Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().WatchText(testutil.WatchOutput(
		map[uint32]uint32{0x10010000: 0xff000000},
		map[string]uint32{"v0": 0xffffffff}))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Score)
}

func TestFinalState_SimulatorUnavailable(t *testing.T) {
	program, harness := sources(t)
	sim := testutil.NewFakeSimulator().Fail(errors.New("java not found"))

	_, err := newGrader(sim).FinalState(context.Background(), state.Empty(), program, harness, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to assemble")
	assert.False(t, IsProtocolError(err))
}

func TestAssemble(t *testing.T) {
	program, harness := sources(t)

	res, err := newGrader(testutil.NewFakeSimulator()).Assemble(context.Background(), program, harness)
	require.NoError(t, err)
	assert.True(t, res.Perfect())

	sim := testutil.NewFakeSimulator().AssembleError("Error: bad")
	res, err = newGrader(sim).Assemble(context.Background(), program, "")
	require.NoError(t, err)
	assert.Equal(t, Failed(program+" did not assemble correctly"), res)
	assert.Equal(t, []string{program, "nc", "a"}, sim.Calls()[0].Args())
}

func TestRun(t *testing.T) {
	program, harness := sources(t)

	sim := testutil.NewFakeSimulator()
	res, err := newGrader(sim).Run(context.Background(), program, harness, 250)
	require.NoError(t, err)
	assert.True(t, res.Perfect())
	assert.Equal(t, 250, sim.Calls()[0].MaxSteps)

	sim = testutil.NewFakeSimulator().RunExit(255)
	res, err = newGrader(sim).Run(context.Background(), program, harness, 0)
	require.NoError(t, err)
	assert.Equal(t, Failed(program+" did not run correctly"), res)
}

func TestAssemble_ExitCodeIgnored(t *testing.T) {
	program, harness := sources(t)

	sim := testutil.NewFakeSimulator().On(simulator.Assemble, simulator.Output{ExitCode: 1, Text: "  \n"})
	res, err := newGrader(sim).Assemble(context.Background(), program, harness)
	require.NoError(t, err)
	assert.True(t, res.Perfect())
}

func TestRun_OutputIgnored(t *testing.T) {
	program, harness := sources(t)

	sim := testutil.NewFakeSimulator().On(simulator.Run, simulator.Output{ExitCode: 0, Text: "some diagnostic"})
	res, err := newGrader(sim).Run(context.Background(), program, harness, 100)
	require.NoError(t, err)
	assert.True(t, res.Perfect())
}

func TestFinalState_GatesUseOneSignalEach(t *testing.T) {
	program, harness := sources(t)
	expected, err := state.New().Register(state.V0, "5").Build()
	require.NoError(t, err)

	sim := testutil.NewFakeSimulator().
		On(simulator.Assemble, simulator.Output{ExitCode: 1}).
		On(simulator.Run, simulator.Output{Text: "warning: delayed branching disabled"}).
		WatchText(testutil.WatchOutput(nil, map[string]uint32{"v0": 5}))

	res, err := newGrader(sim).FinalState(context.Background(), expected, program, harness, 100)
	require.NoError(t, err)
	assert.True(t, res.Perfect())
	assert.Equal(t, 1, sim.CallCount(simulator.Watch))
}

func TestWatchTargets_DedupesWords(t *testing.T) {
	expected, err := state.New().
		Register(state.S7, "1").
		Register(state.V1, "1").
		Memory("0x10010003", "1", state.Byte).
		Memory("0x10010000", "1", state.Halfword).
		Memory("0x00000010", "1", state.Word).
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"0x00000010-0x00000010",
		"0x10010000-0x10010000",
		"v1",
		"s7",
	}, WatchTargets(expected))
}
