package grader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/simulator"
	"github.com/roach88/mipsgrade/internal/state"
)

// Grader runs submissions through a simulator and scores them.
type Grader struct {
	cfg    config.Config
	sim    simulator.Simulator
	logger *slog.Logger
}

// New creates a Grader. A nil logger discards output.
func New(cfg config.Config, sim simulator.Simulator, logger *slog.Logger) *Grader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Grader{cfg: cfg, sim: sim, logger: logger}
}

// Config returns the configuration the grader was built with.
func (g *Grader) Config() config.Config {
	return g.cfg
}

// Assemble checks that program (preceded by harness, if any) assembles. The
// simulator signals success by printing nothing.
func (g *Grader) Assemble(ctx context.Context, program, harness string) (*Result, error) {
	if res := g.checkExists(program, harness); res != nil {
		return res, nil
	}
	return g.assemble(ctx, program, harness)
}

// Run checks that program runs to completion within maxSteps without a
// runtime error. maxSteps <= 0 uses the configured default.
func (g *Grader) Run(ctx context.Context, program, harness string, maxSteps int) (*Result, error) {
	if res := g.checkExists(program, harness); res != nil {
		return res, nil
	}
	return g.run(ctx, program, harness, g.cfg.Steps(maxSteps))
}

// FinalState assembles and runs program, then compares the watched machine
// state against expected. harness may be empty.
func (g *Grader) FinalState(ctx context.Context, expected *state.Machine, program, harness string, maxSteps int) (*Result, error) {
	if expected == nil {
		expected = state.Empty()
	}
	steps := g.cfg.Steps(maxSteps)

	if res := g.checkExists(program, harness); res != nil {
		return res, nil
	}

	res, err := g.assemble(ctx, program, harness)
	if err != nil || !res.Success {
		return res, err
	}

	res, err = g.run(ctx, program, harness, steps)
	if err != nil || !res.Success {
		return res, err
	}

	if expected.IsEmpty() {
		g.logger.Debug("no expected values, final state passes vacuously", "program", program)
	}
	targets := WatchTargets(expected)
	out, err := g.sim.Invoke(ctx, simulator.Invocation{
		Mode:     simulator.Watch,
		Harness:  harness,
		Program:  program,
		MaxSteps: steps,
		Targets:  targets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch %s: %w", program, err)
	}

	return g.score(expected, parseReport(out.Text))
}

func (g *Grader) checkExists(program, harness string) *Result {
	for _, path := range []string{harness, program} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			g.logger.Debug("source missing", "path", path, "error", err)
			return Failed(fmt.Sprintf("%s does not exist", path))
		}
	}
	return nil
}

func (g *Grader) assemble(ctx context.Context, program, harness string) (*Result, error) {
	out, err := g.sim.Invoke(ctx, simulator.Invocation{
		Mode:    simulator.Assemble,
		Harness: harness,
		Program: program,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assemble %s: %w", program, err)
	}
	if strings.TrimSpace(out.Text) != "" {
		g.logger.Debug("assemble failed", "program", program, "output", out.Text)
		return Failed(fmt.Sprintf("%s did not assemble correctly", program)), nil
	}
	g.logger.Debug("assembled", "program", program, "harness", harness)
	return Passed(), nil
}

func (g *Grader) run(ctx context.Context, program, harness string, steps int) (*Result, error) {
	out, err := g.sim.Invoke(ctx, simulator.Invocation{
		Mode:     simulator.Run,
		Harness:  harness,
		Program:  program,
		MaxSteps: steps,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", program, err)
	}
	if out.ExitCode != 0 {
		g.logger.Debug("run failed", "program", program, "exit_code", out.ExitCode, "output", out.Text)
		return Failed(fmt.Sprintf("%s did not run correctly", program)), nil
	}
	g.logger.Debug("ran", "program", program, "steps", steps)
	return Passed(), nil
}

// WatchTargets lists what the simulator must report to check expected: one
// span per distinct word touched by an expected memory cell, ascending, then
// each expected register in canonical order.
func WatchTargets(expected *state.Machine) []string {
	var targets []string
	seen := map[state.Address]bool{}
	for _, e := range expected.Memory() {
		w := e.Address.Word()
		if seen[w] {
			continue
		}
		seen[w] = true
		targets = append(targets, fmt.Sprintf("%s-%s", w, w))
	}
	for _, rv := range expected.Registers() {
		targets = append(targets, rv.Register.String())
	}
	return targets
}

func (g *Grader) score(expected *state.Machine, rep *report) (*Result, error) {
	var (
		matched   int
		attempted int
		messages  []string
	)

	for _, e := range expected.Memory() {
		attempted++

		w, ok := rep.word(e.Address)
		if !ok {
			msg := fmt.Sprintf("No value reported for %s", e.Address)
			g.logger.Debug("memory check missing", "address", e.Address.String())
			messages = append(messages, msg)
			continue
		}

		mask := e.Size.Mask()
		want := e.Bits() & mask
		got := extract(w, e.Address, e.Size)
		if got == want {
			matched++
			g.logger.Debug("memory check passed", "address", e.Address.String(), "size", e.Size.String())
			continue
		}

		digits := int(e.Size) * 2
		msg := fmt.Sprintf("Incorrect value in %s! Expected: 0x%0*x Actual: 0x%0*x",
			e.Address, digits, want, digits, got)
		g.logger.Debug("memory check failed", "address", e.Address.String(), "size", e.Size.String())
		messages = append(messages, msg)
	}

	for _, rv := range expected.Registers() {
		attempted++

		actual, ok := rep.register(rv.Register)
		if !ok {
			return nil, &ProtocolError{Target: rv.Register.Dollar(), Reason: "register not present in simulator output"}
		}
		got, err := state.ParseLiteral(actual)
		if err != nil {
			return nil, &ProtocolError{Target: rv.Register.Dollar(), Reason: fmt.Sprintf("unreadable value %q", actual)}
		}
		want, err := state.ParseLiteral(rv.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid expected value for %s: %w", rv.Register.Dollar(), err)
		}

		if got == want {
			matched++
			g.logger.Debug("register check passed", "register", rv.Register.Dollar())
			continue
		}

		msg := fmt.Sprintf("Incorrect value in %s! Expected: %s Actual: %s", rv.Register.Dollar(), rv.Value, actual)
		g.logger.Debug("register check failed", "register", rv.Register.Dollar(), "expected", rv.Value, "actual", actual)
		messages = append(messages, msg)
	}

	return Scored(matched, attempted, messages), nil
}
