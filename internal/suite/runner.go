package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/mipsgrade/internal/canonical"
	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/grader"
	"github.com/roach88/mipsgrade/internal/harness"
	"github.com/roach88/mipsgrade/internal/simulator"
	"github.com/roach88/mipsgrade/internal/state"
	"github.com/roach88/mipsgrade/internal/store"
)

// SimulatorFactory builds the simulator for a case from its effective
// configuration.
type SimulatorFactory func(cfg config.Config) simulator.Simulator

// Runner grades every case of a suite.
type Runner struct {
	cfg      config.Config
	logger   *slog.Logger
	newSim   SimulatorFactory
	store    *store.Store
	runIDs   RunIDGenerator
	now      func() time.Time
	parallel int
	filter   string
	workDir  string

	// outputMu serializes copies to requested harness outputs.
	outputMu sync.Mutex
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Per-check diagnostics are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithSimulator sets how simulators are built. The default runs MARS.
func WithSimulator(f SimulatorFactory) Option {
	return func(r *Runner) { r.newSim = f }
}

// WithStore records each run and its results in the gradebook.
func WithStore(s *store.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithRunIDs sets the run ID generator. The default is UUIDv7.
func WithRunIDs(g RunIDGenerator) Option {
	return func(r *Runner) { r.runIDs = g }
}

// WithClock sets the source of run start times.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithParallel runs up to n cases at once. n <= 1 runs sequentially.
func WithParallel(n int) Option {
	return func(r *Runner) { r.parallel = n }
}

// WithFilter only runs cases whose names match the glob pattern.
func WithFilter(pattern string) Option {
	return func(r *Runner) { r.filter = pattern }
}

// WithWorkDir writes scratch harness files under dir instead of a
// temporary directory removed after the run.
func WithWorkDir(dir string) Option {
	return func(r *Runner) { r.workDir = dir }
}

// NewRunner creates a Runner for cfg.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		runIDs:   UUIDv7Generator{},
		now:      time.Now,
		parallel: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.newSim == nil {
		logger := r.logger
		r.newSim = func(cfg config.Config) simulator.Simulator {
			return simulator.NewMars(cfg, logger)
		}
	}
	if r.parallel < 1 {
		r.parallel = 1
	}
	return r
}

// Run grades the selected cases of s and returns the report. Case failures
// are part of the report; the error is reserved for problems with the run
// itself (bad filter, gradebook, cancellation).
func (r *Runner) Run(ctx context.Context, s *Suite) (*Report, error) {
	selected, err := s.Select(r.filter)
	if err != nil {
		return nil, err
	}

	report := &Report{RunID: r.runIDs.Generate(), Suite: s.Name}
	logger := r.logger.With("suite", s.Name, "run_id", report.RunID)

	if r.store != nil {
		_, err := r.store.BeginRun(ctx, store.Run{ID: report.RunID, Suite: s.Name, StartedAt: r.now()})
		if err != nil {
			return nil, fmt.Errorf("failed to record run: %w", err)
		}
	}

	workDir := r.workDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "mipsgrade-")
		if err != nil {
			return nil, fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(workDir)
	}

	logger.Info("running suite", "cases", len(selected), "parallel", r.parallel)

	results := make([]CaseResult, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallel)
	for i, sel := range selected {
		i, sel := i, sel
		g.Go(func() error {
			results[i] = r.runCase(gctx, logger, s, sel, workDir)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("suite %s interrupted: %w", s.Name, err)
	}

	report.Cases = results
	report.tally()

	if r.store != nil {
		if err := r.record(ctx, report); err != nil {
			return nil, err
		}
	}

	logger.Info("suite finished", "passed", report.Passed, "failed", report.Failed)
	return report, nil
}

func (r *Runner) runCase(ctx context.Context, logger *slog.Logger, s *Suite, sel Selected, workDir string) CaseResult {
	tc := sel.Case
	res := CaseResult{
		Position:    sel.Position,
		Name:        tc.Name,
		Description: tc.Description,
		Program:     s.Resolve(tc.Program),
		Messages:    []string{},
	}
	logger = logger.With("test", tc.Name)

	fail := func(err error) CaseResult {
		logger.Warn("test could not be graded", "error", err)
		res.Error = err.Error()
		return res
	}

	initial, err := state.FromMap(tc.InitialState)
	if err != nil {
		return fail(fmt.Errorf("initial_state: %w", err))
	}
	expected, err := state.FromMap(tc.ExpectedState)
	if err != nil {
		return fail(fmt.Errorf("expected_state: %w", err))
	}
	if digest, err := canonical.StateDigest(expected.Map()); err == nil {
		res.ExpectedDigest = digest
	}

	mode, err := harness.ParseJumpMode(tc.Harness.JumpType)
	if err != nil {
		return fail(err)
	}

	cfg, err := r.caseConfig(s, tc)
	if err != nil {
		return fail(err)
	}

	// Grading always reads the per-case scratch harness. A requested output
	// only receives a copy, so cases sharing one output cannot swap harnesses.
	harnessPath, err := harness.Create(cfg, initial, harness.Options{
		Label:  tc.Harness.Label,
		Mode:   mode,
		Output: filepath.Join(workDir, fmt.Sprintf("%03d_harness.asm", sel.Position)),
	})
	if err != nil {
		return fail(err)
	}
	res.Harness = harnessPath
	if output := s.Resolve(tc.Harness.Output); output != "" {
		if err := r.keepHarness(harnessPath, output); err != nil {
			return fail(err)
		}
		res.Harness = output
	}

	steps := tc.MaxSteps
	if steps == 0 {
		steps = s.MaxSteps
	}

	gr := grader.New(cfg, r.newSim(cfg), logger)
	result, err := gr.FinalState(ctx, expected, res.Program, harnessPath, steps)
	if err != nil {
		return fail(err)
	}

	res.Success = result.Success
	res.Score = result.Score
	res.Messages = result.Messages
	logger.Debug("test graded", "success", res.Success, "score", res.Score)
	return res
}

// keepHarness copies the graded harness to output.
func (r *Runner) keepHarness(harnessPath, output string) error {
	data, err := os.ReadFile(harnessPath)
	if err != nil {
		return fmt.Errorf("failed to read harness: %w", err)
	}
	r.outputMu.Lock()
	defer r.outputMu.Unlock()
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("failed to write harness output: %w", err)
	}
	return nil
}

// caseConfig applies the suite and case simulator overrides.
func (r *Runner) caseConfig(s *Suite, tc TestCase) (config.Config, error) {
	jar := tc.Simulator
	if jar == "" {
		jar = s.Simulator
	}
	if jar == "" {
		return r.cfg, nil
	}
	jar = s.Resolve(jar)
	return r.cfg.Reconfigure(config.Update{SimulatorPath: &jar})
}

func (r *Runner) record(ctx context.Context, report *Report) error {
	for _, c := range report.Cases {
		score := strconv.FormatFloat(c.Score, 'f', -1, 64)
		id, err := canonical.ResultID(report.RunID, c.Name, c.Success, score, c.Messages)
		if err != nil {
			return fmt.Errorf("failed to derive result id for %s: %w", c.Name, err)
		}
		err = r.store.WriteResult(ctx, store.Result{
			ID:             id,
			RunID:          report.RunID,
			Position:       c.Position,
			Name:           c.Name,
			Program:        c.Program,
			Success:        c.Success,
			Score:          c.Score,
			Messages:       c.Messages,
			Error:          c.Error,
			ExpectedDigest: c.ExpectedDigest,
		})
		if err != nil {
			return fmt.Errorf("failed to record result %s: %w", c.Name, err)
		}
	}
	if err := r.store.FinishRun(ctx, report.RunID, report.Total, report.Passed); err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}
