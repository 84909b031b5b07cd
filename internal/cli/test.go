package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/store"
	"github.com/roach88/mipsgrade/internal/suite"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter   string // test case filter (glob pattern)
	Parallel int
	Database string
}

// TestResult holds the outcome of every suite run by one command.
type TestResult struct {
	Suites []*suite.Report `json:"suites"`
	Passed int             `json:"passed"`
	Failed int             `json:"failed"`
	Total  int             `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <suite-file|suite-dir>",
		Short: "Run grading suites",
		Long: `Run grading suites. A suite is a YAML, JSON or CUE file listing test cases,
each with a program, an initial state, an expected state and harness options.
Given a directory, every suite file below it is run.

Exit codes:
  0 - All cases passed
  1 - One or more cases failed
  2 - Command error (suite not found or invalid, gradebook error, etc.)

Examples:
  mipsgrade test suites/factorial.yaml
  mipsgrade test suites/ --filter "factorial*"
  mipsgrade test suites/ --parallel 4 --db grades.db
  mipsgrade test suites/ --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter test cases by glob pattern")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 1, "number of cases graded at once")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record results in this gradebook database")

	return cmd
}

func runTests(opts *TestOptions, target string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)
	w := cmd.OutOrStdout()

	if _, err := filepath.Match(opts.Filter, ""); err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid filter pattern", err)
	}

	files, err := findSuiteFiles(target)
	if err != nil {
		return out.Fail(ExitCommandError, CodeSuiteNotFound, fmt.Sprintf("suite not found: %s", target), err)
	}

	cfg, err := opts.Config()
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid configuration", err)
	}
	logger := opts.Logger(cmd.ErrOrStderr())

	runnerOpts := []suite.Option{
		suite.WithLogger(logger),
		suite.WithSimulator(opts.simulatorFactory(logger)),
		suite.WithParallel(opts.Parallel),
		suite.WithFilter(opts.Filter),
	}
	if opts.RunIDs != nil {
		runnerOpts = append(runnerOpts, suite.WithRunIDs(opts.RunIDs))
	}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return out.Fail(ExitCommandError, CodeGradebook, "failed to open gradebook", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing gradebook", "error", closeErr)
			}
		}()
		runnerOpts = append(runnerOpts, suite.WithStore(st))
	}
	runner := suite.NewRunner(cfg, runnerOpts...)

	ctx, cancel := commandContext(cmd)
	defer cancel()

	result := TestResult{Suites: make([]*suite.Report, 0, len(files))}
	for _, file := range files {
		s, err := suite.Load(file)
		if err != nil {
			return out.Fail(ExitCommandError, CodeInvalidInput, fmt.Sprintf("invalid suite %s", file), err)
		}
		report, err := runner.Run(ctx, s)
		if err != nil {
			return out.Fail(ExitCommandError, CodeGradebook, fmt.Sprintf("suite %s did not complete", s.Name), err)
		}
		if !out.JSON() {
			fmt.Fprint(w, report.Tree())
		}
		result.Suites = append(result.Suites, report)
		result.Passed += report.Passed
		result.Failed += report.Failed
		result.Total += report.Total
	}

	if out.JSON() {
		return outputTestJSON(out, result)
	}
	return outputTestText(cmd, result)
}

// findSuiteFiles returns target itself when it is a file, or every suite file
// below it in lexical order.
func findSuiteFiles(target string) ([]string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{target}, nil
	}

	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// hidden directories (.git, editor state) never hold suites
			if path != target && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if suite.IsSuiteFile(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func outputTestJSON(out *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return out.Success(result)
	}
	message := fmt.Sprintf("%d case(s) failed", result.Failed)
	if err := out.Failure(CodeTestFailed, message, result); err != nil {
		return err
	}
	return NewExitError(ExitFailure, message)
}

func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d case(s) failed", result.Failed))
	}

	if result.Total == 0 {
		fmt.Fprintln(w, "No test cases found.")
		return nil
	}
	fmt.Fprintln(w, "✓ All cases passed")
	return nil
}
