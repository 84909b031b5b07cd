package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/harness"
)

// GradeOptions holds flags for the grade command.
type GradeOptions struct {
	*RootOptions
	Expected string
	Initial  string
	Harness  string
	Label    string
	Jump     string
	Steps    int
}

// NewGradeCommand creates the grade command.
func NewGradeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GradeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "grade <program>",
		Short: "Grade a program's final machine state",
		Long: `Assemble and run a program, then compare the registers and memory it
leaves behind against an expected state. Partial credit is the fraction of
expected registers and memory cells that match.

With --initial a harness is generated first (at --harness, or the configured
default harness name). Without it --harness names an existing harness, or
the program runs alone.

Exit codes:
  0 - Every expected value matched
  1 - Program did not assemble, did not run, or scored below 1
  2 - Command error (bad state file, simulator unavailable, etc.)

Examples:
  mipsgrade grade factorial.asm --expected expected.yaml
  mipsgrade grade factorial.asm --initial initial.yaml --expected expected.yaml --label factorial --jump jal
  mipsgrade grade factorial.asm --harness harness.asm --expected expected.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrade(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Expected, "expected", "", "expected state file (required)")
	cmd.Flags().StringVar(&opts.Initial, "initial", "", "initial state file; generates the harness")
	cmd.Flags().StringVar(&opts.Harness, "harness", "", "harness path")
	cmd.Flags().StringVar(&opts.Label, "label", harness.DefaultLabel, "entry label for a generated harness")
	cmd.Flags().StringVar(&opts.Jump, "jump", "j", "jump type for a generated harness (j|jal)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "step budget (default from config)")
	_ = cmd.MarkFlagRequired("expected")

	return cmd
}

func runGrade(opts *GradeOptions, program string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	g, cfg, err := newGrader(opts.RootOptions, cmd)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid configuration", err)
	}

	expected, err := loadStateFile(opts.Expected)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidState, "cannot load expected state", err)
	}

	harnessPath := opts.Harness
	if opts.Initial != "" {
		mode, err := harness.ParseJumpMode(opts.Jump)
		if err != nil {
			return out.Fail(ExitCommandError, CodeInvalidInput, "invalid jump type", err)
		}
		initial, err := loadStateFile(opts.Initial)
		if err != nil {
			return out.Fail(ExitCommandError, CodeInvalidState, "cannot load initial state", err)
		}
		harnessPath, err = harness.Create(cfg, initial, harness.Options{
			Label:  opts.Label,
			Mode:   mode,
			Output: opts.Harness,
		})
		if err != nil {
			return out.Fail(ExitCommandError, CodeInvalidInput, "cannot write harness", err)
		}
		opts.Logger(cmd.ErrOrStderr()).Debug("harness generated", slog.String("path", harnessPath))
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := g.FinalState(ctx, expected, program, harnessPath, opts.Steps)
	if err != nil {
		return checkError(out, "grade", err)
	}
	return reportCheck(out, "grade", program, harnessPath, res)
}
