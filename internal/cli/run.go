package cli

import (
	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Harness string
	Steps   int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program>",
		Short: "Check that a program assembles and runs to completion",
		Long: `Assemble a program and run it under MARS with a step budget. The program
passes when it assembles and exits normally within the budget.

Exit codes:
  0 - Program ran correctly
  1 - Program did not assemble or did not run correctly
  2 - Command error (simulator could not be started, etc.)

Examples:
  mipsgrade run factorial.asm --harness harness.asm
  mipsgrade run loop.asm --steps 500`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Harness, "harness", "", "harness assembled ahead of the program")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "step budget for this run (default from config)")

	return cmd
}

func runRun(opts *RunOptions, program string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	g, _, err := newGrader(opts.RootOptions, cmd)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid configuration", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := g.Run(ctx, program, opts.Harness, opts.Steps)
	if err != nil {
		return checkError(out, "run", err)
	}
	return reportCheck(out, "run", program, opts.Harness, res)
}
