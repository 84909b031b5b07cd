package cli

import (
	"github.com/spf13/cobra"
)

// AssembleOptions holds flags for the assemble command.
type AssembleOptions struct {
	*RootOptions
	Harness string
}

// NewAssembleCommand creates the assemble command.
func NewAssembleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AssembleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "assemble <program>",
		Short: "Check that a program assembles",
		Long: `Check that a program assembles under MARS, optionally together with a
harness.

Exit codes:
  0 - Program assembled
  1 - Program did not assemble or does not exist
  2 - Command error (simulator could not be started, etc.)

Examples:
  mipsgrade assemble factorial.asm
  mipsgrade assemble factorial.asm --harness harness.asm`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Harness, "harness", "", "harness assembled ahead of the program")

	return cmd
}

func runAssemble(opts *AssembleOptions, program string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	g, _, err := newGrader(opts.RootOptions, cmd)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid configuration", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := g.Assemble(ctx, program, opts.Harness)
	if err != nil {
		return checkError(out, "assemble", err)
	}
	return reportCheck(out, "assemble", program, opts.Harness, res)
}
