package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/harness"
)

// HarnessOptions holds flags for the harness command.
type HarnessOptions struct {
	*RootOptions
	Label  string
	Jump   string
	Output string
}

// HarnessOutput is the JSON payload of the harness command.
type HarnessOutput struct {
	Path      string `json:"path"`
	Label     string `json:"label"`
	Jump      string `json:"jump"`
	Registers int    `json:"registers"`
	Memory    int    `json:"memory"`
}

func (h HarnessOutput) String() string {
	return fmt.Sprintf("Harness written to %s (%d registers, %d memory cells, %s %s)",
		h.Path, h.Registers, h.Memory, h.Jump, h.Label)
}

// NewHarnessCommand creates the harness command.
func NewHarnessCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HarnessOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "harness [state-file]",
		Short: "Generate a test harness",
		Long: `Generate a MIPS harness that installs an initial state and jumps into
user code.

The state file is YAML or JSON with "registers" and "memory" keys. Memory
values are either bare literals (word cells) or {value, size} objects.
Without a state file the harness only jumps.

Examples:
  mipsgrade harness initial.yaml
  mipsgrade harness initial.yaml --label factorial --jump jal -o test_harness.asm`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			stateFile := ""
			if len(args) == 1 {
				stateFile = args[0]
			}
			return runHarness(opts, stateFile, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Label, "label", harness.DefaultLabel, "entry label of the user code")
	cmd.Flags().StringVar(&opts.Jump, "jump", "j", "jump type (j|jal)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "harness path (default from config)")

	return cmd
}

func runHarness(opts *HarnessOptions, stateFile string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	cfg, err := opts.Config()
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid configuration", err)
	}
	mode, err := harness.ParseJumpMode(opts.Jump)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "invalid jump type", err)
	}
	initial, err := loadStateFile(stateFile)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidState, "cannot load initial state", err)
	}

	label := opts.Label
	if label == "" {
		label = harness.DefaultLabel
	}
	path, err := harness.Create(cfg, initial, harness.Options{
		Label:  label,
		Mode:   mode,
		Output: opts.Output,
	})
	if err != nil {
		return out.Fail(ExitCommandError, CodeInvalidInput, "cannot write harness", err)
	}

	return out.Success(HarnessOutput{
		Path:      path,
		Label:     label,
		Jump:      mode.Instruction(),
		Registers: len(initial.Registers()),
		Memory:    len(initial.Memory()),
	})
}
