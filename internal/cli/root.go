package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/simulator"
	"github.com/roach88/mipsgrade/internal/suite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// ConfigPath is an optional YAML config file read over the defaults.
	ConfigPath string

	// Overrides from persistent flags. Only flags the user set are applied.
	Simulator   string
	Java        string
	MaxSteps    int
	HarnessName string
	update      config.Update

	// NewSimulator overrides how simulators are built (for testing).
	// If nil, MARS is launched through java.
	NewSimulator suite.SimulatorFactory

	// RunIDs overrides the suite run ID generator (for testing).
	// If nil, runs get UUIDv7 IDs.
	RunIDs suite.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the mipsgrade CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mipsgrade",
		Short: "mipsgrade - MIPS assembly grader",
		Long: `Grade MIPS assembly submissions against expected machine states.

mipsgrade generates a harness that installs an initial register and memory
state, runs the submission under the MARS simulator and scores the final
state it reports.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.collectOverrides(cmd)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Simulator, "mars", config.DefaultSimulatorPath, "path to the MARS jar")
	cmd.PersistentFlags().StringVar(&opts.Java, "java", config.DefaultJavaPath, "java executable")
	cmd.PersistentFlags().IntVar(&opts.MaxSteps, "max-steps", config.DefaultMaxSteps, "default simulator step budget")
	cmd.PersistentFlags().StringVar(&opts.HarnessName, "harness-name", config.DefaultHarnessName, "default harness filename")

	// Add subcommands
	cmd.AddCommand(NewHarnessCommand(opts))
	cmd.AddCommand(NewAssembleCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewGradeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// collectOverrides records the config flags the user set explicitly, so a
// config file value is not clobbered by a flag default.
func (o *RootOptions) collectOverrides(cmd *cobra.Command) {
	flags := cmd.Flags()
	o.update = config.Update{}
	if flags.Changed("mars") {
		o.update.SimulatorPath = &o.Simulator
	}
	if flags.Changed("java") {
		o.update.JavaPath = &o.Java
	}
	if flags.Changed("max-steps") {
		o.update.MaxSteps = &o.MaxSteps
	}
	if flags.Changed("harness-name") {
		o.update.DefaultHarness = &o.HarnessName
	}
}

// Config resolves the effective configuration: defaults, then the config
// file, then explicit flags.
func (o *RootOptions) Config() (config.Config, error) {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	return cfg.Reconfigure(o.update)
}

// Logger builds the command logger. Diagnostics go to w at debug level when
// verbose, info otherwise.
func (o *RootOptions) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// simulatorFactory returns the configured factory or the MARS default.
func (o *RootOptions) simulatorFactory(logger *slog.Logger) suite.SimulatorFactory {
	if o.NewSimulator != nil {
		return o.NewSimulator
	}
	return func(cfg config.Config) simulator.Simulator {
		return simulator.NewMars(cfg, logger)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
