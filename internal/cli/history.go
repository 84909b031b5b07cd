package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunHistory lists recorded runs.
type RunHistory struct {
	Runs []store.Run `json:"runs"`
}

func (h RunHistory) String() string {
	if len(h.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for i, r := range h.Runs {
		if i > 0 {
			b.WriteString("\n")
		}
		status := "finished"
		if !r.Finished {
			status = "incomplete"
		}
		fmt.Fprintf(&b, "#%d %s %s %d/%d passed (%s, %s)",
			r.Seq, r.ID, r.Suite, r.Passed, r.Total, status, r.StartedAt.Format(time.RFC3339))
	}
	return b.String()
}

// RunDetail is one run with its graded results.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Results []store.Result `json:"results"`
}

func (d RunDetail) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s (%s): %d/%d passed", d.Run.ID, d.Run.Suite, d.Run.Passed, d.Run.Total)
	for _, r := range d.Results {
		switch {
		case r.Error != "":
			fmt.Fprintf(&b, "\n✗ %s (error)\n  %s", r.Name, r.Error)
		case r.Success && r.Score == 1:
			fmt.Fprintf(&b, "\n✓ %s", r.Name)
		default:
			fmt.Fprintf(&b, "\n✗ %s (score %.2f)", r.Name, r.Score)
			for _, m := range r.Messages {
				fmt.Fprintf(&b, "\n  %s", m)
			}
		}
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded grading runs",
		Long: `Show runs recorded in a gradebook by "mipsgrade test --db". Without a run
ID the most recent runs are listed; with one, its results are shown in suite
order.

Examples:
  mipsgrade history --db grades.db
  mipsgrade history --db grades.db --limit 5
  mipsgrade history --db grades.db 01929b2e-7c1a-7d3e-9f00-1c2d3e4f5a6b`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runHistory(opts, runID, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to gradebook database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list (-1 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, runID string, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	if _, err := os.Stat(opts.Database); err != nil {
		return out.Fail(ExitCommandError, CodeGradebook, fmt.Sprintf("gradebook not found: %s", opts.Database), err)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return out.Fail(ExitCommandError, CodeGradebook, "failed to open gradebook", err)
	}
	defer st.Close()

	ctx := cmd.Context()

	if runID == "" {
		runs, err := st.ListRuns(ctx, opts.Limit)
		if err != nil {
			return out.Fail(ExitCommandError, CodeGradebook, "failed to list runs", err)
		}
		return out.Success(RunHistory{Runs: runs})
	}

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		return out.Fail(ExitCommandError, CodeGradebook, fmt.Sprintf("run not found: %s", runID), nil)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeGradebook, "failed to read run", err)
	}
	results, err := st.ReadResults(ctx, runID)
	if err != nil {
		return out.Fail(ExitCommandError, CodeGradebook, "failed to read results", err)
	}
	if results == nil {
		results = []store.Result{}
	}
	return out.Success(RunDetail{Run: run, Results: results})
}
