package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/grader"
	"github.com/roach88/mipsgrade/internal/state"
)

// CheckOutput is the payload of the assemble, run and grade commands.
type CheckOutput struct {
	Check    string   `json:"check"`
	Program  string   `json:"program"`
	Harness  string   `json:"harness,omitempty"`
	Success  bool     `json:"success"`
	Score    float64  `json:"score"`
	Messages []string `json:"messages"`
}

func (c CheckOutput) String() string {
	var b strings.Builder
	mark := "✓"
	if !(c.Success && c.Score == 1) {
		mark = "✗"
	}
	fmt.Fprintf(&b, "%s %s %s (score %.2f)", mark, c.Check, c.Program, c.Score)
	for _, m := range c.Messages {
		fmt.Fprintf(&b, "\n  %s", m)
	}
	return b.String()
}

// newGrader resolves configuration and builds a grader whose diagnostics go
// to the command's stderr.
func newGrader(opts *RootOptions, cmd *cobra.Command) (*grader.Grader, config.Config, error) {
	cfg, err := opts.Config()
	if err != nil {
		return nil, config.Config{}, err
	}
	logger := opts.Logger(cmd.ErrOrStderr())
	sim := opts.simulatorFactory(logger)(cfg)
	return grader.New(cfg, sim, logger), cfg, nil
}

// commandContext cancels on SIGINT/SIGTERM so a hung simulator is killed.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// reportCheck prints a grading result. Anything short of full marks is a
// graded failure with exit code 1.
func reportCheck(out *OutputFormatter, check, program, harnessPath string, res *grader.Result) error {
	payload := CheckOutput{
		Check:    check,
		Program:  program,
		Harness:  harnessPath,
		Success:  res.Success,
		Score:    res.Score,
		Messages: res.Messages,
	}
	if res.Perfect() {
		return out.Success(payload)
	}

	message := fmt.Sprintf("%s scored %.2f", program, res.Score)
	if !res.Success && len(res.Messages) > 0 {
		message = res.Messages[0]
	}
	if err := out.Failure(CodeGradeFailed, message, payload); err != nil {
		return err
	}
	return NewExitError(ExitFailure, message)
}

// checkError maps grader errors to exit code 2.
func checkError(out *OutputFormatter, check string, err error) error {
	switch {
	case state.IsValidationError(err):
		return out.Fail(ExitCommandError, CodeInvalidState, "invalid expected state", err)
	case grader.IsProtocolError(err):
		return out.Fail(ExitCommandError, CodeSimulator, "unexpected simulator output", err)
	}
	return out.Fail(ExitCommandError, CodeSimulator, fmt.Sprintf("%s check could not complete", check), err)
}
