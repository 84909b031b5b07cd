package simulator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/roach88/mipsgrade/internal/config"
)

// Mars runs the MARS simulator jar through a Java runtime.
type Mars struct {
	// Java is the java executable, resolved through PATH if not absolute.
	Java string

	// Jar is the path to the MARS jar.
	Jar string

	logger *slog.Logger
}

// NewMars returns a Mars configured from cfg.
func NewMars(cfg config.Config, logger *slog.Logger) *Mars {
	return &Mars{Java: cfg.JavaPath, Jar: cfg.SimulatorPath, logger: logger}
}

// Command returns the full argv for inv.
func (m *Mars) Command(inv Invocation) []string {
	return append([]string{m.Java, "-jar", m.Jar}, inv.Args()...)
}

// Invoke runs the simulator and waits for it to exit. There is no timeout
// beyond ctx; the step budget is what bounds execution.
func (m *Mars) Invoke(ctx context.Context, inv Invocation) (Output, error) {
	argv := m.Command(inv)
	if m.logger != nil {
		m.logger.Debug("invoking simulator", "mode", inv.Mode.String(), "argv", strings.Join(argv, " "))
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	out, err := cmd.CombinedOutput()
	text := strings.TrimRight(string(out), "\r\n")

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Output{}, fmt.Errorf("simulator interrupted: %w", ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Output{ExitCode: exitErr.ExitCode(), Text: text}, nil
		}
		return Output{}, fmt.Errorf("failed to start simulator %q: %w", m.Java, err)
	}
	return Output{ExitCode: 0, Text: text}, nil
}
