package simulator

import (
	"context"
	"fmt"
	"strconv"
)

// Mode selects one of the three simulator invocation shapes.
type Mode uint8

const (
	// Assemble only checks that the sources assemble.
	Assemble Mode = iota

	// Run executes with a step budget and reports the exit status.
	Run

	// Watch executes with a step budget and dumps the watched targets.
	Watch
)

func (m Mode) String() string {
	switch m {
	case Assemble:
		return "assemble"
	case Run:
		return "run"
	case Watch:
		return "watch"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Invocation describes a single simulator call.
type Invocation struct {
	Mode Mode

	// Harness is assembled ahead of Program when non-empty.
	Harness string

	// Program is the submission under test.
	Program string

	// MaxSteps bounds execution for Run and Watch.
	MaxSteps int

	// Targets are watch tokens: "0xAAAAAAAA-0xAAAAAAAA" memory spans or bare
	// register names. Only used by Watch.
	Targets []string
}

// Args returns the simulator argument tail for the invocation, in the order
// MARS expects: sources first, then options.
func (inv Invocation) Args() []string {
	var args []string
	if inv.Harness != "" {
		args = append(args, inv.Harness)
	}
	args = append(args, inv.Program)

	switch inv.Mode {
	case Assemble:
		args = append(args, "nc", "a")
	case Run:
		args = append(args, strconv.Itoa(inv.MaxSteps), "nc", "se1", "ae1")
	case Watch:
		args = append(args, strconv.Itoa(inv.MaxSteps), "se1", "nc")
		args = append(args, inv.Targets...)
	default:
		panic(fmt.Sprintf("simulator: unknown mode %d", uint8(inv.Mode)))
	}
	return args
}

// Output is what the simulator reported.
type Output struct {
	// ExitCode is the process exit status.
	ExitCode int

	// Text is combined stdout and stderr with the trailing newline removed.
	Text string
}

// Simulator runs invocations against an external simulator.
type Simulator interface {
	Invoke(ctx context.Context, inv Invocation) (Output, error)
}
