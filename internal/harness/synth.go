package harness

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/roach88/mipsgrade/internal/config"
	"github.com/roach88/mipsgrade/internal/state"
)

// DefaultLabel is the entry label used when Options.Label is empty.
const DefaultLabel = "main"

// EndLabel names the self loop appended after a jal.
const EndLabel = "_harness_end"

// Scratch registers used to install memory. They are written before any
// register loads so a test that sets $t0 or $t1 still sees its own values.
const (
	scratchValue   = "$t0"
	scratchAddress = "$t1"
)

// Options controls harness generation.
type Options struct {
	// Label is the user code entry label. Empty means DefaultLabel.
	Label string

	// Mode selects j or jal.
	Mode JumpMode

	// Output is the artifact path. Empty means the configured default.
	Output string
}

// Render produces the harness program text for the initial state.
//
// Memory is stored first, in ascending address order, each cell with the
// store instruction matching its size. Registers follow in canonical order.
// The program ends with the jump into user code and, for jal, a self loop.
func Render(initial *state.Machine, label string, mode JumpMode) (string, error) {
	if err := ValidateLabel(label); err != nil {
		return "", err
	}
	jump := mode.Instruction()

	var b strings.Builder
	b.WriteString("# Generated by mipsgrade. Do not edit.\n")
	b.WriteString(".text\n\n")

	for _, e := range initial.Memory() {
		fmt.Fprintf(&b, "# %s %s = %s\n", e.Size, e.Address, e.Value)
		fmt.Fprintf(&b, "li %s, %s\n", scratchValue, e.Value)
		fmt.Fprintf(&b, "la %s, %s\n", scratchAddress, e.Address)
		fmt.Fprintf(&b, "%s %s, (%s)\n\n", storeInstruction(e.Size), scratchValue, scratchAddress)
	}

	for _, rv := range initial.Registers() {
		fmt.Fprintf(&b, "# %s = %s\n", rv.Register.Dollar(), rv.Value)
		fmt.Fprintf(&b, "li %s, %s\n\n", rv.Register.Dollar(), rv.Value)
	}

	fmt.Fprintf(&b, "# enter user code\n")
	fmt.Fprintf(&b, "%s %s\n", jump, label)

	if mode == JumpAndLink {
		fmt.Fprintf(&b, "\n# user code returned\n")
		fmt.Fprintf(&b, "%s: j %s\n", EndLabel, EndLabel)
	}

	return b.String(), nil
}

// Write renders the harness and writes it to path, replacing any existing
// file. Nothing is written if rendering fails.
func Write(path string, initial *state.Machine, label string, mode JumpMode) (string, error) {
	text, err := Render(initial, label, mode)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write harness: %w", err)
	}
	return path, nil
}

// Create writes a harness using cfg for defaults and returns its path.
// A nil initial state installs nothing and only jumps.
func Create(cfg config.Config, initial *state.Machine, opts Options) (string, error) {
	if initial == nil {
		initial = state.Empty()
	}
	label := opts.Label
	if label == "" {
		label = DefaultLabel
	}
	path := opts.Output
	if path == "" {
		path = cfg.DefaultHarness
	}
	return Write(path, initial, label, opts.Mode)
}

// ValidateLabel checks that label is a single non-empty token.
func ValidateLabel(label string) error {
	if label == "" {
		return &state.ValidationError{Field: "label", Reason: "must not be empty"}
	}
	if strings.IndexFunc(label, unicode.IsSpace) >= 0 {
		return &state.ValidationError{Field: "label", Value: label, Reason: "must be a single token without whitespace"}
	}
	return nil
}

func storeInstruction(size state.Size) string {
	switch size {
	case state.Byte:
		return "sb"
	case state.Halfword:
		return "sh"
	case state.Word:
		return "sw"
	}
	panic(fmt.Sprintf("harness: unknown memory size %d", uint8(size)))
}
