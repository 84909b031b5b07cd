package harness

import (
	"fmt"
	"strings"
)

// JumpMode selects how the harness enters user code.
type JumpMode uint8

const (
	// Jump enters with a plain "j". User code must exit via syscall.
	Jump JumpMode = iota

	// JumpAndLink enters with "jal" so user code can "jr $ra" back into the
	// harness, which then parks in a self loop.
	JumpAndLink
)

// Instruction returns the MIPS mnemonic for the mode.
func (m JumpMode) Instruction() string {
	switch m {
	case Jump:
		return "j"
	case JumpAndLink:
		return "jal"
	}
	panic(fmt.Sprintf("harness: unknown jump mode %d", uint8(m)))
}

func (m JumpMode) String() string {
	switch m {
	case Jump:
		return "JUMP"
	case JumpAndLink:
		return "JUMP_AND_LINK"
	}
	return fmt.Sprintf("JumpMode(%d)", uint8(m))
}

// ParseJumpMode accepts the mnemonic ("j", "jal") or the mode name
// ("JUMP", "JUMP_AND_LINK"). The empty string means Jump.
func ParseJumpMode(s string) (JumpMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "j", "jump":
		return Jump, nil
	case "jal", "jump_and_link":
		return JumpAndLink, nil
	}
	return 0, fmt.Errorf("unknown jump type %q: must be one of j, jal, JUMP, JUMP_AND_LINK", s)
}
