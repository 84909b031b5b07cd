package state

import "strings"

// Register identifies one of the MIPS registers a test may set or check.
// The zero value is V0. The declaration order is the canonical order used for
// harness generation, watch targets and scoring.
type Register uint8

const (
	V0 Register = iota
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	T8
	T9
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7

	numRegisters
)

var registerNames = [numRegisters]string{
	"v0", "v1",
	"a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
}

// String returns the bare register name, e.g. "a0".
func (r Register) String() string {
	if r >= numRegisters {
		return "invalid"
	}
	return registerNames[r]
}

// Dollar returns the assembler spelling of the register, e.g. "$a0".
func (r Register) Dollar() string {
	return "$" + r.String()
}

// ParseRegister resolves a register name. A leading "$" is accepted and
// matching is case-insensitive.
func ParseRegister(name string) (Register, error) {
	n := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "$"))
	for i, candidate := range registerNames {
		if candidate == n {
			return Register(i), nil
		}
	}
	return 0, invalid("register", name, "unknown register name")
}

// AllRegisters returns every register in canonical order.
func AllRegisters() []Register {
	regs := make([]Register, numRegisters)
	for i := range regs {
		regs[i] = Register(i)
	}
	return regs
}
