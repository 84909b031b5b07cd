// Package state models a MIPS machine state: the general purpose registers a
// test cares about and a set of sized memory cells.
//
// A Machine is used twice per graded test. The initial state is what the
// harness installs before jumping to student code; the expected state is what
// the grader checks after the simulator has run the program.
//
// # Construction
//
// There is exactly one validated construction path with two entry points:
//
//	m, err := state.New().
//	    Register(state.A0, "10").
//	    Memory("0x10010000", "0x12345678", state.Word).
//	    Build()
//
// and the permissive form used by suite and state files:
//
//	m, err := state.FromMap(map[string]any{
//	    "registers": map[string]any{"a0": "10"},
//	    "memory": map[string]any{
//	        "0x1000":     "30",                                   // legacy shorthand, WORD
//	        "0x10010002": map[string]any{"value": 420, "size": "half"},
//	    },
//	})
//
// Both converge on the same checks. Validation is all-or-nothing: a literal
// that does not parse, a misaligned address or an unknown register name
// returns a *ValidationError and no Machine.
//
// # Invariants
//
//   - Addresses are keyed by their canonical form, 0x followed by 8 hex digits.
//     Two spellings of the same address overwrite each other.
//   - Halfword addresses are even, word addresses are multiples of 4.
//   - Unset registers take no part in harness generation or scoring.
//   - Registers iterate in canonical order (v0 v1 a0-a3 t0-t9 s0-s7); memory
//     iterates in ascending address order.
package state
