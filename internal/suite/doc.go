// Package suite loads declarative grading suites and runs them.
//
// A suite lists test cases, each naming a program, an initial state to
// install through a generated harness, and the expected final state:
//
//	name: factorial
//	tests:
//	  - name: factorial of 5
//	    program: factorial.asm
//	    harness: {label: factorial, jump_type: jal}
//	    initial_state:
//	      registers: {a0: 5}
//	    expected_state:
//	      registers: {v0: 120}
//
// Suites may be written in YAML (.yaml, .yml), JSON (.json) or CUE (.cue).
// YAML is decoded strictly; JSON and CUE are unified with an embedded CUE
// schema, so unknown fields are rejected in every format. Relative paths are
// resolved against the directory of the suite file.
//
// A case that cannot be graded (bad state, unknown register in the output)
// is reported as failed with its error; the remaining cases still run.
package suite
