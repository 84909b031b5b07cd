// Package harness generates the MIPS test harness that installs an initial
// machine state and then transfers control to the code under test.
//
// # Harness Format
//
// A harness for registers a0=10 and memory {0x1000: 30} entering "main" with
// jal looks like:
//
//	# Generated by mipsgrade. Do not edit.
//	.text
//
//	# word 0x00001000 = 30
//	li $t0, 30
//	la $t1, 0x00001000
//	sw $t0, ($t1)
//
//	# $a0 = 10
//	li $a0, 10
//
//	# enter user code
//	jal main
//
//	# user code returned
//	_harness_end: j _harness_end
//
// Memory cells are written through $t0/$t1 before registers are loaded, and
// the store instruction (sb, sh, sw) follows the cell size exactly. The self
// loop only appears for jal: the simulator has no caller for user code to
// return to, so "jr $ra" lands there instead of running off the program.
//
// # Usage
//
//	path, err := harness.Create(cfg, initial, harness.Options{
//	    Label: "factorial",
//	    Mode:  harness.JumpAndLink,
//	})
//
// Label validation happens before the file is opened, so a bad label never
// leaves a partial artifact behind.
package harness
