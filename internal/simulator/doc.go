// Package simulator drives the external MIPS simulator.
//
// The grader never assembles or executes MIPS itself. It describes what it
// needs as an Invocation (assemble, run with a step budget, or run and report
// watched locations) and a Simulator turns that into a process call. Mars is
// the production implementation and runs the MARS jar through java.
//
// A non-zero exit status is data, reported in Output.ExitCode. Invoke only
// returns an error when the process could not be started at all.
package simulator
