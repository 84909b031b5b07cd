// Package grader scores a MIPS submission against an expected final state.
//
// Grading is a short chain of simulator calls. The submission must exist,
// then assemble, then run within its step budget; the first gate that fails
// ends grading with a zero score and a single message. Only then is the
// program run a third time with the expected memory words and registers
// watched, and each expected cell or register earns one mark.
//
//	START -> ASSEMBLED -> RUN_OK -> SCORED
//	  \          \           \
//	   +----------+-----------+--> FAILED
//
// An expected memory cell the simulator does not report simply earns no
// mark. An expected register it does not report means the output is not
// what the grader understands, and FinalState returns a *ProtocolError
// instead of a Result.
package grader
