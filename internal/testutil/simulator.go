package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/mipsgrade/internal/simulator"
)

// FakeSimulator is a scripted simulator.Simulator. Each mode answers with a
// fixed Output (exit 0, no text by default) and every call is recorded.
//
// Thread-safety: FakeSimulator is safe for concurrent use via internal mutex.
type FakeSimulator struct {
	mu      sync.Mutex
	outputs map[simulator.Mode]simulator.Output
	handler func(simulator.Invocation) (simulator.Output, error)
	err     error
	calls   []simulator.Invocation
}

// NewFakeSimulator returns a simulator where every program assembles, runs
// and reports nothing when watched.
func NewFakeSimulator() *FakeSimulator {
	return &FakeSimulator{outputs: map[simulator.Mode]simulator.Output{}}
}

// On scripts the output for mode.
func (f *FakeSimulator) On(mode simulator.Mode, out simulator.Output) *FakeSimulator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[mode] = out
	return f
}

// AssembleError makes the assemble check print a diagnostic.
func (f *FakeSimulator) AssembleError(text string) *FakeSimulator {
	return f.On(simulator.Assemble, simulator.Output{ExitCode: 0, Text: text})
}

// RunExit makes the run check exit with code.
func (f *FakeSimulator) RunExit(code int) *FakeSimulator {
	return f.On(simulator.Run, simulator.Output{ExitCode: code})
}

// WatchText sets the text the watch invocation reports.
func (f *FakeSimulator) WatchText(text string) *FakeSimulator {
	return f.On(simulator.Watch, simulator.Output{Text: text})
}

// Handle routes every call to fn instead of the scripted outputs.
func (f *FakeSimulator) Handle(fn func(simulator.Invocation) (simulator.Output, error)) *FakeSimulator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = fn
	return f
}

// Fail makes every call return err, as if the process could not start.
func (f *FakeSimulator) Fail(err error) *FakeSimulator {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Invoke implements simulator.Simulator.
func (f *FakeSimulator) Invoke(ctx context.Context, inv simulator.Invocation) (simulator.Output, error) {
	f.mu.Lock()
	inv.Targets = append([]string(nil), inv.Targets...)
	f.calls = append(f.calls, inv)
	handler, err, out := f.handler, f.err, f.outputs[inv.Mode]
	f.mu.Unlock()

	if err != nil {
		return simulator.Output{}, err
	}
	if handler != nil {
		return handler(inv)
	}
	return out, ctx.Err()
}

// Calls returns a copy of the recorded invocations in call order.
func (f *FakeSimulator) Calls() []simulator.Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]simulator.Invocation(nil), f.calls...)
}

// CallCount returns how many invocations used mode.
func (f *FakeSimulator) CallCount(mode simulator.Mode) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Mode == mode {
			n++
		}
	}
	return n
}

// WatchOutput formats memory words and registers the way MARS dumps watched
// targets: "Mem[0x10010000]\t0x00000045" and "$v0\t0x0000000a". Memory is
// listed first in ascending address order, then registers by name.
func WatchOutput(memory map[uint32]uint32, registers map[string]uint32) string {
	addrs := make([]uint32, 0, len(memory))
	for a := range memory {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	names := make([]string, 0, len(registers))
	for r := range registers {
		names = append(names, r)
	}
	sort.Strings(names)

	var lines []string
	for _, a := range addrs {
		lines = append(lines, fmt.Sprintf("Mem[0x%08x]\t0x%08x", a, memory[a]))
	}
	for _, r := range names {
		lines = append(lines, fmt.Sprintf("$%s\t0x%08x", r, registers[r]))
	}
	return strings.Join(lines, "\n")
}
