package grader

import (
	"strconv"
	"strings"

	"github.com/roach88/mipsgrade/internal/state"
)

// report is the parsed text of a watch invocation.
type report struct {
	words map[state.Address]uint32
	lines []string
}

// parseReport scans simulator watch output. Lines of the form
// "Mem[0x10010000]\t0x00000045" become word values keyed by address; the
// first line for an address wins. Everything is kept for register lookup.
func parseReport(text string) *report {
	r := &report{words: map[state.Address]uint32{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		r.lines = append(r.lines, line)

		addr, value, ok := parseMemLine(line)
		if !ok {
			continue
		}
		if _, seen := r.words[addr]; !seen {
			r.words[addr] = value
		}
	}
	return r
}

func parseMemLine(line string) (state.Address, uint32, bool) {
	start := strings.Index(line, "Mem[")
	if start < 0 {
		return 0, 0, false
	}
	rest := line[start+len("Mem["):]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return 0, 0, false
	}
	addr, err := state.ParseAddress(rest[:end])
	if err != nil {
		return 0, 0, false
	}
	fields := strings.Fields(rest[end+1:])
	if len(fields) == 0 {
		return 0, 0, false
	}
	value, ok := parseHex(fields[len(fields)-1])
	if !ok {
		return 0, 0, false
	}
	return addr.Word(), value, true
}

func parseHex(tok string) (uint32, bool) {
	tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
	v, err := strconv.ParseUint(tok, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// word returns the reported value of the word containing addr.
func (r *report) word(addr state.Address) (uint32, bool) {
	v, ok := r.words[addr.Word()]
	return v, ok
}

// register returns the last token of the first line mentioning reg.
func (r *report) register(reg state.Register) (string, bool) {
	needle := reg.Dollar()
	for _, line := range r.lines {
		if !strings.Contains(line, needle) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		return fields[len(fields)-1], true
	}
	return "", false
}

// extract pulls a size-wide little-endian field out of word w for addr.
func extract(w uint32, addr state.Address, size state.Size) uint32 {
	off := addr.Offset()
	switch size {
	case state.Byte:
		return (w >> (off * 8)) & 0xff
	case state.Halfword:
		return (w >> ((off &^ 1) * 8)) & 0xffff
	case state.Word:
		return w
	}
	panic("grader: unknown memory size " + size.String())
}
