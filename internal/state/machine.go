package state

import (
	"fmt"
	"sort"
	"strings"
)

// Machine is a validated register + memory state. It is immutable; use a
// Builder or FromMap to construct one.
type Machine struct {
	registers [numRegisters]string
	memory    map[Address]Entry
}

// RegisterValue pairs a set register with its literal.
type RegisterValue struct {
	Register Register
	Value    string
}

// Empty returns a state with no registers and no memory set.
func Empty() *Machine {
	return &Machine{memory: map[Address]Entry{}}
}

// Register returns the literal for r and whether it is set.
func (m *Machine) Register(r Register) (string, bool) {
	if r >= numRegisters {
		return "", false
	}
	v := m.registers[r]
	return v, v != ""
}

// Registers returns the set registers in canonical order.
func (m *Machine) Registers() []RegisterValue {
	var out []RegisterValue
	for i, v := range m.registers {
		if v != "" {
			out = append(out, RegisterValue{Register: Register(i), Value: v})
		}
	}
	return out
}

// Memory returns the memory entries in ascending address order.
func (m *Machine) Memory() []Entry {
	out := make([]Entry, 0, len(m.memory))
	for _, e := range m.memory {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// IsEmpty reports whether nothing is set.
func (m *Machine) IsEmpty() bool {
	return len(m.memory) == 0 && len(m.Registers()) == 0
}

// Builder assembles a Machine from typed fields. The first error is kept and
// returned by Build; later calls are ignored once an error is recorded.
type Builder struct {
	registers [numRegisters]string
	memory    map[Address]Entry
	err       error
}

// New starts an empty Builder.
func New() *Builder {
	return &Builder{memory: map[Address]Entry{}}
}

// Register sets r to the given decimal or hex literal.
func (b *Builder) Register(r Register, literal string) *Builder {
	if b.err != nil {
		return b
	}
	if r >= numRegisters {
		b.err = invalid("register", fmt.Sprintf("%d", uint8(r)), "unknown register")
		return b
	}
	if _, err := ParseLiteral(literal); err != nil {
		b.err = invalid("registers."+r.String(), literal, "value must be a decimal or hex integer")
		return b
	}
	b.registers[r] = strings.TrimSpace(literal)
	return b
}

// RegisterNamed sets a register by name ("a0" or "$a0").
func (b *Builder) RegisterNamed(name, literal string) *Builder {
	if b.err != nil {
		return b
	}
	r, err := ParseRegister(name)
	if err != nil {
		b.err = invalid("registers."+name, name, "unknown register name")
		return b
	}
	return b.Register(r, literal)
}

// Memory sets the cell at addr. A later call with the same canonical address
// overwrites the earlier one.
func (b *Builder) Memory(addr, literal string, size Size) *Builder {
	if b.err != nil {
		return b
	}
	e, err := NewEntry(addr, literal, size)
	if err != nil {
		b.err = err
		return b
	}
	b.memory[e.Address] = e
	return b
}

// Build returns the validated Machine or the first recorded error.
func (b *Builder) Build() (*Machine, error) {
	if b.err != nil {
		return nil, b.err
	}
	m := &Machine{registers: b.registers, memory: make(map[Address]Entry, len(b.memory))}
	for k, v := range b.memory {
		m.memory[k] = v
	}
	return m, nil
}

// Map returns the state in the nested form FromMap accepts, keyed by
// canonical address with every size spelled out.
func (m *Machine) Map() map[string]any {
	regs := map[string]any{}
	for _, rv := range m.Registers() {
		regs[rv.Register.String()] = rv.Value
	}
	mem := map[string]any{}
	for _, e := range m.memory {
		mem[e.Address.String()] = map[string]any{
			"value": e.Value,
			"size":  e.Size.String(),
		}
	}
	return map[string]any{"registers": regs, "memory": mem}
}
