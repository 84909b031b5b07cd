package state

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLiteral parses a decimal or 0x-prefixed hexadecimal integer literal
// with an optional sign and returns its 32-bit two's complement pattern.
//
// Accepted range is -2^31 through 2^32-1, i.e. anything a MIPS register can
// hold when read as either signed or unsigned.
func ParseLiteral(s string) (uint32, error) {
	lit := strings.TrimSpace(s)
	if lit == "" {
		return 0, fmt.Errorf("empty literal")
	}

	negative := false
	switch lit[0] {
	case '-':
		negative = true
		lit = lit[1:]
	case '+':
		lit = lit[1:]
	}

	base := 10
	if len(lit) > 2 && (lit[:2] == "0x" || lit[:2] == "0X") {
		base = 16
		lit = lit[2:]
	}

	mag, err := strconv.ParseUint(lit, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a decimal or hex integer", s)
	}

	if negative {
		if mag > 1<<31 {
			return 0, fmt.Errorf("%q does not fit in 32 bits", s)
		}
		return uint32(-int64(mag)), nil
	}
	if mag > 0xFFFFFFFF {
		return 0, fmt.Errorf("%q does not fit in 32 bits", s)
	}
	return uint32(mag), nil
}

// Address is a byte address in the simulated memory.
type Address uint32

// String returns the canonical form: 0x followed by 8 lowercase hex digits.
func (a Address) String() string {
	return fmt.Sprintf("0x%08x", uint32(a))
}

// Word returns the 4-byte aligned address containing a.
func (a Address) Word() Address {
	return a &^ 3
}

// Offset returns the byte offset of a within its word.
func (a Address) Offset() uint32 {
	return uint32(a) & 3
}

// ParseAddress parses a non-negative decimal or hex address literal.
func ParseAddress(s string) (Address, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		return 0, invalid("address", s, "must be non-negative")
	}
	v, err := ParseLiteral(s)
	if err != nil {
		return 0, invalid("address", s, err.Error())
	}
	return Address(v), nil
}

// CanonicalAddress returns the canonical spelling of an address literal.
// It is idempotent: CanonicalAddress(CanonicalAddress(x)) == CanonicalAddress(x).
func CanonicalAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

// Size is the width of a memory cell.
type Size uint8

const (
	Byte     Size = 1
	Halfword Size = 2
	Word     Size = 4
)

// String returns the size name used in state files.
func (s Size) String() string {
	switch s {
	case Byte:
		return "byte"
	case Halfword:
		return "half"
	case Word:
		return "word"
	}
	return fmt.Sprintf("Size(%d)", uint8(s))
}

// Mask returns the bit mask covering a value of this size.
func (s Size) Mask() uint32 {
	switch s {
	case Byte:
		return 0xFF
	case Halfword:
		return 0xFFFF
	case Word:
		return 0xFFFFFFFF
	}
	panic(fmt.Sprintf("state: unknown size %d", uint8(s)))
}

// Aligned reports whether addr satisfies the alignment rule for this size.
func (s Size) Aligned(addr Address) bool {
	switch s {
	case Byte:
		return true
	case Halfword:
		return addr%2 == 0
	case Word:
		return addr%4 == 0
	}
	panic(fmt.Sprintf("state: unknown size %d", uint8(s)))
}

// ParseSize resolves a size name. The empty string means Word.
func ParseSize(name string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "word", "w":
		return Word, nil
	case "half", "halfword", "h":
		return Halfword, nil
	case "byte", "b":
		return Byte, nil
	}
	return 0, invalid("size", name, "must be one of byte, half, word")
}

// Entry is a single sized memory cell.
type Entry struct {
	Address Address
	Size    Size

	// Value is the literal as written by the caller; it is echoed verbatim
	// into generated harness code.
	Value string

	bits uint32
}

// NewEntry validates a memory cell. The address literal may be decimal or hex.
func NewEntry(addr, value string, size Size) (Entry, error) {
	field := fmt.Sprintf("memory[%s]", addr)

	if size != Byte && size != Halfword && size != Word {
		return Entry{}, invalid(field, size.String(), "unknown size")
	}

	a, err := ParseAddress(addr)
	if err != nil {
		return Entry{}, invalid(field, addr, "address must be a non-negative decimal or hex integer")
	}
	if !size.Aligned(a) {
		return Entry{}, invalid(field, addr, fmt.Sprintf("%s address must be %d-byte aligned", size, size))
	}

	bits, err := ParseLiteral(value)
	if err != nil {
		return Entry{}, invalid(field, value, "value must be a decimal or hex integer")
	}

	return Entry{Address: a, Size: size, Value: strings.TrimSpace(value), bits: bits}, nil
}

// Bits returns the value as a 32-bit pattern, not yet masked to Size.
func (e Entry) Bits() uint32 {
	return e.bits
}
