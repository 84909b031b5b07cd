package state

import (
	"fmt"
	"sort"
	"strconv"
)

// FromMap builds a Machine from loosely typed data such as decoded YAML, JSON
// or CUE. Recognised keys are "registers" and "memory"; both are optional.
//
// Register values may be strings or integers; null leaves the register unset.
// Memory values are either a bare literal (the legacy address→value shorthand,
// always WORD sized) or an object with "value" and optional "size".
func FromMap(data map[string]any) (*Machine, error) {
	b := New()

	for key := range data {
		if key != "registers" && key != "memory" {
			return nil, invalid("state", key, `unknown key, expected "registers" or "memory"`)
		}
	}

	if raw, ok := data["registers"]; ok && raw != nil {
		regs, err := toStringMap("registers", raw)
		if err != nil {
			return nil, err
		}
		for _, name := range sortedKeys(regs) {
			val := regs[name]
			if val == nil {
				continue
			}
			lit, err := toLiteral("registers."+name, val)
			if err != nil {
				return nil, err
			}
			b.RegisterNamed(name, lit)
		}
	}

	if raw, ok := data["memory"]; ok && raw != nil {
		mem, err := toStringMap("memory", raw)
		if err != nil {
			return nil, err
		}
		for _, addr := range sortedKeys(mem) {
			lit, size, err := toMemoryValue(addr, mem[addr])
			if err != nil {
				return nil, err
			}
			b.Memory(addr, lit, size)
		}
	}

	return b.Build()
}

// toMemoryValue normalises one memory value: bare literal => WORD, nested
// object => explicit size.
func toMemoryValue(addr string, raw any) (string, Size, error) {
	field := fmt.Sprintf("memory[%s]", addr)

	switch raw.(type) {
	case map[string]any, map[any]any:
		obj, err := toStringMap(field, raw)
		if err != nil {
			return "", 0, err
		}
		for k := range obj {
			if k != "value" && k != "size" {
				return "", 0, invalid(field, k, `unknown key, expected "value" or "size"`)
			}
		}
		val, ok := obj["value"]
		if !ok || val == nil {
			return "", 0, invalid(field, "", "value is required")
		}
		lit, err := toLiteral(field, val)
		if err != nil {
			return "", 0, err
		}
		sizeName := ""
		if s, ok := obj["size"]; ok && s != nil {
			name, isString := s.(string)
			if !isString {
				return "", 0, invalid(field+".size", fmt.Sprint(s), "size must be a string")
			}
			sizeName = name
		}
		size, err := ParseSize(sizeName)
		if err != nil {
			return "", 0, invalid(field+".size", sizeName, "must be one of byte, half, word")
		}
		return lit, size, nil
	case nil:
		return "", 0, invalid(field, "", "value is required")
	}

	lit, err := toLiteral(field, raw)
	if err != nil {
		return "", 0, err
	}
	return lit, Word, nil
}

// toLiteral converts a decoded scalar to its literal text.
func toLiteral(field string, v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case float64:
		// JSON decoders hand back numbers as float64
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10), nil
		}
		return "", invalid(field, fmt.Sprint(val), "value must be an integer")
	}
	return "", invalid(field, fmt.Sprint(v), fmt.Sprintf("unsupported value type %T", v))
}

// toStringMap accepts both map[string]any and the map[any]any that YAML
// produces when keys are not all strings (e.g. unquoted hex addresses).
func toStringMap(field string, v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, nil
	}
	return nil, invalid(field, fmt.Sprint(v), fmt.Sprintf("expected a mapping, got %T", v))
}

// sortedKeys gives map iteration a stable order so the first reported error
// does not depend on Go's map randomisation.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
