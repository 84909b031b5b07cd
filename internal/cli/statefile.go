package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mipsgrade/internal/state"
)

// loadStateFile reads a machine state from a YAML or JSON file with
// top-level "registers" and "memory" keys. An empty path is the empty state.
func loadStateFile(path string) (*state.Machine, error) {
	if path == "" {
		return state.Empty(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var raw map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if raw == nil {
		return state.Empty(), nil
	}

	m, err := state.FromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid state in %s: %w", path, err)
	}
	return m, nil
}
