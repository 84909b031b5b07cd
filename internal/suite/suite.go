package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mipsgrade/internal/harness"
)

// Suite is a named list of test cases.
type Suite struct {
	// Name identifies the suite in reports. Defaults to the file name.
	Name string `yaml:"name" json:"name"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Simulator overrides the configured simulator jar for every case.
	Simulator string `yaml:"simulator,omitempty" json:"simulator,omitempty"`

	// MaxSteps is the step budget for cases that do not set their own.
	MaxSteps int `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`

	Tests []TestCase `yaml:"tests" json:"tests"`

	// Path is the file the suite was loaded from.
	Path string `yaml:"-" json:"-"`
}

// TestCase is a single graded program.
type TestCase struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Program is the submission, relative to the suite file.
	Program string `yaml:"program" json:"program"`

	// Simulator overrides the suite and configured simulator jar.
	Simulator string `yaml:"simulator,omitempty" json:"simulator,omitempty"`

	Harness HarnessSpec `yaml:"harness,omitempty" json:"harness,omitempty"`

	// InitialState and ExpectedState use the loose state form: "registers"
	// and "memory" keys, bare or {value, size} memory cells.
	InitialState  map[string]any `yaml:"initial_state,omitempty" json:"initial_state,omitempty"`
	ExpectedState map[string]any `yaml:"expected_state,omitempty" json:"expected_state,omitempty"`

	// MaxSteps of 0 falls back to the suite, then the configuration.
	MaxSteps int `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`

	// ProgramFile and MarsPath are the older spellings of Program and
	// Simulator. They are folded into those fields on load.
	ProgramFile string `yaml:"program_file,omitempty" json:"program_file,omitempty"`
	MarsPath    string `yaml:"mars_path,omitempty" json:"mars_path,omitempty"`
}

// HarnessSpec configures the harness generated for a case.
type HarnessSpec struct {
	// Label is the entry label. Empty means "main".
	Label string `yaml:"label,omitempty" json:"label,omitempty"`

	// JumpType is j, jal, JUMP or JUMP_AND_LINK. Empty means j.
	JumpType string `yaml:"jump_type,omitempty" json:"jump_type,omitempty"`

	// Output keeps a copy of the harness at this path. Grading always uses a
	// per-case scratch file, so cases may share one output.
	Output string `yaml:"output,omitempty" json:"output,omitempty"`
}

// Extensions lists the suite file extensions Load understands.
var Extensions = []string{".yaml", ".yml", ".json", ".cue"}

// IsSuiteFile reports whether path has a suite extension.
func IsSuiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads a suite file, choosing the decoder by extension.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var s *Suite
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = decodeYAML(data)
	case ".json", ".cue":
		s, err = decodeCUE(path, data)
	default:
		return nil, fmt.Errorf("unsupported suite file %s: expected one of %s", path, strings.Join(Extensions, ", "))
	}
	if err != nil {
		return nil, err
	}

	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := validateSuite(s); err != nil {
		return nil, fmt.Errorf("invalid suite %s: %w", path, err)
	}
	return s, nil
}

func decodeYAML(data []byte) (*Suite, error) {
	var s Suite
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: empty suite")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &s, nil
}

func validateSuite(s *Suite) error {
	if len(s.Tests) == 0 {
		return fmt.Errorf("tests: at least one test case is required")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps: must not be negative")
	}

	seen := map[string]bool{}
	for i := range s.Tests {
		tc := &s.Tests[i]
		if err := foldAlias(&tc.Program, &tc.ProgramFile); err != nil {
			return fmt.Errorf("tests[%d].program: %w", i, err)
		}
		if err := foldAlias(&tc.Simulator, &tc.MarsPath); err != nil {
			return fmt.Errorf("tests[%d].simulator: %w", i, err)
		}

		if tc.Name == "" {
			return fmt.Errorf("tests[%d].name: required", i)
		}
		if seen[tc.Name] {
			return fmt.Errorf("tests[%d].name: duplicate test name %q", i, tc.Name)
		}
		seen[tc.Name] = true

		if tc.Program == "" {
			return fmt.Errorf("tests[%d].program: required", i)
		}
		if tc.MaxSteps < 0 {
			return fmt.Errorf("tests[%d].max_steps: must not be negative", i)
		}
		if _, err := harness.ParseJumpMode(tc.Harness.JumpType); err != nil {
			return fmt.Errorf("tests[%d].harness.jump_type: %w", i, err)
		}
		if tc.Harness.Label != "" {
			if err := harness.ValidateLabel(tc.Harness.Label); err != nil {
				return fmt.Errorf("tests[%d].harness.label: %w", i, err)
			}
		}
	}
	return nil
}

// foldAlias moves an older key's value into its current field. Setting both
// to different values is an error.
func foldAlias(field, alias *string) error {
	if *alias == "" {
		return nil
	}
	if *field != "" && *field != *alias {
		return fmt.Errorf("conflicting values %q and %q", *field, *alias)
	}
	*field, *alias = *alias, ""
	return nil
}

// Dir returns the directory relative paths resolve against.
func (s *Suite) Dir() string {
	if s.Path == "" {
		return "."
	}
	return filepath.Dir(s.Path)
}

// Resolve makes p relative to the suite file. Empty and absolute paths are
// returned unchanged.
func (s *Suite) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.Dir(), p)
}

// Select returns the cases whose names match the glob pattern, keeping
// their suite positions. An empty pattern selects everything.
func (s *Suite) Select(pattern string) ([]Selected, error) {
	var out []Selected
	for i, tc := range s.Tests {
		if pattern != "" {
			ok, err := filepath.Match(pattern, tc.Name)
			if err != nil {
				return nil, fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !ok {
				continue
			}
		}
		out = append(out, Selected{Position: i, Case: tc})
	}
	return out, nil
}

// Selected is a test case with its index in the suite.
type Selected struct {
	Position int
	Case     TestCase
}
