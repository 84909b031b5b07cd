// Package config holds the process-wide settings of the grader: where the
// simulator lives, the default step budget and the default harness filename.
//
// Config is a plain value. It is passed explicitly to the grader, the harness
// synthesizer and the suite runner; there is no package-level instance, so
// tests can run side by side with different settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults used when nothing else is configured.
const (
	DefaultSimulatorPath = "mars.jar"
	DefaultJavaPath      = "java"
	DefaultMaxSteps      = 10000
	DefaultHarnessName   = "harness.asm"
)

// Config is the grader configuration.
type Config struct {
	// SimulatorPath is the path to the MARS jar.
	SimulatorPath string `yaml:"simulator_path" json:"simulator_path"`

	// JavaPath is the java executable used to launch the simulator.
	JavaPath string `yaml:"java_path" json:"java_path"`

	// DefaultMaxSteps bounds simulated execution when a caller gives no budget.
	DefaultMaxSteps int `yaml:"default_max_steps" json:"default_max_steps"`

	// DefaultHarness is the harness filename used when a caller gives none.
	DefaultHarness string `yaml:"default_harness" json:"default_harness"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SimulatorPath:   DefaultSimulatorPath,
		JavaPath:        DefaultJavaPath,
		DefaultMaxSteps: DefaultMaxSteps,
		DefaultHarness:  DefaultHarnessName,
	}
}

// Update lists the fields to change in Reconfigure. Nil fields are left alone.
type Update struct {
	SimulatorPath  *string
	JavaPath       *string
	MaxSteps       *int
	DefaultHarness *string
}

// Reconfigure returns a copy of c with the non-nil fields of u applied.
// The receiver is never modified.
func (c Config) Reconfigure(u Update) (Config, error) {
	next := c
	if u.SimulatorPath != nil {
		next.SimulatorPath = *u.SimulatorPath
	}
	if u.JavaPath != nil {
		next.JavaPath = *u.JavaPath
	}
	if u.MaxSteps != nil {
		next.DefaultMaxSteps = *u.MaxSteps
	}
	if u.DefaultHarness != nil {
		next.DefaultHarness = *u.DefaultHarness
	}
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// Validate checks that every field has a usable value.
func (c Config) Validate() error {
	if c.SimulatorPath == "" {
		return fmt.Errorf("simulator_path is required")
	}
	if c.JavaPath == "" {
		return fmt.Errorf("java_path is required")
	}
	if c.DefaultMaxSteps <= 0 {
		return fmt.Errorf("default_max_steps must be positive, got %d", c.DefaultMaxSteps)
	}
	if c.DefaultHarness == "" {
		return fmt.Errorf("default_harness is required")
	}
	return nil
}

// Steps returns maxSteps, or the configured default when maxSteps <= 0.
func (c Config) Steps(maxSteps int) int {
	if maxSteps <= 0 {
		return c.DefaultMaxSteps
	}
	return maxSteps
}

// Load reads a YAML config file over the defaults. Fields absent from the
// file keep their default value; unknown fields are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
