// Package config loads the optional YAML generation config consumed by
// the emitter and the regctl CLI.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config controls emission targets and naming. Zero-value fields fall
// back to the defaults from Default.
type Config struct {
	// Targets lists the emitters to run: "go", "c".
	Targets []string `yaml:"targets"`

	// Workers bounds parse/emit parallelism. 0 means one worker per
	// CPU.
	Workers int `yaml:"workers"`

	// WarnGaps toggles the unmapped-address-gap warning.
	WarnGaps *bool `yaml:"warn_gaps"`

	Go GoTarget `yaml:"go"`
	C  CTarget  `yaml:"c"`
}

// GoTarget configures the Go emitter.
type GoTarget struct {
	// Package overrides the generated package name. Empty means one
	// package per peripheral, named after it.
	Package string `yaml:"package"`
}

// CTarget configures the C header emitter.
type CTarget struct {
	// GuardPrefix is prepended to include-guard macros.
	GuardPrefix string `yaml:"guard_prefix"`
}

// Default returns the configuration used when no config file is given.
func Default() Config {
	return Config{
		Targets: []string{"go", "c"},
		C:       CTarget{GuardPrefix: "REGS"},
	}
}

// GapWarnings reports whether gap warnings are enabled (the default).
func (c Config) GapWarnings() bool {
	return c.WarnGaps == nil || *c.WarnGaps
}

// Load reads and strictly decodes a YAML config file; unknown keys are
// rejected so typos surface instead of silently meaning defaults.
// Fields absent from the file keep their Default values.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = Default().Targets
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	for _, t := range c.Targets {
		switch t {
		case "go", "c":
		default:
			return fmt.Errorf("unknown emit target %q (must be go or c)", t)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}
