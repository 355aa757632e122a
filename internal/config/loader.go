package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns a RunConfig seeded with the documented defaults:
// neural learning on, swarm off, paths under ~/.sparc.
func Default() RunConfig {
	cfg := RunConfig{Run: Run{NeuralLearning: true}}
	ApplyDefaults(&cfg)
	return cfg
}

// Load reads and parses a run configuration from the given YAML file path.
// Unmarshalling starts from Default(), so fields absent from the YAML keep
// their defaults and explicit values (including false) win.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a run config in standard locations and loads the
// first one found. Search order: ./sparc.yaml, ~/.sparc/config.yaml
func LoadDefault() (*RunConfig, error) {
	candidates := []string{"sparc.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".sparc", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no run config found (searched: %v)", candidates)
}

// ApplyDefaults fills in path and timeout fields left empty in the YAML or
// on the command line.
func ApplyDefaults(cfg *RunConfig) {
	r := &cfg.Run

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".sparc")

	if r.ArtifactDir == "" {
		r.ArtifactDir = filepath.Join(base, "artifacts")
	}
	if r.StateDir == "" {
		r.StateDir = filepath.Join(base, "runs")
	}
	if r.DBPath == "" {
		r.DBPath = filepath.Join(base, "sparc.db")
	}
	if r.HookTimeout == "" {
		r.HookTimeout = "5s"
	}
}

// HookTimeoutDuration parses the hook timeout field. ApplyDefaults guarantees
// the field is non-empty after Load.
func (r Run) HookTimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(r.HookTimeout)
	if err != nil {
		return 0, fmt.Errorf("parsing hook_timeout: %w", err)
	}
	return d, nil
}
