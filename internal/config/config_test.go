package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `
run:
  namespace: demo
  task: "build a REST API with authentication"
  swarm_enabled: true
  neural_learning: true
  parallel_execution: true
  artifact_dir: /tmp/sparc-artifacts
  hook_timeout: "2s"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sparc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Run.Namespace != "demo" {
		t.Errorf("Namespace = %q, want %q", cfg.Run.Namespace, "demo")
	}
	if !strings.Contains(cfg.Run.Task, "REST API") {
		t.Errorf("Task = %q", cfg.Run.Task)
	}
	if !cfg.Run.SwarmEnabled || !cfg.Run.NeuralLearning || !cfg.Run.ParallelExecution {
		t.Error("execution flags should all be true")
	}
	if cfg.Run.ArtifactDir != "/tmp/sparc-artifacts" {
		t.Errorf("ArtifactDir = %q", cfg.Run.ArtifactDir)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTestConfig(t, "run:\n  namespace: demo\n  task: something\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Run.ArtifactDir == "" || cfg.Run.StateDir == "" || cfg.Run.DBPath == "" {
		t.Errorf("path defaults not applied: %+v", cfg.Run)
	}
	if cfg.Run.HookTimeout != "5s" {
		t.Errorf("HookTimeout = %q, want 5s", cfg.Run.HookTimeout)
	}
	if !cfg.Run.NeuralLearning {
		t.Error("NeuralLearning should default to true")
	}
	if cfg.Run.SwarmEnabled {
		t.Error("SwarmEnabled should default to false")
	}
	d, err := cfg.Run.HookTimeoutDuration()
	if err != nil {
		t.Fatalf("HookTimeoutDuration: %v", err)
	}
	if d != 5*time.Second {
		t.Errorf("duration = %v", d)
	}
}

func TestNeuralLearningExplicitFalsePreserved(t *testing.T) {
	path := writeTestConfig(t, "run:\n  namespace: demo\n  task: something\n  neural_learning: false\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Run.NeuralLearning {
		t.Error("explicit neural_learning: false should not be overridden")
	}
}

func TestValidateAcceptsNeuralWithoutSwarm(t *testing.T) {
	cfg := Default()
	cfg.Run.Namespace = "demo"
	cfg.Run.Task = "something"
	if cfg.Run.SwarmEnabled {
		t.Fatal("precondition: swarm defaults off")
	}
	if errs := Validate(&cfg); len(errs) != 0 {
		t.Errorf("default combination should validate, got %v", errs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeTestConfig(t, "run: [not a mapping")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateValid(t *testing.T) {
	path := writeTestConfig(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if errs := Validate(cfg); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		cfg   RunConfig
		field string
	}{
		{
			name:  "missing namespace",
			cfg:   RunConfig{Run: Run{Task: "x"}},
			field: "run.namespace",
		},
		{
			name:  "bad namespace characters",
			cfg:   RunConfig{Run: Run{Namespace: "my app!", Task: "x"}},
			field: "run.namespace",
		},
		{
			name:  "missing task",
			cfg:   RunConfig{Run: Run{Namespace: "demo"}},
			field: "run.task",
		},
		{
			name:  "bad hook timeout",
			cfg:   RunConfig{Run: Run{Namespace: "demo", Task: "x", HookTimeout: "soon"}},
			field: "run.hook_timeout",
		},
		{
			name:  "negative hook timeout",
			cfg:   RunConfig{Run: Run{Namespace: "demo", Task: "x", HookTimeout: "-1s"}},
			field: "run.hook_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.cfg)
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, errs)
			}
		})
	}
}
