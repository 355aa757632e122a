package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sparckit/sparc/internal/store"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	SetVersion("test-version")
	out, err := executeCommand("version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "test-version") {
		t.Errorf("expected version output to contain 'test-version', got: %s", out)
	}
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expectedSubcommands := []string{
		"run", "status", "list", "memory", "db", "analytics", "version",
		"abort", "delete",
	}
	for _, sub := range expectedSubcommands {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing subcommand %q", sub)
		}
	}
}

func TestRunRequiresNamespaceAndTask(t *testing.T) {
	_, err := executeCommand("run")
	if err == nil {
		t.Fatal("expected validation error for run without flags")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	out, err := executeCommand("run",
		"--namespace", "cli-demo",
		"--task", "build a simple tool",
		"--artifact-dir", filepath.Join(dir, "artifacts"),
		"--state-dir", filepath.Join(dir, "runs"),
		"--db", filepath.Join(dir, "sparc.db"),
	)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "succeeded") {
		t.Errorf("expected success summary, got: %s", out)
	}
	for _, name := range []string{"specification", "pseudocode", "architecture", "refinement", "completion"} {
		if !strings.Contains(out, name) {
			t.Errorf("summary missing phase %q", name)
		}
	}

	out, err = executeCommand("status", "cli-demo", "--state-dir", filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "succeeded") {
		t.Errorf("status output: %s", out)
	}

	out, err = executeCommand("list", "--state-dir", filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "cli-demo") {
		t.Errorf("list output: %s", out)
	}

	out, err = executeCommand("memory", "cli-demo", "--state-dir", filepath.Join(dir, "runs"))
	if err != nil {
		t.Fatalf("memory failed: %v", err)
	}
	if !strings.Contains(out, "cli-demo_specification_complete") {
		t.Errorf("memory output: %s", out)
	}

	out, err = executeCommand("db", "events", "cli-demo", "--db", filepath.Join(dir, "sparc.db"))
	if err != nil {
		t.Fatalf("db events failed: %v", err)
	}
	if !strings.Contains(out, "run_succeeded") {
		t.Errorf("events output: %s", out)
	}

	out, err = executeCommand("db", "gates", "cli-demo", "--db", filepath.Join(dir, "sparc.db"))
	if err != nil {
		t.Fatalf("db gates failed: %v", err)
	}
	if !strings.Contains(out, "specification") || !strings.Contains(out, "true") {
		t.Errorf("gates output: %s", out)
	}

	out, err = executeCommand("db", "agents", "cli-demo", "--db", filepath.Join(dir, "sparc.db"))
	if err != nil {
		t.Fatalf("db agents failed: %v", err)
	}
	if !strings.Contains(out, "coordinator") {
		t.Errorf("agents output: %s", out)
	}
}

func TestAbortAndDelete(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "runs")
	runs := store.NewStore(stateDir)
	if err := runs.Create(&store.PipelineRun{Namespace: "pending-run", Task: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	out, err := executeCommand("abort", "pending-run", "--state-dir", stateDir)
	if err != nil {
		t.Fatalf("abort failed: %v", err)
	}
	if !strings.Contains(out, "cancelled") {
		t.Errorf("abort output: %s", out)
	}
	saved, err := runs.Get("pending-run")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if saved.Status != store.StatusCancelled || saved.FailureReason == "" {
		t.Errorf("aborted run = %+v", saved)
	}

	done := &store.PipelineRun{Namespace: "done-run", Task: "x", Status: store.StatusSucceeded}
	if err := runs.Create(done); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := executeCommand("abort", "done-run", "--state-dir", stateDir); err == nil {
		t.Error("expected abort of a finished run to fail")
	}

	out, err = executeCommand("delete", "pending-run", "--state-dir", stateDir)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("delete output: %s", out)
	}
	if _, err := runs.Get("pending-run"); err == nil {
		t.Error("run should be gone after delete")
	}
	if _, err := executeCommand("delete", "pending-run", "--state-dir", stateDir); err == nil {
		t.Error("expected second delete to fail")
	}
}

func TestStatusUnknownNamespace(t *testing.T) {
	_, err := executeCommand("status", "nope", "--state-dir", t.TempDir())
	if err == nil {
		t.Error("expected error for unknown namespace")
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := executeCommand("nonexistent")
	if err == nil {
		t.Error("expected error for unknown command, got nil")
	}
}
