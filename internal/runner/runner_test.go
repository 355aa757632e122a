package runner

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparckit/sparc/internal/hooks"
	"github.com/sparckit/sparc/internal/phase"
	"github.com/sparckit/sparc/internal/store"
)

// captureExec records backend operations and the keys they carry.
type captureExec struct {
	ops  []string
	keys []string
}

func (c *captureExec) Invoke(ctx context.Context, op string, payload map[string]interface{}) (hooks.Result, error) {
	c.ops = append(c.ops, op)
	if k, ok := payload["key"].(string); ok {
		c.keys = append(c.keys, k)
	}
	return hooks.Result{}, nil
}

// recordingLog captures best-effort event writes.
type recordingLog struct {
	events []string
	gates  []string
	agents []string
	err    error
}

func (l *recordingLog) LogPipelineEvent(namespace, event, phaseName string, attempt int, detail string) error {
	l.events = append(l.events, fmt.Sprintf("%s:%s:%d", event, phaseName, attempt))
	return l.err
}

func (l *recordingLog) LogGateResult(namespace, phaseName string, attempt int, passed bool, score, threshold float64, issues []string) error {
	l.gates = append(l.gates, fmt.Sprintf("%s:%d:%v", phaseName, attempt, passed))
	return l.err
}

func (l *recordingLog) LogAgentMetrics(namespace, agentID, agentType string, tasksCompleted int, quality, efficiency, avgDurationMs float64) error {
	l.agents = append(l.agents, agentType)
	return l.err
}

// flakySpec produces a gate-failing specification until remediation is
// attached.
type flakySpec struct {
	alwaysFail bool
	produced   int
}

func (f *flakySpec) Name() string           { return phase.Specification }
func (f *flakySpec) Dependencies() []string { return nil }

func (f *flakySpec) Produce(in phase.Inputs) (phase.Payload, string, error) {
	f.produced++
	p := phase.Payload{
		"requirements":        []string{"implement core"},
		"acceptance_criteria": []string{"core works"},
		"edge_cases":          []string{"empty input"},
	}
	if in.Remediation != nil && !f.alwaysFail {
		p["user_stories"] = []string{"as a user I can run core"}
	}
	return p, "# Specification\n", nil
}

// brokenDef fails Produce outright.
type brokenDef struct{}

func (brokenDef) Name() string           { return phase.Specification }
func (brokenDef) Dependencies() []string { return nil }
func (brokenDef) Produce(phase.Inputs) (phase.Payload, string, error) {
	return nil, "", fmt.Errorf("no task understanding")
}

func testRunner(t *testing.T, opts Options, events EventLog) *Runner {
	t.Helper()
	if opts.Namespace == "" {
		opts.Namespace = "demo"
	}
	if opts.Task == "" {
		opts.Task = "build a simple tool"
	}
	if opts.ArtifactDir == "" {
		opts.ArtifactDir = t.TempDir()
	}
	return New(opts, nil, store.NewStore(t.TempDir()), events, nil)
}

func TestRunHappyPath(t *testing.T) {
	events := &recordingLog{}
	r := testRunner(t, Options{}, events)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, store.StatusSucceeded, run.Status)

	require.Len(t, run.Phases, 5)
	for i, name := range phase.Order {
		rec := run.Phases[i]
		assert.Equal(t, name, rec.Phase)
		assert.Equal(t, store.StatusSucceeded, rec.Status)
		require.NotNil(t, rec.Gate)
		assert.True(t, rec.Gate.Passed, "gate for %s", name)
		assert.False(t, rec.Remediated)
		assert.NotEmpty(t, rec.ArtifactRefs, "artifact for %s", name)
	}

	assert.Equal(t, 5, run.AgentPool)
	require.NotNil(t, run.Report)
	assert.Equal(t, 1.0, run.Report.GatePassRate)
	assert.Equal(t, 5, run.Metrics.PhaseExecutions)

	// Completion keys are namespaced in the memory store.
	keys := r.Memory().Keys()
	for _, name := range phase.Order {
		assert.Contains(t, keys, "demo_"+name+"_complete")
	}

	assert.Contains(t, events.events, "run_started::0")
	assert.Contains(t, events.events, "phase_succeeded:completion:1")
	assert.Contains(t, events.events, "run_succeeded::0")
	assert.Len(t, events.gates, 5)
	assert.Len(t, events.agents, 6)
}

func TestRunPersistsState(t *testing.T) {
	runs := store.NewStore(t.TempDir())
	r := New(Options{Namespace: "demo", Task: "x", ArtifactDir: t.TempDir()}, nil, runs, nil, nil)

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	saved, err := runs.Get("demo")
	require.NoError(t, err)
	assert.Equal(t, store.StatusSucceeded, saved.Status)
	assert.Len(t, saved.Phases, 5)
	assert.NotEmpty(t, saved.ID)
	assert.NotNil(t, saved.Report)
}

func TestRunRejectsDuplicateNamespace(t *testing.T) {
	runs := store.NewStore(t.TempDir())
	opts := Options{Namespace: "demo", Task: "x", ArtifactDir: t.TempDir()}

	_, err := New(opts, nil, runs, nil, nil).Run(context.Background())
	require.NoError(t, err)

	_, err = New(opts, nil, runs, nil, nil).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestRunRemediationRecovers(t *testing.T) {
	events := &recordingLog{}
	r := testRunner(t, Options{}, events)
	spec := &flakySpec{}
	r.defs = []phase.Definition{spec}

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.StatusSucceeded, run.Status)
	assert.Equal(t, 2, spec.produced)

	require.Len(t, run.Phases, 2)
	first, second := run.Phases[0], run.Phases[1]
	assert.Equal(t, store.StatusFailed, first.Status)
	assert.False(t, first.Gate.Passed)
	assert.False(t, first.Remediated)
	assert.Equal(t, store.StatusSucceeded, second.Status)
	assert.True(t, second.Remediated)
	require.NotNil(t, second.Remediation)
	assert.NotEmpty(t, second.Remediation.Issues)

	assert.Contains(t, events.events, "phase_remediation:specification:1")
	assert.Contains(t, events.events, "phase_succeeded:specification:2")
	assert.Equal(t, []string{"specification:1:false", "specification:2:true"}, events.gates)
}

func TestRunSecondGateFailureIsTerminal(t *testing.T) {
	r := testRunner(t, Options{}, nil)
	spec := &flakySpec{alwaysFail: true}
	r.defs = []phase.Definition{spec}

	run, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after remediation")
	assert.Equal(t, store.StatusFailed, run.Status)
	assert.NotEmpty(t, run.FailureReason)
	// Exactly two attempts, never a third.
	assert.Equal(t, 2, spec.produced)
	assert.Len(t, run.Phases, 2)
}

func TestRunProduceErrorIsTerminal(t *testing.T) {
	r := testRunner(t, Options{}, nil)
	r.defs = []phase.Definition{brokenDef{}}

	run, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task understanding")
	assert.Equal(t, store.StatusFailed, run.Status)
	require.Len(t, run.Phases, 1)
	assert.Equal(t, store.StatusFailed, run.Phases[0].Status)
	assert.Nil(t, run.Phases[0].Gate)
}

func TestRunCancelledBetweenPhases(t *testing.T) {
	events := &recordingLog{}
	r := testRunner(t, Options{}, events)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, store.StatusCancelled, run.Status)
	assert.Empty(t, run.Phases)
	assert.Contains(t, events.events, "run_cancelled:specification:0")
}

func TestRunPoolSizeReflectsTask(t *testing.T) {
	r := testRunner(t, Options{
		Namespace:         "complex-run",
		Task:              "complex distributed real-time system",
		ParallelExecution: true,
	}, nil)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	// 5 x 3 x 2 clamped to 20.
	assert.Equal(t, 20, run.AgentPool)
}

func TestRunMirrorsMemorySnapshot(t *testing.T) {
	exec := &captureExec{}
	backend := hooks.NewClient(exec, nil, 0)
	opts := Options{Namespace: "demo", Task: "build a simple tool", ArtifactDir: t.TempDir()}
	r := New(opts, backend, store.NewStore(t.TempDir()), nil, nil)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.StatusSucceeded, run.Status)

	assert.Contains(t, exec.keys, "demo_run_snapshot")
	assert.Contains(t, exec.ops, hooks.OpSwarmShutdown)
}

func TestRunEventLogFailureIsIgnored(t *testing.T) {
	events := &recordingLog{err: fmt.Errorf("disk full")}
	r := testRunner(t, Options{}, events)

	run, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, store.StatusSucceeded, run.Status)
}
