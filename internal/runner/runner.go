// Package runner drives a full pipeline run: the five phases in fixed order,
// coordinator bookkeeping around each one, quality gating with a single
// remediation re-run, and persistence of the run state after every step.
package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sparckit/sparc/internal/coordinator"
	"github.com/sparckit/sparc/internal/gate"
	"github.com/sparckit/sparc/internal/hooks"
	"github.com/sparckit/sparc/internal/memory"
	"github.com/sparckit/sparc/internal/phase"
	"github.com/sparckit/sparc/internal/store"
)

// EventLog receives best-effort observability writes. *db.DB satisfies it; a
// nil log disables event recording entirely.
type EventLog interface {
	LogPipelineEvent(namespace, event, phaseName string, attempt int, detail string) error
	LogGateResult(namespace, phaseName string, attempt int, passed bool, score, threshold float64, issues []string) error
	LogAgentMetrics(namespace, agentID, agentType string, tasksCompleted int, quality, efficiency, avgDurationMs float64) error
}

// Options configures a single run.
type Options struct {
	Namespace         string
	Task              string
	NeuralLearning    bool
	ParallelExecution bool
	ArtifactDir       string
}

// Runner executes one pipeline run end to end.
type Runner struct {
	opts    Options
	backend *hooks.Client
	mem     *memory.Store
	coord   *coordinator.Coordinator
	runs    *store.Store
	events  EventLog
	log     *zap.Logger
	defs    []phase.Definition
}

// New creates a Runner. backend and events may be nil; runs must not be.
func New(opts Options, backend *hooks.Client, runs *store.Store, events EventLog, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		opts:    opts,
		backend: backend,
		mem:     memory.New(opts.Namespace, backend, logger),
		coord:   coordinator.New(backend, opts.NeuralLearning, logger),
		runs:    runs,
		events:  events,
		log:     logger.Named("runner"),
		defs:    phase.Definitions(),
	}
}

// Memory returns the run's memory store.
func (r *Runner) Memory() *memory.Store { return r.mem }

// Coordinator returns the run's coordinator.
func (r *Runner) Coordinator() *coordinator.Coordinator { return r.coord }

// attemptOutcome carries one phase execution attempt's results back to the
// run loop.
type attemptOutcome struct {
	record  store.PhaseRecord
	gate    *gate.Result
	execErr error
}

// Run executes the pipeline. The returned PipelineRun reflects the final
// persisted state even when the run fails; the error describes the first
// terminal condition.
func (r *Runner) Run(ctx context.Context) (*store.PipelineRun, error) {
	run := &store.PipelineRun{
		ID:        uuid.NewString(),
		Namespace: r.opts.Namespace,
		Task:      r.opts.Task,
		Status:    store.StatusRunning,
	}
	if err := r.runs.Create(run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	r.logEvent("run_started", "", 0, "")

	run.AgentPool = r.coord.InitPool(ctx, r.opts.Task, r.opts.ParallelExecution)
	r.persist(run)

	for _, def := range r.defs {
		if err := ctx.Err(); err != nil {
			return r.finishCancelled(run, def.Name(), err)
		}

		out := r.executePhase(ctx, def, 1, nil)
		if out.execErr != nil {
			run.Phases = append(run.Phases, out.record)
			return r.finishFailed(run, fmt.Errorf("phase %s: %w", def.Name(), out.execErr))
		}

		if !out.gate.Passed {
			// One remediation re-run per phase; a second gate failure is
			// terminal.
			run.Phases = append(run.Phases, out.record)
			r.persist(run)
			r.logEvent("phase_remediation", def.Name(), 1, strings.Join(out.gate.Issues, "; "))

			rc := &phase.RemediationContext{
				Issues:          out.gate.Issues,
				Recommendations: out.gate.Recommendations,
			}
			out = r.executePhase(ctx, def, 2, rc)
			if out.execErr != nil {
				run.Phases = append(run.Phases, out.record)
				return r.finishFailed(run, fmt.Errorf("phase %s remediation: %w", def.Name(), out.execErr))
			}
			if !out.gate.Passed {
				run.Phases = append(run.Phases, out.record)
				return r.finishFailed(run, fmt.Errorf(
					"phase %s failed quality gate after remediation (score %.0f, threshold %.0f)",
					def.Name(), out.gate.Score, out.gate.Threshold*100))
			}
		}

		run.Phases = append(run.Phases, out.record)
		run.Metrics = r.coord.Metrics()
		r.persist(run)
	}

	r.coord.Train(ctx)
	r.mirrorMemory(ctx)
	run.Report = r.coord.Report()
	run.Metrics = r.coord.Metrics()
	run.Status = store.StatusSucceeded
	r.persist(run)

	r.logAgentMetrics()
	r.logEvent("run_succeeded", "", 0, "")
	r.coord.Shutdown(ctx)

	r.log.Info("pipeline run complete",
		zap.String("namespace", r.opts.Namespace),
		zap.Int("agent_pool", run.AgentPool),
		zap.Float64("gate_pass_rate", run.Report.GatePassRate))
	return run, nil
}

// executePhase runs a single attempt of one phase: coordinator pre-phase,
// the phase lifecycle, then coordinator post-phase with the gate evaluation.
func (r *Runner) executePhase(ctx context.Context, def phase.Definition, attempt int, rc *phase.RemediationContext) attemptOutcome {
	name := def.Name()
	r.logEvent("phase_started", name, attempt, "")
	r.coord.PrePhase(ctx, def, r.mem)

	ph := phase.New(def, r.mem, r.backend, r.opts.ArtifactDir, r.log)
	if rc != nil {
		ph.SetRemediation(ctx, rc)
	}

	rec := store.PhaseRecord{
		Phase:       name,
		Remediated:  rc != nil,
		Remediation: rc,
	}

	fail := func(err error) attemptOutcome {
		ph.Finalize(ctx)
		rec.Status = store.StatusFailed
		rec.Error = err.Error()
		r.fillTimes(&rec, ph)
		r.logEvent("phase_failed", name, attempt, err.Error())
		return attemptOutcome{record: rec, execErr: err}
	}

	if err := ph.Initialize(ctx); err != nil {
		return fail(err)
	}
	result, err := ph.Execute(ctx, r.opts.Task)
	if err != nil {
		return fail(err)
	}
	ph.Finalize(ctx)

	gres := r.coord.PostPhase(ctx, name, result, ph.Duration())
	r.logGate(name, attempt, gres)

	rec.Result = result
	rec.Gate = &gres
	r.fillTimes(&rec, ph)
	if path := ph.ArtifactPath(); path != "" {
		rec.ArtifactRefs = append(rec.ArtifactRefs, path)
	}

	if gres.Passed {
		rec.Status = store.StatusSucceeded
		r.logEvent("phase_succeeded", name, attempt, fmt.Sprintf("score=%.0f", gres.Score))
	} else {
		ph.MarkFailed()
		rec.Status = store.StatusFailed
		rec.Error = fmt.Sprintf("quality gate failed: score %.0f below threshold %.0f", gres.Score, gres.Threshold*100)
		r.logEvent("phase_failed", name, attempt, rec.Error)
	}
	return attemptOutcome{record: rec, gate: &gres}
}

func (r *Runner) fillTimes(rec *store.PhaseRecord, ph *phase.Phase) {
	rec.StartedAt = ph.StartedAt().Format(time.RFC3339)
	if d := ph.Duration(); d > 0 {
		rec.FinishedAt = ph.StartedAt().Add(d).Format(time.RFC3339)
		rec.DurationMs = d.Milliseconds()
	}
}

func (r *Runner) finishFailed(run *store.PipelineRun, cause error) (*store.PipelineRun, error) {
	run.Status = store.StatusFailed
	run.FailureReason = cause.Error()
	run.Metrics = r.coord.Metrics()
	run.Report = r.coord.Report()
	r.persist(run)
	r.logAgentMetrics()
	r.logEvent("run_failed", "", 0, cause.Error())
	r.coord.Shutdown(context.Background())
	return run, cause
}

func (r *Runner) finishCancelled(run *store.PipelineRun, nextPhase string, cause error) (*store.PipelineRun, error) {
	run.Status = store.StatusCancelled
	run.FailureReason = fmt.Sprintf("cancelled before %s: %v", nextPhase, cause)
	run.Metrics = r.coord.Metrics()
	r.persist(run)
	r.logEvent("run_cancelled", nextPhase, 0, cause.Error())
	r.coord.Shutdown(context.Background())
	return run, cause
}

// mirrorMemory pushes the run's full memory snapshot to the backend under
// {namespace}_run_snapshot so it outlives the process. Best-effort like
// every other backend write.
func (r *Runner) mirrorMemory(ctx context.Context) {
	if !r.backend.Enabled() {
		return
	}
	snap := r.mem.Snapshot()
	entries := make(map[string]interface{}, len(snap))
	for k, e := range snap {
		entries[k] = e.Value
	}
	r.backend.Try(ctx, hooks.OpMemoryStore, map[string]interface{}{
		"key":   r.mem.FullKey("run_snapshot"),
		"value": entries,
	})
}

// persist saves the run state; a save failure is logged and the run
// continues on the in-memory state.
func (r *Runner) persist(run *store.PipelineRun) {
	if err := r.runs.Save(run); err != nil {
		r.log.Warn("run state save failed", zap.Error(err))
	}
}

func (r *Runner) logEvent(event, phaseName string, attempt int, detail string) {
	if r.events == nil {
		return
	}
	if err := r.events.LogPipelineEvent(r.opts.Namespace, event, phaseName, attempt, detail); err != nil {
		r.log.Debug("event log write failed", zap.String("event", event), zap.Error(err))
	}
}

func (r *Runner) logGate(phaseName string, attempt int, gres gate.Result) {
	if r.events == nil {
		return
	}
	if err := r.events.LogGateResult(r.opts.Namespace, phaseName, attempt, gres.Passed, gres.Score, gres.Threshold, gres.Issues); err != nil {
		r.log.Debug("gate log write failed", zap.Error(err))
	}
}

func (r *Runner) logAgentMetrics() {
	if r.events == nil {
		return
	}
	for _, a := range r.coord.Agents() {
		err := r.events.LogAgentMetrics(r.opts.Namespace, a.ID, a.Type,
			a.Performance.TasksCompleted, a.Performance.QualityScore,
			a.Performance.Efficiency, a.Performance.AverageDurationMs)
		if err != nil {
			r.log.Debug("agent metrics write failed", zap.String("agent", a.ID), zap.Error(err))
		}
	}
}
