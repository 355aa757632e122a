// Package coordinator maps synthetic worker agents onto pipeline phases,
// runs the pre/post phase hooks around each execution, and aggregates the
// run's coordination metrics. Every backend interaction is optional: the
// first failure drops the coordinator into standalone mode for the rest of
// the run.
package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sparckit/sparc/internal/gate"
	"github.com/sparckit/sparc/internal/hooks"
	"github.com/sparckit/sparc/internal/memory"
	"github.com/sparckit/sparc/internal/phase"
)

// expectedDurations is the per-phase duration budget used for agent
// efficiency blending: efficiency = min(1, expected/actual).
var expectedDurations = map[string]time.Duration{
	phase.Specification: 2 * time.Second,
	phase.Pseudocode:    2 * time.Second,
	phase.Architecture:  3 * time.Second,
	phase.Refinement:    4 * time.Second,
	phase.Completion:    2 * time.Second,
}

// defaultConfidence is used when no context can be loaded for a phase.
const defaultConfidence = 0.5

// PhaseContext is what PrePhase prepares for an upcoming phase: loaded
// learning context, the assigned agent, and an isolated workspace holding
// every declared dependency's persisted result.
type PhaseContext struct {
	Phase      string
	AgentID    string
	Confidence float64
	Patterns   []string
	Insights   []string
	Workspace  map[string]phase.Payload
}

// Coordinator sequences agent bookkeeping around phase executions. It is
// driven from the runner's sequential phase loop, so its maps need no
// locking.
type Coordinator struct {
	backend        *hooks.Client
	log            *zap.Logger
	neuralLearning bool

	pool       int
	agents     map[string]*Agent
	metrics    Metrics
	standalone bool
}

// New creates a Coordinator. backend may be nil, in which case the
// coordinator starts (and stays) standalone.
func New(backend *hooks.Client, neuralLearning bool, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		backend:        backend,
		log:            logger.Named("coordinator"),
		neuralLearning: neuralLearning,
		agents:         make(map[string]*Agent),
		metrics: Metrics{
			AgentUtilization: make(map[string]*Utilization),
		},
	}
}

// Standalone reports whether the coordinator has degraded to local-only
// operation.
func (c *Coordinator) Standalone() bool { return c.standalone }

// Pool returns the computed agent pool size.
func (c *Coordinator) Pool() int { return c.pool }

// Agents returns the spawned agent descriptors keyed by declared type.
func (c *Coordinator) Agents() map[string]*Agent { return c.agents }

// Metrics returns the current coordination aggregate.
func (c *Coordinator) Metrics() Metrics { return c.metrics }

// InitPool sizes the agent pool from the task description and spawns one
// agent per declared type. Backend registration of the swarm is best-effort.
func (c *Coordinator) InitPool(ctx context.Context, task string, parallel bool) int {
	c.pool = PoolSize(task, parallel)

	for _, name := range phase.Order {
		c.agents[name] = newAgent(name)
	}
	c.agents[CoordinatorType] = newAgent(CoordinatorType)

	c.try(ctx, hooks.OpSwarmInit, map[string]interface{}{
		"pool":     c.pool,
		"parallel": parallel,
	})
	for _, a := range c.agents {
		c.try(ctx, hooks.OpAgentSpawn, map[string]interface{}{
			"agent_id":          a.ID,
			"type":              a.Type,
			"concurrency_limit": a.ConcurrencyLimit,
		})
	}
	c.try(ctx, hooks.OpSetupDependencies, map[string]interface{}{"phases": phase.Order})
	c.try(ctx, hooks.OpRegisterQualityGate, map[string]interface{}{"phases": phase.Order})
	return c.pool
}

// PrePhase loads best-effort context for the phase, assigns its agent
// (falling back to the coordinator agent), and prepares a workspace with
// every declared dependency's result.
func (c *Coordinator) PrePhase(ctx context.Context, def phase.Definition, mem *memory.Store) *PhaseContext {
	pc := &PhaseContext{
		Phase:      def.Name(),
		Confidence: defaultConfidence,
		Workspace:  make(map[string]phase.Payload),
	}

	if res, ok := c.try(ctx, hooks.OpNeuralLoadContext, map[string]interface{}{
		"phase":     def.Name(),
		"namespace": mem.Namespace(),
	}); ok {
		if v, ok := res["confidence"].(float64); ok {
			pc.Confidence = v
		}
		pc.Patterns = toStrings(res["patterns"])
		pc.Insights = toStrings(res["insights"])
	}

	agent := c.agents[def.Name()]
	if agent == nil {
		agent = c.agents[CoordinatorType]
	}
	if agent != nil {
		agent.CurrentPhase = def.Name()
		pc.AgentID = agent.ID
		c.try(ctx, hooks.OpAgentAssign, map[string]interface{}{
			"agent_id": agent.ID,
			"phase":    def.Name(),
		})
	}

	c.try(ctx, hooks.OpCreateWorkspace, map[string]interface{}{
		"phase":     def.Name(),
		"namespace": mem.Namespace(),
	})
	for _, dep := range def.Dependencies() {
		if v, ok := mem.Get(ctx, phase.CompletionKey(dep)); ok {
			if m, ok := v.(map[string]interface{}); ok {
				pc.Workspace[dep] = phase.Payload(m)
			}
		}
	}
	c.try(ctx, hooks.OpLoadArtifacts, map[string]interface{}{
		"phase":        def.Name(),
		"dependencies": def.Dependencies(),
	})
	return pc
}

// PostPhase evaluates the quality gate, blends the assigned agent's
// performance, records the gate result in the run metrics, and prepares the
// handoff for the next phase.
func (c *Coordinator) PostPhase(ctx context.Context, name string, result phase.Payload, duration time.Duration) gate.Result {
	gres := gate.Evaluate(name, result)

	agent := c.agents[name]
	if agent == nil {
		agent = c.agents[CoordinatorType]
	}
	if agent != nil {
		c.blendPerformance(agent, gres.Score, name, duration)
		agent.CurrentPhase = ""

		util := c.metrics.AgentUtilization[agent.ID]
		if util == nil {
			util = &Utilization{}
			c.metrics.AgentUtilization[agent.ID] = util
		}
		util.Phases = append(util.Phases, name)
		util.TotalTime += duration
		util.Quality = agent.Performance.QualityScore
	}

	c.metrics.PhaseExecutions++
	c.metrics.GateHistory = append(c.metrics.GateHistory, gres)
	c.updateEfficiency(name, duration)

	c.try(ctx, hooks.OpValidatePhase, map[string]interface{}{
		"phase":  name,
		"passed": gres.Passed,
		"score":  gres.Score,
	})
	if agent != nil {
		c.try(ctx, hooks.OpUpdateAgentPerformance, map[string]interface{}{
			"agent_id":    agent.ID,
			"quality":     agent.Performance.QualityScore,
			"efficiency":  agent.Performance.Efficiency,
			"tasks":       agent.Performance.TasksCompleted,
			"duration_ms": duration.Milliseconds(),
		})
	}
	if c.neuralLearning {
		c.try(ctx, hooks.OpNeuralRecordLearning, map[string]interface{}{
			"phase":  name,
			"passed": gres.Passed,
			"score":  gres.Score,
			"issues": gres.Issues,
		})
	}
	if next := nextPhase(name); next != "" {
		c.try(ctx, hooks.OpPrepareHandoff, map[string]interface{}{
			"from":   name,
			"to":     next,
			"result": map[string]interface{}(result),
		})
		c.try(ctx, hooks.OpAgentPrewarm, map[string]interface{}{"phase": next})
	}
	return gres
}

// Train best-effort triggers a backend training pass over the run's gate
// history. No-op without neural learning.
func (c *Coordinator) Train(ctx context.Context) {
	if !c.neuralLearning {
		return
	}
	history := make([]interface{}, 0, len(c.metrics.GateHistory))
	for _, g := range c.metrics.GateHistory {
		history = append(history, map[string]interface{}{
			"phase":  g.Phase,
			"passed": g.Passed,
			"score":  g.Score,
		})
	}
	c.try(ctx, hooks.OpNeuralTrain, map[string]interface{}{"history": history})
}

// Report assembles the final coordination summary.
func (c *Coordinator) Report() *Report {
	rep := &Report{
		AgentPool:    c.pool,
		Standalone:   c.standalone,
		GatePassRate: c.metrics.passRate(),
		Metrics:      c.metrics,
		PhaseQuality: make(map[string]float64),
	}
	for _, name := range phase.Order {
		if a := c.agents[name]; a != nil {
			rep.Agents = append(rep.Agents, *a)
			if a.Performance.TasksCompleted > 0 {
				rep.PhaseQuality[name] = a.Performance.QualityScore
			}
		}
	}
	if a := c.agents[CoordinatorType]; a != nil {
		rep.Agents = append(rep.Agents, *a)
	}
	rep.Recommendations = recommendations(&c.metrics, c.agents)
	return rep
}

// Shutdown best-effort releases agents and the swarm.
func (c *Coordinator) Shutdown(ctx context.Context) {
	for _, a := range c.agents {
		c.try(ctx, hooks.OpAgentShutdown, map[string]interface{}{"agent_id": a.ID})
	}
	c.try(ctx, hooks.OpSwarmShutdown, nil)
}

// blendPerformance applies the (old+observed)/2 moving blend for quality and
// efficiency and folds the duration into the running average.
func (c *Coordinator) blendPerformance(a *Agent, score float64, name string, duration time.Duration) {
	expected := expectedDurations[name]
	efficiency := 1.0
	if duration > 0 && expected > 0 {
		efficiency = float64(expected) / float64(duration)
		if efficiency > 1 {
			efficiency = 1
		}
	}

	if a.Performance.TasksCompleted == 0 {
		a.Performance.QualityScore = score
		a.Performance.Efficiency = efficiency
		a.Performance.AverageDurationMs = float64(duration.Milliseconds())
	} else {
		a.Performance.QualityScore = (a.Performance.QualityScore + score) / 2
		a.Performance.Efficiency = (a.Performance.Efficiency + efficiency) / 2
		n := float64(a.Performance.TasksCompleted)
		a.Performance.AverageDurationMs = (a.Performance.AverageDurationMs*n + float64(duration.Milliseconds())) / (n + 1)
	}
	a.Performance.TasksCompleted++
}

// updateEfficiency folds a phase's duration ratio into the run-wide running
// average.
func (c *Coordinator) updateEfficiency(name string, duration time.Duration) {
	expected := expectedDurations[name]
	ratio := 1.0
	if duration > 0 && expected > 0 {
		ratio = float64(expected) / float64(duration)
		if ratio > 1 {
			ratio = 1
		}
	}
	if c.metrics.PhaseExecutions <= 1 {
		c.metrics.CoordinationEfficiency = ratio
		return
	}
	c.metrics.CoordinationEfficiency = (c.metrics.CoordinationEfficiency + ratio) / 2
}

// try routes a backend call through the client; the first failure latches
// standalone mode and suppresses all further calls for the run.
func (c *Coordinator) try(ctx context.Context, op string, payload map[string]interface{}) (hooks.Result, bool) {
	if c.standalone || !c.backend.Enabled() {
		return nil, false
	}
	res, ok := c.backend.Try(ctx, op, payload)
	if !ok {
		c.standalone = true
		c.log.Warn("backend unavailable, continuing standalone", zap.String("op", op))
	}
	return res, ok
}

// nextPhase returns the phase after name in the fixed order, or "".
func nextPhase(name string) string {
	for i, p := range phase.Order {
		if p == name && i+1 < len(phase.Order) {
			return phase.Order[i+1]
		}
	}
	return ""
}

// toStrings converts a backend list value into []string.
func toStrings(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
