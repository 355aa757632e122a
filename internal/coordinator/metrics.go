package coordinator

import (
	"fmt"
	"time"

	"github.com/sparckit/sparc/internal/gate"
)

// Utilization aggregates one agent's contribution to the run.
type Utilization struct {
	Phases    []string      `json:"phases"`
	TotalTime time.Duration `json:"total_time"`
	Quality   float64       `json:"quality"`
}

// Metrics is the pipeline-wide coordination aggregate.
type Metrics struct {
	PhaseExecutions        int                     `json:"phase_executions"`
	AgentUtilization       map[string]*Utilization `json:"agent_utilization"`
	CoordinationEfficiency float64                 `json:"coordination_efficiency"`
	GateHistory            []gate.Result           `json:"quality_gate_history"`
}

// Report is the final coordination summary assembled after the last phase.
type Report struct {
	AgentPool       int                `json:"agent_pool"`
	Standalone      bool               `json:"standalone"`
	GatePassRate    float64            `json:"gate_pass_rate"`
	Metrics         Metrics            `json:"metrics"`
	Agents          []Agent            `json:"agents"`
	Recommendations []string           `json:"recommendations"`
	PhaseQuality    map[string]float64 `json:"phase_quality"`
}

// passRate computes the fraction of recorded gate evaluations that passed.
func (m *Metrics) passRate() float64 {
	if len(m.GateHistory) == 0 {
		return 0
	}
	passed := 0
	for _, g := range m.GateHistory {
		if g.Passed {
			passed++
		}
	}
	return float64(passed) / float64(len(m.GateHistory))
}

// recommendations synthesizes advice from the aggregate pass rate and
// per-agent utilization.
func recommendations(m *Metrics, agents map[string]*Agent) []string {
	var recs []string

	rate := m.passRate()
	switch {
	case rate >= 1:
		recs = append(recs, "all quality gates passed; thresholds may be tightened")
	case rate >= 0.8:
		recs = append(recs, "most gates passed; review remediated phases for recurring issues")
	default:
		recs = append(recs, fmt.Sprintf("gate pass rate %.0f%% is low; revisit phase inputs before re-running", rate*100))
	}

	for _, a := range agents {
		if a.Performance.TasksCompleted == 0 {
			continue
		}
		if a.Performance.QualityScore < 70 {
			recs = append(recs, fmt.Sprintf("agent %s quality %.0f is below target; inspect %s phase output", a.ID, a.Performance.QualityScore, a.Type))
		}
		if a.Performance.Efficiency < 0.5 {
			recs = append(recs, fmt.Sprintf("agent %s ran at %.0f%% efficiency; raise the expected duration budget for %s", a.ID, a.Performance.Efficiency*100, a.Type))
		}
	}

	if m.CoordinationEfficiency > 0 && m.CoordinationEfficiency < 0.6 {
		recs = append(recs, "coordination efficiency is degraded; consider enabling parallel execution")
	}
	return recs
}
