package coordinator

import (
	"strings"

	"github.com/google/uuid"

	"github.com/sparckit/sparc/internal/phase"
)

// CoordinatorType is the declared type of the fallback agent.
const CoordinatorType = "coordinator"

// Pool sizing bounds.
const (
	minAgents  = 5
	maxAgents  = 20
	baseAgents = 5 // one per phase
)

// concurrencyLimits is the fixed per-type concurrency limit.
var concurrencyLimits = map[string]int{
	phase.Specification: 2,
	phase.Pseudocode:    1,
	phase.Architecture:  3,
	phase.Refinement:    4,
	phase.Completion:    2,
	CoordinatorType:     1,
}

// complexityKeywords drive the pool-size multiplier. Matching is
// case-insensitive substring matching over the task description.
var complexityKeywords = []string{
	"complex",
	"distributed",
	"enterprise",
	"microservice",
	"scalable",
	"real-time",
	"concurrent",
	"integration",
	"high availability",
	"machine learning",
}

// Performance tracks a synthetic agent's blended quality metrics.
type Performance struct {
	TasksCompleted    int     `json:"tasks_completed"`
	QualityScore      float64 `json:"quality_score"`
	Efficiency        float64 `json:"efficiency"`
	AverageDurationMs float64 `json:"average_duration_ms"`
}

// Agent is a synthetic worker descriptor. Agents live for one pipeline run;
// only their metrics snapshot survives finalization.
type Agent struct {
	ID               string      `json:"id"`
	Type             string      `json:"type"`
	ConcurrencyLimit int         `json:"concurrency_limit"`
	CurrentPhase     string      `json:"current_phase,omitempty"`
	Performance      Performance `json:"performance"`
}

// newAgent spawns an agent descriptor for a declared type.
func newAgent(declaredType string) *Agent {
	return &Agent{
		ID:               declaredType + "-" + uuid.NewString()[:8],
		Type:             declaredType,
		ConcurrencyLimit: concurrencyLimits[declaredType],
	}
}

// PoolSize computes clamp(5, 20, base x complexity x parallelism).
func PoolSize(task string, parallel bool) int {
	mult := complexityMultiplier(task)
	par := 1
	if parallel {
		par = 2
	}
	n := baseAgents * mult * par
	if n < minAgents {
		return minAgents
	}
	if n > maxAgents {
		return maxAgents
	}
	return n
}

// complexityMultiplier counts keyword matches: >=3 matches -> 3, >=1 -> 2,
// else 1.
func complexityMultiplier(task string) int {
	lower := strings.ToLower(task)
	matches := 0
	for _, kw := range complexityKeywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	switch {
	case matches >= 3:
		return 3
	case matches >= 1:
		return 2
	default:
		return 1
	}
}
