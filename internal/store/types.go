// Package store persists pipeline runs as JSON under a base directory, one
// subdirectory per namespace. Writes are atomic so a restarted process
// always sees a consistent run state.
package store

import (
	"github.com/sparckit/sparc/internal/coordinator"
	"github.com/sparckit/sparc/internal/gate"
	"github.com/sparckit/sparc/internal/phase"
)

// Run statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// PhaseRecord is the persisted outcome of one phase execution. It is owned
// by the phase that produced it and read-only downstream.
type PhaseRecord struct {
	Phase        string                    `json:"phase"`
	Status       string                    `json:"status"`
	StartedAt    string                    `json:"started_at,omitempty"`
	FinishedAt   string                    `json:"finished_at,omitempty"`
	DurationMs   int64                     `json:"duration_ms"`
	Result       phase.Payload             `json:"result,omitempty"`
	ArtifactRefs []string                  `json:"artifact_refs,omitempty"`
	Gate         *gate.Result              `json:"gate,omitempty"`
	Remediated   bool                      `json:"remediated,omitempty"`
	Remediation  *phase.RemediationContext `json:"remediation_context,omitempty"`
	Error        string                    `json:"error,omitempty"`
}

// PipelineRun is the top-level persisted state for one execution of the
// methodology. It is only ever appended to, never deleted by the engine.
type PipelineRun struct {
	ID            string              `json:"id"`
	Namespace     string              `json:"namespace"`
	Task          string              `json:"task"`
	Status        string              `json:"status"`
	AgentPool     int                 `json:"agent_pool"`
	Phases        []PhaseRecord       `json:"phases"`
	Metrics       coordinator.Metrics `json:"metrics"`
	Report        *coordinator.Report `json:"report,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}
